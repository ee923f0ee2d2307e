package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column. Right-aligned columns suit numbers.
type Column struct {
	Title string
	Width int
	Right bool
}

func (c Column) pad(s string) string {
	if c.Right {
		return padL(s, c.Width)
	}
	return padR(s, c.Width)
}

// Row is a slice of cell values; missing trailing cells render empty.
type Row []string

// Table renders rows under a header and a dashed divider.
type Table struct {
	Columns []Column
	Rows    []Row
}

func NewTable(cols []Column) *Table {
	return &Table{Columns: cols}
}

func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Render pads cells to their visible width so styled content stays aligned.
func (t *Table) Render() string {
	header := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cell := lipgloss.NewStyle().Foreground(ColorValue)
	dim := lipgloss.NewStyle().Foreground(ColorMeta)

	lines := make([]string, 0, len(t.Rows)+2)
	lines = append(lines,
		t.line(func(c Column, _ int) string { return c.pad(header.Render(c.Title)) }),
		t.line(func(c Column, _ int) string { return dim.Render(strings.Repeat("-", c.Width)) }),
	)
	for _, row := range t.Rows {
		lines = append(lines, t.line(func(c Column, j int) string {
			if j >= len(row) {
				return c.pad("")
			}
			return c.pad(cell.Render(row[j]))
		}))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (t *Table) line(render func(c Column, j int) string) string {
	cells := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		cells[j] = render(c, j)
	}
	return strings.Join(cells, " ")
}

// KeyValueBlock renders a set of key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-20s", p[0]+":"))
		val := StyleValue.Render(p[1])
		sb.WriteString("  " + key + " " + val + "\n")
	}
	return StyleBorder.Render(sb.String())
}
