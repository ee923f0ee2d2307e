package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/bonded/internal/donation"
	tea "github.com/charmbracelet/bubbletea"
)

// Refresher is the part of the orchestrator the live view drives.
type Refresher interface {
	Load(ctx context.Context, cause string) (*donation.DomainSnapshot, error)
	Refresh(ctx context.Context, cause string) (*donation.DomainSnapshot, error)
}

// WatchModel is the Bubble Tea model for the live dashboard. It refreshes on
// a fixed interval; r forces a full rebuild including owner and charity.
type WatchModel struct {
	src      Refresher
	ctx      context.Context
	interval time.Duration

	Snapshot *donation.DomainSnapshot
	ErrMsg   string
	Fetching bool
	Frame    int
	Quitting bool
}

type (
	watchTickMsg  struct{}
	watchSpinMsg  struct{}
	watchSnapMsg  struct{ snap *donation.DomainSnapshot }
	watchErrorMsg struct{ err error }
)

// NewWatchModel creates the model. initial may be nil.
func NewWatchModel(ctx context.Context, src Refresher, interval time.Duration, initial *donation.DomainSnapshot) WatchModel {
	return WatchModel{src: src, ctx: ctx, interval: interval, Snapshot: initial}
}

// NewWatchProgram wraps the model in a full-screen program.
func NewWatchProgram(m WatchModel) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
}

func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.tick(), spin())
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit
		case "r":
			if m.Fetching {
				return m, nil
			}
			m.Fetching = true
			return m, m.load()
		}

	case watchTickMsg:
		if m.Fetching {
			return m, m.tick()
		}
		m.Fetching = true
		return m, tea.Batch(m.refresh(), m.tick())

	case watchSpinMsg:
		m.Frame = (m.Frame + 1) % len(spinFrames)
		return m, spin()

	case watchSnapMsg:
		m.Fetching = false
		m.Snapshot = msg.snap
		m.ErrMsg = ""

	case watchErrorMsg:
		m.Fetching = false
		m.ErrMsg = msg.err.Error()
	}
	return m, nil
}

func (m WatchModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(Banner())

	switch {
	case m.ErrMsg != "" && m.Snapshot != nil:
		sb.WriteString(Err(m.ErrMsg) + Meta("  (showing last good snapshot)") + "\n\n")
	case m.ErrMsg != "":
		sb.WriteString(Err(m.ErrMsg) + "\n\n")
	case m.Fetching:
		sb.WriteString(StyleInfo.Render(spinFrames[m.Frame]+" reading chain state…") + "\n\n")
	default:
		sb.WriteString("\n")
	}

	if m.Snapshot == nil {
		sb.WriteString(Meta("Loading accounts and contracts…") + "\n")
	} else {
		sb.WriteString(RenderSnapshot(m.Snapshot))
		sb.WriteString(RenderFooter(m.Snapshot) + "\n")
	}

	sb.WriteString("\n" + watchControls(m.interval) + "\n")
	return sb.String()
}

func (m WatchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return watchTickMsg{} })
}

func spin() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg { return watchSpinMsg{} })
}

func (m WatchModel) refresh() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.src.Refresh(m.ctx, "watch")
		if err != nil {
			return watchErrorMsg{err}
		}
		return watchSnapMsg{snap}
	}
}

func (m WatchModel) load() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.src.Load(m.ctx, "watch reload")
		if err != nil {
			return watchErrorMsg{err}
		}
		return watchSnapMsg{snap}
	}
}

func watchControls(interval time.Duration) string {
	sep := Meta("   ")
	return StyleInfo.Render("[ r ]") + Meta(" full reload") + sep +
		Meta("[ q ]") + Meta(" quit") + sep +
		Meta(fmt.Sprintf("refresh every %s", interval))
}
