package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter asks yes/no questions on a terminal. It satisfies the
// orchestrator's Confirmer.
type Prompter struct {
	In  io.Reader
	Out io.Writer
	Yes bool // answer yes without reading input
}

// NewPrompter prompts on stdin/stdout.
func NewPrompter(yes bool) *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stdout, Yes: yes}
}

// Confirm prints prompt and reads one line. Only "y" or "yes" accept.
func (p *Prompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	question := prompt
	if lines := strings.Split(prompt, "\n"); len(lines) > 1 {
		for _, l := range lines {
			if strings.HasPrefix(l, "Warning:") {
				fmt.Fprintln(p.Out, Warn(strings.TrimSpace(strings.TrimPrefix(l, "Warning:"))))
				continue
			}
			fmt.Fprintln(p.Out, StyleWarning.Render(l))
		}
		question = "Continue?"
	}

	if p.Yes {
		fmt.Fprintf(p.Out, "%s [y/N]: y\n", StyleWarning.Render(question))
		return true, nil
	}
	fmt.Fprintf(p.Out, "%s [y/N]: ", StyleWarning.Render(question))

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		ch <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.Out)
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && a.err != io.EOF {
			return false, fmt.Errorf("reading answer: %w", a.err)
		}
		line := strings.TrimSpace(strings.ToLower(a.line))
		return line == "y" || line == "yes", nil
	}
}
