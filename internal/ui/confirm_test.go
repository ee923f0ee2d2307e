package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompterAnswers(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := &Prompter{In: strings.NewReader(tt.input), Out: &out}
			ok, err := p.Confirm(context.Background(), "Are you sure?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, out.String(), "Are you sure?")
		})
	}
}

func TestPrompterYesSkipsInput(t *testing.T) {
	var out bytes.Buffer
	p := &Prompter{In: strings.NewReader(""), Out: &out, Yes: true}
	ok, err := p.Confirm(context.Background(), "Proceed?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "Proceed?")
}

func TestPrompterMultiLine(t *testing.T) {
	var out bytes.Buffer
	p := &Prompter{In: strings.NewReader("y\n"), Out: &out}
	ok, err := p.Confirm(context.Background(), "You will receive 1 ETH. Are you sure?\nWarning: your balance is only 2 TKN.")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "You will receive 1 ETH.")
	assert.Contains(t, out.String(), "your balance is only 2 TKN.")
	assert.Contains(t, out.String(), "Continue?")
}

func TestPrompterCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &Prompter{In: r, Out: io.Discard}
	_, err := p.Confirm(ctx, "Are you sure?")
	assert.ErrorIs(t, err, context.Canceled)
}
