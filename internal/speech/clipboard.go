package speech

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoClipboard means no clipboard tool was found.
var ErrNoClipboard = errors.New("no clipboard tool available")

// ClipboardSink copies text to the system clipboard so it can be pasted into a
// synthesizer.
type ClipboardSink struct {
	goos     string
	lookPath func(string) (string, error)
}

// NewClipboardSink returns a sink for the running platform.
func NewClipboardSink() ClipboardSink {
	return ClipboardSink{goos: runtime.GOOS, lookPath: exec.LookPath}
}

// Available reports whether a clipboard tool exists.
func (c ClipboardSink) Available() bool {
	_, _, err := c.command()
	return err == nil
}

// Speak copies text to the clipboard.
func (c ClipboardSink) Speak(ctx context.Context, text string) error {
	name, args, err := c.command()
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// command picks the clipboard tool for the platform.
func (c ClipboardSink) command() (string, []string, error) {
	switch c.goos {
	case "darwin":
		if _, err := c.lookPath("pbcopy"); err == nil {
			return "pbcopy", nil, nil
		}
	case "windows":
		return "cmd", []string{"/c", "clip"}, nil
	default:
		// Try xclip first, fall back to xsel
		if _, err := c.lookPath("xclip"); err == nil {
			return "xclip", []string{"-selection", "clipboard"}, nil
		}
		if _, err := c.lookPath("xsel"); err == nil {
			return "xsel", []string{"--clipboard", "--input"}, nil
		}
	}
	return "", nil, ErrNoClipboard
}
