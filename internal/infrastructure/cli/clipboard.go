package cli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Clipboard copies text with the platform's clipboard tool.
type Clipboard struct {
	goos     string
	lookPath func(string) (string, error)
}

// NewClipboard builds the clipboard helper.
func NewClipboard() *Clipboard {
	return &Clipboard{goos: runtime.GOOS, lookPath: exec.LookPath}
}

// command picks the tool for the current platform.
func (c *Clipboard) command() ([]string, error) {
	switch c.goos {
	case "darwin":
		return []string{"pbcopy"}, nil
	case "windows":
		return []string{"clip"}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		for _, argv := range [][]string{
			{"wl-copy"},
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
		} {
			if _, err := c.lookPath(argv[0]); err == nil {
				return argv, nil
			}
		}
		return nil, fmt.Errorf("clipboard utilities not found (install wl-copy, xclip or xsel)")
	default:
		return nil, fmt.Errorf("clipboard not supported on %s", c.goos)
	}
}

// Copy copies text to the system clipboard.
func (c *Clipboard) Copy(ctx context.Context, text string) error {
	argv, err := c.command()
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = bytes.NewBufferString(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", argv[0], err, bytes.TrimSpace(out))
	}
	return nil
}
