package clip

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// mimePlaceholder in a command argv is replaced with the payload's MIME
// type, e.g. ["wl-copy", "--type", "{mime}"].
const mimePlaceholder = "{mime}"

// Writer puts a payload on the system clipboard.
type Writer interface {
	Copy(ctx context.Context, mime string, data []byte) error
}

// Command writes to the clipboard by piping the payload into an external
// program such as wl-copy or xclip. Wayland compositors only keep clipboard
// contents alive while the owning client runs, which is exactly what the
// dedicated tools handle.
type Command struct {
	argv []string
}

// NewCommand builds a Command from an argv vector.
func NewCommand(argv []string) (*Command, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("empty clipboard command")
	}
	return &Command{argv: argv}, nil
}

func (c *Command) Copy(ctx context.Context, mime string, data []byte) error {
	argv := make([]string, len(c.argv))
	for i, a := range c.argv {
		argv[i] = strings.ReplaceAll(a, mimePlaceholder, mime)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = bytes.NewReader(data)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("clipboard command %s: %s", argv[0], msg)
		}
		return fmt.Errorf("clipboard command %s: %w", argv[0], err)
	}
	return nil
}

// BackendWriter adapts an in-process Backend to the Writer interface. It is
// the fallback when no clipboard command is configured.
type BackendWriter struct {
	Backend Backend
}

func (w BackendWriter) Copy(_ context.Context, mime string, data []byte) error {
	return w.Backend.Write([]Item{{Mime: mime, Data: data}})
}
