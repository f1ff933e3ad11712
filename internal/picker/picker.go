// Package picker runs the external launcher that lets the user choose a
// menu line. The launcher receives one line per menu entry on stdin and is
// expected to print the chosen line to stdout, dmenu style.
package picker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrLauncher reports a launcher that could not be started or that failed
// in a way that is not a user cancellation.
var ErrLauncher = errors.New("launcher failed")

// Picker presents lines and reports the chosen one. ok is false when the
// user dismissed the picker without choosing.
type Picker interface {
	Pick(ctx context.Context, lines []string) (choice string, ok bool, err error)
}

// Func adapts a plain function to the Picker interface.
type Func func(ctx context.Context, lines []string) (string, bool, error)

func (f Func) Pick(ctx context.Context, lines []string) (string, bool, error) {
	return f(ctx, lines)
}

// Launcher invokes an external menu program such as tofi, dmenu or wofi.
type Launcher struct {
	argv []string
}

// NewLauncher builds a Launcher from an argv vector.
func NewLauncher(argv []string) (*Launcher, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("%w: empty launcher command", ErrLauncher)
	}
	return &Launcher{argv: argv}, nil
}

// Pick feeds lines to the launcher and interprets its exit.
//
// Empty stdout means the user cancelled, as does exit status 1 (the dmenu
// convention for escape) with no output. Any other failure is a launcher
// error.
func (l *Launcher) Pick(ctx context.Context, lines []string) (string, bool, error) {
	cmd := exec.CommandContext(ctx, l.argv[0], l.argv[1:]...)
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	choice := strings.TrimRight(stdout.String(), "\n")

	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && choice == "" {
			return "", false, nil
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", false, fmt.Errorf("%w: %s: %s", ErrLauncher, l.argv[0], msg)
		}
		return "", false, fmt.Errorf("%w: %s: %v", ErrLauncher, l.argv[0], err)
	}
	if choice == "" {
		return "", false, nil
	}
	return choice, true, nil
}
