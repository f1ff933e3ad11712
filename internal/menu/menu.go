// Package menu builds the picker menu and maps a picked line back to the
// entry it stands for.
//
// Every display line carries a 1-based ordinal prefix:
//
//	<n>\t<rendered entry>
//
// The ordinal, not the rendered text, is what Resolve trusts: two entries
// that happen to render identically (same favorite text, same truncated
// preview) still resolve to the exact entry the user picked. Favorites are
// listed first, marked with a star, then history entries most-recent-first.
package menu

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/clipstash/clipstash/internal/config"
)

// favoriteMarker distinguishes favorites from history entries on screen.
const favoriteMarker = "★ "

// Kind says where a menu item came from.
type Kind int

const (
	KindFavorite Kind = iota
	KindHistory
)

// Clip is a history entry resolved to its content, ready for rendering.
type Clip struct {
	ID         string
	Mime       string
	Payload    []byte
	LastUsedAt time.Time
}

// Item is one menu line plus the side-table record behind it.
type Item struct {
	Line string
	Kind Kind

	// Favorite fields
	Label string
	Text  string

	// History fields
	ID      string
	Mime    string
	Payload []byte
}

// Menu is an ordered list of items with positional resolution.
type Menu struct {
	items []Item
}

// Options tune rendering.
type Options struct {
	PreviewWidth int
	Now          time.Time // zero means time.Now()
}

// Build assembles the menu: favorites first (declaration order), then clips.
func Build(favorites []config.Favorite, clips []Clip, opts Options) *Menu {
	if opts.PreviewWidth < 1 {
		opts.PreviewWidth = 100
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	m := &Menu{items: make([]Item, 0, len(favorites)+len(clips))}
	for _, f := range favorites {
		m.append(Item{
			Kind:  KindFavorite,
			Label: f.Label,
			Text:  f.Text,
		}, favoriteMarker+Preview([]byte(f.Label), opts.PreviewWidth))
	}
	for _, c := range clips {
		m.append(Item{
			Kind:    KindHistory,
			ID:      c.ID,
			Mime:    c.Mime,
			Payload: c.Payload,
		}, renderClip(c, opts))
	}
	return m
}

func (m *Menu) append(it Item, rendered string) {
	it.Line = fmt.Sprintf("%d\t%s", len(m.items)+1, rendered)
	m.items = append(m.items, it)
}

// Len returns the number of menu items.
func (m *Menu) Len() int { return len(m.items) }

// Lines returns the display lines in order, ready for the picker's stdin.
func (m *Menu) Lines() []string {
	lines := make([]string, len(m.items))
	for i, it := range m.items {
		lines[i] = it.Line
	}
	return lines
}

// Resolve maps the picker's echoed line back to an item. The ordinal prefix
// is authoritative; if it is missing or out of range, an exact-line scan is
// the fallback. Positional lookup means display-identical entries cannot
// shadow each other.
func (m *Menu) Resolve(line string) (Item, error) {
	line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
	if line == "" {
		return Item{}, fmt.Errorf("empty selection")
	}

	if prefix, _, ok := strings.Cut(line, "\t"); ok {
		if n, err := strconv.Atoi(prefix); err == nil && n >= 1 && n <= len(m.items) {
			it := m.items[n-1]
			if it.Line != line {
				slog.Debug("selection text differs from menu line, trusting ordinal",
					"ordinal", n)
			}
			return it, nil
		}
	}

	for _, it := range m.items {
		if it.Line == line {
			return it, nil
		}
	}
	return Item{}, fmt.Errorf("selection %q does not match any menu entry", line)
}

func renderClip(c Clip, opts Options) string {
	if strings.HasPrefix(c.Mime, "text/") {
		if p := Preview(c.Payload, opts.PreviewWidth); p != "" {
			return p
		}
	}
	return fmt.Sprintf("[%s %s] %s", c.Mime, FmtSize(len(c.Payload)), Age(c.LastUsedAt, opts.Now))
}

// Preview renders the first line of a text payload for single-line display:
// tabs and carriage returns become spaces, the rest of a multi-line payload
// collapses into an ellipsis, and the result is cut at width runes.
func Preview(payload []byte, width int) string {
	text := string(payload)
	text, more, _ := strings.Cut(text, "\n")
	text = strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\r':
			return ' '
		}
		return r
	}, text)
	text = strings.TrimSpace(text)

	runes := []rune(text)
	truncated := more != ""
	if len(runes) > width {
		runes = runes[:width]
		truncated = true
	}
	text = string(runes)
	if truncated && text != "" {
		text += "…"
	}
	return text
}

// Age renders t relative to now: recent entries as "Ns/Nm/Nh ago", older
// ones as a short date.
func Age(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	age := now.Sub(t).Round(time.Second)
	switch {
	case age < time.Minute:
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return t.Format("Jan 2 15:04")
	}
}

// FmtSize renders a byte count for human eyes.
func FmtSize(n int) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%dB", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1fKiB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1fMiB", float64(n)/(1024*1024))
	}
}
