//go:build linux || darwin || windows

package clip

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.design/x/clipboard"
)

type pollBackend struct {
	interval time.Duration
	watchCh  chan struct{}
	done     chan struct{}
	lastText []byte
	lastImg  []byte
}

// New returns the polling clipboard backend, or a headless no-op backend if
// the display environment is unavailable. clipboard.Init is called here
// rather than in init() so that sub-commands that never touch the clipboard
// don't trigger the warning.
func New(interval time.Duration) Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return newHeadless()
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	b := &pollBackend{
		interval: interval,
		watchCh:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go b.poll()
	return b
}

func (b *pollBackend) Name() string { return "system clipboard (poll)" }

func (b *pollBackend) poll() {
	t := time.NewTicker(b.interval)
	defer t.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			text := clipboard.Read(clipboard.FmtText)
			img := clipboard.Read(clipboard.FmtImage)
			if !bytes.Equal(text, b.lastText) || !bytes.Equal(img, b.lastImg) {
				b.lastText = text
				b.lastImg = img
				select {
				case b.watchCh <- struct{}{}:
				default:
				}
			}
		}
	}
}

func (b *pollBackend) Read() ([]Item, error) {
	var items []Item
	if text := clipboard.Read(clipboard.FmtText); text != nil {
		items = append(items, Item{Mime: "text/plain", Data: text})
	}
	if img := clipboard.Read(clipboard.FmtImage); img != nil {
		items = append(items, Item{Mime: "image/png", Data: img})
	}
	return items, nil
}

func (b *pollBackend) Write(items []Item) error {
	for _, it := range items {
		switch {
		case strings.HasPrefix(it.Mime, "text/"):
			clipboard.Write(clipboard.FmtText, it.Data)
		case it.Mime == "image/png":
			clipboard.Write(clipboard.FmtImage, it.Data)
		default:
			return fmt.Errorf("unsupported MIME type: %s", it.Mime)
		}
	}
	return nil
}

func (b *pollBackend) Watch() <-chan struct{} { return b.watchCh }
func (b *pollBackend) Close()                { close(b.done) }
