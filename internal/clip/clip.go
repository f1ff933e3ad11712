// Package clip talks to the system clipboard. Build constraints select the
// implementation:
//
//	clip_poll.go   Linux, macOS, Windows via golang.design/x/clipboard, polling
//	clip_other.go  headless / container stub
//
// Clipboard restores normally go through an external command (wl-copy and
// friends, see Command); the in-process backend is the fallback when none is
// configured, and the only way to watch for changes.
package clip

// Item is one typed representation of the clipboard contents.
type Item struct {
	Mime string
	Data []byte
}

// Backend is the interface platform clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Read returns the current clipboard contents, one item per supported
	// format. Returns nil, nil when the clipboard is empty.
	Read() ([]Item, error)

	// Write replaces the clipboard contents.
	Write(items []Item) error

	// Watch returns a channel that receives a signal whenever the clipboard
	// changes. The channel is never closed; the caller should Read() on each
	// signal.
	Watch() <-chan struct{}

	// Close releases any resources held by the backend.
	Close()
}
