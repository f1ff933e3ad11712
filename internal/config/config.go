// Package config defines the per-invocation configuration consumed by every
// clipstash component. Values are read once from an already-bound viper
// instance and passed down explicitly; nothing reads process-wide state
// after startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalid marks configuration that parsed but cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Favorite is one user-configured permanent text entry.
type Favorite struct {
	Label string
	Text  string
}

// Config carries everything an invocation needs. Zero values never survive
// FromViper; defaults are filled in for any key the user did not set.
type Config struct {
	// HistorySize bounds the history index (entries, not bytes).
	HistorySize int

	// Launcher is the picker argv: program name followed by its arguments.
	Launcher []string

	// Favorites are listed ahead of history entries, in order.
	Favorites []Favorite

	// ClipboardCmd is the argv of the external clipboard-set utility.
	// A literal "{mime}" argument is replaced with the payload's mime type;
	// the payload itself is always piped to stdin. Setting an empty list
	// selects the in-process clipboard backend instead.
	ClipboardCmd []string

	// CacheDir holds the blob directory and the index file.
	CacheDir string

	MaxPayloadSize int64
	PreviewWidth   int
	AllowEmpty     bool
	WatchInterval  time.Duration
}

const (
	defaultHistorySize    = 50
	defaultMaxPayloadSize = 16 * 1024 * 1024
	defaultPreviewWidth   = 100
	defaultWatchInterval  = 500 * time.Millisecond
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HistorySize:    defaultHistorySize,
		Launcher:       []string{"tofi", "--fuzzy-match=true", "--prompt-text=clipstash: "},
		ClipboardCmd:   []string{"wl-copy", "--type", "{mime}"},
		CacheDir:       defaultCacheDir(),
		MaxPayloadSize: defaultMaxPayloadSize,
		PreviewWidth:   defaultPreviewWidth,
		WatchInterval:  defaultWatchInterval,
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "clipstash")
	}
	return filepath.Join(os.TempDir(), "clipstash")
}

// BlobDir returns the content-store directory inside the cache dir.
func (c Config) BlobDir() string { return filepath.Join(c.CacheDir, "blobs") }

// IndexPath returns the history index file inside the cache dir.
func (c Config) IndexPath() string { return filepath.Join(c.CacheDir, "index.jsonl") }

// FromViper builds a Config from a bound viper instance, applying defaults
// for unset keys and validating the rest.
func FromViper(v *viper.Viper) (Config, error) {
	c := Default()

	if v.IsSet("history_size") {
		c.HistorySize = v.GetInt("history_size")
	}
	if c.HistorySize < 1 {
		return Config{}, fmt.Errorf("%w: history_size must be positive, got %d", ErrInvalid, c.HistorySize)
	}

	if v.IsSet("launcher") {
		c.Launcher = v.GetStringSlice("launcher")
	}
	if len(c.Launcher) == 0 || c.Launcher[0] == "" {
		return Config{}, fmt.Errorf("%w: launcher must name a program", ErrInvalid)
	}

	if v.IsSet("clipboard_cmd") {
		// An explicitly empty list means the in-process backend.
		c.ClipboardCmd = v.GetStringSlice("clipboard_cmd")
	}
	if len(c.ClipboardCmd) > 0 && c.ClipboardCmd[0] == "" {
		return Config{}, fmt.Errorf("%w: clipboard_cmd must name a program", ErrInvalid)
	}

	if dir := v.GetString("cache_dir"); dir != "" {
		c.CacheDir = dir
	}
	if n := v.GetInt64("max_payload_size"); n > 0 {
		c.MaxPayloadSize = n
	}
	if n := v.GetInt("preview_width"); n > 0 {
		c.PreviewWidth = n
	}
	c.AllowEmpty = v.GetBool("allow_empty")
	if d := v.GetDuration("watch_interval"); d > 0 {
		c.WatchInterval = d
	}

	favs, err := parseFavorites(v.Get("favorites"))
	if err != nil {
		return Config{}, err
	}
	c.Favorites = favs

	return c, nil
}

// parseFavorites accepts the two TOML shapes for favorites:
//
//	[[favorites]]              # array of tables, declaration order kept
//	label = "email"
//	text  = "me@example.com"
//
//	[favorites]                # plain table, listed in sorted-label order
//	email = "me@example.com"
func parseFavorites(raw any) ([]Favorite, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil

	case []map[string]any:
		items := make([]any, len(val))
		for i, m := range val {
			items[i] = m
		}
		return favoritesFromTables(items)

	case []any:
		return favoritesFromTables(val)

	case map[string]any:
		labels := make([]string, 0, len(val))
		for label := range val {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		favs := make([]Favorite, 0, len(labels))
		for _, label := range labels {
			text, ok := val[label].(string)
			if !ok {
				return nil, fmt.Errorf("%w: favorite %q is not a string", ErrInvalid, label)
			}
			favs = append(favs, Favorite{Label: label, Text: text})
		}
		return favs, nil

	default:
		return nil, fmt.Errorf("%w: favorites must be a table or an array of tables", ErrInvalid)
	}
}

func favoritesFromTables(items []any) ([]Favorite, error) {
	favs := make([]Favorite, 0, len(items))
	for i, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: favorites[%d] is not a table", ErrInvalid, i)
		}
		label, lok := entry["label"].(string)
		text, tok := entry["text"].(string)
		if !lok || !tok || label == "" {
			return nil, fmt.Errorf("%w: favorites[%d] needs string label and text", ErrInvalid, i)
		}
		favs = append(favs, Favorite{Label: label, Text: text})
	}
	return favs, nil
}
