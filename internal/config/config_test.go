package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, toml string) (Config, error) {
	t.Helper()
	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(strings.NewReader(toml)))
	return FromViper(v)
}

func TestDefaults(t *testing.T) {
	c, err := load(t, "")
	require.NoError(t, err)

	assert.Equal(t, 50, c.HistorySize)
	assert.Equal(t, "tofi", c.Launcher[0])
	assert.Equal(t, "wl-copy", c.ClipboardCmd[0])
	assert.Empty(t, c.Favorites)
	assert.Equal(t, int64(16*1024*1024), c.MaxPayloadSize)
	assert.Equal(t, 500*time.Millisecond, c.WatchInterval)
	assert.False(t, c.AllowEmpty)
	assert.NotEmpty(t, c.CacheDir)
	assert.Contains(t, c.BlobDir(), c.CacheDir)
	assert.Contains(t, c.IndexPath(), c.CacheDir)
}

func TestOverrides(t *testing.T) {
	c, err := load(t, `
history_size = 7
launcher = ["fuzzel", "--dmenu"]
clipboard_cmd = ["xclip", "-selection", "clipboard"]
cache_dir = "/tmp/clipstash-test"
max_payload_size = 1024
preview_width = 40
allow_empty = true
watch_interval = "2s"
`)
	require.NoError(t, err)

	assert.Equal(t, 7, c.HistorySize)
	assert.Equal(t, []string{"fuzzel", "--dmenu"}, c.Launcher)
	assert.Equal(t, []string{"xclip", "-selection", "clipboard"}, c.ClipboardCmd)
	assert.Equal(t, "/tmp/clipstash-test", c.CacheDir)
	assert.Equal(t, int64(1024), c.MaxPayloadSize)
	assert.Equal(t, 40, c.PreviewWidth)
	assert.True(t, c.AllowEmpty)
	assert.Equal(t, 2*time.Second, c.WatchInterval)
}

func TestClipboardCmdEmpty(t *testing.T) {
	// An explicit empty list is valid: it selects the in-process backend.
	c, err := load(t, "clipboard_cmd = []")
	require.NoError(t, err)
	assert.Empty(t, c.ClipboardCmd)
}

func TestFavoritesArrayOfTables(t *testing.T) {
	c, err := load(t, `
[[favorites]]
label = "email"
text = "me@example.com"

[[favorites]]
label = "shrug"
text = "¯\\_(ツ)_/¯"
`)
	require.NoError(t, err)

	require.Len(t, c.Favorites, 2)
	assert.Equal(t, Favorite{Label: "email", Text: "me@example.com"}, c.Favorites[0])
	assert.Equal(t, "shrug", c.Favorites[1].Label)
}

func TestFavoritesTable(t *testing.T) {
	c, err := load(t, `
[favorites]
zeta = "last alphabetically"
alpha = "first alphabetically"
`)
	require.NoError(t, err)

	require.Len(t, c.Favorites, 2)
	assert.Equal(t, "alpha", c.Favorites[0].Label, "table favorites list in sorted-label order")
	assert.Equal(t, "zeta", c.Favorites[1].Label)
}

func TestInvalid(t *testing.T) {
	cases := map[string]string{
		"zero history_size":     "history_size = 0",
		"negative history_size": "history_size = -3",
		"empty launcher":        "launcher = []",
		"blank clipboard_cmd":   "clipboard_cmd = [\"\"]",
		"favorite not a table":  "favorites = [\"oops\"]",
		"favorite without text": "[[favorites]]\nlabel = \"x\"",
		"favorites wrong type":  "favorites = 42",
	}
	for name, toml := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := load(t, toml)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
