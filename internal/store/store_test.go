package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "blobs"), 0)
	require.NoError(t, err)
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	t.Run("text", func(t *testing.T) {
		id, err := s.Put("text/plain", []byte("hello\nworld"))
		require.NoError(t, err)
		require.Len(t, id, 64)

		mime, payload, err := s.Get(id)
		require.NoError(t, err)
		assert.Equal(t, "text/plain", mime)
		assert.Equal(t, []byte("hello\nworld"), payload)
	})

	t.Run("binary with NULs and newlines", func(t *testing.T) {
		raw := []byte{0x89, 'P', 'N', 'G', '\n', 0x00, 0xff, '\r', '\n', 0x00}
		id, err := s.Put("image/png", raw)
		require.NoError(t, err)

		mime, payload, err := s.Get(id)
		require.NoError(t, err)
		assert.Equal(t, "image/png", mime)
		assert.Equal(t, raw, payload)
	})

	t.Run("empty payload", func(t *testing.T) {
		id, err := s.Put("text/plain", nil)
		require.NoError(t, err)

		mime, payload, err := s.Get(id)
		require.NoError(t, err)
		assert.Equal(t, "text/plain", mime)
		assert.Empty(t, payload)
	})
}

func TestIDDerivation(t *testing.T) {
	payload := []byte("same bytes")

	assert.Equal(t, ID("text/plain", payload), ID("text/plain", payload),
		"identical (mime, payload) must derive the same id")
	assert.NotEqual(t, ID("text/plain", payload), ID("text/html", payload),
		"mime type must distinguish otherwise-identical payloads")
	assert.NotEqual(t, ID("a", []byte("bc")), ID("ab", []byte("c")),
		"mime/payload boundary must not be ambiguous")
}

func TestPutIdempotent(t *testing.T) {
	s := newTestStore(t)

	id1, err := s.Put("text/plain", []byte("dup"))
	require.NoError(t, err)
	id2, err := s.Put("text/plain", []byte("dup"))
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	ids, err := s.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{id1}, ids, "re-putting must not create a second blob")
}

func TestPutRejects(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "blobs"), 8)
	require.NoError(t, err)

	_, err = s.Put("text/plain", []byte("123456789"))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = s.Put("", []byte("x"))
	assert.Error(t, err)
	_, err = s.Put("text/\nplain", []byte("x"))
	assert.Error(t, err)

	ids, err := s.IDs()
	require.NoError(t, err)
	assert.Empty(t, ids, "rejected puts must leave nothing behind")
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.Get(ID("text/plain", []byte("never stored")))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMalformedID(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{
		"",
		"short",
		"../../../../etc/passwd",
		"ZZ" + ID("text/plain", nil)[2:],
	} {
		_, _, err := s.Get(id)
		assert.ErrorIs(t, err, ErrMalformedID, "id %q", id)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.False(t, s.Exists(id))
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Put("text/plain", []byte("gone soon"))
	require.NoError(t, err)
	require.True(t, s.Exists(id))

	require.NoError(t, s.Delete(id))
	assert.False(t, s.Exists(id))

	// Deleting again is fine.
	assert.NoError(t, s.Delete(id))
}

func TestIDsIgnoresStrayFiles(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Put("text/plain", []byte("kept"))
	require.NoError(t, err)

	// A leftover temp file from an interrupted write must not surface.
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), ".tmp-123"), []byte("junk"), 0o600))

	ids, err := s.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)
}
