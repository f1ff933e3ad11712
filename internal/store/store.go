// Package store implements the content-addressed blob store backing the
// clipboard history.
//
// Every payload lives in one file under the blob directory, named by its id:
//
//	id = hex(SHA-256(mime || 0x00 || payload))
//
// Blob format:
//
//	<mime>\n
//	<payload bytes, verbatim>
//
// The mime line is the only framing; everything after the first newline is
// the payload, byte for byte. Identical (mime, payload) pairs always map to
// the same file name, so mirroring the directory with a file-sync tool can
// only add or remove whole blobs, never produce a conflicting rename.
//
// Writes go to a temp file in the same directory followed by os.Rename, so
// a reader (or a crash) never observes a half-written blob under its final
// name.
package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxPayload caps stored payloads at 16 MiB.
const DefaultMaxPayload = 16 * 1024 * 1024

var (
	// ErrNotFound is returned by Get when no blob exists for the id.
	ErrNotFound = errors.New("blob not found")

	// ErrTooLarge is returned by Put when the payload exceeds the limit.
	ErrTooLarge = errors.New("payload exceeds size limit")

	// ErrMalformedID marks an id that is not a lowercase hex SHA-256.
	ErrMalformedID = errors.New("malformed blob id")
)

const idLen = sha256.Size * 2 // hex characters

// Store is a content-addressed blob directory.
type Store struct {
	dir        string
	maxPayload int64
}

// New opens (creating if necessary) the blob directory under dir.
func New(dir string, maxPayload int64) (*Store, error) {
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPayload
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &Store{dir: dir, maxPayload: maxPayload}, nil
}

// Dir returns the blob directory path.
func (s *Store) Dir() string { return s.dir }

// ID derives the content id for a (mime, payload) pair. The NUL separator
// keeps the mime/payload boundary unambiguous; mime types never contain NUL.
func ID(mime string, payload []byte) string {
	h := sha256.New()
	h.Write([]byte(mime))
	h.Write([]byte{0})
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// ValidMime reports whether mime is usable as a blob header line.
func ValidMime(mime string) bool {
	return mime != "" && !strings.ContainsAny(mime, "\n\x00")
}

// Put stores the payload and returns its id. Re-putting identical content
// is a no-op returning the same id.
func (s *Store) Put(mime string, payload []byte) (string, error) {
	if !ValidMime(mime) {
		return "", fmt.Errorf("invalid mime type %q", mime)
	}
	if int64(len(payload)) > s.maxPayload {
		return "", fmt.Errorf("%w (%d > %d bytes)", ErrTooLarge, len(payload), s.maxPayload)
	}

	id := ID(mime, payload)
	path := filepath.Join(s.dir, id)
	if _, err := os.Stat(path); err == nil {
		return id, nil
	}

	blob := make([]byte, 0, len(mime)+1+len(payload))
	blob = append(blob, mime...)
	blob = append(blob, '\n')
	blob = append(blob, payload...)

	if err := writeAtomic(s.dir, path, blob); err != nil {
		return "", fmt.Errorf("write blob %s: %w", Short(id), err)
	}
	return id, nil
}

// Get returns the mime type and payload for id. A missing blob reports
// ErrNotFound, an id that is not a content hash ErrMalformedID.
func (s *Store) Get(id string) (string, []byte, error) {
	if err := checkID(id); err != nil {
		return "", nil, err
	}
	blob, err := os.ReadFile(filepath.Join(s.dir, id))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil, fmt.Errorf("%w: %s", ErrNotFound, Short(id))
	}
	if err != nil {
		return "", nil, fmt.Errorf("read blob %s: %w", Short(id), err)
	}

	nl := bytes.IndexByte(blob, '\n')
	if nl < 1 {
		return "", nil, fmt.Errorf("blob %s: missing mime header", Short(id))
	}
	return string(blob[:nl]), blob[nl+1:], nil
}

// Exists reports whether a blob for id is present.
func (s *Store) Exists(id string) bool {
	if checkID(id) != nil {
		return false
	}
	_, err := os.Stat(filepath.Join(s.dir, id))
	return err == nil
}

// Delete removes the blob for id. Deleting an absent blob is not an error.
func (s *Store) Delete(id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob %s: %w", Short(id), err)
	}
	return nil
}

// IDs lists the ids of all stored blobs, in no particular order.
// Stray files that are not well-formed ids are ignored.
func (s *Store) IDs() ([]string, error) {
	dents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	ids := make([]string, 0, len(dents))
	for _, d := range dents {
		if d.IsDir() || checkID(d.Name()) != nil {
			continue
		}
		ids = append(ids, d.Name())
	}
	return ids, nil
}

// checkID rejects anything that is not a lowercase hex SHA-256, which also
// keeps index-supplied names from escaping the blob directory.
func checkID(id string) error {
	if len(id) != idLen {
		return fmt.Errorf("%w %q", ErrMalformedID, id)
	}
	for _, c := range id {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("%w %q", ErrMalformedID, id)
		}
	}
	return nil
}

// Short abbreviates an id for log and error messages.
func Short(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// writeAtomic writes data to path via a temp file in dir plus rename.
func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
