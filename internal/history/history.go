// Package history maintains the ordered, capacity-bounded index of clip ids.
//
// The index is persisted as newline-delimited JSON, one record per line,
// most-recent-first:
//
//	{"id":"<hex sha-256>","created_at":"…","last_used_at":"…"}
//
// The whole file is rewritten through a temp file and os.Rename after every
// mutation, so concurrent readers (and crashes) see either the old or the
// new index, never a torn one. A missing, unreadable, or corrupt file
// degrades to an empty history with a warning; the index is bookkeeping,
// the payloads themselves live in the blob store.
package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Entry is one recorded clip id with its recency bookkeeping.
type Entry struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// Index is the most-recent-first id sequence, bounded at size entries.
// It is not safe for concurrent use; every invocation is a separate process
// and cross-process races resolve to last-rename-wins.
type Index struct {
	path    string
	size    int
	entries []Entry

	// evict is called for each id trimmed off the tail. May be nil.
	evict func(id string)

	now func() time.Time
}

// Load reads the index at path, degrading to an empty index on any read or
// parse problem. size bounds the in-memory sequence immediately; entries
// beyond it (for example after syncing in a larger index from another
// machine) are dropped without evicting blobs: the read path never writes.
func Load(path string, size int, evict func(id string)) *Index {
	if size < 1 {
		size = 1
	}
	ix := &Index{
		path:  path,
		size:  size,
		evict: evict,
		now:   func() time.Time { return time.Now().UTC() },
	}

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("history index unreadable, starting empty", "path", path, "err", err)
		}
		return ix
	}
	defer f.Close()

	seen := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil || e.ID == "" {
			slog.Warn("skipping corrupt history line", "path", path, "line", n)
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		ix.entries = append(ix.entries, e)
	}
	if err := sc.Err(); err != nil {
		slog.Warn("history index truncated while reading", "path", path, "err", err)
	}
	if len(ix.entries) > size {
		slog.Debug("history index over capacity, dropping tail",
			"have", len(ix.entries), "size", size)
		ix.entries = ix.entries[:size]
	}
	return ix
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int { return len(ix.entries) }

// Entries returns a copy of the index, most-recent-first.
func (ix *Index) Entries() []Entry {
	out := make([]Entry, len(ix.entries))
	copy(out, ix.entries)
	return out
}

// Front returns the most recent entry, if any.
func (ix *Index) Front() (Entry, bool) {
	if len(ix.entries) == 0 {
		return Entry{}, false
	}
	return ix.entries[0], true
}

// Record moves id to the front, refreshing last_used_at, inserting it as a
// new entry if absent. Entries trimmed off the tail to stay within capacity
// are passed to the evict hook. The index file is rewritten before Record
// returns.
func (ix *Index) Record(id string) error {
	now := ix.now()
	if i := ix.find(id); i >= 0 {
		e := ix.entries[i]
		e.LastUsedAt = now
		ix.entries = append(ix.entries[:i], ix.entries[i+1:]...)
		ix.entries = append([]Entry{e}, ix.entries...)
	} else {
		ix.entries = append([]Entry{{ID: id, CreatedAt: now, LastUsedAt: now}}, ix.entries...)
		ix.trim()
	}
	return ix.save()
}

// Remove drops id from the index, if present. The blob is not touched; use
// the evict hook semantics only for capacity trims. Removing an absent id
// is a no-op that does not rewrite the file.
func (ix *Index) Remove(id string) error {
	i := ix.find(id)
	if i < 0 {
		return nil
	}
	ix.entries = append(ix.entries[:i], ix.entries[i+1:]...)
	return ix.save()
}

// Clear empties the index and rewrites the file.
func (ix *Index) Clear() error {
	ix.entries = nil
	return ix.save()
}

// Merge folds incoming entries into the index: an id already present keeps
// its earliest created_at and the newer last_used_at, a new id is inserted.
// The result is re-sorted most-recently-used-first and trimmed to capacity
// with the evict hook.
func (ix *Index) Merge(incoming []Entry) error {
	for _, in := range incoming {
		if in.ID == "" {
			continue
		}
		if i := ix.find(in.ID); i >= 0 {
			cur := &ix.entries[i]
			if in.CreatedAt.Before(cur.CreatedAt) && !in.CreatedAt.IsZero() {
				cur.CreatedAt = in.CreatedAt
			}
			if in.LastUsedAt.After(cur.LastUsedAt) {
				cur.LastUsedAt = in.LastUsedAt
			}
		} else {
			ix.entries = append(ix.entries, in)
		}
	}
	sort.SliceStable(ix.entries, func(a, b int) bool {
		return ix.entries[a].LastUsedAt.After(ix.entries[b].LastUsedAt)
	})
	ix.trim()
	return ix.save()
}

func (ix *Index) find(id string) int {
	for i, e := range ix.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (ix *Index) trim() {
	for len(ix.entries) > ix.size {
		last := ix.entries[len(ix.entries)-1]
		ix.entries = ix.entries[:len(ix.entries)-1]
		if ix.evict != nil {
			ix.evict(last.ID)
		}
	}
}

func (ix *Index) save() error {
	var buf bytes.Buffer
	for _, e := range ix.entries {
		line, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode history entry: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if err := writeAtomic(ix.path, buf.Bytes()); err != nil {
		return fmt.Errorf("write history index: %w", err)
	}
	return nil
}

// writeAtomic writes data to path via a temp file in the same directory
// plus rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
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
