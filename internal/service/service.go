// Package service wires the content store, history index, menu, picker and
// clipboard writer into the operations the CLI exposes.
package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/clipstash/clipstash/internal/clip"
	"github.com/clipstash/clipstash/internal/config"
	"github.com/clipstash/clipstash/internal/history"
	"github.com/clipstash/clipstash/internal/menu"
	"github.com/clipstash/clipstash/internal/picker"
	"github.com/clipstash/clipstash/internal/store"
)

// ErrNoEntry is returned by Get for a position outside the current history.
var ErrNoEntry = errors.New("no such history entry")

// Service orchestrates one clipstash invocation.
type Service struct {
	cfg    *config.Config
	store  *store.Store
	index  *history.Index
	picker picker.Picker
	writer clip.Writer
	now    func() time.Time
}

// New builds a Service from fully constructed parts. Operations that never
// touch the picker or writer tolerate nil for them.
func New(cfg *config.Config, st *store.Store, ix *history.Index, p picker.Picker, w clip.Writer) *Service {
	return &Service{cfg: cfg, store: st, index: ix, picker: p, writer: w, now: time.Now}
}

// Open builds a Service on cfg's cache directory, wiring history eviction to
// blob deletion.
func Open(cfg *config.Config, p picker.Picker, w clip.Writer) (*Service, error) {
	st, err := store.New(cfg.BlobDir(), cfg.MaxPayloadSize)
	if err != nil {
		return nil, err
	}
	ix := history.Load(cfg.IndexPath(), cfg.HistorySize, func(id string) {
		if err := st.Delete(id); err != nil {
			slog.Warn("evicted blob not deleted", "id", store.Short(id), "err", err)
		}
	})
	return New(cfg, st, ix, p, w), nil
}

// Store ingests one clipboard payload. Events that should not disturb the
// history (empty payloads, oversized payloads, a repeat of the current front
// entry) are absorbed without error so a clipboard watcher can feed every
// change through unconditionally.
func (s *Service) Store(mime string, payload []byte) error {
	if len(payload) == 0 && !s.cfg.AllowEmpty {
		slog.Debug("empty payload absorbed")
		return nil
	}
	if int64(len(payload)) > s.cfg.MaxPayloadSize {
		slog.Warn("oversized payload absorbed",
			"size", len(payload), "limit", s.cfg.MaxPayloadSize)
		return nil
	}

	id := store.ID(mime, payload)
	if front, ok := s.index.Front(); ok && front.ID == id {
		slog.Debug("front entry repeated, absorbed", "id", store.Short(id))
		return nil
	}

	if _, err := s.store.Put(mime, payload); err != nil {
		return fmt.Errorf("store payload: %w", err)
	}
	if err := s.index.Record(id); err != nil {
		return fmt.Errorf("record history entry: %w", err)
	}
	slog.Info("stored", "id", store.Short(id), "mime", mime, "size", len(payload))
	return nil
}

// Select presents favorites and history through the picker and copies the
// chosen entry to the clipboard. Cancellation is not an error and changes
// nothing.
func (s *Service) Select(ctx context.Context) error {
	entries := s.loadEntries()
	clips := make([]menu.Clip, len(entries))
	for i, e := range entries {
		clips[i] = menu.Clip{ID: e.ID, Mime: e.Mime, Payload: e.Payload, LastUsedAt: e.LastUsedAt}
	}
	m := menu.Build(s.cfg.Favorites, clips, menu.Options{
		PreviewWidth: s.cfg.PreviewWidth,
		Now:          s.now(),
	})
	if m.Len() == 0 {
		slog.Info("nothing to select")
		return nil
	}

	choice, ok, err := s.picker.Pick(ctx, m.Lines())
	if err != nil {
		return err
	}
	if !ok {
		slog.Debug("selection cancelled")
		return nil
	}

	it, err := m.Resolve(choice)
	if err != nil {
		return err
	}
	switch it.Kind {
	case menu.KindFavorite:
		if err := s.writer.Copy(ctx, "text/plain", []byte(it.Text)); err != nil {
			return err
		}
		slog.Info("copied favorite", "label", it.Label)
	case menu.KindHistory:
		if err := s.writer.Copy(ctx, it.Mime, it.Payload); err != nil {
			return err
		}
		if err := s.index.Record(it.ID); err != nil {
			return fmt.Errorf("refresh history entry: %w", err)
		}
		slog.Info("copied history entry", "id", store.Short(it.ID), "mime", it.Mime)
	}
	return nil
}

// ListEntry pairs an index entry with its resolved content. Pos is 1-based
// and matches what Get expects.
type ListEntry struct {
	Pos int
	history.Entry
	Mime    string
	Payload []byte
}

// List returns the history most-recent-first with contents resolved.
func (s *Service) List() []ListEntry {
	return s.loadEntries()
}

// Get returns the mime and payload of the pos-th most recent entry without
// refreshing its recency.
func (s *Service) Get(pos int) (string, []byte, error) {
	entries := s.loadEntries()
	if pos < 1 || pos > len(entries) {
		return "", nil, fmt.Errorf("position %d: %w", pos, ErrNoEntry)
	}
	return entries[pos-1].Mime, entries[pos-1].Payload, nil
}

// Clear drops every history entry and every stored blob. Blob deletion is
// best-effort; a leftover blob is unreferenced garbage that Sweep picks up.
func (s *Service) Clear() error {
	if err := s.index.Clear(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	ids, err := s.store.IDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.store.Delete(id); err != nil {
			slog.Warn("blob not deleted", "id", store.Short(id), "err", err)
		}
	}
	slog.Info("history cleared", "blobs", len(ids))
	return nil
}

// Sweep deletes blobs no history entry references and returns how many went.
func (s *Service) Sweep() (int, error) {
	referenced := make(map[string]bool, s.index.Len())
	for _, e := range s.index.Entries() {
		referenced[e.ID] = true
	}
	ids, err := s.store.IDs()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, id := range ids {
		if referenced[id] {
			continue
		}
		if err := s.store.Delete(id); err != nil {
			slog.Warn("blob not deleted", "id", store.Short(id), "err", err)
			continue
		}
		removed++
	}
	slog.Info("swept unreferenced blobs", "removed", removed)
	return removed, nil
}

// Watch feeds clipboard changes from the backend into Store until ctx is
// cancelled.
func (s *Service) Watch(ctx context.Context, b clip.Backend) error {
	slog.Info("watching clipboard", "backend", b.Name())
	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil
		case <-b.Watch():
			items, err := b.Read()
			if err != nil {
				slog.Warn("clipboard read failed", "err", err)
				continue
			}
			for _, it := range items {
				if err := s.Store(it.Mime, it.Data); err != nil {
					slog.Error("store failed", "err", err)
				}
			}
		}
	}
}

// exportRecord is one line of the export stream. Data rides on
// encoding/json's base64 encoding of []byte.
type exportRecord struct {
	ID         string    `json:"id"`
	Mime       string    `json:"mime"`
	Data       []byte    `json:"data"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// Export writes the history as newline-delimited JSON, most-recent-first.
func (s *Service) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, e := range s.loadEntries() {
		rec := exportRecord{
			ID:         e.ID,
			Mime:       e.Mime,
			Data:       e.Payload,
			CreatedAt:  e.CreatedAt,
			LastUsedAt: e.LastUsedAt,
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("export entry %s: %w", store.Short(e.ID), err)
		}
	}
	return nil
}

// Import reads an export stream and folds it into the history, keeping the
// newer recency per id. With replace the current index is dropped first.
// Records whose id does not match their content are skipped; ids are
// derived, never trusted.
func (s *Service) Import(r io.Reader, replace bool) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), importMaxRecord(s.cfg.MaxPayloadSize))

	var incoming []history.Entry
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec exportRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			slog.Warn("unparsable import record, skipping", "line", line, "err", err)
			continue
		}
		id := store.ID(rec.Mime, rec.Data)
		if rec.ID != "" && rec.ID != id {
			slog.Warn("import record id does not match content, skipping",
				"line", line, "id", store.Short(rec.ID))
			continue
		}
		if _, err := s.store.Put(rec.Mime, rec.Data); err != nil {
			slog.Warn("import record rejected, skipping", "line", line, "err", err)
			continue
		}
		incoming = append(incoming, history.Entry{
			ID:         id,
			CreatedAt:  rec.CreatedAt,
			LastUsedAt: rec.LastUsedAt,
		})
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read import stream: %w", err)
	}

	if replace {
		if err := s.index.Clear(); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
	}
	if err := s.index.Merge(incoming); err != nil {
		return fmt.Errorf("merge history: %w", err)
	}
	slog.Info("imported", "entries", len(incoming))
	return nil
}

// importMaxRecord sizes the line buffer for one export record: the payload
// inflates by 4/3 in base64, plus the JSON envelope.
func importMaxRecord(maxPayload int64) int {
	return int(maxPayload/3*4) + 4096
}

// loadEntries resolves every index entry against the store,
// most-recent-first. Entries whose blob disappeared or whose id is not a
// content hash at all (external cleanup, partial sync, a hand-edited index)
// are pruned from the index on the spot so positions stay stable across
// list, get and select.
func (s *Service) loadEntries() []ListEntry {
	entries := s.index.Entries()
	out := make([]ListEntry, 0, len(entries))
	for _, e := range entries {
		mime, payload, err := s.store.Get(e.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrMalformedID) {
				slog.Warn("history entry has no usable blob, pruning",
					"id", store.Short(e.ID), "err", err)
				if err := s.index.Remove(e.ID); err != nil {
					slog.Warn("prune failed", "id", store.Short(e.ID), "err", err)
				}
				continue
			}
			slog.Warn("unreadable blob, skipping", "id", store.Short(e.ID), "err", err)
			continue
		}
		out = append(out, ListEntry{
			Pos:     len(out) + 1,
			Entry:   e,
			Mime:    mime,
			Payload: payload,
		})
	}
	return out
}
