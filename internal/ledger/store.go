// Package ledger owns the authoritative list of entries and keeps it in a
// single persisted slot.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"registros/internal/core"
	"registros/internal/slot"
)

// SlotKey is the fixed name of the persisted slot.
const SlotKey = "db_items"

var ErrPositionOutOfRange = errors.New("position out of range")

// Store holds the in-memory ledger and its persisted copy. Every mutation
// rewrites the whole slot; memory only changes once the write succeeded.
//
// Store is not safe for concurrent use; callers serialize access.
type Store struct {
	slot    slot.Slot
	logger  *slog.Logger
	entries []core.Entry
}

func NewStore(s slot.Slot, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{slot: s, logger: logger, entries: []core.Entry{}}
}

// Load reads the slot into memory and returns a copy of the entries. A missing,
// unreadable or corrupt slot yields an empty ledger.
func (s *Store) Load(ctx context.Context) []core.Entry {
	s.entries = s.read(ctx)
	return s.Entries()
}

func (s *Store) read(ctx context.Context) []core.Entry {
	data, ok, err := s.slot.Get(ctx, SlotKey)
	if err != nil {
		s.logger.WarnContext(ctx, "Slot read failed, starting with an empty ledger", "key", SlotKey, "error", err)
		return []core.Entry{}
	}
	if !ok {
		return []core.Entry{}
	}
	entries, err := Decode(data)
	if err != nil {
		s.logger.WarnContext(ctx, "Slot content unparseable, starting with an empty ledger", "key", SlotKey, "bytes", len(data), "error", err)
		return []core.Entry{}
	}
	return entries
}

// Save overwrites the slot with the full sequence and makes it the in-memory
// ledger.
func (s *Store) Save(ctx context.Context, entries []core.Entry) error {
	next := withIDs(entries)
	data, err := Encode(next)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := s.slot.Set(ctx, SlotKey, data); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	s.entries = next
	s.logger.DebugContext(ctx, "Ledger saved", "key", SlotKey, "entries", len(next), "bytes", len(data))
	return nil
}

// Append adds e at the end of the ledger and saves.
func (s *Store) Append(ctx context.Context, e core.Entry) error {
	next := make([]core.Entry, 0, len(s.entries)+1)
	next = append(append(next, s.entries...), e)
	return s.Save(ctx, next)
}

// RemoveAt deletes the entry at the 0-based index and saves. It returns the
// removed entry.
func (s *Store) RemoveAt(ctx context.Context, index int) (core.Entry, error) {
	if index < 0 || index >= len(s.entries) {
		return core.Entry{}, fmt.Errorf("%w: %d (ledger has %d entries)", ErrPositionOutOfRange, index, len(s.entries))
	}
	removed := s.entries[index]
	next := make([]core.Entry, 0, len(s.entries)-1)
	next = append(append(next, s.entries[:index]...), s.entries[index+1:]...)
	if err := s.Save(ctx, next); err != nil {
		return core.Entry{}, err
	}
	return removed, nil
}

// Clear deletes the slot itself, rather than saving an empty ledger, and
// resets memory.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.slot.Delete(ctx, SlotKey); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	s.entries = []core.Entry{}
	return nil
}

// Entries returns a copy of the in-memory ledger.
func (s *Store) Entries() []core.Entry {
	return append([]core.Entry{}, s.entries...)
}

// At returns the entry at index.
func (s *Store) At(index int) (core.Entry, bool) {
	if index < 0 || index >= len(s.entries) {
		return core.Entry{}, false
	}
	return s.entries[index], true
}

func (s *Store) Len() int { return len(s.entries) }

// Encode serializes entries the way the slot stores them: a JSON array, never
// null, without HTML escaping and without a trailing newline.
func Encode(entries []core.Entry) ([]byte, error) {
	if entries == nil {
		entries = []core.Entry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode parses slot content. JSON null decodes to an empty ledger. Each
// entry gets a fresh process-local ID.
func Decode(data []byte) ([]core.Entry, error) {
	var entries []core.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return withIDs(entries), nil
}

func withIDs(entries []core.Entry) []core.Entry {
	out := make([]core.Entry, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		out[i] = e
	}
	return out
}
