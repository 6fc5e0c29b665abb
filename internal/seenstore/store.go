// Package seenstore persists which postings have already been announced.
// The state is a flat JSON object, fingerprint → entry, replaced atomically
// on save so a crash can never leave a half-written file behind.
package seenstore

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// Entry is the metadata kept per announced posting.
type Entry struct {
	Title     string `json:"title"`
	FirstSeen int64  `json:"first_seen"` // unix seconds
	URI       string `json:"uri"`
}

// Store holds an immutable snapshot of the on-disk state plus the
// insertions made during this run. The snapshot is never mutated while the
// pipeline iterates over results; Save commits snapshot+insertions in one
// atomic replace.
type Store struct {
	path     string
	snapshot map[string]Entry
	pending  map[string]Entry
}

// Load reads the state file at path. An absent or unparsable file yields
// an empty store: losing dedup state only causes re-notification, which is
// preferable to refusing to run.
func Load(path string) *Store {
	s := &Store{
		path:     path,
		snapshot: map[string]Entry{},
		pending:  map[string]Entry{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return s
	}
	s.snapshot = entries
	return s
}

// Has reports whether the fingerprint was announced in a prior run or
// accepted earlier in this one.
func (s *Store) Has(fingerprint string) bool {
	if _, ok := s.snapshot[fingerprint]; ok {
		return true
	}
	_, ok := s.pending[fingerprint]
	return ok
}

// Add records a newly accepted posting for the next Save.
func (s *Store) Add(fingerprint, title, uri string, firstSeen time.Time) {
	s.pending[fingerprint] = Entry{
		Title:     title,
		FirstSeen: firstSeen.Unix(),
		URI:       uri,
	}
}

// Pending is the number of insertions not yet committed.
func (s *Store) Pending() int {
	return len(s.pending)
}

// Len is the total number of entries, committed and pending.
func (s *Store) Len() int {
	return len(s.snapshot) + len(s.pending)
}

// Save merges the insertions into the snapshot and writes the result via a
// temp file and rename, so the file on disk is always either the old or
// the new complete state.
func (s *Store) Save() error {
	merged := make(map[string]Entry, len(s.snapshot)+len(s.pending))
	for k, v := range s.snapshot {
		merged[k] = v
	}
	for k, v := range s.pending {
		merged[k] = v
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("encode seen state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write seen state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace seen state: %w", err)
	}

	s.snapshot = merged
	s.pending = map[string]Entry{}
	return nil
}

// Record pairs a fingerprint with its entry, for listing.
type Record struct {
	Fingerprint string
	Entry
}

// All returns every entry, committed and pending, newest first.
func (s *Store) All() []Record {
	out := make([]Record, 0, s.Len())
	for fp, e := range s.snapshot {
		out = append(out, Record{Fingerprint: fp, Entry: e})
	}
	for fp, e := range s.pending {
		out = append(out, Record{Fingerprint: fp, Entry: e})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstSeen != out[j].FirstSeen {
			return out[i].FirstSeen > out[j].FirstSeen
		}
		return out[i].Fingerprint < out[j].Fingerprint
	})
	return out
}
