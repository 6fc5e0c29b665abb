package seenstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "seen.json"))
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", s.Len())
	}
}

func TestLoadCorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := Load(path)
	if s.Len() != 0 {
		t.Errorf("expected empty store from corrupt file, got %d entries", s.Len())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	now := time.Unix(1756000000, 0)

	s := Load(path)
	s.Add("abc123", "Program Analyst", "https://example.gov/apply/1", now)
	if s.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", s.Pending())
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if s.Pending() != 0 {
		t.Errorf("pending after save = %d, want 0", s.Pending())
	}

	reloaded := Load(path)
	if !reloaded.Has("abc123") {
		t.Error("reloaded store should contain the saved fingerprint")
	}
	all := reloaded.All()
	if len(all) != 1 {
		t.Fatalf("len(All()) = %d, want 1", len(all))
	}
	if all[0].Title != "Program Analyst" || all[0].FirstSeen != now.Unix() || all[0].URI != "https://example.gov/apply/1" {
		t.Errorf("unexpected entry: %+v", all[0])
	}
}

func TestSaveMergesWithExistingEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")

	first := Load(path)
	first.Add("old", "Old Posting", "u1", time.Unix(100, 0))
	if err := first.Save(); err != nil {
		t.Fatal(err)
	}

	second := Load(path)
	second.Add("new", "New Posting", "u2", time.Unix(200, 0))
	if err := second.Save(); err != nil {
		t.Fatal(err)
	}

	final := Load(path)
	if !final.Has("old") || !final.Has("new") {
		t.Error("save should merge new entries with existing state")
	}
	if final.Len() != 2 {
		t.Errorf("Len = %d, want 2", final.Len())
	}
}

func TestAbortedWriteLeavesOriginalIntact(t *testing.T) {
	// A crash before the rename leaves a stray .tmp file; the real state
	// file must stay complete and parsable.
	dir := t.TempDir()
	path := filepath.Join(dir, "seen.json")

	s := Load(path)
	s.Add("abc", "Original", "u", time.Unix(100, 0))
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path+".tmp", []byte(`{"half":`), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read original: %v", err)
	}
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("original state no longer parses: %v", err)
	}
	if _, ok := entries["abc"]; !ok {
		t.Error("original entry lost")
	}

	if !Load(path).Has("abc") {
		t.Error("Load should ignore the stray tmp file")
	}
}

func TestHasCoversPendingInsertions(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "seen.json"))
	s.Add("fp1", "T", "u", time.Now())
	if !s.Has("fp1") {
		t.Error("Has should see pending insertions before Save")
	}
}

func TestAllNewestFirst(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "seen.json"))
	s.Add("a", "older", "u", time.Unix(100, 0))
	s.Add("b", "newer", "u", time.Unix(200, 0))

	all := s.All()
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
	if all[0].Title != "newer" {
		t.Errorf("first entry = %q, want newest", all[0].Title)
	}
}
