package main

import (
	"context"
	"os"
	"testing"
	"time"

	"usajobs-watch/internal/archive"
	"usajobs-watch/internal/config"
	"usajobs-watch/internal/model"
	"usajobs-watch/internal/seenstore"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	return cfg
}

func TestLoadItemsFallsBackToSeenFile(t *testing.T) {
	cfg := testConfig(t)

	// History lives only in the seen file; no archive DB was ever created.
	seen := seenstore.Load(cfg.SeenPath())
	seen.Add("fp1", "Building Manager", "https://usajobs.gov/1", time.Unix(1000, 0))
	if err := seen.Save(); err != nil {
		t.Fatal(err)
	}

	items, err := loadItems(cfg, 50)
	if err != nil {
		t.Fatalf("loadItems: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Building Manager" {
		t.Fatalf("items = %+v, want the seen-file entry", items)
	}
	if items[0].URL != "https://usajobs.gov/1" {
		t.Errorf("URL = %q", items[0].URL)
	}

	// The lookup must not leave an empty archive DB behind.
	if _, err := os.Stat(cfg.ArchivePath()); !os.IsNotExist(err) {
		t.Errorf("archive DB was created as a side effect: %v", err)
	}
}

func TestLoadItemsPrefersArchive(t *testing.T) {
	cfg := testConfig(t)

	store, err := archive.Open(cfg.ArchivePath())
	if err != nil {
		t.Fatal(err)
	}
	p := model.Posting{
		ID:           "1",
		Fingerprint:  "fp1",
		Title:        "Building Manager",
		Organization: "NAVFAC",
		Location:     "Camp Pendleton, California",
		URL:          "https://usajobs.gov/1",
		Grades:       []string{"11"},
		FirstSeen:    time.Unix(1000, 0),
	}
	if err := store.Insert(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	store.Close()

	items, err := loadItems(cfg, 50)
	if err != nil {
		t.Fatalf("loadItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	// Archive entries carry the fields the seen file does not.
	if items[0].Organization != "NAVFAC" || len(items[0].Grades) != 1 {
		t.Errorf("item = %+v, want full archive fields", items[0])
	}
}
