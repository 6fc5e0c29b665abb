package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"usajobs-watch/internal/archive"
	"usajobs-watch/internal/browse"
	"usajobs-watch/internal/config"
	"usajobs-watch/internal/seenstore"
)

var seenLimit int

var seenCmd = &cobra.Command{
	Use:   "seen",
	Short: "Inspect previously announced postings",
}

var seenListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print announced postings, newest first",
	RunE:  runSeenList,
}

var seenBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse announced postings interactively (TUI)",
	RunE:  runSeenBrowse,
}

func init() {
	seenListCmd.Flags().IntVar(&seenLimit, "limit", 50, "maximum entries to show")
	seenBrowseCmd.Flags().IntVar(&seenLimit, "limit", 200, "maximum entries to load")
	rootCmd.AddCommand(seenCmd)
	seenCmd.AddCommand(seenListCmd)
	seenCmd.AddCommand(seenBrowseCmd)
}

// loadItems prefers the archive (it carries organization, location, and
// grades); when the archive is missing it falls back to the seen file.
// Opening the archive would create an empty DB as a side effect, so the
// file's existence is checked first.
func loadItems(cfg *config.Config, limit int) ([]browse.Item, error) {
	if items, ok, err := loadArchiveItems(cfg.ArchivePath(), limit); err != nil {
		return nil, err
	} else if ok {
		return items, nil
	}

	records := seenstore.Load(cfg.SeenPath()).All()
	if len(records) > limit {
		records = records[:limit]
	}
	items := make([]browse.Item, 0, len(records))
	for _, rec := range records {
		items = append(items, browse.Item{
			Title:     rec.Title,
			URL:       rec.URI,
			FirstSeen: time.Unix(rec.FirstSeen, 0),
		})
	}
	return items, nil
}

// loadArchiveItems reads from the archive DB when it exists. ok=false means
// the caller should use the seen-file fallback instead.
func loadArchiveItems(dbPath string, limit int) (items []browse.Item, ok bool, err error) {
	if _, statErr := os.Stat(dbPath); statErr != nil {
		return nil, false, nil
	}

	store, err := archive.Open(dbPath)
	if err != nil {
		return nil, false, nil
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	postings, err := store.Recent(ctx, limit)
	if err != nil {
		return nil, true, err
	}
	items = make([]browse.Item, 0, len(postings))
	for _, p := range postings {
		items = append(items, browse.Item{
			Title:        p.Title,
			Organization: p.Organization,
			Location:     p.Location,
			URL:          p.URL,
			Grades:       p.Grades,
			FirstSeen:    p.FirstSeen,
		})
	}
	return items, true, nil
}

func runSeenList(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	items, err := loadItems(cfg, seenLimit)
	if err != nil {
		logger.Error("failed to load announced postings", "error", err)
		os.Exit(1)
	}

	if len(items) == 0 {
		fmt.Println("nothing announced yet")
		return nil
	}
	for _, it := range items {
		line := fmt.Sprintf("%s  %s", it.FirstSeen.Format("2006-01-02 15:04"), it.Title)
		if it.Organization != "" {
			line += " @ " + it.Organization
		}
		fmt.Println(line)
		fmt.Println("    " + it.URL)
	}
	return nil
}

func runSeenBrowse(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	items, err := loadItems(cfg, seenLimit)
	if err != nil {
		logger.Error("failed to load announced postings", "error", err)
		os.Exit(1)
	}

	tz, err := time.LoadLocation(cfg.Gate.Timezone)
	if err != nil {
		tz = time.Local
	}
	return browse.Run(items, tz)
}
