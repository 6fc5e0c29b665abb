package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"usajobs-watch/internal/archive"
	"usajobs-watch/internal/config"
	"usajobs-watch/internal/filter"
	"usajobs-watch/internal/gate"
	"usajobs-watch/internal/model"
	"usajobs-watch/internal/notifier"
	"usajobs-watch/internal/retry"
	"usajobs-watch/internal/runner"
	"usajobs-watch/internal/secrets"
	"usajobs-watch/internal/seenstore"
	"usajobs-watch/internal/usajobs"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "usajobs-watch",
	Short: "Watch a USAJOBS search and announce new postings",
	Long:  "usajobs-watch runs one fetch/filter/notify cycle per invocation; point a cron at the bare binary.",
	// Default to `run` so cron entries can invoke the binary directly.
	RunE:         runRun,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: USAJOBS_WATCH_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit flag > USAJOBS_WATCH_CONFIG env var > "./config.yaml".
// Only an explicitly requested file is required to exist.
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if path == "" {
		if env := os.Getenv("USAJOBS_WATCH_CONFIG"); env != "" {
			path = env
			explicit = true
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path, explicit)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, logger *slog.Logger) model.Notifier {
	if cfg.WebhookURL != "" {
		logger.Info("using discord notifier")
		return notifier.NewDiscordNotifier(cfg.WebhookURL, &http.Client{Timeout: 15 * time.Second}, logger)
	}
	return notifier.NewLogNotifier(logger)
}

// buildRunner assembles the whole pipeline. The returned cleanup closes the
// archive; it is safe to call even when the archive could not be opened.
func buildRunner(cfg *config.Config, dryRun bool, logger *slog.Logger) (*runner.Runner, func(), error) {
	// Keychain fallback for machines where cron has no secrets in env.
	cfg.APIKey = secrets.APIKey(cfg.APIKey)

	g, err := gate.New(cfg.Gate)
	if err != nil {
		return nil, nil, err
	}

	f, err := filter.New(cfg.Filter)
	if err != nil {
		return nil, nil, err
	}

	client := usajobs.New(cfg.UserAgent, cfg.APIKey, cfg.Query, &http.Client{Timeout: cfg.Retry.Timeout})
	retrying := retry.New(client, cfg.Retry.Attempts, cfg.Retry.Backoff, logger)

	var arc runner.Archiver
	cleanup := func() {}
	if !dryRun {
		store, err := archive.Open(cfg.ArchivePath())
		if err != nil {
			// History is best-effort; the run proceeds without it.
			logger.Warn("archive unavailable", "path", cfg.ArchivePath(), "error", err)
		} else {
			arc = store
			cleanup = func() { store.Close() }
		}
	}

	r := runner.New(runner.Params{
		Cfg:      cfg,
		Gate:     g,
		Client:   retrying,
		Filter:   f,
		Seen:     seenstore.Load(cfg.SeenPath()),
		Notifier: setupNotifier(cfg, logger),
		Archive:  arc,
		DryRun:   dryRun,
		Logger:   logger,
	})
	return r, cleanup, nil
}
