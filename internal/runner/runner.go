// Package runner owns one full watcher run: gate → fetch → dedup → filter
// → notify → persist. Every business outcome, including failures, ends the
// run with a nil error; the invoking scheduler only sees non-zero exits
// for operator mistakes, never for an empty query or a flaky API.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"usajobs-watch/internal/config"
	"usajobs-watch/internal/gate"
	"usajobs-watch/internal/model"
	"usajobs-watch/internal/notifier"
	"usajobs-watch/internal/seenstore"
)

// Archiver records accepted postings for later browsing. Optional.
type Archiver interface {
	Insert(ctx context.Context, p model.Posting) error
}

// Params collects the runner's dependencies.
type Params struct {
	Cfg      *config.Config
	Gate     *gate.Gate
	Client   model.SearchClient // already wrapped with retry
	Filter   model.PostingFilter
	Seen     *seenstore.Store
	Notifier model.Notifier
	Archive  Archiver // may be nil
	DryRun   bool     // skip gate and all persistence
	Logger   *slog.Logger
}

// Runner executes the pipeline once per process invocation.
type Runner struct {
	p Params
}

// New wires a runner with all its dependencies.
func New(p Params) *Runner {
	return &Runner{p: p}
}

// Run performs one watch cycle starting at now.
func (r *Runner) Run(ctx context.Context, now time.Time) error {
	cfg, log := r.p.Cfg, r.p.Logger

	if !r.p.DryRun && !r.p.Gate.Open(now) {
		log.Info("skipping run, outside the local-hour window",
			"hour", cfg.Gate.Hour,
			"timezone", cfg.Gate.Timezone,
		)
		return nil
	}

	if cfg.UserAgent == "" || cfg.APIKey == "" {
		msg := fmt.Sprintf("❌ USAJOBS credentials missing: set %s and %s.", config.EnvUserAgent, config.EnvAPIKey)
		log.Error("credentials missing")
		r.notify(ctx, msg)
		return nil
	}

	page, err := r.p.Client.Search(ctx)
	if err != nil {
		var exhausted *model.FetchExhaustedError
		if errors.As(err, &exhausted) {
			msg := fmt.Sprintf("🚨 USAJOBS fetch failed after retries: %v", exhausted.Last)
			log.Error("fetch exhausted", "attempts", exhausted.Attempts, "error", exhausted.Last)
			if cfg.Notify.FetchFailure {
				r.notify(ctx, msg)
			}
			return nil
		}
		// Cancellation is the only way to land here.
		return err
	}

	log.Info("fetched results", "total", page.Total, "items", len(page.Postings))

	if page.Total == 0 || len(page.Postings) == 0 {
		msg := fmt.Sprintf("ℹ️ No results for USAJOBS query today (%s).", querySummary(cfg.Query))
		log.Info("no results")
		if cfg.Notify.ZeroResults {
			r.notify(ctx, msg)
		}
		return nil
	}

	accepted := r.selectNew(page.Postings, now)

	if len(accepted) == 0 {
		msg := "🟦 No new items today (matches exist, but already seen)."
		log.Info("no new items", "seen_total", r.p.Seen.Len())
		if cfg.Notify.NoNewItems {
			r.notify(ctx, msg)
		}
		return nil
	}

	for _, p := range accepted {
		r.notify(ctx, notifier.FormatPosting(p))
		if r.p.Archive != nil && !r.p.DryRun {
			if err := r.p.Archive.Insert(ctx, p); err != nil {
				log.Warn("archive insert failed", "fingerprint", p.Fingerprint, "error", err)
			}
		}
	}

	if r.p.DryRun {
		log.Info("dry run, not persisting", "new", len(accepted))
		return nil
	}

	if err := r.p.Seen.Save(); err != nil {
		// State write failure is worth a non-business error: next run
		// would re-notify everything this run just announced.
		return fmt.Errorf("persisting seen state: %w", err)
	}
	log.Info("saved new items", "new", len(accepted), "seen_total", r.p.Seen.Len())
	return nil
}

// selectNew walks the postings in response order, skipping anything seen in
// a prior run BEFORE the filter rule is consulted. A previously announced
// posting is therefore never re-evaluated even if the rule changes, while
// a filtered-out posting is never marked seen and stays a candidate.
func (r *Runner) selectNew(postings []model.Posting, now time.Time) []model.Posting {
	var accepted []model.Posting
	inRun := map[string]bool{}
	for _, p := range postings {
		if r.p.Seen.Has(p.Fingerprint) || inRun[p.Fingerprint] {
			continue
		}
		if !r.p.Filter.Match(p) {
			r.p.Logger.Debug("posting filtered out", "title", p.Title, "grades", p.Grades)
			continue
		}
		p.FirstSeen = now
		accepted = append(accepted, p)
		inRun[p.Fingerprint] = true
		if !r.p.DryRun {
			r.p.Seen.Add(p.Fingerprint, p.Title, p.URL, now)
		}
	}
	return accepted
}

// notify delivers one message. Delivery failure never aborts the run.
func (r *Runner) notify(ctx context.Context, msg string) {
	if err := r.p.Notifier.Send(ctx, msg); err != nil {
		r.p.Logger.Warn("notification delivery failed", "error", err)
	}
}

func querySummary(q config.QueryConfig) string {
	return fmt.Sprintf("Series %s, %s±%smi, GS%s–GS%s",
		strings.Join(q.CategoryCodes, "/"), q.LocationName, q.Radius, q.PayGradeLow, q.PayGradeHigh)
}
