// Package gate implements the local-hour execution window. The external
// scheduler fires around the target time (twice, to absorb DST shifts);
// the gate decides whether this particular invocation should proceed.
package gate

import (
	"fmt"
	"time"

	"usajobs-watch/internal/config"
)

// Gate is a pure predicate over wall-clock time.
type Gate struct {
	enabled bool
	hour    int
	loc     *time.Location
}

// New builds a gate from config. The timezone is resolved once here so a
// bad zone name fails at startup, not mid-run.
func New(cfg config.GateConfig) (*Gate, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	return &Gate{enabled: cfg.Enabled, hour: cfg.Hour, loc: loc}, nil
}

// Open reports whether a run starting at now should proceed. Minute
// precision is deliberately ignored; cron lands close enough to the hour.
func (g *Gate) Open(now time.Time) bool {
	if !g.enabled {
		return true
	}
	return now.In(g.loc).Hour() == g.hour
}
