// Package poll tracks a long-form job by fetching its status on a fixed
// interval until a terminal status is observed. At most one polling loop is
// live per Poller; a canceled loop's in-flight tick is discarded via a
// generation guard.
package poll

import (
	"context"
	"strings"
	"sync"
	"time"

	"vidmatic/internal/api"
	"vidmatic/internal/event"
	"vidmatic/internal/logger"
)

// DefaultInterval matches the production poll cadence for long-form jobs.
const DefaultInterval = 20 * time.Second

// FetchFunc retrieves the current job resource. The API client's method
// satisfies it; tests substitute fakes.
type FetchFunc func(ctx context.Context, jobID string) (api.LongVideoJob, error)

// Poller issues status fetches on an interval.
type Poller struct {
	fetch    FetchFunc
	interval time.Duration

	mu     sync.Mutex
	gen    int
	cancel context.CancelFunc
}

// New builds a Poller; a non-positive interval falls back to DefaultInterval.
func New(fetch FetchFunc, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{fetch: fetch, interval: interval}
}

// Run polls jobID until a terminal status, a transport error, cancellation,
// or context expiry, invoking emit for each fetched resource in order. The
// first tick fires immediately. Credentials are resolved inside fetch on
// every tick, so a rotated token takes effect mid-job.
//
// Returns nil on terminal status or cancellation; a fetch error is a
// transport failure and stops polling without retry.
func (p *Poller) Run(ctx context.Context, jobID string, emit func(api.LongVideoJob)) error {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()
	defer cancel()

	for {
		job, err := p.fetch(ctx, jobID)
		if !p.live(gen) {
			// A newer loop owns the session now; this result is stale.
			logger.Debug().Str("job_id", jobID).Msg("discarding stale poll result")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		emit(job)
		if Terminal(job.Status) {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(p.interval):
		}
	}
}

// Cancel stops the running loop, if any. Safe to call multiple times and
// when nothing is running. A tick already in flight completes but its
// result is discarded.
func (p *Poller) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *Poller) live(gen int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return gen == p.gen
}

// Terminal reports whether a polled status ends the job.
func Terminal(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case event.StatusCompleted, event.StatusFailed:
		return true
	}
	return false
}
