package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tinytelemetry/balloonwatch/internal/model"
)

// Config holds poller settings.
type Config struct {
	// Interval between polls. Defaults to model.DefaultPollInterval.
	Interval time.Duration
	Logger   *slog.Logger
}

// Poller fetches the upstream payload on an interval and stores each
// successful result as a snapshot.
type Poller struct {
	fetcher  model.Fetcher
	store    model.SnapshotWriter
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.RWMutex
	status model.PollStatus
}

// New creates a poller. It does not start polling until Run is called.
func New(fetcher model.Fetcher, store model.SnapshotWriter, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = model.DefaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Poller{
		fetcher:  fetcher,
		store:    store,
		interval: cfg.Interval,
		logger:   cfg.Logger,
		now:      time.Now,
	}
}

// Run polls immediately and then on every interval until ctx is done.
// Individual poll failures are recorded and logged, never returned.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.PollOnce(ctx); err != nil && ctx.Err() == nil {
			p.logger.Warn("poll failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// PollOnce performs one fetch and stores the result. A payload carrying a
// logical error is not stored.
func (p *Poller) PollOnce(ctx context.Context) error {
	started := p.now()

	payload, err := p.fetcher.Fetch(ctx)
	if err == nil && payload == nil {
		err = errors.New("empty payload")
	}
	if err != nil {
		p.record(started, err)
		return err
	}

	snap := &model.Snapshot{
		FetchedAt: started,
		Weather:   payload.Weather,
		Readings:  payload.Balloons.Readings,
	}
	id, err := p.store.InsertSnapshot(snap)
	if err != nil {
		p.record(started, err)
		return err
	}

	p.record(started, nil)
	p.logger.Info("snapshot stored",
		"id", id,
		"readings", len(snap.Readings),
		"weather", snap.Weather != nil)
	return nil
}

func (p *Poller) record(at time.Time, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.Polls++
	p.status.LastPoll = at
	if err != nil {
		p.status.Failures++
		p.status.LastError = err.Error()
		return
	}
	p.status.LastSuccess = at
	p.status.LastError = ""
}

// Status returns a copy of the current polling status.
func (p *Poller) Status() model.PollStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}
