package dashboard

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/tinytelemetry/balloonwatch/internal/feed"
	"github.com/tinytelemetry/balloonwatch/internal/model"
)

// Ticket identifies one load invocation.
type Ticket struct {
	Seq uint64
}

// Result is the outcome of one load invocation.
type Result struct {
	Ticket    Ticket
	Payload   *model.Payload
	Err       error
	Completed time.Time
}

// Controller owns the view state: the FetchState plus the historical display
// flag. Mount, Begin, Apply and ToggleHistorical mutate state and must be
// called from a single update loop. Fetch only reads immutable fields and may
// run anywhere.
type Controller struct {
	fetcher model.Fetcher
	policy  RacePolicy
	logger  *slog.Logger
	now     func() time.Time

	state          FetchState
	showHistorical bool

	mounted    bool
	issued     uint64
	applied    uint64
	inFlight   int
	lastLoaded time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithRacePolicy selects how overlapping loads are resolved.
func WithRacePolicy(p RacePolicy) Option {
	return func(c *Controller) { c.policy = p }
}

// WithLogger sets the logger used for fetch outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a controller in the Loading state with the
// historical section hidden.
func NewController(fetcher model.Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher: fetcher,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		state:   Loading{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current FetchState.
func (c *Controller) State() FetchState { return c.state }

// ShowHistorical reports whether the historical section is visible.
func (c *Controller) ShowHistorical() bool { return c.showHistorical }

// InFlight returns the number of loads begun but not yet applied or dropped.
func (c *Controller) InFlight() int { return c.inFlight }

// LastLoaded returns when a Loaded state was last applied.
func (c *Controller) LastLoaded() time.Time { return c.lastLoaded }

// Policy returns the active race policy.
func (c *Controller) Policy() RacePolicy { return c.policy }

// Mount returns the ticket for the automatic initial load. It succeeds only
// once per controller.
func (c *Controller) Mount() (Ticket, bool) {
	if c.mounted {
		return Ticket{}, false
	}
	c.mounted = true
	return c.Begin(), true
}

// Begin tags a new load invocation. Earlier invocations are not cancelled.
func (c *Controller) Begin() Ticket {
	c.mounted = true
	c.issued++
	c.inFlight++
	return Ticket{Seq: c.issued}
}

// Fetch performs the single outbound request for t.
func (c *Controller) Fetch(ctx context.Context, t Ticket) Result {
	payload, err := c.fetcher.Fetch(ctx)
	return Result{Ticket: t, Payload: payload, Err: err, Completed: c.now()}
}

// Apply transitions the FetchState from a completed load. It reports false
// when the race policy discards the result as stale.
func (c *Controller) Apply(r Result) bool {
	if c.inFlight > 0 {
		c.inFlight--
	}

	if c.policy == LatestRequest && r.Ticket.Seq < c.applied {
		c.logger.Debug("dropping stale fetch result",
			"seq", r.Ticket.Seq, "applied", c.applied)
		return false
	}
	if r.Ticket.Seq > c.applied {
		c.applied = r.Ticket.Seq
	}

	if r.Err != nil {
		msg := feed.FailureMessage(r.Err)
		c.logger.Warn("fetch failed", "seq", r.Ticket.Seq, "error", r.Err)
		c.state = Failed{Message: msg}
		return true
	}

	loaded := newLoaded(r.Payload)
	c.state = loaded
	c.lastLoaded = r.Completed
	c.logger.Info("fetch loaded",
		"seq", r.Ticket.Seq,
		"balloons", len(loaded.Balloons),
		"historical", len(loaded.Historical),
		"weather", loaded.Weather != nil)
	return true
}

// Load is the synchronous form of Begin, Fetch and Apply.
func (c *Controller) Load(ctx context.Context) FetchState {
	c.Apply(c.Fetch(ctx, c.Begin()))
	return c.state
}

// ToggleHistorical flips the historical display flag. It does no I/O and is
// independent of the FetchState.
func (c *Controller) ToggleHistorical() {
	c.logger.Debug("toggling historical data", "current", c.showHistorical)
	c.showHistorical = !c.showHistorical
}
