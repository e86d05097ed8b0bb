package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dusk-indust/multiparagraph/internal/candidate"
	"github.com/dusk-indust/multiparagraph/internal/config"
	"github.com/dusk-indust/multiparagraph/internal/ctxlog"
	"github.com/dusk-indust/multiparagraph/internal/paragraph"
	"github.com/dusk-indust/multiparagraph/internal/scratch"
)

// Controller drives one run through its lifecycle:
// init -> loading -> scheduling -> aggregating -> done, or error.
type Controller struct {
	cfg        config.RunConfig
	logger     *slog.Logger
	invoker    Invoker
	onProgress func(ProgressEvent)

	mu    sync.Mutex
	state RunState
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the run logger. Without it the run is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithProgress registers a callback for per-candidate progress events. It is
// called from worker goroutines.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(c *Controller) { c.onProgress = fn }
}

// WithInvoker replaces the external tool invoker.
func WithInvoker(inv Invoker) Option {
	return func(c *Controller) { c.invoker = inv }
}

// NewController creates a Controller in the init state.
func NewController(cfg config.RunConfig, opts ...Option) *Controller {
	c := &Controller{
		cfg:   cfg,
		state: StateInit,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) transition(to RunState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ValidateTransition(c.state, to); err != nil {
		return err
	}
	c.logger.Debug("Run state changed.", "from", c.state, "to", to)
	c.state = to
	return nil
}

// fail moves the run to the error state and returns err unchanged.
func (c *Controller) fail(err error) error {
	c.mu.Lock()
	if !c.state.Terminal() {
		c.state = StateError
	}
	c.mu.Unlock()
	return err
}

// Run executes the whole job. A Controller runs once.
//
// Individual candidate failures do not fail the run; they are counted in the
// Outcome. Run returns ErrAllCandidatesFailed, together with a populated
// Outcome, when candidates were dispatched and none succeeded.
func (c *Controller) Run(ctx context.Context) (*Outcome, error) {
	if s := c.State(); s != StateInit {
		return nil, fmt.Errorf("orchestrator: run already started (state %s)", s)
	}
	start := time.Now()
	ctx = ctxlog.WithLogger(ctx, c.logger)

	// init
	if err := c.cfg.Validate(); err != nil {
		return nil, c.fail(err)
	}
	cfg, err := c.cfg.Normalize()
	if err != nil {
		return nil, c.fail(err)
	}
	invoker := c.invoker
	if invoker == nil {
		iv, err := paragraph.NewInvoker(cfg)
		if err != nil {
			return nil, c.fail(err)
		}
		invoker = iv
	}

	// loading
	if err := c.transition(StateLoading); err != nil {
		return nil, c.fail(err)
	}
	records, err := candidate.Load(cfg.Inputs)
	if err != nil {
		return nil, c.fail(err)
	}
	loaded := len(records)
	records, dropped := candidate.Filter(records, cfg.MinLength, cfg.MaxEvents)
	c.logger.Info("Candidates loaded.",
		"files", len(cfg.Inputs), "loaded", loaded, "filtered", dropped, "dispatching", len(records))

	root := cfg.ScratchDir
	if root == "" {
		root = cfg.TempRoot
	}
	area, err := scratch.Acquire(root, cfg.KeepScratch)
	if err != nil {
		return nil, c.fail(err)
	}
	c.logger.Debug("Scratch area acquired.", "path", area.Path(), "keep", area.Keep())

	outcome := &Outcome{Output: cfg.Output}
	defer func() {
		kept, err := area.Release()
		if err != nil {
			c.logger.Warn("Scratch cleanup failed.", "error", err)
			return
		}
		if kept != "" {
			outcome.ScratchPath = kept
			c.logger.Info("Scratch area kept.", "path", kept)
		}
	}()

	// scheduling
	if err := c.transition(StateScheduling); err != nil {
		return nil, c.fail(err)
	}
	sched := NewScheduler(invoker, area, cfg.Threads, c.onProgress)
	results := sched.Run(ctx, records)

	// aggregating
	if err := c.transition(StateAggregating); err != nil {
		return nil, c.fail(err)
	}
	agg := NewAggregator(cfg.Ref, cfg.BAM, cfg.ExtendedOutput)
	report, err := agg.Build(records, results)
	if err != nil {
		return nil, c.fail(err)
	}
	report.Stats.Loaded = loaded
	report.Stats.Filtered = dropped
	if err := agg.Write(cfg.Output, report); err != nil {
		return nil, c.fail(err)
	}

	if err := c.transition(StateDone); err != nil {
		return nil, c.fail(err)
	}
	report.Stats.Elapsed = time.Since(start)
	outcome.State = StateDone
	outcome.Stats = report.Stats
	outcome.FailedIDs = report.FailedIDs

	c.logger.Info("Run complete.",
		"output", cfg.Output,
		"entries", len(report.Entries),
		"succeeded", report.Stats.Succeeded,
		"failed", report.Stats.Failed,
		"elapsed", report.Stats.Elapsed)

	if report.Stats.Dispatched > 0 && report.Stats.Succeeded == 0 {
		return outcome, ErrAllCandidatesFailed
	}
	return outcome, nil
}

// Execute builds a Controller for cfg and runs it.
func Execute(ctx context.Context, cfg config.RunConfig, opts ...Option) (*Outcome, error) {
	return NewController(cfg, opts...).Run(ctx)
}
