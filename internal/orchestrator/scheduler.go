package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/multiparagraph/internal/candidate"
	"github.com/dusk-indust/multiparagraph/internal/ctxlog"
	"github.com/dusk-indust/multiparagraph/internal/paragraph"
)

// Scheduler dispatches candidates to an Invoker on a bounded pool of
// workers. Each worker takes one candidate end to end: scratch directory,
// invocation, cleanup.
type Scheduler struct {
	invoker    Invoker
	workspace  Workspace
	threads    int
	onProgress func(ProgressEvent)
}

// NewScheduler creates a Scheduler running at most threads invocations at
// once. onProgress is called from worker goroutines; it may be nil.
func NewScheduler(invoker Invoker, workspace Workspace, threads int, onProgress func(ProgressEvent)) *Scheduler {
	if threads < 1 {
		threads = 1
	}
	return &Scheduler{
		invoker:    invoker,
		workspace:  workspace,
		threads:    threads,
		onProgress: onProgress,
	}
}

// Run processes every record and returns one result per record, at the
// record's index. Completion order is irrelevant: each worker writes only its
// own slot. A failed candidate does not cancel its siblings, and Run returns
// only after the pool has drained.
func (s *Scheduler) Run(ctx context.Context, records []candidate.Record) []paragraph.Result {
	results := make([]paragraph.Result, len(records))

	var g errgroup.Group
	g.SetLimit(s.threads)

	for i, rec := range records {
		s.emit(ProgressEvent{Index: i, ID: rec.ID, Status: ProgressPending})

		// Go blocks while the pool is full, so dispatch follows input order.
		g.Go(func() error {
			results[i] = s.process(ctx, i, rec)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func (s *Scheduler) process(ctx context.Context, index int, rec candidate.Record) paragraph.Result {
	logger := ctxlog.FromContext(ctx).With("index", index, "candidate", rec.ID)
	s.emit(ProgressEvent{Index: index, ID: rec.ID, Status: ProgressWorking})

	dir, err := s.workspace.Sub(rec.Index)
	if err != nil {
		res := paragraph.Result{
			Index:    index,
			ID:       rec.ID,
			Status:   paragraph.StatusFailed,
			ExitCode: -1,
			Reason:   err.Error(),
		}
		logger.Error("Could not create candidate scratch directory.", "error", err)
		s.emit(ProgressEvent{Index: index, ID: rec.ID, Status: ProgressFailed, Message: res.Reason})
		return res
	}

	res := s.invoker.Invoke(ctxlog.WithLogger(ctx, logger), rec, dir)
	res.Index = index
	res.ID = rec.ID

	if err := s.workspace.ReleaseSub(dir); err != nil {
		logger.Warn("Candidate scratch cleanup failed.", "error", err)
	}

	if res.Failed() {
		logger.Warn("Candidate failed.", "reason", res.Reason, "exit_status", res.ExitCode)
		s.emit(ProgressEvent{Index: index, ID: rec.ID, Status: ProgressFailed, Message: res.Reason})
		return res
	}
	logger.Debug("Candidate complete.", "elapsed", res.Elapsed)
	s.emit(ProgressEvent{Index: index, ID: rec.ID, Status: ProgressComplete})
	return res
}

// emit sends a progress event if a callback is registered.
func (s *Scheduler) emit(ev ProgressEvent) {
	if s.onProgress != nil {
		s.onProgress(ev)
	}
}
