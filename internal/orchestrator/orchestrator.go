package orchestrator

import (
	"context"
	"time"

	"github.com/dusk-indust/multiparagraph/internal/candidate"
	"github.com/dusk-indust/multiparagraph/internal/paragraph"
)

// Invoker runs the realignment tool for one candidate inside dir.
type Invoker interface {
	Invoke(ctx context.Context, rec candidate.Record, dir string) paragraph.Result
}

// Workspace hands out private per-candidate directories.
type Workspace interface {
	Sub(index int) (string, error)
	ReleaseSub(path string) error
}

// Stats are the run-level aggregate counts of a report.
type Stats struct {
	Loaded     int           `json:"loaded"`
	Filtered   int           `json:"filtered"`
	Dispatched int           `json:"dispatched"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Report is the combined result of a run, in candidate order.
type Report struct {
	Reference string
	BAM       string

	// Entries are the objects written to the output file.
	Entries []map[string]any

	// FailedIDs lists failed candidates in order, whether or not their
	// records made it into Entries.
	FailedIDs []string

	Stats Stats
}

// Outcome is what a finished run reports to its caller.
type Outcome struct {
	State RunState
	Stats Stats

	// Output is the absolute path of the written report.
	Output string

	FailedIDs []string

	// ScratchPath is the retained working area, set only with keep_scratch.
	ScratchPath string
}

// ProgressEvent is emitted as each candidate moves through the pool.
type ProgressEvent struct {
	Index   int
	ID      string
	Status  ProgressStatus
	Message string
}

// ProgressStatus is the state of one candidate within the pool.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)
