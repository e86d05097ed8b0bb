package orchestrator

import (
	"errors"
	"fmt"
)

// ErrAllCandidatesFailed is returned when at least one candidate was
// dispatched and none succeeded. The report is still written.
var ErrAllCandidatesFailed = errors.New("orchestrator: every candidate failed")

// AggregationError reports that the combined report could not be written.
type AggregationError struct {
	Path string
	Err  error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregate: write %s: %v", e.Path, e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }
