package orchestrator

import (
	"fmt"

	"github.com/dusk-indust/multiparagraph/internal/candidate"
	"github.com/dusk-indust/multiparagraph/internal/export"
	"github.com/dusk-indust/multiparagraph/internal/paragraph"
)

// Keys merged into report entries.
const (
	KeyGraph               = "graph"
	KeyReference           = "reference"
	KeyBAM                 = "bam"
	KeyCommandline         = "commandline"
	KeyAlignmentStatistics = "alignment_statistics"
)

// Aggregator turns per-candidate results into the combined report.
type Aggregator struct {
	reference string
	bam       string
	extended  bool
}

// NewAggregator creates an Aggregator. reference and bam should be absolute;
// they are copied verbatim into every successful entry.
func NewAggregator(reference, bam string, extended bool) *Aggregator {
	return &Aggregator{reference: reference, bam: bam, extended: extended}
}

// Build pairs records[i] with results[i] and produces entries in that order.
// Failed candidates become error records when extended output is on and are
// pruned otherwise; they are counted either way.
func (a *Aggregator) Build(records []candidate.Record, results []paragraph.Result) (*Report, error) {
	if len(records) != len(results) {
		return nil, fmt.Errorf("aggregate: %d candidates but %d results", len(records), len(results))
	}

	report := &Report{
		Reference: a.reference,
		BAM:       a.bam,
		Entries:   make([]map[string]any, 0, len(results)),
	}
	report.Stats.Dispatched = len(results)

	for i, res := range results {
		if res.Failed() {
			report.Stats.Failed++
			report.FailedIDs = append(report.FailedIDs, res.ID)
			if a.extended {
				report.Entries = append(report.Entries, failureEntry(res))
			}
			continue
		}
		report.Stats.Succeeded++
		report.Entries = append(report.Entries, a.successEntry(records[i], res))
	}
	return report, nil
}

// Write serializes the entries to path as a stable, indented JSON array.
func (a *Aggregator) Write(path string, report *Report) error {
	if err := export.WriteJSON(path, report.Entries); err != nil {
		return &AggregationError{Path: path, Err: err}
	}
	return nil
}

func (a *Aggregator) successEntry(rec candidate.Record, res paragraph.Result) map[string]any {
	entry := make(map[string]any, len(rec.Data)+2)
	for k, v := range rec.Data {
		entry[k] = v
	}

	graph := make(map[string]any, len(res.Graph)+3)
	for k, v := range res.Graph {
		graph[k] = v
	}
	graph[KeyReference] = a.reference
	graph[KeyBAM] = a.bam
	if _, ok := graph[KeyAlignmentStatistics]; !ok {
		graph[KeyAlignmentStatistics] = map[string]any{}
	}

	entry[KeyGraph] = graph
	entry[KeyCommandline] = res.Commandline
	return entry
}

func failureEntry(res paragraph.Result) map[string]any {
	return map[string]any{
		"ID":           res.ID,
		"status":       string(paragraph.StatusFailed),
		"error":        res.Reason,
		"exit_status":  res.ExitCode,
		"error_output": res.Output,
	}
}
