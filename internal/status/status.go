// Package status summarizes a combined report that is already on disk.
package status

import (
	"fmt"

	"github.com/dusk-indust/multiparagraph/internal/export"
)

// EntryInfo describes one entry of a report.
type EntryInfo struct {
	Index  int
	ID     string
	Failed bool
	Reason string // failure reason for failed entries

	// HasStatistics is true when the entry's graph carries alignment_statistics.
	HasStatistics bool
}

// ReportStatus is the summary of one combined report.
type ReportStatus struct {
	Path    string
	Entries []EntryInfo

	Succeeded int

	// FailedIDs lists the IDs of failure records, in report order. Reports
	// written without extended output carry none.
	FailedIDs []string

	// MissingStatistics lists successful entries without alignment statistics.
	MissingStatistics []string
}

// Total is the number of entries in the report.
func (s ReportStatus) Total() int { return len(s.Entries) }

// Read loads the report at path and summarizes it.
func Read(path string) (ReportStatus, error) {
	entries, err := export.ReadReport(path)
	if err != nil {
		return ReportStatus{}, fmt.Errorf("status: %w", err)
	}
	st := Summarize(entries)
	st.Path = path
	return st, nil
}

// Summarize classifies decoded report entries.
func Summarize(entries []map[string]any) ReportStatus {
	st := ReportStatus{Entries: make([]EntryInfo, 0, len(entries))}
	for i, e := range entries {
		info := EntryInfo{Index: i}
		info.ID, _ = export.EntryID(e)
		if info.ID == "" {
			info.ID = fmt.Sprintf("entry-%d", i)
		}

		if s, _ := e["status"].(string); s == "failed" {
			info.Failed = true
			info.Reason, _ = e["error"].(string)
			st.FailedIDs = append(st.FailedIDs, info.ID)
			st.Entries = append(st.Entries, info)
			continue
		}

		st.Succeeded++
		if graph, ok := e["graph"].(map[string]any); ok {
			_, info.HasStatistics = graph["alignment_statistics"].(map[string]any)
		}
		if !info.HasStatistics {
			st.MissingStatistics = append(st.MissingStatistics, info.ID)
		}
		st.Entries = append(st.Entries, info)
	}
	return st
}
