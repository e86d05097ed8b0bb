package main

import (
	"fmt"
	"io"

	"github.com/dusk-indust/multiparagraph/internal/status"
)

func runStatus(w io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: multiparagraph status <report.json>")
	}
	st, err := status.Read(args[0])
	if err != nil {
		return err
	}
	printStatus(w, st)
	return nil
}

func printStatus(w io.Writer, st status.ReportStatus) {
	fmt.Fprintf(w, "Report: %s\n", st.Path)
	fmt.Fprintf(w, "  entries:   %d\n", st.Total())
	fmt.Fprintf(w, "  succeeded: %d\n", st.Succeeded)
	fmt.Fprintf(w, "  failed:    %d\n", len(st.FailedIDs))

	if len(st.Entries) > 0 {
		fmt.Fprintln(w)
	}
	for _, e := range st.Entries {
		label := "ok"
		switch {
		case e.Failed:
			label = "failed: " + e.Reason
		case !e.HasStatistics:
			label = "no alignment statistics"
		}
		fmt.Fprintf(w, "  [%d] %-30s %s\n", e.Index, e.ID, label)
	}
}
