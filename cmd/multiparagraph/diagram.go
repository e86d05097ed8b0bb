package main

import (
	"fmt"
	"io"

	"github.com/dusk-indust/multiparagraph/internal/export"
)

func runDiagram(w io.Writer, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: multiparagraph diagram <report.json> <ID>")
	}
	path, id := args[0], args[1]

	entries, err := export.ReadReport(path)
	if err != nil {
		return err
	}
	entry, ok := export.FindEntry(entries, id)
	if !ok {
		return fmt.Errorf("no entry %q in %s", id, path)
	}

	mermaid, err := export.GraphMermaid(entry)
	if err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	_, err = io.WriteString(w, mermaid)
	return err
}
