package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/multiparagraph/internal/config"
	"github.com/dusk-indust/multiparagraph/internal/export"
	"github.com/dusk-indust/multiparagraph/internal/orchestrator"
	"github.com/dusk-indust/multiparagraph/internal/status"
)

// Runner executes one fully resolved run.
type Runner func(ctx context.Context, cfg config.RunConfig) (*orchestrator.Outcome, error)

// Service handles MCP tool calls. Each realign call builds its own run.
type Service struct {
	defaults config.RunConfig
	run      Runner
}

// NewService creates a Service. defaults supplies every field a realign call
// leaves unset. A nil run executes through the orchestrator with logger.
func NewService(defaults config.RunConfig, run Runner, logger *slog.Logger) *Service {
	if run == nil {
		run = func(ctx context.Context, cfg config.RunConfig) (*orchestrator.Outcome, error) {
			return orchestrator.Execute(ctx, cfg, orchestrator.WithLogger(logger))
		}
	}
	return &Service{defaults: defaults, run: run}
}

// Realign runs multiparagraph over the given candidate files.
func (s *Service) Realign(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RealignInput,
) (*mcp.CallToolResult, RealignOutput, error) {
	if len(input.Inputs) == 0 {
		return nil, RealignOutput{Status: "failed", Message: "no candidate files given"},
			errors.New("realign: input is required")
	}

	cfg := s.resolve(input)
	outcome, err := s.run(ctx, cfg)

	out := RealignOutput{Status: "completed", Output: cfg.Output}
	if outcome != nil {
		out.Output = outcome.Output
		out.Dispatched = outcome.Stats.Dispatched
		out.Succeeded = outcome.Stats.Succeeded
		out.Failed = outcome.Stats.Failed
		out.FailedIDs = outcome.FailedIDs
		out.ScratchPath = outcome.ScratchPath
	}
	if err != nil {
		out.Status = "failed"
		out.Message = err.Error()
	}
	return nil, out, nil
}

// resolve overlays the call's fields on the server defaults.
func (s *Service) resolve(in RealignInput) config.RunConfig {
	cfg := s.defaults
	cfg.Inputs = append([]string(nil), in.Inputs...)
	cfg.Output = in.Output

	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	setString(&cfg.BAM, in.BAM)
	setString(&cfg.Ref, in.Ref)
	setString(&cfg.Paragraph, in.Paragraph)
	setString(&cfg.ScratchDir, in.ScratchDir)
	setInt(&cfg.Threads, in.Threads)
	setInt(&cfg.ParagraphThreads, in.ParagraphThreads)
	setInt(&cfg.MaxEvents, in.MaxEvents)
	setInt(&cfg.MinLength, in.MinLength)
	if in.KeepScratch {
		cfg.KeepScratch = true
	}
	if in.ExtendedOutput {
		cfg.ExtendedOutput = true
	}
	if in.TimeoutSeconds != 0 {
		cfg.Timeout = time.Duration(in.TimeoutSeconds) * time.Second
	}
	return cfg
}

// ReportStatus summarizes an existing combined report.
func (s *Service) ReportStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ReportStatusInput,
) (*mcp.CallToolResult, ReportStatusOutput, error) {
	if input.Path == "" {
		return nil, ReportStatusOutput{}, errors.New("report_status: path is required")
	}
	st, err := status.Read(input.Path)
	if err != nil {
		return nil, ReportStatusOutput{}, err
	}
	return nil, ReportStatusOutput{
		Path:              st.Path,
		Total:             st.Total(),
		Succeeded:         st.Succeeded,
		FailedIDs:         st.FailedIDs,
		MissingStatistics: st.MissingStatistics,
	}, nil
}

// GraphDiagram renders one entry's sequence graph as Mermaid.
func (s *Service) GraphDiagram(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GraphDiagramInput,
) (*mcp.CallToolResult, GraphDiagramOutput, error) {
	entries, err := export.ReadReport(input.Path)
	if err != nil {
		return nil, GraphDiagramOutput{}, err
	}
	entry, ok := export.FindEntry(entries, input.ID)
	if !ok {
		return nil, GraphDiagramOutput{}, fmt.Errorf("graph_diagram: no entry %q in %s", input.ID, input.Path)
	}
	diagram, err := export.GraphMermaid(entry)
	if err != nil {
		return nil, GraphDiagramOutput{}, fmt.Errorf("graph_diagram: %s: %w", input.ID, err)
	}
	return nil, GraphDiagramOutput{ID: input.ID, Mermaid: diagram}, nil
}
