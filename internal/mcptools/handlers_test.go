package mcptools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/multiparagraph/internal/config"
	"github.com/dusk-indust/multiparagraph/internal/orchestrator"
)

const sampleReport = `[
    {
        "ID": "del-1",
        "nodes": [{"name": "left", "reference": "chr1:1-10"}, {"name": "right", "reference": "chr1:20-30"}],
        "edges": [{"from": "left", "to": "right"}],
        "graph": {"alignment_statistics": {"depth": 12}}
    },
    {"ID": "ins-2", "status": "failed", "error": "exit status 3"},
    {"ID": "dup-3", "graph": {}}
]
`

func writeReport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "combined.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleReport), 0o644))
	return path
}

// recordingRunner captures the resolved configuration and returns a canned
// outcome.
type recordingRunner struct {
	got     config.RunConfig
	outcome *orchestrator.Outcome
	err     error
}

func (r *recordingRunner) run(_ context.Context, cfg config.RunConfig) (*orchestrator.Outcome, error) {
	r.got = cfg
	return r.outcome, r.err
}

func serverDefaults() config.RunConfig {
	cfg := config.Defaults("/tmp", 8)
	cfg.BAM = "/data/reads.bam"
	cfg.Ref = "/data/ref.fa"
	return cfg
}

func TestService_Realign(t *testing.T) {
	rr := &recordingRunner{outcome: &orchestrator.Outcome{
		State:     orchestrator.StateDone,
		Output:    "/out/combined.json",
		Stats:     orchestrator.Stats{Dispatched: 4, Succeeded: 3, Failed: 1},
		FailedIDs: []string{"b"},
	}}
	svc := NewService(serverDefaults(), rr.run, nil)

	_, out, err := svc.Realign(context.Background(), nil, RealignInput{
		Inputs:         []string{"a.json", "b.json"},
		Output:         "/out/combined.json",
		Threads:        2,
		MinLength:      50,
		ExtendedOutput: true,
		TimeoutSeconds: 90,
	})
	require.NoError(t, err)

	assert.Equal(t, RealignOutput{
		Status:     "completed",
		Output:     "/out/combined.json",
		Dispatched: 4,
		Succeeded:  3,
		Failed:     1,
		FailedIDs:  []string{"b"},
	}, out)

	assert.Equal(t, []string{"a.json", "b.json"}, rr.got.Inputs)
	assert.Equal(t, "/data/reads.bam", rr.got.BAM)
	assert.Equal(t, config.DefaultParagraph, rr.got.Paragraph)
	assert.Equal(t, 2, rr.got.Threads)
	assert.Equal(t, 1, rr.got.ParagraphThreads)
	assert.Equal(t, 50, rr.got.MinLength)
	assert.True(t, rr.got.ExtendedOutput)
	assert.Equal(t, 90*time.Second, rr.got.Timeout)
	assert.Equal(t, "/tmp", rr.got.TempRoot)
}

func TestService_Realign_RunFailure(t *testing.T) {
	rr := &recordingRunner{
		outcome: &orchestrator.Outcome{Stats: orchestrator.Stats{Dispatched: 2, Failed: 2}, FailedIDs: []string{"a", "b"}},
		err:     orchestrator.ErrAllCandidatesFailed,
	}
	svc := NewService(serverDefaults(), rr.run, nil)

	_, out, err := svc.Realign(context.Background(), nil, RealignInput{Inputs: []string{"a.json"}, Output: "out.json"})
	require.NoError(t, err)
	assert.Equal(t, "failed", out.Status)
	assert.Equal(t, 2, out.Failed)
	assert.Equal(t, orchestrator.ErrAllCandidatesFailed.Error(), out.Message)
}

func TestService_Realign_ConfigError(t *testing.T) {
	rr := &recordingRunner{err: errors.New("config: bam: required")}
	svc := NewService(serverDefaults(), rr.run, nil)

	_, out, err := svc.Realign(context.Background(), nil, RealignInput{Inputs: []string{"a.json"}, Output: "out.json"})
	require.NoError(t, err)
	assert.Equal(t, "failed", out.Status)
	assert.Equal(t, "out.json", out.Output)
	assert.Contains(t, out.Message, "bam")
}

func TestService_Realign_NoInputs(t *testing.T) {
	svc := NewService(serverDefaults(), (&recordingRunner{}).run, nil)

	_, out, err := svc.Realign(context.Background(), nil, RealignInput{Output: "out.json"})
	require.Error(t, err)
	assert.Equal(t, "failed", out.Status)
}

func TestService_ReportStatus(t *testing.T) {
	svc := NewService(serverDefaults(), nil, nil)
	path := writeReport(t)

	_, out, err := svc.ReportStatus(context.Background(), nil, ReportStatusInput{Path: path})
	require.NoError(t, err)
	assert.Equal(t, ReportStatusOutput{
		Path:              path,
		Total:             3,
		Succeeded:         2,
		FailedIDs:         []string{"ins-2"},
		MissingStatistics: []string{"dup-3"},
	}, out)
}

func TestService_ReportStatus_Errors(t *testing.T) {
	svc := NewService(serverDefaults(), nil, nil)

	_, _, err := svc.ReportStatus(context.Background(), nil, ReportStatusInput{})
	assert.ErrorContains(t, err, "path is required")

	_, _, err = svc.ReportStatus(context.Background(), nil, ReportStatusInput{Path: filepath.Join(t.TempDir(), "none.json")})
	assert.Error(t, err)
}

func TestService_GraphDiagram(t *testing.T) {
	svc := NewService(serverDefaults(), nil, nil)
	path := writeReport(t)

	_, out, err := svc.GraphDiagram(context.Background(), nil, GraphDiagramInput{Path: path, ID: "del-1"})
	require.NoError(t, err)
	assert.Equal(t, "del-1", out.ID)
	assert.Contains(t, out.Mermaid, "graph LR")
	assert.Contains(t, out.Mermaid, "N0 --> N1")

	_, _, err = svc.GraphDiagram(context.Background(), nil, GraphDiagramInput{Path: path, ID: "missing"})
	assert.ErrorContains(t, err, `no entry "missing"`)

	_, _, err = svc.GraphDiagram(context.Background(), nil, GraphDiagramInput{Path: path, ID: "dup-3"})
	assert.ErrorContains(t, err, "no graph nodes")
}
