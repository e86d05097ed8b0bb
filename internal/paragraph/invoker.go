// Package paragraph runs the external single-candidate realignment tool.
package paragraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/dusk-indust/multiparagraph/internal/candidate"
	"github.com/dusk-indust/multiparagraph/internal/config"
	"github.com/dusk-indust/multiparagraph/internal/ctxlog"
)

// File names used inside a candidate's scratch directory.
const (
	GraphFile  = "candidate.json"
	OutputFile = "paragraph-output.json"
)

// ReasonUnparseable is the failure reason for output that is not a JSON object.
const ReasonUnparseable = "unparseable output"

// Status is the outcome class of one invocation.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Result is the outcome of running the tool on one candidate.
type Result struct {
	// Index is the slot of the candidate in the dispatched sequence.
	Index int

	// ID is the candidate identifier.
	ID string

	Status Status

	// ExitCode is the process exit status, -1 when the process never ran to
	// completion (start failure, kill, timeout).
	ExitCode int

	// Graph is the parsed tool output on success.
	Graph map[string]any

	// Reason is a short failure description.
	Reason string

	// Output is the captured stdout and stderr of the tool.
	Output string

	// Commandline is the literal argument vector, shell-quoted for display.
	Commandline string

	Elapsed time.Duration
}

// Failed reports whether the invocation did not produce a usable graph.
func (r Result) Failed() bool { return r.Status != StatusSucceeded }

// Invoker builds and executes tool command lines.
type Invoker struct {
	prefix   []string
	ref      string
	bam      string
	threads  int
	extended bool
	timeout  time.Duration
}

// NewInvoker prepares an Invoker from a validated configuration.
func NewInvoker(cfg config.RunConfig) (*Invoker, error) {
	prefix, err := cfg.Command()
	if err != nil {
		return nil, err
	}
	prefix, err = resolvePrefix(prefix)
	if err != nil {
		return nil, err
	}
	threads := cfg.ParagraphThreads
	if threads < 1 {
		threads = 1
	}
	return &Invoker{
		prefix:   prefix,
		ref:      cfg.Ref,
		bam:      cfg.BAM,
		threads:  threads,
		extended: cfg.ExtendedOutput,
		timeout:  cfg.Timeout,
	}, nil
}

// resolvePrefix pins the tool prefix to the current working directory. The
// child runs inside its scratch directory, so a relative executable or a
// relative wrapper script argument would otherwise resolve against that.
func resolvePrefix(prefix []string) ([]string, error) {
	out := append([]string(nil), prefix...)
	if p, err := exec.LookPath(out[0]); err == nil && !filepath.IsAbs(p) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, &config.ConfigError{Field: "paragraph", Err: err}
		}
		out[0] = abs
	}
	for i, tok := range out {
		if filepath.IsAbs(tok) {
			continue
		}
		if fi, err := os.Stat(tok); err != nil || fi.IsDir() {
			continue
		}
		abs, err := filepath.Abs(tok)
		if err != nil {
			return nil, &config.ConfigError{Field: "paragraph", Err: err}
		}
		out[i] = abs
	}
	return out, nil
}

// Args returns the full argument vector for one candidate: the configured
// prefix followed by the per-invocation flags, each its own element.
func (iv *Invoker) Args(graphPath, outputPath string) []string {
	argv := make([]string, 0, len(iv.prefix)+12)
	argv = append(argv, iv.prefix...)
	argv = append(argv,
		"-r", iv.ref,
		"-b", iv.bam,
		"-g", graphPath,
		"-o", outputPath,
		"--threads", strconv.Itoa(iv.threads),
	)
	if iv.extended {
		argv = append(argv, "-E", "1")
	}
	return argv
}

// Invoke writes the candidate into dir, runs the tool there and parses its
// output. Failures are reported in the Result, never as a panic or error.
func (iv *Invoker) Invoke(ctx context.Context, rec candidate.Record, dir string) Result {
	logger := ctxlog.FromContext(ctx).With("candidate", rec.ID)
	res := Result{ID: rec.ID, ExitCode: -1, Status: StatusFailed}

	graphPath := filepath.Join(dir, GraphFile)
	outputPath := filepath.Join(dir, OutputFile)
	argv := iv.Args(graphPath, outputPath)
	res.Commandline = shellquote.Join(argv...)

	data, err := json.Marshal(rec.Data)
	if err != nil {
		res.Reason = fmt.Sprintf("encode candidate: %v", err)
		return res
	}
	if err := os.WriteFile(graphPath, data, 0o644); err != nil {
		res.Reason = fmt.Sprintf("write candidate: %v", err)
		return res
	}

	if iv.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, iv.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	configureCommandProcess(cmd)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	logger.Debug("Invoking paragraph.", "commandline", res.Commandline)
	start := time.Now()
	err = cmd.Run()
	res.Elapsed = time.Since(start)
	res.Output = output.String()

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded):
			res.Reason = fmt.Sprintf("timed out after %s", iv.timeout)
		case ctx.Err() != nil:
			res.Reason = fmt.Sprintf("canceled: %v", ctx.Err())
		case errors.As(err, &exitErr) && exitErr.ExitCode() < 0:
			// Killed by a signal from outside the run.
			res.Reason = exitErr.String()
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
			res.Reason = fmt.Sprintf("exit status %d", res.ExitCode)
		default:
			res.Reason = fmt.Sprintf("start: %v", err)
		}
		logger.Debug("Paragraph failed.", "reason", res.Reason, "elapsed", res.Elapsed)
		return res
	}
	res.ExitCode = 0

	graph, err := readGraph(outputPath)
	if err != nil {
		res.Reason = ReasonUnparseable
		logger.Debug("Paragraph output rejected.", "error", err)
		return res
	}

	res.Status = StatusSucceeded
	res.Graph = graph
	return res
}

// readGraph decodes the tool output, which must be a single JSON object.
func readGraph(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var graph map[string]any
	if err := dec.Decode(&graph); err != nil {
		return nil, err
	}
	if graph == nil {
		return nil, errors.New("output is null")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after output object")
	}
	return graph, nil
}
