package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/dusk-indust/multiparagraph/internal/config"
	"github.com/dusk-indust/multiparagraph/internal/logging"
	"github.com/dusk-indust/multiparagraph/internal/mcptools"
	"github.com/dusk-indust/multiparagraph/internal/orchestrator"
)

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case "status":
			return runStatus(stdout, args[1:])
		case "diagram":
			return runDiagram(stdout, args[1:])
		case "init":
			return runInit(stdout, args[1:])
		}
	}

	defaults := config.Defaults(os.TempDir(), runtime.NumCPU())
	cfg, flags, err := parseFlags(args, defaults, stderr)
	if err != nil {
		return err
	}

	if flags.Version {
		fmt.Fprintln(stdout, version)
		return nil
	}

	logger, closer, err := logging.New(logging.Options{
		Verbose: cfg.Verbose,
		Quiet:   cfg.Quiet,
		Logfile: cfg.Logfile,
		Format:  flags.LogFormat,
		Stderr:  stderr,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	if flags.ServeMCP || flags.MCPAddr != "" {
		return serveMCP(ctx, cfg, flags, logger)
	}
	return realign(ctx, cfg, logger, stdout)
}

// realign runs one job and prints where the report and kept scratch went.
func realign(ctx context.Context, cfg config.RunConfig, logger *slog.Logger, stdout io.Writer) error {
	progress := orchestrator.NewProgressReporter()
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for ev := range progress.Subscribe() {
			logger.Debug(orchestrator.FormatProgress(ev))
		}
	}()

	outcome, err := orchestrator.Execute(ctx, cfg,
		orchestrator.WithLogger(logger),
		orchestrator.WithProgress(progress.Send),
	)
	progress.Close()
	<-drained

	if outcome != nil {
		if outcome.ScratchPath != "" {
			fmt.Fprintf(stdout, "scratch kept at %s\n", outcome.ScratchPath)
		}
		if outcome.Stats.Failed > 0 {
			logger.Warn("Some candidates failed.", "failed", outcome.Stats.Failed, "ids", outcome.FailedIDs)
		}
	}
	return err
}

func serveMCP(ctx context.Context, cfg config.RunConfig, flags cliFlags, logger *slog.Logger) error {
	svc := mcptools.NewService(cfg, nil, logger)
	server := mcptools.NewMultiparagraphMCPServer(svc)
	if flags.MCPAddr != "" {
		logger.Info("Serving MCP over HTTP.", "addr", flags.MCPAddr)
		return mcptools.RunHTTP(ctx, server, flags.MCPAddr)
	}
	return mcptools.RunStdio(ctx, server)
}
