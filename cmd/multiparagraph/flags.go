package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dusk-indust/multiparagraph/internal/config"
)

// cliFlags holds everything parsed from the command line.
type cliFlags struct {
	BAM              string
	Ref              string
	Inputs           stringSlice
	Output           string
	Paragraph        string
	Threads          int
	ParagraphThreads int
	ScratchDir       string
	KeepScratch      bool
	Verbose          bool
	Quiet            bool
	Logfile          string
	LogFormat        string
	MaxEvents        int
	MinLength        int
	ExtendedOutput   bool
	Timeout          time.Duration

	ConfigFile string
	ServeMCP   bool
	MCPAddr    string
	Version    bool
}

type stringSlice []string

func (s *stringSlice) String() string     { return strings.Join(*s, ",") }
func (s *stringSlice) Set(v string) error { *s = append(*s, v); return nil }

func newFlagSet(stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("multiparagraph", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `multiparagraph: run paragraph on many candidates in parallel

Usage:
  multiparagraph [flags] [candidates.json ...]
  multiparagraph status <report.json>
  multiparagraph diagram <report.json> <ID>
  multiparagraph init [-force] [project-root]

Flags:
`)
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags parses args into a resolved RunConfig. Values come from
// defaults, then the -config file, then flags set explicitly on the command
// line. Positional arguments are further candidate files.
func parseFlags(args []string, defaults config.RunConfig, stderr io.Writer) (config.RunConfig, cliFlags, error) {
	var f cliFlags
	fs := newFlagSet(stderr)

	fs.StringVar(&f.BAM, "bam", "", "BAM file with the reads to align [required]")
	fs.StringVar(&f.Ref, "ref", "", "reference FASTA [required]")
	fs.Var(&f.Inputs, "input", "candidate JSON file (repeatable)")
	fs.StringVar(&f.Output, "output", "", "combined JSON report [required]")
	fs.StringVar(&f.Paragraph, "paragraph", defaults.Paragraph, "paragraph invocation, may include a wrapper prefix")
	fs.IntVar(&f.Threads, "threads", defaults.Threads, "candidates processed in parallel")
	fs.IntVar(&f.ParagraphThreads, "paragraph-threads", defaults.ParagraphThreads, "threads for each paragraph invocation")
	fs.StringVar(&f.ScratchDir, "scratch-dir", "", "base directory for temporary files (default: system temp dir)")
	fs.BoolVar(&f.KeepScratch, "keep-scratch", false, "keep temporary files and print their location")
	fs.BoolVar(&f.Verbose, "verbose", false, "log debug output")
	fs.BoolVar(&f.Quiet, "quiet", false, "log errors only")
	fs.StringVar(&f.Logfile, "logfile", "", "write log records to this file instead of stderr")
	fs.StringVar(&f.LogFormat, "log-format", "text", "log record format: text or json")
	fs.IntVar(&f.MaxEvents, "max-events", 0, "process at most this many candidates (0: all)")
	fs.IntVar(&f.MinLength, "min-length", 0, "skip candidates shorter than this")
	fs.BoolVar(&f.ExtendedOutput, "extended-output", false, "keep failure records and pass -E 1 to paragraph")
	fs.DurationVar(&f.Timeout, "timeout", 0, "per-candidate timeout, e.g. 30m (0: none)")
	fs.StringVar(&f.ConfigFile, "config", "", "YAML run file; flags override its values")
	fs.BoolVar(&f.ServeMCP, "serve-mcp", false, "run as an MCP server on stdio")
	fs.StringVar(&f.MCPAddr, "mcp-addr", "", "run as an MCP server on this HTTP address")
	fs.BoolVar(&f.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return config.RunConfig{}, f, err
	}
	f.Inputs = append(f.Inputs, fs.Args()...)

	cfg := defaults
	if f.ConfigFile != "" {
		loaded, err := config.Load(f.ConfigFile, defaults)
		if err != nil {
			return config.RunConfig{}, f, err
		}
		cfg = loaded
	}

	fs.Visit(func(fl *flag.Flag) { applyFlag(&cfg, f, fl.Name) })
	if len(fs.Args()) > 0 && !isSet(fs, "input") {
		cfg.Inputs = append(cfg.Inputs, fs.Args()...)
	}
	return cfg, f, nil
}

// applyFlag copies one explicitly set flag into cfg.
func applyFlag(cfg *config.RunConfig, f cliFlags, name string) {
	switch name {
	case "bam":
		cfg.BAM = f.BAM
	case "ref":
		cfg.Ref = f.Ref
	case "input":
		cfg.Inputs = append([]string(nil), f.Inputs...)
	case "output":
		cfg.Output = f.Output
	case "paragraph":
		cfg.Paragraph = f.Paragraph
	case "threads":
		cfg.Threads = f.Threads
	case "paragraph-threads":
		cfg.ParagraphThreads = f.ParagraphThreads
	case "scratch-dir":
		cfg.ScratchDir = f.ScratchDir
	case "keep-scratch":
		cfg.KeepScratch = f.KeepScratch
	case "verbose":
		cfg.Verbose = f.Verbose
	case "quiet":
		cfg.Quiet = f.Quiet
	case "logfile":
		cfg.Logfile = f.Logfile
	case "max-events":
		cfg.MaxEvents = f.MaxEvents
	case "min-length":
		cfg.MinLength = f.MinLength
	case "extended-output":
		cfg.ExtendedOutput = f.ExtendedOutput
	case "timeout":
		cfg.Timeout = f.Timeout
	}
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})
	return set
}
