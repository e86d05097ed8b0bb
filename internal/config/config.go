package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"
)

// DefaultParagraph is the tool invocation used when none is configured.
const DefaultParagraph = "paragraph"

// RunConfig holds the fully resolved parameters for one multiparagraph run.
// It is built once (flags, YAML file, defaults) and not mutated afterwards.
type RunConfig struct {
	// BAM is the read alignment file handed to every invocation.
	BAM string `yaml:"bam,omitempty"`

	// Ref is the reference FASTA handed to every invocation.
	Ref string `yaml:"ref,omitempty"`

	// Inputs lists candidate files in the order their records are emitted.
	Inputs []string `yaml:"input,omitempty"`

	// Output is the path of the combined JSON report.
	Output string `yaml:"output,omitempty"`

	// Paragraph is the tool invocation string. It may carry a wrapper prefix,
	// e.g. "module-wrapper.sh /opt/paragraph/bin/paragraph".
	Paragraph string `yaml:"paragraph,omitempty"`

	// Threads is the number of candidates processed concurrently.
	Threads int `yaml:"threads,omitempty"`

	// ParagraphThreads is passed to each invocation as --threads.
	ParagraphThreads int `yaml:"paragraph_threads,omitempty"`

	// ScratchDir is the base for the run's working area. Empty means TempRoot.
	ScratchDir string `yaml:"scratch_dir,omitempty"`

	// KeepScratch retains the working area after the run.
	KeepScratch bool `yaml:"keep_scratch,omitempty"`

	Verbose bool   `yaml:"verbose,omitempty"`
	Quiet   bool   `yaml:"quiet,omitempty"`
	Logfile string `yaml:"logfile,omitempty"`

	// MaxEvents caps the number of candidates processed. 0 means no cap.
	MaxEvents int `yaml:"max_events,omitempty"`

	// MinLength drops candidates whose event length is below it. 0 disables.
	MinLength int `yaml:"min_length,omitempty"`

	// ExtendedOutput keeps failure records in the report and passes -E 1 to
	// the tool.
	ExtendedOutput bool `yaml:"extended_output,omitempty"`

	// Timeout bounds a single invocation. 0 means no timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// TempRoot is where the working area is created when ScratchDir is empty.
	// It is resolved by the caller, never read from the environment here.
	TempRoot string `yaml:"-"`
}

// Defaults returns a RunConfig carrying the values used for unset fields.
func Defaults(tempRoot string, cpus int) RunConfig {
	if cpus < 1 {
		cpus = 1
	}
	return RunConfig{
		Paragraph:        DefaultParagraph,
		Threads:          cpus,
		ParagraphThreads: 1,
		TempRoot:         tempRoot,
	}
}

// Load reads a YAML run file. Fields absent from the file keep the values
// already present in base.
func Load(path string, base RunConfig) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, &ConfigError{Field: "config", Err: err}
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, &ConfigError{Field: "config", Err: fmt.Errorf("parse %s: %w", path, err)}
	}
	return cfg, nil
}

// Command tokenizes the tool invocation string into an argv prefix using
// shell word rules. The result is never handed to a shell.
func (c RunConfig) Command() ([]string, error) {
	words, err := shellquote.Split(c.Paragraph)
	if err != nil {
		return nil, &ConfigError{Field: "paragraph", Err: err}
	}
	if len(words) == 0 {
		return nil, &ConfigError{Field: "paragraph", Err: errors.New("empty invocation")}
	}
	return words, nil
}

// Validate checks the configuration before any work starts. All problems are
// reported together in a single ConfigError chain.
func (c RunConfig) Validate() error {
	var errs []error

	requirePath := func(field, path string) {
		if strings.TrimSpace(path) == "" {
			errs = append(errs, &ConfigError{Field: field, Err: errors.New("required")})
			return
		}
		if _, err := os.Stat(path); err != nil {
			errs = append(errs, &ConfigError{Field: field, Err: err})
		}
	}

	requirePath("bam", c.BAM)
	requirePath("ref", c.Ref)
	if len(c.Inputs) == 0 {
		errs = append(errs, &ConfigError{Field: "input", Err: errors.New("at least one candidate file is required")})
	}
	for _, in := range c.Inputs {
		requirePath("input", in)
	}
	if strings.TrimSpace(c.Output) == "" {
		errs = append(errs, &ConfigError{Field: "output", Err: errors.New("required")})
	}

	if c.Threads < 1 {
		errs = append(errs, &ConfigError{Field: "threads", Err: fmt.Errorf("must be >= 1, got %d", c.Threads)})
	}
	if c.ParagraphThreads < 1 {
		errs = append(errs, &ConfigError{Field: "paragraph_threads", Err: fmt.Errorf("must be >= 1, got %d", c.ParagraphThreads)})
	}
	if c.MaxEvents < 0 {
		errs = append(errs, &ConfigError{Field: "max_events", Err: fmt.Errorf("must be >= 0, got %d", c.MaxEvents)})
	}
	if c.MinLength < 0 {
		errs = append(errs, &ConfigError{Field: "min_length", Err: fmt.Errorf("must be >= 0, got %d", c.MinLength)})
	}
	if c.Timeout < 0 {
		errs = append(errs, &ConfigError{Field: "timeout", Err: fmt.Errorf("must be >= 0, got %s", c.Timeout)})
	}
	if c.ScratchDir == "" && c.TempRoot == "" {
		errs = append(errs, &ConfigError{Field: "scratch_dir", Err: errors.New("no scratch dir and no temp root")})
	}

	if argv, err := c.Command(); err != nil {
		errs = append(errs, err)
	} else if _, err := exec.LookPath(argv[0]); err != nil {
		errs = append(errs, &ConfigError{Field: "paragraph", Err: err})
	}

	return errors.Join(errs...)
}

// Normalize returns a copy with bam, ref and output made absolute so they can
// be recorded in the report independent of the working directory. The scratch
// and temp roots are made absolute too, since each tool invocation runs with
// its candidate directory as working directory.
func (c RunConfig) Normalize() (RunConfig, error) {
	out := c
	out.Inputs = append([]string(nil), c.Inputs...)
	for _, p := range []*string{&out.BAM, &out.Ref, &out.Output, &out.ScratchDir, &out.TempRoot} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return c, &ConfigError{Field: "path", Err: err}
		}
		*p = abs
	}
	return out, nil
}
