package paragraph

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/multiparagraph/internal/candidate"
	"github.com/dusk-indust/multiparagraph/internal/config"
)

// fakeParagraph returns the tool invocation for the test stand-in, using sh
// as a wrapper prefix the way real installs wrap the binary.
func fakeParagraph(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake paragraph needs a POSIX shell")
	}
	script, err := filepath.Abs(filepath.Join("..", "..", "testdata", "fake-paragraph.sh"))
	require.NoError(t, err)
	return "sh " + script
}

func testInvoker(t *testing.T, mutate func(*config.RunConfig)) *Invoker {
	t.Helper()
	cfg := config.RunConfig{
		BAM:              "/data/reads.bam",
		Ref:              "/data/ref.fa",
		Paragraph:        fakeParagraph(t),
		ParagraphThreads: 2,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	iv, err := NewInvoker(cfg)
	require.NoError(t, err)
	return iv
}

func record(id string, data map[string]any) candidate.Record {
	data["ID"] = id
	return candidate.Record{ID: id, Data: data}
}

func TestArgs_PrefixThenFlags(t *testing.T) {
	iv, err := NewInvoker(config.RunConfig{
		BAM:              "/data/my reads.bam",
		Ref:              "/data/ref.fa",
		Paragraph:        "/opt/module-wrapper.sh /opt/paragraph/bin/paragraph",
		ParagraphThreads: 4,
		ExtendedOutput:   true,
	})
	require.NoError(t, err)

	argv := iv.Args("/scratch/c/candidate.json", "/scratch/c/out.json")
	assert.Equal(t, []string{
		"/opt/module-wrapper.sh", "/opt/paragraph/bin/paragraph",
		"-r", "/data/ref.fa",
		"-b", "/data/my reads.bam",
		"-g", "/scratch/c/candidate.json",
		"-o", "/scratch/c/out.json",
		"--threads", "4",
		"-E", "1",
	}, argv)
}

func TestArgs_NoExtendedFlag(t *testing.T) {
	iv, err := NewInvoker(config.RunConfig{Paragraph: "paragraph", ParagraphThreads: 0})
	require.NoError(t, err)
	argv := iv.Args("g", "o")
	assert.NotContains(t, argv, "-E")
	assert.Equal(t, "1", argv[len(argv)-1], "thread count defaults to 1")
}

func TestInvoke_Success(t *testing.T) {
	iv := testInvoker(t, nil)
	dir := t.TempDir()

	res := iv.Invoke(context.Background(), record("del-1", map[string]any{"chrom": "chr1"}), dir)

	require.Equal(t, StatusSucceeded, res.Status, res.Reason)
	assert.False(t, res.Failed())
	assert.Equal(t, "del-1", res.ID)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Output, "aligned reads")
	assert.Contains(t, res.Commandline, "--threads 2")
	assert.Contains(t, res.Commandline, filepath.Join(dir, GraphFile))

	require.Contains(t, res.Graph, "alignment_statistics")
	assert.Equal(t, json.Number("2"), res.Graph["threads"])
	assert.Equal(t, false, res.Graph["extended"])

	written, err := os.ReadFile(filepath.Join(dir, GraphFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ID":"del-1","chrom":"chr1"}`, string(written))
}

func TestInvoke_ExtendedOutputFlag(t *testing.T) {
	iv := testInvoker(t, func(c *config.RunConfig) { c.ExtendedOutput = true })
	res := iv.Invoke(context.Background(), record("x", map[string]any{}), t.TempDir())
	require.Equal(t, StatusSucceeded, res.Status, res.Reason)
	assert.Equal(t, true, res.Graph["extended"])
}

func TestInvoke_NonZeroExit(t *testing.T) {
	iv := testInvoker(t, nil)
	res := iv.Invoke(context.Background(), record("bad", map[string]any{"fail": true}), t.TempDir())

	assert.Equal(t, StatusFailed, res.Status)
	assert.True(t, res.Failed())
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "exit status 3", res.Reason)
	assert.Contains(t, res.Output, "cannot build graph")
	assert.Nil(t, res.Graph)
}

func TestInvoke_UnparseableOutput(t *testing.T) {
	iv := testInvoker(t, nil)
	res := iv.Invoke(context.Background(), record("junk", map[string]any{"garbage": true}), t.TempDir())

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, ReasonUnparseable, res.Reason)
}

func TestInvoke_MissingExecutable(t *testing.T) {
	iv := testInvoker(t, func(c *config.RunConfig) {
		c.Paragraph = filepath.Join(t.TempDir(), "no-such-paragraph")
	})
	res := iv.Invoke(context.Background(), record("x", map[string]any{}), t.TempDir())
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, -1, res.ExitCode)
	assert.Contains(t, res.Reason, "start:")
}

func TestInvoke_KilledBySignal(t *testing.T) {
	iv := testInvoker(t, nil)
	res := iv.Invoke(context.Background(), record("oom", map[string]any{"killed": true}), t.TempDir())

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, -1, res.ExitCode)
	assert.Equal(t, "signal: killed", res.Reason)
}

func TestNewInvoker_RelativePrefix(t *testing.T) {
	fakeParagraph(t)
	td, err := filepath.Abs(filepath.Join("..", "..", "testdata"))
	require.NoError(t, err)
	t.Chdir(td)

	iv := testInvoker(t, func(c *config.RunConfig) { c.Paragraph = "sh fake-paragraph.sh --verbose" })
	argv := iv.Args("g.json", "o.json")
	assert.Equal(t, "sh", argv[0], "bare names are left to PATH lookup")
	assert.Equal(t, filepath.Join(td, "fake-paragraph.sh"), argv[1])
	assert.Equal(t, "--verbose", argv[2])

	// The child runs elsewhere, so the wrapper script must still be found.
	res := iv.Invoke(context.Background(), record("rel", map[string]any{}), t.TempDir())
	assert.Equal(t, StatusSucceeded, res.Status, res.Reason)
}

func TestNewInvoker_RelativeExecutable(t *testing.T) {
	fakeParagraph(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run-paragraph"), []byte("#!/bin/sh\n"), 0o755))
	t.Chdir(dir)

	iv := testInvoker(t, func(c *config.RunConfig) { c.Paragraph = "./run-paragraph" })
	assert.Equal(t, filepath.Join(dir, "run-paragraph"), iv.Args("g", "o")[0])
}

func TestInvoke_Timeout(t *testing.T) {
	iv := testInvoker(t, func(c *config.RunConfig) { c.Timeout = 200 * time.Millisecond })

	start := time.Now()
	res := iv.Invoke(context.Background(), record("slow", map[string]any{"sleep": true}), t.TempDir())

	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Reason, "timed out")
	assert.Less(t, time.Since(start), 10*time.Second, "process group should be killed promptly")
}

func TestReadGraph(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		ok      bool
	}{
		{"object", `{"nodes":[]}`, true},
		{"array", `[1,2]`, false},
		{"null", `null`, false},
		{"trailing", `{"a":1} {"b":2}`, false},
		{"trailing bracket", `{"a":1}]`, false},
		{"trailing brace", `{"a":1}}`, false},
		{"trailing newline", "{\"a\":1}\n", true},
		{"empty", ``, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := filepath.Join(dir, tc.name+".json")
			require.NoError(t, os.WriteFile(p, []byte(tc.content), 0o644))
			_, err := readGraph(p)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
