package launch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/dpquoc/zerolaunch/lib/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig returns a small CPU topology so launcher tests spawn two
// shell processes instead of eight.
func testConfig() *config.LaunchConfig {
	cfg := config.Defaults()
	cfg.NumProcesses = config.Count(2)
	cfg.UseCPU = true
	return cfg
}

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("launcher tests drive /bin/sh")
	}
}

func TestNew_RejectsEmptyCommand(t *testing.T) {
	_, err := New(testConfig(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no training command")
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MixedPrecision = "int8"
	_, err := New(cfg, []string{"true"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mixed_precision")
}

func TestNew_AssignsJobID(t *testing.T) {
	a, err := New(testConfig(), []string{"true"})
	require.NoError(t, err)
	b, err := New(testConfig(), []string{"true"})
	require.NoError(t, err)

	assert.NotEmpty(t, a.JobID())
	assert.NotEqual(t, a.JobID(), b.JobID())
	assert.Equal(t, 2, a.Plan().WorldSize)
}

func TestRun_AllWorkersSucceed(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()
	l, err := New(testConfig(),
		[]string{"sh", "-c", "touch " + filepath.Join(dir, "rank-$RANK")},
		WithOutput(io.Discard, io.Discard))
	require.NoError(t, err)

	require.NoError(t, l.Run(context.Background()))

	// Each worker saw its own rank.
	for _, name := range []string{"rank-0", "rank-1"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "worker %s did not run", name)
	}
}

func TestRun_JobIDReachesWorkers(t *testing.T) {
	requireShell(t)

	l, err := New(testConfig(),
		[]string{"sh", "-c", `test -n "$ZEROLAUNCH_JOB_ID"`},
		WithOutput(io.Discard, io.Discard))
	require.NoError(t, err)

	assert.NoError(t, l.Run(context.Background()))
}

func TestRun_WorkerFailurePropagates(t *testing.T) {
	requireShell(t)

	l, err := New(testConfig(),
		[]string{"sh", "-c", `if [ "$RANK" = "1" ]; then exit 3; fi`},
		WithOutput(io.Discard, io.Discard))
	require.NoError(t, err)

	err = l.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rank 1")
}

func TestRun_RestartBudgetExhausted(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()
	counter := filepath.Join(dir, "attempts")
	cfg := testConfig()
	cfg.NumProcesses = config.Count(1)

	// Every attempt appends a line, then fails.
	l, err := New(cfg,
		[]string{"sh", "-c", "echo x >> " + counter + "; exit 1"},
		WithMaxRestarts(1), WithOutput(io.Discard, io.Discard))
	require.NoError(t, err)

	err = l.Run(context.Background())
	require.Error(t, err)

	data, readErr := os.ReadFile(counter)
	require.NoError(t, readErr)
	assert.Len(t, data, 4, "expected the initial attempt plus one restart")
}

func TestRun_CancelledContextIsNotAWorkerFailure(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	l, err := New(testConfig(),
		[]string{"sh", "-c", "sleep 30"},
		WithOutput(io.Discard, io.Discard))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "interrupted")
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
