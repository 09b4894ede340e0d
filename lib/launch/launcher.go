package launch

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/dpquoc/zerolaunch/lib/config"
	"github.com/dpquoc/zerolaunch/lib/util/logger"
	"github.com/dpquoc/zerolaunch/lib/util/signals"
	"github.com/google/uuid"
	"github.com/samber/oops"
	"golang.org/x/time/rate"
)

var log = logger.GetLogger()

// defaultRestartInterval throttles worker restarts so a crash-looping
// training script cannot spin the machine.
const defaultRestartInterval = 10 * time.Second

// Launcher runs the training command once per local worker process with
// the rendered distributed environment, and supervises the set until the
// job finishes or fails.
type Launcher struct {
	cfg     *config.LaunchConfig
	plan    *Plan
	command []string
	jobID   string

	maxRestarts int
	limiter     *rate.Limiter

	stdout io.Writer
	stderr io.Writer
}

// Option customizes a Launcher.
type Option func(*Launcher)

// WithMaxRestarts allows failed workers to be restarted up to n times
// each, throttled to one restart per restart interval across the job.
func WithMaxRestarts(n int) Option {
	return func(l *Launcher) {
		l.maxRestarts = n
	}
}

// WithOutput redirects worker stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(l *Launcher) {
		l.stdout = stdout
		l.stderr = stderr
	}
}

// New builds a Launcher for cfg running command. The config is validated
// and expanded into this machine's plan up front, so a malformed document
// fails here rather than mid-launch.
func New(cfg *config.LaunchConfig, command []string, opts ...Option) (*Launcher, error) {
	if len(command) == 0 {
		return nil, oops.Errorf("no training command given")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings() {
		log.WithField("warning", w).Warn("Launch configuration warning")
	}
	plan, err := NewPlan(cfg)
	if err != nil {
		return nil, err
	}

	l := &Launcher{
		cfg:     cfg,
		plan:    plan,
		command: command,
		jobID:   uuid.NewString(),
		limiter: rate.NewLimiter(rate.Every(defaultRestartInterval), 1),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// JobID returns the launch's unique identifier, stamped into worker logs.
func (l *Launcher) JobID() string {
	return l.jobID
}

// Plan returns the resolved execution plan.
func (l *Launcher) Plan() *Plan {
	return l.plan
}

// Run launches every local worker process and blocks until all exit. The
// first worker failure cancels the rest. SIGINT/SIGTERM cancel the whole
// job; the context error is returned so callers can tell an interrupted
// job from a failed one.
func (l *Launcher) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigID := signals.RegisterInterruptHandler(signals.Handler(cancel))
	defer signals.DeregisterInterruptHandler(sigID)

	log.WithFields(map[string]interface{}{
		"job_id":     l.jobID,
		"world_size": l.plan.WorldSize,
		"local":      len(l.plan.Local),
		"command":    l.command[0],
	}).Debug("Starting workers")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, spec := range l.plan.Local {
		wg.Add(1)
		go func(spec ProcessSpec) {
			defer wg.Done()
			if err := l.runWorker(ctx, spec); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				cancel()
			}
		}(spec)
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return oops.With("job_id", l.jobID).Wrapf(err, "job interrupted")
	}
	log.WithField("job_id", l.jobID).Debug("All workers finished")
	return nil
}

// runWorker runs one worker process to completion, restarting it within
// the restart budget when it fails.
func (l *Launcher) runWorker(ctx context.Context, spec ProcessSpec) error {
	env := Environ(l.cfg, l.plan, spec)
	env = append(env, "ZEROLAUNCH_JOB_ID="+l.jobID)

	for restarts := 0; ; restarts++ {
		cmd := exec.CommandContext(ctx, l.command[0], l.command[1:]...)
		cmd.Env = env
		cmd.Stdout = l.stdout
		cmd.Stderr = l.stderr

		err := cmd.Run()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			// Cancellation kills workers; that is not a worker failure.
			return nil
		}
		if restarts >= l.maxRestarts {
			return oops.With("rank", spec.Rank).With("restarts", restarts).
				Wrapf(err, "worker rank %d failed", spec.Rank)
		}
		log.WithError(err).WithField("rank", spec.Rank).Warn("Worker failed, restarting")
		if err := l.limiter.Wait(ctx); err != nil {
			return nil
		}
	}
}
