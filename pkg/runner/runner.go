package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/calehall/appsmoke/pkg/core"
	"github.com/calehall/appsmoke/pkg/launcher"
	"github.com/calehall/appsmoke/pkg/report"
	"github.com/calehall/appsmoke/pkg/scanner"
)

// DefaultInterval is the pause between continuous-mode iterations.
const DefaultInterval = 10 * time.Second

// Options configures a test run of one application.
type Options struct {
	AppPath    string
	Logs       []string // glob patterns; empty means scanner.DefaultPattern
	Keywords   []core.Keyword
	Grace      time.Duration
	Interval   time.Duration
	SkipLaunch bool // scan logs without launching
}

// Runner drives launch -> grace -> liveness -> scan -> report cycles.
type Runner struct {
	Launcher *launcher.Launcher

	scanner *scanner.Scanner
	writer  *report.Writer
	opts    Options
	logger  *slog.Logger
}

// New creates a runner. The writer may be nil when callers only want the
// in-memory report (scan-only mode does not touch the report file).
func New(opts Options, w *report.Writer, logger *slog.Logger) (*Runner, error) {
	if opts.AppPath == "" && !opts.SkipLaunch {
		return nil, fmt.Errorf("application path is required")
	}
	if len(opts.Logs) == 0 {
		opts.Logs = []string{scanner.DefaultPattern}
	}
	if opts.Grace <= 0 {
		opts.Grace = launcher.DefaultGrace
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	sc, err := scanner.New(opts.Keywords, logger)
	if err != nil {
		return nil, err
	}
	return &Runner{
		Launcher: launcher.New(logger),
		scanner:  sc,
		writer:   w,
		opts:     opts,
		logger:   logger,
	}, nil
}

// RunOnce performs a single iteration: launch the app, wait the grace
// period, check liveness, scan the logs, and append the report block.
// Launch failures land in the report, not in the returned error.
func (r *Runner) RunOnce(ctx context.Context) (core.Report, error) {
	rep := core.NewReport(r.opts.AppPath, time.Now())

	switch {
	case r.opts.SkipLaunch:
		rep.Launch = core.LaunchSkipped
	default:
		if err := r.Launcher.Launch(ctx, r.opts.AppPath); err != nil {
			// An interrupt that kills the launcher is a cancelled run,
			// not a launch failure: no block may reach the report file.
			if ctx.Err() != nil {
				return rep, ctx.Err()
			}
			rep.Launch = core.LaunchFailed
			rep.LaunchError = err.Error()
			r.logger.Warn("launch failed", "app", r.opts.AppPath, "err", err)
		} else {
			rep.Launch = core.LaunchOK
		}
	}

	if rep.Launch == core.LaunchOK {
		if err := sleepCtx(ctx, r.opts.Grace); err != nil {
			return rep, err
		}
		rep.Running = r.Launcher.IsRunning(ctx, r.opts.AppPath)
		if !rep.Running {
			r.logger.Warn("application not running after grace period", "app", r.opts.AppPath)
		}
	}

	for _, pattern := range r.opts.Logs {
		issues, err := r.scanner.Scan(pattern)
		if err != nil {
			r.logger.Warn("log scan failed", "pattern", pattern, "err", err)
			continue
		}
		rep.Issues = append(rep.Issues, issues...)
	}

	if r.writer != nil {
		if err := r.writer.Append(rep); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

// Handler receives run lifecycle events in continuous mode.
type Handler interface {
	// OnStart is called before iteration n (1-based) begins.
	OnStart(n int)
	// OnReport is called with each completed iteration's report.
	OnReport(rep core.Report)
}

// Run executes iterations on the configured interval until ctx is
// cancelled. Returns nil on cancellation: an interrupted continuous run
// is a clean termination, not an error.
func (r *Runner) Run(ctx context.Context, h Handler) error {
	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		h.OnStart(n)
		rep, err := r.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		h.OnReport(rep)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
