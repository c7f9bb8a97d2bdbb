package launcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds how long we wait for the open command. A GUI
	// app that detaches and keeps the launcher alive past the deadline
	// still counts as launched.
	DefaultTimeout = 30 * time.Second

	// DefaultGrace is the pause between launching and checking logs, so
	// a crashing app has time to produce a diagnostic report.
	DefaultGrace = 2 * time.Second
)

// Launcher starts application bundles via the platform open command.
type Launcher struct {
	// Command is the launch command prefix; the bundle path is appended.
	Command []string
	// Timeout bounds a single launch attempt.
	Timeout time.Duration

	logger *slog.Logger
}

// New creates a launcher using the macOS open mechanism.
func New(logger *slog.Logger) *Launcher {
	return &Launcher{
		Command: []string{"open"},
		Timeout: DefaultTimeout,
		logger:  logger,
	}
}

// Launch starts the application at appPath. A nil error means the app
// launched; the error message otherwise carries the launcher's stderr so
// the report can show why.
func (l *Launcher) Launch(ctx context.Context, appPath string) error {
	if _, err := os.Stat(appPath); err != nil {
		return fmt.Errorf("application not found at %s", appPath)
	}

	lctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	args := append(append([]string{}, l.Command[1:]...), appPath)
	cmd := exec.CommandContext(lctx, l.Command[0], args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		l.logger.Info("application launched", "app", appPath)
		return nil
	}

	// The launcher outliving the timeout is normal for GUI apps: the
	// process was killed by the context, not the app failing.
	if errors.Is(lctx.Err(), context.DeadlineExceeded) {
		l.logger.Info("launcher still running at timeout, assuming launched", "app", appPath)
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("launcher exited with code %d: %s", exitErr.ExitCode(), msg)
	}
	return fmt.Errorf("launch %s: %w", appPath, err)
}
