package launcher

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
)

// ProcessName derives the process name to look for from a bundle path:
// /Applications/Safari.app -> Safari.
func ProcessName(appPath string) string {
	return strings.TrimSuffix(filepath.Base(appPath), ".app")
}

// IsRunning reports whether a process named after the bundle exists.
// pgrep matches the process name exactly, so unrelated processes whose
// command line merely mentions the app (including our own) don't count.
// A single point-in-time check; callers wait the grace period first.
func (l *Launcher) IsRunning(ctx context.Context, appPath string) bool {
	name := ProcessName(appPath)
	if name == "" {
		return false
	}
	cmd := exec.CommandContext(ctx, "pgrep", "-x", name)
	if err := cmd.Run(); err != nil {
		return false
	}
	return true
}
