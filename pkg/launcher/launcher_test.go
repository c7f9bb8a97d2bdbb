package launcher

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestLaunchMissingPath(t *testing.T) {
	l := New(testLogger())
	err := l.Launch(context.Background(), filepath.Join(t.TempDir(), "Nope.app"))
	if err == nil {
		t.Fatal("expected error for missing bundle")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLaunchSuccess(t *testing.T) {
	l := New(testLogger())
	l.Command = []string{"true"}
	target := t.TempDir()
	if err := l.Launch(context.Background(), target); err != nil {
		t.Errorf("expected success, got %v", err)
	}
}

func TestLaunchNonzeroExit(t *testing.T) {
	l := New(testLogger())
	l.Command = []string{"sh", "-c", "echo no such app >&2; exit 3"}
	err := l.Launch(context.Background(), t.TempDir())
	if err == nil {
		t.Fatal("expected error for nonzero exit")
	}
	if !strings.Contains(err.Error(), "code 3") {
		t.Errorf("expected exit code in message, got %v", err)
	}
	if !strings.Contains(err.Error(), "no such app") {
		t.Errorf("expected stderr in message, got %v", err)
	}
}

func TestLaunchTimeoutCountsAsSuccess(t *testing.T) {
	l := New(testLogger())
	l.Command = []string{"sh", "-c", "sleep 5"}
	l.Timeout = 100 * time.Millisecond
	start := time.Now()
	if err := l.Launch(context.Background(), t.TempDir()); err != nil {
		t.Errorf("timed-out launcher should count as launched, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("launch did not respect timeout")
	}
}

func TestIsRunningIgnoresNameInArguments(t *testing.T) {
	// A bystander whose command line merely mentions the app name must
	// not count as the app being alive.
	bystander := exec.Command("sh", "-c", "sleep 3 # PhantomGhostApp")
	if err := bystander.Start(); err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = bystander.Process.Kill()
		_, _ = bystander.Process.Wait()
	}()

	l := New(testLogger())
	if l.IsRunning(context.Background(), "/Applications/PhantomGhostApp.app") {
		t.Error("matched a process that only mentions the app name in its arguments")
	}
}

func TestProcessName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/Applications/Safari.app", "Safari"},
		{"/tmp/My App.app", "My App"},
		{"/usr/local/bin/tool", "tool"},
	}
	for _, tt := range tests {
		if got := ProcessName(tt.path); got != tt.want {
			t.Errorf("ProcessName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
