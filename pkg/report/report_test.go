package report

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/calehall/appsmoke/pkg/core"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func sampleReport() core.Report {
	r := core.NewReport("/Applications/Demo.app", time.Date(2026, 8, 29, 10, 30, 0, 0, time.Local))
	r.Launch = core.LaunchOK
	return r
}

func TestFormatCleanRun(t *testing.T) {
	got := Format(sampleReport())
	want := "=== Test Report for Demo.app ===\n" +
		"\n" +
		"Timestamp: 2026-08-29 10:30:00\n" +
		"App Status: Launched successfully\n" +
		"\n" +
		"Issues Found: 0\n" +
		"No issues detected\n" +
		"\n" +
		"=== End of Report ===\n"
	if got != want {
		t.Errorf("format mismatch:\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestFormatWithIssues(t *testing.T) {
	r := sampleReport()
	r.Issues = []core.Issue{
		{File: "/var/log/a.crash", Line: 42, Category: core.CategoryFail, Text: "connection failed"},
		{File: "/var/log/a.crash", Line: 87, Category: core.CategoryCrash, Text: "segmentation fault"},
	}
	got := Format(r)

	if !strings.Contains(got, "Issues Found: 2\n") {
		t.Error("missing issue count")
	}
	if !strings.Contains(got, "  [/var/log/a.crash:42] connection failed\n") {
		t.Errorf("missing line-42 issue:\n%s", got)
	}
	if !strings.Contains(got, "  [/var/log/a.crash:87] segmentation fault\n") {
		t.Errorf("missing line-87 issue:\n%s", got)
	}
	if strings.Contains(got, "No issues detected") {
		t.Error("clean-run text in issue report")
	}
}

func TestFormatLaunchFailure(t *testing.T) {
	r := sampleReport()
	r.Launch = core.LaunchFailed
	r.LaunchError = "launcher exited with code 1: no such bundle"
	got := Format(r)
	if !strings.Contains(got, "App Status: Failed: launcher exited with code 1: no such bundle\n") {
		t.Errorf("missing failure status:\n%s", got)
	}
}

func TestFormatIssueCountMatchesList(t *testing.T) {
	r := sampleReport()
	for i := 1; i <= 5; i++ {
		r.Issues = append(r.Issues, core.Issue{File: "f", Line: i, Category: core.CategoryError, Text: "error"})
	}
	got := Format(r)
	if !strings.Contains(got, "Issues Found: 5\n") {
		t.Error("count does not match issue list")
	}
	if strings.Count(got, "\n  [") != 5 {
		t.Errorf("expected 5 itemized issues:\n%s", got)
	}
}

func TestWriterAppendsCompleteBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_report.log")
	w := NewWriter(path, testLogger())

	for i := 0; i < 3; i++ {
		if err := w.Append(sampleReport()); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if n := strings.Count(content, "=== Test Report for Demo.app ==="); n != 3 {
		t.Errorf("expected 3 report headers, got %d", n)
	}
	if n := strings.Count(content, "=== End of Report ==="); n != 3 {
		t.Errorf("expected 3 report footers, got %d", n)
	}
	if !strings.HasSuffix(content, "=== End of Report ===\n") {
		t.Error("file does not end on a block boundary")
	}
}

func TestWriterDefaultPath(t *testing.T) {
	w := NewWriter("", testLogger())
	if w.Path() != DefaultFile {
		t.Errorf("default path = %q, want %q", w.Path(), DefaultFile)
	}
}
