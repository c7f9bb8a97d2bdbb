package core

import (
	"fmt"
	"path/filepath"
	"time"
)

// LaunchStatus represents the outcome of launching an application.
type LaunchStatus string

const (
	LaunchOK      LaunchStatus = "launched"
	LaunchFailed  LaunchStatus = "failed"
	LaunchSkipped LaunchStatus = "skipped"
)

// Issue is a single log line matched against a configured keyword.
type Issue struct {
	File     string   `json:"file"`
	Line     int      `json:"line"` // 1-based
	Category Category `json:"category"`
	Text     string   `json:"text"`
}

// Ref renders the issue's source location as path:line.
func (i Issue) Ref() string {
	return fmt.Sprintf("%s:%d", i.File, i.Line)
}

// Report is one smoke-test run of one application.
type Report struct {
	AppPath     string       `json:"app_path"`
	AppName     string       `json:"app_name"`
	Timestamp   time.Time    `json:"timestamp"`
	Launch      LaunchStatus `json:"launch"`
	LaunchError string       `json:"launch_error,omitempty"`
	Running     bool         `json:"running"`
	Issues      []Issue      `json:"issues,omitempty"`
}

// NewReport constructs a report for the given bundle path.
func NewReport(appPath string, ts time.Time) Report {
	return Report{
		AppPath:   appPath,
		AppName:   filepath.Base(appPath),
		Timestamp: ts,
	}
}

// IssueCount returns the number of issues in the report.
func (r Report) IssueCount() int {
	return len(r.Issues)
}

// Passed reports whether the run is clean: the app launched and no log
// lines matched any keyword.
func (r Report) Passed() bool {
	return r.Launch == LaunchOK && len(r.Issues) == 0
}
