package core

import (
	"testing"
	"time"
)

func TestNewReport(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local)
	r := NewReport("/Applications/Safari.app", ts)
	if r.AppName != "Safari.app" {
		t.Errorf("expected Safari.app, got %s", r.AppName)
	}
	if !r.Timestamp.Equal(ts) {
		t.Errorf("timestamp not preserved: %v", r.Timestamp)
	}
}

func TestIssueCountMatchesIssues(t *testing.T) {
	r := NewReport("/tmp/Demo.app", time.Now())
	if r.IssueCount() != 0 {
		t.Errorf("empty report: expected 0 issues, got %d", r.IssueCount())
	}
	r.Issues = append(r.Issues,
		Issue{File: "a.crash", Line: 1, Category: CategoryError, Text: "error: boom"},
		Issue{File: "a.crash", Line: 9, Category: CategoryCrash, Text: "crashed"},
	)
	if r.IssueCount() != len(r.Issues) {
		t.Errorf("issue count %d != len(issues) %d", r.IssueCount(), len(r.Issues))
	}
}

func TestPassed(t *testing.T) {
	tests := []struct {
		name   string
		launch LaunchStatus
		issues []Issue
		want   bool
	}{
		{"clean run", LaunchOK, nil, true},
		{"launch failed", LaunchFailed, nil, false},
		{"issues found", LaunchOK, []Issue{{File: "x", Line: 1}}, false},
		{"both bad", LaunchFailed, []Issue{{File: "x", Line: 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Report{Launch: tt.launch, Issues: tt.issues}
			if got := r.Passed(); got != tt.want {
				t.Errorf("Passed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIssueRef(t *testing.T) {
	i := Issue{File: "/var/log/a.crash", Line: 42}
	if i.Ref() != "/var/log/a.crash:42" {
		t.Errorf("unexpected ref: %s", i.Ref())
	}
}
