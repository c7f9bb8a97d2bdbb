package report

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/calehall/appsmoke/pkg/core"
)

// DefaultFile is the report file written in the working directory.
const DefaultFile = "test_report.log"

// Writer appends report blocks to a plain-text file. Each Append is a
// single write of one complete block, so an interrupt between iterations
// never leaves a partial block behind.
type Writer struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewWriter creates a writer for the given report file path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	if path == "" {
		path = DefaultFile
	}
	return &Writer{path: path, logger: logger}
}

// Path returns the report file path.
func (w *Writer) Path() string { return w.path }

// Append formats the report and appends the block to the file.
func (w *Writer) Append(r core.Report) error {
	block := Format(r)

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open report file %s: %w", w.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(block); err != nil {
		return fmt.Errorf("append report: %w", err)
	}
	w.logger.Debug("report appended", "file", w.path, "issues", r.IssueCount())
	return nil
}
