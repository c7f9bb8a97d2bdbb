package scanner

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/calehall/appsmoke/pkg/core"
)

// DefaultPattern is where macOS writes per-user crash logs.
const DefaultPattern = "~/Library/Logs/DiagnosticReports/*.crash"

// Scanner matches log lines against a set of keyword categories.
type Scanner struct {
	keywords []core.Keyword
	pattern  *regexp.Regexp
	logger   *slog.Logger
}

// New compiles the keyword terms into a single case-insensitive matcher.
func New(keywords []core.Keyword, logger *slog.Logger) (*Scanner, error) {
	if len(keywords) == 0 {
		keywords = core.DefaultKeywords()
	}
	var terms []string
	for _, kw := range keywords {
		for _, term := range kw.Terms {
			terms = append(terms, regexp.QuoteMeta(term))
		}
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("no keyword terms configured")
	}
	re, err := regexp.Compile("(?i)" + strings.Join(terms, "|"))
	if err != nil {
		return nil, fmt.Errorf("compile keywords: %w", err)
	}
	return &Scanner{keywords: keywords, pattern: re, logger: logger}, nil
}

// Scan expands the glob pattern and scans every matched file.
// Unreadable files are skipped: this is a best-effort sweep of whatever
// diagnostic logs happen to exist, not a complete audit.
func (s *Scanner) Scan(pattern string) ([]core.Issue, error) {
	files, err := Expand(pattern)
	if err != nil {
		return nil, err
	}

	var issues []core.Issue
	for _, file := range files {
		found, err := s.scanFile(file)
		if err != nil {
			s.logger.Debug("skipping unreadable log", "file", file, "err", err)
			continue
		}
		issues = append(issues, found...)
	}
	return issues, nil
}

func (s *Scanner) scanFile(path string) ([]core.Issue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var issues []core.Issue
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if !s.pattern.MatchString(line) {
			continue
		}
		cat, ok := core.Classify(line, s.keywords)
		if !ok {
			continue
		}
		issues = append(issues, core.Issue{
			File:     path,
			Line:     n,
			Category: cat,
			Text:     strings.TrimSpace(line),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return issues, nil
}

// Expand resolves a log pattern to concrete file paths. A leading ~ is
// expanded to the current user's home directory. A pattern without glob
// metacharacters resolves to itself when the file exists, otherwise to
// nothing.
func Expand(pattern string) ([]string, error) {
	path := expandHome(pattern)

	if !strings.ContainsAny(path, "*?[") {
		if _, err := os.Stat(path); err != nil {
			return nil, nil
		}
		return []string{path}, nil
	}

	files, err := filepath.Glob(path)
	if err != nil {
		return nil, fmt.Errorf("bad log pattern %q: %w", pattern, err)
	}
	return files, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			if u, uerr := user.Current(); uerr == nil {
				home = u.HomeDir
			}
		}
		if home != "" {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}
