package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/calehall/appsmoke/internal/buildinfo"
	"github.com/calehall/appsmoke/pkg/core"
	"github.com/calehall/appsmoke/pkg/launcher"
	"github.com/calehall/appsmoke/pkg/manifest"
	"github.com/calehall/appsmoke/pkg/report"
	"github.com/calehall/appsmoke/pkg/runner"
	"github.com/calehall/appsmoke/pkg/scanner"
	tuimodel "github.com/calehall/appsmoke/pkg/tui/model"
)

// errIssuesFound marks a run that completed but found trouble; main maps
// it to exit code 1, everything else to 2.
var errIssuesFound = errors.New("issues detected")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errIssuesFound) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}

var (
	logPattern   string
	reportFile   string
	verbose      bool
	continuous   bool
	graceFlag    time.Duration
	intervalFlag time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "appsmoke <app-path>",
	Short: "Smoke-test macOS applications",
	Long: "Appsmoke launches a macOS application bundle, waits for it to settle,\n" +
		"checks that it is still running, and scans diagnostic logs for error,\n" +
		"crash, and failure keywords, appending a timestamped report block to\n" +
		"test_report.log.",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logPattern, "log", scanner.DefaultPattern, "glob pattern of log files to scan")
	rootCmd.PersistentFlags().StringVar(&reportFile, "report", report.DefaultFile, "report file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.Flags().BoolVar(&continuous, "continuous", false, "relaunch and rescan on a fixed interval until interrupted")
	rootCmd.Flags().DurationVar(&graceFlag, "grace", launcher.DefaultGrace, "pause between launch and log scan")
	rootCmd.Flags().DurationVar(&intervalFlag, "interval", runner.DefaultInterval, "pause between continuous-mode iterations")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(manifestCmd)
	rootCmd.AddCommand(versionCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func warnIfNotBundle(out io.Writer, appPath string) {
	if !strings.HasSuffix(appPath, ".app") {
		fmt.Fprintf(out, "Warning: %s does not appear to be a macOS application bundle (.app)\n", appPath)
	}
}

// --- Root: single or continuous run ---

func runRoot(cmd *cobra.Command, args []string) error {
	appPath := args[0]
	out := cmd.OutOrStdout()
	warnIfNotBundle(out, appPath)

	logger := newLogger()
	w := report.NewWriter(reportFile, logger)
	r, err := runner.New(runner.Options{
		AppPath:  appPath,
		Logs:     []string{logPattern},
		Grace:    graceFlag,
		Interval: intervalFlag,
	}, w, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	if continuous {
		fmt.Fprintf(out, "Starting continuous testing of %s\n", appPath)
		fmt.Fprintln(out, "Press Ctrl+C to stop")
		return r.Run(ctx, &consoleHandler{out: out})
	}

	fmt.Fprintf(out, "Testing application: %s\n", appPath)
	rep, err := r.RunOnce(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	fmt.Fprint(out, report.Format(rep))
	if rep.Passed() {
		fmt.Fprintln(out, "Test passed")
		return nil
	}
	fmt.Fprintln(out, "Test failed: issues detected")
	return errIssuesFound
}

// consoleHandler prints each continuous-mode report block.
type consoleHandler struct {
	out io.Writer
}

func (h *consoleHandler) OnStart(int) {}

func (h *consoleHandler) OnReport(rep core.Report) {
	fmt.Fprint(h.out, report.Format(rep))
}

// --- Watch: continuous run with live TUI ---

var watchCmd = &cobra.Command{
	Use:   "watch <app-path>",
	Short: "Continuous testing with a live terminal view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appPath := args[0]
		logger := newLogger()
		w := report.NewWriter(reportFile, logger)
		r, err := runner.New(runner.Options{
			AppPath:  appPath,
			Logs:     []string{logPattern},
			Grace:    graceFlag,
			Interval: intervalFlag,
		}, w, logger)
		if err != nil {
			return err
		}

		sigCtx, stop := signalContext()
		defer stop()
		ctx, cancel := context.WithCancel(sigCtx)
		defer cancel()

		app := tuimodel.New(launcher.ProcessName(appPath), intervalFlag)
		p := tea.NewProgram(app, tea.WithAltScreen())

		g := new(errgroup.Group)
		g.Go(func() error {
			defer cancel()
			_, err := p.Run()
			return err
		})
		g.Go(func() error {
			defer p.Quit()
			return r.Run(ctx, &teaHandler{program: p})
		})
		return g.Wait()
	},
}

func init() {
	watchCmd.Flags().DurationVar(&graceFlag, "grace", launcher.DefaultGrace, "pause between launch and log scan")
	watchCmd.Flags().DurationVar(&intervalFlag, "interval", runner.DefaultInterval, "pause between iterations")
}

// teaHandler forwards run events to the Bubble Tea program.
type teaHandler struct {
	program *tea.Program
}

func (h *teaHandler) OnStart(int) {
	h.program.Send(tuimodel.RunStartedMsg{})
}

func (h *teaHandler) OnReport(rep core.Report) {
	h.program.Send(tuimodel.ReportMsg{Report: rep})
}

// --- Run: test every app in a manifest ---

var (
	manifestFlag  string
	runContinuous bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Test every application in an appsmoke.yaml manifest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		logger := newLogger()

		m, err := manifest.Load(manifestFlag)
		if err != nil {
			return err
		}
		if errs := manifest.Validate(m); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, "manifest:", e)
			}
			return fmt.Errorf("invalid manifest")
		}

		path := m.Report
		if path == "" {
			path = reportFile
		}
		w := report.NewWriter(path, logger)

		ctx, stop := signalContext()
		defer stop()

		if runContinuous {
			fmt.Fprintf(out, "Starting continuous testing of %d apps\n", len(m.Apps))
			fmt.Fprintln(out, "Press Ctrl+C to stop")
			return runManifestLoop(ctx, out, m, w, logger, m.IntervalDuration(intervalFlag))
		}

		failed, err := runManifestPass(ctx, out, m, w, logger)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if failed {
			fmt.Fprintln(out, "Test failed: issues detected")
			return errIssuesFound
		}
		fmt.Fprintln(out, "Test passed")
		return nil
	},
}

// runManifestPass tests each manifest app once, in name order, and
// reports whether any of them failed.
func runManifestPass(ctx context.Context, out io.Writer, m *manifest.Manifest, w *report.Writer, logger *slog.Logger) (bool, error) {
	names := make([]string, 0, len(m.Apps))
	for name := range m.Apps {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := false
	for _, name := range names {
		app := m.Apps[name]
		fmt.Fprintf(out, "Testing application: %s\n", app.Path)
		r, err := runner.New(runner.Options{
			AppPath:  app.Path,
			Logs:     app.Logs,
			Keywords: m.Keywords,
			Grace:    app.GraceDuration(graceFlag),
		}, w, logger)
		if err != nil {
			return failed, err
		}
		rep, err := r.RunOnce(ctx)
		if err != nil {
			return failed, err
		}
		fmt.Fprint(out, report.Format(rep))
		if !rep.Passed() {
			failed = true
		}
	}
	return failed, nil
}

// runManifestLoop repeats manifest passes on the given interval until
// ctx is cancelled. Cancellation is a clean stop, never an error.
func runManifestLoop(ctx context.Context, out io.Writer, m *manifest.Manifest, w *report.Writer, logger *slog.Logger, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := runManifestPass(ctx, out, m, w, logger); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func init() {
	runCmd.Flags().StringVar(&manifestFlag, "manifest", manifest.DefaultPath, "path to appsmoke.yaml")
	runCmd.Flags().BoolVar(&runContinuous, "continuous", false, "repeat passes on the manifest interval until interrupted")
}

// --- Scan: scan logs without launching anything ---

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan log files for trouble keywords without launching an app",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		logger := newLogger()

		r, err := runner.New(runner.Options{
			SkipLaunch: true,
			Logs:       []string{logPattern},
		}, nil, logger)
		if err != nil {
			return err
		}
		rep, err := r.RunOnce(cmd.Context())
		if err != nil {
			return err
		}

		for _, issue := range rep.Issues {
			fmt.Fprintf(out, "%-5s [%s] %s\n", issue.Category, issue.Ref(), issue.Text)
		}
		fmt.Fprintf(out, "Issues Found: %d\n", rep.IssueCount())
		if rep.IssueCount() > 0 {
			return errIssuesFound
		}
		return nil
	},
}

// --- Manifest ---

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Manage appsmoke.yaml manifests",
}

var manifestInitOutput string

var manifestInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a starter appsmoke.yaml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m := &manifest.Manifest{
			Version:  1,
			Project:  "smoke",
			Interval: "10s",
			Apps: map[string]manifest.App{
				"example": {
					Path: "/Applications/Example.app",
					Logs: []string{scanner.DefaultPattern},
				},
			},
			Keywords: core.DefaultKeywords(),
		}
		if err := manifest.Save(m, manifestInitOutput); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated %s with %d apps\n", manifestInitOutput, len(m.Apps))
		return nil
	},
}

var manifestValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate an appsmoke.yaml manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := manifest.Load(args[0])
		if err != nil {
			return err
		}
		if errs := manifest.Validate(m); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, e)
			}
			return fmt.Errorf("%d validation error(s)", len(errs))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d apps\n", args[0], len(m.Apps))
		return nil
	},
}

func init() {
	manifestInitCmd.Flags().StringVar(&manifestInitOutput, "output", manifest.DefaultPath, "output path")
	manifestCmd.AddCommand(manifestInitCmd)
	manifestCmd.AddCommand(manifestValidateCmd)
}

// --- Version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "appsmoke %s (%s) built %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	},
}
