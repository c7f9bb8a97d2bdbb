package model

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/calehall/appsmoke/pkg/core"
	"github.com/calehall/appsmoke/pkg/runner"
)

// Pane identifies which TUI pane is focused.
type Pane int

const (
	PaneList Pane = iota
	PaneDetail
)

// iteration is one completed test run plus its delta against the previous.
type iteration struct {
	Report core.Report
	Delta  runner.Delta
}

// App is the root Bubble Tea model for watch mode.
type App struct {
	appName  string
	interval time.Duration

	iterations  []iteration
	selectedIdx int
	follow      bool // keep selection pinned to the newest iteration

	activePane Pane
	detailTop  int // first visible line of the detail pane
	spin       spinner.Model
	running    bool // a run is in flight right now
	width      int
	height     int
	now        time.Time
}

// New creates a watch model for the given app.
func New(appName string, interval time.Duration) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return App{
		appName:  appName,
		interval: interval,
		follow:   true,
		spin:     sp,
		running:  true,
		now:      time.Now(),
	}
}

// Init sets the window title and starts the clock.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("appsmoke watch: "+a.appName),
		a.spin.Tick,
		tickCmd(),
	)
}

// ReportMsg carries a finished iteration from the runner goroutine.
type ReportMsg struct{ Report core.Report }

// RunStartedMsg marks the beginning of an iteration.
type RunStartedMsg struct{}

// tickMsg refreshes relative timestamps.
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tickMsg:
		a.now = time.Time(msg)
		return a, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case RunStartedMsg:
		a.running = true
		return a, nil

	case ReportMsg:
		var prev []core.Issue
		if n := len(a.iterations); n > 0 {
			prev = a.iterations[n-1].Report.Issues
		}
		a.iterations = append(a.iterations, iteration{
			Report: msg.Report,
			Delta:  runner.ComputeDelta(prev, msg.Report.Issues),
		})
		a.running = false
		if a.follow {
			a.selectedIdx = len(a.iterations) - 1
			a.detailTop = 0
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "tab":
		if a.activePane == PaneList {
			a.activePane = PaneDetail
		} else {
			a.activePane = PaneList
		}
		return a, nil

	case "up", "k":
		if a.activePane == PaneDetail {
			if a.detailTop > 0 {
				a.detailTop--
			}
			return a, nil
		}
		if a.selectedIdx > 0 {
			a.selectedIdx--
			a.follow = false
			a.detailTop = 0
		}
		return a, nil

	case "down", "j":
		if a.activePane == PaneDetail {
			a.detailTop++
			return a, nil
		}
		if a.selectedIdx < len(a.iterations)-1 {
			a.selectedIdx++
			a.follow = a.selectedIdx == len(a.iterations)-1
			a.detailTop = 0
		}
		return a, nil

	case "g":
		if a.activePane == PaneList && len(a.iterations) > 0 {
			a.selectedIdx = 0
			a.follow = false
			a.detailTop = 0
		}
		return a, nil

	case "G", "end":
		if len(a.iterations) > 0 {
			a.selectedIdx = len(a.iterations) - 1
			a.follow = true
			a.detailTop = 0
		}
		return a, nil
	}

	return a, nil
}
