package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/calehall/appsmoke/pkg/core"
	"github.com/calehall/appsmoke/pkg/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	statusOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusIssues = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusFailed = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	activePaneStyle = paneStyle.
			BorderForeground(lipgloss.Color("205"))

	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	newStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the TUI.
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "loading..."
	}

	mainH := a.mainHeight()
	listW := a.listWidth()
	detailW := a.width - listW - 6

	list := a.renderList(mainH)
	listPane := a.paneBox(PaneList, " Runs ", list, listW, mainH)

	detailPane := a.paneBox(PaneDetail, " Report ", a.renderDetail(mainH-2), detailW, mainH)

	main := lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
	return lipgloss.JoinVertical(lipgloss.Left, main, a.renderStatusBar())
}

func (a App) mainHeight() int {
	h := a.height - 4
	if h < 5 {
		h = 5
	}
	return h
}

func (a App) listWidth() int {
	w := a.width * 2 / 5
	if w < 24 {
		w = 24
	}
	return w
}

func (a App) paneBox(p Pane, title, content string, w, h int) string {
	style := paneStyle
	if a.activePane == p {
		style = activePaneStyle
	}
	head := titleStyle.Render(title)
	return style.Width(w).Height(h).Render(head + "\n" + content)
}

func (a App) renderList(maxRows int) string {
	if len(a.iterations) == 0 {
		return dimStyle.Render("no runs yet")
	}

	rows := maxRows - 2
	if rows < 1 {
		rows = 1
	}
	start := 0
	if len(a.iterations) > rows {
		start = len(a.iterations) - rows
		if a.selectedIdx < start {
			start = a.selectedIdx
		}
	}

	var b strings.Builder
	for i := start; i < len(a.iterations) && i < start+rows; i++ {
		it := a.iterations[i]
		line := fmt.Sprintf("#%-3d %s  %s", i+1,
			it.Report.Timestamp.Format("15:04:05"),
			a.renderOutcome(it.Report))
		if it.Delta.HasChanges() && len(it.Delta.New) > 0 {
			line += newStyle.Render(fmt.Sprintf(" +%d new", len(it.Delta.New)))
		}
		if i == a.selectedIdx {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a App) renderDetail(h int) string {
	if len(a.iterations) == 0 {
		return a.spin.View() + dimStyle.Render(" waiting for first run...")
	}
	it := a.iterations[a.selectedIdx]
	lines := strings.Split(strings.TrimRight(report.Format(it.Report), "\n"), "\n")

	top := a.detailTop
	if top > len(lines)-1 {
		top = len(lines) - 1
	}
	if top < 0 {
		top = 0
	}
	end := top + h
	if end > len(lines) {
		end = len(lines)
	}
	visible := lines[top:end]

	out := strings.Join(visible, "\n")
	if a.running {
		out += "\n\n" + a.spin.View() + dimStyle.Render(" running...")
	}
	return out
}

func (a App) renderOutcome(r core.Report) string {
	switch {
	case r.Launch == core.LaunchFailed:
		return statusFailed.Render("launch failed")
	case r.Launch == core.LaunchOK && !r.Running:
		return statusFailed.Render("not running")
	case r.IssueCount() > 0:
		return statusIssues.Render(fmt.Sprintf("issues: %d", r.IssueCount()))
	default:
		return statusOK.Render("clean")
	}
}

func (a App) renderStatusBar() string {
	left := titleStyle.Render(" appsmoke ") + dimStyle.Render(a.appName)

	var last string
	if n := len(a.iterations); n > 0 {
		ago := a.now.Sub(a.iterations[n-1].Report.Timestamp).Round(time.Second)
		last = dimStyle.Render(fmt.Sprintf("  last run %s ago, every %s", ago, a.interval))
	} else {
		last = dimStyle.Render(fmt.Sprintf("  every %s", a.interval))
	}

	help := helpStyle.Render("  tab: pane  j/k: select  G: follow  q: quit")
	return left + last + help
}
