package report

import (
	"fmt"
	"strings"

	"github.com/calehall/appsmoke/pkg/core"
)

const timeLayout = "2006-01-02 15:04:05"

// Format renders a report as the fixed text block that gets printed and
// appended to the report file. Deterministic given its inputs.
func Format(r core.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== Test Report for %s ===\n\n", r.AppName)
	fmt.Fprintf(&b, "Timestamp: %s\n", r.Timestamp.Format(timeLayout))

	if r.Launch == core.LaunchOK {
		b.WriteString("App Status: Launched successfully\n")
	} else {
		fmt.Fprintf(&b, "App Status: Failed: %s\n", r.LaunchError)
	}

	fmt.Fprintf(&b, "\nIssues Found: %d\n", r.IssueCount())
	if len(r.Issues) > 0 {
		b.WriteString("\nDetailed Issues:\n")
		for _, issue := range r.Issues {
			fmt.Fprintf(&b, "  [%s] %s\n", issue.Ref(), issue.Text)
		}
	} else {
		b.WriteString("No issues detected\n")
	}

	b.WriteString("\n=== End of Report ===\n")
	return b.String()
}
