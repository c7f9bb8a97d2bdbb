package runner

import "github.com/calehall/appsmoke/pkg/core"

// Delta represents issue changes between two consecutive iterations.
type Delta struct {
	New      []core.Issue `json:"new,omitempty"`
	Resolved []core.Issue `json:"resolved,omitempty"`
}

// HasChanges returns true if the delta contains any changes.
func (d Delta) HasChanges() bool {
	return len(d.New) > 0 || len(d.Resolved) > 0
}

// ComputeDelta diffs two issue lists by source location. An issue counts as
// resolved when its log line no longer matches (usually because the log
// file rotated away).
func ComputeDelta(old, new []core.Issue) Delta {
	var d Delta

	seen := make(map[string]bool, len(old))
	for _, i := range old {
		seen[i.Ref()] = true
	}
	cur := make(map[string]bool, len(new))
	for _, i := range new {
		cur[i.Ref()] = true
		if !seen[i.Ref()] {
			d.New = append(d.New, i)
		}
	}
	for _, i := range old {
		if !cur[i.Ref()] {
			d.Resolved = append(d.Resolved, i)
		}
	}
	return d
}
