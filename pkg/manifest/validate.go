package manifest

import (
	"fmt"
	"time"
)

// Validate checks the manifest for structural correctness.
func Validate(m *Manifest) []error {
	var errs []error

	if m.Version != 1 {
		errs = append(errs, fmt.Errorf("version must be 1, got %d", m.Version))
	}

	if len(m.Apps) == 0 {
		errs = append(errs, fmt.Errorf("manifest must define at least one app"))
	}

	if m.Interval != "" {
		if _, err := time.ParseDuration(m.Interval); err != nil {
			errs = append(errs, fmt.Errorf("interval: %v", err))
		}
	}

	for name, app := range m.Apps {
		if app.Path == "" {
			errs = append(errs, fmt.Errorf("app %q: path is required", name))
		}
		if app.Grace != "" {
			if _, err := time.ParseDuration(app.Grace); err != nil {
				errs = append(errs, fmt.Errorf("app %q: grace: %v", name, err))
			}
		}
	}

	for i, kw := range m.Keywords {
		if kw.Category == "" {
			errs = append(errs, fmt.Errorf("keyword %d: category is required", i))
		}
		if len(kw.Terms) == 0 {
			errs = append(errs, fmt.Errorf("keyword %q: terms is required", kw.Category))
		}
	}

	return errs
}
