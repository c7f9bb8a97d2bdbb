package manifest

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/calehall/appsmoke/pkg/core"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "appsmoke.yaml"

// Manifest represents an appsmoke.yaml configuration file.
type Manifest struct {
	Version  int            `yaml:"version"            json:"version"`
	Project  string         `yaml:"project"            json:"project"`
	Root     string         `yaml:"root,omitempty"     json:"root,omitempty"`
	Report   string         `yaml:"report,omitempty"   json:"report,omitempty"`
	Interval string         `yaml:"interval,omitempty" json:"interval,omitempty"`
	Apps     map[string]App `yaml:"apps"               json:"apps"`
	Keywords []core.Keyword `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// App is one application under test.
type App struct {
	Path  string   `yaml:"path"            json:"path"`
	Logs  []string `yaml:"logs,omitempty"  json:"logs,omitempty"`
	Grace string   `yaml:"grace,omitempty" json:"grace,omitempty"`
}

// IntervalDuration returns the continuous-mode interval, or fallback when
// the manifest doesn't set one.
func (m *Manifest) IntervalDuration(fallback time.Duration) time.Duration {
	if m.Interval == "" {
		return fallback
	}
	d, err := time.ParseDuration(m.Interval)
	if err != nil {
		return fallback
	}
	return d
}

// GraceDuration returns the app's post-launch grace period.
func (a App) GraceDuration(fallback time.Duration) time.Duration {
	if a.Grace == "" {
		return fallback
	}
	d, err := time.ParseDuration(a.Grace)
	if err != nil {
		return fallback
	}
	return d
}

// Parse decodes YAML and interpolates ${root} and ${project} references
// in path-valued fields.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	vars := map[string]string{
		"root":    m.Root,
		"project": m.Project,
	}
	m.Report = interpolate(m.Report, vars)
	for name, app := range m.Apps {
		app.Path = interpolate(app.Path, vars)
		for i, l := range app.Logs {
			app.Logs[i] = interpolate(l, vars)
		}
		m.Apps[name] = app
	}
	return &m, nil
}

// Load reads and parses a manifest from disk.
func Load(path string) (*Manifest, error) {
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Save writes the manifest to disk as YAML.
func Save(m *Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

func interpolate(s string, vars map[string]string) string {
	for k, v := range vars {
		if v == "" {
			continue
		}
		s = strings.ReplaceAll(s, "${"+k+"}", v)
	}
	return s
}
