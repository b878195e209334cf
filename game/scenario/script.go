package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/campus-quest/game/catalog"
	"github.com/wricardo/campus-quest/game/engine"
)

// Script is a named, verifiable replay.
type Script struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	World       string   `yaml:"world" json:"world"`
	Start       *int     `yaml:"start,omitempty" json:"start,omitempty"`
	Commands    []string `yaml:"commands" json:"commands"`
	ExpectedLog []int    `yaml:"expected_log" json:"expected_log"`
	// ExpectedOutcome is one of ongoing, won, lost or quit. Empty skips the check.
	ExpectedOutcome engine.Status `yaml:"expected_outcome,omitempty" json:"expected_outcome,omitempty"`
	ExpectedScore   *int          `yaml:"expected_score,omitempty" json:"expected_score,omitempty"`
}

// LoadScript reads one YAML script. The name defaults to the file name.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Code("SCRIPT_READ_FAILED").With("path", path).Wrap(err)
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, oops.Code("SCRIPT_INVALID").With("path", path).Wrap(err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if len(s.Commands) == 0 {
		return nil, oops.Code("SCRIPT_INVALID").With("path", path).Errorf("script %s has no commands", s.Name)
	}
	return &s, nil
}

// LoadScripts reads every .yaml/.yml script in dir, sorted by name.
func LoadScripts(dir string) ([]*Script, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, oops.Code("SCRIPT_READ_FAILED").With("dir", dir).Wrap(err)
	}

	var scripts []*Script
	for _, entry := range entries {
		if entry.IsDir() || catalog.FormatFromPath(entry.Name()) != catalog.FormatYAML {
			continue
		}
		s, err := LoadScript(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}
	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Name < scripts[j].Name })
	return scripts, nil
}

// Run replays the script on cat. The start defaults to the world's start.
func (s *Script) Run(cat *catalog.Catalog) (*Result, error) {
	start := engine.SettingsFor(cat).StartLocation
	if s.Start != nil {
		start = *s.Start
	}
	return Simulate(cat, start, s.Commands)
}

// Verify compares a replay against the script's expectations.
func (s *Script) Verify(res *Result) error {
	errb := oops.Code("SCENARIO_MISMATCH").With("script", s.Name)

	if s.ExpectedLog != nil && !slices.Equal(s.ExpectedLog, res.IDs) {
		at := firstDifference(s.ExpectedLog, res.IDs)
		return errb.
			With("index", at).
			Errorf("id log differs at step %d: expected %v, got %v", at, s.ExpectedLog, res.IDs)
	}
	if s.ExpectedOutcome != "" && s.ExpectedOutcome != res.Outcome.Status {
		return errb.Errorf("expected outcome %s, got %s", s.ExpectedOutcome, res.Outcome.Status)
	}
	if s.ExpectedScore != nil && *s.ExpectedScore != res.Score {
		return errb.Errorf("expected score %d, got %d", *s.ExpectedScore, res.Score)
	}
	return nil
}

func firstDifference(a, b []int) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// String describes the script in one line.
func (s *Script) String() string {
	return fmt.Sprintf("%s (%s, %d commands)", s.Name, s.World, len(s.Commands))
}
