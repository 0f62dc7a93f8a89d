package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one conformance test: a style, a library, and a sequence
// of citation steps with expected renders.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Style is the path to the CUE style file.
	Style string `yaml:"style"`

	// Entries is the path to the YAML entry library.
	Entries string `yaml:"entries"`

	// Locale is an optional path to a YAML locale overlay. Empty means
	// the built-in English locale.
	Locale string `yaml:"locale,omitempty"`

	// Session is the fixed session token. A stable token keeps golden
	// files deterministic; empty defaults to "harness-session".
	Session string `yaml:"session,omitempty"`

	// Steps are the citation events, in document order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final history and bibliography.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one citation event. Expect, when set, is checked against the
// plain text of the step's immediate render, before any later event
// retroactively refreshes it.
type Step struct {
	Cite   []ItemStep `yaml:"cite"`
	Expect string     `yaml:"expect,omitempty"`
}

// ItemStep is one cite item within a step.
type ItemStep struct {
	Entry   string `yaml:"entry"`
	Locator string `yaml:"locator,omitempty"`
	Label   string `yaml:"label,omitempty"`
	Prefix  string `yaml:"prefix,omitempty"`
	Suffix  string `yaml:"suffix,omitempty"`
}

// Assertion validates the final document state.
type Assertion struct {
	// Type selects the check:
	//   - "cited": Entry appears in the history; Count > 0 pins the
	//     exact number of citing events.
	//   - "position": the event at Seq carries Position.
	//   - "text": the event at Seq renders Expect after all
	//     retroactive refreshes.
	//   - "bibliography_order": the bibliography lists exactly
	//     Entries, in order.
	Type string `yaml:"type"`

	Entry    string   `yaml:"entry,omitempty"`
	Count    int      `yaml:"count,omitempty"`
	Seq      int64    `yaml:"seq,omitempty"`
	Position string   `yaml:"position,omitempty"`
	Expect   string   `yaml:"expect,omitempty"`
	Entries  []string `yaml:"entries,omitempty"`
}

// Assertion type constants.
const (
	AssertCited             = "cited"
	AssertPosition          = "position"
	AssertText              = "text"
	AssertBibliographyOrder = "bibliography_order"
)

// DefaultSession is the session token used when a scenario declares
// none.
const DefaultSession = "harness-session"

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected so typos fail loudly, and the style, entries, and locale
// paths resolve relative to the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	base := filepath.Dir(path)
	scenario.Style = resolve(base, scenario.Style)
	scenario.Entries = resolve(base, scenario.Entries)
	scenario.Locale = resolve(base, scenario.Locale)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Style == "" {
		return fmt.Errorf("style is required")
	}
	if s.Entries == "" {
		return fmt.Errorf("entries is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, step := range s.Steps {
		for j, item := range step.Cite {
			if item.Entry == "" {
				return fmt.Errorf("steps[%d].cite[%d]: entry is required", i, j)
			}
		}
	}
	for i, a := range s.Assertions {
		switch a.Type {
		case AssertCited:
			if a.Entry == "" {
				return fmt.Errorf("assertions[%d]: cited needs an entry", i)
			}
		case AssertPosition:
			if a.Seq == 0 || a.Position == "" {
				return fmt.Errorf("assertions[%d]: position needs seq and position", i)
			}
		case AssertText:
			if a.Seq == 0 {
				return fmt.Errorf("assertions[%d]: text needs a seq", i)
			}
		case AssertBibliographyOrder:
			if len(a.Entries) == 0 {
				return fmt.Errorf("assertions[%d]: bibliography_order needs entries", i)
			}
		default:
			return fmt.Errorf("assertions[%d]: unknown type %q", i, a.Type)
		}
	}
	if s.Session == "" {
		s.Session = DefaultSession
	}
	return nil
}
