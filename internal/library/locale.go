package library

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bibkit/bibkit/internal/csl"
)

// localeDoc is the YAML shape of a locale document. Every section is
// optional; omitted sections keep the built-in English values, so a
// locale file only declares what differs.
type localeDoc struct {
	Code    string             `yaml:"code"`
	Terms   map[string]termDoc `yaml:"terms"`
	Months  []string           `yaml:"months"`
	Seasons []string           `yaml:"seasons"`
	And     string             `yaml:"and"`
	EtAl    string             `yaml:"et_al"`
}

type termDoc struct {
	One  string `yaml:"one"`
	Many string `yaml:"many"`
}

// LoadLocale reads a YAML locale document.
func LoadLocale(path string) (*csl.Locale, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locale file: %w", err)
	}
	loc, err := ParseLocale(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return loc, nil
}

// ParseLocale parses a YAML document with a top-level "locale" struct,
// overlaying it on the built-in English locale.
func ParseLocale(data []byte) (*csl.Locale, error) {
	var doc struct {
		Locale *localeDoc `yaml:"locale"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse locale: %w", err)
	}
	if doc.Locale == nil {
		return nil, fmt.Errorf("parse locale: top-level locale struct is required")
	}

	loc := csl.EnglishLocale()
	ld := doc.Locale

	if ld.Code != "" {
		loc.Code = ld.Code
	}
	for name, td := range ld.Terms {
		loc.Terms[name] = csl.Term{Singular: td.One, Plural: td.Many}
	}
	if len(ld.Months) > 0 {
		if len(ld.Months) != 12 {
			return nil, fmt.Errorf("parse locale: months needs 12 names, got %d", len(ld.Months))
		}
		loc.Months = ld.Months
	}
	if len(ld.Seasons) > 0 {
		if len(ld.Seasons) != 4 {
			return nil, fmt.Errorf("parse locale: seasons needs 4 names, got %d", len(ld.Seasons))
		}
		loc.Seasons = ld.Seasons
	}
	if ld.And != "" {
		loc.AndTerm = ld.And
	}
	if ld.EtAl != "" {
		loc.EtAlTerm = ld.EtAl
	}
	return loc, nil
}
