package library

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bibkit/bibkit/internal/csl"
)

// entryDoc is the YAML shape of one entry: id and type, plus open-ended
// variables captured as raw nodes and typed by shape afterwards.
type entryDoc struct {
	ID   string                `yaml:"id"`
	Type string                `yaml:"type"`
	Vars map[string]yaml.Node `yaml:",inline"`
}

type personDoc struct {
	Given       string `yaml:"given"`
	Family      string `yaml:"family"`
	NonDropping string `yaml:"non_dropping"`
	Dropping    string `yaml:"dropping"`
	Suffix      string `yaml:"suffix"`
}

type dateDoc struct {
	Year        int      `yaml:"year"`
	Month       int      `yaml:"month"`
	Day         int      `yaml:"day"`
	Season      int      `yaml:"season"`
	Approximate bool     `yaml:"approximate"`
	End         *dateDoc `yaml:"end"`
}

// LoadEntries reads a YAML entry collection into a Library.
func LoadEntries(path string) (*csl.Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entries file: %w", err)
	}
	lib, err := ParseEntries(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

// ParseEntries parses a YAML document with a top-level "entries" list.
func ParseEntries(data []byte) (*csl.Library, error) {
	var doc struct {
		Entries []entryDoc `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse entries: %w", err)
	}

	entries := make([]csl.Entry, 0, len(doc.Entries))
	for i, ed := range doc.Entries {
		e, err := buildEntry(ed)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%q): %w", i, ed.ID, err)
		}
		entries = append(entries, e)
	}
	return csl.NewLibrary(entries)
}

func buildEntry(ed entryDoc) (csl.Entry, error) {
	e := csl.Entry{ID: ed.ID, Vars: make(map[string]csl.Value, len(ed.Vars))}

	if ed.Type == "" {
		e.Type = csl.TypeMisc
	} else {
		et := csl.EntryType(ed.Type)
		if !csl.ValidEntryTypes[et] {
			return e, fmt.Errorf("unknown entry type %q", ed.Type)
		}
		e.Type = et
	}

	for name, node := range ed.Vars {
		v, err := decodeValue(&node)
		if err != nil {
			return e, fmt.Errorf("variable %q: %w", name, err)
		}
		if v == nil || v.Empty() {
			continue
		}
		e.Vars[name] = v
	}
	return e, nil
}

// decodeValue types a raw YAML node by its shape.
func decodeValue(node *yaml.Node) (csl.Value, error) {
	if node == nil {
		return nil, nil
	}

	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!int" {
			return csl.Number{Raw: node.Value}, nil
		}
		return csl.ParseBraces(node.Value), nil

	case yaml.SequenceNode:
		var people []personDoc
		if err := node.Decode(&people); err != nil {
			return nil, fmt.Errorf("decode name list: %w", err)
		}
		names := make(csl.Names, 0, len(people))
		for _, p := range people {
			names = append(names, csl.PersonName{
				Given:       p.Given,
				Family:      p.Family,
				NonDropping: p.NonDropping,
				Dropping:    p.Dropping,
				Suffix:      p.Suffix,
			})
		}
		return names, nil

	case yaml.MappingNode:
		if mappingHasKey(node, "year") {
			var dd dateDoc
			if err := node.Decode(&dd); err != nil {
				return nil, fmt.Errorf("decode date: %w", err)
			}
			return buildDate(dd), nil
		}
		var serials csl.Serials
		if err := node.Decode(&serials); err != nil {
			return nil, fmt.Errorf("decode serials: %w", err)
		}
		return serials, nil

	default:
		return nil, fmt.Errorf("unsupported value shape (line %d)", node.Line)
	}
}

func buildDate(dd dateDoc) csl.Date {
	d := csl.Date{
		Year:        dd.Year,
		Month:       dd.Month,
		Day:         dd.Day,
		Season:      dd.Season,
		Approximate: dd.Approximate,
	}
	if dd.End != nil {
		end := buildDate(*dd.End)
		d.End = &end
	}
	return d
}

// mappingHasKey checks a mapping node for a top-level key without
// decoding it.
func mappingHasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}
