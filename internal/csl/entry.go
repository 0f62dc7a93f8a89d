package csl

import "fmt"

// EntryType is the closed set of bibliographic entry types.
type EntryType string

const (
	TypeArticle     EntryType = "article"
	TypeBook        EntryType = "book"
	TypeChapter     EntryType = "chapter"
	TypePost        EntryType = "post"
	TypePerformance EntryType = "performance"
	TypeOriginal    EntryType = "original"
	TypeThesis      EntryType = "thesis"
	TypeReport      EntryType = "report"
	TypeWebpage     EntryType = "webpage"
	TypeMisc        EntryType = "misc"
)

// ValidEntryTypes defines the allowed entry types.
var ValidEntryTypes = map[EntryType]bool{
	TypeArticle:     true,
	TypeBook:        true,
	TypeChapter:     true,
	TypePost:        true,
	TypePerformance: true,
	TypeOriginal:    true,
	TypeThesis:      true,
	TypeReport:      true,
	TypeWebpage:     true,
	TypeMisc:        true,
}

// Entry is one immutable bibliographic record. Entries are owned by a
// Library and referenced everywhere else by ID only; the Vars map is
// never mutated after construction.
type Entry struct {
	ID   string               `json:"id"`
	Type EntryType            `json:"type"`
	Vars map[string]Value     `json:"vars"`
}

// Var returns the value for a variable name. Missing variables are
// reported via ok=false, never as an error: the style's conditionals are
// the intended mechanism for skipping absent data.
func (e *Entry) Var(name string) (Value, bool) {
	v, ok := e.Vars[name]
	if !ok || v == nil || v.Empty() {
		return nil, false
	}
	return v, true
}

// TextVar returns a text variable, or an empty Text if absent or of a
// different kind.
func (e *Entry) TextVar(name string) Text {
	if v, ok := e.Var(name); ok {
		if t, ok := v.(Text); ok {
			return t
		}
	}
	return Text{}
}

// NamesVar returns a name-list variable, or nil if absent.
func (e *Entry) NamesVar(name string) Names {
	if v, ok := e.Var(name); ok {
		if n, ok := v.(Names); ok {
			return n
		}
	}
	return nil
}

// DateVar returns a date variable and whether one is present.
func (e *Entry) DateVar(name string) (Date, bool) {
	if v, ok := e.Var(name); ok {
		if d, ok := v.(Date); ok {
			return d, true
		}
	}
	return Date{}, false
}

// Library is the read-only entry arena for one session. Entries are
// indexed by a stable integer ordinal assigned at load time, so citation
// history and disambiguation state can key off small ints rather than
// holding back-pointers into entry records.
type Library struct {
	entries []Entry
	byID    map[string]int
}

// NewLibrary builds a library from entries. Duplicate IDs are rejected:
// the entry store owns identity, and two records with one ID is a loader
// bug, not a rendering condition.
func NewLibrary(entries []Entry) (*Library, error) {
	lib := &Library{
		entries: make([]Entry, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}
	copy(lib.entries, entries)
	for i, e := range lib.entries {
		if e.ID == "" {
			return nil, fmt.Errorf("entry %d: missing id", i)
		}
		if _, dup := lib.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate entry id: %s", e.ID)
		}
		lib.byID[e.ID] = i
	}
	return lib, nil
}

// Get returns the entry for an ID and whether it exists.
func (l *Library) Get(id string) (*Entry, bool) {
	i, ok := l.byID[id]
	if !ok {
		return nil, false
	}
	return &l.entries[i], true
}

// Index returns the stable ordinal for an entry ID.
func (l *Library) Index(id string) (int, bool) {
	i, ok := l.byID[id]
	return i, ok
}

// Len returns the number of entries in the library.
func (l *Library) Len() int { return len(l.entries) }

// At returns the entry at a stable ordinal.
func (l *Library) At(i int) *Entry { return &l.entries[i] }
