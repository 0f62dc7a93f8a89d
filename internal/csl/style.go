package csl

// Node is a sealed interface over the style tree's rendering elements.
// Only Layout, Group, Choose, TextNode, NamesNode, DateNode, NumberNode,
// and LabelNode implement it. The vocabulary is defined by the style
// format and is not run-time extensible, so the interpreter walks the
// tree by type switch rather than open-ended dispatch.
//
// Style trees are shared and immutable once compiled; the interpreter
// never mutates them.
type Node interface {
	node() // Sealed - only these types implement it
}

// TextCase selects a case transform. Transforms never touch verbatim
// spans or punctuation.
type TextCase string

const (
	CaseNone            TextCase = ""
	CaseLower           TextCase = "lowercase"
	CaseUpper           TextCase = "uppercase"
	CaseTitle           TextCase = "title"
	CaseSentence        TextCase = "sentence"
	CaseCapitalizeFirst TextCase = "capitalize-first"
)

// Formatting carries the options common to every rendering element.
// Affixes attach to an element's output only when that output is
// non-empty.
type Formatting struct {
	Prefix    string   `json:"prefix,omitempty"`
	Suffix    string   `json:"suffix,omitempty"`
	Delimiter string   `json:"delimiter,omitempty"`
	TextCase  TextCase `json:"text_case,omitempty"`
	Tag       RunTag   `json:"tag,omitempty"`   // semantic tag for emitted runs
	Block     bool     `json:"block,omitempty"` // display block (bibliography entries)
}

// Layout is the root rendering element of a citation or bibliography.
// Delimiter separates cite items within one citation cluster.
type Layout struct {
	Formatting
	Children []Node `json:"children"`
}

func (Layout) node() {}

// Group renders its children joined by Delimiter. A group is suppressed
// entirely, affixes included, when every variable referenced within it
// rendered empty. Groups that reference no variable at all are kept.
type Group struct {
	Formatting
	Children []Node `json:"children"`
}

func (Group) node() {}

// Position is a citation's relation to the history that precedes it.
type Position string

const (
	PositionFirst       Position = "first"
	PositionSubsequent  Position = "subsequent"
	PositionIbid        Position = "ibid"
	PositionIbidLocator Position = "ibid-with-locator"
	PositionNearNote    Position = "near-note"
)

// Condition is one testable predicate of a choose branch. Multiple set
// fields must all hold (Match "all", the default) or any (Match "any").
type Condition struct {
	Types        []EntryType `json:"types,omitempty"`         // entry-type membership
	Variables    []string    `json:"variables,omitempty"`     // variable presence
	LocatorTypes []string    `json:"locator_types,omitempty"` // locator label kind
	IsNumeric    []string    `json:"is_numeric,omitempty"`    // variable parses as integer
	Positions    []Position  `json:"positions,omitempty"`     // citation position
	Disambiguate bool        `json:"disambiguate,omitempty"`  // disambiguation pass requested
	Match        string      `json:"match,omitempty"`         // "all" (default) | "any" | "none"
}

// Branch is one arm of a Choose element.
type Branch struct {
	Cond     Condition `json:"cond"`
	Children []Node    `json:"children"`
}

// Choose selects the first branch whose condition matches, otherwise the
// Else children, otherwise nothing.
type Choose struct {
	Branches []Branch `json:"branches"`
	Else     []Node   `json:"else,omitempty"`
}

func (Choose) node() {}

// TextNode renders a variable, a locale term, or a literal string.
// Exactly one of Variable, Term, Literal is set.
type TextNode struct {
	Formatting
	Variable string `json:"variable,omitempty"`
	Term     string `json:"term,omitempty"`
	Literal  string `json:"literal,omitempty"`
}

func (TextNode) node() {}

// NameForm selects how given names render.
type NameForm string

const (
	NameLong     NameForm = "long"     // given family
	NameShort    NameForm = "short"    // family only
	NameInitials NameForm = "initials" // initialized given names
)

// NamesNode renders one or more name-list variables.
type NamesNode struct {
	Formatting
	Variables    []string `json:"variables"`
	Form         NameForm `json:"form,omitempty"`
	EtAlMin      int      `json:"et_al_min,omitempty"`       // threshold that triggers et-al
	EtAlUseFirst int      `json:"et_al_use_first,omitempty"` // names kept before et-al
	And          string   `json:"and,omitempty"`             // "text" | "symbol" | "" (delimiter only)
	SortOrder    bool     `json:"sort_order,omitempty"`      // family-first ordering
}

func (NamesNode) node() {}

// DateForm selects a locale-aware date rendering.
type DateForm string

const (
	DateNumeric  DateForm = "numeric"   // 2020-03-14
	DateTextual  DateForm = "text"      // March 14, 2020
	DateYearOnly DateForm = "year-only" // 2020
)

// DateNode renders a structured date variable. Missing parts are
// omitted, never zero-filled; a range end inserts RangeDelimiter.
type DateNode struct {
	Formatting
	Variable       string   `json:"variable"`
	Form           DateForm `json:"form,omitempty"`
	RangeDelimiter string   `json:"range_delimiter,omitempty"` // default en-dash
}

func (DateNode) node() {}

// NumberForm selects a numeric word form.
type NumberForm string

const (
	NumberCardinal NumberForm = "cardinal" // 3
	NumberOrdinal  NumberForm = "ordinal"  // 3rd
	NumberRoman    NumberForm = "roman"    // iii
)

// NumberNode renders a numeric variable. Word forms apply only when the
// value parses as an integer; other text passes through unchanged.
type NumberNode struct {
	Formatting
	Variable string     `json:"variable"`
	Form     NumberForm `json:"form,omitempty"`
}

func (NumberNode) node() {}

// LabelNode renders a locale term, pluralized against the count of an
// associated variable (a name list's length, a locator's plurality).
type LabelNode struct {
	Formatting
	Term     string `json:"term"`
	Variable string `json:"variable,omitempty"`
	Plural   string `json:"plural,omitempty"` // "contextual" (default) | "always" | "never"
}

func (LabelNode) node() {}

// SortDirection orders a sort key.
type SortDirection string

const (
	SortAscending  SortDirection = "ascending"
	SortDescending SortDirection = "descending"
)

// SortKey is one key of the bibliography sort specification.
type SortKey struct {
	Variable  string        `json:"variable"`
	Direction SortDirection `json:"direction,omitempty"`
}

// DisambRule names a style-declared disambiguation technique, applied in
// declaration order, least invasive first.
type DisambRule string

const (
	DisambAddGivenName DisambRule = "add-given-name" // expose initials, then full given names
	DisambAddNames     DisambRule = "add-names"      // raise the et-al cutoff
	DisambYearSuffix   DisambRule = "year-suffix"    // append a, b, c to the year
)

// StyleClass distinguishes in-text from note styles.
type StyleClass string

const (
	ClassInText StyleClass = "in-text"
	ClassNote   StyleClass = "note"
)

// Style is one compiled, immutable citation style.
type Style struct {
	Name             string       `json:"name"`
	Class            StyleClass   `json:"class"`
	Numeric          bool         `json:"numeric,omitempty"` // numeric citation style
	Citation         Layout       `json:"citation"`
	Bibliography     Layout       `json:"bibliography"`
	Sort             []SortKey    `json:"sort,omitempty"`
	Disambiguation   []DisambRule `json:"disambiguation,omitempty"`
	NearNoteDistance int          `json:"near_note_distance,omitempty"` // events; 0 means default
	MissingSortLast  bool         `json:"missing_sort_last,omitempty"`
	Terms            TermSet      `json:"terms,omitempty"` // style-level term overrides
}

// DefaultNearNoteDistance applies when a style does not declare one.
const DefaultNearNoteDistance = 5
