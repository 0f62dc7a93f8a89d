package csl

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a sealed interface over the typed variable values an entry can
// carry. Only Text, Names, Date, Number, and Serials implement it. The set
// is closed: the interpreter dispatches on it by type switch.
type Value interface {
	value() // Sealed - only these types implement it

	// Empty reports whether the value renders as nothing. Missing and
	// empty values are equivalent at the rendering boundary.
	Empty() bool
}

// Span marks a half-open [Start, End) byte range of a FormattableString
// that is exempt from case transformation.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Text is a formattable string: plain text plus zero or more verbatim
// spans. Case transforms must leave verbatim spans byte-for-byte intact.
//
// Spans are sorted by Start, non-overlapping, and always within bounds.
// Use NewText or ParseBraces to construct well-formed values.
type Text struct {
	Value    string `json:"value"`
	Verbatim []Span `json:"verbatim,omitempty"`
}

func (Text) value() {}

// Empty reports whether the text is empty.
func (t Text) Empty() bool { return t.Value == "" }

// NewText creates a Text with no verbatim spans.
func NewText(s string) Text { return Text{Value: s} }

// ParseBraces builds a Text from a string using {braces} to mark verbatim
// spans, e.g. "The {CIA} Files". Braces are removed; the enclosed bytes
// become a verbatim span. Unbalanced braces are treated as literal text.
func ParseBraces(s string) Text {
	var b strings.Builder
	var spans []Span
	open := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if open == -1 {
				open = b.Len()
				continue
			}
		case '}':
			if open != -1 {
				spans = append(spans, Span{Start: open, End: b.Len()})
				open = -1
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return Text{Value: b.String(), Verbatim: spans}
}

// InVerbatim reports whether byte position i falls inside a verbatim span.
func (t Text) InVerbatim(i int) bool {
	for _, sp := range t.Verbatim {
		if i >= sp.Start && i < sp.End {
			return true
		}
	}
	return false
}

// Names is an ordered list of person names. Order is significant and is
// preserved through every transform except explicit sort-form reordering.
type Names []PersonName

func (Names) value() {}

// Empty reports whether the list has no names.
func (n Names) Empty() bool { return len(n) == 0 }

// Number is a numeric variable: the raw stored text plus optional affixes
// around it ("S2" keeps prefix "S"). Word forms (ordinal, roman) apply
// only when the stored value parses as an integer; otherwise the raw text
// passes through unchanged.
type Number struct {
	Raw    string `json:"raw"`
	Prefix string `json:"prefix,omitempty"`
	Suffix string `json:"suffix,omitempty"`
}

func (Number) value() {}

// Empty reports whether the number has no content.
func (n Number) Empty() bool { return n.Raw == "" && n.Prefix == "" && n.Suffix == "" }

// Int returns the integer value and whether Raw parses as one.
func (n Number) Int() (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(n.Raw))
	if err != nil {
		return 0, false
	}
	return v, true
}

// String returns the stored text with affixes reattached.
func (n Number) String() string { return n.Prefix + n.Raw + n.Suffix }

// Serials is a collection of serial numbers (ISBN, ISSN, DOI, ...) keyed
// by scheme name.
type Serials map[string]string

func (Serials) value() {}

// Empty reports whether no serial numbers are present.
func (s Serials) Empty() bool { return len(s) == 0 }

// ValueKind names the concrete type of a Value for diagnostics.
func ValueKind(v Value) string {
	switch v.(type) {
	case Text:
		return "text"
	case Names:
		return "names"
	case Date:
		return "date"
	case Number:
		return "number"
	case Serials:
		return "serials"
	default:
		return fmt.Sprintf("%T", v)
	}
}
