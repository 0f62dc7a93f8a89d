package csl

// GivenNameLevel is the degree of given-name detail exposed for an entry.
type GivenNameLevel int

const (
	GivenNone     GivenNameLevel = iota // style's declared name form
	GivenInitials                       // at least initials
	GivenFull                           // full given names
)

// DisambLevel is the disambiguation level for one entry within a
// session. The zero value means "no disambiguation applied".
//
// INVARIANT: levels are monotonic - specificity only increases within a
// session. This guarantees stable, non-flickering output across
// re-renders; Raise enforces it.
type DisambLevel struct {
	GivenNames GivenNameLevel `json:"given_names,omitempty"`
	AddNames   int            `json:"add_names,omitempty"`   // minimum names shown before et-al
	YearSuffix int            `json:"year_suffix,omitempty"` // 1 = "a", 2 = "b", ...
	Condition  bool           `json:"condition,omitempty"`   // disambiguate-condition branches active
}

// Raise merges another level in, keeping the more specific value of each
// field. Returns true if anything increased.
func (d *DisambLevel) Raise(o DisambLevel) bool {
	changed := false
	if o.GivenNames > d.GivenNames {
		d.GivenNames = o.GivenNames
		changed = true
	}
	if o.AddNames > d.AddNames {
		d.AddNames = o.AddNames
		changed = true
	}
	if o.YearSuffix > d.YearSuffix {
		d.YearSuffix = o.YearSuffix
		changed = true
	}
	if o.Condition && !d.Condition {
		d.Condition = true
		changed = true
	}
	return changed
}

// SuffixLetter converts a 1-based year-suffix ordinal to letters:
// 1 is "a", 26 is "z", 27 is "aa".
func SuffixLetter(n int) string {
	if n <= 0 {
		return ""
	}
	var buf []byte
	for n > 0 {
		n--
		buf = append([]byte{byte('a' + n%26)}, buf...)
		n /= 26
	}
	return string(buf)
}
