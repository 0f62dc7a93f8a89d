package render

import (
	"strconv"
	"strings"

	"github.com/bibkit/bibkit/internal/csl"
)

// FormatNumber renders a numeric variable in the requested word form.
// Word forms apply only when the stored value parses as an integer;
// non-numeric text (ranges, "S2") passes through unchanged with its
// affixes reattached.
func FormatNumber(n csl.Number, form csl.NumberForm) string {
	v, ok := n.Int()
	if !ok {
		return n.String()
	}
	switch form {
	case csl.NumberOrdinal:
		return n.Prefix + Ordinal(v) + n.Suffix
	case csl.NumberRoman:
		return n.Prefix + Roman(v) + n.Suffix
	default:
		return n.Prefix + strconv.Itoa(v) + n.Suffix
	}
}

// Ordinal renders an English ordinal: 1st, 2nd, 3rd, 4th. The teens all
// take "th" (11th, 12th, 13th).
func Ordinal(n int) string {
	s := strconv.Itoa(n)
	abs := n
	if abs < 0 {
		abs = -abs
	}
	if t := abs % 100; t >= 11 && t <= 13 {
		return s + "th"
	}
	switch abs % 10 {
	case 1:
		return s + "st"
	case 2:
		return s + "nd"
	case 3:
		return s + "rd"
	default:
		return s + "th"
	}
}

var romanDigits = []struct {
	value  int
	symbol string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

// Roman renders a lowercase roman numeral. Values outside [1, 3999]
// fall back to the decimal form.
func Roman(n int) string {
	if n < 1 || n > 3999 {
		return strconv.Itoa(n)
	}
	var b strings.Builder
	for _, d := range romanDigits {
		for n >= d.value {
			b.WriteString(d.symbol)
			n -= d.value
		}
	}
	return b.String()
}

// FormatRange normalizes a textual range ("12-14") to use the en-dash
// range delimiter. Single values are returned unchanged.
func FormatRange(s, delim string) string {
	if delim == "" {
		delim = "–"
	}
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return s
	}
	return parts[0] + delim + parts[1]
}

// RangeIsPlural reports whether a locator or page value names more than
// one unit, for label pluralization.
func RangeIsPlural(s string) bool {
	return strings.ContainsAny(s, "-,&–") || strings.Contains(s, " and ")
}
