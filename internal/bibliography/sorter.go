package bibliography

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/bibkit/bibkit/internal/csl"
)

// Sorter orders entries by a style's sort-key list under one locale's
// collation. A Sorter is immutable after construction and safe to reuse
// across calls.
type Sorter struct {
	keys        []csl.SortKey
	coll        *collate.Collator
	missingLast bool
}

// New builds a sorter from the style's sort specification and the
// locale's collation rules. An unparseable locale code falls back to
// English collation rather than failing.
func New(style *csl.Style, locale *csl.Locale) *Sorter {
	tag, err := language.Parse(locale.Code)
	if err != nil {
		tag = language.English
	}

	keys := make([]csl.SortKey, len(style.Sort))
	copy(keys, style.Sort)

	return &Sorter{
		keys:        keys,
		coll:        collate.New(tag, collate.Loose),
		missingLast: style.MissingSortLast,
	}
}

// Sort returns the ids ordered for the bibliography. firstSeen maps each
// id to the document position of its first citation; it breaks full
// sort-key ties so equal entries keep their citation order.
func (s *Sorter) Sort(lib *csl.Library, ids []string, firstSeen map[string]int64) []string {
	out := make([]string, len(ids))
	copy(out, ids)

	sort.SliceStable(out, func(i, j int) bool {
		a, _ := lib.Get(out[i])
		b, _ := lib.Get(out[j])
		if c := s.Compare(a, b); c != 0 {
			return c < 0
		}
		if fa, fb := firstSeen[out[i]], firstSeen[out[j]]; fa != fb {
			return fa < fb
		}
		return out[i] < out[j]
	})
	return out
}

// Compare applies the key list left to right and returns the first
// nonzero comparison. Zero means a full tie; the caller decides the
// tiebreak.
func (s *Sorter) Compare(a, b *csl.Entry) int {
	if a == nil || b == nil {
		return 0
	}
	for _, key := range s.keys {
		av, aok := a.Var(key.Variable)
		bv, bok := b.Var(key.Variable)

		if aok != bok {
			// Missing-variable policy applies regardless of direction.
			return s.missingCompare(aok)
		}
		if !aok {
			continue
		}

		c := s.compareValues(av, bv)
		if key.Direction == csl.SortDescending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// missingCompare orders a present value against an absent one.
func (s *Sorter) missingCompare(aPresent bool) int {
	if s.missingLast == aPresent {
		return -1
	}
	return 1
}

// compareValues compares two values of the same variable. Matching kinds
// use the kind's natural order; a kind mismatch falls back to literal
// string comparison.
func (s *Sorter) compareValues(a, b csl.Value) int {
	switch av := a.(type) {
	case csl.Names:
		if bv, ok := b.(csl.Names); ok {
			return s.compareNames(av, bv)
		}
	case csl.Date:
		if bv, ok := b.(csl.Date); ok {
			return av.Compare(bv)
		}
	case csl.Number:
		if bv, ok := b.(csl.Number); ok {
			ai, aok := av.Int()
			bi, bok := bv.Int()
			if aok && bok {
				switch {
				case ai < bi:
					return -1
				case ai > bi:
					return 1
				default:
					return 0
				}
			}
		}
	}
	return s.coll.CompareString(sortString(a), sortString(b))
}

// compareNames compares name lists element-wise: family under collation,
// then given, then suffix. A shorter list that prefixes the longer one
// sorts first.
func (s *Sorter) compareNames(a, b csl.Names) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := s.coll.CompareString(a[i].FamilyWithParticle(), b[i].FamilyWithParticle()); c != 0 {
			return c
		}
		if c := s.coll.CompareString(a[i].Given, b[i].Given); c != 0 {
			return c
		}
		if c := s.coll.CompareString(a[i].Suffix, b[i].Suffix); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// sortString flattens any value kind to comparable text for the literal
// fallback.
func sortString(v csl.Value) string {
	switch val := v.(type) {
	case csl.Text:
		return val.Value
	case csl.Number:
		return val.String()
	case csl.Date:
		if val.Empty() {
			return ""
		}
		return strconv.Itoa(val.Year)
	case csl.Names:
		var parts []string
		for _, p := range val {
			parts = append(parts, p.FamilyWithParticle()+" "+p.Given)
		}
		return strings.Join(parts, "; ")
	case csl.Serials:
		var parts []string
		for k, s := range val {
			parts = append(parts, k+":"+s)
		}
		sort.Strings(parts)
		return strings.Join(parts, " ")
	default:
		return ""
	}
}
