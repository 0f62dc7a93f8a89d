package csl

import "strings"

// PersonName is one structured personal name. Field order mirrors display
// order; all fields except Family may be empty.
type PersonName struct {
	Given       string `json:"given,omitempty"`
	Family      string `json:"family"`
	NonDropping string `json:"non_dropping_particle,omitempty"` // "van", "de la"
	Dropping    string `json:"dropping_particle,omitempty"`
	Suffix      string `json:"suffix,omitempty"` // "Jr.", "III"
}

// FamilyWithParticle returns the non-dropping particle joined to the
// family name, the form used for display and for collation.
func (p PersonName) FamilyWithParticle() string {
	if p.NonDropping == "" {
		return p.Family
	}
	return p.NonDropping + " " + p.Family
}

// Initials reduces the given name(s) to period-separated initials:
// "Jane Roberta" becomes "J. R.". Hyphenated given names keep the
// hyphen: "Jean-Luc" becomes "J.-L.".
func (p PersonName) Initials() string {
	if p.Given == "" {
		return ""
	}
	var parts []string
	for _, word := range strings.Fields(p.Given) {
		segs := strings.Split(word, "-")
		for i, seg := range segs {
			if seg == "" {
				continue
			}
			r := []rune(seg)
			segs[i] = string(r[0]) + "."
		}
		parts = append(parts, strings.Join(segs, "-"))
	}
	return strings.Join(parts, " ")
}
