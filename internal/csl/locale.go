package csl

// Term is one locale term with singular and plural forms. Short forms
// are used by labels ("p." / "pp."); the long forms by text elements.
type Term struct {
	Singular string `json:"singular" yaml:"singular"`
	Plural   string `json:"plural,omitempty" yaml:"plural,omitempty"`
}

// Pick returns the plural form when plural is requested and one exists,
// otherwise the singular form.
func (t Term) Pick(plural bool) string {
	if plural && t.Plural != "" {
		return t.Plural
	}
	return t.Singular
}

// TermSet maps term names to terms.
type TermSet map[string]Term

// Locale is one immutable locale table: terms, month names, and the
// ordinal suffix rule set. Supplied once per session by the locale
// loader; the engine only reads it.
type Locale struct {
	Code     string   `json:"code" yaml:"code"` // BCP 47, e.g. "en-US"
	Terms    TermSet  `json:"terms" yaml:"terms"`
	Months   []string `json:"months" yaml:"months"`             // 12 long month names
	Seasons  []string `json:"seasons,omitempty" yaml:"seasons"` // 4 season names
	AndTerm  string   `json:"and_term,omitempty" yaml:"and_term"`
	EtAlTerm string   `json:"et_al_term,omitempty" yaml:"et_al_term"`
}

// Term resolves a term by name, consulting style overrides first.
// Style-declared terms take precedence over locale-declared ones; the
// locale is the default vocabulary.
func (l *Locale) Term(name string, overrides TermSet) (Term, bool) {
	if overrides != nil {
		if t, ok := overrides[name]; ok {
			return t, true
		}
	}
	t, ok := l.Terms[name]
	return t, ok
}

// MonthName returns the long name for a 1-based month, or "" when the
// month is absent or the locale table is short.
func (l *Locale) MonthName(m int) string {
	if m < 1 || m > len(l.Months) {
		return ""
	}
	return l.Months[m-1]
}

// SeasonName returns the name for a 1-based season, or "".
func (l *Locale) SeasonName(s int) string {
	if s < 1 || s > len(l.Seasons) {
		return ""
	}
	return l.Seasons[s-1]
}

// And returns the textual "and" joiner, defaulting to "and".
func (l *Locale) And() string {
	if l.AndTerm == "" {
		return "and"
	}
	return l.AndTerm
}

// EtAl returns the et-al marker, defaulting to "et al.".
func (l *Locale) EtAl() string {
	if l.EtAlTerm == "" {
		return "et al."
	}
	return l.EtAlTerm
}

// EnglishLocale returns a minimal built-in en-US locale. Loaders supply
// richer tables; this one keeps the engine and its tests self-contained.
func EnglishLocale() *Locale {
	return &Locale{
		Code: "en-US",
		Terms: TermSet{
			"page":    {Singular: "p.", Plural: "pp."},
			"volume":  {Singular: "vol.", Plural: "vols."},
			"issue":   {Singular: "no.", Plural: "nos."},
			"edition": {Singular: "ed.", Plural: "eds."},
			"chapter": {Singular: "chap.", Plural: "chaps."},
			"ibid":    {Singular: "Ibid."},
			"no-date": {Singular: "n.d."},
			"circa":   {Singular: "ca."},
		},
		Months: []string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		},
		Seasons:  []string{"Spring", "Summer", "Autumn", "Winter"},
		AndTerm:  "and",
		EtAlTerm: "et al.",
	}
}
