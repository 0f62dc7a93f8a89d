package csl

import "strings"

// RunTag is the semantic tag on a rendered text run. Callers map tags to
// rich-text styling; the engine itself emits plain text only.
type RunTag string

const (
	TagPlain       RunTag = ""
	TagAuthor      RunTag = "author"
	TagYear        RunTag = "year"
	TagTitle       RunTag = "title"
	TagLocator     RunTag = "locator"
	TagNumber      RunTag = "number"
	TagPunctuation RunTag = "punctuation"
)

// Run is one tagged span of rendered output.
type Run struct {
	Text string `json:"text"`
	Tag  RunTag `json:"tag,omitempty"`
}

// Runs is an ordered sequence of rendered runs.
type Runs []Run

// String concatenates the runs' text.
func (rs Runs) String() string {
	var b strings.Builder
	for _, r := range rs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Empty reports whether the runs carry no text at all.
func (rs Runs) Empty() bool {
	for _, r := range rs {
		if r.Text != "" {
			return false
		}
	}
	return true
}

// Append adds a run, merging into the previous run when the tags match.
// Merging keeps output stable under re-render: two renders that produce
// the same text produce the same run boundaries.
func (rs Runs) Append(text string, tag RunTag) Runs {
	if text == "" {
		return rs
	}
	if n := len(rs); n > 0 && rs[n-1].Tag == tag {
		rs[n-1].Text += text
		return rs
	}
	return append(rs, Run{Text: text, Tag: tag})
}

// Concat appends other's runs, merging at the seam.
func (rs Runs) Concat(other Runs) Runs {
	for _, r := range other {
		rs = rs.Append(r.Text, r.Tag)
	}
	return rs
}

// Retag returns a copy with every plain run re-tagged. Runs that already
// carry a more specific tag keep it.
func (rs Runs) Retag(tag RunTag) Runs {
	if tag == TagPlain {
		return rs
	}
	out := make(Runs, len(rs))
	for i, r := range rs {
		if r.Tag == TagPlain {
			r.Tag = tag
		}
		out[i] = r
	}
	return out
}

// RenderedCitation is the engine's output for one citation event or one
// bibliography entry: ordered tagged runs plus the inputs that shaped
// them. It is a pure function of (entry data, style, disambiguation
// state, locale, position) and is recomputed, never mutated, when
// disambiguation state changes.
type RenderedCitation struct {
	EntryIDs []string `json:"entry_ids"`
	Seq      int64    `json:"seq"`                // document position of the event
	Position Position `json:"position,omitempty"` // position of the first item
	Number   int      `json:"number,omitempty"`   // first-seen ordinal (numeric styles)
	Runs     Runs     `json:"runs"`
}

// Plain returns the citation as plain text.
func (rc RenderedCitation) Plain() string { return rc.Runs.String() }
