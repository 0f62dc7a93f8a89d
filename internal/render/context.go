package render

import "github.com/bibkit/bibkit/internal/csl"

// Context carries everything rendering one entry depends on beyond the
// entry and the style subtree. It is passed explicitly through every
// call; the interpreter holds no ambient "current locale" state.
type Context struct {
	Locale *csl.Locale
	Terms  csl.TermSet // style-level term overrides, may be nil

	// Position of the citation being rendered. Bibliography renders
	// use PositionFirst.
	Position csl.Position

	// Item is the cite item (locator, local affixes) when rendering a
	// citation; nil for bibliography renders.
	Item *csl.CiteItem

	// Number is the entry's first-seen ordinal for numeric styles.
	Number int

	// Level is the entry's current disambiguation level.
	Level csl.DisambLevel
}

// locator returns the locator text and label term, or empty strings.
func (c *Context) locator() (string, string) {
	if c.Item == nil {
		return "", ""
	}
	label := c.Item.LocatorLabel
	if label == "" && c.Item.Locator != "" {
		label = "page"
	}
	return c.Item.Locator, label
}

// term resolves a term name through style overrides, then the locale.
func (c *Context) term(name string) (csl.Term, bool) {
	return c.Locale.Term(name, c.Terms)
}
