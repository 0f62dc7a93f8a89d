package render

import (
	"strings"

	"github.com/bibkit/bibkit/internal/csl"
)

// FormatNames renders one name list per the node's options and the
// entry's disambiguation level. The disambiguation level can only make
// output more specific: it upgrades the name form (initials, then full
// given names) and raises the et-al cutoff, never the reverse.
func FormatNames(names csl.Names, node csl.NamesNode, ctx *Context) string {
	if len(names) == 0 {
		return ""
	}

	form := effectiveForm(node.Form, ctx.Level.GivenNames)
	shown := len(names)
	truncated := false
	if node.EtAlMin > 0 && len(names) >= node.EtAlMin {
		shown = node.EtAlUseFirst
		if shown <= 0 {
			shown = 1
		}
		// add-names disambiguation raises the cutoff.
		if ctx.Level.AddNames > shown {
			shown = ctx.Level.AddNames
		}
		if shown >= len(names) {
			shown = len(names)
		} else {
			truncated = true
		}
	}

	rendered := make([]string, shown)
	for i := 0; i < shown; i++ {
		rendered[i] = formatName(names[i], form, node.SortOrder)
	}

	if truncated {
		return strings.Join(rendered, delimiterOf(node)) + " " + ctx.Locale.EtAl()
	}
	return joinWithAnd(rendered, node, ctx)
}

// effectiveForm upgrades the declared name form by the disambiguation
// level. A "short" form exposes initials at GivenInitials and full given
// names at GivenFull; "initials" upgrades to full given names only.
func effectiveForm(declared csl.NameForm, level csl.GivenNameLevel) csl.NameForm {
	if declared == "" {
		declared = csl.NameLong
	}
	switch level {
	case csl.GivenInitials:
		if declared == csl.NameShort {
			return csl.NameInitials
		}
	case csl.GivenFull:
		return csl.NameLong
	}
	return declared
}

// formatName renders a single name in display or sort order.
func formatName(p csl.PersonName, form csl.NameForm, sortOrder bool) string {
	family := p.FamilyWithParticle()

	var given string
	switch form {
	case csl.NameShort:
		given = ""
	case csl.NameInitials:
		given = p.Initials()
	default:
		given = p.Given
		if p.Dropping != "" {
			given = strings.TrimSpace(given + " " + p.Dropping)
		}
	}

	if given == "" {
		if sortOrder && p.Suffix != "" {
			return family + ", " + p.Suffix
		}
		if p.Suffix != "" {
			return family + " " + p.Suffix
		}
		return family
	}

	if sortOrder {
		s := family + ", " + given
		if p.Suffix != "" {
			s += ", " + p.Suffix
		}
		return s
	}
	s := given + " " + family
	if p.Suffix != "" {
		s += " " + p.Suffix
	}
	return s
}

// joinWithAnd joins rendered names with the node delimiter, using the
// "and" rule before the final name: a textual "and" or an ampersand. The
// delimiter is kept before the joiner only for three or more names.
func joinWithAnd(rendered []string, node csl.NamesNode, ctx *Context) string {
	delim := delimiterOf(node)
	n := len(rendered)
	if n == 1 {
		return rendered[0]
	}

	var and string
	switch node.And {
	case "text":
		and = ctx.Locale.And()
	case "symbol":
		and = "&"
	default:
		return strings.Join(rendered, delim)
	}

	if n == 2 {
		return rendered[0] + " " + and + " " + rendered[1]
	}
	head := strings.Join(rendered[:n-1], delim)
	return head + delim + and + " " + rendered[n-1]
}

func delimiterOf(node csl.NamesNode) string {
	if node.Delimiter == "" {
		return ", "
	}
	return node.Delimiter
}
