package render

import (
	"fmt"
	"strconv"

	"github.com/bibkit/bibkit/internal/csl"
)

// DefaultRangeDelimiter joins the two ends of a date or page range.
const DefaultRangeDelimiter = "–"

// FormatDate renders a structured date in the requested form. Missing
// parts are omitted, never zero-filled. A range end is appended behind
// the node's range delimiter. The year-suffix letter, when assigned by
// disambiguation, attaches directly to the year of the start date.
func FormatDate(d csl.Date, node csl.DateNode, ctx *Context) string {
	if d.Empty() {
		return ""
	}

	suffix := ""
	if node.Variable == "issued" {
		suffix = csl.SuffixLetter(ctx.Level.YearSuffix)
	}

	s := formatSingle(d, node.Form, suffix, ctx)
	if d.Approximate {
		if t, ok := ctx.term("circa"); ok {
			s = t.Singular + " " + s
		}
	}
	if d.End != nil && !d.End.Empty() {
		delim := node.RangeDelimiter
		if delim == "" {
			delim = DefaultRangeDelimiter
		}
		s += delim + formatSingle(*d.End, node.Form, "", ctx)
	}
	return s
}

// formatSingle renders one end of a date.
func formatSingle(d csl.Date, form csl.DateForm, yearSuffix string, ctx *Context) string {
	year := strconv.Itoa(d.Year) + yearSuffix

	switch form {
	case csl.DateYearOnly:
		return year

	case csl.DateNumeric:
		switch {
		case d.Day > 0 && d.Month > 0:
			return fmt.Sprintf("%s-%02d-%02d", year, d.Month, d.Day)
		case d.Month > 0:
			return fmt.Sprintf("%s-%02d", year, d.Month)
		default:
			return year
		}

	default: // DateTextual
		if d.Season > 0 {
			if name := ctx.Locale.SeasonName(d.Season); name != "" {
				return name + " " + year
			}
		}
		month := ctx.Locale.MonthName(d.Month)
		switch {
		case month != "" && d.Day > 0:
			return fmt.Sprintf("%s %d, %s", month, d.Day, year)
		case month != "":
			return month + " " + year
		default:
			return year
		}
	}
}
