package render

import "github.com/bibkit/bibkit/internal/csl"

// MatchCondition evaluates one choose-branch condition against an entry
// and its rendering context. Each listed test contributes one boolean;
// the Match mode folds them: "all" (default) requires every test to
// hold, "any" at least one, "none" that none do. A condition listing no
// tests never matches.
func MatchCondition(cond csl.Condition, e *csl.Entry, ctx *Context) bool {
	var results []bool

	for _, t := range cond.Types {
		results = append(results, e.Type == t)
	}
	for _, v := range cond.Variables {
		results = append(results, hasVariable(e, v, ctx))
	}
	for _, lt := range cond.LocatorTypes {
		_, label := ctx.locator()
		results = append(results, label != "" && label == lt)
	}
	for _, v := range cond.IsNumeric {
		results = append(results, isNumericVariable(e, v))
	}
	for _, p := range cond.Positions {
		results = append(results, positionMatches(ctx.Position, p))
	}
	if cond.Disambiguate {
		results = append(results, ctx.Level.Condition)
	}

	if len(results) == 0 {
		return false
	}

	switch cond.Match {
	case "any":
		for _, r := range results {
			if r {
				return true
			}
		}
		return false
	case "none":
		for _, r := range results {
			if r {
				return false
			}
		}
		return true
	default: // "all"
		for _, r := range results {
			if !r {
				return false
			}
		}
		return true
	}
}

// positionMatches tests a citation position against a wanted one.
// Broader positions subsume narrower ones: every ibid is a subsequent
// cite, and an ibid-with-locator is an ibid.
func positionMatches(have, want csl.Position) bool {
	if have == want {
		return true
	}
	switch want {
	case csl.PositionSubsequent:
		return have == csl.PositionIbid ||
			have == csl.PositionIbidLocator ||
			have == csl.PositionNearNote
	case csl.PositionIbid:
		return have == csl.PositionIbidLocator
	default:
		return false
	}
}

// hasVariable tests variable presence, covering the driver-supplied
// pseudo-variables.
func hasVariable(e *csl.Entry, name string, ctx *Context) bool {
	switch name {
	case "locator":
		loc, _ := ctx.locator()
		return loc != ""
	case "citation-number":
		return ctx.Number > 0
	case "year-suffix":
		return ctx.Level.YearSuffix > 0
	}
	_, ok := e.Var(name)
	return ok
}

// isNumericVariable reports whether a variable's value parses as an
// integer. Absent variables and non-numeric text are both false.
func isNumericVariable(e *csl.Entry, name string) bool {
	v, ok := e.Var(name)
	if !ok {
		return false
	}
	switch val := v.(type) {
	case csl.Number:
		_, numeric := val.Int()
		return numeric
	case csl.Text:
		_, numeric := (csl.Number{Raw: val.Value}).Int()
		return numeric
	default:
		return false
	}
}
