package styleload

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/bibkit/bibkit/internal/csl"
)

// LoadFile reads a CUE style document and compiles its top-level
// "style" struct.
func LoadFile(path string) (*csl.Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style file: %w", err)
	}
	return CompileString(string(data), path)
}

// CompileString compiles CUE source holding a top-level "style" struct.
// filename seeds error positions.
func CompileString(src, filename string) (*csl.Style, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	styleVal := v.LookupPath(cue.ParsePath("style"))
	if !styleVal.Exists() {
		return nil, &CompileError{
			Field:   "style",
			Message: "top-level style struct is required",
			Pos:     v.Pos(),
		}
	}
	return CompileStyle(styleVal)
}

// CompileStyle parses a CUE value into a validated style tree. The CUE
// value is the style struct itself.
func CompileStyle(v cue.Value) (*csl.Style, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	style := &csl.Style{}

	name, err := requiredString(v, "name")
	if err != nil {
		return nil, err
	}
	style.Name = name

	class, err := requiredString(v, "class")
	if err != nil {
		return nil, err
	}
	switch csl.StyleClass(class) {
	case csl.ClassInText, csl.ClassNote:
		style.Class = csl.StyleClass(class)
	default:
		return nil, &CompileError{
			Field:   "class",
			Message: fmt.Sprintf("unknown style class %q (want %q or %q)", class, csl.ClassInText, csl.ClassNote),
			Pos:     v.LookupPath(cue.ParsePath("class")).Pos(),
		}
	}

	style.Numeric, err = optionalBool(v, "numeric")
	if err != nil {
		return nil, err
	}
	style.MissingSortLast, err = optionalBool(v, "missing_sort_last")
	if err != nil {
		return nil, err
	}

	nearNote, err := optionalInt(v, "near_note_distance")
	if err != nil {
		return nil, err
	}
	if nearNote < 0 {
		return nil, &CompileError{
			Field:   "near_note_distance",
			Message: "must not be negative",
			Pos:     v.LookupPath(cue.ParsePath("near_note_distance")).Pos(),
		}
	}
	style.NearNoteDistance = nearNote

	citationVal := v.LookupPath(cue.ParsePath("citation"))
	if !citationVal.Exists() {
		return nil, &CompileError{
			Field:   "citation",
			Message: "citation layout is required",
			Pos:     v.Pos(),
		}
	}
	style.Citation, err = parseLayout(citationVal, "citation")
	if err != nil {
		return nil, err
	}
	if len(style.Citation.Children) == 0 {
		return nil, &CompileError{
			Field:   "citation",
			Message: "citation layout must have at least one child",
			Pos:     citationVal.Pos(),
		}
	}

	bibVal := v.LookupPath(cue.ParsePath("bibliography"))
	if bibVal.Exists() {
		style.Bibliography, err = parseLayout(bibVal, "bibliography")
		if err != nil {
			return nil, err
		}
	}

	style.Sort, err = parseSortKeys(v)
	if err != nil {
		return nil, err
	}
	style.Disambiguation, err = parseDisambRules(v)
	if err != nil {
		return nil, err
	}
	style.Terms, err = parseTerms(v.LookupPath(cue.ParsePath("terms")))
	if err != nil {
		return nil, err
	}

	return style, nil
}

// parseLayout parses a layout struct: formatting plus children.
func parseLayout(v cue.Value, field string) (csl.Layout, error) {
	var layout csl.Layout

	f, err := parseFormatting(v)
	if err != nil {
		return layout, err
	}
	layout.Formatting = f

	layout.Children, err = parseNodes(v.LookupPath(cue.ParsePath("children")), field+".children")
	if err != nil {
		return layout, err
	}
	return layout, nil
}

// parseNodes parses a CUE list of rendering nodes. A missing list is an
// empty node sequence.
func parseNodes(v cue.Value, field string) ([]csl.Node, error) {
	if !v.Exists() {
		return nil, nil
	}

	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var nodes []csl.Node
	for i := 0; iter.Next(); i++ {
		node, err := parseNode(iter.Value(), fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// parseNode dispatches on the node's kind discriminator. The kind set is
// closed; an unknown kind is a compile error, not a silent skip.
func parseNode(v cue.Value, field string) (csl.Node, error) {
	kind, err := requiredString(v, "kind")
	if err != nil {
		return nil, err
	}

	switch kind {
	case "text":
		return parseTextNode(v, field)
	case "names":
		return parseNamesNode(v, field)
	case "date":
		return parseDateNode(v, field)
	case "number":
		return parseNumberNode(v, field)
	case "label":
		return parseLabelNode(v, field)
	case "group":
		return parseGroupNode(v, field)
	case "choose":
		return parseChooseNode(v, field)
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unknown node kind %q", kind),
			Pos:     v.Pos(),
		}
	}
}

func parseTextNode(v cue.Value, field string) (csl.Node, error) {
	f, err := parseFormatting(v)
	if err != nil {
		return nil, err
	}
	node := csl.TextNode{Formatting: f}

	if node.Variable, err = optionalString(v, "variable"); err != nil {
		return nil, err
	}
	if node.Term, err = optionalString(v, "term"); err != nil {
		return nil, err
	}
	if node.Literal, err = optionalString(v, "literal"); err != nil {
		return nil, err
	}

	set := 0
	for _, s := range []string{node.Variable, node.Term, node.Literal} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return nil, &CompileError{
			Field:   field,
			Message: "text node needs exactly one of variable, term, literal",
			Pos:     v.Pos(),
		}
	}
	return node, nil
}

func parseNamesNode(v cue.Value, field string) (csl.Node, error) {
	f, err := parseFormatting(v)
	if err != nil {
		return nil, err
	}
	node := csl.NamesNode{Formatting: f}

	node.Variables, err = stringList(v, "variables")
	if err != nil {
		return nil, err
	}
	if len(node.Variables) == 0 {
		return nil, &CompileError{
			Field:   field,
			Message: "names node needs at least one variable",
			Pos:     v.Pos(),
		}
	}

	form, err := optionalString(v, "form")
	if err != nil {
		return nil, err
	}
	switch csl.NameForm(form) {
	case "", csl.NameLong, csl.NameShort, csl.NameInitials:
		node.Form = csl.NameForm(form)
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unknown name form %q", form),
			Pos:     v.Pos(),
		}
	}

	if node.EtAlMin, err = optionalInt(v, "et_al_min"); err != nil {
		return nil, err
	}
	if node.EtAlUseFirst, err = optionalInt(v, "et_al_use_first"); err != nil {
		return nil, err
	}
	if node.And, err = optionalString(v, "and"); err != nil {
		return nil, err
	}
	if node.And != "" && node.And != "text" && node.And != "symbol" {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unknown and mode %q (want \"text\" or \"symbol\")", node.And),
			Pos:     v.Pos(),
		}
	}
	if node.SortOrder, err = optionalBool(v, "sort_order"); err != nil {
		return nil, err
	}
	return node, nil
}

func parseDateNode(v cue.Value, field string) (csl.Node, error) {
	f, err := parseFormatting(v)
	if err != nil {
		return nil, err
	}
	node := csl.DateNode{Formatting: f}

	if node.Variable, err = requiredString(v, "variable"); err != nil {
		return nil, err
	}

	form, err := optionalString(v, "form")
	if err != nil {
		return nil, err
	}
	switch csl.DateForm(form) {
	case "", csl.DateNumeric, csl.DateTextual, csl.DateYearOnly:
		node.Form = csl.DateForm(form)
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unknown date form %q", form),
			Pos:     v.Pos(),
		}
	}

	if node.RangeDelimiter, err = optionalString(v, "range_delimiter"); err != nil {
		return nil, err
	}
	return node, nil
}

func parseNumberNode(v cue.Value, field string) (csl.Node, error) {
	f, err := parseFormatting(v)
	if err != nil {
		return nil, err
	}
	node := csl.NumberNode{Formatting: f}

	if node.Variable, err = requiredString(v, "variable"); err != nil {
		return nil, err
	}

	form, err := optionalString(v, "form")
	if err != nil {
		return nil, err
	}
	switch csl.NumberForm(form) {
	case "", csl.NumberCardinal, csl.NumberOrdinal, csl.NumberRoman:
		node.Form = csl.NumberForm(form)
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unknown number form %q", form),
			Pos:     v.Pos(),
		}
	}
	return node, nil
}

func parseLabelNode(v cue.Value, field string) (csl.Node, error) {
	f, err := parseFormatting(v)
	if err != nil {
		return nil, err
	}
	node := csl.LabelNode{Formatting: f}

	if node.Term, err = requiredString(v, "term"); err != nil {
		return nil, err
	}
	if node.Variable, err = optionalString(v, "variable"); err != nil {
		return nil, err
	}

	plural, err := optionalString(v, "plural")
	if err != nil {
		return nil, err
	}
	switch plural {
	case "", "contextual", "always", "never":
		node.Plural = plural
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unknown plural mode %q", plural),
			Pos:     v.Pos(),
		}
	}
	return node, nil
}

func parseGroupNode(v cue.Value, field string) (csl.Node, error) {
	f, err := parseFormatting(v)
	if err != nil {
		return nil, err
	}
	children, err := parseNodes(v.LookupPath(cue.ParsePath("children")), field+".children")
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, &CompileError{
			Field:   field,
			Message: "group needs at least one child",
			Pos:     v.Pos(),
		}
	}
	return csl.Group{Formatting: f, Children: children}, nil
}

func parseChooseNode(v cue.Value, field string) (csl.Node, error) {
	branchesVal := v.LookupPath(cue.ParsePath("branches"))
	if !branchesVal.Exists() {
		return nil, &CompileError{
			Field:   field,
			Message: "choose needs at least one branch",
			Pos:     v.Pos(),
		}
	}

	iter, err := branchesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var node csl.Choose
	for i := 0; iter.Next(); i++ {
		bField := fmt.Sprintf("%s.branches[%d]", field, i)
		bv := iter.Value()

		cond, err := parseCondition(bv.LookupPath(cue.ParsePath("cond")), bField+".cond")
		if err != nil {
			return nil, err
		}
		children, err := parseNodes(bv.LookupPath(cue.ParsePath("children")), bField+".children")
		if err != nil {
			return nil, err
		}
		node.Branches = append(node.Branches, csl.Branch{Cond: cond, Children: children})
	}
	if len(node.Branches) == 0 {
		return nil, &CompileError{
			Field:   field,
			Message: "choose needs at least one branch",
			Pos:     v.Pos(),
		}
	}

	node.Else, err = parseNodes(v.LookupPath(cue.ParsePath("else")), field+".else")
	if err != nil {
		return nil, err
	}
	return node, nil
}

// parseCondition parses one branch predicate, checking entry types,
// positions, and the match mode against their closed vocabularies.
func parseCondition(v cue.Value, field string) (csl.Condition, error) {
	var cond csl.Condition
	if !v.Exists() {
		return cond, &CompileError{
			Field:   field,
			Message: "branch condition is required",
			Pos:     v.Pos(),
		}
	}

	types, err := stringList(v, "types")
	if err != nil {
		return cond, err
	}
	for _, t := range types {
		et := csl.EntryType(t)
		if !csl.ValidEntryTypes[et] {
			return cond, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("unknown entry type %q", t),
				Pos:     v.Pos(),
			}
		}
		cond.Types = append(cond.Types, et)
	}

	if cond.Variables, err = stringList(v, "variables"); err != nil {
		return cond, err
	}
	if cond.LocatorTypes, err = stringList(v, "locator_types"); err != nil {
		return cond, err
	}
	if cond.IsNumeric, err = stringList(v, "is_numeric"); err != nil {
		return cond, err
	}

	positions, err := stringList(v, "positions")
	if err != nil {
		return cond, err
	}
	for _, p := range positions {
		switch csl.Position(p) {
		case csl.PositionFirst, csl.PositionSubsequent, csl.PositionIbid,
			csl.PositionIbidLocator, csl.PositionNearNote:
			cond.Positions = append(cond.Positions, csl.Position(p))
		default:
			return cond, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("unknown position %q", p),
				Pos:     v.Pos(),
			}
		}
	}

	if cond.Disambiguate, err = optionalBool(v, "disambiguate"); err != nil {
		return cond, err
	}

	match, err := optionalString(v, "match")
	if err != nil {
		return cond, err
	}
	switch match {
	case "", "all", "any", "none":
		cond.Match = match
	default:
		return cond, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unknown match mode %q", match),
			Pos:     v.Pos(),
		}
	}

	return cond, nil
}

// parseFormatting reads the affix and case options shared by all nodes.
func parseFormatting(v cue.Value) (csl.Formatting, error) {
	var f csl.Formatting
	var err error

	if f.Prefix, err = optionalString(v, "prefix"); err != nil {
		return f, err
	}
	if f.Suffix, err = optionalString(v, "suffix"); err != nil {
		return f, err
	}
	if f.Delimiter, err = optionalString(v, "delimiter"); err != nil {
		return f, err
	}

	textCase, err := optionalString(v, "text_case")
	if err != nil {
		return f, err
	}
	switch csl.TextCase(textCase) {
	case csl.CaseNone, csl.CaseLower, csl.CaseUpper, csl.CaseTitle,
		csl.CaseSentence, csl.CaseCapitalizeFirst:
		f.TextCase = csl.TextCase(textCase)
	default:
		return f, &CompileError{
			Field:   "text_case",
			Message: fmt.Sprintf("unknown case transform %q", textCase),
			Pos:     v.Pos(),
		}
	}

	tag, err := optionalString(v, "tag")
	if err != nil {
		return f, err
	}
	f.Tag = csl.RunTag(tag)

	if f.Block, err = optionalBool(v, "block"); err != nil {
		return f, err
	}
	return f, nil
}

func parseSortKeys(v cue.Value) ([]csl.SortKey, error) {
	sortVal := v.LookupPath(cue.ParsePath("sort"))
	if !sortVal.Exists() {
		return nil, nil
	}

	iter, err := sortVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var keys []csl.SortKey
	for i := 0; iter.Next(); i++ {
		kv := iter.Value()
		variable, err := requiredString(kv, "variable")
		if err != nil {
			return nil, err
		}

		direction, err := optionalString(kv, "direction")
		if err != nil {
			return nil, err
		}
		switch csl.SortDirection(direction) {
		case "", csl.SortAscending, csl.SortDescending:
		default:
			return nil, &CompileError{
				Field:   fmt.Sprintf("sort[%d]", i),
				Message: fmt.Sprintf("unknown sort direction %q", direction),
				Pos:     kv.Pos(),
			}
		}
		keys = append(keys, csl.SortKey{
			Variable:  variable,
			Direction: csl.SortDirection(direction),
		})
	}
	return keys, nil
}

func parseDisambRules(v cue.Value) ([]csl.DisambRule, error) {
	rules, err := stringList(v, "disambiguation")
	if err != nil {
		return nil, err
	}

	var out []csl.DisambRule
	for _, r := range rules {
		switch csl.DisambRule(r) {
		case csl.DisambAddGivenName, csl.DisambAddNames, csl.DisambYearSuffix:
			out = append(out, csl.DisambRule(r))
		default:
			return nil, &CompileError{
				Field:   "disambiguation",
				Message: fmt.Sprintf("unknown disambiguation rule %q", r),
				Pos:     v.LookupPath(cue.ParsePath("disambiguation")).Pos(),
			}
		}
	}
	return out, nil
}

// parseTerms reads style-level term overrides: name -> {one, many}.
func parseTerms(v cue.Value) (csl.TermSet, error) {
	if !v.Exists() {
		return nil, nil
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	terms := make(csl.TermSet)
	for iter.Next() {
		tv := iter.Value()
		one, err := optionalString(tv, "one")
		if err != nil {
			return nil, err
		}
		many, err := optionalString(tv, "many")
		if err != nil {
			return nil, err
		}
		terms[iter.Label()] = csl.Term{Singular: one, Plural: many}
	}
	return terms, nil
}

func requiredString(v cue.Value, path string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   path,
			Message: path + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, path string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalInt(v cue.Value, path string) (int, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return 0, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

func optionalBool(v cue.Value, path string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

func stringList(v cue.Value, path string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return nil, nil
	}

	iter, err := fv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}
