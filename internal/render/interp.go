package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/bibkit/bibkit/internal/csl"
)

// Render evaluates a style layout for one entry and returns the ordered
// tagged runs. It never fails: missing variables render as empty text
// and unknown variables are ignored.
func Render(e *csl.Entry, layout csl.Layout, ctx *Context) csl.Runs {
	return wrapAffixes(RenderItem(e, layout, ctx), layout.Formatting)
}

// RenderItem evaluates the layout's children without the layout's own
// affixes. The citation driver renders each cite item of a cluster this
// way, joins them with the layout delimiter, and attaches the cluster
// affixes once.
func RenderItem(e *csl.Entry, layout csl.Layout, ctx *Context) csl.Runs {
	w := &walker{entry: e, ctx: ctx}
	var tr varTracker
	return w.renderNodes(layout.Children, &tr, "")
}

// RenderNodes evaluates a node sequence outside a layout. Used by the
// bibliography sorter to materialize sort-key text.
func RenderNodes(e *csl.Entry, nodes []csl.Node, ctx *Context) csl.Runs {
	w := &walker{entry: e, ctx: ctx}
	var tr varTracker
	return w.renderNodes(nodes, &tr, "")
}

// varTracker counts variable references below a node, driving group
// suppression: a group that referenced at least one variable and saw
// every one of them render empty is dropped wholesale.
type varTracker struct {
	attempted int
	nonempty  int
}

func (t *varTracker) add(sub varTracker) {
	t.attempted += sub.attempted
	t.nonempty += sub.nonempty
}

// suppressed reports whether a group with these counts must vanish.
func (t *varTracker) suppressed() bool {
	return t.attempted > 0 && t.nonempty == 0
}

type walker struct {
	entry *csl.Entry
	ctx   *Context
}

// renderNodes renders children in order, joining non-empty outputs with
// the delimiter. Delimiters, like affixes, attach only between non-empty
// neighbors.
func (w *walker) renderNodes(nodes []csl.Node, tr *varTracker, delimiter string) csl.Runs {
	var out csl.Runs
	for _, n := range nodes {
		part := w.renderNode(n, tr)
		if part.Empty() {
			continue
		}
		if !out.Empty() && delimiter != "" {
			out = out.Append(delimiter, csl.TagPunctuation)
		}
		out = out.Concat(part)
	}
	return out
}

func (w *walker) renderNode(n csl.Node, tr *varTracker) csl.Runs {
	switch node := n.(type) {
	case csl.Layout:
		sub := w.renderNodes(node.Children, tr, node.Delimiter)
		return wrapAffixes(sub, node.Formatting)

	case csl.Group:
		var sub varTracker
		runs := w.renderNodes(node.Children, &sub, node.Delimiter)
		tr.add(sub)
		if sub.suppressed() {
			return nil
		}
		return wrapAffixes(runs, node.Formatting)

	case csl.Choose:
		for _, br := range node.Branches {
			if MatchCondition(br.Cond, w.entry, w.ctx) {
				return w.renderNodes(br.Children, tr, "")
			}
		}
		return w.renderNodes(node.Else, tr, "")

	case csl.TextNode:
		return w.renderText(node, tr)

	case csl.NamesNode:
		return w.renderNames(node, tr)

	case csl.DateNode:
		tr.attempted++
		d, ok := w.entry.DateVar(node.Variable)
		if !ok {
			return nil
		}
		s := FormatDate(d, node, w.ctx)
		if s == "" {
			return nil
		}
		tr.nonempty++
		return tagged(s, node.Formatting)

	case csl.NumberNode:
		tr.attempted++
		v, ok := w.entry.Var(node.Variable)
		if !ok {
			return nil
		}
		num, ok := v.(csl.Number)
		if !ok {
			// Sort-key style fallback: treat any other kind as text.
			num = csl.Number{Raw: plainValue(v)}
		}
		s := FormatNumber(num, node.Form)
		if s == "" {
			return nil
		}
		tr.nonempty++
		return tagged(s, node.Formatting)

	case csl.LabelNode:
		return w.renderLabel(node)

	default:
		// Closed variant set; an unknown node is a loader bug. Render
		// nothing rather than fail mid-document.
		return nil
	}
}

// renderText handles the three TextNode sources: variable, term, literal.
func (w *walker) renderText(node csl.TextNode, tr *varTracker) csl.Runs {
	switch {
	case node.Variable != "":
		tr.attempted++
		t, ok := w.lookupTextVariable(node.Variable)
		if !ok || t.Value == "" {
			return nil
		}
		tr.nonempty++
		return tagged(ApplyCase(t, node.TextCase), node.Formatting)

	case node.Term != "":
		term, ok := w.ctx.term(node.Term)
		if !ok {
			return nil
		}
		s := ApplyCase(csl.NewText(term.Singular), node.TextCase)
		return tagged(s, node.Formatting)

	case node.Literal != "":
		s := ApplyCase(csl.NewText(node.Literal), node.TextCase)
		return tagged(s, node.Formatting)

	default:
		return nil
	}
}

// lookupTextVariable resolves a variable to formattable text, covering
// the driver-supplied pseudo-variables alongside entry data.
func (w *walker) lookupTextVariable(name string) (csl.Text, bool) {
	switch name {
	case "locator":
		loc, _ := w.ctx.locator()
		if loc == "" {
			return csl.Text{}, false
		}
		return csl.NewText(FormatRange(loc, "")), true

	case "citation-number":
		if w.ctx.Number == 0 {
			return csl.Text{}, false
		}
		return csl.NewText(intString(w.ctx.Number)), true

	case "year-suffix":
		s := csl.SuffixLetter(w.ctx.Level.YearSuffix)
		if s == "" {
			return csl.Text{}, false
		}
		return csl.NewText(s), true
	}

	if scheme, ok := strings.CutPrefix(name, "serial."); ok {
		if v, present := w.entry.Var("serial"); present {
			if serials, isSerial := v.(csl.Serials); isSerial {
				if s := serials[scheme]; s != "" {
					return csl.NewText(s), true
				}
			}
		}
		return csl.Text{}, false
	}

	v, ok := w.entry.Var(name)
	if !ok {
		return csl.Text{}, false
	}
	switch val := v.(type) {
	case csl.Text:
		return val, true
	default:
		return csl.NewText(plainValue(v)), val.Empty() == false
	}
}

// renderNames renders the node's name-list variables in order, joined by
// the node delimiter.
func (w *walker) renderNames(node csl.NamesNode, tr *varTracker) csl.Runs {
	var parts []string
	for _, v := range node.Variables {
		tr.attempted++
		names := w.entry.NamesVar(v)
		if len(names) == 0 {
			continue
		}
		s := FormatNames(names, node, w.ctx)
		if s == "" {
			continue
		}
		tr.nonempty++
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return nil
	}
	return tagged(strings.Join(parts, delimiterOf(node)), node.Formatting)
}

// renderLabel renders a term pluralized against its associated variable.
// Labels resolve terms, not variables, so they never count toward group
// suppression.
func (w *walker) renderLabel(node csl.LabelNode) csl.Runs {
	term, ok := w.ctx.term(node.Term)
	if !ok {
		return nil
	}

	plural := false
	switch node.Plural {
	case "always":
		plural = true
	case "never":
		plural = false
	default:
		plural = w.contextualPlural(node)
	}

	s := ApplyCase(csl.NewText(term.Pick(plural)), node.TextCase)
	if s == "" {
		return nil
	}
	return tagged(s, node.Formatting)
}

// contextualPlural decides plurality from the associated variable: a
// name list with more than one name, a locator or number naming a range.
func (w *walker) contextualPlural(node csl.LabelNode) bool {
	if node.Variable == "locator" || node.Variable == "" && node.Term == "locator" {
		loc, _ := w.ctx.locator()
		return RangeIsPlural(loc)
	}
	v, ok := w.entry.Var(node.Variable)
	if !ok {
		return false
	}
	switch val := v.(type) {
	case csl.Names:
		return len(val) > 1
	case csl.Number:
		return RangeIsPlural(val.Raw)
	case csl.Text:
		return RangeIsPlural(val.Value)
	default:
		return false
	}
}

// tagged builds the runs for one element: prefix and suffix attach as
// punctuation around the content only because the content is non-empty.
func tagged(s string, f csl.Formatting) csl.Runs {
	if s == "" {
		return nil
	}
	var runs csl.Runs
	runs = runs.Append(f.Prefix, csl.TagPunctuation)
	runs = runs.Append(s, f.Tag)
	runs = runs.Append(f.Suffix, csl.TagPunctuation)
	return runs
}

// wrapAffixes attaches container affixes to non-empty content.
func wrapAffixes(runs csl.Runs, f csl.Formatting) csl.Runs {
	if runs.Empty() {
		return nil
	}
	var out csl.Runs
	out = out.Append(f.Prefix, csl.TagPunctuation)
	out = out.Concat(runs.Retag(f.Tag))
	out = out.Append(f.Suffix, csl.TagPunctuation)
	return out
}

// plainValue renders any value kind as bare text, for fallbacks.
func plainValue(v csl.Value) string {
	switch val := v.(type) {
	case csl.Text:
		return val.Value
	case csl.Number:
		return val.String()
	case csl.Date:
		if val.Empty() {
			return ""
		}
		return intString(val.Year)
	case csl.Names:
		var fams []string
		for _, p := range val {
			fams = append(fams, p.FamilyWithParticle())
		}
		return strings.Join(fams, ", ")
	case csl.Serials:
		var parts []string
		for _, k := range sortedKeys(val) {
			parts = append(parts, strings.ToUpper(k)+" "+val[k])
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func intString(n int) string {
	return strconv.Itoa(n)
}

func sortedKeys(m csl.Serials) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
