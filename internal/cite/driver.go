package cite

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/bibkit/bibkit/internal/bibliography"
	"github.com/bibkit/bibkit/internal/csl"
	"github.com/bibkit/bibkit/internal/disambig"
	"github.com/bibkit/bibkit/internal/render"
)

// defaultClusterDelimiter joins cite items within one citation cluster
// when the citation layout does not declare a delimiter.
const defaultClusterDelimiter = "; "

// Result is the outcome of one Cite call: the citation rendered for the
// new event, plus any earlier citations whose text changed because the
// new event raised disambiguation levels. Callers must replace their
// copies of the reissued renders.
type Result struct {
	Citation csl.RenderedCitation
	Reissued []csl.RenderedCitation
}

// record is one processed event with everything needed to re-render it:
// the event itself and the per-item positions classified when it
// arrived. Positions never change after classification; only
// disambiguation levels do.
type record struct {
	ev        csl.CitationEvent
	positions []csl.Position
	rendered  csl.RenderedCitation
}

// Driver processes one session's citation events.
type Driver struct {
	lib    *csl.Library
	style  *csl.Style
	locale *csl.Locale
	clock  *Clock
	disamb *disambig.Engine
	sorter *bibliography.Sorter
	token  string

	records   []record
	byEntry   map[string][]int  // entry id -> record indexes citing it
	lastCite  map[string]int    // entry id -> index of most recent record citing it
	firstSeen map[string]int64  // entry id -> seq of first citation
	numbers   map[string]int    // first-seen ordinals (numeric styles)
	prev      int               // index of preceding non-empty record, -1 if none
	nearNote  int
}

// Option configures a Driver.
type Option func(*Driver)

// WithTokenGenerator overrides the session token source. Tests use a
// FixedGenerator for golden comparison.
func WithTokenGenerator(gen TokenGenerator) Option {
	return func(d *Driver) { d.token = gen.Generate() }
}

// WithClock supplies a pre-positioned clock, letting replay resume a
// persisted session at its recorded position.
func WithClock(c *Clock) Option {
	return func(d *Driver) { d.clock = c }
}

// New creates a driver for one session over an entry library, a compiled
// style, and a locale. All three are read-only; the driver never mutates
// them.
func New(lib *csl.Library, style *csl.Style, locale *csl.Locale, opts ...Option) (*Driver, error) {
	if lib == nil {
		return nil, fmt.Errorf("cite: nil library")
	}
	if style == nil {
		return nil, fmt.Errorf("cite: nil style")
	}
	if locale == nil {
		return nil, fmt.Errorf("cite: nil locale")
	}

	nearNote := style.NearNoteDistance
	if nearNote == 0 {
		nearNote = csl.DefaultNearNoteDistance
	}

	d := &Driver{
		lib:       lib,
		style:     style,
		locale:    locale,
		clock:     NewClock(),
		disamb:    disambig.New(style.Disambiguation),
		sorter:    bibliography.New(style, locale),
		token:     UUIDv7Generator{}.Generate(),
		byEntry:   make(map[string][]int),
		lastCite:  make(map[string]int),
		firstSeen: make(map[string]int64),
		numbers:   make(map[string]int),
		prev:      -1,
		nearNote:  nearNote,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Token returns the session token.
func (d *Driver) Token() string { return d.token }

// Clock returns the driver's logical clock.
func (d *Driver) Clock() *Clock { return d.clock }

// Cite processes the next citation event in document order and returns
// its render plus any retroactively refreshed earlier renders.
//
// An unknown entry id is a malformed input: Cite fails before mutating
// any state. An event with no items renders empty and does not affect
// position tracking.
func (d *Driver) Cite(items ...csl.CiteItem) (Result, error) {
	for _, it := range items {
		if _, ok := d.lib.Get(it.EntryID); !ok {
			return Result{}, fmt.Errorf("cite: unknown entry %q", it.EntryID)
		}
	}

	seq := d.clock.Next()
	ev := csl.CitationEvent{Seq: seq, Items: make([]csl.CiteItem, len(items))}
	copy(ev.Items, items)

	if len(ev.Items) == 0 {
		rec := record{ev: ev, rendered: csl.RenderedCitation{Seq: seq}}
		d.records = append(d.records, rec)
		return Result{Citation: rec.rendered}, nil
	}

	idx := len(d.records)
	positions := d.classify(ev, idx)

	for _, it := range ev.Items {
		id := it.EntryID
		if _, seen := d.firstSeen[id]; !seen {
			d.firstSeen[id] = seq
			d.disamb.Observe(id, seq)
			if d.style.Numeric {
				d.numbers[id] = len(d.numbers) + 1
			}
		}
	}

	dirty, err := d.disamb.Resolve(d.renderBase)
	if err != nil {
		return Result{}, fmt.Errorf("resolve disambiguation at seq %d: %w", seq, err)
	}
	reissued := d.reissue(dirty)

	rendered := csl.RenderedCitation{
		EntryIDs: ev.EntryIDs(),
		Seq:      seq,
		Position: positions[0],
		Number:   d.numbers[ev.Items[0].EntryID],
		Runs:     d.renderEvent(ev, positions),
	}

	d.records = append(d.records, record{ev: ev, positions: positions, rendered: rendered})
	for _, it := range ev.Items {
		d.byEntry[it.EntryID] = append(d.byEntry[it.EntryID], idx)
		d.lastCite[it.EntryID] = idx
	}
	d.prev = idx

	slog.Debug("citation rendered",
		"seq", seq,
		"entries", rendered.EntryIDs,
		"position", rendered.Position,
		"reissued", len(reissued),
	)

	return Result{Citation: rendered, Reissued: reissued}, nil
}

// History returns the session's rendered citations in document order,
// reflecting any retroactive re-renders. The history itself is
// append-only; only run text is ever refreshed.
func (d *Driver) History() []csl.RenderedCitation {
	out := make([]csl.RenderedCitation, len(d.records))
	for i, rec := range d.records {
		out[i] = rec.rendered
	}
	return out
}

// Events returns the raw citation events in document order, for
// persistence and replay.
func (d *Driver) Events() []csl.CitationEvent {
	out := make([]csl.CitationEvent, len(d.records))
	for i, rec := range d.records {
		out[i] = rec.ev
	}
	return out
}

// Bibliography renders one citation per distinct referenced entry,
// ordered by the style's sort keys with first-citation order breaking
// ties. Each entry renders at its current disambiguation level, so year
// suffixes match the in-text citations.
func (d *Driver) Bibliography() []csl.RenderedCitation {
	ids := make([]string, 0, len(d.firstSeen))
	for id := range d.firstSeen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	ids = d.sorter.Sort(d.lib, ids, d.firstSeen)

	out := make([]csl.RenderedCitation, 0, len(ids))
	for _, id := range ids {
		e, _ := d.lib.Get(id)
		ctx := d.context(csl.PositionFirst, nil, id)
		out = append(out, csl.RenderedCitation{
			EntryIDs: []string{id},
			Seq:      d.firstSeen[id],
			Position: csl.PositionFirst,
			Number:   d.numbers[id],
			Runs:     render.Render(e, d.style.Bibliography, ctx),
		})
	}
	return out
}

// classify determines each item's position relative to the immediately
// preceding non-empty event. Ibid classification is event-level: the
// whole entry set must match the previous event, with identical locators
// for plain ibid and changed ones for ibid-with-locator.
func (d *Driver) classify(ev csl.CitationEvent, idx int) []csl.Position {
	positions := make([]csl.Position, len(ev.Items))

	if d.prev >= 0 && ev.SameEntries(d.records[d.prev].ev) {
		pos := csl.PositionIbidLocator
		if ev.SameLocators(d.records[d.prev].ev) {
			pos = csl.PositionIbid
		}
		for i := range positions {
			positions[i] = pos
		}
		return positions
	}

	for i, it := range ev.Items {
		last, seen := d.lastCite[it.EntryID]
		switch {
		case !seen:
			positions[i] = csl.PositionFirst
		case idx-last > 1 && idx-last <= d.nearNote:
			positions[i] = csl.PositionNearNote
		default:
			positions[i] = csl.PositionSubsequent
		}
	}
	return positions
}

// renderEvent renders a cluster: each item through the citation layout's
// children, joined by the layout delimiter, wrapped once in the layout
// affixes. Item prefixes and suffixes are caller prose and attach
// untagged around their item's output.
func (d *Driver) renderEvent(ev csl.CitationEvent, positions []csl.Position) csl.Runs {
	delim := d.style.Citation.Delimiter
	if delim == "" {
		delim = defaultClusterDelimiter
	}

	var body csl.Runs
	for i := range ev.Items {
		item := &ev.Items[i]
		e, _ := d.lib.Get(item.EntryID)
		ctx := d.context(positions[i], item, item.EntryID)

		part := render.RenderItem(e, d.style.Citation, ctx)
		if part.Empty() {
			continue
		}
		if !body.Empty() {
			body = body.Append(delim, csl.TagPunctuation)
		}
		body = body.Append(item.Prefix, csl.TagPlain)
		body = body.Concat(part)
		body = body.Append(item.Suffix, csl.TagPlain)
	}
	if body.Empty() {
		return nil
	}

	var out csl.Runs
	out = out.Append(d.style.Citation.Prefix, csl.TagPunctuation)
	out = out.Concat(body)
	out = out.Append(d.style.Citation.Suffix, csl.TagPunctuation)
	return out
}

// renderBase renders an entry's canonical citation form at a candidate
// disambiguation level, for collision probing. Position and locator are
// neutral so only entry data and the level shape the text.
func (d *Driver) renderBase(id string, lv csl.DisambLevel) csl.Runs {
	e, _ := d.lib.Get(id)
	ctx := &render.Context{
		Locale:   d.locale,
		Terms:    d.style.Terms,
		Position: csl.PositionFirst,
		Number:   d.numbers[id],
		Level:    lv,
	}
	return render.Render(e, d.style.Citation, ctx)
}

// reissue re-renders every history record citing a dirtied entry and
// returns the refreshed renders in document order.
func (d *Driver) reissue(dirty []string) []csl.RenderedCitation {
	if len(dirty) == 0 {
		return nil
	}

	touched := make(map[int]bool)
	for _, id := range dirty {
		for _, idx := range d.byEntry[id] {
			touched[idx] = true
		}
	}
	if len(touched) == 0 {
		return nil
	}

	indexes := make([]int, 0, len(touched))
	for idx := range touched {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	out := make([]csl.RenderedCitation, 0, len(indexes))
	for _, idx := range indexes {
		rec := &d.records[idx]
		rec.rendered.Runs = d.renderEvent(rec.ev, rec.positions)
		out = append(out, rec.rendered)
	}

	slog.Info("citations re-rendered after disambiguation",
		"entries", dirty,
		"count", len(out),
	)
	return out
}

// context builds a rendering context for one item of one entry.
func (d *Driver) context(pos csl.Position, item *csl.CiteItem, id string) *render.Context {
	return &render.Context{
		Locale:   d.locale,
		Terms:    d.style.Terms,
		Position: pos,
		Item:     item,
		Number:   d.numbers[id],
		Level:    d.disamb.Level(id),
	}
}
