package disambig

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/bibkit/bibkit/internal/csl"
)

// RenderFunc renders one entry's citation at a given disambiguation
// level. The engine probes candidate levels through it; the function
// must be pure (same inputs, same runs).
type RenderFunc func(entryID string, level csl.DisambLevel) csl.Runs

// DefaultMaxAddNames caps how far the add-names technique raises the
// et-al cutoff. Name lists longer than this stop distinguishing
// entries well before the cap is reached.
const DefaultMaxAddNames = 16

// Engine holds the disambiguation state for one session.
//
// Not safe for concurrent use: the engine is owned by a single driver
// and mutated only from its event-processing sequence.
type Engine struct {
	rules       []csl.DisambRule
	levels      map[string]csl.DisambLevel
	firstSeen   map[string]int64 // seq of each entry's first citation
	maxAddNames int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxAddNames overrides the add-names escalation cap.
func WithMaxAddNames(n int) Option {
	return func(e *Engine) { e.maxAddNames = n }
}

// New creates an engine applying the style's declared techniques in
// declaration order. The rules slice is copied; its order never changes
// after construction.
func New(rules []csl.DisambRule, opts ...Option) *Engine {
	rulesCopy := make([]csl.DisambRule, len(rules))
	copy(rulesCopy, rules)

	e := &Engine{
		rules:       rulesCopy,
		levels:      make(map[string]csl.DisambLevel),
		firstSeen:   make(map[string]int64),
		maxAddNames: DefaultMaxAddNames,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Level returns the current level for an entry. Unknown entries return
// the zero level.
func (e *Engine) Level(id string) csl.DisambLevel {
	return e.levels[id]
}

// Observe records an entry's first citation position. Later calls for
// the same entry are ignored; first-citation order is immutable.
func (e *Engine) Observe(id string, seq int64) {
	if _, seen := e.firstSeen[id]; !seen {
		e.firstSeen[id] = seq
	}
}

// Cited returns every observed entry id.
func (e *Engine) Cited() []string {
	ids := make([]string, 0, len(e.firstSeen))
	for id := range e.firstSeen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve detects collisions among all observed entries and escalates
// until every entry renders distinctly. It returns the ids whose levels
// changed; the driver must mark their prior renders dirty.
//
// Collision grouping compares renders with the year-suffix stripped:
// suffix letters are the output of disambiguation, not part of an
// entry's identity, so "Smith 2020a" and a new "Smith 2020" belong to
// the same group and the newcomer receives the next free letter.
func (e *Engine) Resolve(render RenderFunc) ([]string, error) {
	before := make(map[string]csl.DisambLevel, len(e.levels))
	for id, lv := range e.levels {
		before[id] = lv
	}

	for _, group := range e.collisionGroups(render) {
		if err := e.separate(group, render); err != nil {
			return nil, err
		}
	}

	var dirty []string
	for id, lv := range e.levels {
		if before[id] != lv {
			dirty = append(dirty, id)
		}
	}
	sort.Strings(dirty)
	if len(dirty) > 0 {
		slog.Debug("disambiguation state raised", "entries", dirty)
	}
	return dirty, nil
}

// collisionGroups buckets observed entries by suffixless render
// fingerprint and returns the buckets holding more than one entry,
// each sorted by first-citation order.
func (e *Engine) collisionGroups(render RenderFunc) [][]string {
	buckets := make(map[string][]string)
	for _, id := range e.Cited() {
		fp := csl.Fingerprint(render(id, e.baseLevel(id)))
		buckets[fp] = append(buckets[fp], id)
	}

	var groups [][]string
	for _, ids := range buckets {
		if len(ids) > 1 {
			e.sortByFirstSeen(ids)
			groups = append(groups, ids)
		}
	}
	// Deterministic group order: by the first member's first citation.
	sort.Slice(groups, func(i, j int) bool {
		return e.firstSeen[groups[i][0]] < e.firstSeen[groups[j][0]]
	})
	return groups
}

// separate escalates one collision group until its members render
// distinctly, applying declared rules in order and the year-suffix
// fallback last.
func (e *Engine) separate(group []string, render RenderFunc) error {
	if e.distinct(group, render) {
		return nil
	}

	for _, rule := range e.rules {
		switch rule {
		case csl.DisambAddGivenName:
			for _, step := range []csl.GivenNameLevel{csl.GivenInitials, csl.GivenFull} {
				e.raiseAll(group, csl.DisambLevel{GivenNames: step})
				if e.distinct(group, render) {
					return nil
				}
			}

		case csl.DisambAddNames:
			for n := 2; n <= e.maxAddNames; n++ {
				changed := e.raiseAll(group, csl.DisambLevel{AddNames: n})
				if e.distinct(group, render) {
					return nil
				}
				if !changed {
					break // every member already at or past n
				}
			}

		case csl.DisambYearSuffix:
			e.assignSuffixes(group)
			return e.verify(group, render)
		}
	}

	// Activate disambiguate-condition branches before falling back.
	e.raiseAll(group, csl.DisambLevel{Condition: true})
	if e.distinct(group, render) {
		return nil
	}

	// Required deterministic fallback: year-suffix letters by
	// first-citation order.
	e.assignSuffixes(group)
	return e.verify(group, render)
}

// baseLevel returns an entry's level with the year suffix stripped, for
// collision grouping.
func (e *Engine) baseLevel(id string) csl.DisambLevel {
	lv := e.levels[id]
	lv.YearSuffix = 0
	return lv
}

// distinct reports whether every group member currently renders
// uniquely, comparing suffixless renders.
func (e *Engine) distinct(group []string, render RenderFunc) bool {
	seen := make(map[string]bool, len(group))
	for _, id := range group {
		fp := csl.Fingerprint(render(id, e.baseLevel(id)))
		if seen[fp] {
			return false
		}
		seen[fp] = true
	}
	return true
}

// verify checks that a group renders distinctly with full levels (year
// suffixes included). Suffix assignment guarantees this, so a failure
// here is an internal invariant violation.
func (e *Engine) verify(group []string, render RenderFunc) error {
	seen := make(map[string]string, len(group))
	for _, id := range group {
		fp := csl.Fingerprint(render(id, e.levels[id]))
		if other, dup := seen[fp]; dup {
			return fmt.Errorf("disambiguation invariant violated: %s and %s render identically after year-suffix fallback", other, id)
		}
		seen[fp] = id
	}
	return nil
}

// raiseAll raises every group member to at least the given level.
// Returns true if any member changed.
func (e *Engine) raiseAll(group []string, min csl.DisambLevel) bool {
	changed := false
	for _, id := range group {
		lv := e.levels[id]
		if lv.Raise(min) {
			e.levels[id] = lv
			changed = true
		}
	}
	return changed
}

// assignSuffixes gives every group member a year-suffix letter.
// Already-assigned letters are preserved - they may have been emitted
// in earlier renders - and members without one receive the lowest
// unused letters in first-citation order.
func (e *Engine) assignSuffixes(group []string) {
	used := make(map[int]bool)
	for _, id := range group {
		if s := e.levels[id].YearSuffix; s > 0 {
			used[s] = true
		}
	}

	next := 1
	for _, id := range group {
		lv := e.levels[id]
		if lv.YearSuffix > 0 {
			continue
		}
		for used[next] {
			next++
		}
		lv.YearSuffix = next
		used[next] = true
		e.levels[id] = lv
	}
}

// sortByFirstSeen orders ids by their first citation, id as tiebreak.
func (e *Engine) sortByFirstSeen(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := e.firstSeen[ids[i]], e.firstSeen[ids[j]]
		if a != b {
			return a < b
		}
		return ids[i] < ids[j]
	})
}
