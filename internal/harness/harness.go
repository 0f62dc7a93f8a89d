package harness

import (
	"fmt"

	"github.com/bibkit/bibkit/internal/cite"
	"github.com/bibkit/bibkit/internal/csl"
	"github.com/bibkit/bibkit/internal/library"
	"github.com/bibkit/bibkit/internal/styleload"
)

// TraceEvent is one citation event as it stands at the end of the run,
// after every retroactive refresh has landed.
type TraceEvent struct {
	Seq      int64    `json:"seq"`
	Position string   `json:"position"`
	Entries  []string `json:"entries"`
	Text     string   `json:"text"`
}

// BibLine is one bibliography entry in final sorted order.
type BibLine struct {
	Entry string `json:"entry"`
	Text  string `json:"text"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Citations is the final citation history, in document order.
	Citations []TraceEvent `json:"citations"`

	// Bibliography is the final sorted bibliography.
	Bibliography []BibLine `json:"bibliography,omitempty"`

	// Errors lists the expect and assertion failures. Empty when Pass.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates an empty passing result.
func NewResult() *Result {
	return &Result{Pass: true}
}

// AddError records a validation failure and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Run executes a scenario against a fresh engine.
//
// A setup error (unreadable style, unknown entry id) returns an error;
// a render that does not match its expect clause or an assertion
// failure marks the result failed instead. That split lets golden
// tests distinguish broken fixtures from behavior drift.
func Run(scenario *Scenario) (*Result, error) {
	style, err := styleload.LoadFile(scenario.Style)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	lib, err := library.LoadEntries(scenario.Entries)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	locale := csl.EnglishLocale()
	if scenario.Locale != "" {
		locale, err = library.LoadLocale(scenario.Locale)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
	}

	driver, err := cite.New(lib, style, locale,
		cite.WithTokenGenerator(cite.NewFixedGenerator(scenario.Session)))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		items := make([]csl.CiteItem, len(step.Cite))
		for j, it := range step.Cite {
			items[j] = csl.CiteItem{
				EntryID:      it.Entry,
				Locator:      it.Locator,
				LocatorLabel: it.Label,
				Prefix:       it.Prefix,
				Suffix:       it.Suffix,
			}
		}

		res, err := driver.Cite(items...)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: step %d: %w", scenario.Name, i+1, err)
		}
		if step.Expect != "" && res.Citation.Plain() != step.Expect {
			result.AddError(fmt.Sprintf("step %d: rendered %q, want %q",
				i+1, res.Citation.Plain(), step.Expect))
		}
	}

	for _, rc := range driver.History() {
		result.Citations = append(result.Citations, TraceEvent{
			Seq:      rc.Seq,
			Position: string(rc.Position),
			Entries:  rc.EntryIDs,
			Text:     rc.Plain(),
		})
	}
	for _, rc := range driver.Bibliography() {
		result.Bibliography = append(result.Bibliography, BibLine{
			Entry: rc.EntryIDs[0],
			Text:  rc.Plain(),
		})
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
