package harness

import (
	"fmt"
	"strings"
)

// AssertionError reports one failed assertion with the expected and
// actual outcomes plus the citation trace for context.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual:   %s\n", e.Actual)
	fmt.Fprintf(&buf, "trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %v %q\n", ev.Seq, ev.Position, ev.Entries, ev.Text)
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the final result
// and returns the failure messages. All assertions run; one failure
// does not mask the next.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertCited:
			err = assertCited(result, a)
		case AssertPosition:
			err = assertPosition(result, a)
		case AssertText:
			err = assertText(result, a)
		case AssertBibliographyOrder:
			err = assertBibliographyOrder(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// assertCited checks that the entry appears in the history. A non-zero
// Count pins the exact number of citing events.
func assertCited(result *Result, a Assertion) error {
	n := 0
	for _, ev := range result.Citations {
		for _, id := range ev.Entries {
			if id == a.Entry {
				n++
				break
			}
		}
	}
	if a.Count > 0 && n != a.Count {
		return &AssertionError{
			Type:     AssertCited,
			Expected: fmt.Sprintf("%s cited by %d events", a.Entry, a.Count),
			Actual:   fmt.Sprintf("cited by %d", n),
			Trace:    result.Citations,
		}
	}
	if n == 0 {
		return &AssertionError{
			Type:     AssertCited,
			Expected: fmt.Sprintf("%s cited at least once", a.Entry),
			Actual:   "never cited",
			Trace:    result.Citations,
		}
	}
	return nil
}

func assertPosition(result *Result, a Assertion) error {
	ev, ok := eventAt(result, a.Seq)
	if !ok {
		return &AssertionError{
			Type:     AssertPosition,
			Expected: fmt.Sprintf("event at seq %d", a.Seq),
			Actual:   "no such event",
			Trace:    result.Citations,
		}
	}
	if ev.Position != a.Position {
		return &AssertionError{
			Type:     AssertPosition,
			Expected: fmt.Sprintf("seq %d position %s", a.Seq, a.Position),
			Actual:   ev.Position,
			Trace:    result.Citations,
		}
	}
	return nil
}

// assertText checks the final render of one event, after retroactive
// refreshes.
func assertText(result *Result, a Assertion) error {
	ev, ok := eventAt(result, a.Seq)
	if !ok {
		return &AssertionError{
			Type:     AssertText,
			Expected: fmt.Sprintf("event at seq %d", a.Seq),
			Actual:   "no such event",
			Trace:    result.Citations,
		}
	}
	if ev.Text != a.Expect {
		return &AssertionError{
			Type:     AssertText,
			Expected: fmt.Sprintf("seq %d renders %q", a.Seq, a.Expect),
			Actual:   fmt.Sprintf("%q", ev.Text),
			Trace:    result.Citations,
		}
	}
	return nil
}

func assertBibliographyOrder(result *Result, a Assertion) error {
	actual := make([]string, len(result.Bibliography))
	for i, line := range result.Bibliography {
		actual[i] = line.Entry
	}
	if len(actual) != len(a.Entries) {
		return orderError(a, actual, result)
	}
	for i := range actual {
		if actual[i] != a.Entries[i] {
			return orderError(a, actual, result)
		}
	}
	return nil
}

func orderError(a Assertion, actual []string, result *Result) error {
	return &AssertionError{
		Type:     AssertBibliographyOrder,
		Expected: strings.Join(a.Entries, ", "),
		Actual:   strings.Join(actual, ", "),
		Trace:    result.Citations,
	}
}

func eventAt(result *Result, seq int64) (TraceEvent, bool) {
	for _, ev := range result.Citations {
		if ev.Seq == seq {
			return ev, true
		}
	}
	return TraceEvent{}, false
}
