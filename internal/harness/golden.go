package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the serialized final state of a scenario run, compared
// against the golden file testdata/golden/{scenario.Name}.golden.
type Snapshot struct {
	Scenario     string       `json:"scenario"`
	Session      string       `json:"session"`
	Citations    []TraceEvent `json:"citations"`
	Bibliography []BibLine    `json:"bibliography,omitempty"`
}

// RunWithGolden executes a scenario and compares the final state
// against its golden file. Expect-clause and assertion failures are
// returned as an error rather than folded into the snapshot, so the
// golden file only ever records correct output.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if !result.Pass {
		return fmt.Errorf("scenario %s failed: %v", scenario.Name, result.Errors)
	}

	snapshot := Snapshot{
		Scenario:     scenario.Name,
		Session:      scenario.Session,
		Citations:    result.Citations,
		Bibliography: result.Bibliography,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
