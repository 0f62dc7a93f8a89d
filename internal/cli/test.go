package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bibkit/bibkit/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern on file base name)
}

// ScenarioResult holds one scenario's outcome.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test outcome.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run every scenario YAML file in a directory through the conformance
harness: drive the engine through the scenario's citation steps,
check each expected render, and evaluate the final assertions.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, broken scenario files)

Examples:
  bibkit test ./scenarios
  bibkit test ./scenarios --filter "note-*"
  bibkit test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("scenarios directory not found: %s", scenariosDir), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	paths, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "scanning scenarios", err)
	}
	if len(paths) == 0 {
		_ = formatter.Error(ErrCodeNoScenarios, fmt.Sprintf("no scenario files found in %s", scenariosDir), nil)
		return NewExitError(ExitCommandError, "no scenario files found")
	}

	result := TestResult{Total: len(paths)}
	for _, path := range paths {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("loading %s", path), err)
		}
		formatter.VerboseLog("Running scenario %s", scenario.Name)

		run, err := harness.Run(scenario)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("running %s", scenario.Name), err)
		}

		sr := ScenarioResult{Name: scenario.Name, Pass: run.Pass, Errors: run.Errors}
		result.Scenarios = append(result.Scenarios, sr)
		if run.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, sr := range result.Scenarios {
			status := "PASS"
			if !sr.Pass {
				status = "FAIL"
			}
			fmt.Fprintf(formatter.Writer, "%s %s\n", status, sr.Name)
			for _, msg := range sr.Errors {
				fmt.Fprintf(formatter.Writer, "    %s\n", msg)
			}
		}
		fmt.Fprintf(formatter.Writer, "%d passed, %d failed, %d total\n",
			result.Passed, result.Failed, result.Total)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// findScenarioFiles lists the YAML scenario files in a directory,
// sorted for deterministic run order.
func findScenarioFiles(dir, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".yaml" && filepath.Ext(name) != ".yml" {
			continue
		}
		if filter != "" {
			ok, err := filepath.Match(filter, name)
			if err != nil {
				return nil, fmt.Errorf("bad filter %q: %w", filter, err)
			}
			if !ok {
				continue
			}
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}
