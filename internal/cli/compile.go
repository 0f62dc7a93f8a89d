package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bibkit/bibkit/internal/csl"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompileResult summarizes a compiled style.
type CompileResult struct {
	Name              string   `json:"name"`
	Class             string   `json:"class"`
	Numeric           bool     `json:"numeric,omitempty"`
	CitationNodes     int      `json:"citation_nodes"`
	BibliographyNodes int      `json:"bibliography_nodes"`
	SortKeys          int      `json:"sort_keys"`
	Disambiguation    []string `json:"disambiguation,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <style.cue>",
		Short: "Compile a CUE style to its canonical form",
		Long: `Compile a CUE style file, validate it against the closed element
vocabulary, and optionally write the canonical JSON form.

Exit codes:
  0 - Style compiled cleanly
  1 - Style failed to compile
  2 - Command error (file not found)

Examples:
  bibkit compile styles/author-year.cue
  bibkit compile styles/author-year.cue -o author-year.json
  bibkit compile styles/author-year.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path for canonical JSON")

	return cmd
}

func runCompile(opts *CompileOptions, stylePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	style, err := loadStyle(stylePath)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Compiled style %q from %s", style.Name, stylePath)

	if opts.Output != "" {
		if err := writeStyleJSON(style, opts.Output); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
		formatter.VerboseLog("Wrote canonical form to %s", opts.Output)
	}

	result := CompileResult{
		Name:              style.Name,
		Class:             string(style.Class),
		Numeric:           style.Numeric,
		CitationNodes:     len(style.Citation.Children),
		BibliographyNodes: len(style.Bibliography.Children),
		SortKeys:          len(style.Sort),
	}
	for _, rule := range style.Disambiguation {
		result.Disambiguation = append(result.Disambiguation, string(rule))
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "Compiled %s (%s)\n", result.Name, result.Class)
	fmt.Fprintf(formatter.Writer, "  citation nodes:     %d\n", result.CitationNodes)
	fmt.Fprintf(formatter.Writer, "  bibliography nodes: %d\n", result.BibliographyNodes)
	fmt.Fprintf(formatter.Writer, "  sort keys:          %d\n", result.SortKeys)
	if len(result.Disambiguation) > 0 {
		fmt.Fprintf(formatter.Writer, "  disambiguation:     %v\n", result.Disambiguation)
	}
	return nil
}

func writeStyleJSON(style *csl.Style, path string) error {
	data, err := json.MarshalIndent(style, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
