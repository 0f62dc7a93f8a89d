package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Locale string
}

// ValidateResult reports what was checked.
type ValidateResult struct {
	Style   string   `json:"style"`
	Entries int      `json:"entries"`
	Locale  string   `json:"locale"`
	Errors  []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <style.cue> <entries.yaml>",
		Short: "Validate a style and an entry library",
		Long: `Validate a CUE style and a YAML entry library without rendering.
All inputs are checked even after the first failure, so one run
reports every broken file.

Exit codes:
  0 - All inputs valid
  1 - Validation failure
  2 - Command error (file not found)

Examples:
  bibkit validate styles/author-year.cue library.yaml
  bibkit validate styles/author-year.cue library.yaml --locale locales/de.yaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Locale, "locale", "", "locale overlay to validate")

	return cmd
}

func runValidate(opts *ValidateOptions, stylePath, entriesPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result := ValidateResult{}

	style, err := loadStyle(stylePath)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	} else {
		result.Style = style.Name
	}

	lib, err := loadLibrary(entriesPath)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	} else {
		result.Entries = lib.Len()
	}

	locale, err := loadLocale(opts.Locale)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	} else {
		result.Locale = locale.Code
	}

	if len(result.Errors) > 0 {
		if opts.Format == "json" {
			_ = formatter.Success(result)
		} else {
			for _, msg := range result.Errors {
				fmt.Fprintf(formatter.Writer, "Error: %s\n", msg)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(result.Errors)))
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "OK: style %q, %d entries, locale %s\n",
		result.Style, result.Entries, result.Locale)
	return nil
}
