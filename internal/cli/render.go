package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bibkit/bibkit/internal/cite"
	"github.com/bibkit/bibkit/internal/csl"
	"github.com/bibkit/bibkit/internal/sessionlog"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Locale       string
	Cites        []string
	Bibliography bool
	Database     string
	Session      string
}

// RenderedLine is one citation in the render output.
type RenderedLine struct {
	Seq      int64  `json:"seq"`
	Position string `json:"position"`
	Text     string `json:"text"`
}

// RenderResult holds the full render output.
type RenderResult struct {
	Session      string         `json:"session"`
	Citations    []RenderedLine `json:"citations"`
	Bibliography []string       `json:"bibliography,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <style.cue> <entries.yaml>",
		Short: "Render citations and a bibliography",
		Long: `Render a sequence of citations against a style and entry library.

Each --cite flag is one citation event. Items within an event are
comma-separated; an item is an entry id, optionally followed by
@locator (the locator label defaults to "page"). Later events can
retroactively change earlier renders through disambiguation; the
output always shows the final text.

With --db the session is appended to a durable log for later replay
and trace queries.

Exit codes:
  0 - Rendered successfully
  1 - Render failure (unknown entry, compile error)
  2 - Command error (file not found, database error)

Examples:
  bibkit render style.cue lib.yaml --cite alpha --cite beta
  bibkit render style.cue lib.yaml --cite "alpha@12,beta" --bibliography
  bibkit render style.cue lib.yaml --cite alpha --db cites.db --session draft-1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Locale, "locale", "", "locale overlay file")
	cmd.Flags().StringArrayVar(&opts.Cites, "cite", nil, "citation event (repeatable)")
	cmd.Flags().BoolVar(&opts.Bibliography, "bibliography", false, "include the sorted bibliography")
	cmd.Flags().StringVar(&opts.Database, "db", "", "append the session to this SQLite log")
	cmd.Flags().StringVar(&opts.Session, "session", "", "fixed session token (default: generated)")

	return cmd
}

func runRender(opts *RenderOptions, stylePath, entriesPath string, cmd *cobra.Command) error {
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
	lib, err := loadLibrary(entriesPath)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	locale, err := loadLocale(opts.Locale)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	events := make([][]csl.CiteItem, 0, len(opts.Cites))
	for _, spec := range opts.Cites {
		items, err := parseCiteSpec(spec)
		if err != nil {
			_ = formatter.Error(ErrCodeBadCite, err.Error(), nil)
			return NewExitError(ExitCommandError, err.Error())
		}
		events = append(events, items)
	}

	var driverOpts []cite.Option
	if opts.Session != "" {
		driverOpts = append(driverOpts, cite.WithTokenGenerator(cite.NewFixedGenerator(opts.Session)))
	}
	driver, err := cite.New(lib, style, locale, driverOpts...)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}

	ctx := context.Background()
	var log *sessionlog.Store
	if opts.Database != "" {
		log, err = sessionlog.Open(opts.Database)
		if err != nil {
			_ = formatter.Error(ErrCodeSession, err.Error(), nil)
			return WrapExitError(ExitCommandError, "opening session log", err)
		}
		defer log.Close()
		if err := log.CreateSession(ctx, driver.Token(), style.Name, locale.Code); err != nil {
			_ = formatter.Error(ErrCodeSession, err.Error(), nil)
			return WrapExitError(ExitCommandError, "creating session", err)
		}
	}

	for i, items := range events {
		res, err := driver.Cite(items...)
		if err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return NewExitError(ExitFailure, fmt.Sprintf("event %d: %v", i+1, err))
		}
		formatter.VerboseLog("[%d] %s", res.Citation.Seq, res.Citation.Plain())

		if log != nil {
			ev := csl.CitationEvent{Seq: res.Citation.Seq, Items: items}
			if err := log.AppendEvent(ctx, driver.Token(), ev); err != nil {
				return WrapExitError(ExitCommandError, "logging event", err)
			}
			if err := log.UpsertRender(ctx, driver.Token(), res.Citation); err != nil {
				return WrapExitError(ExitCommandError, "logging render", err)
			}
			for _, rc := range res.Reissued {
				if err := log.UpsertRender(ctx, driver.Token(), rc); err != nil {
					return WrapExitError(ExitCommandError, "logging render", err)
				}
			}
		}
	}

	result := RenderResult{Session: driver.Token()}
	for _, rc := range driver.History() {
		result.Citations = append(result.Citations, RenderedLine{
			Seq:      rc.Seq,
			Position: string(rc.Position),
			Text:     rc.Plain(),
		})
	}
	if opts.Bibliography {
		for _, rc := range driver.Bibliography() {
			result.Bibliography = append(result.Bibliography, rc.Plain())
		}
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	for _, line := range result.Citations {
		fmt.Fprintf(formatter.Writer, "[%d] %s\n", line.Seq, line.Text)
	}
	if opts.Bibliography {
		fmt.Fprintln(formatter.Writer, "\nBibliography:")
		for _, line := range result.Bibliography {
			fmt.Fprintf(formatter.Writer, "  %s\n", line)
		}
	}
	return nil
}

// parseCiteSpec parses one --cite value: comma-separated items, each an
// entry id with an optional @locator.
func parseCiteSpec(spec string) ([]csl.CiteItem, error) {
	var items []csl.CiteItem
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("cite spec %q: empty item", spec)
		}
		id, locator, found := strings.Cut(part, "@")
		if id == "" {
			return nil, fmt.Errorf("cite spec %q: missing entry id", spec)
		}
		item := csl.CiteItem{EntryID: id}
		if found {
			if locator == "" {
				return nil, fmt.Errorf("cite spec %q: empty locator", spec)
			}
			item.Locator = locator
			item.LocatorLabel = "page"
		}
		items = append(items, item)
	}
	return items, nil
}
