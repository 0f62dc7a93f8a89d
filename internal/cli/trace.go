package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bibkit/bibkit/internal/sessionlog"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Entry    string // optional - only renders citing this entry
	FromSeq  int64
	ToSeq    int64
}

// TraceLine is one persisted render in the trace output.
type TraceLine struct {
	Seq      int64  `json:"seq"`
	Position string `json:"position"`
	Entries  string `json:"entries"`
	Text     string `json:"text"`
}

// TraceResult holds the trace output for one session.
type TraceResult struct {
	Session string      `json:"session"`
	Style   string      `json:"style"`
	Lines   []TraceLine `json:"lines"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Query the persisted renders of a session",
		Long: `Query the session log for a session's persisted renders, in
document order. Filters narrow the output to one entry or a seq
range. The text shown is the final text after any retroactive
disambiguation refresh.

Examples:
  bibkit trace --db cites.db --session draft-1
  bibkit trace --db cites.db --session draft-1 --entry alpha
  bibkit trace --db cites.db --session draft-1 --from 2 --to 5
  bibkit trace --db cites.db --session draft-1 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite session log (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session token (required)")
	_ = cmd.MarkFlagRequired("session")
	cmd.Flags().StringVar(&opts.Entry, "entry", "", "only renders citing this entry")
	cmd.Flags().Int64Var(&opts.FromSeq, "from", 0, "first seq (inclusive)")
	cmd.Flags().Int64Var(&opts.ToSeq, "to", 0, "last seq (inclusive)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := context.Background()
	log, err := sessionlog.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeSession, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open session log", err)
	}
	defer log.Close()

	info, err := log.ReadSession(ctx, opts.Session)
	if err != nil {
		if errors.Is(err, sessionlog.ErrNoSession) {
			_ = formatter.Error(ErrCodeSession, err.Error(), nil)
			return WrapExitError(ExitCommandError, "unknown session", err)
		}
		return WrapExitError(ExitCommandError, "reading session", err)
	}

	rows, err := log.Trace(ctx, sessionlog.TraceFilter{
		Session: opts.Session,
		EntryID: opts.Entry,
		FromSeq: opts.FromSeq,
		ToSeq:   opts.ToSeq,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "trace query", err)
	}

	result := TraceResult{Session: info.Token, Style: info.StyleName}
	for _, row := range rows {
		result.Lines = append(result.Lines, TraceLine{
			Seq:      row.Seq,
			Position: row.Position,
			Entries:  row.EntryIDs,
			Text:     row.Text,
		})
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	if len(result.Lines) == 0 {
		fmt.Fprintf(formatter.Writer, "No renders match in session %s.\n", info.Token)
		return nil
	}
	fmt.Fprintf(formatter.Writer, "Session %s (style %s):\n", info.Token, info.StyleName)
	for _, line := range result.Lines {
		fmt.Fprintf(formatter.Writer, "  [%d] %-18s %s\n", line.Seq, line.Position, line.Text)
	}
	return nil
}
