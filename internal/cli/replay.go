package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bibkit/bibkit/internal/csl"
	"github.com/bibkit/bibkit/internal/sessionlog"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Locale   string
	Database string
	Session  string // optional - specific session only
}

// ReplaySessionResult holds the replay outcome for one session.
type ReplaySessionResult struct {
	Session       string `json:"session"`
	Events        int    `json:"events"`
	Deterministic bool   `json:"deterministic"`
}

// ReplayResult holds the overall replay outcome.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <style.cue> <entries.yaml>",
		Short: "Replay logged sessions and verify determinism",
		Long: `Replay logged citation sessions through a fresh engine and verify
that the persisted renders match the replayed ones.

A session is deterministic when every stored render text equals the
text the fresh engine produces for the same event sequence, including
retroactive disambiguation refreshes.

Exit codes:
  0 - All sessions are deterministic
  1 - A session diverged from its log
  2 - Command error (database not found, etc.)

Examples:
  bibkit replay style.cue lib.yaml --db cites.db
  bibkit replay style.cue lib.yaml --db cites.db --session draft-1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Locale, "locale", "", "locale overlay file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite session log (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay a specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, stylePath, entriesPath string, cmd *cobra.Command) error {
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

	ctx := context.Background()
	log, err := sessionlog.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeSession, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open session log", err)
	}
	defer log.Close()

	var tokens []string
	if opts.Session != "" {
		tokens = []string{opts.Session}
	} else {
		sessions, err := log.Sessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		for _, info := range sessions {
			tokens = append(tokens, info.Token)
		}
	}

	if len(tokens) == 0 {
		if opts.Format == "json" {
			return formatter.Success(ReplayResult{Sessions: []ReplaySessionResult{}, AllDeterministic: true})
		}
		fmt.Fprintln(formatter.Writer, "No sessions found in log.")
		return nil
	}

	result := ReplayResult{TotalSessions: len(tokens), AllDeterministic: true}
	for _, token := range tokens {
		sr, err := replaySession(ctx, log, token, lib, style, locale, formatter)
		if err != nil {
			_ = formatter.Error(ErrCodeSession, err.Error(), nil)
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", token), err)
		}
		result.Sessions = append(result.Sessions, sr)
		if !sr.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, sr := range result.Sessions {
			status := "ok"
			if !sr.Deterministic {
				status = "DIVERGED"
			}
			fmt.Fprintf(formatter.Writer, "%s: %d event(s), %s\n", sr.Session, sr.Events, status)
		}
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay diverged from the log")
	}
	return nil
}

// replaySession re-runs one session and diffs the replayed history
// against the persisted render texts.
func replaySession(ctx context.Context, log *sessionlog.Store, token string, lib *csl.Library, style *csl.Style, locale *csl.Locale, formatter *OutputFormatter) (ReplaySessionResult, error) {
	sr := ReplaySessionResult{Session: token, Deterministic: true}

	driver, err := sessionlog.Replay(ctx, log, token, lib, style, locale)
	if err != nil {
		return sr, err
	}

	history := driver.History()
	sr.Events = len(history)

	rows, err := log.Trace(ctx, sessionlog.TraceFilter{Session: token})
	if err != nil {
		return sr, err
	}
	persisted := make(map[int64]string, len(rows))
	for _, row := range rows {
		persisted[row.Seq] = row.Text
	}

	for _, rc := range history {
		text, ok := persisted[rc.Seq]
		if !ok {
			continue // render was never logged; nothing to diff
		}
		if text != rc.Plain() {
			sr.Deterministic = false
			formatter.VerboseLog("seq %d: log holds %q, replay produced %q", rc.Seq, text, rc.Plain())
		}
	}
	return sr, nil
}
