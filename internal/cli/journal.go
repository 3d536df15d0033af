package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/layercast/internal/instructions"
	"github.com/roach88/layercast/internal/ir"
	"github.com/roach88/layercast/internal/store"
)

// JournalOptions holds flags shared by the journal commands.
type JournalOptions struct {
	*RootOptions
	Database string
}

// JournalReplayOptions holds flags for journal replay.
type JournalReplayOptions struct {
	*JournalOptions
	Session string
	Output  string
}

// JournalReplayResult is the list rebuilt from a session.
type JournalReplayResult struct {
	Session      string           `json:"session"`
	Edits        int              `json:"edits"`
	Instructions []ir.Instruction `json:"instructions"`
	Hash         string           `json:"hash"`
	Output       string           `json:"output,omitempty"`
}

// NewJournalCommand creates the journal command group.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the edit journal",
		Long: `Inspect the SQLite journal that "layercast run --journal" records every
instruction list edit into.`,
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to the journal database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(newJournalSessionsCommand(opts))
	cmd.AddCommand(newJournalReplayCommand(opts))
	return cmd
}

func newJournalSessionsCommand(opts *JournalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		Example: `  layercast journal sessions --db ./layercast.db
  layercast journal sessions --db ./layercast.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournalSessions(opts, cmd)
		},
	}
}

func newJournalReplayCommand(journalOpts *JournalOptions) *cobra.Command {
	opts := &JournalReplayOptions{JournalOptions: journalOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Rebuild an instruction list from a session",
		Long: `Apply a session's journaled edits, in order, to an empty list and print
the result in .inli form, or write it to --output.

Exit codes:
  0 - List rebuilt
  1 - Edits do not apply cleanly
  2 - Command error (journal or session not found)

Examples:
  layercast journal replay --db ./layercast.db
  layercast journal replay --db ./layercast.db --session 0190... --output show.inli`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournalReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (default: latest)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the list to this .inli file")
	return cmd
}

// openJournal opens an existing journal. Reading commands never create one.
func openJournal(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("journal %s: %w", path, err)
	}
	return store.Open(path)
}

func runJournalSessions(opts *JournalOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	st, err := openJournal(opts.Database)
	if err != nil {
		_ = out.Error(CodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	sessions, err := st.Sessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	return out.Result(sessions, func(w io.Writer) error {
		if len(sessions) == 0 {
			_, err := fmt.Fprintln(w, "No sessions found in journal.")
			return err
		}
		for _, s := range sessions {
			label := s.Label
			if label == "" {
				label = "-"
			}
			fmt.Fprintf(w, "%s  %s  %4d edits  %s\n", s.ID, s.StartedAt.Format(time.RFC3339), s.Edits, label)
		}
		return nil
	})
}

func runJournalReplay(opts *JournalReplayOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	st, err := openJournal(opts.Database)
	if err != nil {
		_ = out.Error(CodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	session := opts.Session
	if session == "" {
		session, err = st.LatestSession(ctx)
		if err != nil {
			_ = out.Error(CodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "no session to replay", err)
		}
	}
	out.VerboseLog("replaying session %s", session)

	edits, err := st.Edits(ctx, session)
	if err != nil {
		_ = out.Error(CodeJournal, err.Error(), map[string]string{"session": session})
		code := ExitFailure
		if errors.Is(err, store.ErrSessionNotFound) {
			code = ExitCommandError
		}
		return WrapExitError(code, "failed to read session", err)
	}

	list, err := instructions.Replay(edits)
	if err != nil {
		_ = out.Error(CodeJournal, err.Error(), map[string]string{"session": session})
		return WrapExitError(ExitFailure, "replay failed", err)
	}
	if list == nil {
		list = instructions.List{}
	}

	result := JournalReplayResult{
		Session:      session,
		Edits:        len(edits),
		Instructions: list,
		Hash:         ir.MustListHash(list),
		Output:       opts.Output,
	}
	if opts.Output != "" {
		if err := instructions.SaveFile(opts.Output, list); err != nil {
			return WrapExitError(ExitCommandError, "failed to write list", err)
		}
	}

	return out.Result(result, func(w io.Writer) error {
		if opts.Output != "" {
			_, err := fmt.Fprintf(w, "Replayed %d edits from %s into %s (%d instructions)\n",
				len(edits), session, opts.Output, len(list))
			return err
		}
		return instructions.Encode(w, list)
	})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
