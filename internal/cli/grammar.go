package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/layercast/internal/grammar"
)

// GrammarCheckResult is the JSON form of a successful check.
type GrammarCheckResult struct {
	Source string `json:"source"`
	Nodes  int    `json:"nodes"`
	Tree   string `json:"tree"`
}

// NewGrammarCommand creates the grammar command group.
func NewGrammarCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grammar",
		Short: "Inspect command grammars",
	}
	cmd.AddCommand(newGrammarCheckCommand(rootOpts))
	return cmd
}

func newGrammarCheckCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Compile a grammar and print its tree",
		Long: `Compile a grammar description and print the resulting command tree.
Without a file the built-in grammar is checked.

Exit codes:
  0 - Grammar compiles
  2 - Grammar has errors or cannot be read

Examples:
  layercast grammar check
  layercast grammar check ./console.grammar --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runGrammarCheck(opts, path, cmd)
		},
	}
}

func runGrammarCheck(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	g, err := loadGrammar(path)
	if err != nil {
		var ce *grammar.CompileError
		if errors.As(err, &ce) {
			_ = out.Error(CodeGrammar, ce.Error(), ce)
		} else {
			_ = out.Error(CodeGrammar, err.Error(), nil)
		}
		return WrapExitError(ExitCommandError, "grammar check failed", err)
	}

	var tree strings.Builder
	if err := g.Dump(&tree); err != nil {
		return WrapExitError(ExitFailure, "dump grammar", err)
	}
	result := GrammarCheckResult{Source: g.Source(), Nodes: g.Count(), Tree: tree.String()}
	return out.Result(result, func(w io.Writer) error {
		if _, err := io.WriteString(w, result.Tree); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "%s: ok (%d nodes)\n", result.Source, result.Nodes)
		return err
	})
}

// loadGrammar compiles path, or returns the built-in grammar when path is
// empty.
func loadGrammar(path string) (*grammar.Grammar, error) {
	if path == "" {
		return grammar.Default(), nil
	}
	return grammar.CompileFile(path)
}
