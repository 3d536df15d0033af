package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/layercast/internal/grammar"
	"github.com/roach88/layercast/internal/ir"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Grammar string
}

// ResolveResult is the outcome of resolving one command.
type ResolveResult struct {
	Tokens []string   `json:"tokens"`
	Flags  ir.FlagSet `json:"flags"`
	Role   string     `json:"role"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve -- TOKENS...",
		Short: "Resolve a console command to its flags",
		Long: `Resolve a console command against a grammar and print the flag set the
dispatcher would act on.

Examples:
  layercast resolve -- push layer a camera
  layercast resolve --grammar ./console.grammar -- process a rotate 45`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Grammar, "grammar", "", "grammar file (default: built-in)")
	return cmd
}

func runResolve(opts *ResolveOptions, tokens []string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	g, err := loadGrammar(opts.Grammar)
	if err != nil {
		_ = out.Error(CodeGrammar, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load grammar", err)
	}
	out.VerboseLog("grammar: %s", g.Source())

	res, err := g.Resolve(tokens)
	if err != nil {
		details := map[string]any{"tokens": tokens}
		switch e := err.(type) {
		case *grammar.NotRecognizedError:
			details["position"] = e.Position
			details["expected"] = e.Expected
		case *grammar.TooFewArgumentsError:
			details["expected"] = e.Expected
		}
		_ = out.Error(CodeResolve, err.Error(), details)
		return WrapExitError(ExitFailure, "command does not resolve", err)
	}

	inst := ir.Instruction{Tokens: tokens, Flags: res.Flags}
	result := ResolveResult{Tokens: tokens, Flags: res.Flags, Role: inst.Role().String()}
	return out.Result(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s\nflags: %s\nrole: %s\n", strings.Join(tokens, " "), result.Flags, result.Role)
		return err
	})
}
