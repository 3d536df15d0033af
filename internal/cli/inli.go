package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/layercast/internal/catalog"
	"github.com/roach88/layercast/internal/instructions"
	"github.com/roach88/layercast/internal/ir"
)

// InliShowOptions holds flags for inli show.
type InliShowOptions struct {
	*RootOptions
	ImagesDir string
}

// InliEntry is one instruction of a shown file.
type InliEntry struct {
	Index  int        `json:"index"`
	Tokens []string   `json:"tokens"`
	Flags  ir.FlagSet `json:"flags"`
	Role   string     `json:"role"`
}

// InliPruned is an instruction refactor would remove on load.
type InliPruned struct {
	Index   int    `json:"index"`
	Command string `json:"command"`
	Reason  string `json:"reason"`
}

// InliShowResult is the decoded file plus what a load would prune.
type InliShowResult struct {
	Path         string       `json:"path"`
	Instructions []InliEntry  `json:"instructions"`
	Pruned       []InliPruned `json:"pruned"`
	Layers       []string     `json:"layers"`
	Hash         string       `json:"hash"`
}

// NewInliCommand creates the inli command group.
func NewInliCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inli",
		Short: "Inspect saved instruction files",
	}
	cmd.AddCommand(newInliShowCommand(rootOpts))
	return cmd
}

func newInliShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InliShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Decode an instruction file and report what loading it would prune",
		Long: `Decode an .inli file, print its instructions, and run the same refactor
pass the console runs on load. With --images, image layers whose file is not
in that directory are reported too.

Examples:
  layercast inli show instructions/show.inli
  layercast inli show show.inli --images ./images --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInliShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ImagesDir, "images", "", "image catalog directory to check image layers against")
	return cmd
}

func runInliShow(opts *InliShowOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	list, err := instructions.LoadFile(path)
	if err != nil {
		_ = out.Error(CodeInli, err.Error(), nil)
		return WrapExitError(ExitCommandError, "read instruction file", err)
	}

	var images instructions.ImageChecker
	if opts.ImagesDir != "" {
		cat, err := catalog.Open(opts.ImagesDir, nil)
		if err != nil {
			_ = out.Error(CodeInli, err.Error(), nil)
			return WrapExitError(ExitCommandError, "open image catalog", err)
		}
		images = cat
		out.VerboseLog("catalog: %d images", len(cat.Names()))
	}

	refactored, report := instructions.Refactor(list, images)
	hash, err := ir.ListHash(list)
	if err != nil {
		return WrapExitError(ExitFailure, "hash instruction list", err)
	}

	result := InliShowResult{
		Path:         path,
		Instructions: make([]InliEntry, 0, len(list)),
		Pruned:       make([]InliPruned, 0, len(report.Pruned)),
		Layers:       refactored.Layers(),
		Hash:         hash,
	}
	for i, inst := range list {
		result.Instructions = append(result.Instructions, InliEntry{
			Index:  i,
			Tokens: inst.Tokens,
			Flags:  inst.Flags,
			Role:   inst.Role().String(),
		})
	}
	for _, p := range report.Pruned {
		result.Pruned = append(result.Pruned, InliPruned{Index: p.Index, Command: p.Instruction.String(), Reason: string(p.Reason)})
	}
	if result.Layers == nil {
		result.Layers = []string{}
	}

	return out.Result(result, func(w io.Writer) error {
		return writeInliText(w, result)
	})
}

func writeInliText(w io.Writer, r InliShowResult) error {
	fmt.Fprintf(w, "%s (%d instructions)\n", r.Path, len(r.Instructions))
	for _, e := range r.Instructions {
		fmt.Fprintf(w, "%d) %-40s [%s] %s\n", e.Index, joinTokens(e.Tokens), e.Flags, e.Role)
	}
	if len(r.Pruned) == 0 {
		_, err := fmt.Fprintln(w, "refactor: nothing to prune")
		return err
	}
	fmt.Fprintf(w, "refactor would prune %d:\n", len(r.Pruned))
	for _, p := range r.Pruned {
		fmt.Fprintf(w, "  %s (%s)\n", p.Command, p.Reason)
	}
	return nil
}

func joinTokens(tokens []string) string {
	return ir.Instruction{Tokens: tokens}.String()
}
