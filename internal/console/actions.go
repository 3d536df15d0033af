package console

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/layercast/internal/instructions"
	"github.com/roach88/layercast/internal/ir"
)

var errNoOutputs = errors.New("display routing is not available")

// dispatch selects the action from the resolved flags. Actions that read
// or change the list or the output routing run inside a store update.
func (c *Console) dispatch(ctx context.Context, tokens []string, flags ir.FlagSet) bool {
	switch {
	case flags.Has(ir.FlagExit):
		c.println("Exiting program. Goodbye...")
		if c.exit != nil {
			c.exit()
		}
		return true
	case flags.Has(ir.FlagHelp):
		fmt.Fprint(c.out, helpText)
	case flags.Has(ir.FlagHistory):
		c.printHistory(ctx)
	case flags.Has(ir.FlagClear):
		c.update(ctx, func(tx *instructions.Tx) error {
			tx.Clear()
			return nil
		})
		c.successf("Instructions cleared")
	case flags.Has(ir.FlagLoad):
		c.load(ctx, tokens[1])
	case flags.Has(ir.FlagSave):
		c.save(ctx, tokens[1])
	case flags.Has(ir.FlagDisplay):
		c.display(ctx, flags)
	case flags.Has(ir.FlagPrintInstructions):
		c.update(ctx, func(tx *instructions.Tx) error {
			c.printInstructions(tx.List())
			return nil
		})
	case flags.Has(ir.FlagPrintLayers):
		c.update(ctx, func(tx *instructions.Tx) error {
			c.printLayers(tx.List().Layers())
			return nil
		})
	case flags.Has(ir.FlagPush), flags.Has(ir.FlagEdit):
		c.pushOrEdit(ctx, tokens, flags)
	case flags.Has(ir.FlagDelete):
		index, ok := c.index(tokens[1])
		if !ok {
			return false
		}
		c.mutate(ctx, func(tx *instructions.Tx) (instructions.Report, error) {
			return tx.Delete(index)
		})
	default:
		inst := ir.Instruction{Tokens: slices.Clone(tokens), Flags: flags}
		if inst.Role() == ir.RoleNone {
			c.errorf("Error: Unrecognized instruction: %s", strings.Join(tokens, " "))
			return false
		}
		// A bare instruction is pushed to the end.
		c.mutate(ctx, func(tx *instructions.Tx) (instructions.Report, error) {
			return tx.Push(-1, inst)
		})
	}
	return false
}

func (c *Console) pushOrEdit(ctx context.Context, tokens []string, flags ir.FlagSet) {
	index := -1
	if flags.Has(ir.FlagEdit) || flags.Has(ir.FlagPushIndex) {
		i, ok := c.index(tokens[1])
		if !ok {
			return
		}
		index = i
	}
	inst := instructions.Strip(tokens, flags)
	c.mutate(ctx, func(tx *instructions.Tx) (instructions.Report, error) {
		if flags.Has(ir.FlagEdit) {
			return tx.Edit(index, inst)
		}
		return tx.Push(index, inst)
	})
}

func (c *Console) index(token string) (int, bool) {
	i, err := strconv.Atoi(token)
	if err != nil {
		c.errorf("Invalid index")
		return 0, false
	}
	// Push treats a negative index as append, so reject it here.
	if i < 0 {
		c.errorf("Index out of range")
		return 0, false
	}
	return i, true
}

// mutate runs one list edit and announces what refactor pruned.
func (c *Console) mutate(ctx context.Context, fn func(tx *instructions.Tx) (instructions.Report, error)) {
	var report instructions.Report
	err := c.store.Update(ctx, func(tx *instructions.Tx) error {
		r, err := fn(tx)
		report = r
		return err
	})
	if err != nil {
		c.fail(err)
		return
	}
	c.announce(report)
}

func (c *Console) update(ctx context.Context, fn func(tx *instructions.Tx) error) {
	if err := c.store.Update(ctx, fn); err != nil {
		c.fail(err)
	}
}

func (c *Console) fail(err error) {
	switch {
	case errors.Is(err, instructions.ErrIndexOutOfRange):
		c.errorf("Index out of range")
	default:
		c.errorf("Error: %s", err)
	}
	c.logger.Debug("command failed", "error", err)
}

func (c *Console) announce(report instructions.Report) {
	for _, p := range report.Pruned {
		c.noticef("Irrelevant instruction removed: %s (%s)", p.Instruction, p.Reason)
	}
}

// Load replaces the list with the saved file name, reporting to the
// console writer exactly as the load command does.
func (c *Console) Load(ctx context.Context, name string) {
	c.load(ctx, name)
}

func (c *Console) load(ctx context.Context, name string) {
	path := instructions.Path(c.dir, name)
	list, err := instructions.LoadFile(path)
	if err != nil {
		c.errorf("Error: %s", err)
		c.logger.Warn("load failed", "path", path, "error", err)
		return
	}
	var report instructions.Report
	var n int
	c.update(ctx, func(tx *instructions.Tx) error {
		report = tx.Load(list)
		n = tx.Len()
		return nil
	})
	c.announce(report)
	for _, i := range report.Unrecognized {
		c.noticef("Instruction %d has no role and is ignored when rendering", i)
	}
	c.successf("Loaded %d instructions from %s", n, path)
}

func (c *Console) save(ctx context.Context, name string) {
	path := instructions.Path(c.dir, name)
	var n int
	err := c.store.Update(ctx, func(tx *instructions.Tx) error {
		n = tx.Len()
		return instructions.SaveFile(path, tx.List())
	})
	if err != nil {
		c.fail(err)
		return
	}
	c.successf("Saved %d instructions to %s", n, path)
}

func (c *Console) display(ctx context.Context, flags ir.FlagSet) {
	if c.outputs == nil {
		c.fail(errNoOutputs)
		return
	}
	on := flags.Has(ir.FlagTrue)
	name := "monitor"
	if flags.Has(ir.FlagDisplayVive) {
		name = "vive"
	}
	err := c.store.Update(ctx, func(*instructions.Tx) error {
		if name == "vive" {
			return c.outputs.SetVive(on)
		}
		return c.outputs.SetMonitor(on)
	})
	if err != nil {
		c.fail(err)
		return
	}
	state := "disabled"
	if on {
		state = "enabled"
	}
	c.successf("%s output %s", name, state)
}

func (c *Console) printInstructions(list instructions.List) {
	c.println(c.styles.Title.Render("INSTRUCTIONS"))
	if len(list) == 0 {
		c.println(c.styles.Muted.Render("(empty)"))
		return
	}
	for i, inst := range list {
		c.println(c.styles.Index.Render(fmt.Sprintf("%d)", i)) + " " + inst.String())
	}
}

func (c *Console) printLayers(names []string) {
	c.println(c.styles.Title.Render("LAYERS"))
	if len(names) == 0 {
		c.println(c.styles.Muted.Render("(none)"))
		return
	}
	for _, name := range names {
		c.println("  " + name)
	}
}

func (c *Console) printHistory(ctx context.Context) {
	if c.history == nil {
		c.errorf("Error: no journal configured")
		return
	}
	edits, err := c.history.Edits(ctx)
	if err != nil {
		c.fail(err)
		return
	}
	c.println(c.styles.Title.Render("HISTORY"))
	if len(edits) == 0 {
		c.println(c.styles.Muted.Render("(empty)"))
		return
	}
	for _, e := range edits {
		c.println(c.styles.Index.Render(fmt.Sprintf("%d)", e.Seq)) + " " + FormatEdit(e))
	}
}

// FormatEdit renders a journaled edit on one line.
func FormatEdit(e ir.Edit) string {
	switch e.Op {
	case ir.OpPush, ir.OpEdit, ir.OpPrune:
		return fmt.Sprintf("%s %d %s", e.Op, e.Index, e.Instruction)
	case ir.OpDelete:
		return fmt.Sprintf("%s %d", e.Op, e.Index)
	case ir.OpLoad:
		return fmt.Sprintf("%s (%d instructions)", e.Op, len(e.List))
	default:
		return string(e.Op)
	}
}
