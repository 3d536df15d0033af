package instructions

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/layercast/internal/ir"
)

// ErrIndexOutOfRange is returned by edits whose index falls outside the
// list. The list is left unchanged.
var ErrIndexOutOfRange = errors.New("index out of range")

// List is an ordered instruction list. Order is evaluation order.
type List []ir.Instruction

// Clone returns a deep copy.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, inst := range l {
		out[i] = inst.Clone()
	}
	return out
}

// Equal compares two lists instruction by instruction.
func (l List) Equal(other List) bool {
	return slices.EqualFunc(l, other, ir.Instruction.Equal)
}

// Insert places inst at index, 0 <= index <= len(l).
func (l List) Insert(index int, inst ir.Instruction) (List, error) {
	if index < 0 || index > len(l) {
		return l, fmt.Errorf("push at %d (list has %d): %w", index, len(l), ErrIndexOutOfRange)
	}
	return slices.Insert(l, index, inst), nil
}

// Replace overwrites the instruction at index, 0 <= index < len(l).
func (l List) Replace(index int, inst ir.Instruction) (List, error) {
	if index < 0 || index >= len(l) {
		return l, fmt.Errorf("edit %d (list has %d): %w", index, len(l), ErrIndexOutOfRange)
	}
	l[index] = inst
	return l, nil
}

// Remove deletes the instruction at index, 0 <= index < len(l).
func (l List) Remove(index int) (List, error) {
	if index < 0 || index >= len(l) {
		return l, fmt.Errorf("delete %d (list has %d): %w", index, len(l), ErrIndexOutOfRange)
	}
	return slices.Delete(l, index, index+1), nil
}

// Layers returns the names of defined layers in definition order.
// A name defined twice is listed once.
func (l List) Layers() []string {
	var names []string
	for _, inst := range l {
		if inst.Role() == ir.RoleDefine && !slices.Contains(names, inst.Layer()) {
			names = append(names, inst.Layer())
		}
	}
	return names
}

// Strip removes the console routing words from a resolved push or edit
// command, leaving the instruction itself: "push [INDEX]" or "edit INDEX"
// and flags 10, 11 and 12.
func Strip(tokens []string, flags ir.FlagSet) ir.Instruction {
	skip := 0
	switch {
	case flags.Has(ir.FlagEdit):
		skip = 2
	case flags.Has(ir.FlagPush) && flags.Has(ir.FlagPushIndex):
		skip = 2
	case flags.Has(ir.FlagPush):
		skip = 1
	}
	skip = min(skip, len(tokens))
	return ir.Instruction{
		Tokens: slices.Clone(tokens[skip:]),
		Flags:  flags.Without(ir.FlagPush, ir.FlagPushIndex, ir.FlagEdit),
	}
}
