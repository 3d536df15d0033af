package instructions

import (
	"fmt"

	"github.com/roach88/layercast/internal/ir"
)

// Replay rebuilds a list by applying journaled edits in order to an empty
// list. Prune edits are applied as recorded rather than recomputed, so the
// result does not depend on the current image catalog.
func Replay(edits []ir.Edit) (List, error) {
	var (
		list List
		err  error
	)
	for _, e := range edits {
		switch e.Op {
		case ir.OpPush:
			list, err = list.Insert(e.Index, e.Instruction.Clone())
		case ir.OpEdit:
			list, err = list.Replace(e.Index, e.Instruction.Clone())
		case ir.OpDelete, ir.OpPrune:
			list, err = list.Remove(e.Index)
		case ir.OpClear:
			list = nil
		case ir.OpLoad:
			list = List(e.List).Clone()
		default:
			err = fmt.Errorf("unknown op %q", e.Op)
		}
		if err != nil {
			return nil, fmt.Errorf("replay seq %d: %w", e.Seq, err)
		}
	}
	return list, nil
}
