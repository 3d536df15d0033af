package instructions

import "github.com/roach88/layercast/internal/ir"

// ImageChecker reports whether the image catalog holds a file.
type ImageChecker interface {
	Exists(name string) bool
}

// Reason explains why refactor removed an instruction.
type Reason string

const (
	ReasonUndefinedLayer   Reason = "layer is not defined earlier"
	ReasonUndefinedOverlay Reason = "overlaid layer is not defined earlier"
	ReasonMissingImage     Reason = "image is not in the catalog"
)

// Pruned records one instruction removed by refactor. Index is its
// position at the moment of removal, after earlier removals.
type Pruned struct {
	Index       int
	Instruction ir.Instruction
	Reason      Reason
}

// Report is the outcome of a refactor pass.
type Report struct {
	Pruned []Pruned

	// Unrecognized holds indexes (in the refactored list) of instructions
	// with no pipeline role. They are kept but do nothing when rendered.
	Unrecognized []int
}

// Refactor removes every instruction that cannot be evaluated in order:
// process and draw steps whose layer is not defined strictly earlier,
// overlays whose second layer is not defined earlier, and image layers
// whose file the catalog lacks (when images is non-nil).
//
// The pass is quadratic in list length and idempotent.
func Refactor(list List, images ImageChecker) (List, Report) {
	var report Report
	out := make(List, 0, len(list))
	for _, inst := range list {
		reason, keep := check(out, inst, images)
		if !keep {
			report.Pruned = append(report.Pruned, Pruned{Index: len(out), Instruction: inst, Reason: reason})
			continue
		}
		if inst.Role() == ir.RoleNone {
			report.Unrecognized = append(report.Unrecognized, len(out))
		}
		out = append(out, inst)
	}
	return out, report
}

func check(earlier List, inst ir.Instruction, images ImageChecker) (Reason, bool) {
	switch inst.Role() {
	case ir.RoleDefine:
		if inst.Flags.Has(ir.FlagImage) && images != nil && !images.Exists(imageFile(inst)) {
			return ReasonMissingImage, false
		}
	case ir.RoleProcess:
		if !defined(earlier, inst.Layer()) {
			return ReasonUndefinedLayer, false
		}
		if inst.Flags.Has(ir.FlagOverlay) && !defined(earlier, inst.Token(3)) {
			return ReasonUndefinedOverlay, false
		}
	case ir.RoleDraw:
		if !defined(earlier, inst.Layer()) {
			return ReasonUndefinedLayer, false
		}
	}
	return "", true
}

func defined(earlier List, name string) bool {
	for _, inst := range earlier {
		if inst.Role() == ir.RoleDefine && inst.Layer() == name {
			return true
		}
	}
	return false
}

// imageFile is the last token of "layer NAME image FILE".
func imageFile(inst ir.Instruction) string {
	return inst.Token(len(inst.Tokens) - 1)
}
