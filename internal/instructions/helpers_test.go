package instructions

import (
	"strings"

	"github.com/roach88/layercast/internal/ir"
)

func inst(command string, flags ...ir.Flag) ir.Instruction {
	return ir.Instruction{Tokens: strings.Fields(command), Flags: ir.NewFlagSet(flags...)}
}

var (
	layerA    = inst("layer a camera", ir.FlagLayer, ir.FlagCamera)
	layerB    = inst("layer b image logo.png", ir.FlagLayer, ir.FlagImage)
	drawA     = inst("draw a", ir.FlagDraw)
	drawB     = inst("draw b", ir.FlagDraw)
	rotateA   = inst("process a rotate 45", ir.FlagProcess, ir.FlagRotate)
	overlayAB = inst("process a overlay b", ir.FlagProcess, ir.FlagOverlay)
)

type catalogSet map[string]bool

func (c catalogSet) Exists(name string) bool { return c[name] }
