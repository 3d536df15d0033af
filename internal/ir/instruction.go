package ir

import (
	"slices"
	"strings"
)

// Instruction is a stored pipeline step: the command tokens the operator
// typed (minus routing tokens) and the flags the grammar resolved.
type Instruction struct {
	Tokens []string `json:"tokens"`
	Flags  FlagSet  `json:"flags"`
}

// Role classifies an instruction by what it does to a frame.
type Role int

const (
	RoleNone Role = iota
	RoleDefine
	RoleProcess
	RoleDraw
)

func (r Role) String() string {
	switch r {
	case RoleDefine:
		return "define"
	case RoleProcess:
		return "process"
	case RoleDraw:
		return "draw"
	default:
		return "none"
	}
}

var (
	defineFlags  = []Flag{FlagLayer, FlagCamera, FlagImage}
	processFlags = []Flag{
		FlagProcess,
		FlagResize, FlagRotate, FlagAlpha, FlagText, FlagOverlay,
		FlagResizeDims, FlagResizeScale,
		FlagAlphaFlat, FlagAlphaCircular, FlagAlphaInverted,
		FlagOverlayAt,
	}
)

// Role derives the role from the role flag or any of its sub-flags, so a
// grammar that only tags "layer NAME camera /201" still defines a layer.
func (inst Instruction) Role() Role {
	switch {
	case inst.Flags.HasAny(defineFlags...):
		return RoleDefine
	case inst.Flags.HasAny(processFlags...):
		return RoleProcess
	case inst.Flags.Has(FlagDraw):
		return RoleDraw
	default:
		return RoleNone
	}
}

// Layer returns the layer name the instruction defines or references.
func (inst Instruction) Layer() string {
	return inst.Token(1)
}

// Token returns token i or "" when the instruction is shorter.
func (inst Instruction) Token(i int) string {
	if i < 0 || i >= len(inst.Tokens) {
		return ""
	}
	return inst.Tokens[i]
}

// Clone returns a deep copy.
func (inst Instruction) Clone() Instruction {
	return Instruction{
		Tokens: slices.Clone(inst.Tokens),
		Flags:  slices.Clone(inst.Flags),
	}
}

// Equal compares tokens and flags.
func (inst Instruction) Equal(other Instruction) bool {
	return slices.Equal(inst.Tokens, other.Tokens) && inst.Flags.Equal(other.Flags)
}

func (inst Instruction) String() string {
	return strings.Join(inst.Tokens, " ")
}
