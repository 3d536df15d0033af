package ir

import (
	"slices"
	"strconv"
	"strings"
)

// Flag is a semantic tag attached to a grammar node. The values are part of
// the .inli file format and must not be renumbered.
type Flag int

// Action flags select what the console does with a resolved line.
const (
	FlagExit    Flag = 0
	FlagHelp    Flag = 1
	FlagClear   Flag = 2
	FlagLoad    Flag = 3
	FlagSave    Flag = 4
	FlagDisplay Flag = 5
	FlagPrint   Flag = 6
	FlagHistory Flag = 7

	FlagDisplayMonitor Flag = 51
	FlagDisplayVive    Flag = 52
	FlagTrue           Flag = 53
	FlagFalse          Flag = 54

	FlagPrintInstructions Flag = 61
	FlagPrintLayers       Flag = 62

	FlagPush      Flag = 10
	FlagPushIndex Flag = 11
	FlagEdit      Flag = 12
	FlagDelete    Flag = 13
)

// Pipeline flags describe what a stored instruction does per frame.
const (
	FlagLayer   Flag = 20
	FlagProcess Flag = 21
	FlagDraw    Flag = 22

	FlagResize  Flag = 30
	FlagRotate  Flag = 31
	FlagAlpha   Flag = 32
	FlagText    Flag = 33
	FlagOverlay Flag = 34

	FlagCamera Flag = 201
	FlagImage  Flag = 202

	FlagResizeDims    Flag = 300
	FlagResizeScale   Flag = 301
	FlagAlphaFlat     Flag = 320
	FlagAlphaCircular Flag = 321
	FlagAlphaInverted Flag = 322
	FlagOverlayAt     Flag = 340
)

func (f Flag) String() string {
	return strconv.Itoa(int(f))
}

// ParseFlag parses a decimal flag identifier.
func ParseFlag(s string) (Flag, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return Flag(n), nil
}

// FlagSet is a sorted, duplicate-free set of flags.
// The zero value is an empty set.
type FlagSet []Flag

// NewFlagSet builds a set from flags in any order.
func NewFlagSet(flags ...Flag) FlagSet {
	var fs FlagSet
	for _, f := range flags {
		fs = fs.With(f)
	}
	return fs
}

// Has reports whether f is in the set.
func (fs FlagSet) Has(f Flag) bool {
	_, ok := slices.BinarySearch(fs, f)
	return ok
}

// HasAny reports whether any of flags is in the set.
func (fs FlagSet) HasAny(flags ...Flag) bool {
	for _, f := range flags {
		if fs.Has(f) {
			return true
		}
	}
	return false
}

// With returns a set that also contains f. The receiver is not modified.
func (fs FlagSet) With(f Flag) FlagSet {
	i, ok := slices.BinarySearch(fs, f)
	if ok {
		return fs
	}
	out := make(FlagSet, 0, len(fs)+1)
	out = append(out, fs[:i]...)
	out = append(out, f)
	return append(out, fs[i:]...)
}

// Without returns a copy of the set minus the given flags.
func (fs FlagSet) Without(flags ...Flag) FlagSet {
	out := make(FlagSet, 0, len(fs))
	for _, f := range fs {
		if !slices.Contains(flags, f) {
			out = append(out, f)
		}
	}
	return out
}

// Equal reports whether both sets hold the same flags.
func (fs FlagSet) Equal(other FlagSet) bool {
	return slices.Equal(fs, other)
}

// String renders the set the way .inli files store it: space-joined ints.
func (fs FlagSet) String() string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.String()
	}
	return strings.Join(parts, " ")
}
