package grammar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/layercast/internal/ir"
)

func TestResolveLayerAndDrawExample(t *testing.T) {
	g := compile(t, "layer NAME camera /201\ndraw NAME /22\n")

	// NAME is a literal here, so the operator types it verbatim.
	res, err := g.Resolve([]string{"layer", "NAME", "camera"})
	require.NoError(t, err)
	assert.True(t, res.Flags.Has(ir.FlagCamera))

	g = compile(t, "layer STR camera /201\ndraw STR /22\n")

	res, err = g.Resolve([]string{"layer", "a", "camera"})
	require.NoError(t, err)
	assert.Equal(t, ir.NewFlagSet(ir.FlagCamera), res.Flags)

	res, err = g.Resolve([]string{"draw", "a"})
	require.NoError(t, err)
	assert.Equal(t, ir.NewFlagSet(ir.FlagDraw), res.Flags)
}

func TestResolvePrecedence(t *testing.T) {
	g := compile(t, `
x 7 /1
x INT /2
x FLT /3
x STR /4
y STR_R /5
y FLT /6
`)

	tests := []struct {
		tokens []string
		want   ir.Flag
	}{
		{[]string{"x", "7"}, 1},
		{[]string{"x", "8"}, 2},
		{[]string{"x", "-8"}, 2},
		{[]string{"x", "8.5"}, 3},
		{[]string{"x", "1e3"}, 3},
		{[]string{"x", "NaN"}, 4},
		{[]string{"x", "hello"}, 4},
		{[]string{"y", "2.5"}, 6},
		{[]string{"y", "hello", "world"}, 5},
	}

	for _, tt := range tests {
		res, err := g.Resolve(tt.tokens)
		require.NoError(t, err, "tokens %v", tt.tokens)
		assert.True(t, res.Flags.Has(tt.want), "tokens %v: got %v, want %d", tt.tokens, res.Flags, tt.want)
	}
}

func TestResolveStringRestTerminates(t *testing.T) {
	g := compile(t, "say /33 STR_R\n")

	res, err := g.Resolve([]string{"say", "hello", "big", "world"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rest)
	assert.Equal(t, ir.NewFlagSet(ir.FlagText), res.Flags)

	res, err = g.Resolve([]string{"say"})
	require.NoError(t, err, "a pending STR_R accepts an empty rest")
	assert.Equal(t, 1, res.Rest)
}

func TestResolveNotRecognized(t *testing.T) {
	g := compile(t, "display monitor\ndisplay vive\n")

	_, err := g.Resolve([]string{"display", "tv"})
	require.Error(t, err)
	var nr *NotRecognizedError
	require.True(t, errors.As(err, &nr))
	assert.Equal(t, "tv", nr.Token)
	assert.Equal(t, 1, nr.Position)
	assert.Equal(t, []string{"monitor", "vive"}, nr.Expected)
	assert.True(t, IsNotRecognized(err))
}

func TestResolveTooManyArguments(t *testing.T) {
	g := compile(t, "help /1\n")

	_, err := g.Resolve([]string{"help", "me"})
	assert.True(t, IsNotRecognized(err))
}

func TestResolveTooFewArguments(t *testing.T) {
	g := compile(t, "resize dimensions INT INT\nresize scale FLT\n")

	_, err := g.Resolve([]string{"resize"})
	require.Error(t, err)
	var tf *TooFewArgumentsError
	require.True(t, errors.As(err, &tf))
	assert.Equal(t, []string{"dimensions", "scale"}, tf.Expected)
	assert.Contains(t, err.Error(), "dimensions | scale")

	_, err = g.Resolve([]string{"resize", "dimensions", "10"})
	require.True(t, errors.As(err, &tf))
	assert.Equal(t, []string{"<int>"}, tf.Expected)
	assert.True(t, IsTooFewArguments(err))
}

func TestResolveEmptyGrammarRecognizesNothing(t *testing.T) {
	_, err := Empty().Resolve([]string{"help"})
	assert.True(t, IsNotRecognized(err))
}

func TestResolveIsDeterministic(t *testing.T) {
	g := Default()
	inputs := [][]string{
		{"push", "2", "process", "cam", "alpha", "circular", "10", "100"},
		{"display", "monitor"},
		{"nonsense"},
	}
	for _, in := range inputs {
		first, firstErr := g.Resolve(in)
		for i := 0; i < 20; i++ {
			again, err := g.Resolve(in)
			assert.Equal(t, first, again)
			assert.Equal(t, firstErr, err)
		}
	}
}

func TestDefaultGrammarCommands(t *testing.T) {
	g := Default()
	f := ir.NewFlagSet

	tests := []struct {
		line string
		want ir.FlagSet
	}{
		{"exit", f(ir.FlagExit)},
		{"help", f(ir.FlagHelp)},
		{"clear", f(ir.FlagClear)},
		{"save show", f(ir.FlagSave)},
		{"load show.inli", f(ir.FlagLoad)},
		{"display monitor true", f(ir.FlagDisplay, ir.FlagDisplayMonitor, ir.FlagTrue)},
		{"display vive false", f(ir.FlagDisplay, ir.FlagDisplayVive, ir.FlagFalse)},
		{"print instructions", f(ir.FlagPrint, ir.FlagPrintInstructions)},
		{"print layers", f(ir.FlagPrint, ir.FlagPrintLayers)},
		{"history", f(ir.FlagHistory)},
		{"delete 3", f(ir.FlagDelete)},
		{"push layer cam camera", f(ir.FlagPush, ir.FlagLayer, ir.FlagCamera)},
		{"push 0 layer logo image logo.png", f(ir.FlagPush, ir.FlagPushIndex, ir.FlagLayer, ir.FlagImage)},
		{"edit 1 draw cam", f(ir.FlagEdit, ir.FlagDraw)},
		{"push process cam resize dimensions 640 480", f(ir.FlagPush, ir.FlagProcess, ir.FlagResize, ir.FlagResizeDims)},
		{"push process cam resize scale 0.5", f(ir.FlagPush, ir.FlagProcess, ir.FlagResize, ir.FlagResizeScale)},
		{"push process cam rotate 45", f(ir.FlagPush, ir.FlagProcess, ir.FlagRotate)},
		{"push process cam alpha flat 0.3", f(ir.FlagPush, ir.FlagProcess, ir.FlagAlpha, ir.FlagAlphaFlat)},
		{"push process cam alpha circular 10 100", f(ir.FlagPush, ir.FlagProcess, ir.FlagAlpha, ir.FlagAlphaCircular)},
		{"push process cam alpha circular inverted 10 100", f(ir.FlagPush, ir.FlagProcess, ir.FlagAlpha, ir.FlagAlphaCircular, ir.FlagAlphaInverted)},
		{"push process cam text hello there world", f(ir.FlagPush, ir.FlagProcess, ir.FlagText)},
		{"push process cam overlay logo", f(ir.FlagPush, ir.FlagProcess, ir.FlagOverlay)},
		{"push process cam place logo 10 -20", f(ir.FlagPush, ir.FlagProcess, ir.FlagOverlay, ir.FlagOverlayAt)},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			res, err := g.Resolve(splitWords(tt.line))
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Flags)
		})
	}
}

func TestDefaultGrammarRejects(t *testing.T) {
	g := Default()

	for _, line := range []string{"push", "print", "display vive", "push process cam resize", "delete x", "layer a camera"} {
		_, err := g.Resolve(splitWords(line))
		assert.Error(t, err, line)
	}
}

func splitWords(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ' ' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
