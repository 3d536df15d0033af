package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionHashDeterminism(t *testing.T) {
	inst := Instruction{Tokens: []string{"draw", "a"}, Flags: NewFlagSet(FlagDraw)}

	h1, err := InstructionHash(inst)
	require.NoError(t, err)
	h2, err := InstructionHash(inst.Clone())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestInstructionHashChangesWithFlags(t *testing.T) {
	a := Instruction{Tokens: []string{"draw", "a"}, Flags: NewFlagSet(FlagDraw)}
	b := Instruction{Tokens: []string{"draw", "a"}, Flags: NewFlagSet(FlagDraw, FlagProcess)}

	assert.NotEqual(t, mustInstructionHash(t, a), mustInstructionHash(t, b))
}

func TestListHashIsOrderSensitive(t *testing.T) {
	a := Instruction{Tokens: []string{"layer", "a", "camera"}, Flags: NewFlagSet(FlagLayer, FlagCamera)}
	b := Instruction{Tokens: []string{"draw", "a"}, Flags: NewFlagSet(FlagDraw)}

	assert.NotEqual(t, MustListHash([]Instruction{a, b}), MustListHash([]Instruction{b, a}))
	assert.Equal(t, MustListHash(nil), MustListHash([]Instruction{}))
}

func TestDomainSeparation(t *testing.T) {
	data := []byte(`[]`)
	assert.NotEqual(t, hashWithDomain(DomainInstruction, data), hashWithDomain(DomainList, data))
}

func mustInstructionHash(t *testing.T, inst Instruction) string {
	t.Helper()
	h, err := InstructionHash(inst)
	require.NoError(t, err)
	return h
}

func TestEditHashCoversSeq(t *testing.T) {
	inst := Instruction{Tokens: []string{"draw", "a"}, Flags: NewFlagSet(FlagDraw)}
	e1 := Edit{Seq: 1, Op: OpPush, Index: 0, Instruction: inst}
	e2 := e1
	e2.Seq = 2

	h1, err := EditHash(e1)
	require.NoError(t, err)
	h2, err := EditHash(e2)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	again, err := EditHash(Edit{Seq: 1, Op: OpPush, Index: 0, Instruction: inst.Clone()})
	require.NoError(t, err)
	assert.Equal(t, h1, again)
}
