package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes keep hashes of different record kinds apart.
const (
	DomainInstruction = "layercast/instruction/v1"
	DomainList        = "layercast/list/v1"
	DomainEdit        = "layercast/edit/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// InstructionHash is the content address of a single instruction.
func InstructionHash(inst Instruction) (string, error) {
	canonical, err := MarshalCanonical(inst)
	if err != nil {
		return "", fmt.Errorf("instruction hash: %w", err)
	}
	return hashWithDomain(DomainInstruction, canonical), nil
}

// EditHash is the content address of a journaled edit, sequence number
// included.
func EditHash(e Edit) (string, error) {
	canonical, err := MarshalCanonical(e)
	if err != nil {
		return "", fmt.Errorf("edit hash: %w", err)
	}
	return hashWithDomain(DomainEdit, canonical), nil
}

// ListHash is the content address of an ordered instruction list. Two
// lists hash equal only when they hold the same instructions in the same
// order.
func ListHash(list []Instruction) (string, error) {
	if list == nil {
		list = []Instruction{}
	}
	canonical, err := MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("list hash: %w", err)
	}
	return hashWithDomain(DomainList, canonical), nil
}

// MustListHash is like ListHash but panics on error.
// Instructions only hold strings and ints, so it cannot fail in practice.
func MustListHash(list []Instruction) string {
	h, err := ListHash(list)
	if err != nil {
		panic(err)
	}
	return h
}
