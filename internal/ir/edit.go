package ir

// Op names a journaled mutation of the instruction list.
type Op string

const (
	OpPush   Op = "push"
	OpEdit   Op = "edit"
	OpDelete Op = "delete"
	OpClear  Op = "clear"
	OpLoad   Op = "load"
	OpPrune  Op = "prune"
)

// Edit is one successful mutation, in the order it was applied.
//
// Index is meaningful for push, edit, delete and prune. Instruction is set
// for push and edit. Load carries the whole replacement list in List.
type Edit struct {
	Seq         int64         `json:"seq"`
	Op          Op            `json:"op"`
	Index       int           `json:"index"`
	Instruction Instruction   `json:"instruction"`
	List        []Instruction `json:"list,omitempty"`
}
