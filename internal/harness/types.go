package harness

// Exchange is one console command and everything it printed.
type Exchange struct {
	Command string `json:"command"`
	Output  string `json:"output"`
}

// Frame is one rendered frame.
type Frame struct {
	// Drawn are the names of the layers drawn, in order.
	Drawn     []string `json:"drawn"`
	Defined   int      `json:"defined"`
	Processed int      `json:"processed"`
	Errors    int      `json:"errors"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	Transcript []Exchange `json:"transcript"`
	Frames     []Frame    `json:"frames"`

	// List is the final instruction list, one command per entry.
	List []string `json:"list"`

	// Edits are the journaled edits, formatted as the history command
	// prints them.
	Edits []string `json:"edits"`

	// Errors are failed assertions. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Transcript: []Exchange{},
		Frames:     []Frame{},
		List:       []string{},
		Edits:      []string{},
		Errors:     []string{},
	}
}

// AddError records a failed assertion and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Output is the whole console transcript output, concatenated.
func (r *Result) Output() string {
	var n int
	for _, e := range r.Transcript {
		n += len(e.Output)
	}
	buf := make([]byte, 0, n)
	for _, e := range r.Transcript {
		buf = append(buf, e.Output...)
	}
	return string(buf)
}
