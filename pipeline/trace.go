package pipeline

import "github.com/go-pipesim/pipesim/isa"

// TraceEntry records one instruction's retirement through writeback: the
// cycle it retired on, where it was fetched from, its opcode category,
// and (for ALU/LDR/POP) the value it wrote back.
type TraceEntry struct {
	Cycle    uint64
	PC       uint32
	Category isa.Category
	Result   uint32
	HasResult bool
}

// Trace accumulates retirement history for debugger/visualizer
// consumption, mirroring the teacher's execution-trace idiom but scoped to
// what the pipeline can observe at writeback.
type Trace struct {
	Enabled    bool
	MaxEntries int

	entries []TraceEntry
}

// NewTrace creates an enabled trace with a generous default cap.
func NewTrace() *Trace {
	return &Trace{Enabled: true, MaxEntries: 100000}
}

// RecordRetire appends one retirement entry, unless tracing is disabled or
// the cap has been reached.
func (t *Trace) RecordRetire(cycle uint64, op microOp) {
	if !t.Enabled {
		return
	}
	if t.MaxEntries > 0 && len(t.entries) >= t.MaxEntries {
		return
	}
	t.entries = append(t.entries, TraceEntry{
		Cycle:     cycle,
		PC:        op.PC,
		Category:  op.Inst.Category(),
		Result:    op.Result,
		HasResult: op.HaveResult,
	})
}

// Entries returns every recorded retirement, oldest first.
func (t *Trace) Entries() []TraceEntry {
	return t.entries
}

// Reset clears recorded history without changing Enabled/MaxEntries.
func (t *Trace) Reset() {
	t.entries = t.entries[:0]
}
