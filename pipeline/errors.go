package pipeline

import "fmt"

// StageError wraps a fatal error from a stage with the context
// requires for debugging: cycle, stage name, PC, and the underlying cause.
type StageError struct {
	Cycle uint64
	Stage string
	PC    uint32
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("cycle %d: %s stage at PC=%d: %v", e.Cycle, e.Stage, e.PC, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func (p *Pipeline) fail(stage string, pc uint32, err error) {
	p.FatalErr = &StageError{Cycle: p.Cycle, Stage: stage, PC: pc, Err: err}
}
