// Package debugger is a headless state-read/write interface: breakpoints,
// watchpoints, and stepping control bound to a
// *pipeline.Pipeline, with no REPL loop or rendered view of its own. A CLI,
// an HTTP API, or a test can all drive the same typed methods.
package debugger

import (
	"fmt"
	"strings"

	"github.com/go-pipesim/pipesim/decode"
	"github.com/go-pipesim/pipesim/pipeline"
)

// StepMode selects what ShouldBreak is waiting for.
type StepMode int

const (
	StepNone StepMode = iota
	StepSingle
	StepOver
	StepOut
)

// Debugger wraps a pipeline with breakpoints, watchpoints, command history,
// and an expression evaluator, and answers "should execution pause now".
type Debugger struct {
	Pipeline *pipeline.Pipeline

	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory
	Evaluator   *ExpressionEvaluator

	Running    bool
	StepMode   StepMode
	StepOverPC uint32

	// Symbols resolves labels to addresses, normally populated from
	// loader.LoadAssembled's returned asm.SymbolTable.
	Symbols map[string]uint32

	LastCommand string
}

// NewDebugger wraps p in a fresh debugging session.
func NewDebugger(p *pipeline.Pipeline) *Debugger {
	return &Debugger{
		Pipeline:    p,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(),
		Evaluator:   NewExpressionEvaluator(),
		Symbols:     make(map[string]uint32),
	}
}

// LoadSymbols replaces the label table used by ResolveAddress and
// expression evaluation.
func (d *Debugger) LoadSymbols(symbols map[string]uint32) {
	d.Symbols = symbols
}

// ResolveAddress resolves a label or a 0x/decimal numeric literal to an
// address.
func (d *Debugger) ResolveAddress(addrStr string) (uint32, error) {
	if addr, exists := d.Symbols[addrStr]; exists {
		return addr, nil
	}

	var addr uint32
	if strings.HasPrefix(addrStr, "0x") || strings.HasPrefix(addrStr, "0X") {
		if _, err := fmt.Sscanf(addrStr, "0x%x", &addr); err != nil {
			return 0, fmt.Errorf("invalid address: %s", addrStr)
		}
		return addr, nil
	}
	if _, err := fmt.Sscanf(addrStr, "%d", &addr); err != nil {
		return 0, fmt.Errorf("invalid address: %s", addrStr)
	}
	return addr, nil
}

// ShouldBreak reports whether execution should pause at the pipeline's
// current PC, and why. Callers poll this between Tick calls; it never
// mutates pipeline state itself beyond breakpoint/watchpoint bookkeeping.
func (d *Debugger) ShouldBreak() (bool, string) {
	pc := d.Pipeline.Regs.PC()

	switch d.StepMode {
	case StepSingle:
		d.StepMode = StepNone
		return true, "single step"
	case StepOver:
		if pc == d.StepOverPC {
			d.StepMode = StepNone
			return true, "step over complete"
		}
	case StepOut:
		// Call-depth tracking isn't modeled; step-out degrades to
		// running until the next breakpoint or halt.
	}

	if bp := d.Breakpoints.GetBreakpoint(pc); bp != nil {
		if !bp.Enabled {
			return false, ""
		}
		if bp.Condition != "" {
			result, err := d.Evaluator.Evaluate(bp.Condition, d.Pipeline, d.Symbols)
			if err != nil {
				return true, fmt.Sprintf("breakpoint %d (condition error: %v)", bp.ID, err)
			}
			if !result {
				return false, ""
			}
		}
		hit := d.Breakpoints.ProcessHit(pc)
		return true, fmt.Sprintf("breakpoint %d", hit.ID)
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.Pipeline); wp != nil && changed {
		return true, fmt.Sprintf("watchpoint %d: %s", wp.ID, wp.Expression)
	}

	return false, ""
}

// SetStepOver arms single-step mode, except across a BL at the current PC,
// where it instead runs until control returns to the instruction after the
// call.
func (d *Debugger) SetStepOver() {
	word, err := d.Pipeline.Mem.RAM.Read(d.Pipeline.Regs.PC())
	if err != nil {
		d.StepMode = StepSingle
		d.Running = true
		return
	}

	inst, err := decode.Decode(word)
	if branch, ok := inst.(decode.BranchInstruction); err == nil && ok && branch.Link {
		d.StepOverPC = d.Pipeline.Regs.PC() + 1
		d.StepMode = StepOver
	} else {
		d.StepMode = StepSingle
	}
	d.Running = true
}

// SetStepOut arms step-out mode.
func (d *Debugger) SetStepOut() {
	d.StepMode = StepOut
	d.Running = true
}

// RecordCommand appends cmd to history and remembers it for empty-input
// repeat, mirroring how a REPL built on this package would drive it.
func (d *Debugger) RecordCommand(cmd string) {
	if cmd == "" {
		cmd = d.LastCommand
	}
	if cmd != "" {
		d.History.Add(cmd)
		d.LastCommand = cmd
	}
}
