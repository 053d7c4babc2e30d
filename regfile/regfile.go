// Package regfile implements the simulator's register file: 32
// general-purpose registers plus the named specials, and the in-use
// bitmap the pipeline uses to detect data hazards.
package regfile

import "fmt"

// Count of addressable general-purpose registers, indexed 0..31.
const Count = 32

// Named special register indices, aliased on top of the GPR array.
const (
	ZR = 31 // reads as 0; writes are discarded
	LR = 30 // link register, written by BL
	SP = 29 // stack pointer
	BP = 28 // stack base
	PC = 32 // program counter: out-of-band, tracked separately from R[0..31]
)

// File is the 32-entry GPR array plus the PC, and a parallel in-use table
// of the same arity as the addressable register set (33: R0..R31 plus PC).
type File struct {
	r      [Count]uint32
	pc     uint32
	inUse  [Count + 1]bool // indexed by register number, PC at index Count
	stackB uint32
}

// New creates a register file with SP initialized to BP
// and every register free.
func New(stackBase uint32) *File {
	f := &File{stackB: stackBase}
	f.r[SP] = stackBase
	f.r[BP] = stackBase
	return f
}

func pcSlot() int { return Count }

// Read returns a register's value. ZR always reads 0; PC is tracked
// separately from the GPR array.
func (f *File) Read(reg int) uint32 {
	if reg == ZR {
		return 0
	}
	if reg == PC {
		return f.pc
	}
	return f.r[reg]
}

// Write sets a register's value. Writes to ZR are discarded.
func (f *File) Write(reg int, value uint32) {
	if reg == ZR {
		return
	}
	if reg == PC {
		f.pc = value
		return
	}
	f.r[reg] = value
}

// PC returns the program counter.
func (f *File) PC() uint32 { return f.pc }

// SetPC overwrites the program counter directly (used by branch
// resolution; fetch's PC+1 advance goes through IncrementPC).
func (f *File) SetPC(addr uint32) { f.pc = addr }

// IncrementPC advances PC by one word, the non-branch fetch contract.
func (f *File) IncrementPC() { f.pc++ }

func slotIndex(reg int) int {
	if reg == PC {
		return pcSlot()
	}
	return reg
}

// InUse reports whether reg is claimed by an in-flight instruction.
func (f *File) InUse(reg int) bool {
	return f.inUse[slotIndex(reg)]
}

// Claim marks every register in regs as in-use. It fails with
// DependencyClaimConflict if any of them is already claimed — decode must
// never accept an instruction whose dependency set conflicts with the
// in-use table.
func (f *File) Claim(regs ...int) error {
	for _, reg := range regs {
		if f.inUse[slotIndex(reg)] {
			return &ClaimConflictError{Register: reg}
		}
	}
	for _, reg := range regs {
		f.inUse[slotIndex(reg)] = true
	}
	return nil
}

// Free releases every register in regs, idempotently.
func (f *File) Free(regs ...int) {
	for _, reg := range regs {
		f.inUse[slotIndex(reg)] = false
	}
}

// AnyInUse reports whether any register in regs is currently claimed.
func (f *File) AnyInUse(regs ...int) bool {
	for _, reg := range regs {
		if f.inUse[slotIndex(reg)] {
			return true
		}
	}
	return false
}

// ClaimConflictError is the fatal DependencyClaimConflict:
// internal-invariant violation indicating decode accepted an instruction
// despite an in-use conflict.
type ClaimConflictError struct {
	Register int
}

func (e *ClaimConflictError) Error() string {
	return fmt.Sprintf("register %d claimed while already in use", e.Register)
}

// Snapshot returns a copy of all 32 GPRs plus PC, for debugger/visualizer
// reads between ticks (mid-tick snapshots are undefined).
func (f *File) Snapshot() (regs [Count]uint32, pc uint32) {
	return f.r, f.pc
}
