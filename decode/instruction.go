// Package decode turns a raw 32-bit instruction word into a typed variant
// opcode category dispatch, per-category field
// extraction, and the dependency set a variant needs claimed before it may
// enter the pipeline's decode-to-execute boundary.
package decode

import (
	"github.com/go-pipesim/pipesim/isa"
	"github.com/go-pipesim/pipesim/regfile"
)

// NoRegister marks a Dependencies slot that the variant does not use.
const NoRegister = -1

// Dependencies is the union of registers an instruction reads and writes.
// Outputs and Inputs may overlap (PUSH/POP both read and write SP); the
// pipeline claims and frees the union via All.
type Dependencies struct {
	Outputs []int
	Inputs  []int
}

// All returns every register referenced by the instruction, in claim
// order, duplicates included: claiming or freeing the same register twice
// is harmless (regfile.File.Claim/Free are idempotent per call).
func (d Dependencies) All() []int {
	all := make([]int, 0, len(d.Outputs)+len(d.Inputs))
	all = append(all, d.Outputs...)
	all = append(all, d.Inputs...)
	return all
}

// Instruction is the tagged-variant interface every decoded category
// implements. Opcode-specific behavior (execute/memory/writeback) lives in
// the pipeline package, which type-switches on the concrete variant.
type Instruction interface {
	Category() isa.Category
	Dependencies() Dependencies
}

// ALUInstruction covers ADD, SUB, MULT, DIV, MOD, LSL, LSR, ASR, AND, XOR,
// ORR. Op2 is meaningful only when Immediate is false.
type ALUInstruction struct {
	Op        isa.Opcode
	Dest      int
	Op1       int
	Immediate bool
	Op2       int
	ImmValue  uint32
}

func (i ALUInstruction) Category() isa.Category { return isa.CategoryALU }

func (i ALUInstruction) Dependencies() Dependencies {
	inputs := []int{i.Op1}
	if !i.Immediate {
		inputs = append(inputs, i.Op2)
	}
	return Dependencies{Outputs: []int{i.Dest}, Inputs: inputs}
}

// CMPInstruction carries no destination register; it only updates flags.
type CMPInstruction struct {
	Op1       int
	Immediate bool
	Op2       int
	ImmValue  uint32
}

func (i CMPInstruction) Category() isa.Category { return isa.CategoryCMP }

func (i CMPInstruction) Dependencies() Dependencies {
	inputs := []int{i.Op1}
	if !i.Immediate {
		inputs = append(inputs, i.Op2)
	}
	return Dependencies{Inputs: inputs}
}

// LDRInstruction covers LDR dest, #literal and LDR dest, [base, #offset].
type LDRInstruction struct {
	Dest     int
	Literal  bool
	LitValue uint32
	Base     int
	Offset   uint32

	// EffectiveAddr is filled in by the pipeline's execute stage; it is
	// not produced by decode.
	EffectiveAddr uint32
}

func (i LDRInstruction) Category() isa.Category { return isa.CategoryLDR }

func (i LDRInstruction) Dependencies() Dependencies {
	var inputs []int
	if !i.Literal {
		inputs = []int{i.Base}
	}
	return Dependencies{Outputs: []int{i.Dest}, Inputs: inputs}
}

// STRInstruction covers STR src, [base, #offset].
type STRInstruction struct {
	Src    int
	Base   int
	Offset uint32

	EffectiveAddr uint32
}

func (i STRInstruction) Category() isa.Category { return isa.CategorySTR }

func (i STRInstruction) Dependencies() Dependencies {
	return Dependencies{Inputs: []int{i.Src, i.Base}}
}

// BranchInstruction covers B and BL. Immediate selects PC-relative
// addressing (target = PC + Offset); the register form is
// register-indirect-absolute (target = reg[Base] + Offset), per the
// an open-question resolution: BL captures PC+1.
type BranchInstruction struct {
	Link      bool // true for BL
	Cond      isa.ConditionCode
	Immediate bool
	ImmValue  uint32
	Base      int
	Offset    uint32
}

func (i BranchInstruction) Category() isa.Category { return isa.CategoryBranch }

func (i BranchInstruction) Dependencies() Dependencies {
	var outputs, inputs []int
	if i.Link {
		outputs = []int{regfile.LR}
	}
	if !i.Immediate {
		inputs = []int{i.Base}
	}
	return Dependencies{Outputs: outputs, Inputs: inputs}
}

// PushInstruction covers PUSH src: RAM[SP] = src, then SP--.
type PushInstruction struct {
	Src int
}

func (i PushInstruction) Category() isa.Category { return isa.CategoryPush }

func (i PushInstruction) Dependencies() Dependencies {
	return Dependencies{Outputs: []int{regfile.SP}, Inputs: []int{i.Src, regfile.SP}}
}

// PopInstruction covers POP dest: SP++, then dest = RAM[SP].
type PopInstruction struct {
	Dest int
}

func (i PopInstruction) Category() isa.Category { return isa.CategoryPop }

func (i PopInstruction) Dependencies() Dependencies {
	return Dependencies{Outputs: []int{i.Dest, regfile.SP}, Inputs: []int{regfile.SP}}
}

// NoopInstruction is both the decoded NOOP opcode and the bubble the
// pipeline inserts on a dependency stall or a squash.
type NoopInstruction struct{}

func (NoopInstruction) Category() isa.Category      { return isa.CategoryNoop }
func (NoopInstruction) Dependencies() Dependencies { return Dependencies{} }

// EndInstruction halts further fetch once it reaches decode, letting the
// pipeline drain.
type EndInstruction struct{}

func (EndInstruction) Category() isa.Category      { return isa.CategoryEnd }
func (EndInstruction) Dependencies() Dependencies { return Dependencies{} }

// ReservedInstruction is any AES-equivalent or *AK opcode: undefined,
// treated as a NOOP-equivalent at execution time.
type ReservedInstruction struct {
	Opcode isa.Opcode
}

func (i ReservedInstruction) Category() isa.Category { return isa.CategoryReserved }
func (ReservedInstruction) Dependencies() Dependencies { return Dependencies{} }
