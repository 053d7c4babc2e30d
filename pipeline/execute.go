package pipeline

import (
	"github.com/go-pipesim/pipesim/decode"
	"github.com/go-pipesim/pipesim/isa"
	"github.com/go-pipesim/pipesim/regfile"
)

// executeStage implements the Execute contract: ALU
// computation, CMP flag derivation, branch resolution and squash, and
// effective-address calculation for LDR/STR/PUSH/POP. It consumes DE's
// current slot and produces EM's next slot.
func (p *Pipeline) executeStage() {
	op := p.de.Current
	if op.isBubble() {
		p.em.Next = bubble()
		return
	}

	switch v := op.Inst.(type) {
	case decode.ALUInstruction:
		result, err := executeALU(p.Regs, v)
		if err != nil {
			p.fail("execute", op.PC, err)
			return
		}
		op.Result = result
		op.HaveResult = true

	case decode.CMPInstruction:
		op1 := p.Regs.Read(v.Op1)
		var op2 uint32
		if v.Immediate {
			op2 = v.ImmValue
		} else {
			op2 = p.Regs.Read(v.Op2)
		}
		p.Flags = evaluateCMP(op1, op2)

	case decode.LDRInstruction:
		if !v.Literal {
			v.EffectiveAddr = p.Regs.Read(v.Base) + v.Offset
			op.Inst = v
		}

	case decode.STRInstruction:
		v.EffectiveAddr = p.Regs.Read(v.Base) + v.Offset
		op.Inst = v

	case decode.BranchInstruction:
		p.executeBranch(op.PC, v)

	case decode.PushInstruction:
		op.EffectiveAddr = p.Regs.Read(regfile.SP)
		p.Regs.Write(regfile.SP, op.EffectiveAddr-1)

	case decode.PopInstruction:
		newSP := p.Regs.Read(regfile.SP) + 1
		p.Regs.Write(regfile.SP, newSP)
		op.EffectiveAddr = newSP
	}

	p.em.Next = op
}

// executeALU computes an ALU result with two's-complement wraparound at
// WORD_SIZE. Go's unsigned arithmetic already wraps mod
// 2^32, so the operations below need no explicit masking.
func executeALU(regs *regfile.File, v decode.ALUInstruction) (uint32, error) {
	a := regs.Read(v.Op1)
	var b uint32
	if v.Immediate {
		b = v.ImmValue
	} else {
		b = regs.Read(v.Op2)
	}

	switch v.Op {
	case isa.OpADD:
		return a + b, nil
	case isa.OpSUB:
		return a - b, nil
	case isa.OpMULT:
		return a * b, nil
	case isa.OpDIV:
		if b == 0 {
			return 0, &DivisionByZeroError{Op: "DIV"}
		}
		return uint32(int32(a) / int32(b)), nil
	case isa.OpMOD:
		if b == 0 {
			return 0, &DivisionByZeroError{Op: "MOD"}
		}
		return uint32(int32(a) % int32(b)), nil
	case isa.OpLSL:
		return a << (b & 31), nil
	case isa.OpLSR:
		return a >> (b & 31), nil
	case isa.OpASR:
		return uint32(int32(a) >> (b & 31)), nil
	case isa.OpAND:
		return a & b, nil
	case isa.OpXOR:
		return a ^ b, nil
	case isa.OpORR:
		return a | b, nil
	default:
		return 0, nil
	}
}

// evaluateCMP performs op1-op2 in unbounded signed arithmetic and
// quantizes N, Z and V from that single computation.
// C is unsigned overflow/no-borrow: it reads op1 and op2 as unsigned
// words directly (op1 >= op2, no borrow), independent of the signed
// diff used for N/Z/V.
func evaluateCMP(op1, op2 uint32) isa.Flags {
	diff := int64(int32(op1)) - int64(int32(op2))
	truncated := uint32(diff)

	return isa.Flags{
		N: truncated&0x80000000 != 0,
		Z: truncated == 0,
		C: op1 >= op2,
		V: diff < -(1<<31) || diff >= 1<<31,
	}
}

func (p *Pipeline) executeBranch(pc uint32, v decode.BranchInstruction) {
	taken := v.Cond.Evaluate(p.Flags)
	if !taken {
		return
	}

	var target uint32
	if v.Immediate {
		target = pc + v.ImmValue
	} else {
		target = p.Regs.Read(v.Base) + v.Offset
	}

	if v.Link {
		// Resolved open question: LR captures PC+1, the
		// address of the instruction after the BL.
		p.Regs.Write(regfile.LR, pc+1)
	}

	p.squash(target)
}

// squash implements the branch-squash contract: the instruction
// already fetched but not yet decoded is discarded (it had claimed
// nothing, since claiming happens only on admission into DE) and PC is
// reseated to target. decodeStage, running after this one in tick order,
// will see FD.Current as a bubble and naturally produce a bubble into
// DE.Next, so no separate DE-side cleanup is required.
func (p *Pipeline) squash(target uint32) {
	p.fd.Current = bubble()
	p.fd.Next = bubble()
	p.Regs.SetPC(target)
}

// DivisionByZeroError is the fatal trap raised when DIV or MOD is
// executed with a zero divisor (resolved open question: this
// implementation traps rather than defining a sentinel result).
type DivisionByZeroError struct {
	Op string
}

func (e *DivisionByZeroError) Error() string {
	return e.Op + " by zero"
}
