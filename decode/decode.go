package decode

import (
	"github.com/go-pipesim/pipesim/isa"
	"github.com/go-pipesim/pipesim/word"
)

// Decode extracts the opcode from w, resolves its category, and parses the
// category's fields into the matching Instruction variant. An opcode
// outside the 34 defined values fails with isa.UnknownOpcodeError (the
// fatal DecodeError).
func Decode(w uint32) (Instruction, error) {
	op := isa.ExtractOpcode(w)
	if !isa.Valid(op) {
		return nil, isa.ErrUnknownOpcode(op)
	}
	cat, err := isa.CategoryOf(op)
	if err != nil {
		return nil, err
	}

	switch cat {
	case isa.CategoryALU:
		return decodeALU(op, w), nil
	case isa.CategoryCMP:
		return decodeCMP(w), nil
	case isa.CategoryLDR:
		return decodeLDR(w), nil
	case isa.CategorySTR:
		return decodeSTR(w), nil
	case isa.CategoryBranch:
		return decodeBranch(op, w), nil
	case isa.CategoryPush:
		return decodePush(w), nil
	case isa.CategoryPop:
		return decodePop(w), nil
	case isa.CategoryNoop:
		return NoopInstruction{}, nil
	case isa.CategoryEnd:
		return EndInstruction{}, nil
	default:
		return ReservedInstruction{Opcode: op}, nil
	}
}

// field reads a field that every layout in this package registers
// correctly; a failure here means the isa layouts and this package's field
// names have drifted, which is a programming error, not a runtime one.
func field(l *word.Layout, w uint32, name string) uint32 {
	v, err := l.Get(w, name)
	if err != nil {
		panic("decode: " + err.Error())
	}
	return v
}

func decodeALU(op isa.Opcode, w uint32) Instruction {
	l := isa.ALULayout
	imm := field(l, w, "imm") != 0
	inst := ALUInstruction{
		Op:        op,
		Dest:      int(field(l, w, "dest")),
		Op1:       int(field(l, w, "op1")),
		Immediate: imm,
	}
	if imm {
		inst.ImmValue = field(l, w, "immediate")
	} else {
		inst.Op2 = int(field(l, w, "op2"))
	}
	return inst
}

func decodeCMP(w uint32) Instruction {
	l := isa.CMPLayout
	imm := field(l, w, "imm") != 0
	inst := CMPInstruction{
		Op1:       int(field(l, w, "op1")),
		Immediate: imm,
	}
	if imm {
		inst.ImmValue = field(l, w, "immediate")
	} else {
		inst.Op2 = int(field(l, w, "op2"))
	}
	return inst
}

func decodeLDR(w uint32) Instruction {
	l := isa.LDRLayout
	lit := field(l, w, "lit") != 0
	inst := LDRInstruction{
		Dest:    int(field(l, w, "dest")),
		Literal: lit,
	}
	if lit {
		inst.LitValue = field(l, w, "literal")
	} else {
		inst.Base = int(field(l, w, "base"))
		inst.Offset = field(l, w, "offset")
	}
	return inst
}

func decodeSTR(w uint32) Instruction {
	l := isa.STRLayout
	return STRInstruction{
		Src:    int(field(l, w, "src")),
		Base:   int(field(l, w, "base")),
		Offset: field(l, w, "offset"),
	}
}

func decodeBranch(op isa.Opcode, w uint32) Instruction {
	l := isa.BranchLayout
	imm := field(l, w, "imm") != 0
	inst := BranchInstruction{
		Link:      op == isa.OpBL,
		Cond:      isa.ConditionCode(field(l, w, "cond")),
		Immediate: imm,
	}
	if imm {
		inst.ImmValue = field(l, w, "immediate")
	} else {
		inst.Base = int(field(l, w, "base"))
		inst.Offset = field(l, w, "offset")
	}
	return inst
}

func decodePush(w uint32) Instruction {
	return PushInstruction{Src: int(field(isa.StackLayout, w, "reg"))}
}

func decodePop(w uint32) Instruction {
	return PopInstruction{Dest: int(field(isa.StackLayout, w, "reg"))}
}
