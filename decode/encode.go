package decode

import (
	"fmt"

	"github.com/go-pipesim/pipesim/isa"
	"github.com/go-pipesim/pipesim/word"
)

// Encode packs an Instruction back into its 32-bit word, the inverse of
// Decode. It exists for the assembler's emission path and for the
// encode-then-decode round-trip property.
func Encode(inst Instruction) (uint32, error) {
	switch v := inst.(type) {
	case ALUInstruction:
		return encodeALU(v)
	case CMPInstruction:
		return encodeCMP(v)
	case LDRInstruction:
		return encodeLDR(v)
	case STRInstruction:
		return encodeSTR(v)
	case BranchInstruction:
		return encodeBranch(v)
	case PushInstruction:
		w, err := setOpcode(isa.StackLayout, isa.OpPUSH)
		if err != nil {
			return 0, err
		}
		return isa.StackLayout.Set(w, "reg", uint32(v.Src))
	case PopInstruction:
		w, err := setOpcode(isa.StackLayout, isa.OpPOP)
		if err != nil {
			return 0, err
		}
		return isa.StackLayout.Set(w, "reg", uint32(v.Dest))
	case NoopInstruction:
		return setOpcode(isa.ALULayout, isa.OpNOOP)
	case EndInstruction:
		return setOpcode(isa.ALULayout, isa.OpEND)
	case ReservedInstruction:
		return setOpcode(isa.ALULayout, v.Opcode)
	default:
		return 0, fmt.Errorf("decode: no encoder for instruction type %T", inst)
	}
}

func setOpcode(l *word.Layout, op isa.Opcode) (uint32, error) {
	return l.Set(0, "opcode", uint32(op))
}

func encodeALU(v ALUInstruction) (uint32, error) {
	l := isa.ALULayout
	w, err := setOpcode(l, v.Op)
	if err != nil {
		return 0, err
	}
	if w, err = l.Set(w, "dest", uint32(v.Dest)); err != nil {
		return 0, err
	}
	if w, err = l.Set(w, "op1", uint32(v.Op1)); err != nil {
		return 0, err
	}
	if v.Immediate {
		if w, err = l.Set(w, "imm", 1); err != nil {
			return 0, err
		}
		if w, err = l.Set(w, "immediate", v.ImmValue); err != nil {
			return 0, err
		}
		return w, nil
	}
	if w, err = l.Set(w, "op2", uint32(v.Op2)); err != nil {
		return 0, err
	}
	return w, nil
}

func encodeCMP(v CMPInstruction) (uint32, error) {
	l := isa.CMPLayout
	w, err := setOpcode(l, isa.OpCMP)
	if err != nil {
		return 0, err
	}
	if w, err = l.Set(w, "op1", uint32(v.Op1)); err != nil {
		return 0, err
	}
	if v.Immediate {
		if w, err = l.Set(w, "imm", 1); err != nil {
			return 0, err
		}
		if w, err = l.Set(w, "immediate", v.ImmValue); err != nil {
			return 0, err
		}
		return w, nil
	}
	if w, err = l.Set(w, "op2", uint32(v.Op2)); err != nil {
		return 0, err
	}
	return w, nil
}

func encodeLDR(v LDRInstruction) (uint32, error) {
	l := isa.LDRLayout
	w, err := setOpcode(l, isa.OpLDR)
	if err != nil {
		return 0, err
	}
	if w, err = l.Set(w, "dest", uint32(v.Dest)); err != nil {
		return 0, err
	}
	if v.Literal {
		if w, err = l.Set(w, "lit", 1); err != nil {
			return 0, err
		}
		if w, err = l.Set(w, "literal", v.LitValue); err != nil {
			return 0, err
		}
		return w, nil
	}
	if w, err = l.Set(w, "base", uint32(v.Base)); err != nil {
		return 0, err
	}
	if w, err = l.Set(w, "offset", v.Offset); err != nil {
		return 0, err
	}
	return w, nil
}

func encodeSTR(v STRInstruction) (uint32, error) {
	l := isa.STRLayout
	w, err := setOpcode(l, isa.OpSTR)
	if err != nil {
		return 0, err
	}
	if w, err = l.Set(w, "src", uint32(v.Src)); err != nil {
		return 0, err
	}
	if w, err = l.Set(w, "base", uint32(v.Base)); err != nil {
		return 0, err
	}
	if w, err = l.Set(w, "offset", v.Offset); err != nil {
		return 0, err
	}
	return w, nil
}

func encodeBranch(v BranchInstruction) (uint32, error) {
	l := isa.BranchLayout
	op := isa.OpB
	if v.Link {
		op = isa.OpBL
	}
	w, err := setOpcode(l, op)
	if err != nil {
		return 0, err
	}
	if w, err = l.Set(w, "cond", uint32(v.Cond)); err != nil {
		return 0, err
	}
	if v.Immediate {
		if w, err = l.Set(w, "imm", 1); err != nil {
			return 0, err
		}
		if w, err = l.Set(w, "immediate", v.ImmValue); err != nil {
			return 0, err
		}
		return w, nil
	}
	if w, err = l.Set(w, "base", uint32(v.Base)); err != nil {
		return 0, err
	}
	if w, err = l.Set(w, "offset", v.Offset); err != nil {
		return 0, err
	}
	return w, nil
}
