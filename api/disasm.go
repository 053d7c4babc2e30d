package api

import (
	"fmt"

	"github.com/go-pipesim/pipesim/decode"
	"github.com/go-pipesim/pipesim/isa"
)

// disassemble renders a decoded instruction the way a debugger listing
// would, close to the assembler's own mnemonic spelling.
func disassemble(word uint32) string {
	inst, err := decode.Decode(word)
	if err != nil {
		return fmt.Sprintf(".word 0x%08X (%v)", word, err)
	}

	switch v := inst.(type) {
	case decode.ALUInstruction:
		if v.Immediate {
			return fmt.Sprintf("%s r%d, r%d, #%d", v.Op, v.Dest, v.Op1, v.ImmValue)
		}
		return fmt.Sprintf("%s r%d, r%d, r%d", v.Op, v.Dest, v.Op1, v.Op2)
	case decode.CMPInstruction:
		if v.Immediate {
			return fmt.Sprintf("CMP r%d, #%d", v.Op1, v.ImmValue)
		}
		return fmt.Sprintf("CMP r%d, r%d", v.Op1, v.Op2)
	case decode.LDRInstruction:
		if v.Literal {
			return fmt.Sprintf("LDR r%d, #%d", v.Dest, v.LitValue)
		}
		return fmt.Sprintf("LDR r%d, [r%d, #%d]", v.Dest, v.Base, v.Offset)
	case decode.STRInstruction:
		return fmt.Sprintf("STR r%d, [r%d, #%d]", v.Src, v.Base, v.Offset)
	case decode.BranchInstruction:
		mnemonic := "B"
		if v.Link {
			mnemonic = "BL"
		}
		if v.Cond != isa.CondAL {
			mnemonic += v.Cond.String()
		}
		if v.Immediate {
			return fmt.Sprintf("%s #%d", mnemonic, v.ImmValue)
		}
		return fmt.Sprintf("%s [r%d, #%d]", mnemonic, v.Base, v.Offset)
	case decode.PushInstruction:
		return fmt.Sprintf("PUSH r%d", v.Src)
	case decode.PopInstruction:
		return fmt.Sprintf("POP r%d", v.Dest)
	case decode.NoopInstruction:
		return "NOP"
	case decode.EndInstruction:
		return "END"
	case decode.ReservedInstruction:
		return fmt.Sprintf("; reserved opcode %s", v.Opcode)
	default:
		return fmt.Sprintf(".word 0x%08X", word)
	}
}

// symbolFor returns the label mapping to addr, if any, choosing the
// lexicographically first when more than one label shares an address.
func symbolFor(symbols map[string]uint32, addr uint32) string {
	best := ""
	for name, a := range symbols {
		if a != addr {
			continue
		}
		if best == "" || name < best {
			best = name
		}
	}
	return best
}
