package asm

import (
	"fmt"
	"strings"

	"github.com/go-pipesim/pipesim/decode"
	"github.com/go-pipesim/pipesim/isa"
	"github.com/go-pipesim/pipesim/regfile"
)

// reservedMnemonics are decode-table opcodes with no defined semantics
// (the AES-equivalent reserved block); the assembler rejects them
// rather than silently emitting a NOOP-equivalent.
var reservedMnemonics = map[string]bool{
	"AESE": true, "AESD": true, "AESMC": true, "AESIC": true, "AESSR": true,
	"AESIR": true, "AESGE": true, "AESDE": true,
	"MOVAK": true, "LDRAK": true, "STRAK": true, "PUSAK": true, "POPAK": true,
}

// Assemble turns source text into RAM words plus the label table, per
// the grammar (ALU/CMP/LDR/STR/Branch/Push/Pop, MOV/NOT aliases,
// register names, #decimal/0x/0b literals).
func Assemble(source string) ([]uint32, *SymbolTable, error) {
	lx := NewLexer(source)
	tokens, err := lx.Tokenize()
	if err != nil {
		return nil, nil, err
	}
	stmts, err := newParser(tokens).parseProgram()
	if err != nil {
		return nil, nil, err
	}

	syms := NewSymbolTable()
	addr := uint32(0)
	var instStmts []statement
	for _, s := range stmts {
		if s.Label != "" {
			if err := syms.Define(s.Label, addr); err != nil {
				return nil, nil, &Error{Pos: s.Pos, Kind: ErrorDuplicateLabel, Message: err.Error()}
			}
		}
		if s.Mnemonic == "" {
			continue
		}
		instStmts = append(instStmts, s)
		addr++
	}

	words := make([]uint32, len(instStmts))
	for i, s := range instStmts {
		inst, err := encodeStatement(s, uint32(i), syms)
		if err != nil {
			return nil, nil, err
		}
		w, err := decode.Encode(inst)
		if err != nil {
			return nil, nil, &Error{Pos: s.Pos, Kind: ErrorSyntax, Message: err.Error()}
		}
		words[i] = w
	}
	return words, syms, nil
}

// EmitBinaryLines renders words in the 32-character-binary-line format
// loader.Parse expects.
func EmitBinaryLines(words []uint32) string {
	var sb strings.Builder
	for _, w := range words {
		for bit := 31; bit >= 0; bit-- {
			if w&(1<<uint(bit)) != 0 {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func encodeStatement(s statement, addr uint32, syms *SymbolTable) (decode.Instruction, error) {
	name := strings.ToUpper(s.Mnemonic)
	if reservedMnemonics[name] {
		return nil, &Error{Pos: s.Pos, Kind: ErrorReservedOpcode, Message: fmt.Sprintf("%s is a reserved opcode with no defined semantics", name)}
	}

	switch name {
	case "MOV":
		return encodeMOV(s)
	case "NOT":
		return encodeNOT(s)
	case "ADD", "SUB", "MULT", "DIV", "MOD", "LSL", "LSR", "ASR", "AND", "XOR", "ORR":
		return encodeALU(s, aluOpcodes[name])
	case "CMP":
		return encodeCMP(s)
	case "LDR":
		return encodeLDR(s)
	case "STR":
		return encodeSTR(s)
	case "B", "BL":
		return encodeBranch(s, name == "BL", addr, syms)
	case "PUSH":
		return encodePush(s)
	case "POP":
		return encodePop(s)
	case "NOOP":
		return decode.NoopInstruction{}, nil
	case "END":
		return decode.EndInstruction{}, nil
	}
	return nil, &Error{Pos: s.Pos, Kind: ErrorUnknownMnemonic, Message: fmt.Sprintf("unknown mnemonic %q", s.Mnemonic)}
}

var aluOpcodes = map[string]isa.Opcode{
	"ADD": isa.OpADD, "SUB": isa.OpSUB, "MULT": isa.OpMULT, "DIV": isa.OpDIV,
	"MOD": isa.OpMOD, "LSL": isa.OpLSL, "LSR": isa.OpLSR, "ASR": isa.OpASR,
	"AND": isa.OpAND, "XOR": isa.OpXOR, "ORR": isa.OpORR,
}

func expectOperands(s statement, n int) error {
	if len(s.Operands) != n {
		return &Error{Pos: s.Pos, Kind: ErrorSyntax, Message: fmt.Sprintf("%s expects %d operands, got %d", s.Mnemonic, n, len(s.Operands))}
	}
	return nil
}

func expectRegister(op operand) (int, error) {
	if op.Kind != operandRegister {
		return 0, &Error{Pos: op.Pos, Kind: ErrorSyntax, Message: "expected a register"}
	}
	return op.Reg, nil
}

// encodeMOV implements MOV dest, (src|#imm) as ADD dest, ZR, (src|#imm).
func encodeMOV(s statement) (decode.Instruction, error) {
	if err := expectOperands(s, 2); err != nil {
		return nil, err
	}
	dest, err := expectRegister(s.Operands[0])
	if err != nil {
		return nil, err
	}
	src := s.Operands[1]
	inst := decode.ALUInstruction{Op: isa.OpADD, Dest: dest, Op1: regfile.ZR}
	switch src.Kind {
	case operandRegister:
		inst.Op2 = src.Reg
	case operandImmediate:
		inst.Immediate = true
		inst.ImmValue = src.Imm
	default:
		return nil, &Error{Pos: src.Pos, Kind: ErrorSyntax, Message: "MOV source must be a register or immediate"}
	}
	return inst, nil
}

// encodeNOT implements NOT dest, src as XOR dest, src, #all-ones.
func encodeNOT(s statement) (decode.Instruction, error) {
	if err := expectOperands(s, 2); err != nil {
		return nil, err
	}
	dest, err := expectRegister(s.Operands[0])
	if err != nil {
		return nil, err
	}
	src, err := expectRegister(s.Operands[1])
	if err != nil {
		return nil, err
	}
	return decode.ALUInstruction{Op: isa.OpXOR, Dest: dest, Op1: src, Immediate: true, ImmValue: 0xFFFFFFFF}, nil
}

func encodeALU(s statement, op isa.Opcode) (decode.Instruction, error) {
	if err := expectOperands(s, 3); err != nil {
		return nil, err
	}
	dest, err := expectRegister(s.Operands[0])
	if err != nil {
		return nil, err
	}
	op1, err := expectRegister(s.Operands[1])
	if err != nil {
		return nil, err
	}
	inst := decode.ALUInstruction{Op: op, Dest: dest, Op1: op1}
	third := s.Operands[2]
	switch third.Kind {
	case operandRegister:
		inst.Op2 = third.Reg
	case operandImmediate:
		inst.Immediate = true
		inst.ImmValue = third.Imm
	default:
		return nil, &Error{Pos: third.Pos, Kind: ErrorSyntax, Message: "third operand must be a register or immediate"}
	}
	return inst, nil
}

func encodeCMP(s statement) (decode.Instruction, error) {
	if err := expectOperands(s, 2); err != nil {
		return nil, err
	}
	op1, err := expectRegister(s.Operands[0])
	if err != nil {
		return nil, err
	}
	inst := decode.CMPInstruction{Op1: op1}
	second := s.Operands[1]
	switch second.Kind {
	case operandRegister:
		inst.Op2 = second.Reg
	case operandImmediate:
		inst.Immediate = true
		inst.ImmValue = second.Imm
	default:
		return nil, &Error{Pos: second.Pos, Kind: ErrorSyntax, Message: "CMP second operand must be a register or immediate"}
	}
	return inst, nil
}

func encodeLDR(s statement) (decode.Instruction, error) {
	if err := expectOperands(s, 2); err != nil {
		return nil, err
	}
	dest, err := expectRegister(s.Operands[0])
	if err != nil {
		return nil, err
	}
	src := s.Operands[1]
	switch src.Kind {
	case operandImmediate:
		return decode.LDRInstruction{Dest: dest, Literal: true, LitValue: src.Imm}, nil
	case operandBracket:
		return decode.LDRInstruction{Dest: dest, Base: src.Base, Offset: src.Offset}, nil
	}
	return nil, &Error{Pos: src.Pos, Kind: ErrorSyntax, Message: "LDR source must be #literal or [base, #offset]"}
}

// encodeSTR accepts both STR src, [base, #offset] and the shorthand
// STR src, #offset (an absolute address: base implicitly ZR).
func encodeSTR(s statement) (decode.Instruction, error) {
	if err := expectOperands(s, 2); err != nil {
		return nil, err
	}
	src, err := expectRegister(s.Operands[0])
	if err != nil {
		return nil, err
	}
	dst := s.Operands[1]
	switch dst.Kind {
	case operandBracket:
		return decode.STRInstruction{Src: src, Base: dst.Base, Offset: dst.Offset}, nil
	case operandImmediate:
		return decode.STRInstruction{Src: src, Base: regfile.ZR, Offset: dst.Imm}, nil
	}
	return nil, &Error{Pos: dst.Pos, Kind: ErrorSyntax, Message: "STR destination must be [base, #offset] or #address"}
}

func encodeBranch(s statement, link bool, addr uint32, syms *SymbolTable) (decode.Instruction, error) {
	if err := expectOperands(s, 1); err != nil {
		return nil, err
	}
	cond, ok := isa.ParseCondition(s.Cond)
	if !ok {
		return nil, &Error{Pos: s.Pos, Kind: ErrorSyntax, Message: fmt.Sprintf("unknown condition suffix %q", s.Cond)}
	}
	target := s.Operands[0]
	switch target.Kind {
	case operandImmediate:
		return decode.BranchInstruction{Link: link, Cond: cond, Immediate: true, ImmValue: target.Imm}, nil
	case operandBracket:
		return decode.BranchInstruction{Link: link, Cond: cond, Base: target.Base, Offset: target.Offset}, nil
	case operandLabel:
		labelAddr, ok := syms.Get(target.Label)
		if !ok {
			return nil, &Error{Pos: target.Pos, Kind: ErrorUndefinedLabel, Message: fmt.Sprintf("undefined label %q", target.Label)}
		}
		if labelAddr < addr {
			return nil, &Error{Pos: target.Pos, Kind: ErrorOperandRange, Message: fmt.Sprintf("label %q is behind the immediate branch at address %d; use a register-indirect branch for backward jumps", target.Label, addr)}
		}
		return decode.BranchInstruction{Link: link, Cond: cond, Immediate: true, ImmValue: labelAddr - addr}, nil
	}
	return nil, &Error{Pos: target.Pos, Kind: ErrorSyntax, Message: "branch target must be #offset, a label, or [base, #offset]"}
}

func encodePush(s statement) (decode.Instruction, error) {
	if err := expectOperands(s, 1); err != nil {
		return nil, err
	}
	src, err := expectRegister(s.Operands[0])
	if err != nil {
		return nil, err
	}
	return decode.PushInstruction{Src: src}, nil
}

func encodePop(s statement) (decode.Instruction, error) {
	if err := expectOperands(s, 1); err != nil {
		return nil, err
	}
	dest, err := expectRegister(s.Operands[0])
	if err != nil {
		return nil, err
	}
	return decode.PopInstruction{Dest: dest}, nil
}
