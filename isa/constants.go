// Package isa defines the fixed-width 32-bit instruction encoding: the
// opcode map, per-category field layouts, and condition-code semantics that
// bind every opcode to a decode variant. It owns no mutable state — it is
// the dispatch table the decode and pipeline packages read from.
package isa

import "github.com/go-pipesim/pipesim/word"

// WordSize is the bit width of an instruction, register, or memory cell.
const WordSize = 32

// Default simulator geometry (overridable through config).
const (
	// DefaultAddressSize is ADDRESS_SIZE: addresses are unsigned integers
	// less than 2^DefaultAddressSize, indexing words (not bytes).
	DefaultAddressSize = 13
	// OpcodeWidth is the number of bits the opcode field occupies.
	OpcodeWidth = 6
)

// instructionLayout is the base layout shared by every category: only the
// opcode field is common to all 32-bit encodings.
var instructionLayout = func() *word.Layout {
	l := word.NewLayout("instruction")
	if err := l.AddField("opcode", 26, 31, false); err != nil {
		panic(err)
	}
	return l
}()

// ALULayout covers ADD, SUB, MULT, DIV, MOD, LSL, LSR, ASR, AND, XOR, ORR
// (and their aliases MOV, NOT): dest[21..25], op1[16..20], an immediate
// flag at bit 15, and either op2[10..14] or immediate[0..14].
var ALULayout = func() *word.Layout {
	l := instructionLayout.CreateSubtype("alu")
	must(l.AddField("dest", 21, 25, false))
	must(l.AddField("op1", 16, 20, false))
	must(l.AddField("imm", 15, 15, false))
	must(l.AddField("op2", 10, 14, false))
	must(l.AddField("immediate", 0, 14, true)) // overlaps op2/imm; mutually exclusive at decode
	return l
}()

// CMPLayout covers CMP: op1[16..20], imm[15], op2[10..14] or
// immediate[0..14]. No destination register.
var CMPLayout = func() *word.Layout {
	l := instructionLayout.CreateSubtype("cmp")
	must(l.AddField("op1", 16, 20, false))
	must(l.AddField("imm", 15, 15, false))
	must(l.AddField("op2", 10, 14, false))
	must(l.AddField("immediate", 0, 14, true))
	return l
}()

// LDRLayout covers LDR: dest[21..25], lit[15], literal[0..14] or
// base[10..14]+offset[0..9].
var LDRLayout = func() *word.Layout {
	l := instructionLayout.CreateSubtype("ldr")
	must(l.AddField("dest", 21, 25, false))
	must(l.AddField("lit", 15, 15, false))
	must(l.AddField("literal", 0, 14, true))
	must(l.AddField("base", 10, 14, true))
	must(l.AddField("offset", 0, 9, true))
	return l
}()

// STRLayout covers STR: src[21..25], base[10..14], offset[0..9].
var STRLayout = func() *word.Layout {
	l := instructionLayout.CreateSubtype("str")
	must(l.AddField("src", 21, 25, false))
	must(l.AddField("base", 10, 14, false))
	must(l.AddField("offset", 0, 9, false))
	return l
}()

// BranchLayout covers B and BL: cond[22..25], imm[15], base[10..14]+
// offset[0..9] or immediate[0..14].
var BranchLayout = func() *word.Layout {
	l := instructionLayout.CreateSubtype("branch")
	must(l.AddField("cond", 22, 25, false))
	must(l.AddField("imm", 15, 15, false))
	must(l.AddField("base", 10, 14, true))
	must(l.AddField("offset", 0, 9, true))
	must(l.AddField("immediate", 0, 14, true))
	return l
}()

// StackLayout covers PUSH (src) and POP (dest), both at bits [21..25].
var StackLayout = func() *word.Layout {
	l := instructionLayout.CreateSubtype("stack")
	must(l.AddField("reg", 21, 25, false))
	return l
}()

func must(err error) {
	if err != nil {
		panic(err)
	}
}
