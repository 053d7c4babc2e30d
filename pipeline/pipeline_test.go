package pipeline_test

import (
	"testing"

	"github.com/go-pipesim/pipesim/decode"
	"github.com/go-pipesim/pipesim/isa"
	"github.com/go-pipesim/pipesim/memory"
	"github.com/go-pipesim/pipesim/pipeline"
	"github.com/go-pipesim/pipesim/regfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddressSize = 13

func newTestPipeline(t *testing.T, program []decode.Instruction) *pipeline.Pipeline {
	t.Helper()
	l1 := memory.NewLevel("L1", testAddressSize, 4, 1)
	l2 := memory.NewLevel("L2", testAddressSize, 6, 2)
	ram := memory.NewRAM(testAddressSize, 3, 3)

	words := make([]uint32, len(program))
	for i, inst := range program {
		w, err := decode.Encode(inst)
		require.NoError(t, err)
		words[i] = w
	}
	require.NoError(t, ram.LoadWords(0, words))

	sub := memory.NewSubsystem(l1, l2, ram)
	return pipeline.New(sub, 4000)
}

func runToCompletion(t *testing.T, p *pipeline.Pipeline) {
	t.Helper()
	require.NoError(t, p.Run(5000))
	assert.True(t, p.Finished())
}

func aluImm(op isa.Opcode, dest, op1 int, imm uint32) decode.ALUInstruction {
	return decode.ALUInstruction{Op: op, Dest: dest, Op1: op1, Immediate: true, ImmValue: imm}
}

func aluReg(op isa.Opcode, dest, op1, op2 int) decode.ALUInstruction {
	return decode.ALUInstruction{Op: op, Dest: dest, Op1: op1, Op2: op2}
}

func TestScenario1ArithmeticThenStore(t *testing.T) {
	program := []decode.Instruction{
		aluImm(isa.OpADD, 1, 1, 20), // ADD r1, r1, #20
		aluImm(isa.OpADD, 2, 2, 30), // ADD r2, r2, #30
		aluReg(isa.OpADD, 3, 1, 2),  // ADD r3, r1, r2
		decode.STRInstruction{Src: 3, Base: regfile.ZR, Offset: 45},
		decode.EndInstruction{},
	}
	p := newTestPipeline(t, program)
	runToCompletion(t, p)

	regs, _ := p.Regs.Snapshot()
	assert.Equal(t, uint32(20), regs[1])
	assert.Equal(t, uint32(30), regs[2])
	assert.Equal(t, uint32(50), regs[3])

	v, err := p.Mem.RAM.Read(45)
	require.NoError(t, err)
	assert.Equal(t, uint32(50), v)
}

func TestScenario2LoadLiteralThenMovThenStore(t *testing.T) {
	program := []decode.Instruction{
		decode.LDRInstruction{Dest: 1, Literal: true, LitValue: 20}, // LDR r1, #20
		aluImm(isa.OpADD, 2, regfile.ZR, 0),                         // placeholder, overwritten below
		decode.STRInstruction{Src: 2, Base: regfile.ZR, Offset: 45},
		decode.EndInstruction{},
	}
	// MOV r2, r1 == ADD r2, ZR, r1 (register form, not immediate).
	program[1] = aluReg(isa.OpADD, 2, regfile.ZR, 1)

	p := newTestPipeline(t, program)
	runToCompletion(t, p)

	regs, _ := p.Regs.Snapshot()
	assert.Equal(t, uint32(20), regs[1])
	assert.Equal(t, uint32(20), regs[2])

	v, err := p.Mem.RAM.Read(45)
	require.NoError(t, err)
	assert.Equal(t, uint32(20), v)
}

func TestScenario3LoopSumsArrayElements(t *testing.T) {
	const arrayBase = 50
	const n = 5

	program := []decode.Instruction{
		aluImm(isa.OpADD, 23, regfile.ZR, 1), // addr0: r23 = 1 (loop-top address)
		decode.LDRInstruction{Dest: 22, Base: 21, Offset: arrayBase}, // addr1: r22 = array[r21]
		aluReg(isa.OpADD, 20, 20, 22),                                // addr2: acc += r22
		aluImm(isa.OpADD, 21, 21, 1),                                 // addr3: index++
		decode.CMPInstruction{Op1: 21, Immediate: true, ImmValue: n}, // addr4: cmp index, n
		decode.BranchInstruction{Cond: isa.CondLT, Base: 23, Offset: 0}, // addr5: loop while index < n
		decode.EndInstruction{},                                        // addr6
	}

	l1 := memory.NewLevel("L1", testAddressSize, 4, 1)
	l2 := memory.NewLevel("L2", testAddressSize, 6, 2)
	ram := memory.NewRAM(testAddressSize, 3, 3)
	words := make([]uint32, len(program))
	for i, inst := range program {
		w, err := decode.Encode(inst)
		require.NoError(t, err)
		words[i] = w
	}
	require.NoError(t, ram.LoadWords(0, words))
	array := []uint32{1, 2, 3, 4, 5}
	require.NoError(t, ram.LoadWords(arrayBase, array))

	sub := memory.NewSubsystem(l1, l2, ram)
	p := pipeline.New(sub, 4000)
	runToCompletion(t, p)

	regs, _ := p.Regs.Snapshot()
	assert.Equal(t, uint32(1+2+3+4+5), regs[20])
	assert.Equal(t, uint32(n), regs[21])
}

func TestScenario4BranchSkipsFillerInstructions(t *testing.T) {
	program := make([]decode.Instruction, 33)
	program[0] = decode.BranchInstruction{Cond: isa.CondAL, Immediate: true, ImmValue: 30} // B #30
	for i := 1; i <= 29; i++ {
		program[i] = aluImm(isa.OpADD, 20, 20, 1) // poison: would bump r20 if ever executed
	}
	program[30] = aluReg(isa.OpADD, 24, 4, 3)                      // ADD r24, r4, r3
	program[31] = decode.STRInstruction{Src: 24, Base: 16, Offset: 0} // STR r24, [r16, #0]
	program[32] = decode.EndInstruction{}

	p := newTestPipeline(t, program)
	p.Regs.Write(3, 72)
	p.Regs.Write(4, 36)
	p.Regs.Write(16, 8)

	runToCompletion(t, p)

	regs, _ := p.Regs.Snapshot()
	assert.Equal(t, uint32(0), regs[20], "filler instructions between addresses 3 and 29 must never execute")
	assert.Equal(t, uint32(108), regs[24])

	v, err := p.Mem.RAM.Read(8)
	require.NoError(t, err)
	assert.Equal(t, uint32(108), v)
}

func TestScenario5PushPopRoundTripPreservesRegistersAndStackPointer(t *testing.T) {
	program := []decode.Instruction{
		aluReg(isa.OpADD, regfile.LR, regfile.ZR, regfile.SP), // MOV r30(LR), r29(SP)
		aluImm(isa.OpSUB, regfile.ZR, regfile.ZR, 31),         // SUB ZR, ZR, #31 (writes discarded)
		decode.PushInstruction{Src: 0},
		decode.PushInstruction{Src: 1},
		decode.PushInstruction{Src: 2},
		decode.PushInstruction{Src: 3},
		decode.PushInstruction{Src: 4},
		decode.PopInstruction{Dest: 4},
		decode.PopInstruction{Dest: 3},
		decode.PopInstruction{Dest: 2},
		decode.PopInstruction{Dest: 1},
		decode.PopInstruction{Dest: 0},
		decode.EndInstruction{},
	}

	const stackBase = 500
	l1 := memory.NewLevel("L1", testAddressSize, 4, 1)
	l2 := memory.NewLevel("L2", testAddressSize, 6, 2)
	ram := memory.NewRAM(testAddressSize, 3, 3)
	words := make([]uint32, len(program))
	for i, inst := range program {
		w, err := decode.Encode(inst)
		require.NoError(t, err)
		words[i] = w
	}
	require.NoError(t, ram.LoadWords(0, words))
	sub := memory.NewSubsystem(l1, l2, ram)
	p := pipeline.New(sub, stackBase)

	for i := 0; i < 5; i++ {
		p.Regs.Write(i, uint32(i))
	}

	runToCompletion(t, p)

	regs, _ := p.Regs.Snapshot()
	for i := 0; i < 5; i++ {
		assert.Equal(t, uint32(i), regs[i], "register r%d must retain its original value", i)
	}
	assert.Equal(t, uint32(stackBase), regs[regfile.SP])

	// Push order r0..r4 lands at descending addresses starting at the
	// initial stack pointer: r0 at stackBase, r4 (pushed last, popped
	// first) at stackBase-4.
	for i := 0; i < 5; i++ {
		v, err := p.Mem.RAM.Read(uint32(stackBase) - uint32(i))
		require.NoError(t, err)
		assert.Equal(t, uint32(i), v)
	}
}

func TestScenario6BLCapturesReturnAddress(t *testing.T) {
	program := make([]decode.Instruction, 12)
	program[0] = decode.BranchInstruction{Link: true, Cond: isa.CondAL, Immediate: true, ImmValue: 10} // BL #10 -> addr 10
	program[1] = aluImm(isa.OpADD, 0, 0, 5)                                                             // ADD r0, r0, #5
	program[2] = decode.BranchInstruction{Link: true, Cond: isa.CondAL, Immediate: true, ImmValue: 8}   // BL #8 -> addr 10
	program[3] = decode.STRInstruction{Src: 0, Base: regfile.ZR, Offset: 6}                             // STR r0, #6
	program[4] = decode.EndInstruction{}
	program[10] = aluReg(isa.OpADD, 0, 0, 0)                                  // double r0
	program[11] = decode.BranchInstruction{Cond: isa.CondAL, Base: regfile.LR, Offset: 0} // B [LR]
	for i := 5; i < 10; i++ {
		program[i] = decode.NoopInstruction{}
	}

	p := newTestPipeline(t, program)
	p.Regs.Write(0, 10)

	runToCompletion(t, p)

	regs, _ := p.Regs.Snapshot()
	assert.Equal(t, uint32(50), regs[0], "((10*2)+5)*2 via two BL-doubling calls")

	v, err := p.Mem.RAM.Read(6)
	require.NoError(t, err)
	assert.Equal(t, uint32(50), v)
}

func TestDivisionByZeroTraps(t *testing.T) {
	program := []decode.Instruction{
		decode.ALUInstruction{Op: isa.OpDIV, Dest: 1, Op1: 1, Op2: 2}, // r2 is 0
		decode.EndInstruction{},
	}
	p := newTestPipeline(t, program)
	err := p.Run(100)
	require.Error(t, err)
	var stageErr *pipeline.StageError
	assert.ErrorAs(t, err, &stageErr)
	var divErr *pipeline.DivisionByZeroError
	assert.ErrorAs(t, err, &divErr)
}
