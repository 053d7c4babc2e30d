package decode_test

import (
	"testing"

	"github.com/go-pipesim/pipesim/decode"
	"github.com/go-pipesim/pipesim/isa"
	"github.com/go-pipesim/pipesim/regfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, inst decode.Instruction) decode.Instruction {
	t.Helper()
	w, err := decode.Encode(inst)
	require.NoError(t, err)
	got, err := decode.Decode(w)
	require.NoError(t, err)
	return got
}

func TestALURoundTripRegisterForm(t *testing.T) {
	inst := decode.ALUInstruction{Op: isa.OpADD, Dest: 3, Op1: 1, Op2: 2}
	got := roundTrip(t, inst)
	assert.Equal(t, inst, got)
	assert.Equal(t, isa.CategoryALU, got.Category())
	assert.ElementsMatch(t, []int{3, 1, 2}, got.Dependencies().All())
}

func TestALURoundTripImmediateForm(t *testing.T) {
	inst := decode.ALUInstruction{Op: isa.OpSUB, Dest: 5, Op1: 4, Immediate: true, ImmValue: 0x1234}
	got := roundTrip(t, inst)
	assert.Equal(t, inst, got)
	assert.ElementsMatch(t, []int{5, 4}, got.Dependencies().All())
}

func TestCMPRoundTripHasNoOutputDependency(t *testing.T) {
	inst := decode.CMPInstruction{Op1: 10, Op2: 11}
	got := roundTrip(t, inst)
	assert.Equal(t, inst, got)
	deps := got.Dependencies()
	assert.Empty(t, deps.Outputs)
	assert.ElementsMatch(t, []int{10, 11}, deps.Inputs)
}

func TestLDRRoundTripLiteralForm(t *testing.T) {
	inst := decode.LDRInstruction{Dest: 2, Literal: true, LitValue: 999}
	got := roundTrip(t, inst)
	assert.Equal(t, inst, got)
	assert.Equal(t, []int{2}, got.Dependencies().Outputs)
	assert.Empty(t, got.Dependencies().Inputs)
}

func TestLDRRoundTripBaseOffsetForm(t *testing.T) {
	inst := decode.LDRInstruction{Dest: 2, Base: 16, Offset: 4}
	got := roundTrip(t, inst)
	assert.Equal(t, inst, got)
	assert.Equal(t, []int{16}, got.Dependencies().Inputs)
}

func TestSTRRoundTrip(t *testing.T) {
	inst := decode.STRInstruction{Src: 24, Base: 16, Offset: 0}
	got := roundTrip(t, inst)
	assert.Equal(t, inst, got)
	assert.ElementsMatch(t, []int{24, 16}, got.Dependencies().Inputs)
}

func TestBranchRoundTripImmediateForm(t *testing.T) {
	inst := decode.BranchInstruction{Cond: isa.CondAL, Immediate: true, ImmValue: 30}
	got := roundTrip(t, inst)
	assert.Equal(t, inst, got)
	assert.Empty(t, got.Dependencies().Inputs)
	assert.Empty(t, got.Dependencies().Outputs)
}

func TestBLRoundTripClaimsLinkRegister(t *testing.T) {
	inst := decode.BranchInstruction{Link: true, Cond: isa.CondAL, Base: 30, Offset: 0}
	got := roundTrip(t, inst)
	assert.Equal(t, inst, got)
	assert.Equal(t, []int{regfile.LR}, got.Dependencies().Outputs)
	assert.Equal(t, []int{30}, got.Dependencies().Inputs)
}

func TestPushRoundTrip(t *testing.T) {
	inst := decode.PushInstruction{Src: 0}
	got := roundTrip(t, inst)
	assert.Equal(t, inst, got)
	assert.ElementsMatch(t, []int{regfile.SP, 0, regfile.SP}, got.Dependencies().All())
}

func TestPopRoundTrip(t *testing.T) {
	inst := decode.PopInstruction{Dest: 4}
	got := roundTrip(t, inst)
	assert.Equal(t, inst, got)
	assert.ElementsMatch(t, []int{4, regfile.SP, regfile.SP}, got.Dependencies().All())
}

func TestNoopAndEndRoundTrip(t *testing.T) {
	assert.Equal(t, decode.NoopInstruction{}, roundTrip(t, decode.NoopInstruction{}))
	assert.Equal(t, decode.EndInstruction{}, roundTrip(t, decode.EndInstruction{}))
}

func TestReservedOpcodeDecodesAsReservedInstruction(t *testing.T) {
	w, err := decode.Encode(decode.ReservedInstruction{Opcode: isa.OpAESE})
	require.NoError(t, err)
	got, err := decode.Decode(w)
	require.NoError(t, err)
	reserved, ok := got.(decode.ReservedInstruction)
	require.True(t, ok)
	assert.Equal(t, isa.OpAESE, reserved.Opcode)
	assert.Equal(t, isa.CategoryReserved, reserved.Category())
}

func TestDecodeUnknownOpcodeFails(t *testing.T) {
	w := uint32(isa.NumDefinedOpcodes) << 26
	_, err := decode.Decode(w)
	require.Error(t, err)
	var unknown *isa.UnknownOpcodeError
	assert.ErrorAs(t, err, &unknown)
}
