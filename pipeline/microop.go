package pipeline

import "github.com/go-pipesim/pipesim/decode"

// microOp is what actually rides the pipeline latches. The FD latch holds
// a fetched-but-undecoded word (fetched=true, Inst=nil); every other latch
// holds a decoded instruction plus the scratch fields later stages fill
// in. Keeping scratch fields here, rather than mutating decode.Instruction
// values, keeps decode's variant types immutable.
type microOp struct {
	fetched bool   // true: rawWord holds an undecoded fetch result
	rawWord uint32 // valid only when fetched

	Inst decode.Instruction
	PC   uint32 // the address this instruction was fetched from
	Deps decode.Dependencies

	EffectiveAddr uint32
	Result        uint32
	HaveResult    bool
}

// bubble is the empty NOOP a latch holds when nothing is in flight.
func bubble() microOp {
	return microOp{Inst: decode.NoopInstruction{}}
}

func (m microOp) isBubble() bool {
	if m.fetched {
		return false
	}
	_, ok := m.Inst.(decode.NoopInstruction)
	return ok
}
