package pipeline

import "github.com/go-pipesim/pipesim/decode"

// writebackStage implements the Writeback contract: ALU/LDR/POP
// write their computed result to the destination register; every other
// kind writes nothing. Every kind frees its full dependency set. This
// stage runs first in tick order, consuming MW's current slot from the
// previous tick's memory stage.
func (p *Pipeline) writebackStage() {
	op := p.mw.Current
	if op.isBubble() {
		return
	}

	if op.HaveResult {
		switch v := op.Inst.(type) {
		case decode.ALUInstruction:
			p.Regs.Write(v.Dest, op.Result)
		case decode.LDRInstruction:
			p.Regs.Write(v.Dest, op.Result)
		case decode.PopInstruction:
			p.Regs.Write(v.Dest, op.Result)
		}
	}

	p.Regs.Free(op.Deps.All()...)

	if p.Trace != nil {
		p.Trace.RecordRetire(p.Cycle, op)
	}
	if p.Statistics != nil {
		p.Statistics.RecordRetire(op.Inst)
	}
}
