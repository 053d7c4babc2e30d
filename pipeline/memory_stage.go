package pipeline

import "github.com/go-pipesim/pipesim/decode"

// memoryStage implements the Memory contract. It runs before
// execute and fetch in tick order, so stalledMemory raised here is
// visible later in the same tick: Tick then holds DE instead of running
// execute and decode, and fetch holds FD.
func (p *Pipeline) memoryStage() {
	op := p.em.Current
	if op.isBubble() {
		p.mw.Next = bubble()
		return
	}

	switch v := op.Inst.(type) {
	case decode.LDRInstruction:
		if v.Literal {
			op.Result = v.LitValue
			op.HaveResult = true
			p.mw.Next = op
			return
		}

		value, stall, err := p.Mem.Read(v.EffectiveAddr)
		if err != nil {
			p.fail("memory", op.PC, err)
			return
		}
		if stall {
			p.stalledMemory = true
			p.em.hold()
			p.mw.Next = bubble()
			return
		}
		op.Result = value
		op.HaveResult = true

	case decode.STRInstruction:
		stall, err := p.Mem.Write(v.EffectiveAddr, p.Regs.Read(v.Src))
		if err != nil {
			p.fail("memory", op.PC, err)
			return
		}
		if stall {
			p.stalledMemory = true
			p.em.hold()
			p.mw.Next = bubble()
			return
		}

	case decode.PushInstruction:
		stall, err := p.Mem.Write(op.EffectiveAddr, p.Regs.Read(v.Src))
		if err != nil {
			p.fail("memory", op.PC, err)
			return
		}
		if stall {
			p.stalledMemory = true
			p.em.hold()
			p.mw.Next = bubble()
			return
		}

	case decode.PopInstruction:
		value, stall, err := p.Mem.Read(op.EffectiveAddr)
		if err != nil {
			p.fail("memory", op.PC, err)
			return
		}
		if stall {
			p.stalledMemory = true
			p.em.hold()
			p.mw.Next = bubble()
			return
		}
		op.Result = value
		op.HaveResult = true
	}

	p.mw.Next = op
}
