package pipeline

// fetchStage implements the Fetch contract. It runs last in
// tick order, after memory and decode have had a chance to raise
// stalledMemory, stalledFetch, or dependencyStall for this cycle.
func (p *Pipeline) fetchStage() {
	if p.finished {
		p.fd.Next = bubble()
		return
	}

	if p.stalledMemory || p.dependencyStall {
		// Backpressure: hold fetch in place. stalledFetch covers fetch's
		// own in-flight memory-subsystem request below.
		p.fd.hold()
		return
	}

	pc := p.Regs.PC()
	word, stall, err := p.Mem.Read(pc)
	if err != nil {
		p.fail("fetch", pc, err)
		return
	}
	if stall {
		p.stalledFetch = true
		// decode has already consumed FD.Current this tick, so FD takes a
		// bubble rather than replaying that word while the read is pending.
		p.fd.Next = bubble()
		return
	}

	p.fd.Next = microOp{PC: pc, rawWord: word, fetched: true}
	p.Regs.IncrementPC()
}
