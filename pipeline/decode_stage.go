package pipeline

import (
	"github.com/go-pipesim/pipesim/decode"
	"github.com/go-pipesim/pipesim/isa"
)

// decodeStage implements the Decode contract: decode FD's
// current word once per visit, compute its dependency set, and either
// claim those registers and admit it into DE, or stall in place behind a
// NOOP. fetchStage (which runs after this one in tick order) is what
// actually holds FD when dependencyStall is raised here.
func (p *Pipeline) decodeStage() {
	if p.fd.Current.isBubble() {
		p.de.Next = bubble()
		return
	}

	inst, err := decode.Decode(p.fd.Current.rawWord)
	if err != nil {
		p.fail("decode", p.fd.Current.PC, err)
		return
	}

	if p.Regs.AnyInUse(inst.Dependencies().All()...) {
		p.dependencyStall = true
		p.de.Next = bubble()
		return
	}

	if inst.Category() == isa.CategoryEnd {
		p.finished = true
	}

	if err := p.Regs.Claim(inst.Dependencies().All()...); err != nil {
		p.fail("decode", p.fd.Current.PC, err)
		return
	}

	p.de.Next = microOp{Inst: inst, PC: p.fd.Current.PC, Deps: inst.Dependencies()}
}
