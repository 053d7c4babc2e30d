// Package pipeline implements the five-stage in-order executor: fetch,
// decode, execute, memory, writeback, connected by four inter-stage
// latches, with data-hazard stalling and branch squash, over the register
// file and memory subsystem.
package pipeline

import (
	"fmt"

	"github.com/go-pipesim/pipesim/isa"
	"github.com/go-pipesim/pipesim/memory"
	"github.com/go-pipesim/pipesim/regfile"
)

// Pipeline owns the register file, the memory subsystem, the condition
// flags, and the four inter-stage latches. A tick runs the five stage
// functions in reverse stage order (writeback, memory, execute, decode,
// fetch) and then advances every latch.
type Pipeline struct {
	Regs  *regfile.File
	Mem   *memory.Subsystem
	Flags isa.Flags

	fd, de, em, mw latch

	finished bool // set once END reaches decode; fetch stops, pipeline drains

	stalledFetch    bool
	stalledMemory   bool
	dependencyStall bool

	Cycle uint64

	Trace      *Trace
	Statistics *Statistics

	// FatalErr is set by a stage that encounters a fatal condition
	// (DecodeError, AddressOutOfRange, FieldOverflow,
	// DependencyClaimConflict). Once set, Tick stops advancing.
	FatalErr error
}

// New builds a pipeline over a fresh register file and the given memory
// subsystem. stackBase seeds SP and BP per regfile.New.
func New(mem *memory.Subsystem, stackBase uint32) *Pipeline {
	p := &Pipeline{
		Regs:       regfile.New(stackBase),
		Mem:        mem,
		fd:         newLatch(),
		de:         newLatch(),
		em:         newLatch(),
		mw:         newLatch(),
		Trace:      NewTrace(),
		Statistics: NewStatistics(),
	}
	return p
}

// Finished reports whether END has retired and every in-flight
// instruction has drained from the pipeline.
func (p *Pipeline) Finished() bool {
	return p.finished && p.fd.Current.isBubble() && p.de.Current.isBubble() &&
		p.em.Current.isBubble() && p.mw.Current.isBubble()
}

// Step advances the pipeline by n ticks, or until it halts (Finished or
// FatalErr), whichever comes first. It returns the number of ticks
// actually executed.
func (p *Pipeline) Step(n int) (int, error) {
	for i := 0; i < n; i++ {
		if p.Finished() {
			return i, nil
		}
		if err := p.Tick(); err != nil {
			return i + 1, err
		}
	}
	return n, nil
}

// Run ticks until Finished or a fatal error, up to maxCycles ticks as a
// backstop against runaway programs.
func (p *Pipeline) Run(maxCycles uint64) error {
	for p.Cycle < maxCycles {
		if p.Finished() {
			return nil
		}
		if err := p.Tick(); err != nil {
			return err
		}
	}
	return fmt.Errorf("pipeline: exceeded maximum cycle count %d without halting", maxCycles)
}

// Tick runs one cycle: the five stage functions in reverse stage order,
// then latch advancement. When memory stalls, execute and decode are
// skipped and only MW shifts. A tick is atomic from the caller's perspective.
func (p *Pipeline) Tick() error {
	if p.FatalErr != nil {
		return p.FatalErr
	}

	p.stalledFetch = false
	p.stalledMemory = false
	p.dependencyStall = false

	p.writebackStage()
	if p.FatalErr != nil {
		return p.FatalErr
	}
	p.memoryStage()
	if p.FatalErr != nil {
		return p.FatalErr
	}
	if p.stalledMemory {
		// Memory backpressure: memoryStage held EM; DE holds too, and
		// fetchStage holds FD.
		p.de.hold()
	} else {
		p.executeStage()
	}
	if p.FatalErr != nil {
		return p.FatalErr
	}
	if !p.stalledMemory {
		p.decodeStage()
	}
	if p.FatalErr != nil {
		return p.FatalErr
	}
	p.fetchStage()
	if p.FatalErr != nil {
		return p.FatalErr
	}

	p.advanceLatches()
	p.Cycle++
	if p.Statistics != nil {
		p.Statistics.RecordCycle(p.stalledMemory, p.stalledFetch, p.dependencyStall)
	}
	return nil
}

// advanceLatches shifts every latch's Next into Current. Each stage
// function above has already decided, per the backpressure rules, whether
// its own latch's Next should hold the prior value (stall-in-place) or a
// freshly produced one.
func (p *Pipeline) advanceLatches() {
	p.fd.advance()
	p.de.advance()
	p.em.advance()
	p.mw.advance()
}
