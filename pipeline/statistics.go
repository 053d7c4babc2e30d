package pipeline

import (
	"github.com/go-pipesim/pipesim/decode"
	"github.com/go-pipesim/pipesim/isa"
)

// Statistics tracks the per-cycle and per-category counters the
// teacher's PerformanceStatistics tracks for a single-issue interpreter,
// adapted to this pipeline's stall taxonomy.
type Statistics struct {
	Enabled bool

	TotalCycles           uint64
	MemoryStallCycles     uint64
	FetchStallCycles      uint64
	DependencyStallCycles uint64

	RetiredCount   uint64
	CategoryCounts map[isa.Category]uint64
}

// NewStatistics creates an enabled statistics tracker with empty counters.
func NewStatistics() *Statistics {
	return &Statistics{
		Enabled:        true,
		CategoryCounts: make(map[isa.Category]uint64),
	}
}

// RecordCycle tallies one tick's stall flags.
func (s *Statistics) RecordCycle(stalledMemory, stalledFetch, dependencyStall bool) {
	if !s.Enabled {
		return
	}
	s.TotalCycles++
	if stalledMemory {
		s.MemoryStallCycles++
	}
	if stalledFetch {
		s.FetchStallCycles++
	}
	if dependencyStall {
		s.DependencyStallCycles++
	}
}

// RecordRetire tallies one writeback-stage retirement by category.
func (s *Statistics) RecordRetire(inst decode.Instruction) {
	if !s.Enabled || inst == nil {
		return
	}
	s.RetiredCount++
	s.CategoryCounts[inst.Category()]++
}
