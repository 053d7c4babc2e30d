package memory_test

import (
	"testing"

	"github.com/go-pipesim/pipesim/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubsystem(l1Latency, l2Latency, ramLatency uint32) *memory.Subsystem {
	const addressSize = 13
	l1 := memory.NewLevel("L1", addressSize, 4, l1Latency)
	l2 := memory.NewLevel("L2", addressSize, 6, l2Latency)
	ram := memory.NewRAM(addressSize, ramLatency, ramLatency)
	return memory.NewSubsystem(l1, l2, ram)
}

func drainRead(t *testing.T, s *memory.Subsystem, addr uint32) uint32 {
	t.Helper()
	for i := 0; i < 1000; i++ {
		v, stall, err := s.Read(addr)
		require.NoError(t, err)
		if !stall {
			return v
		}
	}
	t.Fatal("read never completed")
	return 0
}

func drainWrite(t *testing.T, s *memory.Subsystem, addr, value uint32) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		stall, err := s.Write(addr, value)
		require.NoError(t, err)
		if !stall {
			return
		}
	}
	t.Fatal("write never completed")
}

func TestWriteThenReadReturnsWrittenValue(t *testing.T) {
	s := newSubsystem(1, 4, 10)
	drainWrite(t, s, 45, 50)
	assert.Equal(t, uint32(50), drainRead(t, s, 45))
}

func TestFirstReadIsFullMissAndStallsRAMLatency(t *testing.T) {
	s := newSubsystem(1, 4, 10)
	_, stall, err := s.Read(100)
	require.NoError(t, err)
	assert.True(t, stall, "a cold read must stall for the full-miss (RAM) latency")
}

func TestReadAfterFillIsCachedAndFastHit(t *testing.T) {
	s := newSubsystem(1, 4, 10)
	drainRead(t, s, 100) // cold: installs into L1 and L2
	stalls := 0
	for {
		_, stall, err := s.Read(100)
		require.NoError(t, err)
		stalls++
		if !stall {
			break
		}
	}
	assert.LessOrEqual(t, stalls, 2, "a repeat read of the same address should hit L1 and only take L1 latency")
}

func TestWriteThroughNoAllocateOnFullMiss(t *testing.T) {
	s := newSubsystem(1, 4, 10)
	drainWrite(t, s, 200, 7)
	assert.False(t, s.L1.CheckHit(200), "write-through/no-allocate must not install on a write miss")
	assert.False(t, s.L2.CheckHit(200))
}

func TestUnrelatedReadWhileChannelBusyStallsWithoutDisturbingActiveOp(t *testing.T) {
	s := newSubsystem(1, 4, 10)
	_, stall, err := s.Read(100) // starts a 10-cycle full-miss read
	require.NoError(t, err)
	require.True(t, stall)

	// An unrelated address must stall too, and must not perturb the
	// in-flight op's countdown.
	_, stall, err = s.Read(200)
	require.NoError(t, err)
	assert.True(t, stall)

	v := drainRead(t, s, 100)
	assert.Equal(t, uint32(0), v)
}

func TestL2HitOnWriteFillsL1(t *testing.T) {
	s := newSubsystem(1, 4, 10)
	// Warm L2 (and L1) via a read, then evict from L1 only by reading a
	// different address that maps to the same L1 index but a different L2
	// index, leaving L2's copy intact.
	drainRead(t, s, 64) // L1 index space is 4 bits -> 64 aliases index 0
	drainRead(t, s, 0)  // evicts L1's line for 64 but not L2's (different L2 index)
	require.True(t, s.L2.CheckHit(64))
	require.False(t, s.L1.CheckHit(64))

	drainWrite(t, s, 64, 99)
	assert.True(t, s.L1.CheckHit(64), "an L2-hit write must fill L1 per the inclusion policy")
}
