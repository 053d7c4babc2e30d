// Package memory implements the two-level memory hierarchy: a flat,
// latency-gated main memory (RAM), direct-mapped L1/L2 cache levels with
// write-through/no-allocate policy, and the Subsystem façade that drives
// the per-address stall state machine.
package memory

import "fmt"

// RAM is a flat, word-addressable store of 2^addressSize words, all
// zero-initialized. Reads and writes are latency-gated: Subsystem is the
// only caller that observes the configured latency as a cycle count, RAM
// itself is timeless — it just stores words.
type RAM struct {
	words        []uint32
	addressSize  uint
	readLatency  uint32
	writeLatency uint32
}

// NewRAM allocates a RAM of 2^addressSize words with the given read/write
// latencies (in cycles).
func NewRAM(addressSize uint, readLatency, writeLatency uint32) *RAM {
	return &RAM{
		words:        make([]uint32, uint64(1)<<addressSize),
		addressSize:  addressSize,
		readLatency:  readLatency,
		writeLatency: writeLatency,
	}
}

// Size returns the number of addressable words.
func (m *RAM) Size() uint32 {
	return uint32(len(m.words))
}

// ReadLatency returns the configured read latency in cycles.
func (m *RAM) ReadLatency() uint32 { return m.readLatency }

// WriteLatency returns the configured write latency in cycles.
func (m *RAM) WriteLatency() uint32 { return m.writeLatency }

func (m *RAM) checkBounds(addr uint32) error {
	if addr >= m.Size() {
		return &AddressOutOfRangeError{Address: addr, Limit: m.Size()}
	}
	return nil
}

// Read returns the word at addr.
func (m *RAM) Read(addr uint32) (uint32, error) {
	if err := m.checkBounds(addr); err != nil {
		return 0, err
	}
	return m.words[addr], nil
}

// ReadBlock returns the four contiguous words starting at addrAligned4, in
// ascending-address order. addrAligned4 must already be 4-word aligned.
func (m *RAM) ReadBlock(addrAligned4 uint32) ([4]uint32, error) {
	var block [4]uint32
	if addrAligned4%4 != 0 {
		return block, fmt.Errorf("ReadBlock: address 0x%X is not block-aligned", addrAligned4)
	}
	for i := uint32(0); i < 4; i++ {
		v, err := m.Read(addrAligned4 + i)
		if err != nil {
			return block, err
		}
		block[i] = v
	}
	return block, nil
}

// Write stores value at addr.
func (m *RAM) Write(addr uint32, value uint32) error {
	if err := m.checkBounds(addr); err != nil {
		return err
	}
	m.words[addr] = value
	return nil
}

// LoadWords writes a contiguous slice of words starting at base, used by
// the program loader to ingest a binary image. Returns AddressOutOfRangeError
// if the slice would run past the end of RAM.
func (m *RAM) LoadWords(base uint32, words []uint32) error {
	if uint64(base)+uint64(len(words)) > uint64(m.Size()) {
		return &AddressOutOfRangeError{Address: base + uint32(len(words)), Limit: m.Size()}
	}
	for i, w := range words {
		m.words[base+uint32(i)] = w
	}
	return nil
}

// Reset zeroes every word.
func (m *RAM) Reset() {
	for i := range m.words {
		m.words[i] = 0
	}
}
