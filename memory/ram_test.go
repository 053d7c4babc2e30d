package memory_test

import (
	"testing"

	"github.com/go-pipesim/pipesim/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRAMReadWriteRoundTrip(t *testing.T) {
	ram := memory.NewRAM(13, 1, 1)
	require.NoError(t, ram.Write(45, 50))
	v, err := ram.Read(45)
	require.NoError(t, err)
	assert.Equal(t, uint32(50), v)
}

func TestRAMReadBlockAscendingOrder(t *testing.T) {
	ram := memory.NewRAM(13, 1, 1)
	for i := uint32(0); i < 4; i++ {
		require.NoError(t, ram.Write(8+i, 100+i))
	}
	block, err := ram.ReadBlock(8)
	require.NoError(t, err)
	assert.Equal(t, [4]uint32{100, 101, 102, 103}, block)
}

func TestRAMOutOfRange(t *testing.T) {
	ram := memory.NewRAM(4, 1, 1) // 16 words
	_, err := ram.Read(16)
	require.Error(t, err)
	var rangeErr *memory.AddressOutOfRangeError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestRAMLoadWordsBoundsCheck(t *testing.T) {
	ram := memory.NewRAM(4, 1, 1)
	err := ram.LoadWords(15, []uint32{1, 2})
	assert.Error(t, err)

	require.NoError(t, ram.LoadWords(0, []uint32{7, 8, 9}))
	v, _ := ram.Read(1)
	assert.Equal(t, uint32(8), v)
}
