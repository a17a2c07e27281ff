package arena

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestAllocWithinChunk(t *testing.T) {
	a := New("test", 4096, nil)
	p, err := a.Alloc(16)
	require.NoError(t, err)
	require.NotNil(t, p)
	stats := a.Stats()
	require.EqualValues(t, 1, stats.Chunks)
	require.EqualValues(t, 16, stats.BytesUsed)
}

func TestAllocGrowsChunkChain(t *testing.T) {
	a := New("test", 64, nil)
	_, err := a.Alloc(40)
	require.NoError(t, err)
	_, err = a.Alloc(40) // doesn't fit remaining 24 bytes -> new chunk
	require.NoError(t, err)
	require.EqualValues(t, 2, a.Stats().Chunks)
}

func TestAllocLargeGoesToOversizeList(t *testing.T) {
	a := New("test", 64, nil)
	p, err := a.Alloc(128)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.EqualValues(t, 128, a.Stats().LargeBytes)
	require.NoError(t, a.FreeLarge(p))
	require.EqualValues(t, 0, a.Stats().LargeBytes)
}

func TestFreeLargeUnknownPointerErrors(t *testing.T) {
	a := New("test", 64, nil)
	var x byte
	require.Error(t, a.FreeLarge(unsafe.Pointer(&x)))
}

func TestResetRewindsFirstChunk(t *testing.T) {
	a := New("test", 64, nil)
	_, err := a.Alloc(40)
	require.NoError(t, err)
	_, err = a.Alloc(40)
	require.NoError(t, err)
	require.Greater(t, a.Stats().Chunks, int64(1))

	a.Reset()
	stats := a.Stats()
	require.EqualValues(t, 1, stats.Chunks)
	require.EqualValues(t, 0, stats.BytesUsed)
}

func TestTailAndGrowTail(t *testing.T) {
	a := New("test", 64, nil)
	p, err := a.Alloc(8)
	require.NoError(t, err)

	remaining, ok := a.Tail(p, 8)
	require.True(t, ok)
	require.Equal(t, 56, remaining)

	require.True(t, a.GrowTail(8))
	require.EqualValues(t, 16, a.Stats().BytesUsed)

	// a stale pointer is no longer the tail once more has been allocated
	_, ok = a.Tail(p, 8)
	require.False(t, ok)
}

func TestAllocNeverExhaustsUnderGrowth(t *testing.T) {
	a := New("test", 8, nil)
	// first chunk holds 8 bytes total; repeated allocation keeps linking
	// new chunks rather than returning ErrArenaExhausted.
	_, err := a.Alloc(8)
	require.NoError(t, err)
	p, err := a.Alloc(8)
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestDestroyInvalidatesArena(t *testing.T) {
	a := New("test", 64, nil)
	a.Destroy()
	require.EqualValues(t, 0, a.Stats().Chunks)
}
