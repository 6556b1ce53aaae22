package laz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkTableFixedRoundTrip(t *testing.T) {
	entries := []chunkTableEntry{
		{size: 12345, count: 50000},
		{size: 12000, count: 50000},
		{size: 999, count: 50000},
	}
	buf := encodeChunkTable(entries, false)

	const firstChunkOffset = 1000
	got, offsets, err := decodeChunkTable(buf, firstChunkOffset)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range entries {
		require.Equal(t, entries[i].size, got[i].size)
	}

	require.Equal(t, []int64{1000, 13345, 25345, 26344}, offsets)
}

func TestChunkTableVariableRoundTrip(t *testing.T) {
	entries := []chunkTableEntry{
		{size: 500, count: 73},
		{size: 480, count: 60},
		{size: 900, count: 117},
	}
	buf := encodeChunkTable(entries, true)

	got, offsets, err := decodeVariableChunkTable(buf, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range entries {
		require.Equal(t, entries[i].size, got[i].size)
		require.Equal(t, entries[i].count, got[i].count)
	}
	require.Equal(t, []int64{0, 500, 980, 1880}, offsets)
}

func TestChunkTableEmpty(t *testing.T) {
	buf := encodeChunkTable(nil, false)
	entries, offsets, err := decodeChunkTable(buf, 42)
	require.NoError(t, err)
	require.Len(t, entries, 0)
	require.Equal(t, []int64{42}, offsets)
}

func TestChunkTableRejectsBadVersion(t *testing.T) {
	buf := make([]byte, 8)
	buf[0] = 1 // non-zero version
	_, _, err := decodeChunkTable(buf, 0)
	require.ErrorIs(t, err, ErrUnsupportedChunkTable)
}

func TestChunkTableRejectsShortBuffer(t *testing.T) {
	_, _, err := decodeChunkTable([]byte{1, 2, 3}, 0)
	require.ErrorIs(t, err, ErrUnsupportedChunkTable)
}
