package laz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderMarshalUnmarshalV12(t *testing.T) {
	h := &Header{
		VersionMajor: 1, VersionMinor: 2,
		HeaderSize: headerSizeV12, PointOffset: 300,
		PointFormatID: 0x83, PointRecordLength: 20, PointCount: 17,
		ScaleX: 0.01, ScaleY: 0.01, ScaleZ: 0.001,
		OffsetX: 100, OffsetY: 200, OffsetZ: 0,
		MinX: -5, MaxX: 5, MinY: -10, MaxY: 10, MinZ: -1, MaxZ: 1,
	}
	copy(h.SystemIdentifier[:], "golaz")

	buf := h.marshal()
	require.Len(t, buf, headerSizeV12)

	got, err := unmarshalHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h.VersionMajor, got.VersionMajor)
	require.Equal(t, h.PointOffset, got.PointOffset)
	require.Equal(t, h.PointFormatID, got.PointFormatID)
	require.Equal(t, h.PointCount, got.PointCount)
	require.Equal(t, h.ScaleX, got.ScaleX)
	require.Equal(t, h.MinX, got.MinX)
	require.Equal(t, h.MaxX, got.MaxX)
	require.Equal(t, h.MinY, got.MinY)
	require.Equal(t, h.MaxY, got.MaxY)
	require.Equal(t, h.MinZ, got.MinZ)
	require.Equal(t, h.MaxZ, got.MaxZ)
}

// TestHeaderMinMaxWireOrder pins down the interleaved max/min-per-axis wire
// layout the LAS spec uses, which does not match this struct's field order.
func TestHeaderMinMaxWireOrder(t *testing.T) {
	h := &Header{MinX: 1, MaxX: 2, MinY: 3, MaxY: 4, MinZ: 5, MaxZ: 6}
	buf := h.marshal()
	require.Equal(t, float64(2), getFloat64(buf[179:187])) // MaxX first
	require.Equal(t, float64(1), getFloat64(buf[187:195])) // then MinX
	require.Equal(t, float64(4), getFloat64(buf[195:203]))
	require.Equal(t, float64(3), getFloat64(buf[203:211]))
	require.Equal(t, float64(6), getFloat64(buf[211:219]))
	require.Equal(t, float64(5), getFloat64(buf[219:227]))
}

func TestHeaderV14Fields(t *testing.T) {
	h := &Header{
		VersionMajor: 1, VersionMinor: 4,
		EVLROffset: 999, EVLRCount: 2, PointCount14: 123456789,
	}
	h.PointsByReturn14[0] = 111
	h.PointsByReturn14[14] = 222

	buf := h.marshal()
	require.Len(t, buf, headerSizeV14)

	got, err := unmarshalHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h.EVLROffset, got.EVLROffset)
	require.Equal(t, h.EVLRCount, got.EVLRCount)
	require.Equal(t, h.PointCount14, got.PointCount14)
	require.Equal(t, h.PointsByReturn14, got.PointsByReturn14)
}

func TestUnmarshalHeaderRejectsBadMagic(t *testing.T) {
	buf := make([]byte, headerSizeV12)
	copy(buf, "LAZF")
	_, err := unmarshalHeader(buf)
	require.ErrorIs(t, err, ErrMagicMismatch)
}

func TestUpdateMinMax(t *testing.T) {
	h := &Header{MinX: 1, MaxX: 1, MinY: 1, MaxY: 1, MinZ: 1, MaxZ: 1}
	h.updateMinMax(-5, 20, 0.5)
	require.Equal(t, -5.0, h.MinX)
	require.Equal(t, 1.0, h.MaxX)
	require.Equal(t, 1.0, h.MinY)
	require.Equal(t, 20.0, h.MaxY)
	require.Equal(t, 0.5, h.MinZ)
	require.Equal(t, 1.0, h.MaxZ)
}
