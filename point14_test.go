package laz

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPoint14MultiChannelInterleave exercises the four-scanner-channel
// interleaving a v1.4 point codec tracks: consecutive points bounce between
// channels so every "adopt last channel's state" and "channel changed" path
// in point14Codec gets driven, not just the single-channel steady state.
func TestPoint14MultiChannelInterleave(t *testing.T) {
	r := rand.New(rand.NewSource(1400))
	const n = 400
	pts := make([]Point, n)
	channels := []uint8{0, 1, 2, 3}
	for i := range pts {
		pt := randomPoint(r, PointFormat8, 0)
		pt.ScannerChannel = channels[i%len(channels)]
		pts[i] = pt
	}

	_, got := writeThenRead(t, Options{Format: PointFormat8, ChunkSize: 97}, pts)
	require.Len(t, got, n)
	for i := range pts {
		pointsEqual(t, PointFormat8, 0, pts[i], got[i])
	}
}

// TestPoint14GPSTimeStateMachine drives the GPS-time four-slot sequence
// codec through its distinct paths: a repeated value (coded by the
// GPS-time-changed bit alone), a first diff on a slot with no diff yet, a
// constant-rate ramp (multiplier of the last diff), and an arbitrary jump
// that forces a full 64-bit re-encode.
func TestPoint14GPSTimeStateMachine(t *testing.T) {
	base := 500000.0
	gpsTimes := []float64{
		base, base, // repeated: GPS-time-changed bit clear
		base + 0.001, // first diff on the slot
		base + 0.002, base + 0.003, base + 0.004, // constant-rate ramp
		base + 0.004, // repeated again mid-ramp
		base + 1000000.5, // arbitrary jump: full 64-bit path
		base + 1000000.501, base + 1000000.502, // resume a ramp after the jump
	}

	pts := make([]Point, len(gpsTimes))
	for i, gt := range gpsTimes {
		pts[i] = Point{
			X: int32(i), Y: int32(i * 2), Z: int32(i * 3),
			ReturnNumber: 1, NumberOfReturns: 1,
			GPSTime: gt,
		}
	}

	_, got := writeThenRead(t, Options{Format: PointFormat6}, pts)
	require.Len(t, got, len(pts))
	for i := range pts {
		require.Equal(t, pts[i].GPSTime, got[i].GPSTime)
	}
}
