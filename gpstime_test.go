package laz

import (
	"testing"

	"github.com/hobu-io/golaz/rangecoder"
	"github.com/stretchr/testify/require"
)

// gpsTimeRoundTrip drives a raw sequence of GPS times through a fresh
// gpsTimeCodec pair, independent of the point/header/chunk machinery, so a
// failure pinpoints the four-slot predictor itself rather than the
// container around it.
func gpsTimeRoundTrip(t *testing.T, times []float64) {
	t.Helper()
	enc := rangecoder.NewEncoder()
	c := newGPSTimeCodec()
	for _, gt := range times {
		c.compress(enc, gt)
	}
	buf := enc.Done()

	dec := rangecoder.NewDecoder(buf)
	d := newGPSTimeCodec()
	for i, want := range times {
		got := d.decompress(dec)
		require.Equal(t, want, got, "point %d", i)
	}
}

// TestGPSTimeCodecExtremeMultipliers drives a single sequence slot through a
// steady ramp, an "extreme" positive multiplier (>= gpsMulti), back to a
// steady multiplier, an "extreme" negative multiplier (<= gpsMultiMinus),
// and finally a repeated value (multiplier 0) — four of the five multiplier
// branches gpsTimeCodec.compress distinguishes once a slot's diff is
// established (the small-negative branch, gpsMultiMinus < multiplier < 0,
// is not driven here), the extreme ones of which a single ramp or
// pure-random GPS time stream never reaches.
func TestGPSTimeCodecExtremeMultipliers(t *testing.T) {
	const base = 410000.0
	const step = 0.00005
	times := []float64{
		base,
		base + step,     // establishes the active slot's diff
		base + 2*step,   // steady multiplier-1 continuation
		base + 0.03,     // multiplier >= gpsMulti: extreme-positive branch
		base + 0.03005,  // multiplier-1 continuation (one extreme step keeps the old diff)
		base + 0.00015,  // multiplier <= gpsMultiMinus: extreme-negative branch
		base + 0.00015,  // repeated value: multiplier 0
	}
	gpsTimeRoundTrip(t, times)
}

// TestGPSTimeCodecSlotSwitch interleaves two unrelated GPS-time pulses far
// enough apart that neither's bit-pattern diff fits the other's, forcing a
// full 64-bit re-encode that rotates in a second sequence slot and then
// switches back and forth between the two established slots — the
// "findSeq" slot-search path that a single monotone or single-pulse stream
// never exercises.
func TestGPSTimeCodecSlotSwitch(t *testing.T) {
	const baseA = 410000.0
	const stepA = 0.00005
	const baseB = 450000.0
	const stepB = 0.00008
	times := []float64{
		baseA,
		baseA + stepA,   // establish slot 0's diff
		baseB,           // doesn't fit slot 0: full 64-bit re-encode, rotate to slot 1
		baseB + stepB,   // establish slot 1's diff
		baseA + 2*stepA, // doesn't fit slot 1: switches back to slot 0
		baseB + 2*stepB, // doesn't fit slot 0: switches back to slot 1
	}
	gpsTimeRoundTrip(t, times)
}

// TestGPSTimeCodecZeroDiffSlotSwitch exercises the slot switch that happens
// while the newly rotated-in slot still has a zero diff: the very next
// point matches an older, already-established slot instead of the active
// one, so findSeq must walk past the active slot to find it.
func TestGPSTimeCodecZeroDiffSlotSwitch(t *testing.T) {
	const baseA = 410000.0
	const stepA = 0.00005
	const baseB = 450000.0
	times := []float64{
		baseA,
		baseA + stepA, // establish slot 0's diff
		baseB,         // doesn't fit slot 0: full 64-bit re-encode, rotate to slot 1 (diff 0)
		baseA + 2*stepA, // slot 1's diff is still 0: findSeq walks past it to slot 0
	}
	gpsTimeRoundTrip(t, times)
}

// TestFormat1MultiReturnGPSTime drives the same multi-slot GPS time pattern
// through the full container (point format 1, legacy multi-return) rather
// than the bare codec, so the predictor is also proven correct wired into
// WritePoint/ReadPoint the way every other point field is.
func TestFormat1MultiReturnGPSTime(t *testing.T) {
	const baseA = 410000.0
	const stepA = 0.00005
	const baseB = 450000.0
	const stepB = 0.00008
	gpsTimes := []float64{
		baseA, baseA + stepA, baseA + 2*stepA,
		baseA + 0.03, baseA + 0.03005,
		baseB, baseB + stepB, baseB + 2*stepB,
		baseA + 3*stepA, baseB + 3*stepB,
	}

	pts := make([]Point, len(gpsTimes))
	for i, gt := range gpsTimes {
		pts[i] = Point{
			X: int32(i), Y: int32(i * 2), Z: int32(i * 3),
			ReturnNumber: uint8(1 + i%3), NumberOfReturns: 3,
			GPSTime: gt,
		}
	}

	_, got := writeThenRead(t, Options{Format: PointFormat1}, pts)
	require.Len(t, got, len(pts))
	for i := range pts {
		pointsEqual(t, PointFormat1, 0, pts[i], got[i])
	}
}
