// Package rangecoder implements the carryless range coder and adaptive
// probability models used throughout golaz's per-field codecs: a 32-bit
// low/range arithmetic coder with a bit model (two-symbol, geometric update
// cadence) and a symbol model (n-symbol, cumulative-distribution table).
//
// The coder buffers its output internally into its own byte slice rather
// than writing through a caller-supplied sink: callers that need several
// independent streams (the chunk writer, for v1.4's nine sub-streams) just
// keep one Encoder per stream and concatenate the finished byte slices
// from Done.
package rangecoder

const (
	// BMLengthShift is the fixed-point precision, in bits, of a bit
	// model's prob0 value.
	BMLengthShift = 13
	// DMLengthShift is the fixed-point precision, in bits, of a symbol
	// model's cumulative distribution table.
	DMLengthShift = 15

	// BMMaxCount is the bit-count ceiling that triggers halving a bit
	// model's counters.
	BMMaxCount = 1 << BMLengthShift
	// DMMaxCount is the total-count ceiling that triggers halving a
	// symbol model's counters.
	DMMaxCount = 1 << DMLengthShift

	// topValue is the renormalization threshold: whenever length drops
	// below this, a byte is shifted out and length is rescaled.
	topValue = uint32(1) << 24
)
