package laz

import (
	"math"

	"github.com/hobu-io/golaz/internal/intcoder"
	"github.com/hobu-io/golaz/rangecoder"
)

// GPS-time multi-sequence predictor constants.
const (
	gpsMulti         = 500
	gpsMultiMinus    = -10
	gpsMultiCodeFull = gpsMulti - gpsMultiMinus + 1 // 511
	gpsMultiTotal    = gpsMulti - gpsMultiMinus + 5 // 515
)

func gpsTimeBits(t float64) int64     { return int64(math.Float64bits(t)) }
func gpsTimeFromBits(b int64) float64 { return math.Float64frombits(uint64(b)) }

// gpsTimeCodec implements the legacy (point formats 1/3) multi-sequence GPS
// time predictor: four interleaved sequence slots, each tracking its own
// last value, last diff, and a run-length of consecutive "extreme"
// multipliers. A point usually continues the active slot's diff; a jump
// that doesn't fit first tries the other three slots (a pulse's later
// returns tend to repeat an earlier pulse's spacing) before falling back to
// a full 64-bit re-encode, which also rotates a fresh slot into use.
type gpsTimeCodec struct {
	haveFirst bool

	lastGPSSeq   uint32
	nextGPSSeq   uint32
	lastGPSTime  [4]int64 // float64 bit patterns
	lastGPSDiff  [4]int32
	multiExtreme [4]int32

	gpstimeMulti    *rangecoder.SymbolModel // gpsMultiTotal symbols
	gpstimeZeroDiff *rangecoder.SymbolModel // 5 symbols
	gpstimeCompr    *intcoder.IntegerCompressor // W=32, C=9
}

func newGPSTimeCodec() *gpsTimeCodec {
	return &gpsTimeCodec{
		gpstimeMulti:    rangecoder.NewSymbolModel(gpsMultiTotal, nil),
		gpstimeZeroDiff: rangecoder.NewSymbolModel(5, nil),
		gpstimeCompr:    intcoder.New(32, 9),
	}
}

func (c *gpsTimeCodec) reset() { *c = *newGPSTimeCodec() }

// findSeq looks for a GPS-time sequence slot, starting at (lastGPSSeq+start)
// mod 4, whose stored time minus gpsTime fits a signed 32-bit difference.
// Returns the slot offset found (0..3) or -1 if none does.
func (c *gpsTimeCodec) findSeq(bits int64, start int) (diff int32, idx int) {
	for i := start; i < 4; i++ {
		testSeq := (c.lastGPSSeq + uint32(i)) & 3
		diff64 := bits - c.lastGPSTime[testSeq]
		d := int32(diff64)
		if int64(d) == diff64 {
			return d, i
		}
	}
	return 0, -1
}

func (c *gpsTimeCodec) compress(enc *rangecoder.Encoder, t float64) {
	bits := gpsTimeBits(t)

	if !c.haveFirst {
		enc.EncodeDirectBits(uint32(bits), 32)
		enc.EncodeDirectBits(uint32(bits>>32), 32)
		c.lastGPSTime[0] = bits
		c.haveFirst = true
		return
	}

	for {
		if c.lastGPSDiff[c.lastGPSSeq] == 0 {
			diff, idx := c.findSeq(bits, 0)
			switch {
			case idx == 0:
				enc.EncodeSymbol(c.gpstimeZeroDiff, 0)
				c.gpstimeCompr.Compress(enc, 0, diff, 0)
				c.lastGPSDiff[c.lastGPSSeq] = diff
				c.multiExtreme[c.lastGPSSeq] = 0
			case idx > 0:
				enc.EncodeSymbol(c.gpstimeZeroDiff, uint32(idx+1))
				c.lastGPSSeq = (c.lastGPSSeq + uint32(idx)) & 3
				continue
			default:
				enc.EncodeSymbol(c.gpstimeZeroDiff, 1)
				hi := int32(c.lastGPSTime[c.lastGPSSeq] >> 32)
				c.gpstimeCompr.Compress(enc, hi, int32(bits>>32), 8)
				enc.EncodeDirectBits(uint32(bits), 32)
				c.nextGPSSeq = (c.nextGPSSeq + 1) & 3
				c.lastGPSSeq = c.nextGPSSeq
				c.lastGPSDiff[c.lastGPSSeq] = 0
				c.multiExtreme[c.lastGPSSeq] = 0
			}
			c.lastGPSTime[c.lastGPSSeq] = bits
			return
		}

		diff64 := bits - c.lastGPSTime[c.lastGPSSeq]
		diff := int32(diff64)
		if int64(diff) == diff64 {
			var multi int32
			if c.lastGPSDiff[c.lastGPSSeq] != 0 {
				multi = int32(math.Round(float64(diff) / float64(c.lastGPSDiff[c.lastGPSSeq])))
			}
			switch {
			case multi > 0 && multi < gpsMulti:
				tag := uint32(1)
				if multi > 1 {
					tag = 2
					if multi >= 10 {
						tag = 3
					}
				}
				enc.EncodeSymbol(c.gpstimeMulti, uint32(multi))
				c.gpstimeCompr.Compress(enc, multi*c.lastGPSDiff[c.lastGPSSeq], diff, tag)
				if tag == 1 {
					c.multiExtreme[c.lastGPSSeq] = 0
				}
			case multi >= gpsMulti:
				enc.EncodeSymbol(c.gpstimeMulti, uint32(gpsMulti))
				c.gpstimeCompr.Compress(enc, gpsMulti*c.lastGPSDiff[c.lastGPSSeq], diff, 4)
				c.multiExtreme[c.lastGPSSeq]++
				if c.multiExtreme[c.lastGPSSeq] > 3 {
					c.multiExtreme[c.lastGPSSeq] = 0
					c.lastGPSDiff[c.lastGPSSeq] = diff
				}
			case multi < 0 && multi > gpsMultiMinus:
				enc.EncodeSymbol(c.gpstimeMulti, uint32(gpsMulti-multi))
				c.gpstimeCompr.Compress(enc, multi*c.lastGPSDiff[c.lastGPSSeq], diff, 5)
			case multi <= gpsMultiMinus && multi != 0:
				enc.EncodeSymbol(c.gpstimeMulti, uint32(gpsMulti-gpsMultiMinus))
				c.gpstimeCompr.Compress(enc, int32(gpsMultiMinus)*c.lastGPSDiff[c.lastGPSSeq], diff, 6)
				c.multiExtreme[c.lastGPSSeq]++
				if c.multiExtreme[c.lastGPSSeq] > 3 {
					c.multiExtreme[c.lastGPSSeq] = 0
					c.lastGPSDiff[c.lastGPSSeq] = diff
				}
			default:
				enc.EncodeSymbol(c.gpstimeMulti, 0)
				c.gpstimeCompr.Compress(enc, 0, diff, 7)
				c.multiExtreme[c.lastGPSSeq]++
				if c.multiExtreme[c.lastGPSSeq] > 3 {
					c.multiExtreme[c.lastGPSSeq] = 0
					c.lastGPSDiff[c.lastGPSSeq] = diff
				}
			}
			c.lastGPSTime[c.lastGPSSeq] = bits
			return
		}

		_, idx := c.findSeq(bits, 1)
		if idx > 0 {
			enc.EncodeSymbol(c.gpstimeMulti, uint32(gpsMultiCodeFull+idx))
			c.lastGPSSeq = (c.lastGPSSeq + uint32(idx)) & 3
			continue
		}
		enc.EncodeSymbol(c.gpstimeMulti, uint32(gpsMultiCodeFull))
		hi := int32(c.lastGPSTime[c.lastGPSSeq] >> 32)
		c.gpstimeCompr.Compress(enc, hi, int32(bits>>32), 8)
		enc.EncodeDirectBits(uint32(bits), 32)
		c.nextGPSSeq = (c.nextGPSSeq + 1) & 3
		c.lastGPSSeq = c.nextGPSSeq
		c.lastGPSDiff[c.lastGPSSeq] = 0
		c.multiExtreme[c.lastGPSSeq] = 0
		c.lastGPSTime[c.lastGPSSeq] = bits
		return
	}
}

func (c *gpsTimeCodec) decompress(dec *rangecoder.Decoder) float64 {
	if !c.haveFirst {
		lo := dec.DecodeDirectBits(32)
		hi := dec.DecodeDirectBits(32)
		bits := int64(lo) | int64(hi)<<32
		c.lastGPSTime[0] = bits
		c.haveFirst = true
		return gpsTimeFromBits(bits)
	}

	for {
		if c.lastGPSDiff[c.lastGPSSeq] == 0 {
			multi := dec.DecodeSymbol(c.gpstimeZeroDiff)
			switch {
			case multi == 0:
				sym := c.gpstimeCompr.Decompress(dec, 0, 0)
				c.lastGPSDiff[c.lastGPSSeq] = sym
				c.lastGPSTime[c.lastGPSSeq] += int64(sym)
				c.multiExtreme[c.lastGPSSeq] = 0
			case multi == 1:
				c.nextGPSSeq = (c.nextGPSSeq + 1) & 3
				hi := c.gpstimeCompr.Decompress(dec, int32(c.lastGPSTime[c.lastGPSSeq]>>32), 8)
				lo := dec.DecodeDirectBits(32)
				c.lastGPSTime[c.nextGPSSeq] = int64(hi)<<32 | int64(lo)
				c.lastGPSSeq = c.nextGPSSeq
				c.lastGPSDiff[c.lastGPSSeq] = 0
				c.multiExtreme[c.lastGPSSeq] = 0
			default:
				c.lastGPSSeq = (c.lastGPSSeq + multi - 1) & 3
				continue
			}
			return gpsTimeFromBits(c.lastGPSTime[c.lastGPSSeq])
		}

		multi := dec.DecodeSymbol(c.gpstimeMulti)
		var diff int32
		switch {
		case multi == 1:
			diff = c.gpstimeCompr.Decompress(dec, c.lastGPSDiff[c.lastGPSSeq], 1)
			c.multiExtreme[c.lastGPSSeq] = 0
			c.lastGPSTime[c.lastGPSSeq] += int64(diff)
		case multi < uint32(gpsMultiCodeFull):
			switch {
			case multi == 0:
				diff = c.gpstimeCompr.Decompress(dec, 0, 7)
				c.multiExtreme[c.lastGPSSeq]++
				if c.multiExtreme[c.lastGPSSeq] > 3 {
					c.multiExtreme[c.lastGPSSeq] = 0
					c.lastGPSDiff[c.lastGPSSeq] = diff
				}
			case multi < uint32(gpsMulti):
				tag := uint32(2)
				if multi >= 10 {
					tag = 3
				}
				diff = c.gpstimeCompr.Decompress(dec, int32(multi)*c.lastGPSDiff[c.lastGPSSeq], tag)
			case multi == uint32(gpsMulti):
				diff = c.gpstimeCompr.Decompress(dec, gpsMulti*c.lastGPSDiff[c.lastGPSSeq], 4)
				c.multiExtreme[c.lastGPSSeq]++
				if c.multiExtreme[c.lastGPSSeq] > 3 {
					c.multiExtreme[c.lastGPSSeq] = 0
					c.lastGPSDiff[c.lastGPSSeq] = diff
				}
			default:
				m := int32(gpsMulti) - int32(multi)
				if m > gpsMultiMinus {
					diff = c.gpstimeCompr.Decompress(dec, m*c.lastGPSDiff[c.lastGPSSeq], 5)
				} else {
					diff = c.gpstimeCompr.Decompress(dec, int32(gpsMultiMinus)*c.lastGPSDiff[c.lastGPSSeq], 6)
					c.multiExtreme[c.lastGPSSeq]++
					if c.multiExtreme[c.lastGPSSeq] > 3 {
						c.multiExtreme[c.lastGPSSeq] = 0
						c.lastGPSDiff[c.lastGPSSeq] = diff
					}
				}
			}
			c.lastGPSTime[c.lastGPSSeq] += int64(diff)
		case multi == uint32(gpsMultiCodeFull):
			c.nextGPSSeq = (c.nextGPSSeq + 1) & 3
			hi := c.gpstimeCompr.Decompress(dec, int32(c.lastGPSTime[c.lastGPSSeq]>>32), 8)
			lo := dec.DecodeDirectBits(32)
			c.lastGPSTime[c.nextGPSSeq] = int64(hi)<<32 | int64(lo)
			c.lastGPSSeq = c.nextGPSSeq
			c.lastGPSDiff[c.lastGPSSeq] = 0
			c.multiExtreme[c.lastGPSSeq] = 0
		default:
			c.lastGPSSeq = (c.lastGPSSeq + multi - uint32(gpsMultiCodeFull)) & 3
			continue
		}
		return gpsTimeFromBits(c.lastGPSTime[c.lastGPSSeq])
	}
}
