// Package intcoder implements the generic integer compressor described in
// the field-codec layer: a predicted value is subtracted from the real
// value, the magnitude of the resulting correction is bucketed by bit
// length ("k"), and k itself is range-coded per caller-supplied context so
// that small, well-predicted corrections cost only a few bits while large
// ones fall back to near-raw encoding.
package intcoder

import "github.com/hobu-io/golaz/rangecoder"

// defaultDirectBits is the largest k still coded with a dedicated
// direct-symbol model rather than sign-bit-plus-raw-bits.
const defaultDirectBits = 8

// IntegerCompressor is shared by the encode and decode sides; each owns its
// own instance (same construction parameters on both ends) since model
// state diverges between an encoder and a decoder built from the same
// corr/k tables.
type IntegerCompressor struct {
	bits       uint
	contexts   uint
	directBits uint
	corrRange  int32

	kModel    []*rangecoder.SymbolModel // one per context; bits+1 symbols
	lowModel  []*rangecoder.SymbolModel // indexed 1..directBits; 1<<k symbols
	signModel []*rangecoder.BitModel    // one per context, for k > directBits

	k uint32 // most recently coded/decoded k, exposed for context chaining
}

// New returns an IntegerCompressor over the given correction width (bits,
// 8..32) and number of contexts.
func New(bits, contexts uint) *IntegerCompressor {
	return NewWithDirectBits(bits, contexts, defaultDirectBits)
}

// NewWithDirectBits is New with an explicit direct-model cutoff; New calls
// it with defaultDirectBits.
func NewWithDirectBits(bits, contexts, directBits uint) *IntegerCompressor {
	if directBits >= bits {
		directBits = bits - 1
	}
	ic := &IntegerCompressor{
		bits:       bits,
		contexts:   contexts,
		directBits: directBits,
		corrRange:  int32(1) << bits,
	}

	ic.kModel = make([]*rangecoder.SymbolModel, contexts)
	for i := range ic.kModel {
		ic.kModel[i] = rangecoder.NewSymbolModel(uint32(bits)+1, nil)
	}

	ic.lowModel = make([]*rangecoder.SymbolModel, directBits+1)
	for k := uint(1); k <= directBits; k++ {
		ic.lowModel[k] = rangecoder.NewSymbolModel(uint32(1)<<k, nil)
	}

	ic.signModel = make([]*rangecoder.BitModel, contexts)
	for i := range ic.signModel {
		ic.signModel[i] = rangecoder.NewBitModel()
	}

	return ic
}

// K reports the bit-length bucket chosen by the most recent Compress or
// Decompress call, used to bias a dependent field's context (e.g. dy's
// context is biased by dx's k).
func (ic *IntegerCompressor) K() uint32 {
	return ic.k
}

func (ic *IntegerCompressor) fold(corr int32) int32 {
	half := ic.corrRange >> 1
	if corr < -half {
		corr += ic.corrRange
	} else if corr >= half {
		corr -= ic.corrRange
	}
	return corr
}

func bitLength(v uint32) uint32 {
	n := uint32(0)
	for v > 0 {
		v >>= 1
		n++
	}
	return n
}

// Compress range-codes real-predicted under the given context.
func (ic *IntegerCompressor) Compress(enc *rangecoder.Encoder, predicted, real int32, context uint32) {
	corr := ic.fold(real - predicted)

	if corr == 0 {
		ic.k = 0
		enc.EncodeSymbol(ic.kModel[context], 0)
		return
	}

	neg := corr < 0
	mag := uint32(corr)
	if neg {
		mag = uint32(-corr)
	}
	k := bitLength(mag)
	ic.k = k
	enc.EncodeSymbol(ic.kModel[context], k)

	low := uint32(1) << (k - 1)
	offset := mag - low // offset in [0, low)

	if k <= uint32(ic.directBits) {
		n := low // number of values per sign
		var symbol uint32
		if neg {
			symbol = offset
		} else {
			symbol = n + offset
		}
		enc.EncodeSymbol(ic.lowModel[k], symbol)
		return
	}

	bit := 0
	if neg {
		bit = 1
	}
	enc.EncodeBit(ic.signModel[context], bit)
	enc.EncodeDirectBits(offset, uint(k-1))
}

// Decompress mirrors Compress.
func (ic *IntegerCompressor) Decompress(dec *rangecoder.Decoder, predicted int32, context uint32) int32 {
	k := dec.DecodeSymbol(ic.kModel[context])
	ic.k = k

	if k == 0 {
		return ic.unfold(predicted, 0)
	}

	low := uint32(1) << (k - 1)

	var corr int32
	if k <= uint32(ic.directBits) {
		n := low
		symbol := dec.DecodeSymbol(ic.lowModel[k])
		var mag uint32
		var neg bool
		if symbol < n {
			neg = true
			mag = low + symbol
		} else {
			neg = false
			mag = low + (symbol - n)
		}
		if neg {
			corr = -int32(mag)
		} else {
			corr = int32(mag)
		}
	} else {
		neg := dec.DecodeBit(ic.signModel[context]) == 1
		offset := dec.DecodeDirectBits(uint(k - 1))
		mag := low + offset
		if neg {
			corr = -int32(mag)
		} else {
			corr = int32(mag)
		}
	}

	return ic.unfold(predicted, corr)
}

// unfold reverses fold's bias: predicted + corr recovers the real value
// directly, since fold only ever rewraps the correction, not the value
// itself. Callers whose field is narrower than ic.bits (e.g. a 16-bit
// intensity field driven by a W=16 compressor) are responsible for masking
// the result into that field's native width.
func (ic *IntegerCompressor) unfold(predicted, corr int32) int32 {
	return predicted + corr
}
