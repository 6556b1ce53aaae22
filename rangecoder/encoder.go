package rangecoder

// Encoder is a carryless range encoder with a 32-bit low ("base") register
// and a 32-bit range ("length") register: output is accumulated into an
// internal byte slice, and carries are propagated forward through a single
// pending byte plus a run-length of pending 0xFF bytes rather than by
// scanning backward through already-emitted output.
//
// An Encoder is not safe for concurrent use.
type Encoder struct {
	buf       []byte
	base      uint64 // 33 bits of headroom to observe carry out of bit 32
	length    uint32
	cache     byte
	cacheSize int64
}

// NewEncoder returns a ready-to-use Encoder.
func NewEncoder() *Encoder {
	e := &Encoder{}
	e.Reset()
	return e
}

// Reset clears the encoder back to its initial state, discarding any
// buffered output.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
	e.base = 0
	e.length = 0xFFFFFFFF
	e.cache = 0xFF
	e.cacheSize = 0
}

func (e *Encoder) shiftLow() {
	if uint32(e.base>>32) != 0 || e.base < 0xFF000000 {
		carry := byte(e.base >> 32)
		if e.cacheSize > 0 {
			e.buf = append(e.buf, e.cache+carry)
			for i := int64(1); i < e.cacheSize; i++ {
				e.buf = append(e.buf, 0xFF+carry)
			}
		}
		e.cache = byte(e.base >> 24)
		e.cacheSize = 0
	}
	e.cacheSize++
	e.base = (e.base << 8) & 0xFFFFFFFF
}

func (e *Encoder) renormalize() {
	for e.length < topValue {
		e.length <<= 8
		e.shiftLow()
	}
}

// EncodeBit codes a single bit against an adaptive BitModel.
func (e *Encoder) EncodeBit(m *BitModel, bit int) {
	x := m.bit0Prob * (e.length >> BMLengthShift)
	if bit == 0 {
		e.length = x
		m.bit0Count++
	} else {
		e.base += uint64(x)
		e.length -= x
	}
	m.untilUpdate--
	if m.untilUpdate == 0 {
		m.update()
	}
	e.renormalize()
}

// EncodeSymbol codes sym (0 <= sym < model's symbol count) against an
// adaptive SymbolModel.
func (e *Encoder) EncodeSymbol(m *SymbolModel, sym uint32) {
	r := e.length >> DMLengthShift
	e.base += uint64(r) * uint64(m.distribution[sym])
	if sym == m.lastSymbol {
		e.length -= r * m.distribution[sym]
	} else {
		e.length = r * (m.distribution[sym+1] - m.distribution[sym])
	}
	e.renormalize()
	m.bump(sym)
}

// EncodeDirectBits emits n bits of v (0 <= n <= 32) with no modeling,
// uniformly distributed. For n > 19 this recurses on a 16-bit low half
// first, matching the reference coder's split (a single renormalization
// pass assumes range divides cleanly into at most ~19 bits of symbols).
func (e *Encoder) EncodeDirectBits(v uint32, n uint) {
	if n > 19 {
		e.EncodeDirectBits(v&0xFFFF, 16)
		e.EncodeDirectBits(v>>16, n-16)
		return
	}
	e.length >>= n
	e.base += uint64(v) * uint64(e.length)
	e.renormalize()
}

// Done flushes the remaining interval and returns the encoded bytes. The
// Encoder must not be reused without calling Reset first.
func (e *Encoder) Done() []byte {
	for i := 0; i < 5; i++ {
		e.shiftLow()
	}
	return e.buf
}

// Len reports the number of bytes emitted so far (before Done flushes the
// final pending bytes).
func (e *Encoder) Len() int {
	return len(e.buf)
}
