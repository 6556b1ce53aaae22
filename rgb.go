package laz

import "github.com/hobu-io/golaz/rangecoder"

// u8Fold wraps a byte-difference into [0, 255] by a single modulo-256
// correction (differences between two bytes always fit in (-256, 256)).
func u8Fold(n int) int {
	switch {
	case n < 0:
		return n + 256
	case n > 255:
		return n - 256
	default:
		return n
	}
}

// u8Clamp clamps n into [0, 255].
func u8Clamp(n int) int {
	switch {
	case n < 0:
		return 0
	case n > 255:
		return 255
	default:
		return n
	}
}

// rgbCodec implements the legacy (point formats 2/3) RGB color codec: a
// 7-bit "changed" mask selects which low/high bytes of each channel moved;
// bit 6 is set when green or blue differs from red. With bit 6 clear only
// red is stored and green/blue are copied from it; with bit 6 set the
// changed green/blue bytes are coded as corrections against a clamped
// prediction from red's change.
type rgbCodec struct {
	haveLast bool
	last     RGB

	byteUsed *rangecoder.SymbolModel // 128 symbols
	diff0    *rangecoder.SymbolModel // red low byte
	diff1    *rangecoder.SymbolModel // red high byte
	diff2    *rangecoder.SymbolModel // green low byte correction
	diff3    *rangecoder.SymbolModel // green high byte correction
	diff4    *rangecoder.SymbolModel // blue low byte correction
	diff5    *rangecoder.SymbolModel // blue high byte correction
}

func newRGBCodec() *rgbCodec {
	return &rgbCodec{
		byteUsed: rangecoder.NewSymbolModel(128, nil),
		diff0:    rangecoder.NewSymbolModel(256, nil),
		diff1:    rangecoder.NewSymbolModel(256, nil),
		diff2:    rangecoder.NewSymbolModel(256, nil),
		diff3:    rangecoder.NewSymbolModel(256, nil),
		diff4:    rangecoder.NewSymbolModel(256, nil),
		diff5:    rangecoder.NewSymbolModel(256, nil),
	}
}

func (c *rgbCodec) reset() { *c = *newRGBCodec() }

func colorDiffBits(a, b RGB) uint32 {
	flagDiff := func(x, y, f uint16) uint32 {
		if (x^y)&f != 0 {
			return 1
		}
		return 0
	}
	r := flagDiff(a.R, b.R, 0x00FF) << 0
	r |= flagDiff(a.R, b.R, 0xFF00) << 1
	r |= flagDiff(a.G, b.G, 0x00FF) << 2
	r |= flagDiff(a.G, b.G, 0xFF00) << 3
	r |= flagDiff(a.B, b.B, 0x00FF) << 4
	r |= flagDiff(a.B, b.B, 0xFF00) << 5
	cross := flagDiff(b.R, b.G, 0x00FF) | flagDiff(b.R, b.B, 0x00FF) |
		flagDiff(b.R, b.G, 0xFF00) | flagDiff(b.R, b.B, 0xFF00)
	r |= cross << 6
	return r
}

func (c *rgbCodec) compress(enc *rangecoder.Encoder, cur RGB) {
	if !c.haveLast {
		c.haveLast = true
		c.last = cur
		enc.EncodeDirectBits(uint32(cur.R), 16)
		enc.EncodeDirectBits(uint32(cur.G), 16)
		enc.EncodeDirectBits(uint32(cur.B), 16)
		return
	}

	sym := colorDiffBits(c.last, cur)
	enc.EncodeSymbol(c.byteUsed, sym)

	diffL, diffH := 0, 0

	if sym&(1<<0) != 0 {
		diffL = int(cur.R&0xFF) - int(c.last.R&0xFF)
		enc.EncodeSymbol(c.diff0, uint32(u8Fold(diffL)))
	}
	if sym&(1<<1) != 0 {
		diffH = int(cur.R>>8) - int(c.last.R>>8)
		enc.EncodeSymbol(c.diff1, uint32(u8Fold(diffH)))
	}

	if sym&(1<<6) != 0 {
		if sym&(1<<2) != 0 {
			corr := int(cur.G&0xFF) - u8Clamp(diffL+int(c.last.G&0xFF))
			enc.EncodeSymbol(c.diff2, uint32(u8Fold(corr)))
		}
		if sym&(1<<4) != 0 {
			diffL = (diffL + int(cur.G&0xFF) - int(c.last.G&0xFF)) / 2
			corr := int(cur.B&0xFF) - u8Clamp(diffL+int(c.last.B&0xFF))
			enc.EncodeSymbol(c.diff4, uint32(u8Fold(corr)))
		}
		if sym&(1<<3) != 0 {
			corr := int(cur.G>>8) - u8Clamp(diffH+int(c.last.G>>8))
			enc.EncodeSymbol(c.diff3, uint32(u8Fold(corr)))
		}
		if sym&(1<<5) != 0 {
			diffH = (diffH + int(cur.G>>8) - int(c.last.G>>8)) / 2
			corr := int(cur.B>>8) - u8Clamp(diffH+int(c.last.B>>8))
			enc.EncodeSymbol(c.diff5, uint32(u8Fold(corr)))
		}
	}

	c.last = cur
}

func (c *rgbCodec) decompress(dec *rangecoder.Decoder) RGB {
	if !c.haveLast {
		c.haveLast = true
		var cur RGB
		cur.R = uint16(dec.DecodeDirectBits(16))
		cur.G = uint16(dec.DecodeDirectBits(16))
		cur.B = uint16(dec.DecodeDirectBits(16))
		c.last = cur
		return cur
	}

	sym := dec.DecodeSymbol(c.byteUsed)
	var cur RGB
	diff := 0

	if sym&(1<<0) != 0 {
		corr := int(dec.DecodeSymbol(c.diff0))
		cur.R = uint16(u8Fold(corr+int(c.last.R&0xFF))) & 0xFF
	} else {
		cur.R = c.last.R & 0xFF
	}

	if sym&(1<<1) != 0 {
		corr := int(dec.DecodeSymbol(c.diff1))
		cur.R |= uint16(u8Fold(corr+int(c.last.R>>8))) << 8
	} else {
		cur.R |= c.last.R & 0xFF00
	}

	if sym&(1<<6) != 0 {
		diff = int(cur.R&0xFF) - int(c.last.R&0xFF)

		if sym&(1<<2) != 0 {
			corr := int(dec.DecodeSymbol(c.diff2))
			cur.G = uint16(u8Fold(corr+u8Clamp(diff+int(c.last.G&0xFF)))) & 0xFF
		} else {
			cur.G = c.last.G & 0xFF
		}

		if sym&(1<<4) != 0 {
			corr := int(dec.DecodeSymbol(c.diff4))
			diff = (diff + int(cur.G&0xFF) - int(c.last.G&0xFF)) / 2
			cur.B = uint16(u8Fold(corr+u8Clamp(diff+int(c.last.B&0xFF)))) & 0xFF
		} else {
			cur.B = c.last.B & 0xFF
		}

		diff = int(cur.R>>8) - int(c.last.R>>8)
		if sym&(1<<3) != 0 {
			corr := int(dec.DecodeSymbol(c.diff3))
			cur.G |= uint16(u8Fold(corr+u8Clamp(diff+int(c.last.G>>8)))) << 8
		} else {
			cur.G |= c.last.G & 0xFF00
		}

		if sym&(1<<5) != 0 {
			corr := int(dec.DecodeSymbol(c.diff5))
			diff = (diff + int(cur.G>>8) - int(c.last.G>>8)) / 2
			cur.B |= uint16(u8Fold(corr+u8Clamp(diff+int(c.last.B>>8)))) << 8
		} else {
			cur.B |= c.last.B & 0xFF00
		}
	} else {
		cur.G = cur.R
		cur.B = cur.R
	}

	c.last = cur
	return cur
}
