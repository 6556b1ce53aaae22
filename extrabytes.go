package laz

import "github.com/hobu-io/golaz/rangecoder"

// byte10Codec compresses a single legacy extra-byte column: a changed-bit
// model followed by a 256-symbol diff model, mirroring the legacy RGB/
// gpstime codecs' change-then-correct shape.
type byte10Codec struct {
	haveLast bool
	last     byte

	changed *rangecoder.BitModel
	diff    *rangecoder.SymbolModel
}

func newByte10Codec() *byte10Codec {
	return &byte10Codec{
		changed: rangecoder.NewBitModel(),
		diff:    rangecoder.NewSymbolModel(256, nil),
	}
}

func (c *byte10Codec) reset() { *c = *newByte10Codec() }

func (c *byte10Codec) compress(enc *rangecoder.Encoder, v byte) {
	if !c.haveLast {
		c.haveLast = true
		c.last = v
		enc.EncodeDirectBits(uint32(v), 8)
		return
	}
	if v == c.last {
		enc.EncodeBit(c.changed, 0)
		return
	}
	enc.EncodeBit(c.changed, 1)
	diff := u8Fold(int(v) - int(c.last))
	enc.EncodeSymbol(c.diff, uint32(diff))
	c.last = v
}

func (c *byte10Codec) decompress(dec *rangecoder.Decoder) byte {
	if !c.haveLast {
		c.haveLast = true
		c.last = byte(dec.DecodeDirectBits(8))
		return c.last
	}
	if dec.DecodeBit(c.changed) == 0 {
		return c.last
	}
	corr := int(dec.DecodeSymbol(c.diff))
	c.last = byte(u8Fold(corr + int(c.last)))
	return c.last
}

// extraBytesCodec is one byte10Codec per declared extra-byte column.
type extraBytesCodec struct {
	cols []*byte10Codec
}

func newExtraBytesCodec(count int) *extraBytesCodec {
	c := &extraBytesCodec{cols: make([]*byte10Codec, count)}
	for i := range c.cols {
		c.cols[i] = newByte10Codec()
	}
	return c
}

func (c *extraBytesCodec) reset() {
	for _, col := range c.cols {
		col.reset()
	}
}

func (c *extraBytesCodec) compress(enc *rangecoder.Encoder, eb ExtraBytes) {
	for i, col := range c.cols {
		col.compress(enc, eb.Data[i])
	}
}

func (c *extraBytesCodec) decompress(dec *rangecoder.Decoder) ExtraBytes {
	data := make([]byte, len(c.cols))
	for i, col := range c.cols {
		data[i] = col.decompress(dec)
	}
	return ExtraBytes{Data: data}
}
