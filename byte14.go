package laz

import "github.com/hobu-io/golaz/rangecoder"

// channelByte14Ctx is one scanner channel's extra-byte predictor state: one
// last-value slot and one 256-symbol diff model per declared extra-byte
// column.
type channelByte14Ctx struct {
	haveLast bool
	last     []byte
	model    []*rangecoder.SymbolModel
}

func newChannelByte14Ctx(count int) *channelByte14Ctx {
	c := &channelByte14Ctx{
		last:  make([]byte, count),
		model: make([]*rangecoder.SymbolModel, count),
	}
	for i := range c.model {
		c.model[i] = rangecoder.NewSymbolModel(256, nil)
	}
	return c
}

// byte14Codec is the v1.4 (point data record formats 6-10) extra-bytes
// codec. Unlike the legacy byte10Codec, every column's difference is coded
// unconditionally each point (no per-column changed bit); prediction state
// is shared across up to 4 scanner channels with the same "broken"
// last-value handoff as rgb14Codec and nir14Codec. See OQ-4.
type byte14Codec struct {
	count       int
	chans       [4]*channelByte14Ctx
	lastChannel int
}

func newByte14Codec(count int) *byte14Codec {
	c := &byte14Codec{count: count, lastChannel: -1}
	for i := range c.chans {
		c.chans[i] = newChannelByte14Ctx(count)
	}
	return c
}

func (c *byte14Codec) reset() {
	count := c.count
	*c = *newByte14Codec(count)
}

func (c *byte14Codec) compress(enc *rangecoder.Encoder, sc uint8, cur ExtraBytes) {
	if c.lastChannel == -1 {
		ch := c.chans[sc]
		copy(ch.last, cur.Data)
		ch.haveLast = true
		c.lastChannel = int(sc)
		for _, b := range cur.Data {
			enc.EncodeDirectBits(uint32(b), 8)
		}
		return
	}

	ch := c.chans[sc]
	lastBytes := c.chans[c.lastChannel].last
	if !ch.haveLast {
		ch.haveLast = true
		copy(ch.last, lastBytes)
		lastBytes = ch.last
	}

	for i := 0; i < c.count; i++ {
		diff := int(cur.Data[i]) - int(lastBytes[i])
		enc.EncodeSymbol(ch.model[i], uint32(u8Fold(diff)))
		lastBytes[i] = cur.Data[i]
	}

	c.lastChannel = int(sc)
}

func (c *byte14Codec) decompress(dec *rangecoder.Decoder, sc uint8) ExtraBytes {
	if c.lastChannel == -1 {
		ch := c.chans[sc]
		for i := range ch.last {
			ch.last[i] = byte(dec.DecodeDirectBits(8))
		}
		ch.haveLast = true
		c.lastChannel = int(sc)
		data := make([]byte, c.count)
		copy(data, ch.last)
		return ExtraBytes{Data: data}
	}

	ch := c.chans[sc]
	lastBytes := c.chans[c.lastChannel].last
	if int(sc) != c.lastChannel {
		c.lastChannel = int(sc)
		if !ch.haveLast {
			ch.haveLast = true
			copy(ch.last, lastBytes)
			lastBytes = c.chans[c.lastChannel].last
		}
	}

	data := make([]byte, c.count)
	for i := 0; i < c.count; i++ {
		corr := int(dec.DecodeSymbol(ch.model[i]))
		lastBytes[i] = byte(u8Fold(corr + int(lastBytes[i])))
		data[i] = lastBytes[i]
	}

	return ExtraBytes{Data: data}
}
