package laz

import "github.com/hobu-io/golaz/rangecoder"

// channelNIRCtx is one scanner channel's near-infrared predictor state.
type channelNIRCtx struct {
	haveLast bool
	last     NIR14

	usedModel *rangecoder.SymbolModel    // 4 symbols: low/high byte changed
	diffModel [2]*rangecoder.SymbolModel // 256 symbols each
}

func newChannelNIRCtx() *channelNIRCtx {
	c := &channelNIRCtx{usedModel: rangecoder.NewSymbolModel(4, nil)}
	for i := range c.diffModel {
		c.diffModel[i] = rangecoder.NewSymbolModel(256, nil)
	}
	return c
}

// nir14Codec is the v1.4 (point data record format 8) near-infrared codec.
// Structurally identical to rgb14Codec's per-channel handoff (see OQ-4),
// but over a single 16-bit value instead of three color channels.
type nir14Codec struct {
	chans       [4]*channelNIRCtx
	lastChannel int
}

func newNIR14Codec() *nir14Codec {
	c := &nir14Codec{lastChannel: -1}
	for i := range c.chans {
		c.chans[i] = newChannelNIRCtx()
	}
	return c
}

func (c *nir14Codec) reset() { *c = *newNIR14Codec() }

func (c *nir14Codec) compress(enc *rangecoder.Encoder, sc uint8, cur NIR14) {
	if c.lastChannel == -1 {
		ch := c.chans[sc]
		ch.last = cur
		ch.haveLast = true
		c.lastChannel = int(sc)
		enc.EncodeDirectBits(uint32(cur.NIR), 16)
		return
	}

	ch := c.chans[sc]
	pLast := &c.chans[c.lastChannel].last
	if !ch.haveLast {
		ch.haveLast = true
		ch.last = *pLast
		pLast = &ch.last
	}
	lastNIR := *pLast

	lowChanged := (lastNIR.NIR & 0xFF) != (cur.NIR & 0xFF)
	highChanged := (lastNIR.NIR >> 8) != (cur.NIR >> 8)
	sym := uint32(0)
	if lowChanged {
		sym |= 1 << 0
	}
	if highChanged {
		sym |= 1 << 1
	}
	enc.EncodeSymbol(ch.usedModel, sym)

	if lowChanged {
		diff := int(cur.NIR&0xFF) - int(lastNIR.NIR&0xFF)
		enc.EncodeSymbol(ch.diffModel[0], uint32(u8Fold(diff)))
	}
	if highChanged {
		diff := int(cur.NIR>>8) - int(lastNIR.NIR>>8)
		enc.EncodeSymbol(ch.diffModel[1], uint32(u8Fold(diff)))
	}

	*pLast = cur
	c.lastChannel = int(sc)
}

func (c *nir14Codec) decompress(dec *rangecoder.Decoder, sc uint8) NIR14 {
	if c.lastChannel == -1 {
		var cur NIR14
		cur.NIR = uint16(dec.DecodeDirectBits(16))
		ch := c.chans[sc]
		ch.last = cur
		ch.haveLast = true
		c.lastChannel = int(sc)
		return cur
	}

	ch := c.chans[sc]
	pLast := &c.chans[c.lastChannel].last
	if int(sc) != c.lastChannel {
		c.lastChannel = int(sc)
		if !ch.haveLast {
			ch.haveLast = true
			ch.last = *pLast
			pLast = &c.chans[c.lastChannel].last
		}
	}
	lastNIR := *pLast

	sym := dec.DecodeSymbol(ch.usedModel)
	var cur NIR14

	if sym&(1<<0) != 0 {
		corr := int(dec.DecodeSymbol(ch.diffModel[0]))
		cur.NIR = uint16(u8Fold(corr+int(lastNIR.NIR&0xFF))) & 0xFF
	} else {
		cur.NIR = lastNIR.NIR & 0xFF
	}
	if sym&(1<<1) != 0 {
		corr := int(dec.DecodeSymbol(ch.diffModel[1]))
		cur.NIR |= uint16(u8Fold(corr+int(lastNIR.NIR>>8))) << 8
	} else {
		cur.NIR |= lastNIR.NIR & 0xFF00
	}

	*pLast = cur
	return cur
}
