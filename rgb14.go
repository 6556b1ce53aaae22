package laz

import "github.com/hobu-io/golaz/rangecoder"

// channelRGBCtx is one scanner channel's RGB predictor state: the other
// channel's last color on handoff, and the models that code this channel's
// own color differences.
type channelRGBCtx struct {
	haveLast bool
	last     RGB

	usedModel *rangecoder.SymbolModel    // 128 symbols
	diffModel [6]*rangecoder.SymbolModel // 256 symbols each
}

func newChannelRGBCtx() *channelRGBCtx {
	c := &channelRGBCtx{usedModel: rangecoder.NewSymbolModel(128, nil)}
	for i := range c.diffModel {
		c.diffModel[i] = rangecoder.NewSymbolModel(256, nil)
	}
	return c
}

// rgb14Codec is the v1.4 (point data record formats 7-8) RGB color codec.
// Like point14, it interleaves per-scanner-channel state across one shared
// range-coded sub-stream.
type rgb14Codec struct {
	chans       [4]*channelRGBCtx
	lastChannel int
}

func newRGB14Codec() *rgb14Codec {
	c := &rgb14Codec{lastChannel: -1}
	for i := range c.chans {
		c.chans[i] = newChannelRGBCtx()
	}
	return c
}

func (c *rgb14Codec) reset() { *c = *newRGB14Codec() }

// compress codes cur for scanner channel sc. Reproduces the reference's
// last-value handoff exactly: pLast only gets redirected to sc's own slot
// the first time sc is used; on a later revisit of an already-used channel
// after the active channel has moved on, prediction is taken from whichever
// channel is currently "last", not necessarily sc's own history. See OQ-4.
func (c *rgb14Codec) compress(enc *rangecoder.Encoder, sc uint8, cur RGB) {
	if c.lastChannel == -1 {
		ch := c.chans[sc]
		ch.last = cur
		ch.haveLast = true
		c.lastChannel = int(sc)
		enc.EncodeDirectBits(uint32(cur.R), 16)
		enc.EncodeDirectBits(uint32(cur.G), 16)
		enc.EncodeDirectBits(uint32(cur.B), 16)
		return
	}

	ch := c.chans[sc]
	pLast := &c.chans[c.lastChannel].last
	if !ch.haveLast {
		ch.haveLast = true
		ch.last = *pLast
		pLast = &ch.last
	}
	lastColor := *pLast

	sym := colorDiffBits(lastColor, cur)
	enc.EncodeSymbol(ch.usedModel, sym)

	diffL, diffH := 0, 0
	if sym&(1<<0) != 0 {
		diffL = int(cur.R&0xFF) - int(lastColor.R&0xFF)
		enc.EncodeSymbol(ch.diffModel[0], uint32(u8Fold(diffL)))
	}
	if sym&(1<<1) != 0 {
		diffH = int(cur.R>>8) - int(lastColor.R>>8)
		enc.EncodeSymbol(ch.diffModel[1], uint32(u8Fold(diffH)))
	}
	if sym&(1<<6) != 0 {
		if sym&(1<<2) != 0 {
			corr := int(cur.G&0xFF) - u8Clamp(diffL+int(lastColor.G&0xFF))
			enc.EncodeSymbol(ch.diffModel[2], uint32(u8Fold(corr)))
		}
		if sym&(1<<4) != 0 {
			diffL = (diffL + int(cur.G&0xFF) - int(lastColor.G&0xFF)) / 2
			corr := int(cur.B&0xFF) - u8Clamp(diffL+int(lastColor.B&0xFF))
			enc.EncodeSymbol(ch.diffModel[4], uint32(u8Fold(corr)))
		}
		if sym&(1<<3) != 0 {
			corr := int(cur.G>>8) - u8Clamp(diffH+int(lastColor.G>>8))
			enc.EncodeSymbol(ch.diffModel[3], uint32(u8Fold(corr)))
		}
		if sym&(1<<5) != 0 {
			diffH = (diffH + int(cur.G>>8) - int(lastColor.G>>8)) / 2
			corr := int(cur.B>>8) - u8Clamp(diffH+int(lastColor.B>>8))
			enc.EncodeSymbol(ch.diffModel[5], uint32(u8Fold(corr)))
		}
	}

	*pLast = cur
	c.lastChannel = int(sc)
}

func (c *rgb14Codec) decompress(dec *rangecoder.Decoder, sc uint8) RGB {
	if c.lastChannel == -1 {
		var cur RGB
		cur.R = uint16(dec.DecodeDirectBits(16))
		cur.G = uint16(dec.DecodeDirectBits(16))
		cur.B = uint16(dec.DecodeDirectBits(16))
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
	lastColor := *pLast

	sym := dec.DecodeSymbol(ch.usedModel)
	var cur RGB

	if sym&(1<<0) != 0 {
		corr := int(dec.DecodeSymbol(ch.diffModel[0]))
		cur.R = uint16(u8Fold(corr+int(lastColor.R&0xFF))) & 0xFF
	} else {
		cur.R = lastColor.R & 0xFF
	}
	if sym&(1<<1) != 0 {
		corr := int(dec.DecodeSymbol(ch.diffModel[1]))
		cur.R |= uint16(u8Fold(corr+int(lastColor.R>>8))) << 8
	} else {
		cur.R |= lastColor.R & 0xFF00
	}

	if sym&(1<<6) != 0 {
		diff := int(cur.R&0xFF) - int(lastColor.R&0xFF)

		if sym&(1<<2) != 0 {
			corr := int(dec.DecodeSymbol(ch.diffModel[2]))
			cur.G = uint16(u8Fold(corr+u8Clamp(diff+int(lastColor.G&0xFF)))) & 0xFF
		} else {
			cur.G = lastColor.G & 0xFF
		}

		if sym&(1<<4) != 0 {
			corr := int(dec.DecodeSymbol(ch.diffModel[4]))
			diff = (diff + int(cur.G&0xFF) - int(lastColor.G&0xFF)) / 2
			cur.B = uint16(u8Fold(corr+u8Clamp(diff+int(lastColor.B&0xFF)))) & 0xFF
		} else {
			cur.B = lastColor.B & 0xFF
		}

		diff = int(cur.R>>8) - int(lastColor.R>>8)
		if sym&(1<<3) != 0 {
			corr := int(dec.DecodeSymbol(ch.diffModel[3]))
			cur.G |= uint16(u8Fold(corr+u8Clamp(diff+int(lastColor.G>>8)))) << 8
		} else {
			cur.G |= lastColor.G & 0xFF00
		}

		if sym&(1<<5) != 0 {
			corr := int(dec.DecodeSymbol(ch.diffModel[5]))
			diff = (diff + int(cur.G>>8) - int(lastColor.G>>8)) / 2
			cur.B |= uint16(u8Fold(corr+u8Clamp(diff+int(lastColor.B>>8)))) << 8
		} else {
			cur.B |= lastColor.B & 0xFF00
		}
	} else {
		cur.G = cur.R
		cur.B = cur.R
	}

	*pLast = cur
	return cur
}
