package laz

import (
	"github.com/hobu-io/golaz/internal/intcoder"
	"github.com/hobu-io/golaz/rangecoder"
)

// point10Codec compresses/decompresses the legacy (point data record
// formats 0-3) base point layout: X/Y/Z, intensity, the packed
// return/flags byte, classification, scan angle rank, user data, and point
// source ID. The first point of a chunk is written raw; every subsequent
// point is coded against the previous one.
type point10Codec struct {
	haveLast bool
	last     Point10

	medianX, medianY [16]*intcoder.Median5
	lastZ            [16]int32 // keyed the same as medianX/Y's 16-way context

	icDX *intcoder.IntegerCompressor // W=32, C=16
	icDY *intcoder.IntegerCompressor // W=32, C=20 (xy context plus dx's k, capped at 19)
	icZ  *intcoder.IntegerCompressor // W=32, C=20

	icIntensity *intcoder.IntegerCompressor // W=16, C=4
	flagsModels [256]*rangecoder.SymbolModel

	classModels [256]*rangecoder.SymbolModel

	scanAngleChanged *rangecoder.BitModel
	icScanAngle      *intcoder.IntegerCompressor // W=8, C=2

	userDataChanged *rangecoder.BitModel
	userDataModel   *rangecoder.SymbolModel

	psidChanged *rangecoder.BitModel
	icPSID      *intcoder.IntegerCompressor // W=16, C=1
}

func newPoint10Codec() *point10Codec {
	c := &point10Codec{
		icDX:             intcoder.New(32, 16),
		icDY:             intcoder.New(32, 20),
		icZ:              intcoder.New(32, 20),
		icIntensity:      intcoder.New(16, 4),
		scanAngleChanged: rangecoder.NewBitModel(),
		icScanAngle:      intcoder.New(8, 2),
		userDataChanged:  rangecoder.NewBitModel(),
		userDataModel:    rangecoder.NewSymbolModel(256, nil),
		psidChanged:      rangecoder.NewBitModel(),
		icPSID:           intcoder.New(16, 1),
	}
	for i := range c.medianX {
		c.medianX[i] = intcoder.NewMedian5()
		c.medianY[i] = intcoder.NewMedian5()
	}
	return c
}

// reset clears all per-chunk state; called at every chunk boundary.
func (c *point10Codec) reset() {
	*c = *newPoint10Codec()
}

// xyzContext composes the 16-way context from the previous point's return
// number and number of returns.
func xyzContext(p Point10) uint32 {
	return uint32(p.ReturnNumber&7)<<1 | uint32(boolToBit(p.NumberOfReturns > p.ReturnNumber))
}

func boolToBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func (c *point10Codec) flagsModelFor(p Point10) *rangecoder.SymbolModel {
	idx := (uint16(p.ReturnNumber&7) << 3) | uint16(p.NumberOfReturns&7)
	m := c.flagsModels[idx]
	if m == nil {
		m = rangecoder.NewSymbolModel(256, nil)
		c.flagsModels[idx] = m
	}
	return m
}

func (c *point10Codec) classModelFor(prevClass uint8) *rangecoder.SymbolModel {
	m := c.classModels[prevClass]
	if m == nil {
		m = rangecoder.NewSymbolModel(256, nil)
		c.classModels[prevClass] = m
	}
	return m
}

func packFlags(p Point10) uint8 {
	return p.ReturnNumber&7 | (p.NumberOfReturns&7)<<3 | (p.ScanDirectionFlag&1)<<6 | (p.EdgeOfFlightLine&1)<<7
}

func unpackFlags(b uint8, p *Point10) {
	p.ReturnNumber = b & 7
	p.NumberOfReturns = (b >> 3) & 7
	p.ScanDirectionFlag = (b >> 6) & 1
	p.EdgeOfFlightLine = (b >> 7) & 1
}

// compress codes pt against the codec's running state.
func (c *point10Codec) compress(enc *rangecoder.Encoder, pt Point10) {
	if !c.haveLast {
		c.emitRaw(enc, pt)
		c.last = pt
		c.haveLast = true
		return
	}

	ctx := xyzContext(c.last)

	predX := c.last.X + c.medianX[ctx].Value()
	c.icDX.Compress(enc, predX, pt.X, ctx)
	kx := c.icDX.K()

	dyCtx := biasContext(ctx, kx, 20)
	predY := c.last.Y + c.medianY[ctx].Value()
	c.icDY.Compress(enc, predY, pt.Y, dyCtx)
	ky := c.icDY.K()

	zCtx := biasContext(0, (kx+ky)/2, 20)
	c.icZ.Compress(enc, c.lastZ[ctx], pt.Z, zCtx)

	c.medianX[ctx].Add(pt.X - c.last.X)
	c.medianY[ctx].Add(pt.Y - c.last.Y)
	c.lastZ[ctx] = pt.Z

	flags := packFlags(pt)
	enc.EncodeSymbol(c.flagsModelFor(c.last), uint32(flags))

	c.icIntensity.Compress(enc, int32(c.last.Intensity), int32(pt.Intensity), uint32(pt.ReturnNumber&3))

	enc.EncodeSymbol(c.classModelFor(c.last.Classification), uint32(pt.Classification))

	scanChanged := pt.ScanAngleRank != c.last.ScanAngleRank
	enc.EncodeBit(c.scanAngleChanged, boolToBitInt(scanChanged))
	if scanChanged {
		c.icScanAngle.Compress(enc, int32(c.last.ScanAngleRank), int32(pt.ScanAngleRank), boolToBit(pt.ScanDirectionFlag != 0))
	}

	udChanged := pt.UserData != c.last.UserData
	enc.EncodeBit(c.userDataChanged, boolToBitInt(udChanged))
	if udChanged {
		enc.EncodeSymbol(c.userDataModel, uint32(pt.UserData))
	}

	psidChanged := pt.PointSourceID != c.last.PointSourceID
	enc.EncodeBit(c.psidChanged, boolToBitInt(psidChanged))
	if psidChanged {
		c.icPSID.Compress(enc, int32(c.last.PointSourceID), int32(pt.PointSourceID), 0)
	}

	c.last = pt
}

func (c *point10Codec) decompress(dec *rangecoder.Decoder) Point10 {
	if !c.haveLast {
		pt := c.readRaw(dec)
		c.last = pt
		c.haveLast = true
		return pt
	}

	var pt Point10
	ctx := xyzContext(c.last)

	predX := c.last.X + c.medianX[ctx].Value()
	pt.X = c.icDX.Decompress(dec, predX, ctx)
	kx := c.icDX.K()

	dyCtx := biasContext(ctx, kx, 20)
	predY := c.last.Y + c.medianY[ctx].Value()
	pt.Y = c.icDY.Decompress(dec, predY, dyCtx)
	ky := c.icDY.K()

	zCtx := biasContext(0, (kx+ky)/2, 20)
	pt.Z = c.icZ.Decompress(dec, c.lastZ[ctx], zCtx)

	c.medianX[ctx].Add(pt.X - c.last.X)
	c.medianY[ctx].Add(pt.Y - c.last.Y)
	c.lastZ[ctx] = pt.Z

	flags := uint8(dec.DecodeSymbol(c.flagsModelFor(c.last)))
	unpackFlags(flags, &pt)

	pt.Intensity = uint16(c.icIntensity.Decompress(dec, int32(c.last.Intensity), uint32(pt.ReturnNumber&3)))

	pt.Classification = uint8(dec.DecodeSymbol(c.classModelFor(c.last.Classification)))

	pt.ScanAngleRank = c.last.ScanAngleRank
	if dec.DecodeBit(c.scanAngleChanged) == 1 {
		pt.ScanAngleRank = int8(c.icScanAngle.Decompress(dec, int32(c.last.ScanAngleRank), boolToBit(pt.ScanDirectionFlag != 0)))
	}

	pt.UserData = c.last.UserData
	if dec.DecodeBit(c.userDataChanged) == 1 {
		pt.UserData = uint8(dec.DecodeSymbol(c.userDataModel))
	}

	pt.PointSourceID = c.last.PointSourceID
	if dec.DecodeBit(c.psidChanged) == 1 {
		pt.PointSourceID = uint16(c.icPSID.Decompress(dec, int32(c.last.PointSourceID), 0))
	}

	c.last = pt
	return pt
}

func (c *point10Codec) emitRaw(enc *rangecoder.Encoder, pt Point10) {
	enc.EncodeDirectBits(uint32(pt.X), 32)
	enc.EncodeDirectBits(uint32(pt.Y), 32)
	enc.EncodeDirectBits(uint32(pt.Z), 32)
	enc.EncodeDirectBits(uint32(pt.Intensity), 16)
	enc.EncodeDirectBits(uint32(packFlags(pt)), 8)
	enc.EncodeDirectBits(uint32(pt.Classification), 8)
	enc.EncodeDirectBits(uint32(uint8(pt.ScanAngleRank)), 8)
	enc.EncodeDirectBits(uint32(pt.UserData), 8)
	enc.EncodeDirectBits(uint32(pt.PointSourceID), 16)
}

func (c *point10Codec) readRaw(dec *rangecoder.Decoder) Point10 {
	var pt Point10
	pt.X = int32(dec.DecodeDirectBits(32))
	pt.Y = int32(dec.DecodeDirectBits(32))
	pt.Z = int32(dec.DecodeDirectBits(32))
	pt.Intensity = uint16(dec.DecodeDirectBits(16))
	unpackFlags(uint8(dec.DecodeDirectBits(8)), &pt)
	pt.Classification = uint8(dec.DecodeDirectBits(8))
	pt.ScanAngleRank = int8(dec.DecodeDirectBits(8))
	pt.UserData = uint8(dec.DecodeDirectBits(8))
	pt.PointSourceID = uint16(dec.DecodeDirectBits(16))
	return pt
}

func boolToBitInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// biasContext folds a predictor's chosen k into a neighboring field's
// context count, the way dy's context is biased by dx's k and z's context
// is biased by the dx/dy average, capped to stay inside the target
// context's model count.
func biasContext(base uint32, bias uint32, numContexts uint32) uint32 {
	ctx := base + bias
	if ctx >= numContexts {
		ctx = numContexts - 1
	}
	return ctx
}
