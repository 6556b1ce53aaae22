package laz

import (
	"math"

	"github.com/hobu-io/golaz/internal/intcoder"
	"github.com/hobu-io/golaz/rangecoder"
)

// numberReturnMap6ctx collapses (numberOfReturns, returnNumber) into one of
// six buckets used to key the X/Y diff medians and the GPS-time-changed bit
// they're combined with.
var numberReturnMap6ctx = [16][16]uint8{
	{0, 1, 2, 3, 4, 5, 3, 4, 4, 5, 5, 5, 5, 5, 5, 5},
	{1, 0, 1, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3},
	{2, 1, 2, 4, 4, 4, 4, 4, 4, 4, 4, 3, 3, 3, 3, 3},
	{3, 3, 4, 5, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4},
	{4, 3, 4, 4, 5, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4},
	{5, 3, 4, 4, 4, 5, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4},
	{3, 3, 4, 4, 4, 4, 5, 4, 4, 4, 4, 4, 4, 4, 4, 4},
	{4, 3, 4, 4, 4, 4, 4, 5, 4, 4, 4, 4, 4, 4, 4, 4},
	{4, 3, 4, 4, 4, 4, 4, 4, 5, 4, 4, 4, 4, 4, 4, 4},
	{5, 3, 4, 4, 4, 4, 4, 4, 4, 5, 4, 4, 4, 4, 4, 4},
	{5, 3, 4, 4, 4, 4, 4, 4, 4, 4, 5, 4, 4, 4, 4, 4},
	{5, 3, 3, 4, 4, 4, 4, 4, 4, 4, 4, 5, 5, 4, 4, 4},
	{5, 3, 3, 4, 4, 4, 4, 4, 4, 4, 4, 5, 5, 5, 4, 4},
	{5, 3, 3, 4, 4, 4, 4, 4, 4, 4, 4, 4, 5, 5, 5, 4},
	{5, 3, 3, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 5, 5, 5},
	{5, 3, 3, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 5, 5},
}

// numberReturnLevel8ctx collapses (numberOfReturns, returnNumber) into one of
// eight buckets used to key the Z predictor's last-value slots.
var numberReturnLevel8ctx = [16][16]uint8{
	{0, 1, 2, 3, 4, 5, 6, 7, 7, 7, 7, 7, 7, 7, 7, 7},
	{1, 0, 1, 2, 3, 4, 5, 6, 7, 7, 7, 7, 7, 7, 7, 7},
	{2, 1, 0, 1, 2, 3, 4, 5, 6, 7, 7, 7, 7, 7, 7, 7},
	{3, 2, 1, 0, 1, 2, 3, 4, 5, 6, 7, 7, 7, 7, 7, 7},
	{4, 3, 2, 1, 0, 1, 2, 3, 4, 5, 6, 7, 7, 7, 7, 7},
	{5, 4, 3, 2, 1, 0, 1, 2, 3, 4, 5, 6, 7, 7, 7, 7},
	{6, 5, 4, 3, 2, 1, 0, 1, 2, 3, 4, 5, 6, 7, 7, 7},
	{7, 6, 5, 4, 3, 2, 1, 0, 1, 2, 3, 4, 5, 6, 7, 7},
	{7, 7, 6, 5, 4, 3, 2, 1, 0, 1, 2, 3, 4, 5, 6, 7},
	{7, 7, 7, 6, 5, 4, 3, 2, 1, 0, 1, 2, 3, 4, 5, 6},
	{7, 7, 7, 7, 6, 5, 4, 3, 2, 1, 0, 1, 2, 3, 4, 5},
	{7, 7, 7, 7, 7, 6, 5, 4, 3, 2, 1, 0, 1, 2, 3, 4},
	{7, 7, 7, 7, 7, 7, 6, 5, 4, 3, 2, 1, 0, 1, 2, 3},
	{7, 7, 7, 7, 7, 7, 7, 6, 5, 4, 3, 2, 1, 0, 1, 2},
	{7, 7, 7, 7, 7, 7, 7, 7, 6, 5, 4, 3, 2, 1, 0, 1},
	{7, 7, 7, 7, 7, 7, 7, 7, 7, 6, 5, 4, 3, 2, 1, 0},
}

// point14Streams holds the nine independent range-coded sub-streams a v1.4
// point record is split across. Each is its own arithmetic-coded byte run
// within a chunk, flushed independently with its byte length recorded in
// the chunk; the decoder reads all of them together, point by point, since
// later streams' contexts (e.g. classification's) depend on values decoded
// from XY.
type point14Streams struct {
	XY, Z                                             *rangecoder.Encoder
	Class, Flags, Intensity, ScanAngle, UserData, PSID *rangecoder.Encoder
	GPSTime                                            *rangecoder.Encoder
}

func newPoint14Streams() *point14Streams {
	return &point14Streams{
		XY:          rangecoder.NewEncoder(),
		Z:           rangecoder.NewEncoder(),
		Class:       rangecoder.NewEncoder(),
		Flags:       rangecoder.NewEncoder(),
		Intensity:   rangecoder.NewEncoder(),
		ScanAngle:   rangecoder.NewEncoder(),
		UserData:    rangecoder.NewEncoder(),
		PSID:        rangecoder.NewEncoder(),
		GPSTime:     rangecoder.NewEncoder(),
	}
}

type point14DecodeStreams struct {
	XY, Z                                             *rangecoder.Decoder
	Class, Flags, Intensity, ScanAngle, UserData, PSID *rangecoder.Decoder
	GPSTime                                            *rangecoder.Decoder
}

// channel14Ctx is the per-scanner-channel state a v1.4 point codec tracks;
// LAZ 1.4 interleaves up to four independent point streams (lidar sensor
// channels) through the same chunk, each with its own predictors and models.
type channel14Ctx struct {
	haveLast bool
	last     Point14

	lastIntensity [8]uint16
	lastZ         [8]int32
	medianX       [12]*intcoder.Median5
	medianY       [12]*intcoder.Median5

	lastGPSSeq    uint32
	nextGPSSeq    uint32
	lastGPSTime   [4]int64 // float64 bit patterns
	lastGPSDiff   [4]int32
	multiExtreme  [4]int32
	gpsTimeChange bool

	changedValuesModel [8]*rangecoder.SymbolModel // 128 symbols each
	scannerChannelModel *rangecoder.SymbolModel    // 3 symbols
	rnGPSSameModel      *rangecoder.SymbolModel    // 13 symbols

	nrModel       [16]*rangecoder.SymbolModel // 16 symbols each
	rnModel       [16]*rangecoder.SymbolModel // 16 symbols each
	classModel    [64]*rangecoder.SymbolModel // 256 symbols each
	flagModel     [64]*rangecoder.SymbolModel // 64 symbols each
	userDataModel [64]*rangecoder.SymbolModel // 256 symbols each

	gpstimeMulti    *rangecoder.SymbolModel // gpsMultiTotal symbols
	gpstimeZeroDiff *rangecoder.SymbolModel // 5 symbols

	dxCompr        *intcoder.IntegerCompressor // W=32, C=2
	dyCompr        *intcoder.IntegerCompressor // W=32, C=22
	zCompr         *intcoder.IntegerCompressor // W=32, C=20
	intensityCompr *intcoder.IntegerCompressor // W=16, C=4
	scanAngleCompr *intcoder.IntegerCompressor // W=16, C=2
	psidCompr      *intcoder.IntegerCompressor // W=16, C=1
	gpstimeCompr   *intcoder.IntegerCompressor // W=32, C=9
}

func newChannel14Ctx() *channel14Ctx {
	c := &channel14Ctx{
		scannerChannelModel: rangecoder.NewSymbolModel(3, nil),
		rnGPSSameModel:      rangecoder.NewSymbolModel(13, nil),
		gpstimeMulti:        rangecoder.NewSymbolModel(gpsMultiTotal, nil),
		gpstimeZeroDiff:     rangecoder.NewSymbolModel(5, nil),

		dxCompr:        intcoder.New(32, 2),
		dyCompr:        intcoder.New(32, 22),
		zCompr:         intcoder.New(32, 20),
		intensityCompr: intcoder.New(16, 4),
		scanAngleCompr: intcoder.New(16, 2),
		psidCompr:      intcoder.New(16, 1),
		gpstimeCompr:   intcoder.New(32, 9),
	}
	for i := range c.changedValuesModel {
		c.changedValuesModel[i] = rangecoder.NewSymbolModel(128, nil)
	}
	for i := range c.nrModel {
		c.nrModel[i] = rangecoder.NewSymbolModel(16, nil)
		c.rnModel[i] = rangecoder.NewSymbolModel(16, nil)
	}
	for i := range c.classModel {
		c.classModel[i] = rangecoder.NewSymbolModel(256, nil)
		c.flagModel[i] = rangecoder.NewSymbolModel(64, nil)
		c.userDataModel[i] = rangecoder.NewSymbolModel(256, nil)
	}
	for i := range c.medianX {
		c.medianX[i] = intcoder.NewMedian5()
		c.medianY[i] = intcoder.NewMedian5()
	}
	return c
}

// adoptFrom copies another channel's last-point state the first time this
// channel is used, so a sensor channel seen for the first time mid-chunk
// predicts from whatever channel preceded it rather than from nothing.
func (c *channel14Ctx) adoptFrom(old *channel14Ctx) {
	c.haveLast = true
	c.last = old.last
	c.lastZ = old.lastZ
	c.lastIntensity = old.lastIntensity
	c.lastGPSTime[0] = old.lastGPSTime[0]
}

// point14Codec compresses/decompresses the v1.4 (point data record formats
// 6-8) base point layout across up to four interleaved scanner channels.
type point14Codec struct {
	chans       [4]*channel14Ctx
	lastChannel int // -1 before the first point of the chunk
}

func newPoint14Codec() *point14Codec {
	c := &point14Codec{lastChannel: -1}
	for i := range c.chans {
		c.chans[i] = newChannel14Ctx()
	}
	return c
}

func (c *point14Codec) reset() {
	*c = *newPoint14Codec()
}

func gps14ChangedBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// compress codes pt into the nine sub-streams, against the codec's running
// per-channel state.
func (c *point14Codec) compress(s *point14Streams, pt Point14) {
	sc := pt.ScannerChannel & 3

	if c.lastChannel == -1 {
		ch := c.chans[sc]
		ch.haveLast = true
		ch.last = pt
		ch.lastGPSTime[0] = gpsTimeBits(pt.GPSTime)
		for i := range ch.lastZ {
			ch.lastZ[i] = pt.Z
		}
		for i := range ch.lastIntensity {
			ch.lastIntensity[i] = pt.Intensity
		}
		c.lastChannel = int(sc)

		s.XY.EncodeDirectBits(uint32(pt.X), 32)
		s.XY.EncodeDirectBits(uint32(pt.Y), 32)
		s.Z.EncodeDirectBits(uint32(pt.Z), 32)
		s.Intensity.EncodeDirectBits(uint32(pt.Intensity), 16)
		s.Flags.EncodeDirectBits(uint32(pt.ReturnNumber)|uint32(pt.NumberOfReturns)<<4, 8)
		s.Flags.EncodeDirectBits(uint32(pt.ClassFlags&0xF)|uint32(pt.ScanDirection&1)<<4|uint32(pt.EdgeOfFlight&1)<<5|uint32(pt.ScannerChannel&3)<<6, 8)
		s.Class.EncodeDirectBits(uint32(pt.Classification), 8)
		s.UserData.EncodeDirectBits(uint32(pt.UserData), 8)
		s.ScanAngle.EncodeDirectBits(uint32(uint16(pt.ScanAngle)), 16)
		s.PSID.EncodeDirectBits(uint32(pt.PointSourceID), 16)
		bits := gpsTimeBits(pt.GPSTime)
		s.GPSTime.EncodeDirectBits(uint32(bits), 32)
		s.GPSTime.EncodeDirectBits(uint32(bits>>32), 32)
		return
	}

	old := c.chans[c.lastChannel]
	changeStream := gps14ChangedBit(old.last.ReturnNumber == 1) |
		gps14ChangedBit(old.last.ReturnNumber >= old.last.NumberOfReturns)<<1 |
		gps14ChangedBit(old.gpsTimeChange)<<2

	ch := c.chans[sc]
	if !ch.haveLast {
		ch.adoptFrom(old)
	}

	rnIncrements := pt.ReturnNumber == (ch.last.ReturnNumber+1)%16
	rnDecrements := pt.ReturnNumber == (ch.last.ReturnNumber+15)%16
	rnChanges := pt.ReturnNumber != ch.last.ReturnNumber && !rnIncrements && !rnDecrements

	gpsChanged := gpsTimeBits(pt.GPSTime) != gpsTimeBits(ch.last.GPSTime)

	changedValues := gps14ChangedBit(rnIncrements || rnChanges) |
		gps14ChangedBit(rnDecrements||rnChanges)<<1 |
		gps14ChangedBit(pt.NumberOfReturns != ch.last.NumberOfReturns)<<2 |
		gps14ChangedBit(pt.ScanAngle != ch.last.ScanAngle)<<3 |
		gps14ChangedBit(gpsChanged)<<4 |
		gps14ChangedBit(pt.PointSourceID != ch.last.PointSourceID)<<5 |
		gps14ChangedBit(sc != old.last.ScannerChannel)<<6

	s.XY.EncodeSymbol(old.changedValuesModel[changeStream], changedValues)

	if sc != old.last.ScannerChannel {
		diff := (int(sc) - c.lastChannel - 1 + 4) % 4
		s.XY.EncodeSymbol(old.scannerChannelModel, uint32(diff))
	}

	if pt.NumberOfReturns != ch.last.NumberOfReturns {
		s.XY.EncodeSymbol(ch.nrModel[ch.last.NumberOfReturns], uint32(pt.NumberOfReturns))
	}

	if rnChanges {
		if gpsChanged {
			s.XY.EncodeSymbol(ch.rnModel[ch.last.ReturnNumber], uint32(pt.ReturnNumber))
		} else {
			diff := int(pt.ReturnNumber) - int(ch.last.ReturnNumber)
			if diff > 1 {
				s.XY.EncodeSymbol(ch.rnGPSSameModel, uint32(diff-2))
			} else {
				s.XY.EncodeSymbol(ch.rnGPSSameModel, uint32(diff-2+16))
			}
		}
	}

	nr, rn := pt.NumberOfReturns, pt.ReturnNumber
	xyCtx := uint32(numberReturnMap6ctx[nr][rn])<<1 | gps14ChangedBit(gpsChanged)

	predX := ch.last.X + ch.medianX[xyCtx].Value()
	ch.dxCompr.Compress(s.XY, predX, pt.X, gps14ChangedBit(nr == 1))
	kx := ch.dxCompr.K()
	if kx > 20 {
		kx = 20
	}
	kx &^= 1

	predY := ch.last.Y + ch.medianY[xyCtx].Value()
	ch.dyCompr.Compress(s.XY, predY, pt.Y, gps14ChangedBit(nr == 1)|kx)

	ch.medianX[xyCtx].Add(pt.X - ch.last.X)
	ch.medianY[xyCtx].Add(pt.Y - ch.last.Y)

	ky := ch.dyCompr.K()
	kz := (kx + ky) / 2
	if kz > 18 {
		kz = 18
	}
	kz &^= 1
	zCtx := numberReturnLevel8ctx[nr][rn]
	ch.zCompr.Compress(s.Z, ch.lastZ[zCtx], pt.Z, gps14ChangedBit(nr == 1)|kz)
	ch.lastZ[zCtx] = pt.Z

	classCtx := gps14ChangedBit(rn == 1 && rn >= nr) | uint32(ch.last.Classification&0x1F)<<1
	s.Class.EncodeSymbol(ch.classModel[classCtx], uint32(pt.Classification))

	flags := uint32(pt.ClassFlags&0xF) | uint32(pt.ScanDirection&1)<<4 | uint32(pt.EdgeOfFlight&1)<<5
	lastFlags := uint32(ch.last.ClassFlags&0xF) | uint32(ch.last.ScanDirection&1)<<4 | uint32(ch.last.EdgeOfFlight&1)<<5
	s.Flags.EncodeSymbol(ch.flagModel[lastFlags], flags)

	intensityCtx := gps14ChangedBit(gpsChanged) | gps14ChangedBit(rn >= nr)<<1 | gps14ChangedBit(rn == 1)<<2
	ch.intensityCompr.Compress(s.Intensity, int32(ch.lastIntensity[intensityCtx]), int32(pt.Intensity), intensityCtx>>1)
	ch.lastIntensity[intensityCtx] = pt.Intensity

	if pt.ScanAngle != ch.last.ScanAngle {
		ch.scanAngleCompr.Compress(s.ScanAngle, int32(ch.last.ScanAngle), int32(pt.ScanAngle), gps14ChangedBit(gpsChanged))
	}

	userDataCtx := uint32(ch.last.UserData) / 4
	s.UserData.EncodeSymbol(ch.userDataModel[userDataCtx], uint32(pt.UserData))

	if pt.PointSourceID != ch.last.PointSourceID {
		ch.psidCompr.Compress(s.PSID, int32(ch.last.PointSourceID), int32(pt.PointSourceID), 0)
	}

	if gpsChanged {
		ch.encodeGPSTime(s.GPSTime, pt.GPSTime)
	}

	ch.last = pt
	ch.last.ScannerChannel = sc
	ch.gpsTimeChange = gpsChanged
	c.lastChannel = int(sc)
}

// decompress mirrors compress exactly, field for field.
func (c *point14Codec) decompress(s *point14DecodeStreams) Point14 {
	if c.lastChannel == -1 {
		var pt Point14
		pt.X = int32(s.XY.DecodeDirectBits(32))
		pt.Y = int32(s.XY.DecodeDirectBits(32))
		pt.Z = int32(s.Z.DecodeDirectBits(32))
		pt.Intensity = uint16(s.Intensity.DecodeDirectBits(16))
		flags := s.Flags.DecodeDirectBits(8)
		pt.ReturnNumber = uint8(flags & 0xF)
		pt.NumberOfReturns = uint8((flags >> 4) & 0xF)
		flags2 := s.Flags.DecodeDirectBits(8)
		pt.ClassFlags = uint8(flags2 & 0xF)
		pt.ScanDirection = uint8((flags2 >> 4) & 1)
		pt.EdgeOfFlight = uint8((flags2 >> 5) & 1)
		pt.ScannerChannel = uint8((flags2 >> 6) & 3)
		pt.Classification = uint8(s.Class.DecodeDirectBits(8))
		pt.UserData = uint8(s.UserData.DecodeDirectBits(8))
		pt.ScanAngle = int16(uint16(s.ScanAngle.DecodeDirectBits(16)))
		pt.PointSourceID = uint16(s.PSID.DecodeDirectBits(16))
		lo := s.GPSTime.DecodeDirectBits(32)
		hi := s.GPSTime.DecodeDirectBits(32)
		pt.GPSTime = gpsTimeFromBits(int64(lo) | int64(hi)<<32)

		sc := pt.ScannerChannel & 3
		ch := c.chans[sc]
		ch.haveLast = true
		ch.last = pt
		ch.lastGPSTime[0] = gpsTimeBits(pt.GPSTime)
		for i := range ch.lastZ {
			ch.lastZ[i] = pt.Z
		}
		for i := range ch.lastIntensity {
			ch.lastIntensity[i] = pt.Intensity
		}
		c.lastChannel = int(sc)
		return pt
	}

	old := c.chans[c.lastChannel]
	changeStream := gps14ChangedBit(old.last.ReturnNumber == 1) |
		gps14ChangedBit(old.last.ReturnNumber >= old.last.NumberOfReturns)<<1 |
		gps14ChangedBit(old.gpsTimeChange)<<2

	changedValues := s.XY.DecodeSymbol(old.changedValuesModel[changeStream])
	scannerChannelChanged := (changedValues>>6)&1 == 1
	pointSourceChanged := (changedValues>>5)&1 == 1
	gpsChanged := (changedValues>>4)&1 == 1
	scanAngleChanged := (changedValues>>3)&1 == 1
	nrChanges := (changedValues>>2)&1 == 1
	rnMinus := (changedValues>>1)&1 == 1
	rnPlus := changedValues&1 == 1
	rnIncrements := rnPlus && !rnMinus
	rnDecrements := rnMinus && !rnPlus
	rnMiscChange := rnPlus && rnMinus

	sc := old.last.ScannerChannel
	if scannerChannelChanged {
		diff := s.XY.DecodeSymbol(old.scannerChannelModel)
		sc = uint8((int(sc) + int(diff) + 1) % 4)
	}

	ch := c.chans[sc]
	if !ch.haveLast {
		ch.adoptFrom(old)
	}
	ch.last.ScannerChannel = sc

	nr := ch.last.NumberOfReturns
	if nrChanges {
		nr = uint8(s.XY.DecodeSymbol(ch.nrModel[ch.last.NumberOfReturns]))
	}
	ch.last.NumberOfReturns = nr

	rn := ch.last.ReturnNumber
	switch {
	case rnIncrements:
		rn = (rn + 1) % 16
	case rnDecrements:
		rn = (rn + 15) % 16
	case rnMiscChange:
		if gpsChanged {
			rn = uint8(s.XY.DecodeSymbol(ch.rnModel[rn]))
		} else {
			rn = uint8((int(rn) + int(s.XY.DecodeSymbol(ch.rnGPSSameModel)) + 2) % 16)
		}
	}
	ch.last.ReturnNumber = rn

	xyCtx := uint32(numberReturnMap6ctx[nr][rn])<<1 | gps14ChangedBit(gpsChanged)

	predX := ch.last.X + ch.medianX[xyCtx].Value()
	x := ch.dxCompr.Decompress(s.XY, predX, gps14ChangedBit(nr == 1))
	ch.medianX[xyCtx].Add(x - ch.last.X)
	ch.last.X = x
	kx := ch.dxCompr.K()
	if kx > 20 {
		kx = 20
	}
	kx &^= 1

	predY := ch.last.Y + ch.medianY[xyCtx].Value()
	y := ch.dyCompr.Decompress(s.XY, predY, gps14ChangedBit(nr == 1)|kx)
	ch.medianY[xyCtx].Add(y - ch.last.Y)
	ch.last.Y = y

	ky := ch.dyCompr.K()
	kz := (kx + ky) / 2
	if kz > 18 {
		kz = 18
	}
	kz &^= 1
	zCtx := numberReturnLevel8ctx[nr][rn]
	ch.last.Z = ch.zCompr.Decompress(s.Z, ch.lastZ[zCtx], gps14ChangedBit(nr == 1)|kz)
	ch.lastZ[zCtx] = ch.last.Z

	classCtx := gps14ChangedBit(rn == 1 && rn >= nr) | uint32(ch.last.Classification&0x1F)<<1
	ch.last.Classification = uint8(s.Class.DecodeSymbol(ch.classModel[classCtx]))

	lastFlags := uint32(ch.last.ClassFlags&0xF) | uint32(ch.last.ScanDirection&1)<<4 | uint32(ch.last.EdgeOfFlight&1)<<5
	flags := s.Flags.DecodeSymbol(ch.flagModel[lastFlags])
	ch.last.EdgeOfFlight = uint8((flags >> 5) & 1)
	ch.last.ScanDirection = uint8((flags >> 4) & 1)
	ch.last.ClassFlags = uint8(flags & 0xF)

	intensityCtx := gps14ChangedBit(gpsChanged) | gps14ChangedBit(rn >= nr)<<1 | gps14ChangedBit(rn == 1)<<2
	intensity := uint16(ch.intensityCompr.Decompress(s.Intensity, int32(ch.lastIntensity[intensityCtx]), intensityCtx>>1))
	ch.lastIntensity[intensityCtx] = intensity
	ch.last.Intensity = intensity

	if scanAngleChanged {
		ch.last.ScanAngle = int16(ch.scanAngleCompr.Decompress(s.ScanAngle, int32(ch.last.ScanAngle), gps14ChangedBit(gpsChanged)))
	}

	userDataCtx := uint32(ch.last.UserData) / 4
	ch.last.UserData = uint8(s.UserData.DecodeSymbol(ch.userDataModel[userDataCtx]))

	if pointSourceChanged {
		ch.last.PointSourceID = uint16(ch.psidCompr.Decompress(s.PSID, int32(ch.last.PointSourceID), 0))
	}

	if gpsChanged {
		ch.last.GPSTime = ch.decodeGPSTime(s.GPSTime)
	}

	ch.gpsTimeChange = gpsChanged
	c.lastChannel = int(sc)
	return ch.last
}

// findSeq looks for a GPS-time sequence slot, starting at (lastGPSSeq+start)
// mod 4, whose stored time minus gpsTime fits a signed 32-bit difference.
// Returns the slot offset found (0..3) or -1 if none does.
func (c *channel14Ctx) findSeq(bits int64, start int) (diff int32, idx int) {
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

func (c *channel14Ctx) encodeGPSTime(enc *rangecoder.Encoder, gpsTime float64) {
	bits := gpsTimeBits(gpsTime)
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

func (c *channel14Ctx) decodeGPSTime(dec *rangecoder.Decoder) float64 {
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
