package laz

import (
	"encoding/binary"

	"github.com/hobu-io/golaz/rangecoder"
)

// encodeLegacyChunk range-codes points (point formats 0-3) into a single
// shared arithmetic-coded stream, the way point10Codec/gpsTimeCodec/
// rgbCodec/extraBytesCodec were designed to be driven: one Encoder for the
// whole chunk, no internal framing beyond what the chunk table already
// records.
func encodeLegacyChunk(format PointFormat, extraBytes int, points []Point) []byte {
	enc := rangecoder.NewEncoder()
	p10 := newPoint10Codec()
	var gps *gpsTimeCodec
	var rgb *rgbCodec
	var eb *extraBytesCodec
	if format.HasGPSTime() {
		gps = newGPSTimeCodec()
	}
	if format.HasRGB() {
		rgb = newRGBCodec()
	}
	if extraBytes > 0 {
		eb = newExtraBytesCodec(extraBytes)
	}

	for _, pt := range points {
		p10.compress(enc, pt.toPoint10())
		if gps != nil {
			gps.compress(enc, pt.GPSTime)
		}
		if rgb != nil {
			rgb.compress(enc, pt.RGB)
		}
		if eb != nil {
			eb.compress(enc, pt.Extra)
		}
	}

	return enc.Done()
}

// decodeLegacyChunk mirrors encodeLegacyChunk.
func decodeLegacyChunk(format PointFormat, extraBytes int, buf []byte, count int) []Point {
	dec := rangecoder.NewDecoder(buf)
	p10 := newPoint10Codec()
	var gps *gpsTimeCodec
	var rgb *rgbCodec
	var eb *extraBytesCodec
	if format.HasGPSTime() {
		gps = newGPSTimeCodec()
	}
	if format.HasRGB() {
		rgb = newRGBCodec()
	}
	if extraBytes > 0 {
		eb = newExtraBytesCodec(extraBytes)
	}

	points := make([]Point, count)
	for i := range points {
		pt := fromPoint10(p10.decompress(dec))
		if gps != nil {
			pt.GPSTime = gps.decompress(dec)
		}
		if rgb != nil {
			pt.RGB = rgb.decompress(dec)
		}
		if eb != nil {
			pt.Extra = eb.decompress(dec)
		}
		points[i] = pt
	}
	return points
}

// v14SubStreamCount is the fixed number of sub-streams point14Codec always
// emits, ahead of any optional color/extra-bytes sub-stream.
const v14SubStreamCount = 9

// encodeV14Chunk range-codes points (point formats 6-8) into point14Codec's
// nine independent sub-streams plus, when the format calls for them, one
// color sub-stream (rgb14 alone for format 7, rgb14+nir14 interleaved for
// format 8) and one extra-bytes sub-stream. The chunk body is self-framed:
// point count, then every sub-stream's byte length, then the sub-streams
// back to back.
func encodeV14Chunk(format PointFormat, extraBytes int, points []Point) []byte {
	streams := newPoint14Streams()
	codec := newPoint14Codec()

	var colorEnc *rangecoder.Encoder
	var rgb14 *rgb14Codec
	var nir14 *nir14Codec
	if format.HasRGB() {
		colorEnc = rangecoder.NewEncoder()
		rgb14 = newRGB14Codec()
		if format.HasNIR() {
			nir14 = newNIR14Codec()
		}
	}

	var byteEnc *rangecoder.Encoder
	var byte14 *byte14Codec
	if extraBytes > 0 {
		byteEnc = rangecoder.NewEncoder()
		byte14 = newByte14Codec(extraBytes)
	}

	for _, pt := range points {
		pt14 := pt.toPoint14()
		codec.compress(streams, pt14)
		sc := pt14.ScannerChannel & 3

		if rgb14 != nil {
			rgb14.compress(colorEnc, sc, pt.RGB)
			if nir14 != nil {
				nir14.compress(colorEnc, sc, pt.NIR)
			}
		}
		if byte14 != nil {
			byte14.compress(byteEnc, sc, pt.Extra)
		}
	}

	encs := []*rangecoder.Encoder{
		streams.XY, streams.Z, streams.Class, streams.Flags, streams.Intensity,
		streams.ScanAngle, streams.UserData, streams.PSID, streams.GPSTime,
	}
	if colorEnc != nil {
		encs = append(encs, colorEnc)
	}
	if byteEnc != nil {
		encs = append(encs, byteEnc)
	}

	bodies := make([][]byte, len(encs))
	for i, e := range encs {
		bodies[i] = e.Done()
	}

	header := make([]byte, 4+4*len(encs))
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(points)))
	for i, b := range bodies {
		binary.LittleEndian.PutUint32(header[4+4*i:8+4*i], uint32(len(b)))
	}

	out := header
	for _, b := range bodies {
		out = append(out, b...)
	}
	return out
}

// decodeV14Chunk mirrors encodeV14Chunk.
func decodeV14Chunk(format PointFormat, extraBytes int, buf []byte) ([]Point, error) {
	numAux := 0
	if format.HasRGB() {
		numAux++
	}
	if extraBytes > 0 {
		numAux++
	}
	numStreams := v14SubStreamCount + numAux

	if len(buf) < 4+4*numStreams {
		return nil, ErrUnexpectedEndOfInput
	}
	count := int(binary.LittleEndian.Uint32(buf[0:4]))
	sizes := make([]int, numStreams)
	for i := range sizes {
		sizes[i] = int(binary.LittleEndian.Uint32(buf[4+4*i : 8+4*i]))
	}

	pos := 4 + 4*numStreams
	bufs := make([][]byte, numStreams)
	for i, sz := range sizes {
		if len(buf)-pos < sz {
			return nil, ErrUnexpectedEndOfInput
		}
		bufs[i] = buf[pos : pos+sz]
		pos += sz
	}

	decs := make([]*rangecoder.Decoder, v14SubStreamCount)
	for i := 0; i < v14SubStreamCount; i++ {
		decs[i] = rangecoder.NewDecoder(bufs[i])
	}
	streams := &point14DecodeStreams{
		XY: decs[0], Z: decs[1], Class: decs[2], Flags: decs[3],
		Intensity: decs[4], ScanAngle: decs[5], UserData: decs[6],
		PSID: decs[7], GPSTime: decs[8],
	}

	next := v14SubStreamCount
	var colorDec *rangecoder.Decoder
	var rgb14 *rgb14Codec
	var nir14 *nir14Codec
	if format.HasRGB() {
		colorDec = rangecoder.NewDecoder(bufs[next])
		next++
		rgb14 = newRGB14Codec()
		if format.HasNIR() {
			nir14 = newNIR14Codec()
		}
	}

	var byteDec *rangecoder.Decoder
	var byte14 *byte14Codec
	if extraBytes > 0 {
		byteDec = rangecoder.NewDecoder(bufs[next])
		byte14 = newByte14Codec(extraBytes)
	}

	codec := newPoint14Codec()
	points := make([]Point, count)
	for i := range points {
		pt14 := codec.decompress(streams)
		pt := fromPoint14(pt14)
		sc := pt14.ScannerChannel & 3

		if rgb14 != nil {
			pt.RGB = rgb14.decompress(colorDec, sc)
			if nir14 != nil {
				pt.NIR = nir14.decompress(colorDec, sc)
			}
		}
		if byte14 != nil {
			pt.Extra = byte14.decompress(byteDec, sc)
		}
		points[i] = pt
	}

	return points, nil
}
