package laz

import "encoding/binary"

// encodeRawChunk packs points into the plain (uncompressed) LAS point
// record layout Options.Compressed=false selects, reusing the same
// header and VLR framing as the compressed path; no chunk table is written.
// Each point occupies exactly point_record_length bytes; there is no
// per-chunk footer, matching an ordinary LAS file's flat point array.
func encodeRawChunk(format PointFormat, extraBytes int, points []Point) []byte {
	recordLen := rawRecordLength(format, extraBytes)
	buf := make([]byte, recordLen*len(points))
	le := binary.LittleEndian

	for i, pt := range points {
		off := i * recordLen
		rec := buf[off : off+recordLen]

		if format.IsLegacy() {
			p10 := pt.toPoint10()
			le.PutUint32(rec[0:4], uint32(p10.X))
			le.PutUint32(rec[4:8], uint32(p10.Y))
			le.PutUint32(rec[8:12], uint32(p10.Z))
			le.PutUint16(rec[12:14], p10.Intensity)
			rec[14] = packFlags(p10)
			rec[15] = p10.Classification
			rec[16] = uint8(p10.ScanAngleRank)
			rec[17] = p10.UserData
			le.PutUint16(rec[18:20], p10.PointSourceID)
			pos := 20
			if format.HasGPSTime() {
				putFloat64(rec[pos:pos+8], pt.GPSTime)
				pos += 8
			}
			if format.HasRGB() {
				le.PutUint16(rec[pos:pos+2], pt.RGB.R)
				le.PutUint16(rec[pos+2:pos+4], pt.RGB.G)
				le.PutUint16(rec[pos+4:pos+6], pt.RGB.B)
				pos += 6
			}
			if extraBytes > 0 {
				copy(rec[pos:pos+extraBytes], pt.Extra.Data)
			}
			continue
		}

		p14 := pt.toPoint14()
		le.PutUint32(rec[0:4], uint32(p14.X))
		le.PutUint32(rec[4:8], uint32(p14.Y))
		le.PutUint32(rec[8:12], uint32(p14.Z))
		le.PutUint16(rec[12:14], p14.Intensity)
		rec[14] = p14.ReturnNumber&0xF | (p14.NumberOfReturns&0xF)<<4
		rec[15] = p14.ClassFlags&0xF | (p14.ScannerChannel&3)<<4 | (p14.ScanDirection&1)<<6 | (p14.EdgeOfFlight&1)<<7
		rec[16] = p14.Classification
		rec[17] = p14.UserData
		le.PutUint16(rec[18:20], uint16(p14.ScanAngle))
		le.PutUint16(rec[20:22], p14.PointSourceID)
		putFloat64(rec[22:30], p14.GPSTime)
		pos := 30
		if format.HasRGB() {
			le.PutUint16(rec[pos:pos+2], pt.RGB.R)
			le.PutUint16(rec[pos+2:pos+4], pt.RGB.G)
			le.PutUint16(rec[pos+4:pos+6], pt.RGB.B)
			pos += 6
			if format.HasNIR() {
				le.PutUint16(rec[pos:pos+2], pt.NIR.NIR)
				pos += 2
			}
		}
		if extraBytes > 0 {
			copy(rec[pos:pos+extraBytes], pt.Extra.Data)
		}
	}

	return buf
}

// decodeRawChunk mirrors encodeRawChunk.
func decodeRawChunk(format PointFormat, extraBytes int, buf []byte, count int) []Point {
	recordLen := rawRecordLength(format, extraBytes)
	le := binary.LittleEndian
	points := make([]Point, count)

	for i := 0; i < count; i++ {
		off := i * recordLen
		rec := buf[off : off+recordLen]

		if format.IsLegacy() {
			var p10 Point10
			p10.X = int32(le.Uint32(rec[0:4]))
			p10.Y = int32(le.Uint32(rec[4:8]))
			p10.Z = int32(le.Uint32(rec[8:12]))
			p10.Intensity = le.Uint16(rec[12:14])
			unpackFlags(rec[14], &p10)
			p10.Classification = rec[15]
			p10.ScanAngleRank = int8(rec[16])
			p10.UserData = rec[17]
			p10.PointSourceID = le.Uint16(rec[18:20])
			pt := fromPoint10(p10)
			pos := 20
			if format.HasGPSTime() {
				pt.GPSTime = getFloat64(rec[pos : pos+8])
				pos += 8
			}
			if format.HasRGB() {
				pt.RGB = RGB{R: le.Uint16(rec[pos : pos+2]), G: le.Uint16(rec[pos+2 : pos+4]), B: le.Uint16(rec[pos+4 : pos+6])}
				pos += 6
			}
			if extraBytes > 0 {
				data := make([]byte, extraBytes)
				copy(data, rec[pos:pos+extraBytes])
				pt.Extra = ExtraBytes{Data: data}
			}
			points[i] = pt
			continue
		}

		var p14 Point14
		p14.X = int32(le.Uint32(rec[0:4]))
		p14.Y = int32(le.Uint32(rec[4:8]))
		p14.Z = int32(le.Uint32(rec[8:12]))
		p14.Intensity = le.Uint16(rec[12:14])
		p14.ReturnNumber = rec[14] & 0xF
		p14.NumberOfReturns = (rec[14] >> 4) & 0xF
		p14.ClassFlags = rec[15] & 0xF
		p14.ScannerChannel = (rec[15] >> 4) & 3
		p14.ScanDirection = (rec[15] >> 6) & 1
		p14.EdgeOfFlight = (rec[15] >> 7) & 1
		p14.Classification = rec[16]
		p14.UserData = rec[17]
		p14.ScanAngle = int16(le.Uint16(rec[18:20]))
		p14.PointSourceID = le.Uint16(rec[20:22])
		p14.GPSTime = getFloat64(rec[22:30])
		pt := fromPoint14(p14)
		pos := 30
		if format.HasRGB() {
			pt.RGB = RGB{R: le.Uint16(rec[pos : pos+2]), G: le.Uint16(rec[pos+2 : pos+4]), B: le.Uint16(rec[pos+4 : pos+6])}
			pos += 6
			if format.HasNIR() {
				pt.NIR = NIR14{NIR: le.Uint16(rec[pos : pos+2])}
				pos += 2
			}
		}
		if extraBytes > 0 {
			data := make([]byte, extraBytes)
			copy(data, rec[pos:pos+extraBytes])
			pt.Extra = ExtraBytes{Data: data}
		}
		points[i] = pt
	}

	return points
}

func rawRecordLength(format PointFormat, extraBytes int) int {
	total := 0
	for _, it := range schemaItems(format, extraBytes) {
		total += int(it.Size)
	}
	return total
}
