package laz

import (
	"encoding/binary"
	"math"
)

// LAS header sizes in bytes, keyed by minor version.
const (
	headerSizeV12 = 227
	headerSizeV13 = 235
	headerSizeV14 = 375
)

var lasMagic = [4]byte{'L', 'A', 'S', 'F'}

// wktBit is global_encoding bit 4, set on v1.4 files to declare the
// coordinate reference system is carried in a WKT VLR rather than a GeoTIFF
// one. golaz never writes GeoTIFF VLRs, so every v1.4 file it produces sets
// this bit (laz-perf's writer does the same on close).
const wktBit = 1 << 4

// Header is the LAS file header. Fields beyond VersionMinor 3 (EVLROffset,
// EVLRCount, PointCount14, PointsByReturn14) are meaningful only for v1.4
// files; golaz always populates PointCount14/PointsByReturn14 alongside the
// legacy 32-bit counters so a v1.3 reader and a v1.4 reader of the same
// golaz-written file both see consistent counts.
type Header struct {
	FileSourceID       uint16
	GlobalEncoding     uint16
	GUID               [16]byte
	VersionMajor       uint8
	VersionMinor       uint8
	SystemIdentifier   [32]byte
	GeneratingSoftware [32]byte
	CreationDay        uint16
	CreationYear       uint16
	HeaderSize         uint16
	PointOffset        uint32
	VLRCount           uint32
	PointFormatID      uint8
	PointRecordLength  uint16
	PointCount         uint32
	PointsByReturn     [5]uint32
	ScaleX, ScaleY, ScaleZ       float64
	OffsetX, OffsetY, OffsetZ    float64
	MinX, MaxX, MinY, MaxY, MinZ, MaxZ float64

	WaveformDataOffset uint64
	EVLROffset         uint64
	EVLRCount          uint32
	PointCount14       uint64
	PointsByReturn14   [15]uint64
}

// size returns the on-wire byte length for this header's VersionMinor.
func (h *Header) size() int {
	switch h.VersionMinor {
	case 4:
		return headerSizeV14
	case 3:
		return headerSizeV13
	default:
		return headerSizeV12
	}
}

// pointFormat returns the plain point format id (the low six bits of
// PointFormatID, with the compressed-indicator bits masked off).
func (h *Header) pointFormat() PointFormat {
	return PointFormat(h.PointFormatID & 0x3F)
}

// compressed reports the high bit of PointFormatID.
func (h *Header) compressed() bool {
	return h.PointFormatID&0x80 != 0
}

// marshal serializes the header in its wire layout. The min/max doubles are
// written in the LAS specification's interleaved per-axis order (max, min,
// max, min, max, min), which does not match this struct's field order.
func (h *Header) marshal() []byte {
	size := h.size()
	buf := make([]byte, size)

	copy(buf[0:4], lasMagic[:])
	le := binary.LittleEndian
	le.PutUint16(buf[4:6], h.FileSourceID)
	le.PutUint16(buf[6:8], h.GlobalEncoding)
	copy(buf[8:24], h.GUID[:])
	buf[24] = h.VersionMajor
	buf[25] = h.VersionMinor
	copy(buf[26:58], h.SystemIdentifier[:])
	copy(buf[58:90], h.GeneratingSoftware[:])
	le.PutUint16(buf[90:92], h.CreationDay)
	le.PutUint16(buf[92:94], h.CreationYear)
	le.PutUint16(buf[94:96], h.HeaderSize)
	le.PutUint32(buf[96:100], h.PointOffset)
	le.PutUint32(buf[100:104], h.VLRCount)
	buf[104] = h.PointFormatID
	le.PutUint16(buf[105:107], h.PointRecordLength)
	le.PutUint32(buf[107:111], h.PointCount)
	for i, v := range h.PointsByReturn {
		le.PutUint32(buf[111+4*i:115+4*i], v)
	}
	putFloat64(buf[131:139], h.ScaleX)
	putFloat64(buf[139:147], h.ScaleY)
	putFloat64(buf[147:155], h.ScaleZ)
	putFloat64(buf[155:163], h.OffsetX)
	putFloat64(buf[163:171], h.OffsetY)
	putFloat64(buf[171:179], h.OffsetZ)
	putFloat64(buf[179:187], h.MaxX)
	putFloat64(buf[187:195], h.MinX)
	putFloat64(buf[195:203], h.MaxY)
	putFloat64(buf[203:211], h.MinY)
	putFloat64(buf[211:219], h.MaxZ)
	putFloat64(buf[219:227], h.MinZ)

	if size >= headerSizeV13 {
		le.PutUint64(buf[227:235], h.WaveformDataOffset)
	}
	if size >= headerSizeV14 {
		le.PutUint64(buf[235:243], h.EVLROffset)
		le.PutUint32(buf[243:247], h.EVLRCount)
		le.PutUint64(buf[247:255], h.PointCount14)
		for i, v := range h.PointsByReturn14 {
			le.PutUint64(buf[255+8*i:263+8*i], v)
		}
	}

	return buf
}

// unmarshalHeader parses a raw header buffer. The caller is responsible for
// having read the whole fixed header for the file's version, sized by
// first peeking at VersionMinor.
func unmarshalHeader(buf []byte) (*Header, error) {
	if len(buf) < headerSizeV12 {
		return nil, ErrMagicMismatch
	}
	if string(buf[0:4]) != string(lasMagic[:]) {
		return nil, ErrMagicMismatch
	}

	le := binary.LittleEndian
	h := &Header{}
	h.FileSourceID = le.Uint16(buf[4:6])
	h.GlobalEncoding = le.Uint16(buf[6:8])
	copy(h.GUID[:], buf[8:24])
	h.VersionMajor = buf[24]
	h.VersionMinor = buf[25]
	copy(h.SystemIdentifier[:], buf[26:58])
	copy(h.GeneratingSoftware[:], buf[58:90])
	h.CreationDay = le.Uint16(buf[90:92])
	h.CreationYear = le.Uint16(buf[92:94])
	h.HeaderSize = le.Uint16(buf[94:96])
	h.PointOffset = le.Uint32(buf[96:100])
	h.VLRCount = le.Uint32(buf[100:104])
	h.PointFormatID = buf[104]
	h.PointRecordLength = le.Uint16(buf[105:107])
	h.PointCount = le.Uint32(buf[107:111])
	for i := range h.PointsByReturn {
		h.PointsByReturn[i] = le.Uint32(buf[111+4*i : 115+4*i])
	}
	h.ScaleX = getFloat64(buf[131:139])
	h.ScaleY = getFloat64(buf[139:147])
	h.ScaleZ = getFloat64(buf[147:155])
	h.OffsetX = getFloat64(buf[155:163])
	h.OffsetY = getFloat64(buf[163:171])
	h.OffsetZ = getFloat64(buf[171:179])
	h.MaxX = getFloat64(buf[179:187])
	h.MinX = getFloat64(buf[187:195])
	h.MaxY = getFloat64(buf[195:203])
	h.MinY = getFloat64(buf[203:211])
	h.MaxZ = getFloat64(buf[211:219])
	h.MinZ = getFloat64(buf[219:227])

	if len(buf) >= headerSizeV13 {
		h.WaveformDataOffset = le.Uint64(buf[227:235])
	}
	if len(buf) >= headerSizeV14 {
		h.EVLROffset = le.Uint64(buf[235:243])
		h.EVLRCount = le.Uint32(buf[243:247])
		h.PointCount14 = le.Uint64(buf[247:255])
		for i := range h.PointsByReturn14 {
			h.PointsByReturn14[i] = le.Uint64(buf[255+8*i : 263+8*i])
		}
	}

	return h, nil
}

func putFloat64(b []byte, v float64) {
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
}

func getFloat64(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// updateMinMax folds a scaled point coordinate into the header's running
// bounding box, applied to every point the writer emits (laz-perf's
// _update_min_max).
func (h *Header) updateMinMax(x, y, z float64) {
	if x < h.MinX {
		h.MinX = x
	}
	if x > h.MaxX {
		h.MaxX = x
	}
	if y < h.MinY {
		h.MinY = y
	}
	if y > h.MaxY {
		h.MaxY = y
	}
	if z < h.MinZ {
		h.MinZ = z
	}
	if z > h.MaxZ {
		h.MaxZ = z
	}
}
