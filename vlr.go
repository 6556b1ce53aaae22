package laz

import (
	"encoding/binary"
	"strconv"
)

// vlrHeaderSize is the fixed 54-byte VLR header every variable-length
// record carries ahead of its payload.
const vlrHeaderSize = 54

const (
	laszipUserID   = "laszip encoded"
	laszipRecordID = 22204

	extraBytesUserID   = "LASF_Spec"
	extraBytesRecordID = 4
)

// VLRHeader is the 54-byte record header shared by every variable-length
// record, LAZ's own descriptor included.
type VLRHeader struct {
	Reserved      uint16
	UserID        [16]byte
	RecordID      uint16
	RecordLength  uint16
	Description   [32]byte
}

func newVLRHeader(userID string, recordID uint16, length uint16, description string) VLRHeader {
	var h VLRHeader
	h.RecordID = recordID
	h.RecordLength = length
	copy(h.UserID[:], userID)
	copy(h.Description[:], description)
	return h
}

func (h VLRHeader) marshal() []byte {
	buf := make([]byte, vlrHeaderSize)
	le := binary.LittleEndian
	le.PutUint16(buf[0:2], h.Reserved)
	copy(buf[2:18], h.UserID[:])
	le.PutUint16(buf[18:20], h.RecordID)
	le.PutUint16(buf[20:22], h.RecordLength)
	copy(buf[22:54], h.Description[:])
	return buf
}

func unmarshalVLRHeader(buf []byte) VLRHeader {
	le := binary.LittleEndian
	var h VLRHeader
	h.Reserved = le.Uint16(buf[0:2])
	copy(h.UserID[:], buf[2:18])
	h.RecordID = le.Uint16(buf[18:20])
	h.RecordLength = le.Uint16(buf[20:22])
	copy(h.Description[:], buf[22:54])
	return h
}

// userIDString trims trailing NULs from a fixed-size user_id/description
// field for comparison against the sentinel strings above.
func userIDString(b [16]byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

// LazItem is one entry in a LAZ VLR's item list: a field-codec's type,
// its uncompressed on-wire size, and the codec revision that produced it.
type LazItem struct {
	Type    uint16
	Size    uint16
	Version uint16
}

// LazVLR is the LAZ descriptor VLR: it names the
// compressor family, the coder, a version triple, the chunk size, optional
// totals, and the ordered item list describing which field codecs apply.
type LazVLR struct {
	Compressor      uint16
	Coder           uint16
	VersionMajor    uint8
	VersionMinor    uint8
	VersionRevision uint16
	Options         uint32
	ChunkSize       uint32
	NumPoints       int64
	NumBytes        int64
	Items           []LazItem
}

const (
	compressorLegacyChunked = 2
	compressorV14Chunked    = 3
)

// BuildLazVLR constructs the LAZ VLR describing format/extraBytes, mirroring
// laz_vlr::from_schema: compressor 2 for the point10-based formats,
// compressor 3 for point14-based ones, and a fixed 3.4.3 version triple.
func BuildLazVLR(format PointFormat, extraBytes int, chunkSize uint32) LazVLR {
	compressor := uint16(compressorLegacyChunked)
	if !format.IsLegacy() {
		compressor = compressorV14Chunked
	}
	return LazVLR{
		Compressor:      compressor,
		Coder:           0,
		VersionMajor:    3,
		VersionMinor:    4,
		VersionRevision: 3,
		ChunkSize:       chunkSize,
		NumPoints:       -1,
		NumBytes:        -1,
		Items:           schemaItems(format, extraBytes),
	}
}

// SchemaFromLazVLR recovers the point format and extra-byte column count
// implied by a LAZ VLR's item list, mirroring laz_vlr::to_schema. It does
// not consult pointRecordLength; callers that need the residual-bytes
// cross-check use validateLazVLR.
func SchemaFromLazVLR(vlr LazVLR) (format PointFormat, extraBytes int, err error) {
	haveBase := false
	for _, it := range vlr.Items {
		switch it.Type {
		case ItemPOINT10:
			format, haveBase = PointFormat0, true
		case ItemGPSTIME:
			format |= 1
		case ItemRGB12:
			format |= 2
		case ItemPOINT14:
			format, haveBase = PointFormat6, true
		case ItemRGB14:
			if format == PointFormat6 {
				format = PointFormat7
			}
		case ItemRGBNIR14:
			format = PointFormat8
		case ItemBYTE, ItemBYTE14:
			extraBytes += int(it.Size)
		default:
			return 0, 0, ErrInvalidPointFormat
		}
	}
	if !haveBase {
		return 0, 0, ErrInvalidPointFormat
	}
	if !validPointFormat(format) {
		return 0, 0, ErrInvalidPointFormat
	}
	return format, extraBytes, nil
}

// validateLazVLR checks the item list's total size against the header's
// declared point_record_length: the sum of all item sizes, a trailing
// BYTE/BYTE14 extra-bytes item included, must equal point_record_length,
// and any mismatch marks the schema invalid.
func validateLazVLR(vlr LazVLR, pointRecordLength uint16) error {
	total := 0
	for _, it := range vlr.Items {
		total += int(it.Size)
	}
	if total != int(pointRecordLength) {
		return ErrInvalidPointFormat
	}
	return nil
}

func (v LazVLR) marshal() []byte {
	buf := make([]byte, 34+6*len(v.Items))
	le := binary.LittleEndian
	le.PutUint16(buf[0:2], v.Compressor)
	le.PutUint16(buf[2:4], v.Coder)
	buf[4] = v.VersionMajor
	buf[5] = v.VersionMinor
	le.PutUint16(buf[6:8], v.VersionRevision)
	le.PutUint32(buf[8:12], v.Options)
	le.PutUint32(buf[12:16], v.ChunkSize)
	le.PutUint64(buf[16:24], uint64(v.NumPoints))
	le.PutUint64(buf[24:32], uint64(v.NumBytes))
	le.PutUint16(buf[32:34], uint16(len(v.Items)))
	for i, it := range v.Items {
		off := 34 + 6*i
		le.PutUint16(buf[off:off+2], it.Type)
		le.PutUint16(buf[off+2:off+4], it.Size)
		le.PutUint16(buf[off+4:off+6], it.Version)
	}
	return buf
}

func unmarshalLazVLR(buf []byte) (LazVLR, error) {
	if len(buf) < 34 {
		return LazVLR{}, ErrMissingLaszipVLR
	}
	le := binary.LittleEndian
	v := LazVLR{
		Compressor:      le.Uint16(buf[0:2]),
		Coder:           le.Uint16(buf[2:4]),
		VersionMajor:    buf[4],
		VersionMinor:    buf[5],
		VersionRevision: le.Uint16(buf[6:8]),
		Options:         le.Uint32(buf[8:12]),
		ChunkSize:       le.Uint32(buf[12:16]),
		NumPoints:       int64(le.Uint64(buf[16:24])),
		NumBytes:        int64(le.Uint64(buf[24:32])),
	}
	numItems := int(le.Uint16(buf[32:34]))
	if len(buf) < 34+6*numItems {
		return LazVLR{}, ErrMissingLaszipVLR
	}
	v.Items = make([]LazItem, numItems)
	for i := range v.Items {
		off := 34 + 6*i
		v.Items[i] = LazItem{
			Type:    le.Uint16(buf[off : off+2]),
			Size:    le.Uint16(buf[off+2 : off+4]),
			Version: le.Uint16(buf[off+4 : off+6]),
		}
	}
	return v, nil
}

// extraBytesFieldSize is the on-wire size of one extra-bytes VLR field
// descriptor (eb_vlr.hpp's packed `eb` struct: 2+1+1+32+4+8*3*5+32).
const extraBytesFieldSize = 192

// extraBytesField describes one extra-byte column. golaz only ever writes
// the minimal untyped form eb_vlr.hpp's addField() does: an unsigned-char
// (data_type 1) column named "FIELD_<n>" with no scale/offset/range
// metadata, which is sufficient to round-trip raw per-point byte columns
// without losing the column count on read.
type extraBytesField struct {
	DataType    uint8
	Options     uint8
	Name        [32]byte
	Description [32]byte
}

func marshalExtraBytesVLR(fields []extraBytesField) []byte {
	buf := make([]byte, extraBytesFieldSize*len(fields))
	for i, f := range fields {
		off := i * extraBytesFieldSize
		buf[off+2] = f.DataType
		buf[off+3] = f.Options
		copy(buf[off+4:off+36], f.Name[:])
		// bytes off+36..off+160 are reserved/no_data/minval/maxval/scale/
		// offset, left zero in the minimal form this module writes.
		copy(buf[off+160:off+192], f.Description[:])
	}
	return buf
}

func unmarshalExtraBytesVLR(buf []byte) []extraBytesField {
	n := len(buf) / extraBytesFieldSize
	fields := make([]extraBytesField, n)
	for i := range fields {
		off := i * extraBytesFieldSize
		fields[i].DataType = buf[off+2]
		fields[i].Options = buf[off+3]
		copy(fields[i].Name[:], buf[off+4:off+36])
		copy(fields[i].Description[:], buf[off+160:off+192])
	}
	return fields
}

func defaultExtraBytesFields(count int) []extraBytesField {
	fields := make([]extraBytesField, count)
	for i := range fields {
		fields[i].DataType = 1 // unsigned char
		name := "FIELD_" + strconv.Itoa(i)
		copy(fields[i].Name[:], name)
	}
	return fields
}
