package laz

// PointFormat identifies a LAS point data record format. golaz supports the
// formats whose LAZ-compressed item types are defined by the LASzip
// compatibility layer: the legacy point10-based formats and the v1.4
// point14-based formats.
type PointFormat uint8

const (
	PointFormat0 PointFormat = 0 // point10
	PointFormat1 PointFormat = 1 // point10 + gpstime
	PointFormat2 PointFormat = 2 // point10 + rgb
	PointFormat3 PointFormat = 3 // point10 + gpstime + rgb
	PointFormat6 PointFormat = 6 // point14
	PointFormat7 PointFormat = 7 // point14 + rgb14
	PointFormat8 PointFormat = 8 // point14 + rgb14 + nir14
)

// HasGPSTime reports whether this point format carries a GPS time field.
func (f PointFormat) HasGPSTime() bool {
	switch f {
	case PointFormat1, PointFormat3, PointFormat6, PointFormat7, PointFormat8:
		return true
	default:
		return false
	}
}

// HasRGB reports whether this point format carries an RGB color field.
func (f PointFormat) HasRGB() bool {
	switch f {
	case PointFormat2, PointFormat3, PointFormat7, PointFormat8:
		return true
	default:
		return false
	}
}

// HasNIR reports whether this point format carries a near-infrared field.
// Only format 8 does; NIR always travels with RGB in the v1.4 item set.
func (f PointFormat) HasNIR() bool {
	return f == PointFormat8
}

// IsLegacy reports whether this format uses the point10 (pre-1.4) base
// layout rather than point14.
func (f PointFormat) IsLegacy() bool {
	switch f {
	case PointFormat0, PointFormat1, PointFormat2, PointFormat3:
		return true
	default:
		return false
	}
}

// Point10 is the legacy (point data record formats 0-3) base point layout.
type Point10 struct {
	X, Y, Z           int32
	Intensity         uint16
	ReturnNumber      uint8 // 3 bits
	NumberOfReturns   uint8 // 3 bits
	ScanDirectionFlag uint8 // 1 bit
	EdgeOfFlightLine  uint8 // 1 bit
	Classification    uint8
	ScanAngleRank     int8
	UserData          uint8
	PointSourceID     uint16
}

// Point14 is the v1.4 (point data record formats 6-8) base point layout,
// with wider return counters and an explicit scanner channel.
type Point14 struct {
	X, Y, Z         int32
	Intensity       uint16
	ReturnNumber    uint8 // 4 bits
	NumberOfReturns uint8 // 4 bits
	ClassFlags      uint8 // 4 bits: synthetic/key-point/withheld/overlap
	ScannerChannel  uint8 // 2 bits, 0-3
	ScanDirection   uint8 // 1 bit
	EdgeOfFlight    uint8 // 1 bit
	Classification  uint8
	UserData        uint8
	ScanAngle       int16 // 0.006-degree units
	PointSourceID   uint16
	GPSTime         float64
}

// RGB is the legacy 3-channel 16-bit color field.
type RGB struct {
	R, G, B uint16
}

// NIR14 is the v1.4 single-channel 16-bit near-infrared field, always
// stored alongside an RGB14 field.
type NIR14 struct {
	NIR uint16
}

// ExtraBytes holds a point's trailing per-point byte columns, whose count
// and semantics are defined by the extra-bytes VLR rather than the point
// format itself.
type ExtraBytes struct {
	Data []byte
}
