package laz

// Point is the caller-facing point record: a superset of every field any
// supported point data record format can carry. Writer and Reader trade in
// this type; which fields are meaningful is determined by the PointFormat
// the stream was opened with.
type Point struct {
	X, Y, Z         int32
	Intensity       uint16
	ReturnNumber    uint8
	NumberOfReturns uint8
	ClassFlags      uint8 // v1.4 only: synthetic/key-point/withheld/overlap
	ScannerChannel  uint8 // v1.4 only, 0-3
	ScanDirection   uint8
	EdgeOfFlight    uint8
	Classification  uint8
	UserData        uint8
	ScanAngle       int16 // legacy formats store this as an int8 rank
	PointSourceID   uint16
	GPSTime         float64
	RGB             RGB
	NIR             NIR14
	Extra           ExtraBytes
}

func (p Point) toPoint10() Point10 {
	return Point10{
		X: p.X, Y: p.Y, Z: p.Z,
		Intensity:         p.Intensity,
		ReturnNumber:      p.ReturnNumber & 7,
		NumberOfReturns:   p.NumberOfReturns & 7,
		ScanDirectionFlag: p.ScanDirection & 1,
		EdgeOfFlightLine:  p.EdgeOfFlight & 1,
		Classification:    p.Classification,
		ScanAngleRank:     int8(p.ScanAngle),
		UserData:          p.UserData,
		PointSourceID:     p.PointSourceID,
	}
}

func fromPoint10(pt Point10) Point {
	return Point{
		X: pt.X, Y: pt.Y, Z: pt.Z,
		Intensity:       pt.Intensity,
		ReturnNumber:    pt.ReturnNumber,
		NumberOfReturns: pt.NumberOfReturns,
		ScanDirection:   pt.ScanDirectionFlag,
		EdgeOfFlight:    pt.EdgeOfFlightLine,
		Classification:  pt.Classification,
		ScanAngle:       int16(pt.ScanAngleRank),
		UserData:        pt.UserData,
		PointSourceID:   pt.PointSourceID,
	}
}

func (p Point) toPoint14() Point14 {
	return Point14{
		X: p.X, Y: p.Y, Z: p.Z,
		Intensity:       p.Intensity,
		ReturnNumber:    p.ReturnNumber & 0xF,
		NumberOfReturns: p.NumberOfReturns & 0xF,
		ClassFlags:      p.ClassFlags & 0xF,
		ScannerChannel:  p.ScannerChannel & 3,
		ScanDirection:   p.ScanDirection & 1,
		EdgeOfFlight:    p.EdgeOfFlight & 1,
		Classification:  p.Classification,
		UserData:        p.UserData,
		ScanAngle:       p.ScanAngle,
		PointSourceID:   p.PointSourceID,
		GPSTime:         p.GPSTime,
	}
}

func fromPoint14(pt Point14) Point {
	return Point{
		X: pt.X, Y: pt.Y, Z: pt.Z,
		Intensity:       pt.Intensity,
		ReturnNumber:    pt.ReturnNumber,
		NumberOfReturns: pt.NumberOfReturns,
		ClassFlags:      pt.ClassFlags,
		ScannerChannel:  pt.ScannerChannel,
		ScanDirection:   pt.ScanDirection,
		EdgeOfFlight:    pt.EdgeOfFlight,
		Classification:  pt.Classification,
		UserData:        pt.UserData,
		ScanAngle:       pt.ScanAngle,
		PointSourceID:   pt.PointSourceID,
		GPSTime:         pt.GPSTime,
	}
}

// LAZ item type identifiers, as carried by the LAZ VLR's item list
// (the LAZ item-type table).
const (
	ItemBYTE     uint16 = 0
	ItemPOINT10  uint16 = 6
	ItemGPSTIME  uint16 = 7
	ItemRGB12    uint16 = 8
	ItemPOINT14  uint16 = 10
	ItemRGB14    uint16 = 11
	ItemRGBNIR14 uint16 = 12
	ItemBYTE14   uint16 = 14
)

// itemSize returns the on-wire point-record byte size of one instance of
// the given item type, used both to size the extra-bytes residual and to
// validate a LAZ VLR's item list against point_record_length.
func itemSize(itemType uint16) int {
	switch itemType {
	case ItemBYTE:
		return 1
	case ItemPOINT10:
		return 20
	case ItemGPSTIME:
		return 8
	case ItemRGB12:
		return 6
	case ItemPOINT14:
		return 30
	case ItemRGB14:
		return 6
	case ItemRGBNIR14:
		return 8
	case ItemBYTE14:
		return 1
	default:
		return 0
	}
}

// schemaItems returns the ordered LAZ item list for a point format and
// extra-byte column count, mirroring laz_vlr::from_schema.
func schemaItems(format PointFormat, extraBytes int) []LazItem {
	var items []LazItem
	if format.IsLegacy() {
		items = append(items, LazItem{Type: ItemPOINT10, Size: 20, Version: 2})
		if format.HasGPSTime() {
			items = append(items, LazItem{Type: ItemGPSTIME, Size: 8, Version: 2})
		}
		if format.HasRGB() {
			items = append(items, LazItem{Type: ItemRGB12, Size: 6, Version: 2})
		}
		if extraBytes > 0 {
			items = append(items, LazItem{Type: ItemBYTE, Size: uint16(extraBytes), Version: 2})
		}
		return items
	}

	items = append(items, LazItem{Type: ItemPOINT14, Size: 30, Version: 3})
	switch {
	case format.HasNIR():
		items = append(items, LazItem{Type: ItemRGBNIR14, Size: 8, Version: 3})
	case format.HasRGB():
		items = append(items, LazItem{Type: ItemRGB14, Size: 6, Version: 3})
	}
	if extraBytes > 0 {
		items = append(items, LazItem{Type: ItemBYTE14, Size: uint16(extraBytes), Version: 3})
	}
	return items
}
