package laz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaItemsLegacy(t *testing.T) {
	items := schemaItems(PointFormat3, 5)
	require.Equal(t, []LazItem{
		{Type: ItemPOINT10, Size: 20, Version: 2},
		{Type: ItemGPSTIME, Size: 8, Version: 2},
		{Type: ItemRGB12, Size: 6, Version: 2},
		{Type: ItemBYTE, Size: 5, Version: 2},
	}, items)
}

func TestSchemaItemsV14(t *testing.T) {
	items := schemaItems(PointFormat8, 0)
	require.Equal(t, []LazItem{
		{Type: ItemPOINT14, Size: 30, Version: 3},
		{Type: ItemRGBNIR14, Size: 8, Version: 3},
	}, items)

	items = schemaItems(PointFormat6, 3)
	require.Equal(t, []LazItem{
		{Type: ItemPOINT14, Size: 30, Version: 3},
		{Type: ItemBYTE14, Size: 3, Version: 3},
	}, items)
}

func TestItemSize(t *testing.T) {
	require.Equal(t, 1, itemSize(ItemBYTE))
	require.Equal(t, 20, itemSize(ItemPOINT10))
	require.Equal(t, 8, itemSize(ItemGPSTIME))
	require.Equal(t, 6, itemSize(ItemRGB12))
	require.Equal(t, 30, itemSize(ItemPOINT14))
	require.Equal(t, 6, itemSize(ItemRGB14))
	require.Equal(t, 8, itemSize(ItemRGBNIR14))
	require.Equal(t, 1, itemSize(ItemBYTE14))
	require.Equal(t, 0, itemSize(9999))
}

func TestPoint10RoundTripConversion(t *testing.T) {
	pt := Point{
		X: 42, Y: -7, Z: 1000,
		Intensity: 512, ReturnNumber: 3, NumberOfReturns: 4,
		ScanDirection: 1, EdgeOfFlight: 0,
		Classification: 9, ScanAngle: -30, UserData: 200,
		PointSourceID: 1234,
	}
	p10 := pt.toPoint10()
	back := fromPoint10(p10)
	require.Equal(t, pt.X, back.X)
	require.Equal(t, pt.Y, back.Y)
	require.Equal(t, pt.Z, back.Z)
	require.Equal(t, pt.Intensity, back.Intensity)
	require.Equal(t, pt.ReturnNumber, back.ReturnNumber)
	require.Equal(t, pt.NumberOfReturns, back.NumberOfReturns)
	require.Equal(t, pt.ScanDirection, back.ScanDirection)
	require.Equal(t, pt.Classification, back.Classification)
	require.Equal(t, pt.ScanAngle, back.ScanAngle)
	require.Equal(t, pt.UserData, back.UserData)
	require.Equal(t, pt.PointSourceID, back.PointSourceID)
}

func TestPoint14RoundTripConversion(t *testing.T) {
	pt := Point{
		X: 42, Y: -7, Z: 1000,
		Intensity: 512, ReturnNumber: 9, NumberOfReturns: 12,
		ClassFlags: 5, ScannerChannel: 2, ScanDirection: 1, EdgeOfFlight: 0,
		Classification: 9, ScanAngle: -3000, UserData: 200,
		PointSourceID: 1234, GPSTime: 123456.789,
	}
	p14 := pt.toPoint14()
	back := fromPoint14(p14)
	require.Equal(t, pt, back)
}
