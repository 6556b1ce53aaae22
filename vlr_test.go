package laz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVLRHeaderMarshalUnmarshal(t *testing.T) {
	h := newVLRHeader(laszipUserID, laszipRecordID, 100, "laz-perf variant")
	buf := h.marshal()
	require.Len(t, buf, vlrHeaderSize)

	got := unmarshalVLRHeader(buf)
	require.Equal(t, laszipUserID, userIDString(got.UserID))
	require.Equal(t, uint16(laszipRecordID), got.RecordID)
	require.Equal(t, uint16(100), got.RecordLength)
}

func TestBuildLazVLRRoundTrip(t *testing.T) {
	for _, format := range []PointFormat{PointFormat0, PointFormat3, PointFormat6, PointFormat8} {
		vlr := BuildLazVLR(format, 4, 50000)
		buf := vlr.marshal()

		got, err := unmarshalLazVLR(buf)
		require.NoError(t, err)
		require.Equal(t, vlr.Compressor, got.Compressor)
		require.Equal(t, vlr.ChunkSize, got.ChunkSize)
		require.Equal(t, vlr.Items, got.Items)

		schema, extraBytes, err := SchemaFromLazVLR(got)
		require.NoError(t, err)
		require.Equal(t, format, schema)
		require.Equal(t, 4, extraBytes)
	}
}

func TestBuildLazVLRCompressorByFormat(t *testing.T) {
	require.Equal(t, uint16(compressorLegacyChunked), BuildLazVLR(PointFormat0, 0, 0).Compressor)
	require.Equal(t, uint16(compressorLegacyChunked), BuildLazVLR(PointFormat3, 0, 0).Compressor)
	require.Equal(t, uint16(compressorV14Chunked), BuildLazVLR(PointFormat6, 0, 0).Compressor)
	require.Equal(t, uint16(compressorV14Chunked), BuildLazVLR(PointFormat8, 0, 0).Compressor)
}

func TestValidateLazVLR(t *testing.T) {
	vlr := BuildLazVLR(PointFormat3, 0, 50000)
	require.NoError(t, validateLazVLR(vlr, 34))
	require.Error(t, validateLazVLR(vlr, 20))
}

func TestSchemaFromLazVLRRejectsUnknownItem(t *testing.T) {
	vlr := LazVLR{Items: []LazItem{{Type: 255, Size: 1}}}
	_, _, err := SchemaFromLazVLR(vlr)
	require.ErrorIs(t, err, ErrInvalidPointFormat)
}

func TestExtraBytesVLRRoundTrip(t *testing.T) {
	fields := defaultExtraBytesFields(3)
	require.Len(t, fields, 3)
	require.Equal(t, "FIELD_0", trimNUL(fields[0].Name[:]))
	require.Equal(t, "FIELD_2", trimNUL(fields[2].Name[:]))

	payload := marshalExtraBytesVLR(fields)
	require.Len(t, payload, extraBytesFieldSize*3)

	got := unmarshalExtraBytesVLR(payload)
	require.Len(t, got, 3)
	for i := range got {
		require.Equal(t, uint8(1), got[i].DataType)
		require.Equal(t, trimNUL(fields[i].Name[:]), trimNUL(got[i].Name[:]))
	}
}

func trimNUL(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}
