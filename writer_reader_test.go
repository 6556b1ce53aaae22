package laz

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func pointsEqual(t *testing.T, format PointFormat, extraBytes int, want, got Point) {
	t.Helper()
	require.Equal(t, want.X, got.X)
	require.Equal(t, want.Y, got.Y)
	require.Equal(t, want.Z, got.Z)
	require.Equal(t, want.Intensity, got.Intensity)
	require.Equal(t, want.Classification, got.Classification)
	require.Equal(t, want.UserData, got.UserData)
	require.Equal(t, want.PointSourceID, got.PointSourceID)
	require.Equal(t, want.ScanAngle, got.ScanAngle)
	if format.IsLegacy() {
		require.Equal(t, want.ReturnNumber&7, got.ReturnNumber&7)
		require.Equal(t, want.NumberOfReturns&7, got.NumberOfReturns&7)
	} else {
		require.Equal(t, want.ReturnNumber&0xF, got.ReturnNumber&0xF)
		require.Equal(t, want.NumberOfReturns&0xF, got.NumberOfReturns&0xF)
		require.Equal(t, want.ClassFlags&0xF, got.ClassFlags&0xF)
		require.Equal(t, want.ScannerChannel&3, got.ScannerChannel&3)
	}
	if format.HasGPSTime() {
		require.Equal(t, want.GPSTime, got.GPSTime)
	}
	if format.HasRGB() {
		require.Equal(t, want.RGB, got.RGB)
	}
	if format.HasNIR() {
		require.Equal(t, want.NIR, got.NIR)
	}
	if extraBytes > 0 {
		require.Equal(t, want.Extra.Data, got.Extra.Data)
	}
}

func randomPoint(r *rand.Rand, format PointFormat, extraBytes int) Point {
	pt := Point{
		X: r.Int31(), Y: r.Int31(), Z: r.Int31(),
		Intensity:      uint16(r.Intn(65536)),
		Classification: uint8(r.Intn(256)),
		UserData:       uint8(r.Intn(256)),
		PointSourceID:  uint16(r.Intn(65536)),
		ScanAngle:      int16(r.Intn(65536) - 32768),
	}
	if format.IsLegacy() {
		pt.ScanAngle = int16(int8(pt.ScanAngle)) // legacy formats store an int8 rank
		pt.NumberOfReturns = uint8(1 + r.Intn(7))
		pt.ReturnNumber = uint8(1 + r.Intn(int(pt.NumberOfReturns)))
	} else {
		pt.NumberOfReturns = uint8(1 + r.Intn(15))
		pt.ReturnNumber = uint8(1 + r.Intn(int(pt.NumberOfReturns)))
		pt.ClassFlags = uint8(r.Intn(16))
		pt.ScannerChannel = uint8(r.Intn(4))
	}
	if format.HasGPSTime() {
		pt.GPSTime = r.Float64() * 1e6
	}
	if format.HasRGB() {
		pt.RGB = RGB{R: uint16(r.Intn(65536)), G: uint16(r.Intn(65536)), B: uint16(r.Intn(65536))}
	}
	if format.HasNIR() {
		pt.NIR = NIR14{NIR: uint16(r.Intn(65536))}
	}
	if extraBytes > 0 {
		data := make([]byte, extraBytes)
		r.Read(data)
		pt.Extra = ExtraBytes{Data: data}
	}
	return pt
}

// writeThenRead writes pts with opts through a Writer, then reads them all
// back through a fresh Reader over the same bytes.
func writeThenRead(t *testing.T, opts Options, pts []Point) (*Reader, []Point) {
	t.Helper()
	f := &memFile{}
	w, err := NewWriter(f, opts)
	require.NoError(t, err)
	for _, pt := range pts {
		require.NoError(t, w.WritePoint(pt))
	}
	require.NoError(t, w.Close())

	r, err := NewReader(&memFile{buf: f.Bytes()})
	require.NoError(t, err)

	got := make([]Point, 0, len(pts))
	for {
		pt, err := r.ReadPoint()
		if err != nil {
			break
		}
		got = append(got, pt)
	}
	return r, got
}

func TestRoundTripAllFormats(t *testing.T) {
	formats := []PointFormat{PointFormat0, PointFormat1, PointFormat2, PointFormat3, PointFormat6, PointFormat7, PointFormat8}
	for _, format := range formats {
		for _, extraBytes := range []int{0, 1, 16} {
			format, extraBytes := format, extraBytes
			t.Run("", func(t *testing.T) {
				r := rand.New(rand.NewSource(int64(format)*1000 + int64(extraBytes)))
				n := 37
				pts := make([]Point, n)
				for i := range pts {
					pts[i] = randomPoint(r, format, extraBytes)
				}
				rd, got := writeThenRead(t, Options{Format: format, ExtraBytes: extraBytes}, pts)
				require.Equal(t, len(pts), len(got))
				require.Equal(t, uint64(n), rd.NumPoints())
				for i := range pts {
					pointsEqual(t, format, extraBytes, pts[i], got[i])
				}
			})
		}
	}
}

func TestRoundTripChunkBoundaries(t *testing.T) {
	const chunkSize = 100
	ns := []int{chunkSize - 1, chunkSize, chunkSize + 1, 3*chunkSize + 7}
	for _, n := range ns {
		n := n
		t.Run("", func(t *testing.T) {
			r := rand.New(rand.NewSource(int64(n)))
			pts := make([]Point, n)
			for i := range pts {
				pts[i] = randomPoint(r, PointFormat3, 0)
			}
			_, got := writeThenRead(t, Options{Format: PointFormat3, ChunkSize: chunkSize}, pts)
			require.Equal(t, n, len(got))
			for i := range pts {
				pointsEqual(t, PointFormat3, 0, pts[i], got[i])
			}
		})
	}
}

// TestFormat0Monotonic covers a simple monotonically increasing point stream.
func TestFormat0Monotonic(t *testing.T) {
	const n = 1000
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		pts[i] = Point{
			X: int32(i), Y: int32(i % 32768), Z: int32(i % 65536),
			Intensity:      uint16(i % 32768),
			Classification: uint8(i % 256),
		}
	}
	_, got := writeThenRead(t, Options{Format: PointFormat0}, pts)
	require.Len(t, got, n)
	for i := range pts {
		pointsEqual(t, PointFormat0, 0, pts[i], got[i])
	}
}

// TestFormat6WithExtraBytes covers a v1.4 format carrying extra-byte columns.
func TestFormat6WithExtraBytes(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	const n = 2000
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = randomPoint(r, PointFormat6, 8)
	}
	_, got := writeThenRead(t, Options{Format: PointFormat6, ExtraBytes: 8}, pts)
	require.Len(t, got, n)
	for i := range pts {
		pointsEqual(t, PointFormat6, 8, pts[i], got[i])
	}
}

// TestChunkTableStress checks that N=150000, chunk_size=50000 yields
// exactly 3 chunk-table entries, and that chunk 2 alone decodes to points
// 100000..149999 (0-indexed) correctly.
func TestChunkTableStress(t *testing.T) {
	const n = 150000
	const chunkSize = 50000
	r := rand.New(rand.NewSource(42))
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = randomPoint(r, PointFormat1, 0)
	}

	f := &memFile{}
	w, err := NewWriter(f, Options{Format: PointFormat1, ChunkSize: chunkSize})
	require.NoError(t, err)
	for _, pt := range pts {
		require.NoError(t, w.WritePoint(pt))
	}
	require.NoError(t, w.Close())

	rd, err := NewReader(&memFile{buf: f.Bytes()})
	require.NoError(t, err)
	require.Equal(t, 3, rd.ChunkCount())

	chunk := 2
	decoded, err := rd.DecodeChunk(chunk)
	require.NoError(t, err)
	require.Len(t, decoded, n-2*chunkSize)
	for i, pt := range decoded {
		pointsEqual(t, PointFormat1, 0, pts[2*chunkSize+i], pt)
	}
}

// TestTruncatedFile checks that a file cut off mid-stream fails cleanly
// rather than hanging or panicking.
func TestTruncatedFile(t *testing.T) {
	const n = 1000
	r := rand.New(rand.NewSource(5))
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = randomPoint(r, PointFormat1, 0)
	}

	f := &memFile{}
	w, err := NewWriter(f, Options{Format: PointFormat1})
	require.NoError(t, err)
	for _, pt := range pts {
		require.NoError(t, w.WritePoint(pt))
	}
	require.NoError(t, w.Close())

	truncated := f.truncated(1)
	rd, openErr := NewReader(truncated)
	if openErr != nil {
		require.Truef(t,
			errors.Is(openErr, ErrUnexpectedEndOfInput) || errors.Is(openErr, ErrUnsupportedChunkTable),
			"unexpected error type: %v", openErr)
		return
	}

	// Whether the truncated byte lands in the chunk table or a chunk body,
	// the reader must surface one of the two sentinel errors that describe
	// running out of input, and must do so within a bounded number of
	// reads rather than looping forever.
	var readErr error
	for i := 0; i < n+1; i++ {
		if _, readErr = rd.ReadPoint(); readErr != nil {
			break
		}
	}
	require.Error(t, readErr)
	require.Truef(t,
		errors.Is(readErr, ErrUnexpectedEndOfInput) || errors.Is(readErr, ErrUnsupportedChunkTable),
		"unexpected error type: %v", readErr)
}

// TestInvalidMagic checks that a file with the wrong magic bytes is rejected.
func TestInvalidMagic(t *testing.T) {
	buf := make([]byte, headerSizeV12)
	copy(buf, []byte("LAZF"))
	_, err := NewReader(&memFile{buf: buf})
	require.ErrorIs(t, err, ErrMagicMismatch)
}

func TestSinglePointFile(t *testing.T) {
	pts := []Point{{X: 1, Y: 2, Z: 3, Classification: 7}}
	rd, got := writeThenRead(t, Options{Format: PointFormat0}, pts)
	require.Len(t, got, 1)
	require.Equal(t, 1, rd.ChunkCount())
	pointsEqual(t, PointFormat0, 0, pts[0], got[0])
}

// TestVariableChunkSize exercises chunk_size == 0xFFFFFFFF, where the
// writer's caller controls chunk boundaries directly and the chunk table
// additionally records each chunk's point count.
func TestVariableChunkSize(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	const n = 250
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = randomPoint(r, PointFormat3, 0)
	}

	f := &memFile{}
	w, err := NewWriter(f, Options{Format: PointFormat3, ChunkSize: variableChunkSize})
	require.NoError(t, err)
	boundaries := []int{73, 60, 117} // sums to 250, three uneven chunks
	start := 0
	for _, size := range boundaries {
		for _, pt := range pts[start : start+size] {
			require.NoError(t, w.WritePoint(pt))
		}
		require.NoError(t, w.flushChunk())
		start += size
	}
	require.NoError(t, w.Close())

	rd, err := NewReader(&memFile{buf: f.Bytes()})
	require.NoError(t, err)
	require.Equal(t, len(boundaries), rd.ChunkCount())

	got := make([]Point, 0, n)
	for {
		pt, err := rd.ReadPoint()
		if err != nil {
			break
		}
		got = append(got, pt)
	}
	require.Len(t, got, n)
	for i := range pts {
		pointsEqual(t, PointFormat3, 0, pts[i], got[i])
	}
}

func TestChunkDigestsAndVerify(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	const n = 500
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = randomPoint(r, PointFormat2, 0)
	}

	f := &memFile{}
	w, err := NewWriter(f, Options{Format: PointFormat2, ChunkSize: 100, ChunkDigests: true})
	require.NoError(t, err)
	for _, pt := range pts {
		require.NoError(t, w.WritePoint(pt))
	}
	require.NoError(t, w.Close())
	digests := w.ChunkDigests()
	require.Len(t, digests, 5)

	rd, err := NewReader(&memFile{buf: f.Bytes()})
	require.NoError(t, err)
	for i, digest := range digests {
		ok, err := rd.VerifyChunk(i, digest)
		require.NoError(t, err)
		require.True(t, ok)
	}

	badDigest := make([]byte, 8)
	ok, err := rd.VerifyChunk(0, badDigest)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestParallelDecodeChunks(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	const n = 3000
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = randomPoint(r, PointFormat7, 0)
	}

	f := &memFile{}
	w, err := NewWriter(f, Options{Format: PointFormat7, ChunkSize: 500})
	require.NoError(t, err)
	for _, pt := range pts {
		require.NoError(t, w.WritePoint(pt))
	}
	require.NoError(t, w.Close())

	rd, err := NewReader(&memFile{buf: f.Bytes()})
	require.NoError(t, err)
	chunks, err := rd.ParallelDecodeChunks(context.Background())
	require.NoError(t, err)
	require.Equal(t, 6, len(chunks))

	idx := 0
	for _, chunk := range chunks {
		for _, pt := range chunk {
			pointsEqual(t, PointFormat7, 0, pts[idx], pt)
			idx++
		}
	}
	require.Equal(t, n, idx)
}

func TestUncompressedRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	const n = 1234
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = randomPoint(r, PointFormat3, 4)
	}

	uncompressed := false
	rd, got := writeThenRead(t, Options{Format: PointFormat3, ExtraBytes: 4, Compressed: &uncompressed}, pts)
	require.False(t, rd.Compressed)
	require.Len(t, got, n)
	for i := range pts {
		pointsEqual(t, PointFormat3, 4, pts[i], got[i])
	}
}

func TestMinMaxAndCounts(t *testing.T) {
	pts := []Point{
		{X: -100, Y: 200, Z: 0, ReturnNumber: 1, NumberOfReturns: 1},
		{X: 500, Y: -50, Z: 300, ReturnNumber: 1, NumberOfReturns: 2},
		{X: 10, Y: 10, Z: -200, ReturnNumber: 2, NumberOfReturns: 2},
	}
	f := &memFile{}
	w, err := NewWriter(f, Options{Format: PointFormat0})
	require.NoError(t, err)
	for _, pt := range pts {
		require.NoError(t, w.WritePoint(pt))
	}
	require.NoError(t, w.Close())

	rd, err := NewReader(&memFile{buf: f.Bytes()})
	require.NoError(t, err)
	require.Equal(t, uint64(3), rd.NumPoints())
	require.InDelta(t, -1.0, rd.Header.MinX, 1e-9)
	require.InDelta(t, 5.0, rd.Header.MaxX, 1e-9)
	require.Equal(t, uint32(2), rd.Header.PointsByReturn[0])
	require.Equal(t, uint32(1), rd.Header.PointsByReturn[1])
}
