package laz

import (
	"context"
	"encoding/binary"
	"io"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"
)

// chunkTableOffsetUnsupported is the on-wire sentinel (-1 reinterpreted as
// uint64) marking "no chunk table, scan the stream instead". golaz requires
// a chunk table and returns ErrUnsupportedChunkTable rather than falling
// back to a linear scan.
const chunkTableOffsetUnsupported = ^uint64(0)

// Reader streams points out of a LAS/LAZ file, decoding one chunk at a
// time as the sequential ReadPoint cursor crosses chunk boundaries.
// DecodeChunk and ParallelDecodeChunks give random access to individual
// chunks, since the chunk table makes every chunk's byte range known up
// front.
type Reader struct {
	r io.ReadSeeker

	Header     Header
	LazVLR     LazVLR
	Format     PointFormat
	ExtraBytes int
	Compressed bool

	firstChunkOffset int64
	chunkOffsets     []int64
	chunkCounts      []int
	chunkSize        uint32

	curChunk  int
	curPoints []Point
	curIdx    int
}

// NewReader opens r, parses the LAS header, VLRs, and (for compressed
// files) the chunk table, and positions the stream at the first point.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	base := make([]byte, headerSizeV12)
	if _, err := io.ReadFull(r, base); err != nil {
		return nil, wrapErr(ErrUnexpectedEndOfInput, 0)
	}
	if string(base[0:4]) != string(lasMagic[:]) {
		return nil, wrapErr(ErrMagicMismatch, 0)
	}

	headerBuf := base
	if base[25] == 4 { // version minor
		rest := make([]byte, headerSizeV14-headerSizeV12)
		if _, err := io.ReadFull(r, rest); err != nil {
			return nil, wrapErr(ErrUnexpectedEndOfInput, headerSizeV12)
		}
		headerBuf = append(base, rest...)
	} else if base[25] == 3 {
		rest := make([]byte, headerSizeV13-headerSizeV12)
		if _, err := io.ReadFull(r, rest); err != nil {
			return nil, wrapErr(ErrUnexpectedEndOfInput, headerSizeV12)
		}
		headerBuf = append(base, rest...)
	}

	header, err := unmarshalHeader(headerBuf)
	if err != nil {
		return nil, err
	}

	bit6 := header.PointFormatID & 0x40
	if bit6 != 0 {
		return nil, wrapErr(ErrInvalidCompressionFlags, 104)
	}

	format := header.pointFormat()
	if !validPointFormat(format) {
		return nil, wrapErr(ErrInvalidPointFormat, 104)
	}

	rd := &Reader{r: r, Header: *header, Format: format, Compressed: header.compressed()}

	if err := rd.readVLRs(); err != nil {
		return nil, err
	}

	if rd.Compressed {
		if err := rd.readChunkTable(); err != nil {
			return nil, err
		}
	} else {
		rd.firstChunkOffset = int64(header.PointOffset)
		total := int64(rd.numPoints())
		end := rd.firstChunkOffset + total*int64(header.PointRecordLength)
		rd.chunkOffsets = []int64{rd.firstChunkOffset, end}
		rd.chunkCounts = []int{int(rd.numPoints())}
	}

	return rd, nil
}

func (h *Header) numPointsTotal() uint64 {
	if h.VersionMinor == 4 && h.PointCount14 != 0 {
		return h.PointCount14
	}
	return uint64(h.PointCount)
}

func (rd *Reader) numPoints() uint64 { return rd.Header.numPointsTotal() }

// NumPoints reports the total point count declared by the header.
func (rd *Reader) NumPoints() uint64 { return rd.numPoints() }

// ChunkCount reports the number of independently-decodable chunks.
func (rd *Reader) ChunkCount() int { return len(rd.chunkCounts) }

func (rd *Reader) readVLRs() error {
	pos := int64(rd.Header.HeaderSize)
	if _, err := rd.r.Seek(pos, io.SeekStart); err != nil {
		return err
	}

	var haveLaz bool
	for i := uint32(0); i < rd.Header.VLRCount; i++ {
		hdrBuf := make([]byte, vlrHeaderSize)
		if _, err := io.ReadFull(rd.r, hdrBuf); err != nil {
			return wrapErr(ErrUnexpectedEndOfInput, pos)
		}
		vh := unmarshalVLRHeader(hdrBuf)
		payload := make([]byte, vh.RecordLength)
		if _, err := io.ReadFull(rd.r, payload); err != nil {
			return wrapErr(ErrUnexpectedEndOfInput, pos+vlrHeaderSize)
		}

		switch {
		case userIDString(vh.UserID) == laszipUserID && vh.RecordID == laszipRecordID:
			lazVLR, err := unmarshalLazVLR(payload)
			if err != nil {
				return err
			}
			rd.LazVLR = lazVLR
			rd.chunkSize = lazVLR.ChunkSize
			haveLaz = true
		case userIDString(vh.UserID) == extraBytesUserID && vh.RecordID == extraBytesRecordID:
			rd.ExtraBytes = len(unmarshalExtraBytesVLR(payload))
		}

		pos += vlrHeaderSize + int64(vh.RecordLength)
	}

	if rd.Compressed {
		if !haveLaz {
			return wrapErr(ErrMissingLaszipVLR, pos)
		}
		if rd.LazVLR.Compressor != compressorLegacyChunked && rd.LazVLR.Compressor != compressorV14Chunked {
			return wrapErr(ErrUnsupportedCompressor, pos)
		}
		if rd.ExtraBytes == 0 {
			// No extra-bytes VLR; fall back to the LAZ item list's
			// residual BYTE/BYTE14 size.
			for _, it := range rd.LazVLR.Items {
				if it.Type == ItemBYTE || it.Type == ItemBYTE14 {
					rd.ExtraBytes = int(it.Size)
				}
			}
		}
	}

	return nil
}

func (rd *Reader) readChunkTable() error {
	slotOffset := int64(rd.Header.PointOffset)
	if _, err := rd.r.Seek(slotOffset, io.SeekStart); err != nil {
		return err
	}
	var slot [8]byte
	if _, err := io.ReadFull(rd.r, slot[:]); err != nil {
		return wrapErr(ErrUnexpectedEndOfInput, slotOffset)
	}
	tableOffset := binary.LittleEndian.Uint64(slot[:])
	if tableOffset == chunkTableOffsetUnsupported {
		return wrapErr(ErrUnsupportedChunkTable, slotOffset)
	}

	rd.firstChunkOffset = slotOffset + 8

	if _, err := rd.r.Seek(int64(tableOffset), io.SeekStart); err != nil {
		return err
	}
	tableBuf, err := io.ReadAll(rd.r)
	if err != nil {
		return err
	}

	variable := rd.chunkSize == variableChunkSize
	if variable {
		entries, offsets, err := decodeVariableChunkTable(tableBuf, rd.firstChunkOffset)
		if err != nil {
			return err
		}
		rd.chunkOffsets = offsets
		rd.chunkCounts = make([]int, len(entries))
		for i, e := range entries {
			rd.chunkCounts[i] = int(e.count)
		}
		return nil
	}

	_, offsets, err := decodeChunkTable(tableBuf, rd.firstChunkOffset)
	if err != nil {
		return err
	}
	rd.chunkOffsets = offsets

	total := int(rd.numPoints())
	size := int(rd.chunkSize)
	if size == 0 {
		size = DefaultChunkSize
	}
	n := len(offsets) - 1
	rd.chunkCounts = make([]int, n)
	remaining := total
	for i := 0; i < n; i++ {
		if i < n-1 {
			rd.chunkCounts[i] = size
			remaining -= size
		} else {
			rd.chunkCounts[i] = remaining
		}
	}
	return nil
}

// chunkBytes returns the raw (still compressed, for a compressed stream)
// bytes of chunk i.
func (rd *Reader) chunkBytes(i int) ([]byte, error) {
	start, end := rd.chunkOffsets[i], rd.chunkOffsets[i+1]
	if _, err := rd.r.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, end-start)
	if _, err := io.ReadFull(rd.r, buf); err != nil {
		return nil, wrapChunkErr(ErrUnexpectedEndOfInput, start, i)
	}
	return buf, nil
}

// DecodeChunk decodes chunk i (0-indexed) independently of the sequential
// ReadPoint cursor.
func (rd *Reader) DecodeChunk(i int) ([]Point, error) {
	if i < 0 || i >= len(rd.chunkCounts) {
		return nil, wrapChunkErr(ErrDecodeMismatch, 0, i)
	}
	buf, err := rd.chunkBytes(i)
	if err != nil {
		return nil, err
	}
	return rd.decodeChunkBytes(buf, rd.chunkCounts[i], i)
}

func (rd *Reader) decodeChunkBytes(buf []byte, count int, chunkIdx int) ([]Point, error) {
	if !rd.Compressed {
		return decodeRawChunk(rd.Format, rd.ExtraBytes, buf, count), nil
	}
	if rd.Format.IsLegacy() {
		return decodeLegacyChunk(rd.Format, rd.ExtraBytes, buf, count), nil
	}
	points, err := decodeV14Chunk(rd.Format, rd.ExtraBytes, buf)
	if err != nil {
		return nil, wrapChunkErr(err, rd.chunkOffsets[chunkIdx], chunkIdx)
	}
	return points, nil
}

// VerifyChunk compares chunk i's raw compressed bytes against digest, an
// xxhash-64 checksum as produced by Writer.ChunkDigests. This is an
// additive integrity check outside the wire format; it is meaningless
// against a file golaz didn't write the digest for.
func (rd *Reader) VerifyChunk(i int, digest []byte) (bool, error) {
	buf, err := rd.chunkBytes(i)
	if err != nil {
		return false, err
	}
	var got [8]byte
	binary.LittleEndian.PutUint64(got[:], xxhash.Sum64(buf))
	return string(got[:]) == string(digest), nil
}

// ParallelDecodeChunks decodes every chunk concurrently and returns the
// per-chunk point slices in chunk order. Chunks are independent by
// construction, so this is safe whenever the underlying reader can serve
// concurrent reads; golaz buffers each chunk's bytes under a single
// mutex-free sequential read before handing decoding off
// to the worker pool, so r only needs to support Seek, not concurrent
// access.
func (rd *Reader) ParallelDecodeChunks(ctx context.Context) ([][]Point, error) {
	n := len(rd.chunkCounts)
	bufs := make([][]byte, n)
	for i := 0; i < n; i++ {
		buf, err := rd.chunkBytes(i)
		if err != nil {
			return nil, err
		}
		bufs[i] = buf
	}

	results := make([][]Point, n)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			points, err := rd.decodeChunkBytes(bufs[i], rd.chunkCounts[i], i)
			if err != nil {
				return err
			}
			results[i] = points
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ReadPoint returns the next point in stream order, decoding a new chunk
// whenever the cursor crosses a chunk boundary.
func (rd *Reader) ReadPoint() (Point, error) {
	for rd.curIdx >= len(rd.curPoints) {
		if rd.curChunk >= len(rd.chunkCounts) {
			return Point{}, io.EOF
		}
		points, err := rd.DecodeChunk(rd.curChunk)
		if err != nil {
			return Point{}, err
		}
		rd.curPoints = points
		rd.curIdx = 0
		rd.curChunk++
	}
	pt := rd.curPoints[rd.curIdx]
	rd.curIdx++
	return pt, nil
}
