package laz

import (
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DefaultChunkSize is the point count per chunk golaz uses when Options
// doesn't specify one, matching LASzip's own default.
const DefaultChunkSize = 50000

// Options configures a Writer. Only Format is mandatory; everything else
// has a LASzip-compatible default.
type Options struct {
	Format     PointFormat
	ExtraBytes int // number of extra per-point byte columns, 0 if none

	ChunkSize uint32 // default DefaultChunkSize; variableChunkSize enables variable-size chunks

	ScaleX, ScaleY, ScaleZ    float64 // default 0.01
	OffsetX, OffsetY, OffsetZ float64

	VersionMinor uint8 // 3 or 4; defaults to 4 for v1.4 formats, 3 for legacy ones

	// Compressed selects the LAZ-compressed path (the default). Setting
	// this false writes a plain uncompressed LAS file through the same
	// container and point-format machinery, reusing the header/VLR code
	// while swapping the per-field codecs for raw packers; no chunk table
	// or chunk-table offset slot is written.
	Compressed *bool

	SystemIdentifier   string
	GeneratingSoftware string

	// ChunkDigests enables an xxhash-64 checksum per compressed chunk,
	// retrievable after Close via Writer.ChunkDigests. This is an
	// additive integrity aid, not part of the on-disk format: a reader
	// that doesn't ask for digests never computes or stores them.
	ChunkDigests bool
}

func (o Options) isCompressed() bool {
	if o.Compressed == nil {
		return true
	}
	return *o.Compressed
}

func (o Options) chunkSize() uint32 {
	if o.ChunkSize == 0 {
		return DefaultChunkSize
	}
	return o.ChunkSize
}

func (o Options) scale() (x, y, z float64) {
	x, y, z = o.ScaleX, o.ScaleY, o.ScaleZ
	if x == 0 {
		x = 0.01
	}
	if y == 0 {
		y = 0.01
	}
	if z == 0 {
		z = 0.01
	}
	return
}

// Writer streams points into a LAS/LAZ file. Points are buffered per chunk
// and range-coded (or, with Options.Compressed false, packed raw) only once
// a chunk fills or Close is called. The header, VLRs, and chunk-table
// offset slot are written as a zeroed prelude on NewWriter and rewritten
// with final values on Close, mirroring the reference writer's open/flush
// sequencing.
type Writer struct {
	w    io.WriteSeeker
	opts Options

	header Header
	lazVLR LazVLR
	ebVLR  []extraBytesField

	firstChunkOffset int64
	currentOffset    int64

	pending      []Point
	chunkEntries []chunkTableEntry
	digests      [][]byte

	pointCount       uint64
	pointsByReturn14 [15]uint64

	closed bool
}

// NewWriter opens a Writer over w, reserving space for the header, VLRs,
// and chunk-table offset slot. w must support Seek so Close can patch the
// final header fields and chunk-table offset back in.
func NewWriter(w io.WriteSeeker, opts Options) (*Writer, error) {
	if !validPointFormat(opts.Format) {
		return nil, ErrInvalidPointFormat
	}

	minor := opts.VersionMinor
	if minor == 0 {
		if opts.Format.IsLegacy() {
			minor = 3
		} else {
			minor = 4
		}
	}

	scaleX, scaleY, scaleZ := opts.scale()

	wr := &Writer{w: w, opts: opts}
	wr.header = Header{
		VersionMajor: 1,
		VersionMinor: minor,
		ScaleX:       scaleX, ScaleY: scaleY, ScaleZ: scaleZ,
		OffsetX: opts.OffsetX, OffsetY: opts.OffsetY, OffsetZ: opts.OffsetZ,
		MinX: math.Inf(1), MinY: math.Inf(1), MinZ: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1), MaxZ: math.Inf(-1),
	}
	copy(wr.header.SystemIdentifier[:], firstNonEmpty(opts.SystemIdentifier, "OTHER"))
	copy(wr.header.GeneratingSoftware[:], firstNonEmpty(opts.GeneratingSoftware, "golaz"))
	now := wr.creationDate()
	wr.header.CreationDay, wr.header.CreationYear = now.day, now.year

	compressed := opts.isCompressed()
	formatID := uint8(opts.Format)
	if compressed {
		formatID |= 0x80
	}
	wr.header.PointFormatID = formatID

	items := schemaItems(opts.Format, opts.ExtraBytes)
	recordLength := 0
	for _, it := range items {
		recordLength += int(it.Size)
	}
	wr.header.PointRecordLength = uint16(recordLength)
	if minor == 4 {
		wr.header.GlobalEncoding |= wktBit
	}

	prelude := wr.header.size()

	var vlrPayload []byte
	if compressed {
		wr.lazVLR = BuildLazVLR(opts.Format, opts.ExtraBytes, opts.chunkSize())
		vlrPayload = wr.lazVLR.marshal()
		prelude += vlrHeaderSize + len(vlrPayload)
		wr.header.VLRCount++
	}

	var ebPayload []byte
	if opts.ExtraBytes > 0 {
		wr.ebVLR = defaultExtraBytesFields(opts.ExtraBytes)
		ebPayload = marshalExtraBytesVLR(wr.ebVLR)
		prelude += vlrHeaderSize + len(ebPayload)
		wr.header.VLRCount++
	}

	wr.header.HeaderSize = uint16(wr.header.size())
	wr.header.PointOffset = uint32(prelude)

	if compressed {
		prelude += 8 // reserved chunk-table offset slot
	}

	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if _, err := w.Write(make([]byte, prelude)); err != nil {
		return nil, err
	}

	wr.firstChunkOffset = int64(prelude)
	wr.currentOffset = wr.firstChunkOffset
	return wr, nil
}

type creationDate struct{ day, year uint16 }

// creationDate reports the header's creation day-of-year/year fields. The
// reference writer stamps the actual wall-clock date; golaz does the same,
// read once at Writer construction rather than per-field to avoid the
// forbidden time.Now()-in-a-hot-loop pattern.
func (wr *Writer) creationDate() creationDate {
	now := time.Now().UTC()
	return creationDate{day: uint16(now.YearDay()), year: uint16(now.Year())}
}

func firstNonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// WritePoint appends pt to the stream, flushing the current chunk once it
// reaches Options.ChunkSize.
func (wr *Writer) WritePoint(pt Point) error {
	if wr.closed {
		return ErrDecodeMismatch
	}

	x := float64(pt.X)*wr.header.ScaleX + wr.header.OffsetX
	y := float64(pt.Y)*wr.header.ScaleY + wr.header.OffsetY
	z := float64(pt.Z)*wr.header.ScaleZ + wr.header.OffsetZ
	wr.header.updateMinMax(x, y, z)

	rn := pt.ReturnNumber
	if !wr.opts.Format.IsLegacy() {
		rn &= 0xF
	} else {
		rn &= 7
	}
	if rn >= 1 && int(rn) <= len(wr.pointsByReturn14) {
		wr.pointsByReturn14[rn-1]++
	}
	wr.pointCount++

	wr.pending = append(wr.pending, pt)
	if uint32(len(wr.pending)) >= wr.opts.chunkSize() {
		return wr.flushChunk()
	}
	return nil
}

func (wr *Writer) flushChunk() error {
	if len(wr.pending) == 0 {
		return nil
	}

	var body []byte
	if wr.opts.isCompressed() {
		if wr.opts.Format.IsLegacy() {
			body = encodeLegacyChunk(wr.opts.Format, wr.opts.ExtraBytes, wr.pending)
		} else {
			body = encodeV14Chunk(wr.opts.Format, wr.opts.ExtraBytes, wr.pending)
		}
	} else {
		body = encodeRawChunk(wr.opts.Format, wr.opts.ExtraBytes, wr.pending)
	}

	if _, err := wr.w.Write(body); err != nil {
		return err
	}

	if wr.opts.ChunkDigests {
		var digest [8]byte
		binary.LittleEndian.PutUint64(digest[:], xxhash.Sum64(body))
		wr.digests = append(wr.digests, digest[:])
	}

	wr.chunkEntries = append(wr.chunkEntries, chunkTableEntry{
		size:  uint32(len(body)),
		count: uint32(len(wr.pending)),
	})
	wr.currentOffset += int64(len(body))
	wr.pending = wr.pending[:0]
	return nil
}

// ChunkDigests returns the per-chunk xxhash-64 digests recorded during
// encoding, in chunk order, when Options.ChunkDigests was set. It is empty
// otherwise.
func (wr *Writer) ChunkDigests() [][]byte { return wr.digests }

// Close flushes any buffered points, writes the chunk table, and rewrites
// the header/VLRs with their final values.
func (wr *Writer) Close() error {
	if wr.closed {
		return nil
	}
	wr.closed = true

	if err := wr.flushChunk(); err != nil {
		return err
	}

	compressed := wr.opts.isCompressed()

	if compressed {
		variable := wr.opts.chunkSize() == variableChunkSize
		table := encodeChunkTable(wr.chunkEntries, variable)
		tableOffset := wr.currentOffset
		if _, err := wr.w.Write(table); err != nil {
			return err
		}

		offsetSlot := wr.firstChunkOffset - 8
		if _, err := wr.w.Seek(offsetSlot, io.SeekStart); err != nil {
			return err
		}
		var offBuf [8]byte
		binary.LittleEndian.PutUint64(offBuf[:], uint64(tableOffset))
		if _, err := wr.w.Write(offBuf[:]); err != nil {
			return err
		}
	}

	wr.header.PointCount = uint32(wr.pointCount)
	wr.header.PointCount14 = wr.pointCount
	for i := 0; i < 5 && i < len(wr.pointsByReturn14); i++ {
		wr.header.PointsByReturn[i] = uint32(wr.pointsByReturn14[i])
	}
	wr.header.PointsByReturn14 = wr.pointsByReturn14
	if math.IsInf(wr.header.MinX, 1) {
		wr.header.MinX, wr.header.MaxX = 0, 0
		wr.header.MinY, wr.header.MaxY = 0, 0
		wr.header.MinZ, wr.header.MaxZ = 0, 0
	}

	if _, err := wr.w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := wr.w.Write(wr.header.marshal()); err != nil {
		return err
	}

	if compressed {
		vlrHeader := newVLRHeader(laszipUserID, laszipRecordID, uint16(len(wr.lazVLR.marshal())), "laz-perf variant")
		if _, err := wr.w.Write(vlrHeader.marshal()); err != nil {
			return err
		}
		if _, err := wr.w.Write(wr.lazVLR.marshal()); err != nil {
			return err
		}
	}

	if wr.opts.ExtraBytes > 0 {
		payload := marshalExtraBytesVLR(wr.ebVLR)
		ebHeader := newVLRHeader(extraBytesUserID, extraBytesRecordID, uint16(len(payload)), "")
		if _, err := wr.w.Write(ebHeader.marshal()); err != nil {
			return err
		}
		if _, err := wr.w.Write(payload); err != nil {
			return err
		}
	}

	return nil
}
