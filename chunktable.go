package laz

import (
	"encoding/binary"

	"github.com/hobu-io/golaz/internal/intcoder"
	"github.com/hobu-io/golaz/rangecoder"
)

// chunkTableVersion is the only chunk-table version golaz understands
// (anything else returns ErrUnsupportedChunkTable).
const chunkTableVersion = 0

// variableChunkSize is the chunk_size sentinel selecting the
// variable-size chunk mode, where each chunk table entry additionally
// carries the chunk's point count.
const variableChunkSize = 0xFFFFFFFF

// chunkTableEntry is one chunk's recorded size (and, in variable-chunk
// mode, point count).
type chunkTableEntry struct {
	size  uint32
	count uint32
}

// encodeChunkTable range-codes entries following laz-perf's _writeChunks:
// a size delta is coded against the previous chunk's raw size (not a
// running offset) under integer-compressor context 1; in variable mode the
// point count is coded the same way under its own compressor.
func encodeChunkTable(entries []chunkTableEntry, variable bool) []byte {
	enc := rangecoder.NewEncoder()
	icSize := intcoder.New(32, 2)
	var icCount *intcoder.IntegerCompressor
	if variable {
		icCount = intcoder.New(32, 2)
	}

	var prevSize, prevCount int32
	for i, e := range entries {
		predictor := int32(0)
		if i > 0 {
			predictor = prevSize
		}
		icSize.Compress(enc, predictor, int32(e.size), 1)
		prevSize = int32(e.size)

		if variable {
			predictorC := int32(0)
			if i > 0 {
				predictorC = prevCount
			}
			icCount.Compress(enc, predictorC, int32(e.count), 1)
			prevCount = int32(e.count)
		}
	}

	body := enc.Done()

	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], chunkTableVersion)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(entries)))
	return append(header, body...)
}

// decodeChunkTable mirrors encodeChunkTable, then reconstructs absolute
// chunk byte offsets by prefix sum starting at firstChunkOffset, following
// laz-perf's two-pass _parseChunkTable algorithm exactly: pass one decodes
// raw per-chunk sizes relative to the previous chunk's raw size, pass two
// turns those sizes into running offsets.
func decodeChunkTable(buf []byte, firstChunkOffset int64) (entries []chunkTableEntry, offsets []int64, err error) {
	if len(buf) < 8 {
		return nil, nil, ErrUnsupportedChunkTable
	}
	version := binary.LittleEndian.Uint32(buf[0:4])
	if version != chunkTableVersion {
		return nil, nil, ErrUnsupportedChunkTable
	}
	count := binary.LittleEndian.Uint32(buf[4:8])
	if count == 0 {
		return nil, []int64{firstChunkOffset}, nil
	}

	dec := rangecoder.NewDecoder(buf[8:])
	icSize := intcoder.New(32, 2)

	entries = make([]chunkTableEntry, count)
	var prevSize int32
	for i := range entries {
		predictor := int32(0)
		if i > 0 {
			predictor = prevSize
		}
		size := icSize.Decompress(dec, predictor, 1)
		entries[i].size = uint32(size)
		prevSize = size
	}

	offsets = make([]int64, count+1)
	offsets[0] = firstChunkOffset
	for i := 1; i <= int(count); i++ {
		offsets[i] = offsets[i-1] + int64(entries[i-1].size)
	}

	return entries, offsets, nil
}

// decodeVariableChunkTable is decodeChunkTable's variable-chunk-size
// counterpart, additionally recovering each chunk's point count.
func decodeVariableChunkTable(buf []byte, firstChunkOffset int64) (entries []chunkTableEntry, offsets []int64, err error) {
	if len(buf) < 8 {
		return nil, nil, ErrUnsupportedChunkTable
	}
	version := binary.LittleEndian.Uint32(buf[0:4])
	if version != chunkTableVersion {
		return nil, nil, ErrUnsupportedChunkTable
	}
	count := binary.LittleEndian.Uint32(buf[4:8])
	if count == 0 {
		return nil, []int64{firstChunkOffset}, nil
	}

	dec := rangecoder.NewDecoder(buf[8:])
	icSize := intcoder.New(32, 2)
	icCount := intcoder.New(32, 2)

	entries = make([]chunkTableEntry, count)
	var prevSize, prevCount int32
	for i := range entries {
		sizePredictor, countPredictor := int32(0), int32(0)
		if i > 0 {
			sizePredictor, countPredictor = prevSize, prevCount
		}
		size := icSize.Decompress(dec, sizePredictor, 1)
		cnt := icCount.Decompress(dec, countPredictor, 1)
		entries[i] = chunkTableEntry{size: uint32(size), count: uint32(cnt)}
		prevSize, prevCount = size, cnt
	}

	offsets = make([]int64, count+1)
	offsets[0] = firstChunkOffset
	for i := 1; i <= int(count); i++ {
		offsets[i] = offsets[i-1] + int64(entries[i-1].size)
	}

	return entries, offsets, nil
}
