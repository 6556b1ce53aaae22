// errors.go defines public error types for the laz package.

package laz

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

// Public error types for compression and decompression operations.
var (
	// ErrMagicMismatch indicates the file does not start with the LAS
	// magic bytes "LASF".
	ErrMagicMismatch = errors.New("laz: magic bytes mismatch, not a LAS/LAZ file")

	// ErrInvalidCompressionFlags indicates bit 6 of the header's
	// point_format_id is set, which the codec doesn't recognize (bit 7
	// alone marks a compressed file).
	ErrInvalidCompressionFlags = errors.New("laz: invalid compression flags")

	// ErrMissingLaszipVLR indicates a point format claims compression but
	// no laszip encoding VLR (user_id "laszip encoded", record_id 22204)
	// is present.
	ErrMissingLaszipVLR = errors.New("laz: missing laszip VLR")

	// ErrUnsupportedCompressor indicates the laszip VLR names a
	// compressor variant this codec does not implement.
	ErrUnsupportedCompressor = errors.New("laz: unsupported compressor")

	// ErrUnsupportedChunkTable indicates a chunk-table layout outside
	// what this codec supports (notably the "offset == -1, scan the
	// stream" legacy fallback).
	ErrUnsupportedChunkTable = errors.New("laz: unsupported chunk table")

	// ErrUnexpectedEndOfInput indicates the input source ran out of
	// bytes before a structure (header, VLR, chunk, chunk table) was
	// fully read.
	ErrUnexpectedEndOfInput = errors.New("laz: unexpected end of input")

	// ErrInvalidPointFormat indicates a point format ID this codec does
	// not implement (only 0, 1, 2, 3, 6, 7, 8 are supported).
	ErrInvalidPointFormat = errors.New("laz: invalid or unsupported point format")

	// ErrDecodeMismatch indicates a request the file's or writer's state
	// cannot satisfy: a chunk index outside the chunk table, or a
	// WritePoint call after Close.
	ErrDecodeMismatch = errors.New("laz: decode mismatch")
)

// CodecError wraps one of the sentinel errors above with the byte offset
// and chunk index where it was detected, for diagnostics.
type CodecError struct {
	Err        error
	Offset     int64
	ChunkIndex int
}

func (e *CodecError) Error() string {
	if e.ChunkIndex >= 0 {
		return fmt.Sprintf("laz: %v at offset %s (chunk %d)", e.Err, humanize.Comma(e.Offset), e.ChunkIndex)
	}
	return fmt.Sprintf("laz: %v at offset %s", e.Err, humanize.Comma(e.Offset))
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

func wrapErr(err error, offset int64) error {
	return &CodecError{Err: err, Offset: offset, ChunkIndex: -1}
}

func wrapChunkErr(err error, offset int64, chunk int) error {
	return &CodecError{Err: err, Offset: offset, ChunkIndex: chunk}
}

// validPointFormat reports whether f is one of the point formats this
// codec implements.
func validPointFormat(f PointFormat) bool {
	switch f {
	case PointFormat0, PointFormat1, PointFormat2, PointFormat3,
		PointFormat6, PointFormat7, PointFormat8:
		return true
	default:
		return false
	}
}
