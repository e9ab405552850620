// Package errs defines the sentinel errors shared across blockpack packages.
//
// All errors are flat values so callers can match them with errors.Is even
// when they arrive wrapped with call-site context.
package errs

import "errors"

// Frame structure errors. The bytes violate the frame format itself, as
// opposed to carrying damaged content; decoding stops at the defect.
// ErrChunkTooLarge rejects records whose declared decoded size exceeds
// the per-chunk cap, before any buffer of that size is allocated.
var (
	ErrFrameTooShort      = errors.New("buffer shorter than minimum frame size")
	ErrInvalidMagicNumber = errors.New("invalid magic number")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrInvalidHeaderFlags = errors.New("invalid header flags")
	ErrInvalidChunkLength = errors.New("invalid chunk length")
	ErrChunkTooLarge      = errors.New("chunk exceeds maximum decompressed size")
)

// Integrity errors. The frame parsed but its content is not the bytes the
// footer describes; streaming callers may already have received a partial
// prefix. ErrChunkCorrupted covers corruption the codec catches before the
// digest compare can run, and is only reported when verification is active.
var (
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrLengthMismatch   = errors.New("decompressed length does not match frame footer")
	ErrChunkCorrupted   = errors.New("chunk data corrupted")
)

// ErrSizeMismatch reports a caller-supplied expected size that disagrees
// with the frame footer. The frame itself may be perfectly valid; this is
// distinct from corruption.
var ErrSizeMismatch = errors.New("expected size does not match frame footer")

// ErrCancelled reports a streaming job that stopped because its context
// was cancelled. In-flight chunks are drained, no new chunk is dispatched.
var ErrCancelled = errors.New("job cancelled")

// ErrInvalidCompressionLevel reports a level outside the defined range.
var ErrInvalidCompressionLevel = errors.New("invalid compression level")
