// Package blockpack implements a lossless, chunked compression container
// with pluggable codecs, optional integrity checksums, and a constant-time
// size oracle.
//
// Data is split into fixed-granularity chunks, each compressed
// independently by the codec bound to the requested level, and wrapped in
// a small frame: a fixed header (magic, version, level, flags), the chunk
// records, and a fixed footer carrying the original size and an optional
// xxHash64 digest of the original bytes. Because every chunk is
// self-contained, frames can be produced and consumed by parallel workers
// without any cross-chunk state.
//
// # Core Features
//
//   - Five compression levels mapping to S2, LZ4 and Zstandard presets
//   - In-memory one-shot API and a streaming API with bounded memory
//   - Multi-threaded streaming with strictly order-preserving output
//   - Optional xxHash64 integrity verification over the original bytes
//   - O(1) recovery of the decompressed size from a frame's footer
//
// # Basic Usage
//
// One-shot compression of an in-memory buffer:
//
//	frame, err := blockpack.Compress(data, blockpack.LevelDefault, true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	size := blockpack.GetDecompressedSize(frame)
//	restored, err := blockpack.Decompress(frame, int(size), true)
//
// Streaming between file-like endpoints with four workers:
//
//	_, err := blockpack.StreamCompress(dst, src, blockpack.LevelFastest, 4, true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	bytesWritten, err := blockpack.StreamDecompress(out, in, 4, true)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the engine
// packages. For fine-grained control use them directly:
//
//   - stream: streaming engine with context cancellation
//   - compress: codec strategies behind the levels
//   - section: frame header, chunk record and footer layouts
//   - format: compression level definitions
//   - errs: sentinel errors shared by all packages
package blockpack

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/arloliu/blockpack/compress"
	"github.com/arloliu/blockpack/errs"
	"github.com/arloliu/blockpack/format"
	"github.com/arloliu/blockpack/section"
	"github.com/arloliu/blockpack/stream"
)

// Compression levels, fastest to densest. See the format package for the
// codec each level binds to.
const (
	LevelFastest  = format.LevelFastest
	LevelFast     = format.LevelFast
	LevelDefault  = format.LevelDefault
	LevelBalanced = format.LevelBalanced
	LevelCompact  = format.LevelCompact
)

// Compress compresses data into a self-describing frame.
//
// Empty input with checksum disabled is the documented identity case: the
// input is returned unchanged, with no framing overhead. With checksum
// enabled a minimal frame with zero chunks is still emitted so later
// verification can succeed.
//
// Parameters:
//   - data: Original bytes, split into chunks and compressed independently
//   - level: Compression level (LevelFastest..LevelCompact)
//   - checksum: Record an xxHash64 digest of data in the frame footer
//
// Returns:
//   - []byte: Complete frame, decodable by Decompress or stream.Decompress
//   - error: ErrInvalidCompressionLevel, or a codec failure
//
// Example:
//
//	frame, err := blockpack.Compress(data, blockpack.LevelBalanced, true)
func Compress(data []byte, level format.Level, checksum bool) ([]byte, error) {
	codec, err := compress.ForLevel(level)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 && !checksum {
		return data, nil
	}

	hdr := section.FrameHeader{
		Level:      level,
		Checksum:   checksum,
		MultiChunk: len(data) > section.ChunkSize,
	}

	bound := section.CompressBound(len(data))
	if bound == 0 {
		bound = section.MinFrameSize
	}

	out := make([]byte, 0, bound)
	out = append(out, hdr.Bytes()...)

	for off := 0; off < len(data); off += section.ChunkSize {
		end := min(off+section.ChunkSize, len(data))

		encoded, err := codec.Encode(data[off:end])
		if err != nil {
			return nil, fmt.Errorf("encode chunk at offset %d: %w", off, err)
		}

		out = section.AppendChunk(out, encoded)
	}

	ftr := section.FrameFooter{OriginalSize: uint64(len(data)), HasDigest: checksum}
	if checksum {
		ftr.Digest = xxhash.Sum64(data)
	}

	return append(out, ftr.Bytes()...), nil
}

// Decompress restores the original bytes from a frame produced by
// Compress or stream.Compress.
//
// expectedSize is the caller's statement of the original size, typically
// recovered with GetDecompressedSize. A value disagreeing with the frame
// footer fails with ErrSizeMismatch before any chunk is decoded; that is
// a caller error, distinct from corruption. Integrity failures report
// ErrChunkCorrupted, ErrLengthMismatch or ErrChecksumMismatch.
//
// checksum requests digest verification; it is only performed when the
// frame itself carries a digest.
//
// Parameters:
//   - data: Complete frame bytes
//   - expectedSize: Original size in bytes the caller expects
//   - checksum: Verify the footer digest when the frame has one
//
// Returns:
//   - []byte: Original bytes (nil for the empty identity case)
//   - error: Structural, size-mismatch, integrity, or codec failure
//
// Example:
//
//	size := blockpack.GetDecompressedSize(frame)
//	data, err := blockpack.Decompress(frame, int(size), true)
func Decompress(data []byte, expectedSize int, checksum bool) ([]byte, error) {
	if len(data) == 0 {
		// Inverse of the empty identity case. An empty buffer carries no
		// frame, so any expectation beyond "nothing" is structural.
		if expectedSize == 0 && !checksum {
			return nil, nil
		}

		return nil, errs.ErrFrameTooShort
	}

	hdr, err := section.ParseFrameHeader(data)
	if err != nil {
		return nil, err
	}

	footerLen := section.FooterLen(hdr.Checksum)
	if len(data) < section.HeaderSize+footerLen {
		return nil, errs.ErrFrameTooShort
	}

	ftr, err := section.ParseFrameFooter(data[len(data)-footerLen:], hdr.Checksum)
	if err != nil {
		return nil, err
	}

	codec, err := compress.ForLevel(hdr.Level)
	if err != nil {
		return nil, err
	}

	if expectedSize < 0 || uint64(expectedSize) != ftr.OriginalSize {
		return nil, fmt.Errorf("%w: caller expects %d bytes, footer records %d", errs.ErrSizeMismatch, expectedSize, ftr.OriginalSize)
	}

	verify := checksum && hdr.Checksum

	out := make([]byte, 0, expectedSize)
	cursor := section.NewChunkCursor(data[section.HeaderSize : len(data)-footerLen])

	for cursor.More() {
		chunk, err := cursor.Next()
		if err != nil {
			return nil, err
		}

		// Sizing hint only: the final chunk is usually short, and a
		// malformed frame may decode past it, which the length check
		// below rejects.
		hint := min(expectedSize-len(out), section.ChunkSize)

		decoded, err := codec.Decode(chunk, hint)
		if err != nil {
			// Over-cap chunks are malformed frames regardless of any
			// digest, so the format class is preserved.
			if errors.Is(err, errs.ErrChunkTooLarge) {
				return nil, fmt.Errorf("chunk at offset %d: %w", len(out), err)
			}

			// Under verification a decode failure is corruption the
			// digest would have caught; report it as such.
			if verify {
				return nil, fmt.Errorf("%w: chunk at offset %d: %v", errs.ErrChunkCorrupted, len(out), err)
			}

			return nil, fmt.Errorf("decode chunk at offset %d: %w", len(out), err)
		}

		out = append(out, decoded...)
	}

	if len(out) != expectedSize {
		return nil, fmt.Errorf("%w: decoded %d bytes, footer records %d", errs.ErrLengthMismatch, len(out), ftr.OriginalSize)
	}
	if verify && xxhash.Sum64(out) != ftr.Digest {
		return nil, errs.ErrChecksumMismatch
	}

	return out, nil
}

// GetDecompressedSize reads the original size from a frame footer without
// decoding any payload. It runs in constant time.
//
// It returns 0, never an error, for buffers too short or malformed to be
// frames. Callers treat 0 as "unknown": a frame built from empty input
// with checksum framing also legitimately reports 0, so 0 must never be
// used to distinguish "invalid frame" from "empty content".
//
// Parameters:
//   - data: Candidate frame bytes
//
// Returns:
//   - uint64: Original decompressed size, or 0 when it cannot be determined
//
// Example:
//
//	size := blockpack.GetDecompressedSize(frame)
//	if size == 0 {
//	    // unknown: not a frame, or an empty checksummed frame
//	}
func GetDecompressedSize(data []byte) uint64 {
	return section.DecompressedSize(data)
}

// CompressBound returns the worst-case frame size for n input bytes at
// any level, including all framing overhead. Use it to pre-size
// destination buffers. It returns 0 when n is negative or large enough to
// overflow the computation.
func CompressBound(n int) int {
	return section.CompressBound(n)
}

// StreamCompress compresses src into one frame written to dst using a
// pool of worker threads. Output is byte-identical for every thread
// count, including 1.
//
// The call performs raw sequential reads and writes: flush any buffering
// layered over src before the call, and flush dst's buffering after it
// returns, before touching the underlying handles.
//
// Parameters:
//   - dst: Destination for the frame bytes
//   - src: Source of the original bytes, read until io.EOF
//   - level: Compression level (LevelFastest..LevelCompact)
//   - threads: Concurrent encoders, values below 1 select the CPU count
//   - checksum: Record an xxHash64 digest of the original bytes
//
// Returns:
//   - int64: Number of frame bytes written to dst
//   - error: ErrInvalidCompressionLevel, or the first pipeline failure
//
// Example:
//
//	n, err := blockpack.StreamCompress(dst, src, blockpack.LevelFastest, 4, true)
func StreamCompress(dst io.Writer, src io.Reader, level format.Level, threads int, checksum bool) (int64, error) {
	return stream.Compress(context.Background(), dst, src, level, threads, checksum)
}

// StreamCompressContext is StreamCompress with cooperative cancellation:
// cancelling ctx stops the pipeline between chunks and reports
// ErrCancelled. See StreamCompress for the remaining semantics.
func StreamCompressContext(ctx context.Context, dst io.Writer, src io.Reader, level format.Level, threads int, checksum bool) (int64, error) {
	return stream.Compress(ctx, dst, src, level, threads, checksum)
}

// StreamDecompress reads one frame from src and writes the original bytes
// to dst using a pool of worker threads. The frame footer is
// authoritative for the original size; no size argument is needed.
//
// checksum requests digest verification; it is only performed when the
// frame itself carries a digest. The buffering caveat on StreamCompress
// applies here as well.
//
// Parameters:
//   - dst: Destination for the original bytes
//   - src: Source holding exactly one frame, read until io.EOF
//   - threads: Concurrent decoders, values below 1 select the CPU count
//   - checksum: Verify the footer digest when the frame has one
//
// Returns:
//   - int64: Number of original bytes written to dst
//   - error: Structural, integrity, or pipeline failure
//
// Example:
//
//	bytesWritten, err := blockpack.StreamDecompress(out, in, 4, true)
func StreamDecompress(dst io.Writer, src io.Reader, threads int, checksum bool) (int64, error) {
	return stream.Decompress(context.Background(), dst, src, threads, checksum)
}

// StreamDecompressContext is StreamDecompress with cooperative
// cancellation: cancelling ctx stops the pipeline between chunks and
// reports ErrCancelled. See StreamDecompress for the remaining semantics.
func StreamDecompressContext(ctx context.Context, dst io.Writer, src io.Reader, threads int, checksum bool) (int64, error) {
	return stream.Decompress(ctx, dst, src, threads, checksum)
}
