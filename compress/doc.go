// Package compress provides the compression strategies behind blockpack
// frame levels.
//
// Each frame level maps to one concrete strategy. The framing and
// pipeline layers never touch an algorithm directly; they work through
// the Codec interface and select a strategy with ForLevel.
//
// # Architecture
//
// The package defines one core interface:
//
//	type Codec interface {
//	    Encode(data []byte) ([]byte, error)
//	    Decode(data []byte, decodedSize int) ([]byte, error)
//	}
//
// Codecs transform one chunk at a time, carry no per-call state and are
// safe for concurrent use; the streaming engine shares a single Codec
// across all worker goroutines.
//
// # Level Bindings
//
//	Level         | Strategy           | Character
//	--------------|--------------------|----------------------------------
//	LevelFastest  | S2 block           | Highest throughput, modest ratio
//	LevelFast     | LZ4 block          | Very fast decode, light ratio
//	LevelDefault  | Zstd (fastest)     | Better ratio than LZ4 at good speed
//	LevelBalanced | Zstd (default)     | Denser, moderate cost
//	LevelCompact  | Zstd (best)        | Maximum density for cold data
//
// # Zstd Build Flavors
//
// The Zstd strategy ships in two flavors selected at build time:
//
//   - Default: pure-Go github.com/klauspost/compress/zstd with pooled
//     encoders and decoders. No cgo required.
//   - -tags gozstd: github.com/valyala/gozstd, a cgo binding of libzstd,
//     for deployments that prefer its compression throughput.
//
// Both produce standard Zstandard output; frames are interchangeable
// between the two builds.
//
// # Decode Sizing
//
// Decode takes a sizing hint rather than a hard output size. S2 and Zstd
// encode the decoded length into their own block/frame structure and
// ignore the hint beyond initial capacity. LZ4 blocks carry no length, so
// the LZ4 strategy grows its buffer from the hint up to the
// section.MaxChunkSize format cap.
package compress
