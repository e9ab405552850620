package compress

import (
	"fmt"

	"github.com/arloliu/blockpack/errs"
	"github.com/arloliu/blockpack/format"
)

// Codec is the pluggable compression strategy behind a frame level.
//
// Implementations transform one chunk at a time and are stateless with
// respect to their inputs: the same bytes and level always produce a
// decodable result. They must be safe for concurrent use, since the
// streaming engine runs one Codec instance across all of its workers.
type Codec interface {
	// Encode compresses data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	//   - Internal buffers may be reused for efficiency
	Encode(data []byte) ([]byte, error)

	// Decode decompresses data previously produced by Encode.
	//
	// decodedSize is a sizing hint for the output buffer, typically the
	// chunking granularity the frame was built with. Implementations must
	// produce the full original bytes even when the hint is low, up to the
	// section.MaxChunkSize format cap. Inputs declaring a decoded size
	// past the cap fail with errs.ErrChunkTooLarge before that size is
	// allocated.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	Decode(data []byte, decodedSize int) ([]byte, error)
}

// builtinCodecs binds each frame level to its strategy. LevelFastest and
// LevelFast use block formats tuned for speed; the remaining levels trade
// speed for density through Zstandard presets.
var builtinCodecs = map[format.Level]Codec{
	format.LevelFastest:  NewS2Codec(),
	format.LevelFast:     NewLZ4Codec(),
	format.LevelDefault:  NewZstdCodec(format.LevelDefault),
	format.LevelBalanced: NewZstdCodec(format.LevelBalanced),
	format.LevelCompact:  NewZstdCodec(format.LevelCompact),
}

// ForLevel returns the built-in Codec for a compression level.
//
// Parameters:
//   - level: Frame compression level (format.LevelFastest..format.LevelCompact)
//
// Returns:
//   - Codec: Strategy instance for the level, safe for concurrent use
//   - error: ErrInvalidCompressionLevel when level is outside the defined range
func ForLevel(level format.Level) (Codec, error) {
	codec, ok := builtinCodecs[level]
	if !ok {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidCompressionLevel, uint8(level))
	}

	return codec, nil
}
