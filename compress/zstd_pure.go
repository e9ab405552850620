//go:build !gozstd

package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/arloliu/blockpack/errs"
	"github.com/arloliu/blockpack/format"
	"github.com/arloliu/blockpack/section"
)

// zstdDecoderPool pools zstd decoders for reuse to eliminate allocation overhead.
// The klauspost/compress/zstd library is explicitly designed for decoder reuse:
// "The decoder has been designed to operate without allocations after a warmup.
// This means that you should store the decoder for best performance."
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1), // chunks are already parallelized by callers
			zstd.WithDecoderLowmem(false),
			zstd.WithDecoderMaxMemory(section.MaxChunkSize), // frames declaring more are malformed
		)
		if err != nil {
			// This should never happen with valid options
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}
		return decoder
	},
}

// zstdEncoderPools pools zstd encoders per frame level. Encoders are
// expensive to construct and keyed by their preset, so each level keeps
// its own pool.
var zstdEncoderPools = map[format.Level]*sync.Pool{
	format.LevelDefault:  newZstdEncoderPool(zstd.SpeedFastest),
	format.LevelBalanced: newZstdEncoderPool(zstd.SpeedDefault),
	format.LevelCompact:  newZstdEncoderPool(zstd.SpeedBestCompression),
}

func newZstdEncoderPool(level zstd.EncoderLevel) *sync.Pool {
	return &sync.Pool{
		New: func() any {
			encoder, err := zstd.NewWriter(nil,
				zstd.WithEncoderLevel(level),
				zstd.WithEncoderCRC(false),     // the frame carries its own digest
				zstd.WithEncoderConcurrency(1), // chunks are already parallelized by callers
			)
			if err != nil {
				// This should never happen with valid options
				panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
			}
			return encoder
		},
	}
}

// Encode compresses the input data with the codec's level preset.
// Uses a pooled encoder for better performance.
func (c ZstdCodec) Encode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	pool, ok := zstdEncoderPools[c.level]
	if !ok {
		pool = zstdEncoderPools[format.LevelDefault]
	}

	encoder, _ := pool.Get().(*zstd.Encoder)
	defer pool.Put(encoder)

	// EncodeAll is stateless, safe to use with a pooled encoder.
	return encoder.EncodeAll(data, nil), nil
}

// Decode decompresses Zstd-compressed data. The zstd frame carries its
// own content size; decodedSize only seeds the output capacity. Output
// past section.MaxChunkSize is stopped by the pooled decoder's memory
// ceiling.
func (c ZstdCodec) Decode(data []byte, decodedSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	var dst []byte
	if decodedSize > 0 {
		dst = make([]byte, 0, decodedSize)
	}

	// DecodeAll is stateless, safe to use with a pooled decoder.
	// Even if this call fails, the decoder can be reused for the next call.
	decompressed, err := decoder.DecodeAll(data, dst)
	if err != nil {
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
			return nil, fmt.Errorf("%w: %v", errs.ErrChunkTooLarge, err)
		}

		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return decompressed, nil
}
