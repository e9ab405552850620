package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/blockpack/section"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec backs LevelFast with the LZ4 block format.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

// NewLZ4Codec creates a new LZ4 codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

// Encode compresses the input with the LZ4 block encoder.
//
// Uses a pooled lz4.Compressor for better performance. The destination is
// allocated at CompressBlockBound so encoding succeeds even for
// incompressible input.
func (c LZ4Codec) Encode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 {
		// CompressBlock reports incompressible input by producing zero
		// bytes. A chunk must still be a decodable block, so fall back to
		// the literal-only representation.
		return literalBlock(data), nil
	}

	return dst[:n], nil
}

// literalBlock encodes data as a single literal-only sequence, the block
// format's canonical form for incompressible bytes: a token carrying the
// literal length, optional 0xFF length continuation bytes, then the
// literals verbatim.
func literalBlock(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/255+2)

	if len(data) < 15 {
		out = append(out, byte(len(data))<<4)
	} else {
		out = append(out, 0xF0)
		for rem := len(data) - 15; ; rem -= 255 {
			if rem < 255 {
				out = append(out, byte(rem))
				break
			}
			out = append(out, 0xFF)
		}
	}

	return append(out, data...)
}

// Decode decompresses an LZ4 block.
//
// LZ4 blocks do not carry their decoded length, so the buffer starts at
// decodedSize and doubles on ErrInvalidSourceShortBuffer until the
// section.MaxChunkSize format cap. A hint below the true size therefore
// costs retries, never correctness.
func (c LZ4Codec) Decode(data []byte, decodedSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	bufSize := decodedSize
	if bufSize <= 0 {
		bufSize = len(data) * 4
	}
	if bufSize > section.MaxChunkSize {
		bufSize = section.MaxChunkSize
	}

	for {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) || bufSize >= section.MaxChunkSize {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}

		bufSize *= 2
		if bufSize > section.MaxChunkSize {
			bufSize = section.MaxChunkSize
		}
	}
}
