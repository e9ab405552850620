package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/blockpack/errs"
	"github.com/arloliu/blockpack/section"
)

// S2Codec backs LevelFastest with the S2 block format.
type S2Codec struct{}

var _ Codec = S2Codec{}

// NewS2Codec creates a new S2 codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

// Encode compresses the input with the S2 block encoder.
func (c S2Codec) Encode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decode decompresses an S2 block. The block carries its own decoded
// length, so the sizing hint is unused. Blocks declaring more than
// section.MaxChunkSize are rejected before any allocation.
func (c S2Codec) Decode(data []byte, decodedSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}
	if n > section.MaxChunkSize {
		return nil, fmt.Errorf("%w: s2 block declares %d bytes", errs.ErrChunkTooLarge, n)
	}

	decompressed, err := s2.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return decompressed, nil
}
