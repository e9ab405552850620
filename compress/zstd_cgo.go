//go:build gozstd

package compress

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/valyala/gozstd"

	"github.com/arloliu/blockpack/errs"
	"github.com/arloliu/blockpack/format"
	"github.com/arloliu/blockpack/section"
)

// gozstdLevel maps frame levels to libzstd numeric levels.
func gozstdLevel(level format.Level) int {
	switch level {
	case format.LevelBalanced:
		return 3
	case format.LevelCompact:
		return 19
	default:
		return 1
	}
}

// Encode compresses the input data with the codec's level preset.
func (c ZstdCodec) Encode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.CompressLevel(nil, data, gozstdLevel(c.level)), nil
}

// Decode decompresses Zstd-compressed data. The zstd frame carries its
// own content size; the sizing hint is unused.
//
// libzstd sizes its output from the frame header, so the declared content
// size is gated on section.MaxChunkSize before the call. Encode always
// records the size; frames without one cannot be bounded and are
// rejected.
func (c ZstdCodec) Decode(data []byte, decodedSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var hdr zstd.Header
	if err := hdr.Decode(data); err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	if !hdr.HasFCS {
		return nil, fmt.Errorf("%w: zstd frame does not declare its content size", errs.ErrChunkTooLarge)
	}
	if hdr.FrameContentSize > section.MaxChunkSize {
		return nil, fmt.Errorf("%w: zstd frame declares %d bytes", errs.ErrChunkTooLarge, hdr.FrameContentSize)
	}

	decompressed, err := gozstd.Decompress(nil, data)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return decompressed, nil
}
