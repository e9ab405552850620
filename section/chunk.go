package section

import (
	"encoding/binary"

	"github.com/arloliu/blockpack/errs"
)

// AppendChunk appends one chunk record (length prefix plus encoded bytes)
// to dst and returns the extended slice.
func AppendChunk(dst, encoded []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(encoded))) //nolint:gosec // bounded by MaxChunkRecordSize

	return append(dst, encoded...)
}

// ChunkCursor walks the chunk records of a frame payload sequentially.
// Records carry no offsets, so boundaries are only discoverable by reading
// length prefixes in order.
type ChunkCursor struct {
	payload []byte
	off     int
}

// NewChunkCursor creates a cursor over payload, the region between a
// frame's header and footer.
func NewChunkCursor(payload []byte) *ChunkCursor {
	return &ChunkCursor{payload: payload}
}

// More reports whether any payload bytes remain unconsumed.
func (c *ChunkCursor) More() bool {
	return c.off < len(c.payload)
}

// Next returns the next chunk's encoded bytes. The returned slice aliases
// the payload.
//
// Returns:
//   - []byte: Encoded chunk bytes
//   - error: ErrInvalidChunkLength when a record is empty, overruns the
//     payload or exceeds MaxChunkRecordSize
func (c *ChunkCursor) Next() ([]byte, error) {
	if len(c.payload)-c.off < ChunkLenSize {
		return nil, errs.ErrInvalidChunkLength
	}

	n := int(binary.LittleEndian.Uint32(c.payload[c.off:]))
	c.off += ChunkLenSize
	if n == 0 || n > MaxChunkRecordSize || n > len(c.payload)-c.off {
		return nil, errs.ErrInvalidChunkLength
	}

	chunk := c.payload[c.off : c.off+n]
	c.off += n

	return chunk, nil
}
