package section

import "math"

const (
	// MagicNumber identifies a blockpack frame. "block pack" in hex-ish.
	MagicNumber uint32 = 0xB10C9ACC

	// Version is the frame format version written by this package.
	Version uint8 = 1
)

// Flag bits of the header flags byte. Bits outside these masks are
// reserved and must be zero in version 1 frames.
const (
	FlagChecksum   uint8 = 0x01 // footer carries an xxHash64 digest
	FlagMultiChunk uint8 = 0x02 // payload holds more than one chunk
)

// Fixed region sizes in bytes.
const (
	HeaderSize   = 7 // magic (4) + version (1) + level (1) + flags (1)
	FooterSize   = 8 // original decompressed size, uint64
	ChecksumSize = 8 // xxHash64 digest, present only with FlagChecksum
	ChunkLenSize = 4 // per-chunk compressed length prefix, uint32

	// MinFrameSize is a header plus a footer with zero chunks. Nothing
	// shorter can be a frame.
	MinFrameSize = HeaderSize + FooterSize
)

const (
	// ChunkSize is the granularity both engines split input with. It is a
	// tuning constant, not part of the wire contract: decoders size their
	// buffers from the records themselves.
	ChunkSize = 1 << 20

	// MaxChunkSize caps the decompressed size of a single chunk. Frames
	// whose chunks decode past this cap are rejected as malformed.
	MaxChunkSize = 4 << 20

	// MaxChunkRecordSize bounds a record's compressed length: the worst
	// case any built-in strategy can emit for MaxChunkSize input bytes.
	// Records claiming more are malformed, which keeps a corrupt length
	// prefix from driving a huge allocation.
	MaxChunkRecordSize = MaxChunkSize + MaxChunkSize/6 + chunkSlack
)

// chunkSlack covers fixed per-chunk codec overhead on incompressible data.
const chunkSlack = 128

// CompressBound returns the worst-case frame size for n input bytes,
// including the header, chunk length prefixes, codec expansion and a
// footer with checksum. It returns 0 when n is negative or large enough
// to overflow the computation.
func CompressBound(n int) int {
	if n < 0 || n > math.MaxInt-(math.MaxInt>>2) {
		return 0
	}

	chunks := (n + ChunkSize - 1) / ChunkSize
	if chunks == 0 {
		chunks = 1
	}

	return HeaderSize + chunks*(ChunkLenSize+ChunkSize/6+chunkSlack) + n + FooterSize + ChecksumSize
}

// FooterLen returns the encoded footer length for a checksum setting.
func FooterLen(checksum bool) int {
	if checksum {
		return FooterSize + ChecksumSize
	}

	return FooterSize
}
