package section

import (
	"encoding/binary"

	"github.com/arloliu/blockpack/errs"
	"github.com/arloliu/blockpack/format"
)

// FrameHeader is the fixed-size region at the start of every frame.
type FrameHeader struct {
	// Level is the compression level the payload chunks were encoded with.
	Level format.Level // byte offset 5
	// Checksum reports whether the footer carries an xxHash64 digest.
	Checksum bool // flags bit 0
	// MultiChunk reports whether the payload holds more than one chunk.
	MultiChunk bool // flags bit 1
}

// Parse parses the header from the first HeaderSize bytes of data.
//
// Returns:
//   - error: ErrFrameTooShort, ErrInvalidMagicNumber, ErrUnsupportedVersion,
//     ErrInvalidCompressionLevel or ErrInvalidHeaderFlags on the respective defect
func (h *FrameHeader) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return errs.ErrFrameTooShort
	}
	if binary.LittleEndian.Uint32(data[0:4]) != MagicNumber {
		return errs.ErrInvalidMagicNumber
	}
	if data[4] != Version {
		return errs.ErrUnsupportedVersion
	}

	level := format.Level(data[5])
	if !level.IsValid() {
		return errs.ErrInvalidCompressionLevel
	}

	flags := data[6]
	if flags&^(FlagChecksum|FlagMultiChunk) != 0 {
		return errs.ErrInvalidHeaderFlags
	}

	h.Level = level
	h.Checksum = flags&FlagChecksum != 0
	h.MultiChunk = flags&FlagMultiChunk != 0

	return nil
}

// Bytes serializes the FrameHeader into a new HeaderSize-byte slice.
func (h *FrameHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(b[0:4], MagicNumber)
	b[4] = Version
	b[5] = byte(h.Level)
	b[6] = h.flags()

	return b
}

func (h *FrameHeader) flags() uint8 {
	var f uint8
	if h.Checksum {
		f |= FlagChecksum
	}
	if h.MultiChunk {
		f |= FlagMultiChunk
	}

	return f
}

// ParseFrameHeader parses a FrameHeader from the start of data.
//
// Parameters:
//   - data: Byte slice starting with a frame header (at least HeaderSize bytes)
//
// Returns:
//   - FrameHeader: Parsed header struct
//   - error: Structural error when data cannot start a valid frame
func ParseFrameHeader(data []byte) (FrameHeader, error) {
	var h FrameHeader
	if err := h.Parse(data); err != nil {
		return FrameHeader{}, err
	}

	return h, nil
}
