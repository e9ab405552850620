package section

import (
	"encoding/binary"

	"github.com/arloliu/blockpack/errs"
	"github.com/arloliu/blockpack/format"
)

// FrameFooter is the fixed-size trailer of a frame. It is always the last
// region of the buffer; its length depends only on the header checksum
// flag, so it can be located from the end without touching the payload.
type FrameFooter struct {
	// OriginalSize is the total decompressed size of the frame content.
	OriginalSize uint64
	// Digest is the xxHash64 of the original bytes, valid only when
	// HasDigest is set.
	Digest uint64
	// HasDigest mirrors the header checksum flag.
	HasDigest bool
}

// Bytes serializes the FrameFooter into a new slice of FooterLen bytes.
func (f *FrameFooter) Bytes() []byte {
	b := make([]byte, 0, FooterSize+ChecksumSize)
	b = binary.LittleEndian.AppendUint64(b, f.OriginalSize)
	if f.HasDigest {
		b = binary.LittleEndian.AppendUint64(b, f.Digest)
	}

	return b
}

// ParseFrameFooter parses an encoded footer. data must hold exactly the
// footer region: FooterLen(checksum) bytes.
//
// Parameters:
//   - data: The trailing footer bytes of a frame
//   - checksum: Whether the frame header declared a checksum
//
// Returns:
//   - FrameFooter: Parsed footer struct
//   - error: ErrFrameTooShort when data is not exactly the footer region
func ParseFrameFooter(data []byte, checksum bool) (FrameFooter, error) {
	if len(data) != FooterLen(checksum) {
		return FrameFooter{}, errs.ErrFrameTooShort
	}

	f := FrameFooter{OriginalSize: binary.LittleEndian.Uint64(data[0:FooterSize])}
	if checksum {
		f.Digest = binary.LittleEndian.Uint64(data[FooterSize:])
		f.HasDigest = true
	}

	return f, nil
}

// DecompressedSize returns the original size recorded in the footer of
// frame without touching the payload. It runs in constant time.
//
// It returns 0, never an error, when frame is shorter than the minimum
// frame size or its magic, version, level or flags are malformed. Callers
// treat 0 as "unknown": a valid empty frame (zero bytes compressed with
// checksum framing) also reports 0.
func DecompressedSize(frame []byte) uint64 {
	if len(frame) < MinFrameSize {
		return 0
	}
	if binary.LittleEndian.Uint32(frame[0:4]) != MagicNumber {
		return 0
	}
	if frame[4] != Version {
		return 0
	}
	if !format.Level(frame[5]).IsValid() {
		return 0
	}

	flags := frame[6]
	if flags&^(FlagChecksum|FlagMultiChunk) != 0 {
		return 0
	}

	footerLen := FooterLen(flags&FlagChecksum != 0)
	if len(frame) < HeaderSize+footerLen {
		return 0
	}

	off := len(frame) - footerLen

	return binary.LittleEndian.Uint64(frame[off : off+FooterSize])
}
