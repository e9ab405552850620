package blockpack

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/blockpack/compress"
	"github.com/arloliu/blockpack/errs"
	"github.com/arloliu/blockpack/format"
	"github.com/arloliu/blockpack/section"
)

func compressiblePattern(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}

	return data
}

func incompressibleNoise(size int) []byte {
	data := make([]byte, size)
	r := rand.New(rand.NewSource(42))
	r.Read(data)

	return data
}

func mustRoundTrip(t *testing.T, data []byte, level format.Level, checksum bool) []byte {
	t.Helper()

	frame, err := Compress(data, level, checksum)
	require.NoError(t, err)
	require.Equal(t, uint64(len(data)), GetDecompressedSize(frame))

	out, err := Decompress(frame, len(data), checksum)
	require.NoError(t, err)
	require.Equal(t, data, out)

	return frame
}

// requireIntegrityError asserts err belongs to the integrity class, in
// whichever form the corruption happened to surface.
func requireIntegrityError(t *testing.T, err error) {
	t.Helper()

	ok := errors.Is(err, errs.ErrChunkCorrupted) ||
		errors.Is(err, errs.ErrChecksumMismatch) ||
		errors.Is(err, errs.ErrLengthMismatch)
	require.Truef(t, ok, "expected an integrity error, got %v", err)
}

func TestCompress_RoundTripAllLevels(t *testing.T) {
	data := compressiblePattern(256 << 10)

	levels := []format.Level{
		LevelFastest,
		LevelFast,
		LevelDefault,
		LevelBalanced,
		LevelCompact,
	}

	for _, level := range levels {
		t.Run(level.String(), func(t *testing.T) {
			frame := mustRoundTrip(t, data, level, true)
			t.Logf("%s: %d -> %d bytes (%.2f%%)", level, len(data), len(frame), float64(len(frame))/float64(len(data))*100)
		})
	}
}

func TestCompress_RoundTripShapes(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		checksum bool
	}{
		{name: "single_byte", data: []byte{0x42}, checksum: true},
		{name: "short_text", data: []byte("the quick brown fox"), checksum: false},
		{name: "exact_chunk", data: compressiblePattern(section.ChunkSize), checksum: true},
		{name: "multi_chunk", data: compressiblePattern(2*section.ChunkSize + 12345), checksum: true},
		{name: "incompressible", data: incompressibleNoise(section.ChunkSize + section.ChunkSize/2), checksum: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustRoundTrip(t, tt.data, LevelFastest, tt.checksum)
		})
	}
}

func TestCompress_InvalidLevel(t *testing.T) {
	_, err := Compress([]byte("data"), format.Level(9), false)
	require.ErrorIs(t, err, errs.ErrInvalidCompressionLevel)
}

func TestCompress_MultiChunkFlag(t *testing.T) {
	single, err := Compress(compressiblePattern(section.ChunkSize), LevelFastest, false)
	require.NoError(t, err)

	hdr, err := section.ParseFrameHeader(single)
	require.NoError(t, err)
	require.False(t, hdr.MultiChunk)

	multi, err := Compress(compressiblePattern(section.ChunkSize+1), LevelFastest, false)
	require.NoError(t, err)

	hdr, err = section.ParseFrameHeader(multi)
	require.NoError(t, err)
	require.True(t, hdr.MultiChunk)
}

// Empty input without checksum framing is an identity, not a frame.
func TestCompress_EmptyIdentity(t *testing.T) {
	t.Run("without_checksum", func(t *testing.T) {
		frame, err := Compress([]byte{}, LevelDefault, false)
		require.NoError(t, err)
		require.Empty(t, frame)
		require.Zero(t, GetDecompressedSize(frame))

		out, err := Decompress(frame, 0, false)
		require.NoError(t, err)
		require.Empty(t, out)
	})

	t.Run("with_checksum", func(t *testing.T) {
		frame, err := Compress(nil, LevelDefault, true)
		require.NoError(t, err)
		require.Len(t, frame, section.MinFrameSize+section.ChecksumSize)
		require.Zero(t, GetDecompressedSize(frame))

		out, err := Decompress(frame, 0, true)
		require.NoError(t, err)
		require.Empty(t, out)
	})
}

func TestDecompress_EmptyBuffer(t *testing.T) {
	tests := []struct {
		name         string
		expectedSize int
		checksum     bool
		wantErr      error
	}{
		{name: "identity_inverse", expectedSize: 0, checksum: false, wantErr: nil},
		{name: "expects_content", expectedSize: 100, checksum: false, wantErr: errs.ErrFrameTooShort},
		{name: "expects_digest", expectedSize: 0, checksum: true, wantErr: errs.ErrFrameTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Decompress(nil, tt.expectedSize, tt.checksum)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Empty(t, out)
		})
	}
}

func TestDecompress_CorruptionDetected(t *testing.T) {
	data := bytes.Repeat([]byte("hello world"), 10)

	frame := mustRoundTrip(t, data, LevelDefault, true)

	// Flipping the final payload byte must surface as integrity loss,
	// whether the codec chokes on it or the digest compare catches it.
	bad := append([]byte{}, frame...)
	bad[len(bad)-section.FooterLen(true)-1] ^= 0x01

	// The oracle reads only the header and footer, so it still reports
	// the original size for a payload-corrupted frame.
	require.Equal(t, uint64(len(data)), GetDecompressedSize(bad))

	_, err := Decompress(bad, len(data), true)
	requireIntegrityError(t, err)
}

// A single record can pass the compressed-length gate while declaring a
// decoded size far past the per-chunk cap. Decompress must reject such a
// frame on the cap itself, even when the footer honestly records the
// oversized total and the caller expects it.
func TestDecompress_RejectsOverCapChunk(t *testing.T) {
	data := make([]byte, section.MaxChunkSize+section.ChunkSize)

	buildFrame := func(t *testing.T, level format.Level, checksum bool) []byte {
		t.Helper()

		codec, err := compress.ForLevel(level)
		require.NoError(t, err)

		record, err := codec.Encode(data)
		require.NoError(t, err)
		require.LessOrEqual(t, len(record), section.MaxChunkRecordSize)

		hdr := section.FrameHeader{Level: level, Checksum: checksum}
		frame := hdr.Bytes()
		frame = section.AppendChunk(frame, record)

		ftr := section.FrameFooter{OriginalSize: uint64(len(data))}
		if checksum {
			ftr.Digest = xxhash.Sum64(data)
			ftr.HasDigest = true
		}

		return append(frame, ftr.Bytes()...)
	}

	tests := []struct {
		name         string
		level        format.Level
		declaresSize bool
	}{
		{name: "s2", level: LevelFastest, declaresSize: true},
		{name: "lz4", level: LevelFast, declaresSize: false},
		{name: "zstd", level: LevelDefault, declaresSize: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := buildFrame(t, tt.level, false)

			// Honest footer: the oracle and the size gate both pass, so
			// rejection comes from the chunk cap alone.
			require.Equal(t, uint64(len(data)), GetDecompressedSize(frame))

			_, err := Decompress(frame, len(data), false)
			require.Error(t, err)
			if tt.declaresSize {
				require.ErrorIs(t, err, errs.ErrChunkTooLarge)
			}
		})
	}

	// A digest cannot rescue an over-cap chunk: the cap is a format rule
	// and keeps its class even under verification.
	t.Run("digest_does_not_mask_cap", func(t *testing.T) {
		frame := buildFrame(t, LevelFastest, true)

		_, err := Decompress(frame, len(data), true)
		require.ErrorIs(t, err, errs.ErrChunkTooLarge)
		require.NotErrorIs(t, err, errs.ErrChunkCorrupted)
	})
}

// Every payload byte of an s2 block is semantically live, so a flip at
// any offset must fail decompression one way or another.
func TestDecompress_AnyPayloadFlipFails(t *testing.T) {
	data := bytes.Repeat([]byte("hello world"), 10)

	frame, err := Compress(data, LevelFastest, true)
	require.NoError(t, err)

	payloadEnd := len(frame) - section.FooterLen(true)
	for off := section.HeaderSize; off < payloadEnd; off++ {
		bad := append([]byte{}, frame...)
		bad[off] ^= 0x01

		_, err := Decompress(bad, len(data), true)
		require.Errorf(t, err, "flip at offset %d slipped through", off)
	}
}

func TestDecompress_SizeMismatchIsCallerError(t *testing.T) {
	data := compressiblePattern(4096)
	frame := mustRoundTrip(t, data, LevelDefault, true)

	for _, wrong := range []int{0, len(data) - 1, len(data) + 1, -1} {
		_, err := Decompress(frame, wrong, true)
		require.ErrorIs(t, err, errs.ErrSizeMismatch, "expectedSize=%d", wrong)
	}

	// The frame itself is intact: the right expectation still succeeds.
	out, err := Decompress(frame, len(data), true)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestDecompress_ChecksumPreferenceMismatch(t *testing.T) {
	data := compressiblePattern(4096)

	t.Run("digest_ignored_when_not_requested", func(t *testing.T) {
		frame, err := Compress(data, LevelDefault, true)
		require.NoError(t, err)
		frame[len(frame)-1] ^= 0x01 // corrupt the digest field

		out, err := Decompress(frame, len(data), false)
		require.NoError(t, err)
		require.Equal(t, data, out)
	})

	t.Run("verification_without_digest", func(t *testing.T) {
		frame, err := Compress(data, LevelDefault, false)
		require.NoError(t, err)

		out, err := Decompress(frame, len(data), true)
		require.NoError(t, err)
		require.Equal(t, data, out)
	})
}

func TestGetDecompressedSize_Unknown(t *testing.T) {
	require.Zero(t, GetDecompressedSize(nil))
	require.Zero(t, GetDecompressedSize([]byte{0x01, 0x02, 0x03}))
	require.Zero(t, GetDecompressedSize(bytes.Repeat([]byte{0xFF}, 64)))

	frame, err := Compress(compressiblePattern(1024), LevelDefault, true)
	require.NoError(t, err)

	frame[0] ^= 0x01
	require.Zero(t, GetDecompressedSize(frame))
}

func TestCompressBound_CoversWorstCase(t *testing.T) {
	for _, size := range []int{1, 4096, section.ChunkSize, 2*section.ChunkSize + 999} {
		data := incompressibleNoise(size)

		for _, level := range []format.Level{LevelFastest, LevelFast, LevelDefault} {
			frame, err := Compress(data, level, true)
			require.NoError(t, err)
			require.LessOrEqual(t, len(frame), CompressBound(size), "size=%d level=%s", size, level)
		}
	}
}

// The streaming and buffer engines must be interchangeable: identical
// frames for identical input, and either engine decodes the other's.
func TestStreamBufferEquivalence(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "small", data: compressiblePattern(4096)},
		{name: "multi_chunk", data: compressiblePattern(2*section.ChunkSize + 12345)},
		{name: "incompressible", data: incompressibleNoise(section.ChunkSize + 777)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bufFrame, err := Compress(tt.data, LevelFastest, true)
			require.NoError(t, err)

			for _, threads := range []int{1, 4} {
				var streamFrame bytes.Buffer
				n, err := StreamCompress(&streamFrame, bytes.NewReader(tt.data), LevelFastest, threads, true)
				require.NoError(t, err)
				require.Equal(t, int64(streamFrame.Len()), n)
				require.Equal(t, bufFrame, streamFrame.Bytes(), "threads=%d", threads)
			}

			// The shared frame decodes through either engine.
			var out bytes.Buffer
			n, err := StreamDecompress(&out, bytes.NewReader(bufFrame), 4, true)
			require.NoError(t, err)
			require.Equal(t, int64(len(tt.data)), n)
			require.Equal(t, tt.data, out.Bytes())

			decoded, err := Decompress(bufFrame, len(tt.data), true)
			require.NoError(t, err)
			require.Equal(t, tt.data, decoded)
		})
	}
}

func TestStream_TenMegabytes(t *testing.T) {
	data := compressiblePattern(10_000_000)

	var frame bytes.Buffer
	_, err := StreamCompress(&frame, bytes.NewReader(data), LevelDefault, 4, true)
	require.NoError(t, err)

	var out bytes.Buffer
	written, err := StreamDecompress(&out, bytes.NewReader(frame.Bytes()), 4, true)
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), written)
	require.Equal(t, data, out.Bytes())
}

func TestStreamContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var frame bytes.Buffer
	_, err := StreamCompressContext(ctx, &frame, bytes.NewReader(compressiblePattern(1024)), LevelDefault, 2, true)
	require.ErrorIs(t, err, errs.ErrCancelled)

	valid := mustRoundTrip(t, compressiblePattern(1024), LevelDefault, true)

	var out bytes.Buffer
	_, err = StreamDecompressContext(ctx, &out, bytes.NewReader(valid), 2, true)
	require.ErrorIs(t, err, errs.ErrCancelled)
}
