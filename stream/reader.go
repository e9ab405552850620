package stream

import (
	"fmt"
	"io"

	"github.com/arloliu/blockpack/errs"
	"github.com/arloliu/blockpack/internal/pool"
	"github.com/arloliu/blockpack/section"
)

// readFrameHeader consumes and parses the fixed-size header at the start
// of a frame stream. A stream too short to hold one is structurally
// invalid rather than an I/O failure.
func readFrameHeader(src io.Reader) (section.FrameHeader, error) {
	var buf [section.HeaderSize]byte

	if _, err := io.ReadFull(src, buf[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return section.FrameHeader{}, errs.ErrFrameTooShort
		}

		return section.FrameHeader{}, fmt.Errorf("read frame header: %w", err)
	}

	return section.ParseFrameHeader(buf[:])
}

// readBlock reads up to section.ChunkSize bytes from src into a pooled
// block. It returns nil with no error at end of stream, and a partially
// filled block when the final read lands short of a full chunk.
func readBlock(src io.Reader) (*pool.BlockBuffer, error) {
	buf := pool.GetBlockBuffer()
	buf.SetLength(section.ChunkSize)

	n, err := io.ReadFull(src, buf.B)
	switch {
	case err == io.EOF:
		pool.PutBlockBuffer(buf)
		return nil, nil
	case err == io.ErrUnexpectedEOF:
		buf.SetLength(n)
		return buf, nil
	case err != nil:
		pool.PutBlockBuffer(buf)
		return nil, fmt.Errorf("read source block: %w", err)
	}

	return buf, nil
}

// tailReader serves a stream while holding back its final tailLen bytes.
// Read never hands out bytes that could belong to the tail, so a consumer
// scanning chunk records sees end-of-stream exactly at the payload
// boundary; Tail returns the withheld bytes once Read has drained.
//
// The frame footer sits behind the last chunk record, and its length is
// known from the header flags before any payload arrives, which lets the
// record scanner run on an unseekable stream.
type tailReader struct {
	src     io.Reader
	tailLen int
	buf     []byte // sliding window: pending output bytes followed by the candidate tail
	start   int    // first unread byte in buf
	end     int    // one past the last valid byte in buf
	eof     bool
}

const tailReadBufSize = 64 << 10

func newTailReader(src io.Reader, tailLen int) *tailReader {
	bufSize := tailReadBufSize
	if bufSize < 2*tailLen {
		bufSize = 2 * tailLen
	}

	return &tailReader{
		src:     src,
		tailLen: tailLen,
		buf:     make([]byte, bufSize),
	}
}

// fill tops up the window until it holds more than tailLen bytes or the
// source ends.
func (t *tailReader) fill() error {
	for !t.eof && t.end-t.start <= t.tailLen {
		if t.start > 0 {
			copy(t.buf, t.buf[t.start:t.end])
			t.end -= t.start
			t.start = 0
		}

		n, err := t.src.Read(t.buf[t.end:])
		t.end += n

		switch {
		case err == io.EOF:
			t.eof = true
		case err != nil:
			return err
		}
	}

	return nil
}

// Read implements io.Reader over the stream minus its tail.
func (t *tailReader) Read(p []byte) (int, error) {
	if err := t.fill(); err != nil {
		return 0, err
	}

	avail := t.end - t.start - t.tailLen
	if avail <= 0 {
		return 0, io.EOF
	}

	if len(p) > avail {
		p = p[:avail]
	}

	n := copy(p, t.buf[t.start:])
	t.start += n

	return n, nil
}

// Tail returns the withheld trailing bytes. It is valid only after Read
// has returned io.EOF; a stream shorter than tailLen yields a short tail.
func (t *tailReader) Tail() []byte {
	return t.buf[t.start:t.end]
}
