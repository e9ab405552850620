package stream

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/blockpack/compress"
	"github.com/arloliu/blockpack/errs"
	"github.com/arloliu/blockpack/internal/pool"
	"github.com/arloliu/blockpack/section"
)

// Decompress reads one complete frame from src and writes the original
// bytes to dst. Chunks are decoded by a pool of workers and emitted
// strictly in frame order. The frame footer is authoritative: the byte
// count written to dst must match the recorded original size.
//
// checksum requests digest verification; it is only performed when the
// frame itself carries a digest. On error, bytes already written to dst
// are left as-is.
//
// Parameters:
//   - ctx: Cancels the operation between chunks
//   - dst: Destination for the original bytes
//   - src: Source holding exactly one frame, read until io.EOF
//   - workers: Concurrent decoders, values below 1 select runtime.NumCPU()
//   - checksum: Verify the footer digest when the frame has one
//
// Returns:
//   - int64: Number of original bytes written to dst, including on error
//   - error: Structural, integrity, cancellation, or stage failure
func Decompress(ctx context.Context, dst io.Writer, src io.Reader, workers int, checksum bool) (int64, error) {
	if ctx.Err() != nil {
		return 0, errs.ErrCancelled
	}

	hdr, err := readFrameHeader(src)
	if err != nil {
		return 0, err
	}

	codec, err := compress.ForLevel(hdr.Level)
	if err != nil {
		return 0, err
	}

	return decompressFrame(ctx, dst, src, codec, hdr, normalizeWorkers(workers), checksum)
}

// decompressFrame runs the decode pipeline after the header has been
// consumed from src: record scanner -> decode workers -> ordering writer.
// The footer is withheld from the scan by a tailReader and checked once
// every stage has finished.
func decompressFrame(ctx context.Context, dst io.Writer, src io.Reader, codec compress.Codec, hdr section.FrameHeader, workers int, checksum bool) (int64, error) {
	verify := checksum && hdr.Checksum

	tr := newTailReader(src, section.FooterLen(hdr.Checksum))

	g, gctx := errgroup.WithContext(ctx)

	jobs := make(chan *job, queueDepth(workers))
	results := make(chan *job, queueDepth(workers))

	var (
		written int64
		digest  = xxhash.New()
	)

	// Scanner: walks length-prefixed chunk records and dispatches decode
	// jobs. The tail reader ends the walk exactly at the footer boundary,
	// so a clean io.EOF here means the payload was fully consumed.
	g.Go(func() error {
		defer close(jobs)

		var lenBuf [section.ChunkLenSize]byte
		index := 0

		for {
			switch _, err := io.ReadFull(tr, lenBuf[:]); err {
			case nil:
			case io.EOF:
				return nil
			case io.ErrUnexpectedEOF:
				return errs.ErrInvalidChunkLength
			default:
				return fmt.Errorf("read chunk length: %w", err)
			}

			recLen := int(binary.LittleEndian.Uint32(lenBuf[:]))
			if recLen == 0 || recLen > section.MaxChunkRecordSize {
				return errs.ErrInvalidChunkLength
			}

			block := pool.GetBlockBuffer()
			block.SetLength(recLen)

			if _, err := io.ReadFull(tr, block.B); err != nil {
				pool.PutBlockBuffer(block)
				if err == io.EOF || err == io.ErrUnexpectedEOF {
					return errs.ErrInvalidChunkLength
				}

				return fmt.Errorf("read chunk data: %w", err)
			}

			select {
			case jobs <- &job{index: index, in: block}:
			case <-gctx.Done():
				pool.PutBlockBuffer(block)
				return gctx.Err()
			}

			index++
		}
	})

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			defer wg.Done()
			return decodeChunks(gctx, codec, verify, jobs, results)
		})
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Writer: restores frame order and emits original bytes. The digest
	// folds over bytes in emission order, which equals read order.
	g.Go(func() error {
		pending := make(map[int]*job, queueDepth(workers))
		next := 0

		for jb := range results {
			pending[jb.index] = jb

			for {
				ready, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++

				if verify {
					_, _ = digest.Write(ready.out)
				}

				n, err := dst.Write(ready.out)
				written += int64(n)
				if err != nil {
					return fmt.Errorf("write decompressed chunk: %w", err)
				}
			}
		}

		return nil
	})

	if err := waitPipeline(ctx, g); err != nil {
		return written, err
	}

	ftr, err := section.ParseFrameFooter(tr.Tail(), hdr.Checksum)
	if err != nil {
		return written, err
	}

	if uint64(written) != ftr.OriginalSize {
		return written, fmt.Errorf("%w: emitted %d bytes, footer records %d", errs.ErrLengthMismatch, written, ftr.OriginalSize)
	}
	if verify && digest.Sum64() != ftr.Digest {
		return written, errs.ErrChecksumMismatch
	}

	return written, nil
}

// decodeChunks is one decode worker: it decompresses jobs until the
// channel closes. After a pipeline stop it keeps draining so the scanner
// is never stuck on a full jobs channel.
//
// Under verification a decode failure is corruption the digest would have
// caught, and is classified as such.
func decodeChunks(gctx context.Context, codec compress.Codec, verify bool, jobs <-chan *job, results chan<- *job) error {
	for jb := range jobs {
		if gctx.Err() != nil {
			pool.PutBlockBuffer(jb.in)
			continue
		}

		out, err := codec.Decode(jb.in.Bytes(), section.ChunkSize)
		pool.PutBlockBuffer(jb.in)
		jb.in = nil
		if err != nil {
			// Over-cap chunks are malformed frames regardless of any
			// digest, so the format class is preserved.
			if errors.Is(err, errs.ErrChunkTooLarge) {
				return fmt.Errorf("chunk %d: %w", jb.index, err)
			}

			if verify {
				return fmt.Errorf("%w: chunk %d: %v", errs.ErrChunkCorrupted, jb.index, err)
			}

			return fmt.Errorf("decode chunk %d: %w", jb.index, err)
		}
		jb.out = out

		select {
		case results <- jb:
		case <-gctx.Done():
			return gctx.Err()
		}
	}

	// Non-nil after a stop: jobs may have been drained without decoding,
	// so the pipeline must not report success.
	return gctx.Err()
}
