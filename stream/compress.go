package stream

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/blockpack/compress"
	"github.com/arloliu/blockpack/errs"
	"github.com/arloliu/blockpack/format"
	"github.com/arloliu/blockpack/internal/pool"
	"github.com/arloliu/blockpack/section"
)

// Compress reads src to end of stream, compresses it at the given level
// and writes one complete frame to dst. Chunks are encoded by a pool of
// workers and written strictly in input order, so the output is
// byte-identical across worker counts.
//
// An empty source still produces a well-formed frame with zero chunks.
// On error the frame written so far is left as-is; dst is never rewound.
//
// Parameters:
//   - ctx: Cancels the operation between chunks
//   - dst: Destination for the frame bytes
//   - src: Source of the original bytes, read until io.EOF
//   - level: Compression level (format.LevelFastest..format.LevelCompact)
//   - workers: Concurrent encoders, values below 1 select runtime.NumCPU()
//   - checksum: Append an xxHash64 digest of the original bytes to the footer
//
// Returns:
//   - int64: Number of frame bytes written to dst, including on error
//   - error: ErrInvalidCompressionLevel, ErrCancelled, or the first stage failure
func Compress(ctx context.Context, dst io.Writer, src io.Reader, level format.Level, workers int, checksum bool) (int64, error) {
	codec, err := compress.ForLevel(level)
	if err != nil {
		return 0, err
	}
	if ctx.Err() != nil {
		return 0, errs.ErrCancelled
	}

	return compressFrame(ctx, dst, src, codec, level, normalizeWorkers(workers), checksum)
}

// compressFrame runs the encode pipeline with a resolved codec and worker
// count: reader -> encode workers -> ordering writer, supervised by one
// errgroup. The frame footer is written after every stage has finished.
func compressFrame(ctx context.Context, dst io.Writer, src io.Reader, codec compress.Codec, level format.Level, workers int, checksum bool) (int64, error) {
	// The multi-chunk flag must be known before the header goes out, so
	// read one block ahead: a second block existing means multi-chunk.
	first, err := readBlock(src)
	if err != nil {
		return 0, err
	}

	var second *pool.BlockBuffer
	if first != nil && first.Len() == section.ChunkSize {
		second, err = readBlock(src)
		if err != nil {
			pool.PutBlockBuffer(first)
			return 0, err
		}
	}

	hdr := section.FrameHeader{
		Level:      level,
		Checksum:   checksum,
		MultiChunk: second != nil,
	}

	var written int64

	n, err := dst.Write(hdr.Bytes())
	written += int64(n)
	if err != nil {
		if first != nil {
			pool.PutBlockBuffer(first)
		}
		if second != nil {
			pool.PutBlockBuffer(second)
		}

		return written, fmt.Errorf("write frame header: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	jobs := make(chan *job, queueDepth(workers))
	results := make(chan *job, queueDepth(workers))

	var (
		originalSize uint64
		payloadBytes int64
		digest       = xxhash.New()
	)

	// Reader: splits src into chunk-size blocks, folds size and digest in
	// read order, and dispatches encode jobs. It owns closing jobs.
	g.Go(func() error {
		defer close(jobs)

		index := 0
		block, next := first, second

		for block != nil {
			originalSize += uint64(block.Len())
			if checksum {
				_, _ = digest.Write(block.Bytes())
			}

			select {
			case jobs <- &job{index: index, in: block}:
			case <-gctx.Done():
				pool.PutBlockBuffer(block)
				if next != nil {
					pool.PutBlockBuffer(next)
				}

				return gctx.Err()
			}

			index++
			block, next = next, nil

			if block == nil {
				var rerr error
				block, rerr = readBlock(src)
				if rerr != nil {
					return rerr
				}
			}
		}

		return nil
	})

	// Encode workers. A WaitGroup tracks them so results can be closed
	// once the last one returns; the errgroup alone cannot close it
	// without also waiting for the writer.
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			defer wg.Done()
			return encodeChunks(gctx, codec, jobs, results)
		})
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Writer: restores input order with a reorder map keyed by chunk
	// index and emits length-prefixed records. It never waits for a
	// specific index, so workers always find room to hand off results.
	g.Go(func() error {
		pending := make(map[int]*job, queueDepth(workers))
		lenBuf := make([]byte, section.ChunkLenSize)
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

				binary.LittleEndian.PutUint32(lenBuf, uint32(len(ready.out))) //nolint:gosec // bounded by MaxChunkRecordSize

				n, err := dst.Write(lenBuf)
				payloadBytes += int64(n)
				if err != nil {
					return fmt.Errorf("write chunk length: %w", err)
				}

				n, err = dst.Write(ready.out)
				payloadBytes += int64(n)
				if err != nil {
					return fmt.Errorf("write chunk data: %w", err)
				}
			}
		}

		return nil
	})

	err = waitPipeline(ctx, g)
	written += payloadBytes
	if err != nil {
		return written, err
	}

	ftr := section.FrameFooter{OriginalSize: originalSize, HasDigest: checksum}
	if checksum {
		ftr.Digest = digest.Sum64()
	}

	n, err = dst.Write(ftr.Bytes())
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("write frame footer: %w", err)
	}

	return written, nil
}

// encodeChunks is one encode worker: it compresses jobs until the channel
// closes. After a pipeline stop it keeps draining so the reader is never
// stuck on a full jobs channel, recycling blocks without encoding them.
func encodeChunks(gctx context.Context, codec compress.Codec, jobs <-chan *job, results chan<- *job) error {
	for jb := range jobs {
		if gctx.Err() != nil {
			pool.PutBlockBuffer(jb.in)
			continue
		}

		out, err := codec.Encode(jb.in.Bytes())
		pool.PutBlockBuffer(jb.in)
		jb.in = nil
		if err != nil {
			return fmt.Errorf("encode chunk %d: %w", jb.index, err)
		}
		jb.out = out

		select {
		case results <- jb:
		case <-gctx.Done():
			return gctx.Err()
		}
	}

	// Non-nil after a stop: jobs may have been drained without encoding,
	// so the pipeline must not report success.
	return gctx.Err()
}
