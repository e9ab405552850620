// Package stream provides the streaming engine: frame compression and
// decompression over io.Reader/io.Writer with bounded memory, regardless
// of input size.
//
// # Pipeline
//
// Both directions run the same three-stage shape under one errgroup:
//
//	reader ──jobs──▶ worker pool ──results──▶ writer
//	 (1 goroutine)    (N goroutines)           (1 goroutine)
//
// The reader splits the source into chunk-size blocks (compression) or
// scans length-prefixed records (decompression) and dispatches them with
// ascending indexes. Workers transform chunks independently and in any
// order. The writer alone owns the destination: it holds out-of-order
// results in a reorder map and emits strictly by index, so output is
// byte-identical to a single-threaded run.
//
// Channels between stages are bounded, and the writer drains results
// continuously, so total in-flight data stays proportional to the worker
// count rather than the stream size.
//
// # Frame boundaries without seeking
//
// The header is written before the payload, which requires knowing the
// multi-chunk flag up front; the reader keeps one block of lookahead for
// that. The footer trails the payload, so the decode side wraps the
// source in a tailReader that withholds the final footer-length bytes
// from the record scan and surfaces them once the payload is consumed.
//
// # Cancellation
//
// Cancelling the context stops all stages between chunks and reports
// errs.ErrCancelled. Bytes already written to the destination are left
// in place; a partially written frame is not a valid frame.
package stream
