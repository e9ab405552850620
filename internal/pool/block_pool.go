// Package pool provides reusable block buffers for the streaming pipeline.
package pool

import "sync"

// Default sizing for pipeline block buffers. A block holds either one
// chunk of raw input or one compressed record, both bounded by the
// frame's chunking granularity.
const (
	BlockBufferDefaultSize  = 1024 * 1024     // 1MiB
	BlockBufferMaxThreshold = 1024 * 1024 * 8 // 8MiB
)

// BlockBuffer is a reusable byte buffer for one pipeline block.
type BlockBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewBlockBuffer creates a new BlockBuffer with the specified initial capacity.
func NewBlockBuffer(defaultSize int) *BlockBuffer {
	return &BlockBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *BlockBuffer) Bytes() []byte {
	return bb.B
}

// Len returns the length of the buffer.
func (bb *BlockBuffer) Len() int {
	return len(bb.B)
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *BlockBuffer) Reset() {
	bb.B = bb.B[:0]
}

// SetLength resizes the buffer to exactly n bytes, reallocating when the
// current capacity is insufficient. Existing content is not preserved.
func (bb *BlockBuffer) SetLength(n int) {
	if cap(bb.B) < n {
		bb.B = make([]byte, n)
		return
	}
	bb.B = bb.B[:n]
}

// BlockBufferPool is a pool of BlockBuffers to minimize allocations.
//
// It uses sync.Pool internally. Buffers above the configured threshold are
// dropped instead of pooled so a burst of oversized blocks cannot pin
// memory for the life of the process.
type BlockBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewBlockBufferPool creates a pool handing out buffers of the specified
// default capacity.
func NewBlockBufferPool(defaultSize int, maxThreshold int) *BlockBufferPool {
	return &BlockBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewBlockBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a BlockBuffer from the pool.
func (bbp *BlockBufferPool) Get() *BlockBuffer {
	bb, _ := bbp.pool.Get().(*BlockBuffer)
	return bb
}

// Put returns a BlockBuffer to the pool for reuse.
func (bbp *BlockBufferPool) Put(bb *BlockBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		// Discard overly large buffers to prevent memory bloat
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var blockDefaultPool = NewBlockBufferPool(BlockBufferDefaultSize, BlockBufferMaxThreshold)

// GetBlockBuffer retrieves a BlockBuffer from the shared block pool.
func GetBlockBuffer() *BlockBuffer {
	return blockDefaultPool.Get()
}

// PutBlockBuffer returns a BlockBuffer to the shared block pool.
func PutBlockBuffer(bb *BlockBuffer) {
	blockDefaultPool.Put(bb)
}
