package stream

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/blockpack/errs"
	"github.com/arloliu/blockpack/internal/pool"
)

// job is one unit of pipeline work: a chunk index plus its bytes. in holds
// the bytes entering the transform (raw on the encode path, a compressed
// record on the decode path) and returns to the block pool once consumed;
// out holds the transform result for the writer stage.
type job struct {
	index int
	in    *pool.BlockBuffer
	out   []byte
}

// normalizeWorkers maps the caller's thread count to a concrete pool
// size: values below 1 select the number of logical CPUs.
func normalizeWorkers(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}

	return n
}

// queueDepth bounds the channels between pipeline stages. Together with
// the workers' in-flight chunks it caps how many blocks a job can hold in
// memory at once.
func queueDepth(workers int) int {
	return 2 * workers
}

// waitPipeline waits for every stage and maps the outcome to the caller's
// view. Stages interrupted by the group context return its error, which is
// context.Canceled both when the caller cancelled and when another stage
// failed; errgroup keeps the first error, so an internal failure surfaces
// as itself and only a caller-side cancellation becomes ErrCancelled.
func waitPipeline(ctx context.Context, g *errgroup.Group) error {
	err := g.Wait()
	if err != nil && ctx.Err() != nil {
		return errs.ErrCancelled
	}

	return err
}
