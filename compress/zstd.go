package compress

import "github.com/arloliu/blockpack/format"

// ZstdCodec backs LevelDefault, LevelBalanced and LevelCompact with
// Zstandard, mapping each frame level to a progressively denser preset.
//
// Two implementations share this type. The default build uses the pure-Go
// klauspost/compress encoder; building with -tags gozstd switches to the
// cgo libzstd binding for workloads that favor its throughput over an
// all-Go toolchain.
type ZstdCodec struct {
	level format.Level
}

var _ Codec = ZstdCodec{}

// NewZstdCodec creates a Zstd codec tuned for the given frame level.
// Levels below LevelDefault fall back to the LevelDefault preset.
func NewZstdCodec(level format.Level) ZstdCodec {
	return ZstdCodec{level: level}
}
