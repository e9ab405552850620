package compress

// NoopCodec stores bytes verbatim. No frame level maps to it; it exists
// for tests and as a ratio baseline when comparing strategies.
type NoopCodec struct{}

var _ Codec = NoopCodec{}

// NewNoopCodec creates a pass-through codec.
func NewNoopCodec() NoopCodec {
	return NoopCodec{}
}

// Encode returns the input data directly without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
// Callers should not modify the input data after calling this method if
// they plan to use the returned slice.
func (c NoopCodec) Encode(data []byte) ([]byte, error) {
	return data, nil
}

// Decode returns the input data directly without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoopCodec) Decode(data []byte, decodedSize int) ([]byte, error) {
	return data, nil
}
