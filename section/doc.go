// Package section defines the low-level binary structures and constants of
// the blockpack frame format.
//
// This package provides the foundational types that define the physical
// layout of a frame. It handles binary serialization/deserialization of
// the frame header, chunk records and the trailing footer, ensuring a
// consistent byte-level representation across platforms. All multi-byte
// integers are little-endian.
//
// # Frame Structure
//
// A frame is a fixed-size header, a variable payload of chunk records and
// a fixed-size footer:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (7 bytes, fixed)                                  │
//	│  - Magic (4 bytes)                                       │
//	│  - Version (1 byte)                                      │
//	│  - Level (1 byte): 0=Fastest .. 4=Compact                │
//	│  - Flags (1 byte): checksum, multi-chunk                 │
//	├─────────────────────────────────────────────────────────┤
//	│ Payload (variable)                                       │
//	│  - N chunk records, each:                                │
//	│     - Compressed length (4 bytes)                        │
//	│     - Compressed bytes (variable)                        │
//	├─────────────────────────────────────────────────────────┤
//	│ Footer (8 or 16 bytes, fixed)                            │
//	│  - Original size (8 bytes)                               │
//	│  - xxHash64 digest (8 bytes, only with checksum flag)    │
//	└─────────────────────────────────────────────────────────┘
//
// The footer size depends only on the header flags byte, never on the
// payload, so the original size can be read in constant time from the end
// of a buffer (see DecompressedSize). Chunk records carry no offsets;
// boundaries are only discoverable by walking length prefixes in order.
package section
