package compress

import (
	"fmt"
	"testing"
)

// generateBenchmarkData creates deterministic data at a given compressibility.
func generateBenchmarkData(size int, compressibility string) []byte {
	data := make([]byte, size)

	switch compressibility {
	case "compressible":
		pattern := []byte("sensor frame 1234567890 reading 3.14159 status OK ")
		for i := range data {
			data[i] = pattern[i%len(pattern)]
		}
	case "semi_compressible":
		for i := range data {
			if i%100 < 50 {
				data[i] = byte(i % 256)
			} else {
				data[i] = byte((i*7 + i*i) % 256)
			}
		}
	default:
		// Incompressible-ish polynomial noise.
		for i := range data {
			data[i] = byte((i*31 + i*i*7 + i*i*i*3) % 256)
		}
	}

	return data
}

// BenchmarkAllCodecs_Encode measures chunk-sized encodes, the unit of work
// one pipeline worker performs.
func BenchmarkAllCodecs_Encode(b *testing.B) {
	patterns := []string{"compressible", "semi_compressible", "incompressible"}

	for name, codec := range getAllCodecs() {
		for _, pattern := range patterns {
			data := generateBenchmarkData(1<<20, pattern)

			b.Run(fmt.Sprintf("%s/%s", name, pattern), func(b *testing.B) {
				b.SetBytes(int64(len(data)))
				b.ReportAllocs()
				b.ResetTimer()

				for b.Loop() {
					if _, err := codec.Encode(data); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkAllCodecs_Decode(b *testing.B) {
	patterns := []string{"compressible", "semi_compressible", "incompressible"}

	for name, codec := range getAllCodecs() {
		for _, pattern := range patterns {
			data := generateBenchmarkData(1<<20, pattern)

			encoded, err := codec.Encode(data)
			if err != nil {
				b.Fatal(err)
			}

			b.Run(fmt.Sprintf("%s/%s", name, pattern), func(b *testing.B) {
				b.SetBytes(int64(len(data)))
				b.ReportAllocs()
				b.ResetTimer()

				for b.Loop() {
					if _, err := codec.Decode(encoded, len(data)); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
