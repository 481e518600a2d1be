package sqlite

import (
	"encoding/binary"
	"math"
)

// serializeVector converts a float32 slice to the little-endian BLOB layout
// sqlite-vec expects.
func serializeVector(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// normalizeDistance clamps sqlite-vec's cosine distance, which spans [0,2],
// into [0,1]. Anything past orthogonal reads as fully dissimilar.
func normalizeDistance(d float64) float64 {
	if math.IsNaN(d) {
		return 1
	}
	return math.Max(0, math.Min(1, d))
}
