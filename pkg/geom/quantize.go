package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// Dequantize converts integer-encoded coordinates to world space:
// raw * scale + offset per axis, computed with a fused multiply-add.
func Dequantize(raw [3]int32, scale, offset r3.Vector) r3.Vector {
	return r3.Vector{
		X: math.FMA(float64(raw[0]), scale.X, offset.X),
		Y: math.FMA(float64(raw[1]), scale.Y, offset.Y),
		Z: math.FMA(float64(raw[2]), scale.Z, offset.Z),
	}
}
