package pointdata

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a set of decoded points.
type Summary struct {
	Count           int
	Min, Max        r3.Vector
	Mean, StdDev    r3.Vector
	IntensityMean   float64
	IntensityStdDev float64
}

// Summarize computes per-axis and intensity statistics over points.
func Summarize(points []Point) Summary {
	s := Summary{Count: len(points)}
	if len(points) == 0 {
		return s
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	zs := make([]float64, len(points))
	is := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i], zs[i] = p.Position.X, p.Position.Y, p.Position.Z
		is[i] = float64(p.Intensity)
	}

	s.Min = r3.Vector{X: floats.Min(xs), Y: floats.Min(ys), Z: floats.Min(zs)}
	s.Max = r3.Vector{X: floats.Max(xs), Y: floats.Max(ys), Z: floats.Max(zs)}

	s.Mean.X, s.StdDev.X = meanStdDev(xs)
	s.Mean.Y, s.StdDev.Y = meanStdDev(ys)
	s.Mean.Z, s.StdDev.Z = meanStdDev(zs)
	s.IntensityMean, s.IntensityStdDev = meanStdDev(is)
	return s
}

// meanStdDev returns zero spread for a single sample instead of NaN.
func meanStdDev(x []float64) (float64, float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	return stat.MeanStdDev(x, nil)
}
