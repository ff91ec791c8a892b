package rama

import "math"

// Blur accumulates a Gaussian-blurred histogram of samples onto a
// one-dimensional grid, normalized so the area under each sample is
// 1/len(samples).
type Blur struct {
	// Low is the coordinate value of the first grid point.
	Low float64
	// BinWidth is the distance between grid points.
	BinWidth float64
	// Sigma is the Gaussian smoothing parameter.
	Sigma float64
}

// Apply adds the blurred samples into grid. Contributions from samples far
// from a bin are not truncated; every sample contributes to every bin.
func (b Blur) Apply(samples []float64, grid []float64) {
	if len(samples) == 0 {
		return
	}
	denominator := 1.0 / (2 * b.Sigma * b.Sigma)
	normalization := 1.0 / (float64(len(samples)) * math.Sqrt(2.0*math.Pi*b.Sigma*b.Sigma))

	for i := range grid {
		binX := b.Low + float64(i)*b.BinWidth
		binValue := 0.0
		for _, sample := range samples {
			d := binX - sample
			binValue += normalization * math.Exp(-d*d*denominator)
		}
		grid[i] += binValue
	}
}
