package product

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Raster is one band's samples in row-major order, len(Pix) == Width*Height.
type Raster struct {
	Width  int
	Height int
	Pix    []float64
}

// At returns the sample at (row, col). Indices follow the scene layout:
// row 0 is the top line.
func (r *Raster) At(row, col int) float64 {
	return r.Pix[row*r.Width+col]
}

// BandStats summarizes the finite samples of a raster. Count is the number
// of finite samples; the remaining fields are zero when Count is zero.
type BandStats struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Median float64
	P5     float64
	P95    float64
}

// Stats computes summary statistics over the raster. NaN and infinite
// samples (engine no-data) are excluded.
func (r *Raster) Stats() BandStats {
	xs := r.finite()
	if len(xs) == 0 {
		return BandStats{}
	}
	sort.Float64s(xs)

	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) == 1 {
		std = 0
	}
	return BandStats{
		Count:  len(xs),
		Min:    floats.Min(xs),
		Max:    floats.Max(xs),
		Mean:   mean,
		StdDev: std,
		Median: stat.Quantile(0.5, stat.Empirical, xs, nil),
		P5:     stat.Quantile(0.05, stat.Empirical, xs, nil),
		P95:    stat.Quantile(0.95, stat.Empirical, xs, nil),
	}
}

// Histogram buckets the finite samples into equal-width bins across
// [min, max]. It returns the bin dividers (len bins+1) and per-bin counts
// (len bins). A constant raster collapses to a single populated bin.
func (r *Raster) Histogram(bins int) (dividers []float64, counts []float64) {
	if bins < 1 {
		bins = 1
	}
	xs := r.finite()
	if len(xs) == 0 {
		return nil, nil
	}
	sort.Float64s(xs)

	lo, hi := xs[0], xs[len(xs)-1]
	if lo == hi {
		return []float64{lo, hi}, []float64{float64(len(xs))}
	}

	dividers = make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	counts = stat.Histogram(nil, dividers, xs, nil)
	return dividers, counts
}

func (r *Raster) finite() []float64 {
	xs := make([]float64, 0, len(r.Pix))
	for _, v := range r.Pix {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xs = append(xs, v)
	}
	return xs
}
