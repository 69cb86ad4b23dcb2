package product

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaster_Stats(t *testing.T) {
	r := &Raster{Width: 5, Height: 1, Pix: []float64{3, 1, math.NaN(), 4, 2}}

	s := r.Stats()
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, 1.2909944487, s.StdDev, 1e-9)
	assert.Equal(t, 2.0, s.Median)
	assert.Equal(t, 1.0, s.P5)
	assert.Equal(t, 4.0, s.P95)
}

func TestRaster_Stats_NoFiniteSamples(t *testing.T) {
	r := &Raster{Width: 2, Height: 1, Pix: []float64{math.NaN(), math.Inf(1)}}
	assert.Equal(t, BandStats{}, r.Stats())
}

func TestRaster_Stats_SingleSample(t *testing.T) {
	r := &Raster{Width: 1, Height: 1, Pix: []float64{42}}

	s := r.Stats()
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 42.0, s.Mean)
	assert.Equal(t, 0.0, s.StdDev)
}

func TestRaster_Histogram(t *testing.T) {
	r := &Raster{Width: 4, Height: 1, Pix: []float64{0, 1, 2, 3}}

	dividers, counts := r.Histogram(2)
	require.Equal(t, []float64{0, 1.5, 3}, dividers)
	require.Equal(t, []float64{2, 2}, counts)
}

func TestRaster_Histogram_ConstantAndEmpty(t *testing.T) {
	flat := &Raster{Width: 3, Height: 1, Pix: []float64{5, 5, 5}}
	dividers, counts := flat.Histogram(4)
	assert.Equal(t, []float64{5, 5}, dividers)
	assert.Equal(t, []float64{3}, counts)

	empty := &Raster{Width: 1, Height: 1, Pix: []float64{math.NaN()}}
	dividers, counts = empty.Histogram(4)
	assert.Nil(t, dividers)
	assert.Nil(t, counts)
}
