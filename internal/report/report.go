// Package report renders human-facing product quicklooks as standalone HTML.
package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/snapgraph/internal/fsutil"
	"github.com/banshee-data/snapgraph/internal/product"
)

// histogramBins is the bin count for quicklook band histograms.
const histogramBins = 64

// WriteQuicklook renders one histogram chart per band of p, with the band's
// summary statistics in the chart subtitle, and writes the page to path.
// Band order follows the product header.
func WriteQuicklook(fsys fsutil.FileSystem, p *product.Product, path string) error {
	bands := p.Bands()
	if len(bands) == 0 {
		return fmt.Errorf("product %s has no bands", p.Name())
	}

	height, width := p.Size()
	page := components.NewPage()
	for _, band := range bands {
		raster, err := p.Band(band)
		if err != nil {
			return fmt.Errorf("read band %s: %w", band, err)
		}
		page.AddCharts(bandHistogram(p.Name(), band, height, width, raster))
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render quicklook for %s: %w", p.Name(), err)
	}
	if err := fsys.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write quicklook: %w", err)
	}
	return nil
}

// bandHistogram builds the bar chart for one band. The X axis carries each
// bin's lower bound; an all-NaN band renders as an empty chart so the page
// still shows every band the header lists.
func bandHistogram(productName, band string, height, width int, r *product.Raster) *charts.Bar {
	dividers, counts := r.Histogram(histogramBins)

	x := make([]string, len(counts))
	y := make([]opts.BarData, len(counts))
	for i := range counts {
		x[i] = strconv.FormatFloat(dividers[i], 'g', 4, 64)
		y[i] = opts.BarData{Value: counts[i]}
	}

	subtitle := "no finite samples"
	if st := r.Stats(); st.Count > 0 {
		subtitle = fmt.Sprintf("n=%d min=%.4g max=%.4g mean=%.4g stddev=%.4g median=%.4g p5=%.4g p95=%.4g",
			st.Count, st.Min, st.Max, st.Mean, st.StdDev, st.Median, st.P5, st.P95)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fmt.Sprintf("%s quicklook", productName),
			Width:     "100%",
			Height:    "400px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s / %s (%dx%d)", productName, band, width, height),
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).AddSeries(band, y)
	return bar
}
