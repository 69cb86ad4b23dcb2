package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/snapgraph/internal/fsutil"
	"github.com/banshee-data/snapgraph/internal/product"
	"github.com/banshee-data/snapgraph/internal/report"
)

func openProduct(fs *flag.FlagSet, path string) *product.Product {
	if path == "" {
		fmt.Fprintln(os.Stderr, "Error: -in flag is required")
		fs.Usage()
		os.Exit(1)
	}
	p, err := product.Open(fsutil.OSFileSystem{}, path)
	if err != nil {
		log.Fatalf("Failed to open product: %v", err)
	}
	return p
}

func handleInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	in := fs.String("in", "", "Product .dim header (required)")
	noStats := fs.Bool("no-stats", false, "Skip per-band statistics (header only, no raster reads)")
	fs.Parse(args)

	p := openProduct(fs, *in)
	height, width := p.Size()

	fmt.Printf("Product: %s\n", p.Name())
	fmt.Printf("Path:    %s\n", p.Path())
	fmt.Printf("Size:    %d x %d (width x height)\n", width, height)
	fmt.Printf("Bands:   %d\n", len(p.Bands()))

	for _, band := range p.Bands() {
		if *noStats {
			fmt.Printf("  %s\n", band)
			continue
		}
		raster, err := p.Band(band)
		if err != nil {
			log.Fatalf("Failed to read band %s: %v", band, err)
		}
		st := raster.Stats()
		if st.Count == 0 {
			fmt.Printf("  %-24s no finite samples\n", band)
			continue
		}
		fmt.Printf("  %-24s n=%d min=%.6g max=%.6g mean=%.6g stddev=%.6g median=%.6g p5=%.6g p95=%.6g\n",
			band, st.Count, st.Min, st.Max, st.Mean, st.StdDev, st.Median, st.P5, st.P95)
	}
}

func handleReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	in := fs.String("in", "", "Product .dim header (required)")
	html := fs.String("html", "", "Output HTML path (default <product>_quicklook.html)")
	fs.Parse(args)

	p := openProduct(fs, *in)

	outPath := *html
	if outPath == "" {
		outPath = p.Name() + "_quicklook.html"
	}
	if err := report.WriteQuicklook(fsutil.OSFileSystem{}, p, outPath); err != nil {
		log.Fatalf("Failed to write quicklook: %v", err)
	}
	log.Printf("✓ Quicklook written to %s", outPath)
}
