// Package product reads BEAM-DIMAP raster products from disk.
//
// A BEAM-DIMAP product is a small XML header (the .dim file) next to a
// .data directory holding one ENVI raster per band. This package parses
// the header for scene dimensions and the band list, and decodes band
// rasters on demand. Products satisfy gpt.Source, so anything read here
// can feed a processing pipeline directly.
package product
