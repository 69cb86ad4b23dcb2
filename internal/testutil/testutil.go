// Package testutil provides shared test fixtures.
//
// The writers build minimal but structurally valid BEAM-DIMAP products so
// package tests can exercise real header parsing and raster decoding
// without binary fixtures checked into the tree.
package testutil

import (
	"encoding/binary"
	"fmt"
	"math"
	"path"
	"path/filepath"
	"strings"

	"github.com/banshee-data/snapgraph/internal/fsutil"
)

// Band is one spectral band of a fixture product.
type Band struct {
	Name string
	Pix  []float64 // row-major, len width*height
}

// WriteDIMAP writes a BEAM-DIMAP product at dimPath: the .dim header plus a
// .data directory with one big-endian float32 ENVI raster per band, the
// layout the engine produces.
func WriteDIMAP(fsys fsutil.FileSystem, dimPath string, width, height int, bands ...Band) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("fixture %s: dimensions %dx%d must be positive", dimPath, width, height)
	}
	if len(bands) == 0 {
		return fmt.Errorf("fixture %s: at least one band required", dimPath)
	}
	for _, b := range bands {
		if len(b.Pix) != width*height {
			return fmt.Errorf("fixture %s: band %s has %d samples, want %d",
				dimPath, b.Name, len(b.Pix), width*height)
		}
	}

	stem := strings.TrimSuffix(filepath.Base(dimPath), filepath.Ext(dimPath))
	dataDir := filepath.Join(filepath.Dir(dimPath), stem+".data")
	if err := fsys.MkdirAll(dataDir, 0755); err != nil {
		return err
	}

	if err := fsys.WriteFile(dimPath, []byte(dimapHeader(stem, width, height, bands)), 0644); err != nil {
		return err
	}
	for _, b := range bands {
		hdr := enviHeader(width, height)
		if err := fsys.WriteFile(filepath.Join(dataDir, b.Name+".hdr"), []byte(hdr), 0644); err != nil {
			return err
		}
		if err := fsys.WriteFile(filepath.Join(dataDir, b.Name+".img"), enviSamples(b.Pix), 0644); err != nil {
			return err
		}
	}
	return nil
}

func dimapHeader(stem string, width, height int, bands []Band) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="ISO-8859-1"?>` + "\n")
	fmt.Fprintf(&sb, "<Dimap_Document name=%q>\n", stem+".dim")
	sb.WriteString("  <Metadata_Id>\n    <METADATA_FORMAT version=\"2.12.1\">DIMAP</METADATA_FORMAT>\n  </Metadata_Id>\n")
	fmt.Fprintf(&sb, "  <Raster_Dimensions>\n    <NCOLS>%d</NCOLS>\n    <NROWS>%d</NROWS>\n    <NBANDS>%d</NBANDS>\n  </Raster_Dimensions>\n",
		width, height, len(bands))

	sb.WriteString("  <Data_Access>\n    <DATA_FILE_FORMAT>ENVI</DATA_FILE_FORMAT>\n")
	for i, b := range bands {
		href := path.Join(stem+".data", b.Name+".hdr")
		fmt.Fprintf(&sb, "    <Data_File>\n      <DATA_FILE_PATH href=%q/>\n      <BAND_INDEX>%d</BAND_INDEX>\n    </Data_File>\n", href, i)
	}
	sb.WriteString("  </Data_Access>\n")

	sb.WriteString("  <Image_Interpretation>\n")
	for i, b := range bands {
		fmt.Fprintf(&sb, "    <Spectral_Band_Info>\n      <BAND_INDEX>%d</BAND_INDEX>\n      <BAND_NAME>%s</BAND_NAME>\n      <DATA_TYPE>float32</DATA_TYPE>\n    </Spectral_Band_Info>\n", i, b.Name)
	}
	sb.WriteString("  </Image_Interpretation>\n</Dimap_Document>\n")
	return sb.String()
}

func enviHeader(width, height int) string {
	return fmt.Sprintf(`ENVI
description = {
  snapgraph test fixture}
samples = %d
lines = %d
bands = 1
header offset = 0
file type = ENVI Standard
data type = 4
interleave = bsq
byte order = 1
`, width, height)
}

func enviSamples(pix []float64) []byte {
	out := make([]byte, 4*len(pix))
	for i, v := range pix {
		binary.BigEndian.PutUint32(out[i*4:], math.Float32bits(float32(v)))
	}
	return out
}
