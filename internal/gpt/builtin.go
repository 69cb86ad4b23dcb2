package gpt

import (
	"errors"
	"fmt"
	"strings"
)

// Format names an output product format the engine's Write step accepts.
type Format string

// Write formats supported by the engine. FormatBeamDimap is the engine's
// native interchange format and the default everywhere a format is omitted.
const (
	FormatBeamDimap     Format = "BEAM-DIMAP"
	FormatGeoTIFF       Format = "GeoTIFF"
	FormatGeoTIFFBigTIF Format = "GeoTIFF-BigTIFF"
	FormatNetCDF4       Format = "NetCDF4-CF"
	FormatENVI          Format = "ENVI"
	FormatHDF5          Format = "HDF5"
)

// DefaultFormat is used when no output format is requested.
const DefaultFormat = FormatBeamDimap

var formats = []Format{
	FormatBeamDimap,
	FormatGeoTIFF,
	FormatGeoTIFFBigTIF,
	FormatNetCDF4,
	FormatENVI,
	FormatHDF5,
}

// ParseFormat resolves a format name case-insensitively to its canonical
// spelling. The empty string resolves to DefaultFormat.
func ParseFormat(s string) (Format, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultFormat, nil
	}
	for _, f := range formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// NewRead builds the read step for a source product. The pixel region always
// covers the full scene; band and mask selection are left to the engine
// defaults.
func NewRead(src Source) (Operator, error) {
	if src == nil {
		return Operator{}, errors.New("read: source must not be nil")
	}
	if src.Path() == "" {
		return Operator{}, fmt.Errorf("read: source %q has no path", src.Name())
	}
	height, width := src.Size()
	if height <= 0 || width <= 0 {
		return Operator{}, fmt.Errorf("read: source %q has invalid raster size %dx%d", src.Name(), height, width)
	}
	params := NewParams().
		Set("useAdvancedOptions", "false").
		Set("file", src.Path()).
		Set("copyMetadata", "true").
		SetUnset("bandNames").
		Set("pixelRegion", fmt.Sprintf("0,0,%d,%d", width, height)).
		SetUnset("maskNames")
	return NewOperator("Read", params)
}

// NewWrite builds the terminal write step. An empty format selects
// DefaultFormat; anything outside the known set is rejected.
func NewWrite(path string, format Format) (Operator, error) {
	if strings.TrimSpace(path) == "" {
		return Operator{}, errors.New("write: destination path must not be empty")
	}
	f, err := ParseFormat(string(format))
	if err != nil {
		return Operator{}, fmt.Errorf("write: %w", err)
	}
	params := NewParams().
		Set("file", path).
		Set("formatName", string(f))
	return NewOperator("Write", params)
}
