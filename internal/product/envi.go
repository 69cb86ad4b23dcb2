package product

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ENVI data type codes for the raster sample formats SNAP writes.
const (
	enviFloat32 = 4
	enviFloat64 = 5
)

// enviHeader holds the fields of a .hdr file this package honors. SNAP
// writes one single-band BSQ raster per band, so interleave never matters
// here, but multi-band files are rejected rather than misread.
type enviHeader struct {
	Samples      int
	Lines        int
	Bands        int
	DataType     int
	ByteOrder    int
	HeaderOffset int
}

// parseENVIHeader reads the "key = value" header format. The first
// non-blank line must be the ENVI magic. Brace-wrapped values may span
// lines; unknown keys are ignored.
func parseENVIHeader(r io.Reader) (*enviHeader, error) {
	scanner := bufio.NewScanner(r)

	magic := ""
	for scanner.Scan() {
		magic = strings.TrimSpace(scanner.Text())
		if magic != "" {
			break
		}
	}
	if magic != "ENVI" {
		return nil, errors.New("missing ENVI magic")
	}

	hdr := &enviHeader{Bands: 1}
	seen := map[string]bool{}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		// Brace values run until the closing brace, possibly on later lines.
		if strings.HasPrefix(value, "{") {
			for !strings.Contains(value, "}") && scanner.Scan() {
				value += " " + strings.TrimSpace(scanner.Text())
			}
			value = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(value, "{"), "}"))
		}

		var dst *int
		switch key {
		case "samples":
			dst = &hdr.Samples
		case "lines":
			dst = &hdr.Lines
		case "bands":
			dst = &hdr.Bands
		case "data type":
			dst = &hdr.DataType
		case "byte order":
			dst = &hdr.ByteOrder
		case "header offset":
			dst = &hdr.HeaderOffset
		default:
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("header field %q: %w", key, err)
		}
		*dst = n
		seen[key] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, required := range []string{"samples", "lines", "data type"} {
		if !seen[required] {
			return nil, fmt.Errorf("header field %q missing", required)
		}
	}
	if hdr.Samples <= 0 || hdr.Lines <= 0 {
		return nil, fmt.Errorf("raster is %dx%d, dimensions must be positive", hdr.Samples, hdr.Lines)
	}
	if hdr.Bands != 1 {
		return nil, fmt.Errorf("raster has %d bands, band files hold exactly one", hdr.Bands)
	}
	if hdr.DataType != enviFloat32 && hdr.DataType != enviFloat64 {
		return nil, fmt.Errorf("unsupported data type %d, only float32 (4) and float64 (5) rasters", hdr.DataType)
	}
	if hdr.ByteOrder != 0 && hdr.ByteOrder != 1 {
		return nil, fmt.Errorf("byte order %d is not 0 (little) or 1 (big)", hdr.ByteOrder)
	}
	if hdr.HeaderOffset < 0 {
		return nil, fmt.Errorf("header offset %d is negative", hdr.HeaderOffset)
	}
	return hdr, nil
}

// decodeSamples converts a raw .img payload into row-major float64 samples
// per the header's type, byte order and embedded-header offset.
func decodeSamples(data []byte, hdr *enviHeader) ([]float64, error) {
	if len(data) < hdr.HeaderOffset {
		return nil, fmt.Errorf("raster shorter than header offset %d", hdr.HeaderOffset)
	}
	data = data[hdr.HeaderOffset:]

	count := hdr.Samples * hdr.Lines
	width := 4
	if hdr.DataType == enviFloat64 {
		width = 8
	}
	if need := count * width; len(data) < need {
		return nil, fmt.Errorf("raster truncated: need %d bytes for %d samples, have %d", need, count, len(data))
	}

	var order binary.ByteOrder = binary.LittleEndian
	if hdr.ByteOrder == 1 {
		order = binary.BigEndian
	}

	pix := make([]float64, count)
	switch hdr.DataType {
	case enviFloat32:
		for i := range pix {
			bits := order.Uint32(data[i*4 : i*4+4])
			pix[i] = float64(math.Float32frombits(bits))
		}
	case enviFloat64:
		for i := range pix {
			bits := order.Uint64(data[i*8 : i*8+8])
			pix[i] = math.Float64frombits(bits)
		}
	}
	return pix, nil
}
