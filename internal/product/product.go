package product

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/snapgraph/internal/fsutil"
	"github.com/banshee-data/snapgraph/internal/gpt"
)

// Extension is the BEAM-DIMAP header suffix.
const Extension = ".dim"

// dimapDocument mirrors the parts of a .dim header this package needs:
// scene dimensions, the spectral band list and the per-band data files.
type dimapDocument struct {
	XMLName    xml.Name `xml:"Dimap_Document"`
	Dimensions struct {
		Cols  int `xml:"NCOLS"`
		Rows  int `xml:"NROWS"`
		Bands int `xml:"NBANDS"`
	} `xml:"Raster_Dimensions"`
	DataFiles []struct {
		Path struct {
			Href string `xml:"href,attr"`
		} `xml:"DATA_FILE_PATH"`
		BandIndex int `xml:"BAND_INDEX"`
	} `xml:"Data_Access>Data_File"`
	Bands []struct {
		Index int    `xml:"BAND_INDEX"`
		Name  string `xml:"BAND_NAME"`
	} `xml:"Image_Interpretation>Spectral_Band_Info"`
}

// Product is an opened BEAM-DIMAP product. It satisfies gpt.Source.
type Product struct {
	fsys   fsutil.FileSystem
	name   string
	path   string
	height int
	width  int
	bands  []string
	// headers maps band name to its ENVI header path inside the .data
	// directory.
	headers map[string]string
}

var _ gpt.Source = (*Product)(nil)

// Open parses the .dim header at path. Band rasters are not read until
// Band is called.
func Open(fsys fsutil.FileSystem, path string) (*Product, error) {
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return nil, fmt.Errorf("product %s: not a %s header", path, Extension)
	}
	raw, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", path, err)
	}

	var doc dimapDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("product %s: parse header: %w", path, err)
	}
	if doc.Dimensions.Cols <= 0 || doc.Dimensions.Rows <= 0 {
		return nil, fmt.Errorf("product %s: raster dimensions %dx%d are not positive",
			path, doc.Dimensions.Cols, doc.Dimensions.Rows)
	}

	byIndex := make(map[int]string, len(doc.DataFiles))
	for _, df := range doc.DataFiles {
		byIndex[df.BandIndex] = df.Path.Href
	}

	dir := filepath.Dir(path)
	p := &Product{
		fsys:    fsys,
		name:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		path:    path,
		height:  doc.Dimensions.Rows,
		width:   doc.Dimensions.Cols,
		headers: make(map[string]string, len(doc.Bands)),
	}
	for _, b := range doc.Bands {
		if b.Name == "" {
			return nil, fmt.Errorf("product %s: band %d has no name", path, b.Index)
		}
		if _, dup := p.headers[b.Name]; dup {
			return nil, fmt.Errorf("product %s: duplicate band %q", path, b.Name)
		}
		href, ok := byIndex[b.Index]
		if !ok {
			return nil, fmt.Errorf("product %s: band %q has no data file", path, b.Name)
		}
		p.bands = append(p.bands, b.Name)
		p.headers[b.Name] = filepath.Join(dir, filepath.FromSlash(href))
	}
	if len(p.bands) == 0 {
		return nil, fmt.Errorf("product %s: no bands", path)
	}
	return p, nil
}

// Name returns the product name, the header filename without extension.
func (p *Product) Name() string { return p.name }

// Path returns the .dim header path the product was opened from.
func (p *Product) Path() string { return p.path }

// Size returns the scene raster dimensions as (height, width).
func (p *Product) Size() (int, int) { return p.height, p.width }

// Bands returns the band names in header order.
func (p *Product) Bands() []string {
	out := make([]string, len(p.bands))
	copy(out, p.bands)
	return out
}

// Band reads one band's raster. Resolution is by exact name.
func (p *Product) Band(name string) (*Raster, error) {
	hdrPath, ok := p.headers[name]
	if !ok {
		return nil, fmt.Errorf("product %s: unknown band %q (bands are %s)",
			p.name, name, strings.Join(p.bands, ", "))
	}

	hdrRaw, err := p.fsys.ReadFile(hdrPath)
	if err != nil {
		return nil, fmt.Errorf("band %s: %w", name, err)
	}
	hdr, err := parseENVIHeader(strings.NewReader(string(hdrRaw)))
	if err != nil {
		return nil, fmt.Errorf("band %s: %s: %w", name, hdrPath, err)
	}
	if hdr.Samples != p.width || hdr.Lines != p.height {
		return nil, fmt.Errorf("band %s: raster is %dx%d, product is %dx%d",
			name, hdr.Samples, hdr.Lines, p.width, p.height)
	}

	imgPath := strings.TrimSuffix(hdrPath, filepath.Ext(hdrPath)) + ".img"
	imgRaw, err := p.fsys.ReadFile(imgPath)
	if err != nil {
		return nil, fmt.Errorf("band %s: %w", name, err)
	}
	pix, err := decodeSamples(imgRaw, hdr)
	if err != nil {
		return nil, fmt.Errorf("band %s: %s: %w", name, imgPath, err)
	}
	return &Raster{Width: p.width, Height: p.height, Pix: pix}, nil
}

// String summarizes the product for logs and the info command.
func (p *Product) String() string {
	return fmt.Sprintf("%s, %dx%d, bands: %s", p.name, p.width, p.height, strings.Join(p.bands, ", "))
}
