// Package radar provides descriptors for the engine's Sentinel-1 SAR
// operator family. Each constructor takes an options struct, applies the
// engine's documented defaults, and returns an immutable step descriptor.
package radar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/banshee-data/snapgraph/internal/gpt"
)

// DefaultOrbitType is the precise-orbit source used when none is requested.
const DefaultOrbitType = "Sentinel Precise (Auto Download)"

// OrbitOptions configure Apply-Orbit-File.
type OrbitOptions struct {
	OrbitType      string
	PolyDegree     int
	ContinueOnFail bool
}

// Normalize applies defaults and validates the options.
func (o OrbitOptions) Normalize() (OrbitOptions, error) {
	if strings.TrimSpace(o.OrbitType) == "" {
		o.OrbitType = DefaultOrbitType
	}
	if o.PolyDegree == 0 {
		o.PolyDegree = 3
	}
	if o.PolyDegree < 1 {
		return o, fmt.Errorf("invalid polynomial degree %d: must be at least 1", o.PolyDegree)
	}
	return o, nil
}

// ApplyOrbitFile updates product metadata with a precise orbit state vector.
func ApplyOrbitFile(opts OrbitOptions) (gpt.Operator, error) {
	o, err := opts.Normalize()
	if err != nil {
		return gpt.Operator{}, err
	}
	params := gpt.NewParams().
		Set("orbitType", o.OrbitType).
		Set("polyDegree", strconv.Itoa(o.PolyDegree)).
		Set("continueOnFail", strconv.FormatBool(o.ContinueOnFail))
	return gpt.NewOperator("Apply-Orbit-File", params)
}

// ThermalNoiseOptions configure ThermalNoiseRemoval.
type ThermalNoiseOptions struct {
	Polarisations []string
	ReIntroduce   bool
}

// ThermalNoiseRemoval removes (or re-introduces) the per-swath thermal noise
// contribution recorded in the product annotations.
func ThermalNoiseRemoval(opts ThermalNoiseOptions) (gpt.Operator, error) {
	params := gpt.NewParams()
	setPolarisations(params, opts.Polarisations)
	params.
		Set("removeThermalNoise", strconv.FormatBool(!opts.ReIntroduce)).
		Set("reIntroduceThermalNoise", strconv.FormatBool(opts.ReIntroduce))
	return gpt.NewOperator("ThermalNoiseRemoval", params)
}

// CalibrationOptions configure Calibration. Sigma naught output defaults to
// on; the pointer distinguishes "left default" from "explicitly off".
type CalibrationOptions struct {
	Polarisations []string
	SourceBands   []string
	OutputSigma   *bool
	OutputGamma   bool
	OutputBeta    bool
	OutputInDb    bool
}

// Calibration converts digital numbers to radiometrically calibrated
// backscatter.
func Calibration(opts CalibrationOptions) (gpt.Operator, error) {
	params := gpt.NewParams()
	setBands(params, opts.SourceBands)
	setPolarisations(params, opts.Polarisations)
	params.
		Set("outputSigmaBand", strconv.FormatBool(boolOrDefault(opts.OutputSigma, true))).
		Set("outputGammaBand", strconv.FormatBool(opts.OutputGamma)).
		Set("outputBetaBand", strconv.FormatBool(opts.OutputBeta)).
		Set("outputImageScaleInDb", strconv.FormatBool(opts.OutputInDb))
	return gpt.NewOperator("Calibration", params)
}

// Speckle filters the engine accepts.
var speckleFilters = []string{
	"Boxcar", "Median", "Frost", "Gamma Map", "Lee", "Refined Lee", "Lee Sigma", "IDAN",
}

// SpeckleOptions configure Speckle-Filter.
type SpeckleOptions struct {
	SourceBands   []string
	Filter        string
	FilterSizeX   int
	FilterSizeY   int
	DampingFactor int
}

// Normalize applies defaults and validates the filter name against the
// engine's closed set.
func (o SpeckleOptions) Normalize() (SpeckleOptions, error) {
	if strings.TrimSpace(o.Filter) == "" {
		o.Filter = "Refined Lee"
	}
	found := false
	for _, f := range speckleFilters {
		if strings.EqualFold(o.Filter, f) {
			o.Filter = f
			found = true
			break
		}
	}
	if !found {
		return o, fmt.Errorf("unknown speckle filter %q", o.Filter)
	}
	if o.FilterSizeX == 0 {
		o.FilterSizeX = 3
	}
	if o.FilterSizeY == 0 {
		o.FilterSizeY = 3
	}
	if o.FilterSizeX < 3 || o.FilterSizeY < 3 {
		return o, fmt.Errorf("invalid filter window %dx%d: sides must be at least 3", o.FilterSizeX, o.FilterSizeY)
	}
	if o.DampingFactor == 0 {
		o.DampingFactor = 2
	}
	return o, nil
}

// SpeckleFilter reduces multiplicative speckle noise.
func SpeckleFilter(opts SpeckleOptions) (gpt.Operator, error) {
	o, err := opts.Normalize()
	if err != nil {
		return gpt.Operator{}, err
	}
	params := gpt.NewParams()
	setBands(params, o.SourceBands)
	params.
		Set("filter", o.Filter).
		Set("filterSizeX", strconv.Itoa(o.FilterSizeX)).
		Set("filterSizeY", strconv.Itoa(o.FilterSizeY)).
		Set("dampingFactor", strconv.Itoa(o.DampingFactor))
	return gpt.NewOperator("Speckle-Filter", params)
}

// MultilookOptions configure Multilook.
type MultilookOptions struct {
	SourceBands     []string
	RangeLooks      int
	AzimuthLooks    int
	OutputIntensity bool
}

// Normalize applies defaults and validates look counts.
func (o MultilookOptions) Normalize() (MultilookOptions, error) {
	if o.RangeLooks == 0 {
		o.RangeLooks = 1
	}
	if o.AzimuthLooks == 0 {
		o.AzimuthLooks = 1
	}
	if o.RangeLooks < 1 || o.AzimuthLooks < 1 {
		return o, fmt.Errorf("invalid look counts %dx%d: must be at least 1", o.RangeLooks, o.AzimuthLooks)
	}
	return o, nil
}

// Multilook averages looks to trade resolution for radiometric stability.
func Multilook(opts MultilookOptions) (gpt.Operator, error) {
	o, err := opts.Normalize()
	if err != nil {
		return gpt.Operator{}, err
	}
	params := gpt.NewParams()
	setBands(params, o.SourceBands)
	params.
		Set("nRgLooks", strconv.Itoa(o.RangeLooks)).
		Set("nAzLooks", strconv.Itoa(o.AzimuthLooks)).
		Set("outputIntensity", strconv.FormatBool(o.OutputIntensity)).
		Set("grSquarePixel", "true")
	return gpt.NewOperator("Multilook", params)
}

// TerrainOptions configure Terrain-Correction.
type TerrainOptions struct {
	SourceBands        []string
	DemName            string
	PixelSpacingMeters float64
	MapProjection      string
	NodataValueAtSea   *bool
	SaveDem            bool
}

// Normalize applies defaults and validates the options.
func (o TerrainOptions) Normalize() (TerrainOptions, error) {
	if strings.TrimSpace(o.DemName) == "" {
		o.DemName = "SRTM 3Sec"
	}
	if o.PixelSpacingMeters < 0 {
		return o, fmt.Errorf("invalid pixel spacing %g: must not be negative", o.PixelSpacingMeters)
	}
	if strings.TrimSpace(o.MapProjection) == "" {
		o.MapProjection = "WGS84(DD)"
	}
	return o, nil
}

// TerrainCorrection orthorectifies the scene against a digital elevation
// model. Zero pixel spacing leaves the spacing on the engine default.
func TerrainCorrection(opts TerrainOptions) (gpt.Operator, error) {
	o, err := opts.Normalize()
	if err != nil {
		return gpt.Operator{}, err
	}
	params := gpt.NewParams()
	setBands(params, o.SourceBands)
	params.Set("demName", o.DemName)
	if o.PixelSpacingMeters > 0 {
		params.Set("pixelSpacingInMeter", strconv.FormatFloat(o.PixelSpacingMeters, 'f', -1, 64))
	} else {
		params.SetUnset("pixelSpacingInMeter")
	}
	params.
		Set("mapProjection", o.MapProjection).
		Set("nodataValueAtSea", strconv.FormatBool(boolOrDefault(o.NodataValueAtSea, true))).
		Set("saveDEM", strconv.FormatBool(o.SaveDem))
	return gpt.NewOperator("Terrain-Correction", params)
}

// TOPSARDeburst merges the bursts of an IW or EW SLC product.
func TOPSARDeburst(polarisations ...string) (gpt.Operator, error) {
	params := gpt.NewParams()
	setPolarisations(params, polarisations)
	return gpt.NewOperator("TOPSAR-Deburst", params)
}

// SubsetOptions configure Subset. Exactly one of Region (pixel window
// "x,y,width,height") or GeoRegion (WKT polygon) selects the area; both
// empty keeps the full scene.
type SubsetOptions struct {
	SourceBands  []string
	Region       string
	GeoRegion    string
	CopyMetadata bool
}

// Subset extracts a spatial or band subset of the scene.
func Subset(opts SubsetOptions) (gpt.Operator, error) {
	if opts.Region != "" && opts.GeoRegion != "" {
		return gpt.Operator{}, fmt.Errorf("subset: region and geoRegion are mutually exclusive")
	}
	params := gpt.NewParams()
	setBands(params, opts.SourceBands)
	if opts.Region != "" {
		params.Set("region", opts.Region)
	} else {
		params.SetUnset("region")
	}
	if opts.GeoRegion != "" {
		params.Set("geoRegion", opts.GeoRegion)
	} else {
		params.SetUnset("geoRegion")
	}
	params.Set("copyMetadata", strconv.FormatBool(opts.CopyMetadata))
	return gpt.NewOperator("Subset", params)
}

func setPolarisations(params *gpt.Params, pols []string) {
	if len(pols) == 0 {
		params.SetUnset("selectedPolarisations")
		return
	}
	params.Set("selectedPolarisations", strings.Join(pols, ","))
}

func setBands(params *gpt.Params, bands []string) {
	if len(bands) == 0 {
		params.SetUnset("sourceBands")
		return
	}
	params.Set("sourceBands", strings.Join(bands, ","))
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
