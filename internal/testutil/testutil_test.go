package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/snapgraph/internal/fsutil"
)

func TestWriteDIMAP_Layout(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	err := WriteDIMAP(fs, "/products/scene.dim", 2, 2, Band{Name: "Sigma0_VV", Pix: []float64{1, 2, 3, 4}})
	require.NoError(t, err)

	for _, p := range []string{
		"/products/scene.dim",
		filepath.Join("/products/scene.data", "Sigma0_VV.hdr"),
		filepath.Join("/products/scene.data", "Sigma0_VV.img"),
	} {
		assert.True(t, fs.Exists(p), p)
	}

	hdr, err := fs.ReadFile("/products/scene.dim")
	require.NoError(t, err)
	assert.Contains(t, string(hdr), "<NCOLS>2</NCOLS>")
	assert.Contains(t, string(hdr), `href="scene.data/Sigma0_VV.hdr"`)

	img, err := fs.ReadFile(filepath.Join("/products/scene.data", "Sigma0_VV.img"))
	require.NoError(t, err)
	assert.Len(t, img, 16, "four float32 samples")
}

func TestWriteDIMAP_Validation(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()

	err := WriteDIMAP(fs, "/p.dim", 2, 2)
	require.Error(t, err)

	err = WriteDIMAP(fs, "/p.dim", 2, 2, Band{Name: "short", Pix: []float64{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 samples, want 4")

	err = WriteDIMAP(fs, "/p.dim", 0, 2, Band{Name: "b", Pix: nil})
	require.Error(t, err)
}
