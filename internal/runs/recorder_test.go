package runs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/snapgraph/internal/gpt/radar"
	"github.com/banshee-data/snapgraph/internal/pipeline"
)

type sceneStub struct{ name, path string }

func (s sceneStub) Name() string     { return s.name }
func (s sceneStub) Path() string     { return s.path }
func (s sceneStub) Size() (int, int) { return 16788, 25376 }

func recorderSequential(t *testing.T, store *Store, runner *pipeline.MockRunner) *pipeline.Sequential {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	tool := pipeline.NewTool(pipeline.ToolOptions{
		WorkDir: t.TempDir(),
		Runner:  runner,
		Logger:  logger,
	})
	cal, err := radar.Calibration(radar.CalibrationOptions{})
	require.NoError(t, err)
	seq, err := pipeline.NewSequential(tool, cal)
	require.NoError(t, err)
	seq.SetRecorder(store)
	return seq
}

func TestStore_RecordsPipelineRun(t *testing.T) {
	store := NewStore(testDB(t))
	runner := &pipeline.MockRunner{Stdout: "Executing processing graph\n....done.\n"}
	seq := recorderSequential(t, store, runner)

	logPath := filepath.Join(t.TempDir(), "run.log")
	res, err := seq.Process(context.Background(),
		pipeline.One(sceneStub{name: "scene", path: "/data/scene.dim"}),
		pipeline.ProcessOptions{OutputPath: "/out/cal.dim", LogPath: logPath})
	require.NoError(t, err)
	require.False(t, res.Failed())

	got, err := store.Get(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, []string{"Calibration"}, got.Operators)
	assert.Equal(t, []string{"/data/scene.dim"}, got.SourcePaths)
	assert.Equal(t, "/out/cal.dim", got.OutputPath)
	assert.Equal(t, "BEAM-DIMAP", got.Format)
	assert.Contains(t, got.GraphXML, `<node id="Calibration">`)
	assert.Equal(t, logPath, got.LogPath)
	require.NotNil(t, got.ExitCode)
	assert.Equal(t, 0, *got.ExitCode)
	require.NotNil(t, got.DurationMS)

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "....done.")
}

func TestStore_RecordsFailedRun(t *testing.T) {
	store := NewStore(testDB(t))
	runner := &pipeline.MockRunner{
		Stderr: "Error: DEM not available\n",
		Err:    &pipeline.ExitError{Code: 1},
	}
	seq := recorderSequential(t, store, runner)

	res, err := seq.Process(context.Background(),
		pipeline.One(sceneStub{name: "scene", path: "/data/scene.dim"}),
		pipeline.ProcessOptions{
			OutputPath: "/out/cal.dim",
			LogPath:    filepath.Join(t.TempDir(), "run.log"),
		})
	require.NoError(t, err, "captured runs report failure through the log, not an error")
	assert.True(t, res.Failed())

	got, err := store.Get(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "Error: DEM not available", got.Error)
}
