package runs

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, MigrateUp(db))
	return db
}

func startedAt(minute int) time.Time {
	return time.Date(2026, 8, 25, 10, minute, 0, 0, time.UTC)
}

func TestMigrate_UpDownVersion(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer db.Close()

	version, dirty, err := MigrateVersion(db)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version, "fresh database has no applied migrations")
	assert.False(t, dirty)

	require.NoError(t, MigrateUp(db))
	version, dirty, err = MigrateVersion(db)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// Up again is a no-op.
	require.NoError(t, MigrateUp(db))

	require.NoError(t, MigrateDown(db))
	version, _, err = MigrateVersion(db)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	require.NoError(t, MigrateTo(db, 2))
	version, _, err = MigrateVersion(db)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}

func TestStore_InsertAppliesDefaults(t *testing.T) {
	store := NewStore(testDB(t))

	run := &Run{
		OutputPath: "/out/scene.dim",
		Format:     "BEAM-DIMAP",
	}
	require.NoError(t, store.Insert(run))
	assert.NotEmpty(t, run.RunID, "missing id is generated")
	assert.False(t, run.StartedAt.IsZero())

	got, err := store.Get(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)
	assert.Empty(t, got.Operators)
	assert.Empty(t, got.SourcePaths)
	assert.Nil(t, got.FinishedAt)
	assert.Nil(t, got.ExitCode)
	assert.Nil(t, got.DurationMS)
	assert.Empty(t, got.LogPath)
	assert.Empty(t, got.Error)
}

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(testDB(t))

	run := &Run{
		RunID:       "run-1",
		StartedAt:   startedAt(0),
		Operators:   []string{"Apply-Orbit-File", "Calibration"},
		SourcePaths: []string{"/data/a.dim", "/data/b.dim"},
		OutputPath:  "/out/cal.dim",
		Format:      "GeoTIFF",
		GraphXML:    `<graph id="Graph"></graph>`,
		LogPath:     "/logs/run.log",
	}
	require.NoError(t, store.Insert(run))

	got, err := store.Get("run-1")
	require.NoError(t, err)
	assert.Equal(t, run.StartedAt, got.StartedAt)
	assert.Equal(t, run.Operators, got.Operators)
	assert.Equal(t, run.SourcePaths, got.SourcePaths)
	assert.Equal(t, run.OutputPath, got.OutputPath)
	assert.Equal(t, run.Format, got.Format)
	assert.Equal(t, run.GraphXML, got.GraphXML)
	assert.Equal(t, run.LogPath, got.LogPath)
}

func TestStore_CompleteLifecycle(t *testing.T) {
	store := NewStore(testDB(t))

	run := &Run{RunID: "run-1", StartedAt: startedAt(0), OutputPath: "/out/x.dim", Format: "BEAM-DIMAP"}
	require.NoError(t, store.Insert(run))
	require.NoError(t, store.Complete("run-1", 0, 1500*time.Millisecond))

	got, err := store.Get("run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	require.NotNil(t, got.ExitCode)
	assert.Equal(t, 0, *got.ExitCode)
	require.NotNil(t, got.DurationMS)
	assert.Equal(t, int64(1500), *got.DurationMS)
	assert.NotNil(t, got.FinishedAt)
	assert.Empty(t, got.Error)
}

func TestStore_FailLifecycle(t *testing.T) {
	store := NewStore(testDB(t))

	run := &Run{RunID: "run-1", StartedAt: startedAt(0), OutputPath: "/out/x.dim", Format: "BEAM-DIMAP"}
	require.NoError(t, store.Insert(run))
	require.NoError(t, store.Fail("run-1", "Error: no orbit file"))

	got, err := store.Get("run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "Error: no orbit file", got.Error)
	assert.Nil(t, got.ExitCode)
	assert.NotNil(t, got.FinishedAt)
}

func TestStore_UnknownRun(t *testing.T) {
	store := NewStore(testDB(t))

	_, err := store.Get("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = store.Complete("nope", 0, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = store.Fail("nope", "reason")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := NewStore(testDB(t))

	for i, id := range []string{"run-a", "run-b", "run-c"} {
		require.NoError(t, store.Insert(&Run{
			RunID:      id,
			StartedAt:  startedAt(i),
			OutputPath: "/out/x.dim",
			Format:     "BEAM-DIMAP",
		}))
	}

	runs, err := store.List(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].RunID)
	assert.Equal(t, "run-b", runs[1].RunID)

	all, err := store.List(0)
	require.NoError(t, err)
	assert.Len(t, all, 3, "non-positive limit falls back to the default")
}
