package runs

import (
	"time"

	"github.com/banshee-data/snapgraph/internal/pipeline"
)

var _ pipeline.Recorder = (*Store)(nil)

// RunStarted implements pipeline.Recorder by inserting a running row.
func (s *Store) RunStarted(rec pipeline.RunRecord) error {
	return s.Insert(&Run{
		RunID:       rec.RunID,
		StartedAt:   rec.StartedAt,
		Operators:   rec.Operators,
		SourcePaths: rec.SourcePaths,
		OutputPath:  rec.OutputPath,
		Format:      string(rec.Format),
		GraphXML:    rec.GraphXML,
		Status:      StatusRunning,
		LogPath:     rec.LogPath,
	})
}

// RunCompleted implements pipeline.Recorder.
func (s *Store) RunCompleted(runID string, exitCode int, duration time.Duration) error {
	return s.Complete(runID, exitCode, duration)
}

// RunFailed implements pipeline.Recorder.
func (s *Store) RunFailed(runID, reason string) error {
	return s.Fail(runID, reason)
}
