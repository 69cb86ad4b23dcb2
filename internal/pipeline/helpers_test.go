package pipeline

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/snapgraph/internal/gpt"
	"github.com/banshee-data/snapgraph/internal/timeutil"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type stubSource struct {
	name   string
	path   string
	height int
	width  int
}

func (s stubSource) Name() string { return s.name }
func (s stubSource) Path() string { return s.path }

func (s stubSource) Size() (int, int) { return s.height, s.width }

func someSource(name string) stubSource {
	return stubSource{name: name, path: "/data/" + name + ".dim", height: 843, width: 1217}
}

func mustOperator(t *testing.T, name string, params *gpt.Params) gpt.Operator {
	t.Helper()
	op, err := gpt.NewOperator(name, params)
	require.NoError(t, err)
	return op
}

func fixedClock(t *testing.T) *timeutil.MockClock {
	t.Helper()
	c := timeutil.NewMockClock(time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC))
	return c
}

// recorderLog captures recorder calls in order for lifecycle assertions.
type recorderLog struct {
	started   []RunRecord
	completed []string
	failed    []string
	reasons   []string

	startErr    error
	completeErr error
	failErr     error
}

func (r *recorderLog) RunStarted(rec RunRecord) error {
	r.started = append(r.started, rec)
	return r.startErr
}

func (r *recorderLog) RunCompleted(runID string, _ int, _ time.Duration) error {
	r.completed = append(r.completed, runID)
	return r.completeErr
}

func (r *recorderLog) RunFailed(runID, reason string) error {
	r.failed = append(r.failed, runID)
	r.reasons = append(r.reasons, reason)
	return r.failErr
}
