package pipeline

import (
	"io"

	"github.com/sirupsen/logrus"
)

// globalLogger receives progress output from every Tool that is not given
// its own logger.
var globalLogger logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the package-level logger. Passing nil discards all
// progress output.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		globalLogger = quiet
		return
	}
	globalLogger = l
}
