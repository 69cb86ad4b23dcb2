package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/banshee-data/snapgraph/internal/gpt"
	"github.com/banshee-data/snapgraph/internal/timeutil"
)

// DefaultExecutable is the engine launcher resolved from PATH when no
// explicit path is configured.
const DefaultExecutable = "gpt"

// ToolOptions configure engine invocation. The zero value runs the real
// engine from PATH in the process working directory.
type ToolOptions struct {
	// Executable is the engine binary, an absolute path or a name resolved
	// from PATH. Empty means DefaultExecutable.
	Executable string

	// WorkDir receives transient graph files. Empty means the process
	// working directory.
	WorkDir string

	// Runner spawns the engine process. Defaults to ExecRunner.
	Runner CommandRunner

	// Clock stamps graph file names and measures run durations.
	Clock timeutil.Clock

	// Logger receives progress output. Defaults to the package logger.
	Logger logrus.FieldLogger

	// Stdout and Stderr are the streamed-mode destinations for engine
	// output. They default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

func (o ToolOptions) normalize() ToolOptions {
	if o.Executable == "" {
		o.Executable = DefaultExecutable
	}
	if o.WorkDir == "" {
		o.WorkDir = "."
	}
	if o.Runner == nil {
		o.Runner = ExecRunner{}
	}
	if o.Clock == nil {
		o.Clock = timeutil.RealClock{}
	}
	if o.Logger == nil {
		o.Logger = globalLogger
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	return o
}

// Tool invokes the engine on serialized graph documents. Each run writes
// the document to a uniquely named transient file, hands the file path to
// the engine as its only argument, and removes the file again on every
// exit path.
type Tool struct {
	executable string
	workDir    string
	runner     CommandRunner
	clock      timeutil.Clock
	logger     logrus.FieldLogger
	stdout     io.Writer
	stderr     io.Writer
}

// NewTool builds a Tool from options, applying defaults for unset fields.
func NewTool(opts ToolOptions) *Tool {
	o := opts.normalize()
	return &Tool{
		executable: o.Executable,
		workDir:    o.WorkDir,
		runner:     o.Runner,
		clock:      o.Clock,
		logger:     o.Logger,
		stdout:     o.Stdout,
		stderr:     o.Stderr,
	}
}

// Executable returns the configured engine binary.
func (t *Tool) Executable() string { return t.executable }

// Result describes one engine invocation. GraphFile names the transient
// document the engine consumed; the file itself is removed before Run
// returns. Stdout, Stderr and LogFile are populated in captured mode only.
type Result struct {
	RunID     string
	GraphFile string
	LogFile   string
	ExitCode  int
	Stdout    string
	Stderr    string
	Duration  time.Duration
}

// Failed reports whether the engine invocation failed. Only meaningful in
// captured mode; streamed-mode failures surface as errors instead.
func (r *Result) Failed() bool { return r.ExitCode != 0 }

// Run serializes the document and invokes the engine on it.
//
// With an empty logPath the engine streams to the tool's stdout and stderr,
// nothing is captured, and invocation failures propagate as errors. With a
// logPath the engine's output is captured and written to that file as an
// "Output:" section followed by an "ERROR:" section; invocation failures of
// any kind are folded into the log (the output section collapses to
// "error!") and never escalate to the caller.
func (t *Tool) Run(ctx context.Context, doc *gpt.Document, logPath string) (*Result, error) {
	graphPath, err := t.writeGraph(doc)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.Remove(graphPath); rmErr != nil {
			t.logger.WithError(rmErr).Warn("could not remove graph file")
			return
		}
		t.logger.WithField("graph", graphPath).Debug("graph file removed")
	}()
	t.logger.WithField("graph", graphPath).Debug("graph serialized")

	if logPath == "" {
		return t.runStreamed(ctx, graphPath)
	}
	return t.runCaptured(ctx, graphPath, logPath)
}

func (t *Tool) runStreamed(ctx context.Context, graphPath string) (*Result, error) {
	t.logger.WithFields(logrus.Fields{
		"executable": t.executable,
		"graph":      graphPath,
		"mode":       "streamed",
	}).Info("engine starting")

	start := t.clock.Now()
	err := t.runner.Run(ctx, t.executable, []string{graphPath}, t.stdout, t.stderr)
	duration := t.clock.Since(start)
	if err != nil {
		return nil, fmt.Errorf("engine %s on %s: %w", t.executable, graphPath, err)
	}

	t.logger.WithField("duration", duration).Info("run streamed")
	return &Result{GraphFile: graphPath, Duration: duration}, nil
}

func (t *Tool) runCaptured(ctx context.Context, graphPath, logPath string) (*Result, error) {
	t.logger.WithFields(logrus.Fields{
		"executable": t.executable,
		"graph":      graphPath,
		"mode":       "captured",
	}).Info("engine starting")

	var out, errOut bytes.Buffer
	start := t.clock.Now()
	runErr := t.runner.Run(ctx, t.executable, []string{graphPath}, &out, &errOut)
	duration := t.clock.Since(start)

	stdout := out.String()
	stderr := errOut.String()
	exitCode := 0
	if runErr != nil {
		// The run is reported through the log artifact, not the error
		// return: the output section collapses to the failure marker and
		// the diagnostic lands in the error section.
		stdout = "error!\n"
		var exitErr *ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.Code
		} else {
			exitCode = -1
			stderr = runErr.Error()
		}
	}

	content := "Output:\n" + stdout + "ERROR:\n" + stderr
	if err := os.WriteFile(logPath, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("write log %s: %w", logPath, err)
	}

	t.logger.WithFields(logrus.Fields{
		"exit":     exitCode,
		"log":      logPath,
		"duration": duration,
	}).Info("run logged")

	return &Result{
		GraphFile: graphPath,
		LogFile:   logPath,
		ExitCode:  exitCode,
		Stdout:    stdout,
		Stderr:    stderr,
		Duration:  duration,
	}, nil
}

// Apply runs a single descriptor as a minimal one-node graph in streamed
// mode, reporting progress around the invocation. Diagnostic use only; real
// processing goes through Sequential so products are read and written
// explicitly.
func (t *Tool) Apply(ctx context.Context, op gpt.Operator, src gpt.Source) (*Result, error) {
	if src == nil {
		return nil, errors.New("apply: source must not be nil")
	}
	doc := gpt.NewDocument()
	if err := doc.AddNode(op.Name(), op); err != nil {
		return nil, fmt.Errorf("apply: %w", err)
	}

	fields := logrus.Fields{"operator": op.Name(), "product": src.Name()}
	t.logger.WithFields(fields).Info("operator starting")
	res, err := t.Run(ctx, doc, "")
	if err != nil {
		return nil, err
	}
	t.logger.WithFields(fields).Info("operator finished")
	return res, nil
}

// writeGraph serializes the document to a fresh uniquely named file in the
// work directory. The timestamp prefix keeps artifacts recognizable and
// sortable; uniqueness comes from the temp-file creation itself.
func (t *Tool) writeGraph(doc *gpt.Document) (string, error) {
	stamp := t.clock.Now().Format("2006-01-02-15-04-05.000000")
	f, err := os.CreateTemp(t.workDir, "graph_"+stamp+"-*.xml")
	if err != nil {
		return "", fmt.Errorf("create graph file: %w", err)
	}
	if err := doc.Encode(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("serialize graph to %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close graph file %s: %w", f.Name(), err)
	}
	return f.Name(), nil
}
