package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/snapgraph/internal/gpt"
)

// Recorder persists run lifecycle events. Sequential calls RunStarted once
// per Process call and then exactly one of RunCompleted or RunFailed.
type Recorder interface {
	RunStarted(rec RunRecord) error
	RunCompleted(runID string, exitCode int, duration time.Duration) error
	RunFailed(runID, reason string) error
}

// RunRecord captures a run at the moment the engine is about to start.
type RunRecord struct {
	RunID       string
	StartedAt   time.Time
	Operators   []string
	SourcePaths []string
	OutputPath  string
	Format      gpt.Format
	GraphXML    string
	LogPath     string
}

// ProcessOptions parameterize a single Process call.
type ProcessOptions struct {
	// OutputPath is where the engine writes the final product. Required.
	OutputPath string

	// Format selects the output product format. Empty means
	// gpt.DefaultFormat.
	Format gpt.Format

	// LogPath switches the run into captured mode: engine output is written
	// to this file and invocation failures are folded into it instead of
	// escalating. Empty streams the engine output and lets failures
	// propagate.
	LogPath string
}

// Normalize applies defaults and validates the options.
func (o ProcessOptions) Normalize() (ProcessOptions, error) {
	if strings.TrimSpace(o.OutputPath) == "" {
		return o, errors.New("process options: output path must not be empty")
	}
	if o.Format == "" {
		o.Format = gpt.DefaultFormat
	}
	return o, nil
}

// Sequential chains operators into a linear pipeline: every input product is
// read, the operators run in configured order each consuming its
// predecessor, and the final product is written out. The chain may be empty,
// in which case processing reduces to a read-write conversion.
type Sequential struct {
	tool     *Tool
	ops      []gpt.Operator
	recorder Recorder
}

// NewSequential builds a pipeline over the given tool. The operator order is
// the execution order. Operators must be constructed, not zero values.
func NewSequential(tool *Tool, ops ...gpt.Operator) (*Sequential, error) {
	if tool == nil {
		return nil, errors.New("sequential: tool must not be nil")
	}
	chain := make([]gpt.Operator, len(ops))
	for i, op := range ops {
		if op.Name() == "" {
			return nil, fmt.Errorf("sequential: operator %d of %d is not constructed", i+1, len(ops))
		}
		chain[i] = op
	}
	return &Sequential{tool: tool, ops: chain}, nil
}

// SetRecorder attaches a run recorder. A nil recorder disables recording.
func (s *Sequential) SetRecorder(r Recorder) { s.recorder = r }

// Operators returns the chain's operator names in execution order.
func (s *Sequential) Operators() []string {
	names := make([]string, len(s.ops))
	for i, op := range s.ops {
		names[i] = op.Name()
	}
	return names
}

// BuildDocument assembles the graph Process would execute, without running
// it. Useful for inspection and dry runs.
func (s *Sequential) BuildDocument(input Input, opts ProcessOptions) (*gpt.Document, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	srcs, err := resolveSources(input)
	if err != nil {
		return nil, err
	}
	return s.buildDocument(srcs, opts)
}

func (s *Sequential) buildDocument(srcs []gpt.Source, opts ProcessOptions) (*gpt.Document, error) {
	doc := gpt.NewDocument()

	// One read node per input. The first keeps the bare operator name; the
	// rest are numbered from two in creation order.
	readIDs := make([]string, len(srcs))
	for i, src := range srcs {
		id := "Read"
		if i > 0 {
			id = fmt.Sprintf("Read(%d)", i+1)
		}
		op, err := gpt.NewRead(src)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src.Name(), err)
		}
		if err := doc.AddNode(id, op); err != nil {
			return nil, err
		}
		readIDs[i] = id
	}

	// The first chain operator consumes every read; after that each
	// operator consumes only its predecessor.
	preds := readIDs
	for _, op := range s.ops {
		if err := doc.AddNode(op.Name(), op, preds...); err != nil {
			return nil, err
		}
		preds = []string{op.Name()}
	}

	write, err := gpt.NewWrite(opts.OutputPath, opts.Format)
	if err != nil {
		return nil, err
	}
	if err := doc.AddNode(write.Name(), write, preds...); err != nil {
		return nil, err
	}
	return doc, nil
}

// Process reads the input products, runs the chain and writes the result to
// opts.OutputPath. The engine invocation follows the tool's captured or
// streamed semantics depending on opts.LogPath; see Tool.Run. A non-nil
// Result with a nonzero ExitCode means a captured run failed and the
// details are in the log artifact.
func (s *Sequential) Process(ctx context.Context, input Input, opts ProcessOptions) (*Result, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	srcs, err := resolveSources(input)
	if err != nil {
		return nil, err
	}
	doc, err := s.buildDocument(srcs, opts)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	if s.recorder != nil {
		xml, err := doc.Bytes()
		if err != nil {
			return nil, fmt.Errorf("serialize graph for record: %w", err)
		}
		paths := make([]string, len(srcs))
		for i, src := range srcs {
			paths[i] = src.Path()
		}
		rec := RunRecord{
			RunID:       runID,
			StartedAt:   s.tool.clock.Now(),
			Operators:   s.Operators(),
			SourcePaths: paths,
			OutputPath:  opts.OutputPath,
			Format:      opts.Format,
			GraphXML:    string(xml),
			LogPath:     opts.LogPath,
		}
		if err := s.recorder.RunStarted(rec); err != nil {
			return nil, fmt.Errorf("record run start: %w", err)
		}
	}

	res, err := s.tool.Run(ctx, doc, opts.LogPath)
	if err != nil {
		s.failRun(runID, err.Error())
		return nil, err
	}
	res.RunID = runID

	if res.Failed() {
		s.failRun(runID, strings.TrimSpace(res.Stderr))
		return res, nil
	}
	if s.recorder != nil {
		if err := s.recorder.RunCompleted(runID, res.ExitCode, res.Duration); err != nil {
			s.tool.logger.WithError(err).WithField("run_id", runID).Warn("could not record run completion")
		}
	}
	return res, nil
}

// failRun records a failed run. Recording problems are logged rather than
// returned so they cannot mask the failure itself.
func (s *Sequential) failRun(runID, reason string) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RunFailed(runID, reason); err != nil {
		s.tool.logger.WithError(err).WithField("run_id", runID).Warn("could not record run failure")
	}
}
