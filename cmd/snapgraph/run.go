package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/banshee-data/snapgraph/internal/config"
	"github.com/banshee-data/snapgraph/internal/fsutil"
	"github.com/banshee-data/snapgraph/internal/gpt"
	"github.com/banshee-data/snapgraph/internal/pipeline"
	"github.com/banshee-data/snapgraph/internal/product"
	"github.com/banshee-data/snapgraph/internal/runs"
)

// stringList collects a repeatable flag's values in order.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func handleRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	pipelinePath := fs.String("pipeline", "", "Pipeline description file (required)")
	var inputs stringList
	fs.Var(&inputs, "in", "Input product .dim header (repeat for fan-in)")
	out := fs.String("out", "", "Output product path (required)")
	format := fs.String("format", "", "Output format (default BEAM-DIMAP)")
	logPath := fs.String("log", "", "Capture engine output to this file instead of streaming")
	gptPath := fs.String("gpt", "", "Engine executable (overrides the pipeline file)")
	workDir := fs.String("workdir", "", "Directory for transient graph files (overrides the pipeline file)")
	dbPath := fs.String("db", "", "Record the run in this database (empty disables recording)")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	fs.Parse(args)

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	outputFormat, err := gpt.ParseFormat(*format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		os.Exit(1)
	}
	if *out == "" {
		fmt.Fprintln(os.Stderr, "Error: -out flag is required")
		fs.Usage()
		os.Exit(1)
	}

	seq := buildPipeline(fs, *pipelinePath, *gptPath, *workDir)
	input := openInputs(fs, inputs)

	if *dbPath != "" {
		db, err := runs.Open(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open run database: %v", err)
		}
		defer db.Close()
		if err := runs.MigrateUp(db); err != nil {
			log.Fatalf("Failed to migrate run database: %v", err)
		}
		seq.SetRecorder(runs.NewStore(db))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := seq.Process(ctx, input, pipeline.ProcessOptions{
		OutputPath: *out,
		Format:     outputFormat,
		LogPath:    *logPath,
	})
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}
	if res.Failed() {
		log.Printf("Run failed with exit code %d; see %s", res.ExitCode, res.LogFile)
		os.Exit(1)
	}
	log.Printf("✓ Run completed in %s, output at %s", res.Duration, *out)
}

func handleGraph(args []string) {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	pipelinePath := fs.String("pipeline", "", "Pipeline description file (required)")
	var inputs stringList
	fs.Var(&inputs, "in", "Input product .dim header (repeat for fan-in)")
	out := fs.String("out", "", "Output product path (required)")
	format := fs.String("format", "", "Output format (default BEAM-DIMAP)")
	fs.Parse(args)

	outputFormat, err := gpt.ParseFormat(*format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		os.Exit(1)
	}
	if *out == "" {
		fmt.Fprintln(os.Stderr, "Error: -out flag is required")
		fs.Usage()
		os.Exit(1)
	}

	seq := buildPipeline(fs, *pipelinePath, "", "")
	input := openInputs(fs, inputs)

	doc, err := seq.BuildDocument(input, pipeline.ProcessOptions{
		OutputPath: *out,
		Format:     outputFormat,
	})
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}
	if err := doc.Encode(os.Stdout); err != nil {
		log.Fatalf("Failed to serialize graph: %v", err)
	}
}

// buildPipeline loads the description file and assembles the runnable chain.
// Flag overrides beat the pipeline file's settings.
func buildPipeline(fs *flag.FlagSet, path, gptOverride, workDirOverride string) *pipeline.Sequential {
	if path == "" {
		fmt.Fprintln(os.Stderr, "Error: -pipeline flag is required")
		fs.Usage()
		os.Exit(1)
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load pipeline: %v", err)
	}
	ops, err := cfg.Operators()
	if err != nil {
		log.Fatalf("Invalid pipeline: %v", err)
	}

	executable := cfg.GPTPath
	if gptOverride != "" {
		executable = gptOverride
	}
	workDir := cfg.WorkingDir
	if workDirOverride != "" {
		workDir = workDirOverride
	}

	tool := pipeline.NewTool(pipeline.ToolOptions{Executable: executable, WorkDir: workDir})
	seq, err := pipeline.NewSequential(tool, ops...)
	if err != nil {
		log.Fatalf("Failed to assemble pipeline: %v", err)
	}
	return seq
}

// openInputs parses every product header up front so a bad path fails before
// the engine is invoked. Flag order fixes the read-node order.
func openInputs(fs *flag.FlagSet, paths []string) pipeline.Input {
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one -in flag is required")
		fs.Usage()
		os.Exit(1)
	}
	fsys := fsutil.OSFileSystem{}
	srcs := make([]gpt.Source, len(paths))
	for i, p := range paths {
		prod, err := product.Open(fsys, p)
		if err != nil {
			log.Fatalf("Failed to open input product: %v", err)
		}
		srcs[i] = prod
	}
	if len(srcs) == 1 {
		return pipeline.One(srcs[0])
	}
	return pipeline.Many(srcs...)
}
