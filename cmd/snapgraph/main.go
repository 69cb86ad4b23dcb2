package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/banshee-data/snapgraph/internal/version"
)

// defaultRunsDB is where run history lands unless -db says otherwise.
const defaultRunsDB = "pipeline_runs.db"

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "run":
		handleRun(args)
	case "graph":
		handleGraph(args)
	case "info":
		handleInfo(args)
	case "report":
		handleReport(args)
	case "runs":
		handleRuns(args)
	case "migrate":
		handleMigrate(args)
	case "version":
		fmt.Println(version.String())
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`snapgraph - graph pipeline runner for the SNAP gpt engine

Usage: snapgraph <command> [options]

Commands:
  run        Execute a pipeline against one or more input products
  graph      Print the graph XML a pipeline would execute (dry run)
  info       Show product name, size, bands and per-band statistics
  report     Write an HTML quicklook for a product
  runs       List recorded pipeline runs
  migrate    Manage the run database schema
  version    Show build metadata
  help       Show this help message

Examples:
  # Run a chain over one scene, capturing engine output to a log artifact
  snapgraph run -pipeline chain.json -in scene.dim -out out.dim -log run.log

  # Fan two scenes into the chain's first operator
  snapgraph run -pipeline merge.json -in a.dim -in b.dim -out merged.dim

  # Inspect the graph without invoking the engine
  snapgraph graph -pipeline chain.json -in scene.dim -out out.dim

  # Product inspection
  snapgraph info -in out.dim
  snapgraph report -in out.dim -html quicklook.html

  # Run history
  snapgraph runs -db pipeline_runs.db -limit 20
  snapgraph migrate -db pipeline_runs.db up

For more information, see: https://github.com/banshee-data/snapgraph`)
}
