package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/banshee-data/snapgraph/internal/runs"
)

func handleRuns(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	dbPath := fs.String("db", defaultRunsDB, "Run database path")
	limit := fs.Int("limit", 20, "Maximum number of runs to list")
	asJSON := fs.Bool("json", false, "Emit JSON instead of a table")
	fs.Parse(args)

	// Opening a database creates the file, which a listing command should
	// never do.
	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatalf("Run database %s not found: %v", *dbPath, err)
	}

	db, err := runs.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open run database: %v", err)
	}
	defer db.Close()

	store := runs.NewStore(db)
	list, err := store.List(*limit)
	if err != nil {
		log.Fatalf("Failed to list runs: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(list); err != nil {
			log.Fatalf("Failed to encode runs: %v", err)
		}
		return
	}

	if len(list) == 0 {
		fmt.Println("No runs recorded.")
		return
	}
	fmt.Printf("%-36s  %-20s  %-9s  %-4s  %-10s  %s\n",
		"RUN", "STARTED", "STATUS", "EXIT", "DURATION", "OPERATORS")
	for _, r := range list {
		exit := "-"
		if r.ExitCode != nil {
			exit = fmt.Sprintf("%d", *r.ExitCode)
		}
		duration := "-"
		if r.DurationMS != nil {
			duration = (time.Duration(*r.DurationMS) * time.Millisecond).String()
		}
		operators := "-"
		if len(r.Operators) > 0 {
			operators = strings.Join(r.Operators, ",")
		}
		fmt.Printf("%-36s  %-20s  %-9s  %-4s  %-10s  %s\n",
			r.RunID, r.StartedAt.UTC().Format("2006-01-02 15:04:05"), r.Status, exit, duration, operators)
	}
}

func handleMigrate(args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dbPath := fs.String("db", defaultRunsDB, "Run database path")
	fs.Parse(args)

	runs.RunMigrateCommand(fs.Args(), *dbPath)
}
