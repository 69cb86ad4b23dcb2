package runs

import (
	"database/sql"
	"fmt"
	"log"
	"os"
)

// RunMigrateCommand handles the 'migrate' subcommand dispatching
func RunMigrateCommand(args []string, dbPath string) {
	if len(args) < 1 {
		PrintMigrateHelp()
		os.Exit(1)
	}

	action := args[0]

	db, err := Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open run database: %v", err)
	}
	defer db.Close()

	switch action {
	case "up":
		handleMigrateUp(db)

	case "down":
		handleMigrateDown(db)

	case "status":
		handleMigrateStatus(db)

	case "version":
		if len(args) < 2 {
			log.Fatal("Usage: snapgraph migrate version <version_number>")
		}
		handleMigrateVersion(db, args[1])

	case "force":
		if len(args) < 2 {
			log.Fatal("Usage: snapgraph migrate force <version_number>")
		}
		handleMigrateForce(db, args[1])

	case "help":
		PrintMigrateHelp()

	default:
		fmt.Printf("Unknown migrate action: %s\n\n", action)
		PrintMigrateHelp()
		os.Exit(1)
	}
}

// handleMigrateUp applies all pending migrations
func handleMigrateUp(db *sql.DB) {
	log.Printf("Running migrations...")
	if err := MigrateUp(db); err != nil {
		log.Fatalf("Migration up failed: %v", err)
	}
	log.Println("✓ All migrations applied successfully")

	version, dirty, _ := MigrateVersion(db)
	log.Printf("Current version: %d (dirty: %v)", version, dirty)
}

// handleMigrateDown rolls back one migration
func handleMigrateDown(db *sql.DB) {
	log.Printf("Rolling back one migration...")
	if err := MigrateDown(db); err != nil {
		log.Fatalf("Migration down failed: %v", err)
	}
	log.Println("✓ Migration rolled back successfully")

	version, dirty, _ := MigrateVersion(db)
	log.Printf("Current version: %d (dirty: %v)", version, dirty)
}

// handleMigrateStatus displays the current migration status
func handleMigrateStatus(db *sql.DB) {
	version, dirty, err := MigrateVersion(db)
	if err != nil {
		log.Fatalf("Failed to get migration status: %v", err)
	}

	var hasTable bool
	err = db.QueryRow(`
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type='table' AND name='schema_migrations'
	`).Scan(&hasTable)
	if err != nil {
		log.Fatalf("Failed to check for schema_migrations table: %v", err)
	}

	fmt.Println("=== Migration Status ===")
	fmt.Printf("Current version: %d\n", version)
	fmt.Printf("Dirty: %v\n", dirty)
	fmt.Printf("Schema migrations table exists: %v\n", hasTable)

	if dirty {
		fmt.Println("\n⚠️  WARNING: Database is in a dirty state!")
		fmt.Println("A migration failed mid-execution. You may need to:")
		fmt.Println("  1. Inspect the database manually")
		fmt.Println("  2. Fix any issues")
		fmt.Println("  3. Run: snapgraph migrate force <version>")
	}
}

// handleMigrateVersion migrates to a specific version
func handleMigrateVersion(db *sql.DB, versionStr string) {
	var targetVersion uint
	if _, err := fmt.Sscanf(versionStr, "%d", &targetVersion); err != nil {
		log.Fatalf("Invalid version number: %s", versionStr)
	}

	log.Printf("Migrating to version %d...", targetVersion)
	if err := MigrateTo(db, targetVersion); err != nil {
		log.Fatalf("Migration to version %d failed: %v", targetVersion, err)
	}
	log.Printf("✓ Migrated to version %d successfully", targetVersion)
}

// handleMigrateForce forces the migration version (recovery only)
func handleMigrateForce(db *sql.DB, versionStr string) {
	var forceVersion int
	if _, err := fmt.Sscanf(versionStr, "%d", &forceVersion); err != nil {
		log.Fatalf("Invalid version number: %s", versionStr)
	}

	fmt.Printf("⚠️  WARNING: Forcing migration version to %d\n", forceVersion)
	fmt.Println("This should only be used to recover from a dirty migration state.")
	fmt.Print("Continue? [y/N]: ")

	var response string
	fmt.Scanln(&response)
	if response != "y" && response != "Y" {
		log.Println("Aborted")
		os.Exit(0)
	}

	if err := MigrateForce(db, forceVersion); err != nil {
		log.Fatalf("Force migration failed: %v", err)
	}
	log.Printf("✓ Migration version forced to %d", forceVersion)
}

// PrintMigrateHelp displays the help message for the migrate command
func PrintMigrateHelp() {
	fmt.Println("Run Database Migration Commands")
	fmt.Println()
	fmt.Println("Usage: snapgraph migrate [options] <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up              Apply all pending migrations")
	fmt.Println("  down            Rollback one migration")
	fmt.Println("  status          Show current migration status and version")
	fmt.Println("  version <N>     Migrate to specific version N")
	fmt.Println("  force <N>       Force migration version to N (recovery only)")
	fmt.Println("  help            Show this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  snapgraph migrate up")
	fmt.Println("  snapgraph migrate down")
	fmt.Println("  snapgraph migrate status")
	fmt.Println("  snapgraph migrate version 2")
	fmt.Println("  snapgraph migrate force 1")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -db <path>    Path to run database file (default: pipeline_runs.db)")
}
