package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/chrissnell/airquality/internal/log"
	"github.com/chrissnell/airquality/pkg/config"
	"github.com/chrissnell/airquality/pkg/migrate"
	_ "modernc.org/sqlite"
)

func main() {
	var (
		dbPath        = flag.String("db", "", "Path to the SQLite configuration database (required)")
		command       = flag.String("command", "status", "Migration command: up, down, to, version, status")
		targetVersion = flag.String("target", "", "Target version for down/to commands")
		helpFlag      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *helpFlag {
		showHelp()
		return
	}

	if *dbPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -db flag is required\n")
		showHelp()
		os.Exit(1)
	}

	if err := log.Init(log.Options{}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	migrator := migrate.NewMigrator(db, config.MigrationProvider())

	if err := run(migrator, *command, *targetVersion); err != nil {
		log.Fatalf("Migration command failed: %v", err)
	}
}

func run(migrator *migrate.Migrator, command, target string) error {
	switch command {
	case "up":
		if err := migrator.MigrateUp(); err != nil {
			return err
		}
	case "down", "to":
		if target == "" {
			return fmt.Errorf("-target flag is required for %s command", command)
		}
		version, err := strconv.Atoi(target)
		if err != nil {
			return fmt.Errorf("invalid target version: %w", err)
		}
		if command == "down" {
			err = migrator.MigrateDown(version)
		} else {
			err = migrator.MigrateTo(version)
		}
		if err != nil {
			return err
		}
	case "version":
		version, err := migrator.GetCurrentVersion()
		if err != nil {
			return fmt.Errorf("failed to get current version: %w", err)
		}
		fmt.Printf("Current version: %d\n", version)
		return nil
	case "status":
		return showStatus(migrator)
	default:
		showHelp()
		return fmt.Errorf("unknown command: %s", command)
	}

	fmt.Println("Migration completed successfully")
	return nil
}

func showStatus(migrator *migrate.Migrator) error {
	currentVersion, err := migrator.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	pending, err := migrator.GetPendingMigrations()
	if err != nil {
		return fmt.Errorf("failed to get pending migrations: %w", err)
	}

	fmt.Printf("Current version: %d\n", currentVersion)
	fmt.Printf("Pending migrations: %d\n", len(pending))

	if len(pending) > 0 {
		fmt.Println("\nPending migrations:")
		for _, migration := range pending {
			fmt.Printf("  %d: %s\n", migration.Version, migration.Name)
		}
	}

	return nil
}

func showHelp() {
	fmt.Println("Configuration Database Migration Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  config-migrate -db config.db [-command up|down|to|version|status] [-target N]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up                 Apply all pending migrations")
	fmt.Println("  down               Roll back to target version")
	fmt.Println("  to                 Migrate to specific version (up or down)")
	fmt.Println("  version            Show current migration version")
	fmt.Println("  status             Show migration status (default)")
}
