package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"socialflow/config"
	"socialflow/pkg/database"
)

const usage = `
SocialFlow - Database CLI Tool

Usage:
  migrate [command]

Commands:
  up          Run GORM migrations for all tables
  status      Show database connection status

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status
`

func main() {
	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.LoadConfig()
	database.Connect(cfg)

	switch flag.Arg(0) {
	case "up":
		runMigrationsUp()
	case "status":
		showStatus()
	default:
		fmt.Printf("Unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp() {
	log.Println("Running migrations...")

	if err := database.Migrate(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations completed successfully")
}

func showStatus() {
	log.Println("Checking database status...")

	if err := database.HealthCheck(); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	tables := []string{
		"workspaces", "workspace_members", "social_accounts",
		"inbox_conversations", "inbox_items", "inbox_replies",
		"inbox_internal_notes", "inbox_tags", "saved_replies",
		"inbox_automation_rules", "post_targets", "post_metric_snapshots",
		"notifications", "jobs",
	}
	for _, table := range tables {
		exists, err := database.TableExists(table)
		if err != nil {
			log.Printf("Error checking table %s: %v", table, err)
			continue
		}
		if exists {
			log.Printf("Table %-24s exists", table)
		} else {
			log.Printf("Table %-24s missing", table)
		}
	}
}
