package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/salesdash/backend/internal/domain/identity"
	"github.com/salesdash/backend/internal/infrastructure/config"
	"github.com/salesdash/backend/internal/infrastructure/logger"
	"github.com/salesdash/backend/internal/infrastructure/persistence"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	// hash-password does not need configuration or a database
	if command == "hash-password" {
		password := ""
		if len(args) > 1 {
			password = args[1]
		} else {
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				log.Fatal("Password required. Usage: salesctl hash-password <password> or pipe it on stdin")
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			log.Fatal("Password cannot be empty")
		}
		hash, err := identity.HashPassword(password)
		if err != nil {
			log.Fatal("Failed to hash password", zap.Error(err))
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database,
		logger.NewGormLogger(log, logger.GormLevel(logLevel), 0))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	switch command {
	case "migrate":
		sub, rest := "up", []string(nil)
		if len(args) > 1 {
			sub, rest = args[1], args[2:]
		}
		runMigrate(db, cfg.Database.Driver, sub, rest, log)

	case "history":
		venueID, limit := 0, 20
		if len(args) > 1 {
			if venueID, err = strconv.Atoi(args[1]); err != nil {
				log.Fatal("Invalid venue id", zap.String("value", args[1]))
			}
		}
		if len(args) > 2 {
			if limit, err = strconv.Atoi(args[2]); err != nil {
				log.Fatal("Invalid limit", zap.String("value", args[2]))
			}
		}
		runs, err := persistence.NewReportRunRepository(db.DB).ListRecent(context.Background(), venueID, limit)
		if err != nil {
			log.Fatal("Failed to list report runs", zap.Error(err))
		}
		if len(runs) == 0 {
			log.Info("No reports generated yet")
			return
		}
		for _, r := range runs {
			fmt.Printf("%s  %-12s venue=%-3d %-7s %s..%s  days=%-3d revenue=%s\n",
				r.GeneratedAt.Format("2006-01-02 15:04"), r.Username, r.VenueID, r.RangeType,
				r.StartDate, r.EndDate, r.DayCount, r.Totals.Revenue.StringFixed(2))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

// runMigrate handles "migrate up|steps N|version|force N". sqlite only
// supports up, which auto-migrates the models.
func runMigrate(db *persistence.Database, driver, sub string, rest []string, log *zap.Logger) {
	if sub == "up" {
		if err := db.Migrate(log); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
		log.Info("Database schema is up to date", zap.String("driver", driver))
		return
	}

	m, err := db.Migrator(log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Error("Error closing migrator", zap.Error(err))
		}
	}()

	switch sub {
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("Failed to read version", zap.Error(err))
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)

	case "steps", "force":
		if len(rest) == 0 {
			log.Fatal("Missing number", zap.String("command", "migrate "+sub))
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			log.Fatal("Invalid number", zap.String("value", rest[0]))
		}
		if sub == "steps" {
			err = m.Steps(n)
		} else {
			err = m.Force(n)
		}
		if err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}

	default:
		log.Error("Unknown migrate subcommand", zap.String("subcommand", sub))
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Sales dashboard admin tool

Usage:
  salesctl [flags] <command> [arguments]

Commands:
  migrate [up]              Create or update the report history schema
  migrate steps <n>         Apply n migrations, negative rolls back (postgres)
  migrate version           Print the applied migration version (postgres)
  migrate force <version>   Mark a version as applied after a failed run (postgres)
  history [venue] [limit]   List recently generated reports
  hash-password [password]  Print a bcrypt hash for an account entry

Flags:
  -log-level string         Log level: debug, info, warn, error (default: info)

Examples:
  # Hash a password for config.toml
  echo -n 's3cret' | salesctl hash-password

  # Last 10 reports for Houdinni Madrid
  salesctl history 55 10`)
}
