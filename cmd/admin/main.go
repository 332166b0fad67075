package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"networth/internal/domain/asset"
	"networth/internal/domain/brokerlink"
	"networth/internal/infrastructure/postgres"
	"networth/internal/infrastructure/snaptrade"
	"networth/internal/shared/config"
)

const usage = `Networth Admin CLI - Management commands for the Networth API

Usage:
  admin <command> [options]

Commands:
  seed-categories   Upsert the built-in asset categories (required before broker imports)
  sync-holdings     Import holdings for users with active broker connections

Examples:
  # Seed the default asset categories
  admin seed-categories

  # Import holdings for a specific user
  admin sync-holdings --user-id=2f1e...

  # Import holdings for multiple users
  admin sync-holdings --user-id=2f1e...,9ac4...

  # Import holdings for every user with an active connection
  admin sync-holdings --all

  # Run with a timeout
  admin sync-holdings --all --timeout=5m
`

// defaultCategories are the asset categories the dashboard ships with.
// The investments slug must exist before any broker import runs.
var defaultCategories = []asset.Category{
	{Slug: "real-estate", Name: "Real Estate"},
	{Slug: "vehicles", Name: "Vehicles"},
	{Slug: "collectibles", Name: "Collectibles"},
	{Slug: "cash", Name: "Cash"},
	{Slug: brokerlink.InvestmentsCategorySlug, Name: "Investments"},
}

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "seed-categories":
		runSeedCategories(os.Args[2:])
	case "sync-holdings":
		runSyncHoldings(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func runSeedCategories(args []string) {
	fs := flag.NewFlagSet("seed-categories", flag.ExitOnError)
	timeoutStr := fs.String("timeout", "1m", "Timeout for the operation (e.g., 30s, 5m)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	db := connect()
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	categoryRepo := postgres.NewAssetCategoryRepository(db)
	for _, c := range defaultCategories {
		if _, err := categoryRepo.Upsert(ctx, c.Slug, c.Name); err != nil {
			log.Fatalf("Failed to upsert category %s: %v", c.Slug, err)
		}
		log.Printf("Upserted category %s (%s)", c.Slug, c.Name)
	}

	log.Printf("Seeded %d categories", len(defaultCategories))
}

func runSyncHoldings(args []string) {
	fs := flag.NewFlagSet("sync-holdings", flag.ExitOnError)

	userIDStr := fs.String("user-id", "", "User ID(s) to sync (comma-separated for multiple)")
	allUsers := fs.Bool("all", false, "Sync all users with active broker connections")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin sync-holdings [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  admin sync-holdings --user-id=2f1e...")
		fmt.Println("  admin sync-holdings --all --timeout=1h")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userIDStr == "" && !*allUsers {
		fmt.Println("Error: must specify --user-id or --all")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	connectionRepo := postgres.NewBrokerConnectionRepository(db)
	assetRepo := postgres.NewAssetRepository(db)
	categoryRepo := postgres.NewAssetCategoryRepository(db)

	snapClient := snaptrade.NewClient(
		snaptrade.Config{
			ClientID:    cfg.SnapTrade.ClientID,
			ConsumerKey: cfg.SnapTrade.ConsumerKey,
			BaseURL:     cfg.SnapTrade.BaseURL,
			RelayURL:    cfg.SnapTrade.RelayURL,
		},
		snaptrade.RetryConfig{
			MaxRetries:   cfg.SnapTrade.RetryMax,
			InitialDelay: cfg.SnapTrade.RetryDelay,
		},
	)
	importService := brokerlink.NewImportService(snapClient, connectionRepo, assetRepo, categoryRepo, nil)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var userIDs []string
	if *allUsers {
		userIDs, err = connectionRepo.ListUserIDsWithActiveConnections(ctx)
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
	} else {
		for _, id := range strings.Split(*userIDStr, ",") {
			if id = strings.TrimSpace(id); id != "" {
				userIDs = append(userIDs, id)
			}
		}
	}

	if len(userIDs) == 0 {
		log.Println("No users to sync")
		return
	}

	log.Printf("Syncing holdings for %d user(s)", len(userIDs))

	failed := 0
	for _, userID := range userIDs {
		result, err := importService.ImportHoldings(ctx, userID)
		if err != nil {
			log.Printf("Sync failed for user %s: %v", userID, err)
			failed++
			continue
		}
		log.Printf("Synced user %s: imported=%d skipped=%d", userID, result.Imported, result.Skipped)
	}

	if failed > 0 {
		log.Fatalf("Sync completed with %d failure(s)", failed)
	}
	log.Println("Sync completed")
}

// connect loads configuration and opens the database.
func connect() *postgres.DB {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")
	return db
}
