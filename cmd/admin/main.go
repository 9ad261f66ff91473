package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/tendant/simple-discover/internal/logging"
	"github.com/tendant/simple-discover/pkg/discover/config"
)

const usage = `Discover Admin CLI

Maintenance commands for the discover feed index.

USAGE:
  admin <command> [options]

COMMANDS:
  reconcile   Rebuild the index from every source table
  cleanup     Remove index rows whose source is gone or soft-deleted
  stats       Show public feed statistics
  migrate     Apply database migrations (postgres only)
  seed        Create demo users and content

ENVIRONMENT VARIABLES:
  DATABASE_URL      "memory" (default) or a postgres:// connection string
  DB_SCHEMA         PostgreSQL schema name (default: discover)
  RECONCILE_BATCH_SIZE, FEED_HYDRATION_CONCURRENCY, MEDIA_* (see server)

  Configuration can be loaded from a .env file in the current directory.
  Command line environment variables override .env file values.

EXAMPLES:
  admin migrate
  admin seed --users=5 --per-user=10
  admin reconcile --json
  admin cleanup
  admin stats

OPTIONS:
  --json            Output as JSON
  --users=<n>       Seed: number of demo users (default: 3)
  --per-user=<n>    Seed: items of each kind per user (default: 4)
`

type options struct {
	json    bool
	users   int
	perUser int
}

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
	logging.SetupWriter(os.Stderr)

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	command := os.Args[1]
	if command == "help" || command == "--help" || command == "-h" {
		fmt.Println(usage)
		os.Exit(0)
	}

	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		logging.Fatal("Failed to load configuration", "error", err)
	}

	ctx := context.Background()
	opts := parseOptions(os.Args[2:])

	if err := run(ctx, cfg, command, opts, os.Stdout); err != nil {
		logging.Fatal("Command failed", "command", command, "error", err)
	}
}

func run(ctx context.Context, cfg *config.ServerConfig, command string, opts options, out io.Writer) error {
	if command == "migrate" {
		return handleMigrate(ctx, cfg, out)
	}

	services, err := cfg.BuildServices(ctx)
	if err != nil {
		return fmt.Errorf("failed to build services: %w", err)
	}
	defer services.Close()

	switch command {
	case "reconcile":
		return handleReconcile(ctx, services, opts, out)
	case "cleanup":
		return handleCleanup(ctx, services, opts, out)
	case "stats":
		return handleStats(ctx, services, opts, out)
	case "seed":
		return handleSeed(ctx, services, opts, out)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func parseOptions(args []string) options {
	opts := options{users: 3, perUser: 4}

	for _, arg := range args {
		if arg == "--json" {
			opts.json = true
			continue
		}

		key, value := parseFlag(arg)
		switch key {
		case "users":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				opts.users = n
			}
		case "per-user":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				opts.perUser = n
			}
		}
	}
	return opts
}

func parseFlag(arg string) (string, string) {
	if len(arg) > 2 && arg[:2] == "--" {
		arg = arg[2:]
		for i, c := range arg {
			if c == '=' {
				return arg[:i], arg[i+1:]
			}
		}
		return arg, "true"
	}
	return "", ""
}

func handleMigrate(ctx context.Context, cfg *config.ServerConfig, out io.Writer) error {
	if cfg.DatabaseType != "postgres" {
		return fmt.Errorf("migrate requires a postgres DATABASE_URL")
	}
	pool, err := cfg.NewPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := cfg.Migrate(ctx, pool); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrations applied to schema %q\n", cfg.DBSchema)
	return nil
}

func handleReconcile(ctx context.Context, services *config.Services, opts options, out io.Writer) error {
	result, err := services.Discover.ReconcileAll(ctx)
	if err != nil {
		return err
	}
	if opts.json {
		return writeJSON(out, result)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KIND\tSYNCED\tFAILED\tERROR\n")
	for _, kind := range sortedKeys(result.PerType) {
		r := result.PerType[kind]
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", kind, r.Synced, r.Failed, dash(r.Error))
	}
	w.Flush()

	fmt.Fprintf(out, "\nSynced %d items in %s\n", result.TotalSynced(), result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	return nil
}

func handleCleanup(ctx context.Context, services *config.Services, opts options, out io.Writer) error {
	result, err := services.Discover.CleanupOrphans(ctx)
	if err != nil {
		return err
	}
	if opts.json {
		return writeJSON(out, result)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TYPE\tSCANNED\tREMOVED\tERROR\n")
	var removed int64
	for _, ct := range sortedKeys(result.PerType) {
		r := result.PerType[ct]
		removed += r.Removed
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", ct, r.Scanned, r.Removed, dash(r.Error))
	}
	w.Flush()

	fmt.Fprintf(out, "\nRemoved %d orphaned entries\n", removed)
	return nil
}

func handleStats(ctx context.Context, services *config.Services, opts options, out io.Writer) error {
	stats, err := services.Discover.Stats(ctx)
	if err != nil {
		return err
	}
	if opts.json {
		return writeJSON(out, stats)
	}

	fmt.Fprintln(out, "=== Discover Feed Statistics ===")
	fmt.Fprintf(out, "\nPublic items:    %d\n", stats.TotalPublic)
	fmt.Fprintf(out, "Distinct owners: %d\n", stats.DistinctOwners)

	if len(stats.ByContentType) > 0 {
		fmt.Fprintln(out, "\nBy Content Type:")
		for _, ct := range sortedKeys(stats.ByContentType) {
			fmt.Fprintf(out, "  %-10s: %d\n", ct, stats.ByContentType[ct])
		}
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
