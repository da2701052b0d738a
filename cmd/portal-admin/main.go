package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campuscore/portal-api/config"
	"github.com/campuscore/portal-api/internal/bootstrap"
	"github.com/campuscore/portal-api/internal/devseed"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const defaultMigrationTimeout = 5 * time.Minute

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmdName)
		printUsage()
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrate,
		},
		"seed-demo": {
			name:        "seed-demo",
			description: "Run migrations and seed the demo student/staff/admin accounts",
			run:         runSeedDemo,
		},
		"clear-sessions": {
			name:        "clear-sessions",
			description: "Delete all active sessions from Redis, signing everyone out",
			run:         runClearSessions,
		},
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: portal-admin <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-16s %s\n", name, cmds[name].description)
	}
}

func runMigrate(cmdCtx *commandContext, _ []string) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultMigrationTimeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer closeQuietly(cmdCtx, db.Close, "close database")

	return bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
}

func runSeedDemo(cmdCtx *commandContext, _ []string) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultMigrationTimeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer closeQuietly(cmdCtx, db.Close, "close database")

	if err = bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); err != nil {
		return err
	}

	return devseed.Run(ctx, db, cmdCtx.Logger)
}

func runClearSessions(cmdCtx *commandContext, _ []string) error {
	client, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer closeQuietly(cmdCtx, client.Close, "close redis")

	deleted, err := deleteByPattern(cmdCtx.Ctx, client, "session:*")
	if err != nil {
		return err
	}

	cmdCtx.Logger.InfoContext(cmdCtx.Ctx, "sessions cleared", "count", deleted)
	return nil
}

// deleteByPattern removes keys matching pattern using SCAN, so it stays safe
// on stores with many keys.
func deleteByPattern(ctx context.Context, client redis.UniversalClient, pattern string) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("scan %q: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, delErr := client.Del(ctx, keys...).Result()
			if delErr != nil && !errors.Is(delErr, redis.Nil) {
				return deleted, fmt.Errorf("delete session keys: %w", delErr)
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func closeQuietly(cmdCtx *commandContext, closeFn func() error, what string) {
	if err := closeFn(); err != nil {
		cmdCtx.Logger.ErrorContext(cmdCtx.Ctx, what+" failed", "error", err)
	}
}
