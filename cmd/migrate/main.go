package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vaporhaus/storefront-backend/pkg/config"
	"github.com/vaporhaus/storefront-backend/pkg/db"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
	"github.com/vaporhaus/storefront-backend/pkg/migrate"
)

const usage = "up|up-by-one|down|redo|reset|status|to|create|validate"

func main() {
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: "+usage)
	dir := flag.String("dir", migrate.DefaultDir, "migrations directory for create and validate")
	name := flag.String("name", "", "migration name for -cmd=create")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=to")
	flag.Parse()

	// File-only commands need neither config nor a database.
	switch *cmd {
	case "create":
		path, err := migrate.CreateSQLMigration(*dir, *name)
		exitIf(err, "create migration")
		fmt.Println("created", path)
		return
	case "validate":
		exitIf(migrate.Validate(os.DirFS(*dir)), "validate migrations")
		fmt.Println("migrations valid")
		return
	}

	var target int64
	if *cmd == "to" {
		parsed, err := strconv.ParseInt(*version, 10, 64)
		exitIf(err, "parse -version")
		target = parsed
	}

	cfg, err := config.Load()
	exitIf(err, "load config")
	if cfg.FeatureFlags.UseSQLite {
		exitIf(fmt.Errorf("sqlite dev databases sync from models on startup"), "goose targets postgres only")
	}
	if *cmd == "reset" && cfg.App.IsProd() {
		exitIf(fmt.Errorf("reset drops every table"), "refusing to reset production")
	}

	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": *cmd})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	exitIf(err, "connect database")
	defer dbClient.Close()
	sqlDB, err := dbClient.DB().DB()
	exitIf(err, "unwrap sql.DB")

	migrator, err := migrate.New(sqlDB, nil, os.Stdout)
	exitIf(err, "load migrations")

	logg.Info(ctx, "running migrations")
	if err := migrator.Exec(ctx, *cmd, target); err != nil {
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}
}

func exitIf(err error, action string) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", action, err)
	os.Exit(1)
}
