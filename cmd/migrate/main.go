package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"github.com/zansmarket/storefront-backend/pkg/config"
	"github.com/zansmarket/storefront-backend/pkg/db"
	"github.com/zansmarket/storefront-backend/pkg/logger"
	"github.com/zansmarket/storefront-backend/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

// offline commands work on files only and never open the database.
var offline = map[string]bool{"create": true, "validate": true, "versions": true}

var online = map[string]bool{"up": true, "down": true, "status": true, "version": true}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|create|validate|versions")
	fs.StringVar(&opts.dir, "dir", "", "migrations directory; empty uses the embedded set for database commands and "+migrate.DefaultDir+" for files")
	fs.StringVar(&opts.name, "name", "", "migration name for create, e.g. create_coupons_table")
	fs.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		opts.cmd = fs.Arg(0)
	}

	switch {
	case !offline[opts.cmd] && !online[opts.cmd]:
		return options{}, fmt.Errorf("unknown command %q", opts.cmd)
	case opts.cmd == "create" && opts.name == "":
		return options{}, errors.New("missing -name for create")
	case opts.cmd == "version" && opts.version == "":
		return options{}, errors.New("missing -version for version")
	}
	if offline[opts.cmd] && opts.dir == "" && opts.cmd != "versions" {
		opts.dir = migrate.DefaultDir
	}
	return opts, nil
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if offline[opts.cmd] {
		if err := runOffline(opts, os.Stdout); err != nil {
			logg.Error(context.Background(), "migrate "+opts.cmd+" failed", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"cmd":       opts.cmd,
		"dir":       opts.dir,
		"db_driver": cfg.DB.Driver,
	})

	if err := runOnline(ctx, cfg, logg, opts); err != nil {
		logg.Error(ctx, "migrate "+opts.cmd+" failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "migrate "+opts.cmd+" completed")
}

func runOffline(opts options, stdout io.Writer) error {
	switch opts.cmd {
	case "create":
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, "created migration:", path)
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "migration validation passed")
	case "versions":
		versions, err := migrate.EmbeddedVersions()
		if err != nil {
			return err
		}
		for _, v := range versions {
			fmt.Fprintln(stdout, v)
		}
	}
	return nil
}

func runOnline(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts options) error {
	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer client.Close()

	// The SQL files target Postgres. SQLite only supports bringing the
	// schema up from the models.
	if cfg.DB.IsSQLite() {
		if opts.cmd != "up" {
			return fmt.Errorf("%s is not supported on sqlite", opts.cmd)
		}
		return migrate.AutoMigrateModels(ctx, client)
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql database: %w", err)
	}
	if opts.cmd == "version" {
		return migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version)
	}
	return migrate.Run(ctx, sqlDB, opts.dir, opts.cmd)
}
