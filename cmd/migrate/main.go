// Command migrate applies the embedded SQL migrations against DATABASE_URL.
//
// Usage:
//
//	migrate init      create the migration bookkeeping tables
//	migrate up        apply pending migrations
//	migrate down      roll back the last migration group
//	migrate status    print migration state
package main

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/migrate"

	"github.com/open-rails/entkit/config"
	migrations "github.com/open-rails/entkit/migrations/postgres"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	connCfg, err := pgx.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("parse DATABASE_URL")
	}
	sqldb := stdlib.OpenDB(*connCfg)
	defer sqldb.Close()
	db := bun.NewDB(sqldb, pgdialect.New())

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, migrations.Migrations)

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		if err := migrator.Init(ctx); err != nil {
			log.WithError(err).Fatal("init migrations")
		}
		log.Info("migration tables created")
	case "up":
		if err := migrator.Init(ctx); err != nil {
			log.WithError(err).Fatal("init migrations")
		}
		group, err := migrator.Migrate(ctx)
		if err != nil {
			log.WithError(err).Fatal("migrate")
		}
		if group.IsZero() {
			log.Info("no pending migrations")
			return
		}
		log.WithField("group", group.String()).Info("migrated")
	case "down":
		group, err := migrator.Rollback(ctx)
		if err != nil {
			log.WithError(err).Fatal("rollback")
		}
		if group.IsZero() {
			log.Info("nothing to roll back")
			return
		}
		log.WithField("group", group.String()).Info("rolled back")
	case "status":
		ms, err := migrator.MigrationsWithStatus(ctx)
		if err != nil {
			log.WithError(err).Fatal("status")
		}
		log.WithFields(logrus.Fields{
			"migrations": ms.String(),
			"unapplied":  ms.Unapplied().String(),
			"last_group": ms.LastGroup().String(),
		}).Info("migration status")
	default:
		log.Fatalf("unknown command %q", cmd)
	}
}
