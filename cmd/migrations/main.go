package main

import (
	"os"
	"strings"

	"github.com/booketlist/booketlist/pkg/config"
	"github.com/booketlist/booketlist/pkg/database"
	"github.com/booketlist/booketlist/pkg/migrations"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	migrator := migrate.NewMigrator(db, migrations.Migrations)

	app := &cli.App{
		Name:  "migrations",
		Usage: "manage the booketlist database schema",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return migrator.Init(c.Context)
				},
			},
			{
				Name:  "migrate",
				Usage: "apply every pending migration",
				Action: func(c *cli.Context) error {
					if err := migrator.Init(c.Context); err != nil {
						return err
					}
					group, err := migrator.Migrate(c.Context)
					if err != nil {
						return err
					}
					if group.ID == 0 {
						log.Info("no new migrations to run")
						return nil
					}
					log.Info("migrated", logger.Data{"group": group.String()})
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "roll back the last migration group",
				Action: func(c *cli.Context) error {
					group, err := migrator.Rollback(c.Context)
					if err != nil {
						return err
					}
					if group.ID == 0 {
						log.Info("no groups to roll back")
						return nil
					}
					log.Info("rolled back", logger.Data{"group": group.String()})
					return nil
				},
			},
			{
				Name:      "create",
				Usage:     "create a Go migration",
				ArgsUsage: "<words of the migration name>",
				Action: func(c *cli.Context) error {
					name := strings.Join(c.Args().Slice(), "_")
					mf, err := migrator.CreateGoMigration(
						c.Context,
						name,
						migrate.WithGoTemplate(migrationTemplate),
					)
					if err != nil {
						return err
					}
					log.Info("created migration", logger.Data{"name": mf.Name, "path": mf.Path})
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					ms, err := migrator.MigrationsWithStatus(c.Context)
					if err != nil {
						return err
					}
					log.Info("migrations status", logger.Data{
						"migrations": ms.String(),
						"unapplied":  ms.Unapplied().String(),
						"last_group": ms.LastGroup().String(),
					})
					return nil
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

const migrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
