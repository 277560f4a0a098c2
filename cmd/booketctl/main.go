package main

import (
	"os"

	"github.com/booketlist/booketlist/pkg/admins"
	"github.com/booketlist/booketlist/pkg/config"
	"github.com/booketlist/booketlist/pkg/database"
	"github.com/booketlist/booketlist/pkg/migrations"
	"github.com/booketlist/booketlist/pkg/seed"
	"github.com/booketlist/booketlist/pkg/version"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	app := &cli.App{
		Name:    "booketctl",
		Usage:   "operator tasks for a booketlist database",
		Version: version.Version,
		Commands: []*cli.Command{
			{
				Name:  "create-admin",
				Usage: "create an admin account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", EnvVars: []string{"ADMIN_NAME"}, Value: "Administrator"},
					&cli.StringFlag{Name: "email", EnvVars: []string{"ADMIN_EMAIL"}, Required: true},
					&cli.StringFlag{Name: "password", EnvVars: []string{"ADMIN_PASSWORD"}, Required: true},
				},
				Action: func(c *cli.Context) error {
					return withDB(c, func(db *bun.DB) error {
						if len(c.String("password")) < 8 {
							return errors.New("password must be at least 8 characters")
						}
						admin, err := admins.NewService(db).CreateAdmin(c.Context, admins.CreateAdminOptions{
							Name:     c.String("name"),
							Email:    c.String("email"),
							Password: c.String("password"),
						})
						if err != nil {
							return err
						}
						log.Info("admin created", logger.Data{"admin_id": admin.ID, "email": admin.Email})
						return nil
					})
				},
			},
			{
				Name:  "seed",
				Usage: "load the demo catalog and readers",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user-password", EnvVars: []string{"SEED_USER_PASSWORD"}, Required: true},
				},
				Action: func(c *cli.Context) error {
					return withDB(c, func(db *bun.DB) error {
						report, err := seed.Run(c.Context, db, seed.Options{UserPassword: c.String("user-password")})
						if err != nil {
							return err
						}
						log.Info("seed complete", logger.Data{
							"authors":         report.Authors,
							"books":           report.Books,
							"users":           report.Users,
							"ratings":         report.Ratings,
							"library_entries": report.LibraryEntries,
						})
						return nil
					})
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("booketctl error")
	}
}

// withDB opens the configured database, brings the schema up to date and
// hands it to fn.
func withDB(c *cli.Context, fn func(db *bun.DB) error) error {
	cfg, err := config.NewForCLI()
	if err != nil {
		return err
	}
	db, err := database.New(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := migrations.BringUpToDate(c.Context, db); err != nil {
		return err
	}
	return fn(db)
}
