package cmd

import (
	"fmt"

	"readnext/db"

	"github.com/urfave/cli/v2"
)

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:        "migrate",
		Usage:       "Run database migrations",
		Description: `Runs database migrations on the configured database. Will create the database if it does not exist.`,
		Action: func(ctx *cli.Context) error {
			database, err := databasePath(ctx)
			if err != nil {
				return err
			}
			fmt.Println("Database configured: ", database)
			return db.Migrate(database)
		},
	}
}

func rollbackCmd() *cli.Command {
	return &cli.Command{
		Name:        "rollback",
		Usage:       "Rollback database migration",
		Description: `Rolls back the last database migration`,
		Action: func(ctx *cli.Context) error {
			database, err := databasePath(ctx)
			if err != nil {
				return err
			}
			fmt.Println("Database configured: ", database)
			return db.Rollback(database)
		},
	}
}

func tidyCmd() *cli.Command {
	return &cli.Command{
		Name:  "tidy",
		Usage: "Tidy up the database",
		Description: `Tidy up the database by removing news items that have
		already been read. Unread items and the learned vocabulary are kept.

		Can be run as a cron job to keep the database size down.`,
		Action: func(ctx *cli.Context) error {
			database, err := databasePath(ctx)
			if err != nil {
				return err
			}
			deleted, err := db.Tidy(database)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d read items\n", deleted)
			return nil
		},
	}
}
