package cmd

import (
	"os"

	"readnext/config"
	"readnext/db"
	"readnext/ingest"
	"readnext/policy"
	"readnext/relevance"
	"readnext/tree"
	"readnext/update"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "readnext",
		Usage: "A read/unread news inbox ranked by learned relevance",
		Description: `Aggregates items from feeds and scripted sources into a single
		read/unread inbox stored in SQLite, learns per-word relevance from
		"like" feedback and always knows which unread item to show next.

		Flags can generally be set via environment variables, e.g.:

		--database => READNEXT_DATABASE=news.db
		--config => READNEXT_CONFIG=config.toml
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.toml",
				Usage:   "Path to the TOML configuration file",
				EnvVars: []string{"READNEXT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Usage:   "SQLite database file location (overrides the config file)",
				EnvVars: []string{"READNEXT_DATABASE"},
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
			rollbackCmd(),
			updateCmd(),
			channelCmd(),
			folderCmd(),
			nextCmd(),
			likeCmd(),
			wordsCmd(),
			readAllCmd(),
			tidyCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return cli.ShowAppHelp(ctx)
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// app bundles the wired components the commands operate on.
type app struct {
	cfg         *config.TomlConfig
	store       *db.Store
	tree        *tree.Tree
	policy      *policy.Policy
	engine      *relevance.Engine
	coordinator *update.Coordinator
}

func setup(ctx *cli.Context) (*app, error) {
	cfg, err := config.LoadConfig(ctx.String("config"))
	if err != nil {
		return nil, err
	}
	if database := ctx.String("database"); database != "" {
		cfg.Database = database
	}

	store, err := db.New(cfg.Database)
	if err != nil {
		return nil, err
	}

	counters := tree.New()
	if err := counters.Rebuild(store); err != nil {
		store.Close()
		return nil, err
	}

	engine := relevance.NewEngine(store)

	return &app{
		cfg:    cfg,
		store:  store,
		tree:   counters,
		policy: policy.New(store, policy.Order(cfg.Selection.Order), cfg.Selection.Threshold),
		engine: engine,
		coordinator: update.NewCoordinator(
			store, ingest.DefaultRegistry(), engine, counters, cfg.Update.Workers,
		),
	}, nil
}

func (a *app) Close() {
	a.store.Close()
}

func databasePath(ctx *cli.Context) (string, error) {
	cfg, err := config.LoadConfig(ctx.String("config"))
	if err != nil {
		return "", err
	}
	if database := ctx.String("database"); database != "" {
		return database, nil
	}
	return cfg.Database, nil
}
