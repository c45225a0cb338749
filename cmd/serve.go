package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"readnext/server"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the readnext HTTP API",
		Description: `Starts the HTTP API the presentation layer consumes: folder and
		channel listings with unread counts, next-unread navigation, read-state
		transitions, feedback and update triggering with an SSE progress stream.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides the config file)",
				EnvVars: []string{"READNEXT_PORT"},
			},
		},
		Action: func(ctx *cli.Context) error {
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			port := a.cfg.Server.Port
			if ctx.Int("port") != 0 {
				port = ctx.Int("port")
			}

			app := server.Server(&server.ServerConfig{
				Store:       a.store,
				Tree:        a.tree,
				Policy:      a.policy,
				Engine:      a.engine,
				Coordinator: a.coordinator,
			})

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			go func() {
				<-c
				fmt.Println("Gracefully shutting down...")
				if err := app.ShutdownWithTimeout(60 * time.Second); err != nil {
					log.Errorf("Shutdown error: %v", err)
				}
			}()

			log.WithFields(log.Fields{
				"port": port,
			}).Info("Starting server")

			return app.Listen(fmt.Sprintf(":%d", port))
		},
	}
}
