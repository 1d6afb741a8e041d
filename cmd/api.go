package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/gradeassist/internal/api"
	"github.com/gradeassist/internal/session"
)

// APICommand returns the CLI command for starting the API server
func APICommand() *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Start the gradeassist API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port for the API server, overrides [server] port",
			},
		},
		Action: func(c *cli.Context) error {
			a, err := loadApp(c)
			if err != nil {
				return err
			}
			srv := a.cfg.Server
			if c.IsSet("port") {
				srv.Port = c.Int("port")
			}

			sessions, err := session.NewRegistry(session.RegistryConfig{
				MaxSessions:      srv.MaxSessions,
				ActionsPerMinute: srv.ActionsPerMinute,
				ActionBurst:      srv.ActionBurst,
				LogDir:           a.cfg.General.SessionLogDir,
			}, a.composer)
			if err != nil {
				return err
			}

			server := api.NewServer(api.Options{
				Host:           srv.Host,
				Port:           srv.Port,
				BodyLimit:      srv.BodyLimit,
				RequestTimeout: srv.RequestTimeout,
				DefaultProfile: a.cfg.Composer.DefaultProfile,
			}, a.composer, a.catalog, sessions)

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			log.Info().Int("profiles", len(a.catalog.List())).Msg("Starting gradeassist API server")
			return server.Start(ctx)
		},
	}
}
