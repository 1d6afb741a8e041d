package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/gradeassist/internal/logging"
)

// NewApp builds the gradeassist command tree
func NewApp(version string) *cli.App {
	return &cli.App{
		Name:    "gradeassist",
		Usage:   "Grade recommendations and teacher-style feedback drafts from analyzer findings",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"GRADEASSIST_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error), overrides [general] log_level",
				Value: "info",
			},
			&cli.BoolFlag{
				Name:  "json-logs",
				Usage: "Write logs as JSON lines",
			},
		},
		Before: func(c *cli.Context) error {
			return logging.SetupWriter(c.App.ErrWriter, c.String("log-level"), !c.Bool("json-logs"))
		},
		Commands: []*cli.Command{
			GradeCommand(),
			ComposeCommand(),
			ScoreCommand(),
			ActionCommand(),
			APICommand(),
			ConfigCommand(),
		},
	}
}
