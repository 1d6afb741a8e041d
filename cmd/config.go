package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/gradeassist/internal/aiconnectors"
	"github.com/gradeassist/internal/config"
)

// ConfigCommand returns the config command
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Initialize a new configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
						Value:   "gradeassist.toml",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: runConfigInit,
			},
			{
				Name:  "validate",
				Usage: "Validate the configuration file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "check-llm",
						Usage: "Also check that the configured Ollama server has the model",
					},
				},
				Action: runConfigValidate,
			},
		},
	}
}

// runConfigInit writes the sample and loads it back so a broken sample never goes unnoticed
func runConfigInit(c *cli.Context) error {
	path := c.String("output")
	if c.Bool("force") {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to replace %s: %w", path, err)
		}
	}
	if err := config.InitConfig(path); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}
	log.Debug().Str("path", path).Msg("Wrote sample configuration")
	fmt.Fprintf(c.App.Writer, "Created %s with %d profiles (default %q)\n",
		path, len(catalog.List()), cfg.Composer.DefaultProfile)
	return nil
}

func runConfigValidate(c *cli.Context) error {
	a, err := loadApp(c)
	if err != nil {
		return err
	}

	if c.Bool("check-llm") && a.cfg.LLM.Enabled && a.cfg.LLM.Provider == aiconnectors.ProviderOllama {
		if err := aiconnectors.CheckOllama(c.Context, a.cfg.LLM); err != nil {
			return fmt.Errorf("llm check failed: %w", err)
		}
	}

	fmt.Fprintf(c.App.Writer, "Configuration is valid (%d profiles)\n", len(a.catalog.List()))
	return nil
}
