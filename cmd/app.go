package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/gradeassist/internal/aiconnectors"
	"github.com/gradeassist/internal/config"
	"github.com/gradeassist/internal/feedback"
	"github.com/gradeassist/internal/findings"
	"github.com/gradeassist/internal/grading"
	"github.com/gradeassist/internal/logging"
	"github.com/gradeassist/internal/style"
	"github.com/gradeassist/pkg/models"
)

// app bundles what every command needs after the configuration is loaded
type app struct {
	cfg      *config.Config
	catalog  *style.Catalog
	composer *feedback.Composer
}

// loadApp reads and validates the configuration and wires the composer
func loadApp(c *cli.Context) (*app, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !c.IsSet("log-level") {
		if err := logging.SetupWriter(c.App.ErrWriter, cfg.General.LogLevel, cfg.General.LogPretty && !c.Bool("json-logs")); err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	labels, err := cfg.GradeLabels()
	if err != nil {
		return nil, err
	}

	opts := []feedback.Option{
		feedback.WithRecommender(grading.NewRecommender(cfg.Grading)),
		feedback.WithGradeLabels(labels),
	}
	if cfg.LLM.Enabled {
		connector, err := aiconnectors.NewConnector(c.Context, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM connector: %w", err)
		}
		log.Debug().Str("provider", string(connector.Provider())).Str("model", connector.Model()).Msg("Using LLM subject source")
		opts = append(opts, feedback.WithSubjectSource(aiconnectors.NewSubjectSource(connector)))
	}

	return &app{cfg: cfg, catalog: catalog, composer: feedback.NewComposer(opts...)}, nil
}

// profile returns the profile named by --profile, or the configured default
func (a *app) profile(c *cli.Context) (models.StyleProfile, error) {
	if path := c.String("profile-file"); path != "" {
		var p models.StyleProfile
		if err := readJSON(path, &p); err != nil {
			return models.StyleProfile{}, err
		}
		return style.Normalize(p)
	}
	id := c.String("profile")
	if id == "" {
		id = a.cfg.Composer.DefaultProfile
	}
	p, ok := a.catalog.Get(id)
	if !ok {
		return models.StyleProfile{}, fmt.Errorf("profile %q is not configured", id)
	}
	return p, nil
}

// instructions gathers the assignment from flags; --assignment names a file
func instructions(c *cli.Context) (models.Instructions, error) {
	in := models.Instructions{
		AssignmentText:  c.String("assignment-text"),
		AdditionalNotes: c.String("notes"),
		StudentName:     c.String("student"),
	}
	if path := c.String("assignment"); path != "" {
		raw, err := readInput(path)
		if err != nil {
			return in, err
		}
		in.AssignmentText = strings.TrimSpace(string(raw))
	}
	return in, nil
}

// loadFindings decodes analyzer output, repairing malformed JSON
func loadFindings(path string) (*findings.Store, error) {
	if path == "" {
		return findings.NewStore(nil)
	}
	raw, err := readInput(path)
	if err != nil {
		return nil, err
	}
	store, stats, err := findings.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to read findings from %s: %w", path, err)
	}
	if stats.WasRepaired {
		log.Warn().Str("path", path).Strs("strategies", stats.RepairStrategies).Msg("Findings JSON was repaired")
	}
	return store, nil
}

// readInput reads a file, or stdin for "-"
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return raw, nil
}

func readJSON(path string, v interface{}) error {
	raw, err := readInput(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func findingsFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "findings",
		Aliases: []string{"f"},
		Usage:   "Analyzer findings JSON `FILE` (- for stdin)",
	}
}

func profileFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"p"},
			Usage:   "Teacher profile `ID` from the configuration",
		},
		&cli.StringFlag{
			Name:  "profile-file",
			Usage: "Style profile JSON `FILE`, overrides --profile",
		},
	}
}

func instructionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "assignment",
			Aliases: []string{"a"},
			Usage:   "Assignment instructions `FILE`",
		},
		&cli.StringFlag{
			Name:  "assignment-text",
			Usage: "Assignment instructions inline",
		},
		&cli.StringFlag{
			Name:  "notes",
			Usage: "Additional teacher notes",
		},
		&cli.StringFlag{
			Name:  "student",
			Usage: "Student name for the salutation",
		},
	}
}
