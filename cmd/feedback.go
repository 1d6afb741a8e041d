package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/gradeassist/internal/fidelity"
	"github.com/gradeassist/internal/quickaction"
	"github.com/gradeassist/pkg/models"
)

// GradeCommand returns the grade command
func GradeCommand() *cli.Command {
	return &cli.Command{
		Name:   "grade",
		Usage:  "Recommend a grade from analyzer findings",
		Flags:  []cli.Flag{findingsFlag()},
		Action: runGrade,
	}
}

func runGrade(c *cli.Context) error {
	a, err := loadApp(c)
	if err != nil {
		return err
	}
	store, err := loadFindings(c.String("findings"))
	if err != nil {
		return err
	}
	rec := a.composer.Recommender().Recommend(store.All())
	return writeJSON(c.App.Writer, map[string]interface{}{
		"grade":               rec.Grade,
		"label":               a.composer.Labels().Label(rec.Grade),
		"rationale":           rec.Rationale,
		"driving_finding_ids": rec.DrivingFindingIDs,
	})
}

// ComposeCommand returns the compose command
func ComposeCommand() *cli.Command {
	flags := append([]cli.Flag{findingsFlag()}, instructionFlags()...)
	flags = append(flags, profileFlags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the structured draft instead of the text",
	})
	return &cli.Command{
		Name:   "compose",
		Usage:  "Write a feedback draft in a teacher's style",
		Flags:  flags,
		Action: runCompose,
	}
}

func runCompose(c *cli.Context) error {
	a, err := loadApp(c)
	if err != nil {
		return err
	}
	store, err := loadFindings(c.String("findings"))
	if err != nil {
		return err
	}
	in, err := instructions(c)
	if err != nil {
		return err
	}
	profile, err := a.profile(c)
	if err != nil {
		return err
	}

	draft, err := a.composer.ComposeContext(c.Context, store, in, profile)
	if err != nil {
		return fmt.Errorf("failed to compose feedback: %w", err)
	}
	score := fidelity.Score(draft, profile)
	draft.FidelityScore = &score
	log.Info().Int("fidelity", score).Str("profile", profile.TeacherID).Msg("Composed draft")

	if c.Bool("json") {
		return writeJSON(c.App.Writer, draft)
	}
	_, err = fmt.Fprintln(c.App.Writer, draft.Text)
	return err
}

// ScoreCommand returns the score command
func ScoreCommand() *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:     "draft",
			Aliases:  []string{"d"},
			Usage:    "Feedback `FILE`: a draft JSON, or plain text with --text",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "text",
			Usage: "Treat the draft file as plain text",
		},
	}, profileFlags()...)
	return &cli.Command{
		Name:   "score",
		Usage:  "Measure how closely feedback matches a teacher's style",
		Flags:  flags,
		Action: runScore,
	}
}

func runScore(c *cli.Context) error {
	a, err := loadApp(c)
	if err != nil {
		return err
	}
	profile, err := a.profile(c)
	if err != nil {
		return err
	}

	var text string
	if c.Bool("text") {
		raw, err := readInput(c.String("draft"))
		if err != nil {
			return err
		}
		text = string(raw)
	} else {
		var draft models.FeedbackDraft
		if err := readJSON(c.String("draft"), &draft); err != nil {
			return err
		}
		text = draft.Text
		if text == "" {
			text = models.RenderSections(draft.Sections)
		}
	}
	return writeJSON(c.App.Writer, fidelity.Analyze(text, profile))
}

// ActionCommand returns the quick action command
func ActionCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "draft",
			Aliases:  []string{"d"},
			Usage:    "Draft JSON `FILE` produced by compose --json",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "action",
			Usage:    "One of summarize_key_issues, add_suggested_improvements, highlight_strengths, suggest_next_steps, regenerate",
			Required: true,
		},
		findingsFlag(),
	}
	flags = append(flags, instructionFlags()...)
	flags = append(flags, profileFlags()...)
	return &cli.Command{
		Name:   "action",
		Usage:  "Apply a quick action to a draft and print the new revision as JSON",
		Flags:  flags,
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	action := models.ActionName(c.String("action"))
	if !quickaction.Known(action) {
		return &models.UnknownActionError{Action: action}
	}
	a, err := loadApp(c)
	if err != nil {
		return err
	}
	var draft models.FeedbackDraft
	if err := readJSON(c.String("draft"), &draft); err != nil {
		return err
	}
	store, err := loadFindings(c.String("findings"))
	if err != nil {
		return err
	}
	in, err := instructions(c)
	if err != nil {
		return err
	}
	profile, err := a.profile(c)
	if err != nil {
		return err
	}

	next, err := quickaction.NewTransformer(a.composer).ApplyContext(c.Context, draft, action, quickaction.Inputs{
		Findings:     store,
		Instructions: in,
		Profile:      profile,
	})
	if models.IsNoOp(err) {
		log.Info().Str("action", string(action)).Msg("Action left the draft unchanged")
		return writeJSON(c.App.Writer, draft)
	}
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, next)
}
