package fidelity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeassist/internal/feedback"
	"github.com/gradeassist/internal/findings"
	"github.com/gradeassist/pkg/models"
)

func fixtureStore() *findings.Store {
	return findings.MustStore([]models.Finding{
		{ID: "s1", Kind: models.KindStrength, Title: "Good application of React hooks",
			Description: "Effective use of useState and useEffect for local state"},
		{ID: "s2", Kind: models.KindStrength, Title: "Clean pagination implementation",
			Description: "Pagination is implemented in a reusable way"},
		{ID: "i1", Kind: models.KindIssue, Title: "Global state management", Severity: models.SeverityHigh,
			Description: "Cart state is stored in a global variable, which makes it hard to test",
			SuggestedFix: "Move the cart state into a React context"},
		{ID: "i2", Kind: models.KindIssue, Title: "Missing error handling", Severity: models.SeverityMedium,
			Description:  "API calls lack try/catch blocks and never check response.ok",
			SuggestedFix: "Wrap fetch calls in try/catch and check response.ok before parsing"},
		{ID: "i3", Kind: models.KindIssue, Title: "Inline styles", Severity: models.SeverityLow,
			Description: "Several components use inline style objects"},
	})
}

func fixtureInstructions() models.Instructions {
	return models.Instructions{
		AssignmentText:  "Build a web application that displays a list of products from an API. Include pagination and a shopping cart.",
		AdditionalNotes: "Focus on code organization and responsive design.",
		StudentName:     "Viktor",
	}
}

func profile(tone models.Tone, level models.LanguageLevel, length models.SentenceLength) models.StyleProfile {
	return models.StyleProfile{
		TeacherID:               "t",
		DisplayName:             "Maria Andersson",
		Tone:                    tone,
		LanguageLevel:           level,
		FocusAreas:              []string{"code quality", "testing"},
		PreferredSentenceLength: length,
	}
}

func TestScore_RoundTripAcrossProfiles(t *testing.T) {
	composer := feedback.NewComposer()
	stores := map[string]*findings.Store{
		"full": fixtureStore(),
		"no strengths": findings.MustStore([]models.Finding{
			{ID: "i1", Kind: models.KindIssue, Title: "Missing error handling", Severity: models.SeverityHigh},
		}),
		"no findings": findings.MustStore(nil),
	}

	identities := map[string]func(*models.StyleProfile){
		"named":   func(*models.StyleProfile) {},
		"id only": func(p *models.StyleProfile) { p.DisplayName = "" },
		"anonymous": func(p *models.StyleProfile) {
			p.TeacherID = ""
			p.DisplayName = ""
		},
	}

	for name, store := range stores {
		for identity, strip := range identities {
			for _, tone := range models.Tones {
				for _, level := range models.LanguageLevels {
					for _, length := range models.SentenceLengths {
						p := profile(tone, level, length)
						strip(&p)
						t.Run(fmt.Sprintf("%s/%s/%s/%s/%s", name, identity, tone, level, length), func(t *testing.T) {
							draft, err := composer.Compose(store, fixtureInstructions(), p)
							require.NoError(t, err)

							b := Analyze(draft.Text, p)
							assert.GreaterOrEqual(t, b.Total, 90, "breakdown %+v\n%s", b, draft.Text)
							assert.Equal(t, 100.0, b.Tone, "tone")
							assert.Equal(t, 100.0, b.Level, "level")
							assert.Equal(t, 100.0, b.Framing, "framing")
						})
					}
				}
			}
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	p := profile(models.ToneEncouragingDirect, models.LevelAdvanced, models.LengthLong)
	draft, err := feedback.NewComposer().Compose(fixtureStore(), fixtureInstructions(), p)
	require.NoError(t, err)

	first := Score(draft, p)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(draft, p))
	}
}

func TestScore_MismatchedProfileScoresLower(t *testing.T) {
	composedFor := profile(models.ToneEncouraging, models.LevelBasic, models.LengthShort)
	draft, err := feedback.NewComposer().Compose(fixtureStore(), fixtureInstructions(), composedFor)
	require.NoError(t, err)

	other := profile(models.ToneCritical, models.LevelAdvanced, models.LengthLong)
	other.Salutation = "Dear {{student}},"
	other.Signoff = "Regards"
	assert.Less(t, Score(draft, other), Score(draft, composedFor))
	assert.Equal(t, 0.0, Analyze(draft.Text, other).Framing)
}

func TestAnalyze_Framing(t *testing.T) {
	p := profile(models.ToneNeutral, models.LevelBasic, models.LengthShort)

	both := Analyze("Hi Sam,\n\nThe code runs.\n\nBest regards,\nMaria Andersson", p)
	assert.Equal(t, 100.0, both.Framing)

	one := Analyze("Hi Sam,\n\nThe code runs.", p)
	assert.Equal(t, 50.0, one.Framing)

	none := Analyze("The code runs.", p)
	assert.Equal(t, 0.0, none.Framing)
}

func TestAnalyze_EmptyBody(t *testing.T) {
	p := profile(models.ToneNeutral, models.LevelBasic, models.LengthShort)
	b := Analyze("Hi,\n\nBest regards,\nMaria Andersson", p)

	assert.Equal(t, 0, b.Sentences)
	assert.Equal(t, 0.0, b.Tone)
	assert.Equal(t, 0.0, b.Level)
	assert.Equal(t, 0.0, b.Length)
	assert.Equal(t, 20, b.Total)
}

func TestAnalyze_Measures(t *testing.T) {
	p := profile(models.ToneDirect, models.LevelIntermediate, models.LengthShort)
	text := "Fix the loop, then rerun the tests. Perhaps rename the module. The build passes.\n- Add a test"

	b := Analyze(text, p)
	assert.Equal(t, 4, b.Sentences)
	assert.InDelta(t, 1.0/3.0, b.SoftenedRatio, 1e-9)
	assert.InDelta(t, (1.25-1)/3, b.Complexity, 1e-9)
	assert.InDelta(t, 4.25, b.AvgWords, 1e-9)
	assert.Equal(t, models.LengthShort, b.LengthBucket)
	assert.Equal(t, 100.0, b.Length)
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First one. Second one!\n1. Step one\n2) Step two\n* Bullet\n\nCheck response.ok now? Yes")
	assert.Equal(t, []string{"First one.", "Second one!", "Step one", "Step two", "Bullet", "Check response.ok now?", "Yes"}, got)
}

func TestLengthScore(t *testing.T) {
	assert.Equal(t, 100.0, lengthScore(models.LengthMedium, models.LengthMedium))
	assert.Equal(t, 60.0, lengthScore(models.LengthShort, models.LengthMedium))
	assert.Equal(t, 20.0, lengthScore(models.LengthShort, models.LengthLong))
}
