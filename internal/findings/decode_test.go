package findings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeassist/pkg/models"
)

func TestDecode_Array(t *testing.T) {
	raw := `[
		{"id": "i1", "kind": "issue", "title": "Missing error handling", "severity": "medium",
		 "description": "API calls lack try/catch", "suggested_fix": "Wrap fetch calls in try/catch"},
		{"id": "s1", "kind": "strength", "title": "Clean pagination"}
	]`

	store, stats, err := Decode([]byte(raw))
	require.NoError(t, err)
	assert.False(t, stats.WasRepaired)
	assert.Equal(t, []string{"i1", "s1"}, store.IDs())

	issue, _ := store.Get("i1")
	assert.Equal(t, models.SeverityMedium, issue.Severity)
	assert.Equal(t, "Wrap fetch calls in try/catch", issue.SuggestedFix)
}

func TestDecode_IssuesAndStrengthsEnvelope(t *testing.T) {
	raw := `{
		"strengths": [{"title": "Good application of React hooks", "description": "Effective use of useState"}],
		"issues": [{"title": "Global state", "severity": "critical", "code": "window.cart = []"}]
	}`

	store, _, err := Decode([]byte(raw))
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	issues := store.Issues()
	require.Len(t, issues, 1)
	assert.Equal(t, models.SeverityHigh, issues[0].Severity)
	assert.Equal(t, "window.cart = []", issues[0].EvidenceSnippet)
	assert.NotEmpty(t, issues[0].ID)
	assert.Len(t, store.Strengths(), 1)
}

func TestDecode_GeneratedIDsAreUniqueAndStable(t *testing.T) {
	raw := `{"findings": [
		{"kind": "strength", "title": "Readable code"},
		{"kind": "strength", "title": "Readable code"}
	]}`

	first, _, err := Decode([]byte(raw))
	require.NoError(t, err)
	second, _, err := Decode([]byte(raw))
	require.NoError(t, err)

	ids := first.IDs()
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
	assert.Equal(t, ids, second.IDs())
}

func TestDecode_RepairsFencedTrailingCommas(t *testing.T) {
	raw := "Here are the findings:\n```json\n[{\"id\": \"s1\", \"kind\": \"strength\", \"title\": \"Tests\",},]\n```"

	store, stats, err := Decode([]byte(raw))
	require.NoError(t, err)
	assert.True(t, stats.WasRepaired)
	assert.Contains(t, stats.RepairStrategies, "trailing_commas")
	assert.Equal(t, 1, store.Len())
}

func TestDecode_RepairsTruncatedPayload(t *testing.T) {
	raw := `[{"id": "s1", "kind": "strength", "title": "Tests"}`

	store, stats, err := Decode([]byte(raw))
	require.NoError(t, err)
	assert.True(t, stats.WasRepaired)
	assert.Equal(t, 1, store.Len())
}

func TestDecode_NoJSON(t *testing.T) {
	_, _, err := Decode([]byte("the analyzer crashed"))
	assert.Error(t, err)
}

func TestDecode_InvalidFindingSurfaces(t *testing.T) {
	_, _, err := Decode([]byte(`[{"id": "i1", "kind": "issue", "title": "x", "severity": "urgent"}]`))
	assert.ErrorIs(t, err, ErrInvalidFinding)
}
