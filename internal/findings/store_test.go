package findings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeassist/pkg/models"
)

func sampleFindings() []models.Finding {
	return []models.Finding{
		{ID: "s1", Kind: models.KindStrength, Title: "Good application of React hooks", Severity: models.SeverityHigh},
		{ID: "i1", Kind: models.KindIssue, Title: "Missing error handling", Severity: models.SeverityMedium, SuggestedFix: "Check response.ok before parsing"},
		{ID: "i2", Kind: models.KindIssue, Title: "Global state", Severity: models.SeverityHigh},
		{ID: "i3", Kind: models.KindIssue, Title: "Inline styles", Severity: models.SeverityLow},
		{ID: "i4", Kind: models.KindIssue, Title: "Unused imports", Severity: models.SeverityMedium},
	}
}

func TestNewStore_KeepsInsertionOrder(t *testing.T) {
	s, err := NewStore(sampleFindings())
	require.NoError(t, err)

	assert.Equal(t, 5, s.Len())
	assert.Equal(t, []string{"s1", "i1", "i2", "i3", "i4"}, s.IDs())
	assert.Len(t, s.Issues(), 4)
	assert.Len(t, s.Strengths(), 1)

	strength, ok := s.Get("s1")
	require.True(t, ok)
	assert.Equal(t, models.SeverityNone, strength.Severity, "strength severity should be cleared")
}

func TestNewStore_Rejects(t *testing.T) {
	tests := []struct {
		name string
		list []models.Finding
	}{
		{"missing id", []models.Finding{{Kind: models.KindIssue, Title: "x", Severity: models.SeverityLow}}},
		{"duplicate id", []models.Finding{
			{ID: "a", Kind: models.KindStrength, Title: "x"},
			{ID: "a", Kind: models.KindStrength, Title: "y"},
		}},
		{"missing title", []models.Finding{{ID: "a", Kind: models.KindStrength}}},
		{"issue without severity", []models.Finding{{ID: "a", Kind: models.KindIssue, Title: "x"}}},
		{"unknown kind", []models.Finding{{ID: "a", Kind: "remark", Title: "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStore(tt.list)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidFinding))
		})
	}
}

func TestIssuesBySeverity_StableWithinSeverity(t *testing.T) {
	s := MustStore(sampleFindings())

	var ids []string
	for _, f := range s.IssuesBySeverity() {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"i2", "i1", "i4", "i3"}, ids)
	assert.Equal(t, 2, s.CountBySeverity(models.SeverityMedium))
}

func TestStore_NilSafe(t *testing.T) {
	var s *Store
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.All())
	_, ok := s.Get("x")
	assert.False(t, ok)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := MustStore(sampleFindings())
	all := s.All()
	all[0].Title = "mutated"

	f, _ := s.Get("s1")
	assert.Equal(t, "Good application of React hooks", f.Title)
}
