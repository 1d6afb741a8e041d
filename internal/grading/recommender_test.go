package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gradeassist/pkg/models"
)

func issue(id, title string, sev models.Severity) models.Finding {
	return models.Finding{ID: id, Kind: models.KindIssue, Title: title, Severity: sev}
}

func strength(id string) models.Finding {
	return models.Finding{ID: id, Kind: models.KindStrength, Title: "strength " + id}
}

func TestRecommend_EmptyFindings(t *testing.T) {
	rec := Recommend(nil)
	assert.Equal(t, models.GradeFail, rec.Grade)
	assert.Contains(t, rec.Rationale, "insufficient evidence")
	assert.Empty(t, rec.DrivingFindingIDs)
}

func TestRecommend_SingleHighIssue(t *testing.T) {
	rec := Recommend([]models.Finding{issue("i1", "Missing error handling", models.SeverityHigh)})
	assert.Equal(t, models.LowestPassingGrade, rec.Grade)
	assert.Contains(t, rec.Rationale, "Missing error handling")
	assert.Equal(t, []string{"i1"}, rec.DrivingFindingIDs)
}

func TestRecommend_HighIssueCapsRegardlessOfStrengths(t *testing.T) {
	findings := []models.Finding{issue("i1", "Global state", models.SeverityHigh)}
	for n := 0; n < 20; n++ {
		findings = append(findings, strength(string(rune('a'+n))))
		rec := Recommend(findings)
		assert.LessOrEqual(t, int(rec.Grade), int(models.LowestPassingGrade), "with %d strengths", n+1)
	}
}

func TestRecommend_Ratios(t *testing.T) {
	tests := []struct {
		name     string
		findings []models.Finding
		want     models.Grade
	}{
		{"only strengths", []models.Finding{strength("a")}, models.GradePassWithDistinction},
		{"ratio above distinction", []models.Finding{strength("a"), strength("b"), strength("c"), issue("i", "x", models.SeverityMedium)}, models.GradePassWithDistinction},
		{"ratio equal to distinction falls to pass", []models.Finding{strength("a"), strength("b"), issue("i", "x", models.SeverityMedium)}, models.GradePass},
		{"pass", []models.Finding{strength("a"), issue("i", "x", models.SeverityMedium), issue("j", "y", models.SeverityLow)}, models.GradePass},
		{"ratio equal to pass falls to fail", []models.Finding{strength("a"), issue("i", "x", models.SeverityMedium), issue("j", "y", models.SeverityMedium)}, models.GradeFail},
		{"only issues", []models.Finding{issue("i", "x", models.SeverityLow)}, models.GradeFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recommend(tt.findings).Grade)
		})
	}
}

func TestRecommend_Deterministic(t *testing.T) {
	findings := []models.Finding{strength("a"), issue("i", "x", models.SeverityMedium)}
	assert.Equal(t, Recommend(findings), Recommend(findings))
}

func TestNewRecommender_CustomPolicy(t *testing.T) {
	strict := NewRecommender(Policy{PassRatio: 0.5, DistinctionRatio: 2})
	findings := []models.Finding{strength("a"), strength("b"), issue("i", "x", models.SeverityMedium)}
	assert.Equal(t, models.GradePass, strict.Recommend(findings).Grade)

	invalid := NewRecommender(Policy{PassRatio: 1, DistinctionRatio: 0.5})
	assert.Equal(t, DefaultPolicy(), invalid.policy)
}
