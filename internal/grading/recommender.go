package grading

import (
	"fmt"
	"strings"

	"github.com/gradeassist/pkg/models"
)

// Policy holds the strength-to-issue ratios that separate the grades.
// A ratio equal to a threshold falls to the lower grade.
type Policy struct {
	PassRatio        float64 `koanf:"pass_ratio"`
	DistinctionRatio float64 `koanf:"distinction_ratio"`
}

// DefaultPolicy returns the standard thresholds
func DefaultPolicy() Policy {
	return Policy{PassRatio: 0.25, DistinctionRatio: 1.0}
}

// Recommender maps findings to a grade
type Recommender struct {
	policy Policy
}

// NewRecommender creates a recommender. Invalid thresholds fall back to the defaults.
func NewRecommender(p Policy) *Recommender {
	if p.PassRatio <= 0 || p.DistinctionRatio <= p.PassRatio {
		p = DefaultPolicy()
	}
	return &Recommender{policy: p}
}

// Recommend applies the default policy
func Recommend(findings []models.Finding) models.GradeRecommendation {
	return NewRecommender(DefaultPolicy()).Recommend(findings)
}

// Recommend is a pure function of the findings. Any high-severity issue pins the grade
// to the lowest passing grade whatever the strength count.
func (r *Recommender) Recommend(findings []models.Finding) models.GradeRecommendation {
	if len(findings) == 0 {
		return models.GradeRecommendation{
			Grade:     models.GradeFail,
			Rationale: "insufficient evidence: the analyzer reported no findings",
		}
	}

	var (
		strengths   []string
		issueIDs    []string
		highIDs     []string
		highTitles  []string
		issueWeight int
	)
	for _, f := range findings {
		switch {
		case f.IsStrength():
			strengths = append(strengths, f.ID)
		case f.IsIssue():
			issueIDs = append(issueIDs, f.ID)
			issueWeight += f.Severity.Weight()
			if f.Severity == models.SeverityHigh {
				highIDs = append(highIDs, f.ID)
				highTitles = append(highTitles, f.Title)
			}
		}
	}

	if len(highIDs) > 0 {
		return models.GradeRecommendation{
			Grade: models.LowestPassingGrade,
			Rationale: fmt.Sprintf("capped at the lowest passing grade because of high-severity issues: %s",
				strings.Join(highTitles, "; ")),
			DrivingFindingIDs: highIDs,
		}
	}

	if issueWeight == 0 {
		if len(strengths) == 0 {
			return models.GradeRecommendation{
				Grade:     models.GradeFail,
				Rationale: "insufficient evidence: no strengths or weighted issues were reported",
			}
		}
		return models.GradeRecommendation{
			Grade:             models.GradePassWithDistinction,
			Rationale:         fmt.Sprintf("%d strengths and no issues", len(strengths)),
			DrivingFindingIDs: strengths,
		}
	}

	ratio := float64(len(strengths)) / float64(issueWeight)
	summary := fmt.Sprintf("%d strengths against %d issues with severity weight %d (ratio %.2f)",
		len(strengths), len(issueIDs), issueWeight, ratio)

	switch {
	case ratio > r.policy.DistinctionRatio:
		return models.GradeRecommendation{
			Grade:             models.GradePassWithDistinction,
			Rationale:         summary + "; strengths clearly outweigh the issues",
			DrivingFindingIDs: strengths,
		}
	case ratio > r.policy.PassRatio:
		return models.GradeRecommendation{
			Grade:             models.GradePass,
			Rationale:         summary + "; the work meets the requirements with room to improve",
			DrivingFindingIDs: append(append([]string(nil), strengths...), issueIDs...),
		}
	default:
		return models.GradeRecommendation{
			Grade:             models.GradeFail,
			Rationale:         summary + "; the issues outweigh the strengths",
			DrivingFindingIDs: issueIDs,
		}
	}
}
