package style

import (
	"fmt"
	"strings"

	"github.com/gradeassist/pkg/models"
)

const (
	DefaultSalutation = "Hi {{student}},"
	DefaultSignoff    = "Best regards,\n{{teacher}}"
)

// ParseTone accepts the recognized tone values plus the human labels used in teacher
// profiles, e.g. "Encouraging & Direct". Unknown input maps to neutral.
func ParseTone(raw string) models.Tone {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" & ", "+", "&", "+", " and ", "+", " + ", "+", " ", "").Replace(s)
	t := models.Tone(s)
	if t.Valid() {
		return t
	}
	return models.ToneNeutral
}

// ParseLanguageLevel maps unknown input to intermediate
func ParseLanguageLevel(raw string) models.LanguageLevel {
	l := models.LanguageLevel(strings.ToLower(strings.TrimSpace(raw)))
	if l.Valid() {
		return l
	}
	return models.LevelIntermediate
}

// ParseSentenceLength maps unknown input to medium
func ParseSentenceLength(raw string) models.SentenceLength {
	s := models.SentenceLength(strings.ToLower(strings.TrimSpace(raw)))
	if s.Valid() {
		return s
	}
	return models.LengthMedium
}

// WithDefaults fills every defaultable field without validating focus areas.
// The scorer uses it because focus areas never affect the surface style.
func WithDefaults(p models.StyleProfile) models.StyleProfile {
	p.TeacherID = strings.TrimSpace(p.TeacherID)
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	if p.DisplayName == "" {
		p.DisplayName = p.TeacherID
	}
	p.Tone = ParseTone(string(p.Tone))
	p.LanguageLevel = ParseLanguageLevel(string(p.LanguageLevel))
	p.PreferredSentenceLength = ParseSentenceLength(string(p.PreferredSentenceLength))
	if strings.TrimSpace(p.Salutation) == "" {
		p.Salutation = DefaultSalutation
	}
	if strings.TrimSpace(p.Signoff) == "" {
		p.Signoff = DefaultSignoff
	}

	areas := make([]string, 0, len(p.FocusAreas))
	seen := make(map[string]bool, len(p.FocusAreas))
	for _, a := range p.FocusAreas {
		a = strings.TrimSpace(a)
		key := strings.ToLower(a)
		if a == "" || seen[key] {
			continue
		}
		seen[key] = true
		areas = append(areas, a)
	}
	p.FocusAreas = areas
	return p
}

// Normalize applies defaults and enforces the profile invariants
func Normalize(p models.StyleProfile) (models.StyleProfile, error) {
	p = WithDefaults(p)
	if len(p.FocusAreas) == 0 {
		return p, fmt.Errorf("%w: profile %q has no focus areas", models.ErrInvalidProfile, p.TeacherID)
	}
	return p, nil
}
