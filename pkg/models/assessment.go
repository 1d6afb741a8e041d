package models

import "strings"

// FindingKind distinguishes issues from strengths
type FindingKind string

const (
	KindIssue    FindingKind = "issue"
	KindStrength FindingKind = "strength"
)

// Severity represents the importance level of an issue. Strengths carry no severity.
type Severity string

const (
	SeverityNone   Severity = ""
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Weight returns the grading weight of an issue with this severity
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Valid reports whether s is one of the recognized issue severities
func (s Severity) Valid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// ParseSeverity normalizes analyzer output such as "High" or " MEDIUM "
func ParseSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high", "critical":
		return SeverityHigh
	case "medium", "warning":
		return SeverityMedium
	case "low", "info":
		return SeverityLow
	}
	return SeverityNone
}

// Finding represents one observation about a submission produced by the external analyzer.
// Findings are immutable once produced.
type Finding struct {
	ID              string      `json:"id"`
	Kind            FindingKind `json:"kind"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Severity        Severity    `json:"severity,omitempty"`
	EvidenceSnippet string      `json:"evidence_snippet,omitempty"`
	SuggestedFix    string      `json:"suggested_fix,omitempty"`
}

// IsIssue returns true if the finding is an issue
func (f Finding) IsIssue() bool {
	return f.Kind == KindIssue
}

// IsStrength returns true if the finding is a strength
func (f Finding) IsStrength() bool {
	return f.Kind == KindStrength
}

// HasFix returns true if the analyzer suggested a fix for the finding
func (f Finding) HasFix() bool {
	return strings.TrimSpace(f.SuggestedFix) != ""
}

// Instructions holds the assignment text the submission is assessed against
type Instructions struct {
	AssignmentText  string `json:"assignment_text"`
	AdditionalNotes string `json:"additional_notes,omitempty"`
	StudentName     string `json:"student_name,omitempty"`
}

// IsEmpty reports whether there is no assignment text or notes to work from
func (i Instructions) IsEmpty() bool {
	return strings.TrimSpace(i.AssignmentText) == "" && strings.TrimSpace(i.AdditionalNotes) == ""
}

// Grade is a position on the ordered grade scale. Labels are locale data and live in configuration.
type Grade int

const (
	GradeFail Grade = iota
	GradePass
	GradePassWithDistinction
)

// LowestPassingGrade is the grade a submission is pinned to when a high-severity issue exists
const LowestPassingGrade = GradePass

var gradeNames = map[Grade]string{
	GradeFail:                "fail",
	GradePass:                "pass",
	GradePassWithDistinction: "pass_with_distinction",
}

// String returns the locale-agnostic identifier of the grade
func (g Grade) String() string {
	if name, ok := gradeNames[g]; ok {
		return name
	}
	return "unknown"
}

// ParseGrade converts an identifier back into a Grade
func ParseGrade(name string) (Grade, bool) {
	for g, n := range gradeNames {
		if n == strings.ToLower(strings.TrimSpace(name)) {
			return g, true
		}
	}
	return GradeFail, false
}

// MarshalText encodes the grade as its identifier
func (g Grade) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText decodes an identifier produced by MarshalText
func (g *Grade) UnmarshalText(text []byte) error {
	parsed, ok := ParseGrade(string(text))
	if !ok {
		return &UnknownGradeError{Name: string(text)}
	}
	*g = parsed
	return nil
}

// GradeLabels maps grades to display labels for one locale
type GradeLabels map[Grade]string

// DefaultGradeLabels returns English labels
func DefaultGradeLabels() GradeLabels {
	return GradeLabels{
		GradeFail:                "Fail",
		GradePass:                "Pass",
		GradePassWithDistinction: "Pass with distinction",
	}
}

// Label returns the display label for g, falling back to the identifier
func (l GradeLabels) Label(g Grade) string {
	if label, ok := l[g]; ok && label != "" {
		return label
	}
	return g.String()
}

// GradeRecommendation is the recommender's output
type GradeRecommendation struct {
	Grade             Grade    `json:"grade"`
	Rationale         string   `json:"rationale"`
	DrivingFindingIDs []string `json:"driving_finding_ids,omitempty"`
}
