package models

import "strings"

// ActionName identifies a quick action
type ActionName string

const (
	ActionSummarizeKeyIssues       ActionName = "summarize_key_issues"
	ActionAddSuggestedImprovements ActionName = "add_suggested_improvements"
	ActionHighlightStrengths       ActionName = "highlight_strengths"
	ActionSuggestNextSteps         ActionName = "suggest_next_steps"
	ActionRegenerate               ActionName = "regenerate"
)

// Actions lists every recognized quick action
var Actions = []ActionName{
	ActionSummarizeKeyIssues,
	ActionAddSuggestedImprovements,
	ActionHighlightStrengths,
	ActionSuggestNextSteps,
	ActionRegenerate,
}

// SectionKind names a paragraph of a feedback draft
type SectionKind string

const (
	SectionSalutation   SectionKind = "salutation"
	SectionOverview     SectionKind = "overview"
	SectionStrengths    SectionKind = "strengths"
	SectionIssues       SectionKind = "issues"
	SectionImprovements SectionKind = "improvements"
	SectionNextSteps    SectionKind = "next_steps"
	SectionGrade        SectionKind = "grade"
	SectionSignoff      SectionKind = "signoff"
)

// Layout controls how the lines of a section are joined
type Layout string

const (
	LayoutProse Layout = "prose"
	LayoutList  Layout = "list"
)

// Section is one paragraph of a draft
type Section struct {
	Kind   SectionKind `json:"kind"`
	Layout Layout      `json:"layout"`
	Lines  []string    `json:"lines"`
}

// Render returns the paragraph text
func (s Section) Render() string {
	if s.Layout == LayoutList {
		return strings.Join(s.Lines, "\n")
	}
	return strings.Join(s.Lines, " ")
}

// Clone returns a deep copy of the section
func (s Section) Clone() Section {
	s.Lines = append([]string(nil), s.Lines...)
	return s
}

// FeedbackDraft is one revision of the feedback text.
// Text is always the rendering of Sections.
type FeedbackDraft struct {
	Text             string       `json:"text"`
	Sections         []Section    `json:"sections"`
	SourceFindingIDs []string     `json:"source_finding_ids"`
	AppliedActions   []ActionName `json:"applied_actions"`
	FidelityScore    *int         `json:"fidelity_score"`
	Revision         int          `json:"revision"`
	Generation       int          `json:"generation"`
}

// RenderSections joins section paragraphs with blank lines, skipping empty ones
func RenderSections(sections []Section) string {
	paragraphs := make([]string, 0, len(sections))
	for _, s := range sections {
		text := strings.TrimSpace(s.Render())
		if text == "" {
			continue
		}
		paragraphs = append(paragraphs, text)
	}
	return strings.Join(paragraphs, "\n\n")
}

// Clone returns a deep copy so callers can derive a new revision without aliasing
func (d FeedbackDraft) Clone() FeedbackDraft {
	out := d
	out.Sections = make([]Section, len(d.Sections))
	for i, s := range d.Sections {
		out.Sections[i] = s.Clone()
	}
	out.SourceFindingIDs = append([]string(nil), d.SourceFindingIDs...)
	out.AppliedActions = append([]ActionName(nil), d.AppliedActions...)
	if d.FidelityScore != nil {
		score := *d.FidelityScore
		out.FidelityScore = &score
	}
	return out
}

// SectionIndex returns the position of the first section of the given kind, or -1
func (d FeedbackDraft) SectionIndex(kind SectionKind) int {
	for i, s := range d.Sections {
		if s.Kind == kind {
			return i
		}
	}
	return -1
}

// Section returns the first section of the given kind
func (d FeedbackDraft) Section(kind SectionKind) (Section, bool) {
	if i := d.SectionIndex(kind); i >= 0 {
		return d.Sections[i], true
	}
	return Section{}, false
}

// HasFinding reports whether id is among the draft's source findings
func (d FeedbackDraft) HasFinding(id string) bool {
	for _, existing := range d.SourceFindingIDs {
		if existing == id {
			return true
		}
	}
	return false
}

// Version identifies a draft revision within a session
type Version struct {
	Generation int `json:"generation"`
	Revision   int `json:"revision"`
}

// Version returns the (generation, revision) pair of the draft
func (d FeedbackDraft) Version() Version {
	return Version{Generation: d.Generation, Revision: d.Revision}
}
