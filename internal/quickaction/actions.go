package quickaction

import (
	"fmt"
	"strings"

	"github.com/gradeassist/internal/findings"
	"github.com/gradeassist/pkg/models"
)

// edit rewrites the sections of a cloned draft and returns the ids of the findings it referenced
type edit func(d *models.FeedbackDraft, store *findings.Store, p models.StyleProfile) []string

var edits = map[models.ActionName]edit{
	models.ActionSummarizeKeyIssues:       summarizeKeyIssues,
	models.ActionAddSuggestedImprovements: addSuggestedImprovements,
	models.ActionHighlightStrengths:       highlightStrengths,
	models.ActionSuggestNextSteps:         suggestNextSteps,
}

// summarizeKeyIssues replaces the issues paragraph with one "- Title" line per issue, highest severity first
func summarizeKeyIssues(d *models.FeedbackDraft, store *findings.Store, _ models.StyleProfile) []string {
	issues := store.IssuesBySeverity()
	if len(issues) == 0 {
		return nil
	}
	lines := make([]string, len(issues))
	ids := make([]string, len(issues))
	for i, f := range issues {
		lines[i] = "- " + f.Title
		ids[i] = f.ID
	}
	sec := models.Section{Kind: models.SectionIssues, Layout: models.LayoutList, Lines: lines}

	if i := d.SectionIndex(models.SectionIssues); i >= 0 {
		d.Sections[i] = sec
	} else {
		insertAt(d, firstIndex(d, len(d.Sections), models.SectionImprovements, models.SectionNextSteps, models.SectionGrade, models.SectionSignoff), sec)
	}
	return ids
}

// addSuggestedImprovements lists every suggested fix whose exact text is not yet in the draft
func addSuggestedImprovements(d *models.FeedbackDraft, store *findings.Store, p models.StyleProfile) []string {
	text := models.RenderSections(d.Sections)
	var lines, ids []string
	for _, f := range store.IssuesBySeverity() {
		fix := strings.TrimSpace(f.SuggestedFix)
		if fix == "" || strings.Contains(text, fix) {
			continue
		}
		lines = append(lines, "- "+fix)
		ids = append(ids, f.ID)
	}
	if len(lines) == 0 {
		return nil
	}

	if i := d.SectionIndex(models.SectionImprovements); i >= 0 {
		d.Sections[i].Lines = append(d.Sections[i].Lines, lines...)
		return ids
	}
	sec := models.Section{
		Kind:   models.SectionImprovements,
		Layout: models.LayoutList,
		Lines:  append([]string{improvementIntros.at(p.Tone)}, lines...),
	}
	at := d.SectionIndex(models.SectionIssues) + 1
	if at == 0 {
		at = firstIndex(d, len(d.Sections), models.SectionNextSteps, models.SectionGrade, models.SectionSignoff)
	}
	insertAt(d, at, sec)
	return ids
}

// highlightStrengths moves the strengths paragraph right after the salutation and leads it with the tone's intensifier
func highlightStrengths(d *models.FeedbackDraft, store *findings.Store, p models.StyleProfile) []string {
	from := d.SectionIndex(models.SectionStrengths)
	if from < 0 {
		return nil
	}
	sec := d.Sections[from]
	intensifier := strengthIntensifiers.at(p.Tone)
	if len(sec.Lines) == 0 || sec.Lines[0] != intensifier {
		sec.Lines = append([]string{intensifier}, sec.Lines...)
	}

	removeAt(d, from)
	insertAt(d, d.SectionIndex(models.SectionSalutation)+1, sec)

	var ids []string
	for _, f := range store.Strengths() {
		ids = append(ids, f.ID)
	}
	return ids
}

// suggestNextSteps puts up to three numbered steps from the most severe issues right before the signoff
func suggestNextSteps(d *models.FeedbackDraft, store *findings.Store, p models.StyleProfile) []string {
	issues := store.IssuesBySeverity()
	if len(issues) == 0 {
		return nil
	}
	if len(issues) > maxNextSteps {
		issues = issues[:maxNextSteps]
	}

	lines := []string{nextStepIntros.at(p.Tone)}
	ids := make([]string, 0, len(issues))
	for i, f := range issues {
		step := strings.TrimSpace(f.SuggestedFix)
		if step == "" {
			step = "Revisit " + f.Title
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, step))
		ids = append(ids, f.ID)
	}

	if i := d.SectionIndex(models.SectionNextSteps); i >= 0 {
		removeAt(d, i)
	}
	insertAt(d, firstIndex(d, len(d.Sections), models.SectionSignoff), models.Section{
		Kind:   models.SectionNextSteps,
		Layout: models.LayoutList,
		Lines:  lines,
	})
	return ids
}

// firstIndex returns the position of the first present section among kinds, or fallback
func firstIndex(d *models.FeedbackDraft, fallback int, kinds ...models.SectionKind) int {
	for _, k := range kinds {
		if i := d.SectionIndex(k); i >= 0 {
			return i
		}
	}
	return fallback
}

func insertAt(d *models.FeedbackDraft, i int, sec models.Section) {
	d.Sections = append(d.Sections, models.Section{})
	copy(d.Sections[i+1:], d.Sections[i:])
	d.Sections[i] = sec
}

func removeAt(d *models.FeedbackDraft, i int) {
	d.Sections = append(d.Sections[:i], d.Sections[i+1:]...)
}
