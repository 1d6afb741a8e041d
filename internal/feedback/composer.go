package feedback

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gradeassist/internal/findings"
	"github.com/gradeassist/internal/grading"
	"github.com/gradeassist/internal/style"
	"github.com/gradeassist/pkg/models"
)

// Composer writes feedback drafts in a teacher's style
type Composer struct {
	recommender *grading.Recommender
	labels      models.GradeLabels
	subjects    SubjectSource
}

// Option configures a Composer
type Option func(*Composer)

// WithRecommender sets the grading policy embedded in the grade paragraph
func WithRecommender(r *grading.Recommender) Option {
	return func(c *Composer) {
		if r != nil {
			c.recommender = r
		}
	}
}

// WithGradeLabels sets the locale labels used for grades
func WithGradeLabels(labels models.GradeLabels) Option {
	return func(c *Composer) {
		if len(labels) > 0 {
			c.labels = labels
		}
	}
}

// WithSubjectSource replaces the heuristic assignment-subject extraction
func WithSubjectSource(s SubjectSource) Option {
	return func(c *Composer) {
		if s != nil {
			c.subjects = s
		}
	}
}

// NewComposer creates a composer with the default policy, English labels and heuristic subjects
func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		recommender: grading.NewRecommender(grading.DefaultPolicy()),
		labels:      models.DefaultGradeLabels(),
		subjects:    HeuristicSubject{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Labels returns the grade labels the composer writes with
func (c *Composer) Labels() models.GradeLabels { return c.labels }

// Recommender returns the grading policy the composer embeds
func (c *Composer) Recommender() *grading.Recommender { return c.recommender }

// Compose builds a revision 0 draft without a deadline
func (c *Composer) Compose(store *findings.Store, instructions models.Instructions, profile models.StyleProfile) (models.FeedbackDraft, error) {
	return c.ComposeContext(context.Background(), store, instructions, profile)
}

// ComposeContext builds a revision 0 draft. The draft is left unscored.
func (c *Composer) ComposeContext(ctx context.Context, store *findings.Store, instructions models.Instructions, profile models.StyleProfile) (models.FeedbackDraft, error) {
	if store.Len() == 0 && instructions.IsEmpty() {
		return models.FeedbackDraft{}, models.ErrEmptyInput
	}
	p, err := style.Normalize(profile)
	if err != nil {
		return models.FeedbackDraft{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.FeedbackDraft{}, err
	}

	n := clauseTarget(p)
	textCap, subjectCap := wordCaps(p, n)
	subject, err := c.subject(ctx, instructions, subjectCap)
	if err != nil {
		return models.FeedbackDraft{}, err
	}

	w := writer{profile: p, n: n, wordCap: textCap}
	rec := c.recommender.Recommend(store.All())

	sections := []models.Section{
		prose(models.SectionSalutation, style.RenderSalutation(p, instructions.StudentName)),
		prose(models.SectionOverview, w.overview(subject, instructions.AdditionalNotes)),
	}
	if strengths := store.Strengths(); len(strengths) > 0 {
		lines := make([]string, len(strengths))
		for i, f := range strengths {
			lines[i] = w.strength(f, i)
		}
		sections = append(sections, prose(models.SectionStrengths, lines...))
	}
	if issues := store.IssuesBySeverity(); len(issues) > 0 {
		lines := make([]string, len(issues))
		for i, f := range issues {
			lines[i] = w.issue(f, i)
		}
		sections = append(sections, prose(models.SectionIssues, lines...))
	}
	sections = append(sections,
		prose(models.SectionGrade, w.grade(c.labels.Label(rec.Grade)), w.closing(c.nextLabel(rec.Grade))),
		prose(models.SectionSignoff, style.RenderSignoff(p)),
	)

	log.Debug().
		Str("teacher", p.TeacherID).
		Str("grade", rec.Grade.String()).
		Int("findings", store.Len()).
		Msg("Composed feedback draft")

	return models.FeedbackDraft{
		Text:             models.RenderSections(sections),
		Sections:         sections,
		SourceFindingIDs: store.IDs(),
		AppliedActions:   []models.ActionName{},
	}, nil
}

// subject asks the configured source and falls back to the heuristic when it fails
func (c *Composer) subject(ctx context.Context, instructions models.Instructions, maxWords int) (string, error) {
	raw, err := c.subjects.Subject(ctx, instructions)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		log.Warn().Err(err).Msg("Subject source failed, using assignment text")
		raw, _ = HeuristicSubject{}.Subject(ctx, instructions)
	}
	return sanitizeSubject(raw, maxWords), nil
}

func (c *Composer) nextLabel(g models.Grade) string {
	if g >= models.GradePassWithDistinction {
		return ""
	}
	return c.labels.Label(g + 1)
}

func prose(kind models.SectionKind, lines ...string) models.Section {
	return models.Section{Kind: kind, Layout: models.LayoutProse, Lines: lines}
}

// writer renders the sentences of one draft for a normalized profile
type writer struct {
	profile models.StyleProfile
	n       int
	wordCap int
}

func (w writer) sentence(clauses []clause) string {
	return joinClauses(w.profile.LanguageLevel, clauses)
}

func (w writer) overview(subject, notes string) string {
	p := w.profile
	candidates := []clause{{"", overviewOpener(p.Tone, p.LanguageLevel) + " " + assignmentPhrase(subject)}}

	areas := p.FocusAreas
	if p.PreferredSentenceLength == models.LengthShort && len(areas) > 1 {
		areas = areas[:1]
	}
	inlined := make([]string, 0, len(areas))
	for _, a := range areas {
		if a = inline(a, minWordCap); a != "" {
			inlined = append(inlined, a)
		}
	}
	if len(inlined) > 0 {
		candidates = append(candidates, clause{"with", "particular attention to " + strings.Join(inlined, " and ")})
	}
	if p.PreferredSentenceLength == models.LengthLong {
		if note := inline(notes, w.wordCap); note != "" {
			candidates = append(candidates, clause{"alongside", "the additional note about " + note})
		}
	}
	return w.sentence(pick(w.n, candidates, overviewFillers))
}

func (w writer) strength(f models.Finding, idx int) string {
	p := w.profile
	candidates := []clause{{"", strengthOpener(p.Tone, p.LanguageLevel, idx) + " " + inline(f.Title, w.wordCap)}}
	if reason := inline(f.Description, w.wordCap); reason != "" {
		candidates = append(candidates, clause{reasonLeads.at(p.LanguageLevel), reason})
	}
	return w.sentence(pick(w.n, candidates, strengthFillers))
}

func (w writer) issue(f models.Finding, idx int) string {
	p := w.profile
	opener, fixLead := issueOpener(p.Tone, p.LanguageLevel, idx)
	candidates := []clause{{"", opener + " " + inline(f.Title, w.wordCap)}}
	n := w.n
	if fix := inline(f.SuggestedFix, w.wordCap); fix != "" {
		candidates = append(candidates, clause{fixLead, fix})
		if n < 2 {
			n = 2
		}
	}
	if reason := inline(f.Description, w.wordCap); reason != "" {
		candidates = append(candidates, clause{reasonLeads.at(p.LanguageLevel), reason})
	}
	return w.sentence(pick(n, candidates, issueFillers))
}

func (w writer) grade(label string) string {
	return w.sentence(pick(w.n, []clause{{"", "My recommended grade is " + label}}, gradeFillers))
}

func (w writer) closing(next string) string {
	all := closingClauses(w.profile.Tone, next)
	return w.sentence(pick(w.n, all, nil))
}
