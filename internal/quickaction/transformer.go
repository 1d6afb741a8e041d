package quickaction

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/gradeassist/internal/feedback"
	"github.com/gradeassist/internal/fidelity"
	"github.com/gradeassist/internal/findings"
	"github.com/gradeassist/internal/style"
	"github.com/gradeassist/pkg/models"
)

// Inputs are the immutable assessment inputs a draft was composed from
type Inputs struct {
	Findings     *findings.Store
	Instructions models.Instructions
	Profile      models.StyleProfile
}

// Transformer applies quick actions to drafts. It never mutates the draft it is given.
type Transformer struct {
	composer *feedback.Composer
}

// NewTransformer creates a transformer that regenerates with the given composer
func NewTransformer(composer *feedback.Composer) *Transformer {
	if composer == nil {
		composer = feedback.NewComposer()
	}
	return &Transformer{composer: composer}
}

// Known reports whether action is a recognized quick action
func Known(action models.ActionName) bool {
	for _, a := range models.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Apply runs one quick action without a deadline
func (t *Transformer) Apply(draft models.FeedbackDraft, action models.ActionName, in Inputs) (models.FeedbackDraft, error) {
	return t.ApplyContext(context.Background(), draft, action, in)
}

// ApplyContext runs one quick action and re-scores the result. Every action except regenerate
// bumps the revision and keeps every previously referenced finding id. Structural actions refuse
// a draft whose text was edited by hand; regenerate replaces it.
func (t *Transformer) ApplyContext(ctx context.Context, draft models.FeedbackDraft, action models.ActionName, in Inputs) (models.FeedbackDraft, error) {
	if !Known(action) {
		return models.FeedbackDraft{}, &models.UnknownActionError{Action: action}
	}
	if action == models.ActionRegenerate {
		return t.regenerate(ctx, draft, in)
	}
	if len(draft.Sections) == 0 {
		return models.FeedbackDraft{}, models.ErrUnstructuredDraft
	}

	before := models.RenderSections(draft.Sections)
	if draft.Text != "" && draft.Text != before {
		return models.FeedbackDraft{}, models.ErrDraftTextDiverged
	}

	p := style.WithDefaults(in.Profile)
	next := draft.Clone()
	referenced := edits[action](&next, in.Findings, p)

	next.Text = models.RenderSections(next.Sections)
	if next.Text == before {
		return models.FeedbackDraft{}, &models.NoOpError{Action: action}
	}
	next.SourceFindingIDs = union(next.SourceFindingIDs, referenced)
	next.AppliedActions = append(next.AppliedActions, action)
	next.Revision = draft.Revision + 1
	score := fidelity.Score(next, p)
	next.FidelityScore = &score

	log.Debug().
		Str("action", string(action)).
		Int("revision", next.Revision).
		Int("fidelity", score).
		Msg("Applied quick action")
	return next, nil
}

// regenerate recomposes from the original inputs, starting a new generation at revision 0
func (t *Transformer) regenerate(ctx context.Context, draft models.FeedbackDraft, in Inputs) (models.FeedbackDraft, error) {
	fresh, err := t.composer.ComposeContext(ctx, in.Findings, in.Instructions, in.Profile)
	if err != nil {
		return models.FeedbackDraft{}, err
	}
	current := draft.Text
	if current == "" {
		current = models.RenderSections(draft.Sections)
	}
	if fresh.Text == current {
		return models.FeedbackDraft{}, &models.NoOpError{Action: models.ActionRegenerate}
	}

	fresh.Generation = draft.Generation + 1
	fresh.Revision = 0
	fresh.AppliedActions = append(append([]models.ActionName{}, draft.AppliedActions...), models.ActionRegenerate)
	score := fidelity.Score(fresh, style.WithDefaults(in.Profile))
	fresh.FidelityScore = &score

	log.Debug().
		Int("generation", fresh.Generation).
		Int("fidelity", score).
		Msg("Regenerated draft")
	return fresh, nil
}

// union appends the ids not yet present, keeping the existing order
func union(existing, added []string) []string {
	seen := make(map[string]bool, len(existing)+len(added))
	out := make([]string, 0, len(existing)+len(added))
	for _, id := range append(append([]string(nil), existing...), added...) {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
