package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/gradeassist/internal/feedback"
	"github.com/gradeassist/internal/fidelity"
	"github.com/gradeassist/internal/logging"
	"github.com/gradeassist/internal/quickaction"
	"github.com/gradeassist/internal/style"
	"github.com/gradeassist/pkg/models"
)

var (
	// ErrSuperseded is returned by a composition that finished after a newer request replaced it
	ErrSuperseded = errors.New("session: superseded by a newer request")
	// ErrNotStarted is returned when an action arrives before the first draft exists
	ErrNotStarted = errors.New("session: no draft yet")
)

// Session owns one assessment: its immutable inputs, the current draft and the action history.
// All methods are safe for concurrent use.
type Session struct {
	ID string

	inputs      quickaction.Inputs
	composer    *feedback.Composer
	transformer *quickaction.Transformer
	limiter     *rate.Limiter
	logger      *logging.SessionLogger

	mu      sync.Mutex
	draft   *models.FeedbackDraft
	grade   models.GradeRecommendation
	epoch   uint64
	cancel  context.CancelFunc
	created time.Time
	updated time.Time
}

// Snapshot is a point-in-time copy of a session
type Snapshot struct {
	ID        string                     `json:"id"`
	TeacherID string                     `json:"teacher_id"`
	Grade     models.GradeRecommendation `json:"grade"`
	Draft     *models.FeedbackDraft      `json:"draft"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// New creates a session. A nil composer uses the defaults and a nil limiter never limits.
func New(id string, in quickaction.Inputs, composer *feedback.Composer, limiter *rate.Limiter, logger *logging.SessionLogger) *Session {
	if composer == nil {
		composer = feedback.NewComposer()
	}
	now := time.Now()
	return &Session{
		ID:          id,
		inputs:      in,
		composer:    composer,
		transformer: quickaction.NewTransformer(composer),
		limiter:     limiter,
		logger:      logger,
		created:     now,
		updated:     now,
	}
}

// Allow reports whether the session may take another action right now
func (s *Session) Allow() bool {
	return s.limiter == nil || s.limiter.Allow()
}

// Start grades the findings and composes the first draft in parallel
func (s *Session) Start(ctx context.Context) (models.FeedbackDraft, error) {
	s.mu.Lock()
	ctx, epoch := s.begin(ctx)
	s.mu.Unlock()
	defer s.finish(epoch)

	s.logger.StageStarted("start")
	var (
		grade models.GradeRecommendation
		draft models.FeedbackDraft
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		grade = s.composer.Recommender().Recommend(s.inputs.Findings.All())
		return nil
	})
	g.Go(func() error {
		var err error
		draft, err = s.composer.ComposeContext(gctx, s.inputs.Findings, s.inputs.Instructions, s.inputs.Profile)
		return err
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return models.FeedbackDraft{}, ErrSuperseded
	}
	if err != nil {
		s.logger.StageError("start", err)
		return models.FeedbackDraft{}, err
	}

	score := fidelity.Score(draft, style.WithDefaults(s.inputs.Profile))
	draft.FidelityScore = &score
	s.grade = grade
	s.commit(draft)
	s.logger.StageCompleted("start", map[string]interface{}{
		"grade":    grade.Grade.String(),
		"fidelity": score,
	})
	return draft.Clone(), nil
}

// Apply runs action against the draft at base. base must be the current version; a request
// against any other version fails with StaleRevisionError. Every accepted call cancels the
// composition still in flight, if any.
func (s *Session) Apply(ctx context.Context, base models.Version, action models.ActionName) (models.FeedbackDraft, error) {
	if !quickaction.Known(action) {
		return models.FeedbackDraft{}, &models.UnknownActionError{Action: action}
	}

	s.mu.Lock()
	if s.draft == nil {
		s.mu.Unlock()
		return models.FeedbackDraft{}, ErrNotStarted
	}
	if current := s.draft.Version(); current != base {
		s.mu.Unlock()
		return models.FeedbackDraft{}, &models.StaleRevisionError{Requested: base, Current: current}
	}
	ctx, epoch := s.begin(ctx)
	current := s.draft.Clone()
	defer s.finish(epoch)

	s.logger.StageStarted(string(action))
	if action != models.ActionRegenerate {
		defer s.mu.Unlock()
		next, err := s.transformer.ApplyContext(ctx, current, action, s.inputs)
		if err != nil {
			s.stageFailed(string(action), err)
			return models.FeedbackDraft{}, err
		}
		s.commit(next)
		s.stageDone(next)
		return next.Clone(), nil
	}

	// Composition may call out to a subject source, so it runs unlocked.
	s.mu.Unlock()
	next, err := s.transformer.ApplyContext(ctx, current, action, s.inputs)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		log.Debug().Str("session", s.ID).Msg("Discarding superseded regenerate")
		return models.FeedbackDraft{}, ErrSuperseded
	}
	if err != nil {
		s.stageFailed(string(action), err)
		return models.FeedbackDraft{}, err
	}
	s.commit(next)
	s.stageDone(next)
	return next.Clone(), nil
}

// Snapshot copies the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:        s.ID,
		TeacherID: s.inputs.Profile.TeacherID,
		Grade:     s.grade,
		CreatedAt: s.created,
		UpdatedAt: s.updated,
	}
	if s.draft != nil {
		d := s.draft.Clone()
		snap.Draft = &d
	}
	return snap
}

// Close cancels in-flight work and releases the session log
func (s *Session) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.epoch++
	s.mu.Unlock()
	s.logger.Close()
}

// begin supersedes the in-flight request. Callers hold mu.
func (s *Session) begin(parent context.Context) (context.Context, uint64) {
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.epoch++
	s.cancel = cancel
	return ctx, s.epoch
}

// finish releases the request context unless a newer request already did
func (s *Session) finish(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) commit(d models.FeedbackDraft) {
	s.draft = &d
	s.updated = time.Now()
}

func (s *Session) stageDone(d models.FeedbackDraft) {
	fields := map[string]interface{}{
		"generation": d.Generation,
		"revision":   d.Revision,
	}
	if d.FidelityScore != nil {
		fields["fidelity"] = *d.FidelityScore
	}
	s.logger.StageCompleted(string(d.AppliedActions[len(d.AppliedActions)-1]), fields)
}

func (s *Session) stageFailed(stage string, err error) {
	if models.IsNoOp(err) {
		s.logger.StageCompleted(stage, map[string]interface{}{"noop": true})
		return
	}
	s.logger.StageError(stage, err)
}
