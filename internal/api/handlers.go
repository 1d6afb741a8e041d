package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gradeassist/internal/fidelity"
	"github.com/gradeassist/internal/findings"
	"github.com/gradeassist/internal/quickaction"
	"github.com/gradeassist/internal/style"
	"github.com/gradeassist/pkg/models"
)

// profileRef selects a profile inline or by teacher id
type profileRef struct {
	Profile   *models.StyleProfile `json:"profile,omitempty"`
	ProfileID string               `json:"profile_id,omitempty"`
}

type gradeRequest struct {
	Findings json.RawMessage `json:"findings"`
}

type gradeResponse struct {
	models.GradeRecommendation
	Label string `json:"label"`
}

type composeRequest struct {
	Findings     json.RawMessage     `json:"findings"`
	Instructions models.Instructions `json:"instructions"`
	profileRef
}

type composeResponse struct {
	Draft models.FeedbackDraft `json:"draft"`
	Grade gradeResponse        `json:"grade"`
}

type scoreRequest struct {
	Draft models.FeedbackDraft `json:"draft"`
	profileRef
}

type scoreResponse struct {
	Score     int                `json:"score"`
	Breakdown fidelity.Breakdown `json:"breakdown"`
}

type actionRequest struct {
	Draft        models.FeedbackDraft `json:"draft"`
	Action       models.ActionName    `json:"action"`
	Findings     json.RawMessage      `json:"findings"`
	Instructions models.Instructions  `json:"instructions"`
	profileRef
}

type actionResponse struct {
	Draft models.FeedbackDraft `json:"draft"`
	NoOp  bool                 `json:"noop"`
}

func (s *Server) listProfiles(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"profiles": s.catalog.List(),
		"default":  s.opts.DefaultProfile,
	})
}

func (s *Server) grade(c echo.Context) error {
	var req gradeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	store, err := decodeFindings(req.Findings)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s.gradeOf(store))
}

func (s *Server) compose(c echo.Context) error {
	var req composeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	store, err := decodeFindings(req.Findings)
	if err != nil {
		return respondError(c, err)
	}
	profile, err := s.resolveProfile(req.profileRef)
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()
	draft, err := s.composer.ComposeContext(ctx, store, req.Instructions, profile)
	if err != nil {
		return respondError(c, err)
	}
	score := fidelity.Score(draft, profile)
	draft.FidelityScore = &score

	return c.JSON(http.StatusOK, composeResponse{Draft: draft, Grade: s.gradeOf(store)})
}

func (s *Server) score(c echo.Context) error {
	var req scoreRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	profile, err := s.resolveProfile(req.profileRef)
	if err != nil {
		return respondError(c, err)
	}
	text := req.Draft.Text
	if text == "" {
		text = models.RenderSections(req.Draft.Sections)
	}
	breakdown := fidelity.Analyze(text, profile)
	return c.JSON(http.StatusOK, scoreResponse{Score: breakdown.Total, Breakdown: breakdown})
}

func (s *Server) applyAction(c echo.Context) error {
	var req actionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if !quickaction.Known(req.Action) {
		return respondError(c, &models.UnknownActionError{Action: req.Action})
	}
	store, err := decodeFindings(req.Findings)
	if err != nil {
		return respondError(c, err)
	}
	profile, err := s.resolveProfile(req.profileRef)
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()
	next, err := s.transformer.ApplyContext(ctx, req.Draft, req.Action, quickaction.Inputs{
		Findings:     store,
		Instructions: req.Instructions,
		Profile:      profile,
	})
	if models.IsNoOp(err) {
		return c.JSON(http.StatusOK, actionResponse{Draft: req.Draft, NoOp: true})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, actionResponse{Draft: next})
}

func (s *Server) gradeOf(store *findings.Store) gradeResponse {
	rec := s.composer.Recommender().Recommend(store.All())
	return gradeResponse{GradeRecommendation: rec, Label: s.composer.Labels().Label(rec.Grade)}
}

// resolveProfile prefers an inline profile, then the named one, then the default
func (s *Server) resolveProfile(ref profileRef) (models.StyleProfile, error) {
	if ref.Profile != nil {
		return style.Normalize(*ref.Profile)
	}
	id := ref.ProfileID
	if id == "" {
		id = s.opts.DefaultProfile
	}
	p, ok := s.catalog.Get(id)
	if !ok {
		return models.StyleProfile{}, fmt.Errorf("%w: %q", errProfileNotFound, id)
	}
	return p, nil
}

// decodeFindings accepts any analyzer payload shape; an absent field means no findings
func decodeFindings(raw json.RawMessage) (*findings.Store, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return findings.NewStore(nil)
	}
	store, _, err := findings.Decode(trimmed)
	return store, err
}
