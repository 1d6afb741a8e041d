package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gradeassist/internal/quickaction"
	"github.com/gradeassist/internal/session"
	"github.com/gradeassist/pkg/models"
)

type sessionActionRequest struct {
	Action     models.ActionName `json:"action"`
	Generation int               `json:"generation"`
	Revision   int               `json:"revision"`
}

type sessionActionResponse struct {
	Session session.Snapshot `json:"session"`
	NoOp    bool             `json:"noop"`
}

func (s *Server) createSession(c echo.Context) error {
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
	sess, err := s.sessions.Create(ctx, quickaction.Inputs{
		Findings:     store,
		Instructions: req.Instructions,
		Profile:      profile,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, sess.Snapshot())
}

func (s *Server) getSession(c echo.Context) error {
	sess, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "session not found"})
	}
	return c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) deleteSession(c echo.Context) error {
	if !s.sessions.Remove(c.Param("id")) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "session not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) sessionAction(c echo.Context) error {
	sess, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "session not found"})
	}
	var req sessionActionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if !sess.Allow() {
		return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()
	base := models.Version{Generation: req.Generation, Revision: req.Revision}
	_, err := sess.Apply(ctx, base, req.Action)
	if models.IsNoOp(err) {
		return c.JSON(http.StatusOK, sessionActionResponse{Session: sess.Snapshot(), NoOp: true})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, sessionActionResponse{Session: sess.Snapshot()})
}
