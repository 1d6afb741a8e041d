package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/gradeassist/internal/feedback"
	"github.com/gradeassist/internal/logging"
	"github.com/gradeassist/internal/quickaction"
)

// RegistryConfig bounds the registry and the per-session action rate
type RegistryConfig struct {
	MaxSessions      int
	ActionsPerMinute int
	ActionBurst      int
	LogDir           string
}

// Registry keeps the most recently used sessions. Evicted sessions are closed.
type Registry struct {
	cache    *lru.Cache[string, *Session]
	composer *feedback.Composer
	cfg      RegistryConfig
}

const defaultMaxSessions = 256

// NewRegistry creates a registry whose sessions compose with composer
func NewRegistry(cfg RegistryConfig, composer *feedback.Composer) (*Registry, error) {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}
	cache, err := lru.NewWithEvict[string, *Session](cfg.MaxSessions, func(id string, s *Session) {
		log.Debug().Str("session", id).Msg("Evicting session")
		s.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &Registry{cache: cache, composer: composer, cfg: cfg}, nil
}

// Create registers a new session and composes its first draft
func (r *Registry) Create(ctx context.Context, in quickaction.Inputs) (*Session, error) {
	id := uuid.NewString()
	logger, err := logging.StartSessionLogging(id, r.cfg.LogDir)
	if err != nil {
		log.Warn().Err(err).Str("session", id).Msg("Session log file unavailable, logging to stderr only")
		logger, _ = logging.StartSessionLogging(id, "")
	}

	s := New(id, in, r.composer, r.limiter(), logger)
	if _, err := s.Start(ctx); err != nil {
		s.Close()
		return nil, err
	}
	r.cache.Add(id, s)
	return s, nil
}

// Get returns the session with the given id and marks it recently used
func (r *Registry) Get(id string) (*Session, bool) {
	return r.cache.Get(id)
}

// Remove closes and forgets a session
func (r *Registry) Remove(id string) bool {
	return r.cache.Remove(id)
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Purge closes every session
func (r *Registry) Purge() {
	r.cache.Purge()
}

func (r *Registry) limiter() *rate.Limiter {
	if r.cfg.ActionsPerMinute <= 0 {
		return nil
	}
	burst := r.cfg.ActionBurst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(r.cfg.ActionsPerMinute)), burst)
}
