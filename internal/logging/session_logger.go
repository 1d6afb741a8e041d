package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SessionLogger records the stages of one grading session. A nil *SessionLogger is valid and discards everything.
type SessionLogger struct {
	sessionID string
	logger    zerolog.Logger
	logFile   *os.File
	mutex     sync.Mutex
	startTime time.Time
	stages    map[string]time.Time
}

// StartSessionLogging creates a logger tagged with the session id. When dir is set the
// session is also written to its own file there.
func StartSessionLogging(sessionID, dir string) (*SessionLogger, error) {
	s := &SessionLogger{
		sessionID: sessionID,
		startTime: time.Now(),
		stages:    make(map[string]time.Time),
	}

	base := log.Logger
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		name := fmt.Sprintf("session_%s_%s.log", sessionID, s.startTime.Format("20060102_150405"))
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		s.logFile = f
		base = base.Output(zerolog.MultiLevelWriter(f, os.Stderr))
	}
	s.logger = base.With().Str("session", sessionID).Logger()
	s.logger.Info().Msg("Session started")
	return s, nil
}

// Logger returns the session-scoped zerolog logger
func (s *SessionLogger) Logger() *zerolog.Logger {
	if s == nil {
		l := zerolog.Nop()
		return &l
	}
	return &s.logger
}

// StageStarted marks the beginning of a named stage such as "compose" or an action name
func (s *SessionLogger) StageStarted(stage string) {
	if s == nil {
		return
	}
	s.mutex.Lock()
	s.stages[stage] = time.Now()
	s.mutex.Unlock()
	s.logger.Debug().Str("stage", stage).Msg("Stage started")
}

// StageCompleted logs the stage duration with any extra fields
func (s *SessionLogger) StageCompleted(stage string, fields map[string]interface{}) {
	if s == nil {
		return
	}
	s.logger.Info().
		Str("stage", stage).
		Dur("duration", s.elapsed(stage)).
		Fields(fields).
		Msg("Stage completed")
}

// StageError logs a failed stage
func (s *SessionLogger) StageError(stage string, err error) {
	if s == nil {
		return
	}
	s.logger.Error().
		Err(err).
		Str("stage", stage).
		Dur("duration", s.elapsed(stage)).
		Msg("Stage failed")
}

func (s *SessionLogger) elapsed(stage string) time.Duration {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	started, ok := s.stages[stage]
	if !ok {
		return 0
	}
	delete(s.stages, stage)
	return time.Since(started).Round(time.Millisecond)
}

// Close logs the session duration and releases the log file
func (s *SessionLogger) Close() {
	if s == nil {
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.logger.Info().Dur("total", time.Since(s.startTime).Round(time.Millisecond)).Msg("Session closed")
	if s.logFile != nil {
		_ = s.logFile.Sync()
		_ = s.logFile.Close()
		s.logFile = nil
		s.logger = zerolog.Nop()
	}
}
