package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls exponential backoff
type Config struct {
	MaxRetries int           `koanf:"max_retries" json:"max_retries"`
	BaseDelay  time.Duration `koanf:"base_delay" json:"base_delay"`
	MaxDelay   time.Duration `koanf:"max_delay" json:"max_delay"`
	Multiplier float64       `koanf:"multiplier" json:"multiplier"`
	Jitter     bool          `koanf:"jitter" json:"jitter"`
}

// Result describes how an operation went
type Result struct {
	Attempts      int           `json:"attempts"`
	TotalDuration time.Duration `json:"total_duration"`
	LastError     error         `json:"-"`
	Success       bool          `json:"success"`
}

// ErrPermanent marks an error that must not be retried
var ErrPermanent = errors.New("permanent failure")

// DefaultConfig suits short calls to an LLM provider
func DefaultConfig() Config {
	return Config{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
	}
}

// Do runs op until it succeeds, returns a non-retryable error, runs out of retries or ctx is done
func Do(ctx context.Context, cfg Config, name string, op func(ctx context.Context) error) Result {
	return DoWithLogger(ctx, cfg, name, op, &log.Logger)
}

// DoWithLogger is Do with an explicit logger
func DoWithLogger(ctx context.Context, cfg Config, name string, op func(ctx context.Context) error, logger *zerolog.Logger) Result {
	start := time.Now()
	result := Result{}

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result.Attempts = attempt + 1

		err := op(ctx)
		if err == nil {
			result.Success = true
			result.TotalDuration = time.Since(start)
			if attempt > 0 {
				logger.Debug().Str("op", name).Int("attempts", result.Attempts).Msg("Succeeded after retry")
			}
			return result
		}
		result.LastError = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			result.LastError = ctxErr
			break
		}
		if attempt >= cfg.MaxRetries || !IsRetryable(err) {
			break
		}

		delay := backoff(cfg, attempt)
		logger.Warn().
			Err(err).
			Str("op", name).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Operation failed, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			result.LastError = ctx.Err()
			result.TotalDuration = time.Since(start)
			return result
		case <-timer.C:
		}
	}

	result.TotalDuration = time.Since(start)
	return result
}

// backoff returns BaseDelay·Multiplier^attempt capped at MaxDelay, with up to 10% jitter
func backoff(cfg Config, attempt int) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(attempt))
	if cfg.MaxDelay > 0 && delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.Jitter {
		delay += (rand.Float64() - 0.5) * 0.2 * delay
	}
	if delay < 0 {
		delay = float64(cfg.BaseDelay)
	}
	return time.Duration(delay)
}

var retryableMessages = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"temporary failure",
	"service unavailable",
	"too many requests",
	"rate limit",
	"overloaded",
	"429",
	"500",
	"502",
	"503",
	"504",
	"no such host",
	"broken pipe",
	"eof",
}

// IsRetryable reports whether err looks transient
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrPermanent) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, m := range retryableMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
