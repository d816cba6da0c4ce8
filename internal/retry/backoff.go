package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
)

// Config configures retry behavior with exponential backoff
type Config struct {
	MaxRetries int           `json:"max_retries"` // Maximum number of retry attempts
	BaseDelay  time.Duration `json:"base_delay"`  // Base delay between retries
	MaxDelay   time.Duration `json:"max_delay"`   // Maximum delay between retries
	Multiplier float64       `json:"multiplier"`  // Exponential backoff multiplier
	Jitter     bool          `json:"jitter"`      // Add random jitter to prevent thundering herd
	LogRetries bool          `json:"log_retries"` // Whether to log retry attempts
}

// Result contains information about the retry operation
type Result struct {
	Attempts      int           `json:"attempts"`       // Total number of attempts made
	TotalDuration time.Duration `json:"total_duration"` // Total time spent on all attempts
	LastError     error         `json:"-"`              // Last error encountered
	Success       bool          `json:"success"`        // Whether the operation eventually succeeded
}

// DefaultConfig returns a retry configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
		LogRetries: true,
	}
}

// FetchCycleConfig returns the fixed-interval profile used between whole
// fetch-orchestration cycles: every route in both tiers has already failed,
// so the wait is a flat pause rather than an escalating backoff.
func FetchCycleConfig(extraCycles int, backoff time.Duration) Config {
	return Config{
		MaxRetries: extraCycles,
		BaseDelay:  backoff,
		MaxDelay:   backoff,
		Multiplier: 1.0,
		Jitter:     false,
		LogRetries: true,
	}
}

// Do executes an operation with retry logic according to cfg. The operation
// is attempted once plus MaxRetries times; ctx cancellation aborts both the
// in-between waits and further attempts.
func Do(ctx context.Context, cfg Config, operation func() error) Result {
	startTime := time.Now()

	result := Result{}

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result.Attempts = attempt + 1

		err := operation()
		if err == nil {
			result.Success = true
			result.TotalDuration = time.Since(startTime)
			if cfg.LogRetries && attempt > 0 {
				log.Debug().
					Int("attempts", result.Attempts).
					Dur("total", result.TotalDuration).
					Msg("operation succeeded after retries")
			}
			return result
		}

		result.LastError = err

		if attempt >= cfg.MaxRetries {
			result.TotalDuration = time.Since(startTime)
			if cfg.LogRetries {
				log.Warn().
					Int("attempts", result.Attempts).
					Dur("total", result.TotalDuration).
					Err(err).
					Msg("operation failed, retry budget exhausted")
			}
			return result
		}

		if ctx.Err() != nil {
			result.LastError = ctx.Err()
			result.TotalDuration = time.Since(startTime)
			return result
		}

		delay := calculateDelay(cfg, attempt)
		if cfg.LogRetries {
			log.Debug().
				Int("attempt", attempt+1).
				Int("max", cfg.MaxRetries+1).
				Dur("delay", delay).
				Err(err).
				Msg("operation failed, waiting before retry")
		}

		select {
		case <-ctx.Done():
			result.LastError = ctx.Err()
			result.TotalDuration = time.Since(startTime)
			return result
		case <-time.After(delay):
		}
	}

	result.TotalDuration = time.Since(startTime)
	return result
}

// calculateDelay calculates the delay for the next retry attempt using exponential backoff
func calculateDelay(cfg Config, attempt int) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(attempt))

	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}

	if cfg.Jitter {
		// Up to 10% random jitter either way
		jitterRange := delay * 0.1
		delay += (rand.Float64() - 0.5) * 2 * jitterRange
		if delay < 0 {
			delay = float64(cfg.BaseDelay)
		}
	}

	return time.Duration(delay)
}
