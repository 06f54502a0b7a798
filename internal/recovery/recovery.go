// Package recovery retries operations that fail for transient reasons, such
// as a locale file caught half-written by an editor or a sync job.
package recovery

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"time"

	ldErrors "github.com/k0ns0l/localedrift/internal/errors"
	"github.com/k0ns0l/localedrift/internal/logging"
)

// Strategy defines how the delay grows between attempts
type Strategy string

const (
	StrategyFixed       Strategy = "fixed"
	StrategyLinear      Strategy = "linear"
	StrategyExponential Strategy = "exponential"
)

// ValidStrategy reports whether s is a known strategy
func ValidStrategy(s Strategy) bool {
	switch s {
	case StrategyFixed, StrategyLinear, StrategyExponential:
		return true
	}
	return false
}

// Config holds retry settings
type Config struct {
	MaxAttempts   int           `yaml:"max_attempts" mapstructure:"max_attempts" json:"max_attempts"`
	InitialDelay  time.Duration `yaml:"initial_delay" mapstructure:"initial_delay" json:"initial_delay"`
	MaxDelay      time.Duration `yaml:"max_delay" mapstructure:"max_delay" json:"max_delay"`
	Strategy      Strategy      `yaml:"strategy" mapstructure:"strategy" json:"strategy"`
	Jitter        bool          `yaml:"jitter" mapstructure:"jitter" json:"jitter"`
	JitterPercent float64       `yaml:"jitter_percent" mapstructure:"jitter_percent" json:"jitter_percent"`
}

// DefaultConfig returns the retry settings used by watch
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   3,
		InitialDelay:  2 * time.Second,
		MaxDelay:      30 * time.Second,
		Strategy:      StrategyExponential,
		Jitter:        true,
		JitterPercent: 0.1,
	}
}

// Operation is a unit of work that may be retried. attempt starts at 1.
type Operation func(ctx context.Context, attempt int) error

// Retrier runs operations until they succeed, fail permanently or run out
// of attempts
type Retrier struct {
	config Config
	logger *logging.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// New creates a retrier. MaxAttempts below 1 means a single attempt.
func New(config Config, logger *logging.Logger) *Retrier {
	if logger == nil {
		logger = logging.Discard()
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	return &Retrier{
		config: config,
		logger: logger.WithComponent("recovery"),
		sleep:  sleepContext,
	}
}

// Retry executes operation, retrying transient failures
func (r *Retrier) Retry(ctx context.Context, operation Operation, operationName string) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := operation(ctx, attempt)
		if err == nil {
			if attempt > 1 {
				r.logger.Info("Operation recovered",
					"operation", operationName,
					"attempt", attempt,
					"previous_error", lastErr)
			}
			return nil
		}
		lastErr = err

		if !Transient(err) {
			return err
		}
		if attempt == r.config.MaxAttempts {
			break
		}

		delay := r.Delay(attempt - 1)
		r.logger.Warn("Operation failed, retrying",
			"operation", operationName,
			"attempt", attempt,
			"max_attempts", r.config.MaxAttempts,
			"delay", delay,
			"error", err)

		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}

	if r.config.MaxAttempts == 1 {
		return lastErr
	}
	r.logger.LogError(ctx, lastErr, "Operation failed after retries",
		"operation", operationName,
		"attempts", r.config.MaxAttempts)
	return fmt.Errorf("%s failed after %d attempts: %w", operationName, r.config.MaxAttempts, lastErr)
}

// Delay returns the wait before retry number n, counting from zero
func (r *Retrier) Delay(n int) time.Duration {
	var delay time.Duration

	switch r.config.Strategy {
	case StrategyLinear:
		delay = r.config.InitialDelay * time.Duration(n+1)
	case StrategyExponential:
		delay = r.config.InitialDelay * time.Duration(math.Pow(2, float64(n)))
	default:
		delay = r.config.InitialDelay
	}

	if r.config.MaxDelay > 0 && delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}

	if r.config.Jitter {
		maxJitter := int64(float64(delay) * r.config.JitterPercent)
		if maxJitter > 0 {
			// crypto/rand failing just means no jitter
			if j, err := rand.Int(rand.Reader, big.NewInt(maxJitter)); err == nil {
				delay += time.Duration(j.Int64())
			}
		}
	}

	return delay
}

// Transient reports whether err is worth retrying. Unreadable and
// malformed locale files are, since they are usually caught mid-write;
// missing files and bad configuration are not.
func Transient(err error) bool {
	return ldErrors.IsRecoverable(err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
