package routing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vietddude/suiwork/internal/core/neterr"
	"github.com/vietddude/suiwork/internal/metrics"
)

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

// DefaultRetryConfig provides sensible defaults.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:  3,
	InitialDelay: 1 * time.Second,
}

// Normalize clamps the config to MaxAttempts >= 1 and InitialDelay >= 0.
func (c RetryConfig) Normalize() RetryConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.InitialDelay < 0 {
		c.InitialDelay = 0
	}
	return c
}

// Backoff returns the wait before the attempt following the given one.
// Attempts count from 1: InitialDelay * 2^(attempt-1).
func (c RetryConfig) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	shift := attempt - 1
	if shift > 30 {
		shift = 30
	}
	return c.InitialDelay * time.Duration(1<<uint(shift))
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Executor re-invokes failed operations with exponential backoff when the
// classifier marks the failure as retryable. It holds no per-call state, so
// one Executor serves concurrent operations.
type Executor struct {
	Config     RetryConfig
	Classifier *neterr.Classifier
	Sleep      Sleeper
	Log        *slog.Logger
}

// NewExecutor creates an executor with the given policy.
func NewExecutor(cfg RetryConfig, classifier *neterr.Classifier) *Executor {
	if classifier == nil {
		classifier = neterr.NewClassifier(nil)
	}
	return &Executor{
		Config:     cfg.Normalize(),
		Classifier: classifier,
		Sleep:      SleepContext,
		Log:        slog.Default(),
	}
}

// Do runs op under the retry policy.
func (e *Executor) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	_, err := Retry(ctx, e, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Retry executes op, retrying retryable failures until it succeeds or the
// attempt budget is spent. The terminal failure is always returned as a
// *neterr.ClassifiedError.
func Retry[T any](
	ctx context.Context,
	e *Executor,
	name string,
	op func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	cfg := e.Config.Normalize()
	sleep := e.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	log := e.Log
	if log == nil {
		log = slog.Default()
	}

	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			metrics.RetryAttempts.WithLabelValues(name, "success").Inc()
			if attempt > 1 {
				log.Info("Operation succeeded after retry", "operation", name, "attempt", attempt)
			}
			return result, nil
		}

		ce := e.Classifier.Wrap(err)
		metrics.RetryAttempts.WithLabelValues(name, ce.Category.String()).Inc()

		if !ce.Category.Retryable() || attempt >= cfg.MaxAttempts {
			log.Warn("Operation failed",
				"operation", name,
				"attempt", attempt,
				"category", ce.Category.String(),
				"error", err,
			)
			metrics.ClassifiedErrors.WithLabelValues(name, ce.Category.String()).Inc()
			return zero, ce
		}

		delay := cfg.Backoff(attempt)
		log.Debug("Retrying operation",
			"operation", name,
			"attempt", attempt,
			"category", ce.Category.String(),
			"delay", delay,
			"error", err,
		)
		metrics.RetryBackoff.WithLabelValues(name).Observe(delay.Seconds())

		if serr := sleep(ctx, delay); serr != nil {
			category := neterr.Unknown
			if errors.Is(serr, context.DeadlineExceeded) {
				category = neterr.Timeout
			}
			metrics.ClassifiedErrors.WithLabelValues(name, category.String()).Inc()
			return zero, neterr.New(category, "operation aborted while waiting to retry", errors.Join(serr, err))
		}
	}
}
