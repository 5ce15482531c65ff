package store

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"OptionPrisma/internal/model"
)

// Retrying retries transient storage failures of an inner Store with
// exponential backoff. Not-found results and context errors are returned
// immediately.
type Retrying struct {
	inner    Store
	maxTries uint
	initial  time.Duration
	logger   *zap.Logger
}

// NewRetrying wraps inner. maxRetries is the number of extra attempts after
// the first one.
func NewRetrying(inner Store, maxRetries int, initial time.Duration, logger *zap.Logger) *Retrying {
	if initial <= 0 {
		initial = 50 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrying{
		inner:    inner,
		maxTries: uint(maxRetries) + 1,
		initial:  initial,
		logger:   logger,
	}
}

func (r *Retrying) Save(ctx context.Context, rec *model.SimulationRecord) error {
	_, err := retry(ctx, r, "save", func() (struct{}, error) {
		return struct{}{}, r.inner.Save(ctx, rec)
	})
	return err
}

func (r *Retrying) Get(ctx context.Context, id string) (*model.SimulationRecord, error) {
	return retry(ctx, r, "get", func() (*model.SimulationRecord, error) {
		return r.inner.Get(ctx, id)
	})
}

func (r *Retrying) List(ctx context.Context) ([]*model.SimulationRecord, error) {
	return retry(ctx, r, "list", func() ([]*model.SimulationRecord, error) {
		return r.inner.List(ctx)
	})
}

func (r *Retrying) Delete(ctx context.Context, id string) (bool, error) {
	return retry(ctx, r, "delete", func() (bool, error) {
		return r.inner.Delete(ctx, id)
	})
}

func (r *Retrying) Close() error { return r.inner.Close() }

func retry[T any](ctx context.Context, r *Retrying, op string, fn func() (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initial
	policy.MaxInterval = r.initial * 20

	notify := func(err error, wait time.Duration) {
		r.logger.Warn("retrying store operation",
			zap.String("op", op), zap.Error(err), zap.Duration("backoff", wait))
	}

	operation := func() (T, error) {
		v, err := fn()
		if err != nil && !model.IsStorage(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	v, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(r.maxTries),
		backoff.WithNotify(notify))
	if err != nil {
		// Permanent errors come back unwrapped; keep ErrNotFound matchable either way.
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Unwrap()
		}
	}
	return v, err
}
