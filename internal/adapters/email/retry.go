package email

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Retry defaults for transient provider failures.
const (
	DefaultMaxRetries      = 3
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxElapsed      = 10 * time.Second
)

// RetryingSender retries failed sends with bounded exponential backoff.
type RetryingSender struct {
	inner      Sender
	log        *zap.Logger
	maxRetries uint64
	initial    time.Duration
	maxElapsed time.Duration
}

// RetryOption configures a RetryingSender.
type RetryOption func(*RetryingSender)

// WithMaxRetries sets how many times a failed send is retried.
func WithMaxRetries(n uint64) RetryOption {
	return func(s *RetryingSender) { s.maxRetries = n }
}

// WithInitialInterval sets the first backoff delay.
func WithInitialInterval(d time.Duration) RetryOption {
	return func(s *RetryingSender) { s.initial = d }
}

// NewRetryingSender wraps inner with retry behaviour.
// PRE: inner is non-nil
// POST: Returns a Sender that retries up to maxRetries times
func NewRetryingSender(inner Sender, log *zap.Logger, opts ...RetryOption) *RetryingSender {
	if log == nil {
		log = zap.NewNop()
	}
	s := &RetryingSender{
		inner:      inner,
		log:        log,
		maxRetries: DefaultMaxRetries,
		initial:    DefaultInitialInterval,
		maxElapsed: DefaultMaxElapsed,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RetryingSender) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initial
	b.MaxElapsedTime = s.maxElapsed
	return backoff.WithContext(backoff.WithMaxRetries(b, s.maxRetries), ctx)
}

func (s *RetryingSender) notify(kind string) backoff.Notify {
	return func(err error, wait time.Duration) {
		s.log.Warn("email_send_retry", zap.String("kind", kind), zap.Error(err), zap.Duration("wait", wait))
	}
}

// Send delivers req, retrying transient failures. Errors wrapping
// ErrRejected are returned at once.
// POST: Returns the first successful result or the last error
func (s *RetryingSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	return backoff.RetryNotifyWithData(func() (SendResult, error) {
		res, err := s.inner.Send(ctx, req)
		if errors.Is(err, ErrRejected) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}, s.policy(ctx), s.notify(req.Kind))
}
