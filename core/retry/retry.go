package retry

import (
	"context"
	"errors"
	"time"

	"github.com/tristendillon/carve/core/logger"
)

var ErrPermanent = errors.New("permanent failure")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }
func (e *permanentError) Is(target error) bool {
	return target == ErrPermanent
}

// Permanent marks err so Do returns it without another attempt.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}

// Policy is a bounded exponential backoff: attempt i waits BaseDelay * 2^i
// before attempt i+1.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
}

func (p Policy) normalized() Policy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 300 * time.Millisecond
	}
	return p
}

// Delay is the wait after the given zero-based failed attempt.
func (p Policy) Delay(attempt int) time.Duration {
	return p.normalized().BaseDelay * time.Duration(1<<attempt)
}

// Do runs op until it succeeds, returns a permanent error, the attempts run
// out, or ctx is done. The wait between attempts never outlives ctx.
func Do(ctx context.Context, p Policy, name string, op func(ctx context.Context) error) error {
	p = p.normalized()

	var last error
	for i := 0; i < p.Attempts; i++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return err
		}
		last = err
		if i == p.Attempts-1 {
			break
		}

		delay := p.Delay(i)
		logger.Warn("%s failed (attempt %d/%d), retrying in %s: %v", name, i+1, p.Attempts, delay, err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return last
}
