package remote

import (
	"context"
	"time"

	"github.com/tristendillon/carve/core/logger"
)

type PollState int

const (
	PollWaiting PollState = iota
	PollSucceeded
	PollFailed
	PollTimedOut
)

func (s PollState) String() string {
	switch s {
	case PollWaiting:
		return "waiting"
	case PollSucceeded:
		return "completed-success"
	case PollFailed:
		return "completed-failure"
	case PollTimedOut:
		return "timed-out"
	}
	return "unknown"
}

func (s PollState) Terminal() bool {
	return s != PollWaiting
}

// StateFromRuns maps the most recent run (first element) to a poll state.
func StateFromRuns(runs []Run) PollState {
	if len(runs) == 0 {
		return PollWaiting
	}
	latest := runs[0]
	if latest.Status != "completed" {
		return PollWaiting
	}
	if latest.Conclusion == "success" {
		return PollSucceeded
	}
	return PollFailed
}

// CheckFunc reports the current remote state. An error counts as a spent attempt.
type CheckFunc func(ctx context.Context) (PollState, error)

// Poller queries a check once per Interval until it reaches a completed state
// or MaxAttempts queries have been made.
type Poller struct {
	Interval    time.Duration
	MaxAttempts int
}

func NewPoller(interval time.Duration, maxAttempts int) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Poller{Interval: interval, MaxAttempts: maxAttempts}
}

// Poll returns the terminal state. ctx cancellation ends the loop with ctx.Err().
func (p *Poller) Poll(ctx context.Context, check CheckFunc) (PollState, error) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	state := PollWaiting
	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return state, ctx.Err()
		case <-ticker.C:
		}

		next, err := check(ctx)
		if err != nil {
			logger.Debug("Status check %d/%d failed: %v", attempt, p.MaxAttempts, err)
			next = PollWaiting
		}
		state = next
		logger.Debug("Status check %d/%d: %s", attempt, p.MaxAttempts, state)

		if state.Terminal() {
			return state, nil
		}
		if attempt >= p.MaxAttempts {
			return PollTimedOut, nil
		}
	}
}

// RunCheck polls the latest CI run of repo.
func RunCheck(host Host, repo Repository) CheckFunc {
	return func(ctx context.Context) (PollState, error) {
		runs, err := host.ListRecentRuns(ctx, repo, 1)
		if err != nil {
			return PollWaiting, err
		}
		return StateFromRuns(runs), nil
	}
}
