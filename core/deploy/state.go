package deploy

import (
	"errors"
	"fmt"
)

type State string

const (
	StateCollectingInputs State = "collecting-inputs"
	StateAnalyzing        State = "analyzing-dependencies"
	StateCreatingRemote   State = "creating-remote-repo"
	StateAssembling       State = "assembling-tree"
	StateRewriting        State = "rewriting-references"
	StateVerifying        State = "verifying"
	StatePublishing       State = "publishing"
	StatePollingRemote    State = "polling-remote-status"
	StateSuccess          State = "success"
	StateFailed           State = "failed"
)

func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}

var (
	ErrEmptyComponentName = errors.New("component name cannot be empty")
	ErrEmptyRepoName      = errors.New("repository name cannot be empty")
	ErrMissingUsername    = errors.New("githubUsername is not configured")
	ErrVerificationFailed = errors.New("build verification failed")
)

// StepError records the state a run failed in.
type StepError struct {
	State State
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedState returns the state recorded in err, if any.
func FailedState(err error) (State, bool) {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.State, true
	}
	return "", false
}
