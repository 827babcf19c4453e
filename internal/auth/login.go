package auth

import (
	"fmt"
	"time"
)

// LoginResult carries the outcome of one login attempt plus the lockout view
// the caller should report. Token is set only on success.
type LoginResult struct {
	Outcome Outcome
	Status  LockoutStatus
	Token   string
}

// Login orchestrates the login state machine: lock check, code verification,
// lockout transition, session issuance. The verifier and issuer are plain
// funcs so tests can substitute spies.
type Login struct {
	Store  StateStore
	Verify func(code string) bool
	Issue  func() (string, error)
	Policy Policy
	Now    func() time.Time
}

func NewLogin(store StateStore, verify func(string) bool, issue func() (string, error), policy Policy) *Login {
	return &Login{
		Store:  store,
		Verify: verify,
		Issue:  issue,
		Policy: policy,
		Now:    time.Now,
	}
}

// Attempt runs one submitted code through the state machine. An active lock
// rejects before the verifier is ever invoked and leaves the store untouched.
// Persistence failures surface as errors; the orchestrator does not retry.
func (l *Login) Attempt(code string) (LoginResult, error) {
	now := l.Now()

	rec, err := l.Store.Load()
	if err != nil {
		return LoginResult{}, err
	}

	status := ComputeStatus(rec, now, l.Policy.MaxAttempts)
	if status.Locked {
		return LoginResult{Outcome: OutcomeLocked, Status: status}, nil
	}

	next, outcome := Decide(rec, l.Verify(code), now, l.Policy)
	if err := l.Store.Save(next); err != nil {
		return LoginResult{}, err
	}

	result := LoginResult{
		Outcome: outcome,
		Status:  ComputeStatus(next, now, l.Policy.MaxAttempts),
	}

	if outcome == OutcomeSuccess {
		token, err := l.Issue()
		if err != nil {
			return LoginResult{}, fmt.Errorf("failed to issue session token: %w", err)
		}
		result.Token = token
	}

	return result, nil
}

// Status reports the current lockout view without mutating anything. Calling
// it repeatedly never changes the stored record.
func (l *Login) Status() (LockoutStatus, error) {
	rec, err := l.Store.Load()
	if err != nil {
		return LockoutStatus{}, err
	}
	return ComputeStatus(rec, l.Now(), l.Policy.MaxAttempts), nil
}
