package auth

import (
	"database/sql"
	"fmt"
	"time"
)

// LockoutRecord is the durable login failure state. There is exactly one
// record for the whole application: the vault has a single implicit account,
// so failures are counted globally rather than per user or per IP.
type LockoutRecord struct {
	FailedAttempts int
	LockUntil      int64 // epoch millis, 0 = not locked
	UpdatedAt      int64 // epoch millis, informational
}

// LockoutStatus is a read-only view derived from a LockoutRecord and the
// current time. It is computed fresh on every query and never persisted.
type LockoutStatus struct {
	Locked            bool  `json:"is_locked"`
	FailedAttempts    int   `json:"failed_attempts"`
	MaxAttempts       int   `json:"max_attempts"`
	LockUntil         int64 `json:"lock_until_epoch_ms"`
	RetryAfterSeconds int64 `json:"retry_after_seconds"`
}

// Policy configures lockout behavior.
type Policy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

// Outcome classifies the result of a single login attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeInvalidCode
	OutcomeLocked
)

// ComputeStatus derives the current lockout view from a record. Pure: the
// caller supplies now, so the same record and clock always produce the same
// status.
func ComputeStatus(rec LockoutRecord, now time.Time, maxAttempts int) LockoutStatus {
	var retryAfter int64
	if rec.LockUntil > 0 {
		remainingMs := rec.LockUntil - now.UnixMilli()
		if remainingMs > 0 {
			// Round up so a lock with any time left never reports 0
			retryAfter = (remainingMs + 999) / 1000
		}
	}
	return LockoutStatus{
		Locked:            retryAfter > 0,
		FailedAttempts:    rec.FailedAttempts,
		MaxAttempts:       maxAttempts,
		LockUntil:         rec.LockUntil,
		RetryAfterSeconds: retryAfter,
	}
}

// Decide applies one login attempt to the lockout state machine and returns
// the successor record alongside the outcome. Pure: no clock access, no I/O.
//
// When the record still carries an expired lock, the attempt is evaluated from
// a fresh zero counter rather than the stale pre-lock count, so the first
// failed attempt after expiry lands at 1. Entering a new lock likewise resets
// the counter to zero; the lock timestamp alone carries the penalty.
func Decide(rec LockoutRecord, codeValid bool, now time.Time, p Policy) (LockoutRecord, Outcome) {
	nowMs := now.UnixMilli()

	if rec.LockUntil > nowMs {
		// Active lock: reject without mutating anything. Callers short-circuit
		// before the verifier runs, so codeValid is meaningless here.
		return rec, OutcomeLocked
	}

	attempts := rec.FailedAttempts
	if rec.LockUntil != 0 {
		// Lock expired: clear it and evaluate from a clean slate
		attempts = 0
	}

	if codeValid {
		return LockoutRecord{FailedAttempts: 0, LockUntil: 0, UpdatedAt: nowMs}, OutcomeSuccess
	}

	attempts++
	if attempts >= p.MaxAttempts {
		return LockoutRecord{
			FailedAttempts: 0,
			LockUntil:      now.Add(p.LockDuration).UnixMilli(),
			UpdatedAt:      nowMs,
		}, OutcomeInvalidCode
	}

	return LockoutRecord{FailedAttempts: attempts, LockUntil: 0, UpdatedAt: nowMs}, OutcomeInvalidCode
}

// StateStore persists the singleton LockoutRecord.
type StateStore interface {
	Load() (LockoutRecord, error)
	Save(rec LockoutRecord) error
}

// SQLStateStore keeps the lockout record in the auth_state table as a single
// fixed row.
type SQLStateStore struct {
	DB *sql.DB
}

// Load returns the current record, materializing a zero-valued one when the
// row does not exist yet. Two callers racing the first load both write the
// same zero row, which is harmless.
func (s *SQLStateStore) Load() (LockoutRecord, error) {
	var rec LockoutRecord
	err := s.DB.QueryRow(
		"SELECT failed_attempts, lock_until, updated_at FROM auth_state WHERE id = 1",
	).Scan(&rec.FailedAttempts, &rec.LockUntil, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		if _, err := s.DB.Exec(
			"INSERT OR IGNORE INTO auth_state (id, failed_attempts, lock_until, updated_at) VALUES (1, 0, 0, 0)",
		); err != nil {
			return LockoutRecord{}, fmt.Errorf("failed to initialize lockout state: %w", err)
		}
		return LockoutRecord{}, nil
	}
	if err != nil {
		return LockoutRecord{}, fmt.Errorf("failed to load lockout state: %w", err)
	}
	return rec, nil
}

// Save unconditionally overwrites the record. There is no concurrency token:
// two simultaneous failed attempts racing read-increment-write can lose an
// update. Acceptable for a single-operator tool; callers needing stronger
// guarantees must add conditional-write semantics.
func (s *SQLStateStore) Save(rec LockoutRecord) error {
	_, err := s.DB.Exec(
		`INSERT INTO auth_state (id, failed_attempts, lock_until, updated_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET failed_attempts = excluded.failed_attempts,
		   lock_until = excluded.lock_until, updated_at = excluded.updated_at`,
		rec.FailedAttempts, rec.LockUntil, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save lockout state: %w", err)
	}
	return nil
}
