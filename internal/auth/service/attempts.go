package service

import (
	"context"
	"math"
	"time"

	"github.com/atreidesdev/listopiaBackend/internal/auth/domain"
)

const (
	MaxLoginAttempts     = 5
	InitialLockoutPeriod = 5 * time.Minute
	ResetAttemptsPeriod  = 15 * time.Minute
)

// AttemptTracker keeps the escalating lockout state for each (IP, user) pair.
// A pair with no record, or with a cleared counter and no running block, is
// treated as clean.
type AttemptTracker struct {
	repo domain.LoginAttemptRepository
	now  func() time.Time
}

func NewAttemptTracker(repo domain.LoginAttemptRepository) *AttemptTracker {
	return &AttemptTracker{repo: repo, now: time.Now}
}

// Remaining reports how many whole minutes (rounded up) of an active lockout
// are left for the pair. Zero means the pair is not locked out.
func (t *AttemptTracker) Remaining(ctx context.Context, ip string, userID int64) (int, error) {
	attempt, err := t.repo.GetAttempt(ctx, ip, userID)
	if err != nil {
		return 0, err
	}
	if attempt == nil || attempt.BlockEndTime == nil {
		return 0, nil
	}

	now := t.now()
	if !now.Before(*attempt.BlockEndTime) {
		return 0, nil
	}

	return int(math.Ceil(attempt.BlockEndTime.Sub(now).Minutes())), nil
}

// RecordFailure advances the pair's state after a failed password check.
// Crossing MaxLoginAttempts doubles the lock multiplier, starts a block of
// InitialLockoutPeriod times the multiplier, and clears the counter.
func (t *AttemptTracker) RecordFailure(ctx context.Context, ip string, userID int64) error {
	now := t.now()

	attempt, err := t.repo.GetAttempt(ctx, ip, userID)
	if err != nil {
		return err
	}
	if attempt == nil {
		return t.repo.CreateAttempt(ctx, &domain.LoginAttempt{
			IPAddress:       ip,
			UserID:          userID,
			AttemptCount:    1,
			LastAttemptTime: now,
			LockMultiplier:  1,
		})
	}

	count := attempt.AttemptCount + 1
	blockEnd := attempt.BlockEndTime
	multiplier := attempt.LockMultiplier

	if now.Sub(attempt.LastAttemptTime) >= ResetAttemptsPeriod {
		// Quiet window passed: start a fresh count. The multiplier is carried
		// over on purpose so escalation severity survives cool-downs.
		count = 1
		blockEnd = nil
	}

	if count == MaxLoginAttempts {
		multiplier *= 2
		end := now.Add(InitialLockoutPeriod * time.Duration(multiplier))
		blockEnd = &end
		count = 0
	}

	attempt.AttemptCount = count
	attempt.LastAttemptTime = now
	attempt.BlockEndTime = blockEnd
	attempt.LockMultiplier = multiplier

	return t.repo.UpdateAttempt(ctx, attempt)
}

// RecordSuccess clears the pair's counter and any running block. The
// multiplier is left untouched: later escalations from the same pair keep
// doubling.
func (t *AttemptTracker) RecordSuccess(ctx context.Context, ip string, userID int64) error {
	attempt, err := t.repo.GetAttempt(ctx, ip, userID)
	if err != nil || attempt == nil {
		return err
	}

	attempt.AttemptCount = 0
	attempt.LastAttemptTime = t.now()
	attempt.BlockEndTime = nil

	return t.repo.UpdateAttempt(ctx, attempt)
}
