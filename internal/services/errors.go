package services

import (
	"errors"
	"fmt"
)

// Validation errors surfaced to the caller at initiation time. None of them
// are retryable without changing the request.
var (
	ErrContestNotOpen       = errors.New("contest is not open for voting")
	ErrCandidateNotEligible = errors.New("candidate is not eligible to receive votes")
	ErrAmountMismatch       = errors.New("expected amount does not match vote count times price")
)

// ErrTransactionNotFound is returned when no payment transaction exists for a
// reference. The webhook path treats it as benign because providers retry
// before our initiate call may have landed; the confirm path treats it as a
// client error.
var ErrTransactionNotFound = errors.New("payment transaction not found")

// QuotaExceededError rejects a purchase that would push a payer past the
// contest's per-voter quota, reporting how many votes the payer can still buy.
type QuotaExceededError struct {
	Remaining int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("vote quota exceeded: %d votes remaining", e.Remaining)
}
