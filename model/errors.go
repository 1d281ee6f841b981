package model

import (
	"errors"
	"fmt"
)

// ErrContextBudgetExceeded signals that the model's input exceeded its
// working context or token budget.
var ErrContextBudgetExceeded = errors.New("context budget exceeded")

// BudgetExceededError carries details about a budget failure. It matches
// ErrContextBudgetExceeded with errors.Is.
type BudgetExceededError struct {
	Limit     int   // Provider limit, 0 if unknown
	Requested int   // Tokens requested, 0 if unknown
	Cause     error // Provider error, may be nil
}

func (e *BudgetExceededError) Error() string {
	msg := ErrContextBudgetExceeded.Error()
	if e.Limit > 0 {
		msg = fmt.Sprintf("%s (requested %d, limit %d)", msg, e.Requested, e.Limit)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Is reports whether target is ErrContextBudgetExceeded.
func (e *BudgetExceededError) Is(target error) bool { return target == ErrContextBudgetExceeded }

// Unwrap returns the provider error.
func (e *BudgetExceededError) Unwrap() error { return e.Cause }

// IsBudgetExceeded reports whether err signals context budget exhaustion.
func IsBudgetExceeded(err error) bool { return errors.Is(err, ErrContextBudgetExceeded) }
