package creditRepo

import (
	"context"
	"errors"

	"tutorhub/models"
)

var (
	// ErrNotFound is returned when no account matches the combo order.
	ErrNotFound = errors.New("credit account not found")
	// ErrInsufficient is returned by Debit when the balance would go negative.
	ErrInsufficient = errors.New("insufficient combo credit")
)

// Repository stores per-combo-order prepaid credit balances. Debit and
// Credit must be atomic relative to concurrent debits on the same order.
type Repository interface {
	// Debit atomically subtracts n units, failing with ErrInsufficient if
	// the remaining balance is smaller than n. Nothing is written on failure.
	Debit(ctx context.Context, studentID, comboOrderID string, n int) error
	// Credit atomically adds n units back.
	Credit(ctx context.Context, studentID, comboOrderID string, n int) error
	// Get returns the account or ErrNotFound.
	Get(ctx context.Context, studentID, comboOrderID string) (*models.CreditAccount, error)
}
