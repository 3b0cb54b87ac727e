package credit

import (
	"context"
	"fmt"

	creditRepo "tutorhub/database/repository/credit"
	"tutorhub/models"
	"tutorhub/services"
)

// Service exposes a student's prepaid combo balances. The booking engine
// debits/credits through the repository directly; this service backs the
// read and top-up surfaces.
type Service interface {
	Balance(ctx context.Context, studentID, comboOrderID string) (*models.CreditAccount, error)
	Debit(ctx context.Context, studentID, comboOrderID string, n int) error
	Credit(ctx context.Context, studentID, comboOrderID string, n int) error
}

// DefaultCreditService implements Service.
type DefaultCreditService struct {
	Repo creditRepo.Repository
}

func (s *DefaultCreditService) Balance(ctx context.Context, studentID, comboOrderID string) (*models.CreditAccount, error) {
	acct, err := s.Repo.Get(ctx, studentID, comboOrderID)
	if err != nil {
		if err == creditRepo.ErrNotFound {
			return nil, services.NewNotFoundError("combo order %s not found", comboOrderID)
		}
		return nil, fmt.Errorf("failed to fetch combo balance: %w", err)
	}
	return acct, nil
}

func (s *DefaultCreditService) Debit(ctx context.Context, studentID, comboOrderID string, n int) error {
	if n <= 0 {
		return services.NewValidationError("debit amount must be positive")
	}
	err := s.Repo.Debit(ctx, studentID, comboOrderID, n)
	switch err {
	case nil:
		return nil
	case creditRepo.ErrInsufficient:
		return services.NewInsufficientCreditError("combo order %s has no remaining slots", comboOrderID)
	case creditRepo.ErrNotFound:
		return services.NewNotFoundError("combo order %s not found", comboOrderID)
	default:
		return fmt.Errorf("failed to debit combo credit: %w", err)
	}
}

func (s *DefaultCreditService) Credit(ctx context.Context, studentID, comboOrderID string, n int) error {
	if n <= 0 {
		return services.NewValidationError("credit amount must be positive")
	}
	err := s.Repo.Credit(ctx, studentID, comboOrderID, n)
	switch err {
	case nil:
		return nil
	case creditRepo.ErrNotFound:
		return services.NewNotFoundError("combo order %s not found", comboOrderID)
	default:
		return fmt.Errorf("failed to credit combo: %w", err)
	}
}
