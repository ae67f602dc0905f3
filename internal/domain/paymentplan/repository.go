package paymentplan

import (
	"context"
	"errors"
)

var (
	// ErrPlanNotFound is returned when a payment plan is not found
	ErrPlanNotFound = errors.New("payment plan not found")
)

// Repository defines the interface for payment plan persistence operations
type Repository interface {
	Create(ctx context.Context, plan *PaymentPlan) error
	Get(ctx context.Context, id string) (*PaymentPlan, error)
	Update(ctx context.Context, plan *PaymentPlan) error

	// ListActive returns all active payment plans for the law firm in
	// context; used by overdue-installment sweeps
	ListActive(ctx context.Context) ([]*PaymentPlan, error)
}
