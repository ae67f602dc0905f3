package matter

import "context"

// Repository defines the interface for matter persistence operations.
// Billing config, outcome and expenses live on satellite tables keyed by
// matter id.
type Repository interface {
	Create(ctx context.Context, matter *Matter) error
	Get(ctx context.Context, id string) (*Matter, error)
	Update(ctx context.Context, matter *Matter) error

	// GetBillingConfig returns the case billing configuration for a
	// matter, or a not-found error when none is configured
	GetBillingConfig(ctx context.Context, matterID string) (*BillingConfig, error)
	SetBillingConfig(ctx context.Context, config *BillingConfig) error

	// GetOutcome returns the recorded outcome for a matter; callers must
	// treat not-found as "no outcome yet", not as a failure
	GetOutcome(ctx context.Context, matterID string) (*Outcome, error)
	SetOutcome(ctx context.Context, outcome *Outcome) error

	// ListExpenses returns all expenses recorded on a matter
	ListExpenses(ctx context.Context, matterID string) ([]*Expense, error)
	AddExpense(ctx context.Context, expense *Expense) error
}
