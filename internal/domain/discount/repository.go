package discount

import "context"

// Repository defines the interface for discount rule persistence operations
type Repository interface {
	Create(ctx context.Context, rule *Rule) error
	Get(ctx context.Context, id string) (*Rule, error)
	Update(ctx context.Context, rule *Rule) error

	// ListActive returns all active auto-apply rules for the law firm in
	// context, sorted by priority ascending
	ListActive(ctx context.Context) ([]*Rule, error)
}
