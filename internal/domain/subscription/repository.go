package subscription

import "context"

// Repository defines the interface for subscription persistence operations
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error

	// ListActive returns all active subscriptions for the law firm in
	// context; used by batch subscription billing
	ListActive(ctx context.Context) ([]*Subscription, error)
}
