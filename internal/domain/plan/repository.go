package plan

import "context"

// Repository defines the interface for plan persistence operations
type Repository interface {
	Create(ctx context.Context, plan *Plan) error
	Get(ctx context.Context, id string) (*Plan, error)
	Update(ctx context.Context, plan *Plan) error
	List(ctx context.Context) ([]*Plan, error)
}
