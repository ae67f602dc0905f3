package postgres

import "context"

// IClient is the transaction boundary surface services depend on. *DB
// implements it against postgres; tests substitute an in-memory no-op.
type IClient interface {
	// WithTx wraps the given function in a transaction
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

var _ IClient = (*DB)(nil)
