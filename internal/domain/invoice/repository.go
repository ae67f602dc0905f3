package invoice

import (
	"context"
	"time"

	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// CreateWithDetails persists the header, its detail row and all line
	// items. Callers wrap this in a transaction so the writes are
	// all-or-nothing.
	CreateWithDetails(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID with line items and detail row
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update updates an existing invoice header (status, payment fields)
	Update(ctx context.Context, invoice *Invoice) error

	// List retrieves invoices based on filter criteria
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// Count returns the total count of invoices based on filter criteria
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)

	// ExistsForPeriod reports whether a subscription invoice already
	// exists for the given period
	ExistsForPeriod(ctx context.Context, subscriptionID string, periodStart, periodEnd time.Time) (bool, error)

	// ExistsForInstallment reports whether an installment invoice already
	// exists for the given payment plan and installment number
	ExistsForInstallment(ctx context.Context, paymentPlanID string, installmentNumber int) (bool, error)

	// GetInstallmentNumbers returns the installment numbers already
	// invoiced for a payment plan, ascending
	GetInstallmentNumbers(ctx context.Context, paymentPlanID string) ([]int, error)
}

// GenerationLogRepository persists batch audit rows
type GenerationLogRepository interface {
	Create(ctx context.Context, log *GenerationLog) error
	List(ctx context.Context, filter *types.QueryFilter) ([]*GenerationLog, error)
}
