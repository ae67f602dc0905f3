package matter

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// Matter is a legal case handled for a client
type Matter struct {
	ID       string `db:"id" json:"id"`
	ClientID string `db:"client_id" json:"client_id"`
	Title    string `db:"title" json:"title"`
	Area     string `db:"area" json:"area,omitempty"`

	OpenedAt time.Time  `db:"opened_at" json:"opened_at"`
	ClosedAt *time.Time `db:"closed_at" json:"closed_at,omitempty"`

	types.BaseModel
}

// BillingConfig is the case billing configuration for a matter. A matter
// without one cannot be invoiced.
type BillingConfig struct {
	ID       string `db:"id" json:"id"`
	MatterID string `db:"matter_id" json:"matter_id"`

	BillingMethod  types.BillingMethod `db:"billing_method" json:"billing_method"`
	HourlyRate     decimal.Decimal     `db:"hourly_rate" json:"hourly_rate"`
	FixedFee       decimal.Decimal     `db:"fixed_fee" json:"fixed_fee"`
	PercentageRate decimal.Decimal     `db:"percentage_rate" json:"percentage_rate"`

	// MinimumFee, when set, floors the invoice subtotal
	MinimumFee *decimal.Decimal `db:"minimum_fee" json:"minimum_fee,omitempty"`

	types.BaseModel
}

// Outcome is the recorded result of a matter, consumed by percentage and
// hybrid billing. A matter without an outcome yields zero percentage fees.
type Outcome struct {
	ID       string `db:"id" json:"id"`
	MatterID string `db:"matter_id" json:"matter_id"`

	AmountRecovered decimal.Decimal `db:"amount_recovered" json:"amount_recovered"`
	SuccessFee      decimal.Decimal `db:"success_fee" json:"success_fee"`
	DecidedAt       time.Time       `db:"decided_at" json:"decided_at"`

	types.BaseModel
}

// Expense is a cost incurred on a matter
type Expense struct {
	ID       string `db:"id" json:"id"`
	MatterID string `db:"matter_id" json:"matter_id"`

	Description  string          `db:"description" json:"description"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	Reimbursable bool            `db:"reimbursable" json:"reimbursable"`
	IncurredAt   time.Time       `db:"incurred_at" json:"incurred_at"`

	types.BaseModel
}
