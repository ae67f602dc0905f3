package timeentry

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// TimeEntry is a work record. The billing subsystem consumes these as
// read-only input: the usage calculator tallies them against plan
// inclusions, and the case charge calculator turns billable ones into time
// charges.
type TimeEntry struct {
	ID       string `db:"id" json:"id"`
	ClientID string `db:"client_id" json:"client_id"`

	MatterID       *string `db:"matter_id" json:"matter_id,omitempty"`
	SubscriptionID *string `db:"subscription_id" json:"subscription_id,omitempty"`

	Category    types.LegalServiceType `db:"category" json:"category"`
	Description string                 `db:"description" json:"description,omitempty"`

	EffectiveMinutes int  `db:"effective_minutes" json:"effective_minutes"`
	Billable         bool `db:"billable" json:"billable"`

	// BillableRate, when set, overrides the matter's configured hourly rate
	BillableRate *decimal.Decimal `db:"billable_rate" json:"billable_rate,omitempty"`

	WorkDate time.Time `db:"work_date" json:"work_date"`

	types.BaseModel
}

// EffectiveRate returns the entry's own rate if set, else the fallback
func (t *TimeEntry) EffectiveRate(fallback decimal.Decimal) decimal.Decimal {
	if t.BillableRate != nil {
		return *t.BillableRate
	}
	return fallback
}

// Hours returns the entry duration in fractional hours
func (t *TimeEntry) Hours() decimal.Decimal {
	return decimal.NewFromInt(int64(t.EffectiveMinutes)).Div(decimal.NewFromInt(60))
}
