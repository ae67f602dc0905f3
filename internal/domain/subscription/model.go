package subscription

import (
	"time"

	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// Subscription is a client's enrollment in a legal plan
type Subscription struct {
	ID       string `db:"id" json:"id"`
	ClientID string `db:"client_id" json:"client_id"`
	PlanID   string `db:"plan_id" json:"plan_id"`

	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`

	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`

	AutoRenew       bool       `db:"auto_renew" json:"auto_renew"`
	NextBillingDate *time.Time `db:"next_billing_date" json:"next_billing_date,omitempty"`

	types.BaseModel
}
