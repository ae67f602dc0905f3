package plan

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// ServiceInclusion is one service quota bundled into a legal plan
type ServiceInclusion struct {
	ServiceType types.LegalServiceType `json:"service_type"`
	IncludedQty int                    `json:"included_qty"`
	OverageRate decimal.Decimal        `json:"overage_rate"`
}

// ServiceInclusions is stored as JSONB on the plan row
type ServiceInclusions []ServiceInclusion

func (s *ServiceInclusions) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}
	return json.Unmarshal(bytes, s)
}

func (s ServiceInclusions) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal(ServiceInclusions{})
	}
	return json.Marshal(s)
}

// Plan is a legal-services subscription plan with bundled service quotas
type Plan struct {
	ID           string            `db:"id" json:"id"`
	Name         string            `db:"name" json:"name"`
	Description  string            `db:"description" json:"description,omitempty"`
	MonthlyPrice decimal.Decimal   `db:"monthly_price" json:"monthly_price"`
	Currency     string            `db:"currency" json:"currency"`
	Services     ServiceInclusions `db:"services" json:"services"`

	types.BaseModel
}

// InclusionFor returns the inclusion for a service type, if the plan has one
func (p *Plan) InclusionFor(serviceType types.LegalServiceType) (ServiceInclusion, bool) {
	for _, inc := range p.Services {
		if inc.ServiceType == serviceType {
			return inc, true
		}
	}
	return ServiceInclusion{}, false
}
