package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ServiceUsage is the per-service tally of a subscription billing period:
// what the plan includes, what was actually consumed, and the resulting
// overage.
type ServiceUsage struct {
	Included      int             `json:"included"`
	Used          int             `json:"used"`
	Overage       int             `json:"overage"`
	Unit          string          `json:"unit"`
	OverageRate   decimal.Decimal `json:"overage_rate"`
	OverageCharge decimal.Decimal `json:"overage_charge"`
}

// ServiceUsageMap maps a legal service type to its usage tally. Stored as
// JSONB on the subscription invoice detail row.
type ServiceUsageMap map[LegalServiceType]ServiceUsage

// Scan implements the sql.Scanner interface
func (m *ServiceUsageMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(ServiceUsageMap)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	result := make(ServiceUsageMap)
	err := json.Unmarshal(bytes, &result)
	*m = result
	return err
}

// Value implements the driver.Valuer interface
func (m ServiceUsageMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(make(ServiceUsageMap))
	}
	return json.Marshal(m)
}
