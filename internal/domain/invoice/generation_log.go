package invoice

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// GenerationError records one failed target inside a batch run
type GenerationError struct {
	ClientID string `json:"client_id,omitempty"`
	TargetID string `json:"target_id"`
	Error    string `json:"error"`
}

// GenerationErrors is stored as JSONB on the generation log row
type GenerationErrors []GenerationError

func (g *GenerationErrors) Scan(value interface{}) error {
	if value == nil {
		*g = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}
	return json.Unmarshal(bytes, g)
}

func (g GenerationErrors) Value() (driver.Value, error) {
	if g == nil {
		return json.Marshal(GenerationErrors{})
	}
	return json.Marshal(g)
}

// GenerationLog is the audit record written once per batch generation run
type GenerationLog struct {
	ID          string            `db:"id" json:"id"`
	BatchID     string            `db:"batch_id" json:"batch_id"`
	InvoiceType types.InvoiceType `db:"invoice_type" json:"invoice_type"`

	TotalRequested int `db:"total_requested" json:"total_requested"`
	Successful     int `db:"successful" json:"successful"`
	Failed         int `db:"failed" json:"failed"`

	Errors GenerationErrors `db:"errors" json:"errors,omitempty"`

	StartedAt   time.Time `db:"started_at" json:"started_at"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`

	types.BaseModel
}
