package types

import (
	"context"
	"time"
)

// BaseModel is embedded by every persisted domain model. All billing tables
// are scoped to a law firm; LawFirmID is filled from the request context and
// every repository query filters on it.
type BaseModel struct {
	LawFirmID string    `db:"law_firm_id" json:"law_firm_id"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	UpdatedBy string    `db:"updated_by" json:"updated_by"`
}

func GetDefaultBaseModel(ctx context.Context) BaseModel {
	now := time.Now().UTC()
	return BaseModel{
		LawFirmID: GetLawFirmID(ctx),
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: GetUserID(ctx),
		UpdatedBy: GetUserID(ctx),
	}
}
