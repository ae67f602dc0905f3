package types

import (
	"context"
	"fmt"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID     ContextKey = "ctx_request_id"
	CtxLawFirmID     ContextKey = "ctx_law_firm_id"
	CtxUserID        ContextKey = "ctx_user_id"
	CtxDBTransaction ContextKey = "ctx_db_transaction"

	// Default values used by scripts and tests
	DefaultLawFirmID = "00000000-0000-0000-0000-000000000000"
	DefaultUserID    = "00000000-0000-0000-0000-000000000000"
)

// HTTP headers carrying request scope
const (
	HeaderRequestID = "X-Request-ID"
	HeaderLawFirmID = "X-Law-Firm-ID"
	HeaderUserID    = "X-User-ID"
)

func GetLawFirmID(ctx context.Context) string {
	if lawFirmID, ok := ctx.Value(CtxLawFirmID).(string); ok {
		return lawFirmID
	}
	return ""
}

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// SetLawFirmID sets the law firm ID in the context
func SetLawFirmID(ctx context.Context, lawFirmID string) context.Context {
	return context.WithValue(ctx, CtxLawFirmID, lawFirmID)
}

// SetUserID sets the user ID in the context
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

// ValidateTenantContext validates that the law firm scope is present
func ValidateTenantContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context is nil")
	}

	if GetLawFirmID(ctx) == "" {
		return fmt.Errorf("no law firm found in context")
	}

	return nil
}
