package types

// Status tracks the lifecycle of a persisted row. Deleted rows are kept for
// audit and excluded from queries, never physically removed.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)
