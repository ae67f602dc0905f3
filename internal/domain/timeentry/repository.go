package timeentry

import (
	"context"
	"time"
)

// Repository defines the interface for time entry reads. The billing
// subsystem never mutates time entries; Create exists for seeding and the
// time-tracking service that owns the table.
type Repository interface {
	Create(ctx context.Context, entry *TimeEntry) error

	// ListBySubscription returns entries tied to a subscription whose work
	// date falls inside [periodStart, periodEnd] (inclusive dates)
	ListBySubscription(ctx context.Context, subscriptionID string, periodStart, periodEnd time.Time) ([]*TimeEntry, error)

	// ListByMatter returns all entries recorded on a matter
	ListByMatter(ctx context.Context, matterID string) ([]*TimeEntry, error)
}
