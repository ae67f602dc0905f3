package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/timeentry"
)

// InMemoryTimeEntryStore implements timeentry.Repository
type InMemoryTimeEntryStore struct {
	*InMemoryStore[*timeentry.TimeEntry]
}

// NewInMemoryTimeEntryStore creates a new in-memory time entry store
func NewInMemoryTimeEntryStore() *InMemoryTimeEntryStore {
	return &InMemoryTimeEntryStore{
		InMemoryStore: NewInMemoryStore[*timeentry.TimeEntry](),
	}
}

func copyTimeEntry(entry *timeentry.TimeEntry) *timeentry.TimeEntry {
	if entry == nil {
		return nil
	}
	entryCopy := *entry
	return &entryCopy
}

func (s *InMemoryTimeEntryStore) Create(ctx context.Context, entry *timeentry.TimeEntry) error {
	if entry == nil {
		return fmt.Errorf("time entry cannot be nil")
	}
	return s.InMemoryStore.Create(ctx, entry.ID, copyTimeEntry(entry))
}

func (s *InMemoryTimeEntryStore) ListBySubscription(ctx context.Context, subscriptionID string, periodStart, periodEnd time.Time) ([]*timeentry.TimeEntry, error) {
	return s.InMemoryStore.List(ctx, nil, func(ctx context.Context, entry *timeentry.TimeEntry, _ interface{}) bool {
		if !CheckLawFirmFilter(ctx, entry.LawFirmID) {
			return false
		}
		if entry.SubscriptionID == nil || *entry.SubscriptionID != subscriptionID {
			return false
		}
		return !entry.WorkDate.Before(periodStart) && !entry.WorkDate.After(periodEnd)
	}, timeEntrySortFn)
}

func (s *InMemoryTimeEntryStore) ListByMatter(ctx context.Context, matterID string) ([]*timeentry.TimeEntry, error) {
	return s.InMemoryStore.List(ctx, nil, func(ctx context.Context, entry *timeentry.TimeEntry, _ interface{}) bool {
		return CheckLawFirmFilter(ctx, entry.LawFirmID) &&
			entry.MatterID != nil && *entry.MatterID == matterID
	}, timeEntrySortFn)
}

func timeEntrySortFn(i, j *timeentry.TimeEntry) bool {
	return i.WorkDate.Before(j.WorkDate)
}
