package testutil

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/invoice"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

// NewInMemoryInvoiceStore creates a new in-memory invoice store
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

// Helper to deep copy an invoice together with its line items and detail row
func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}

	out := *inv

	if len(inv.LineItems) > 0 {
		out.LineItems = make([]*invoice.LineItem, len(inv.LineItems))
		for i, item := range inv.LineItems {
			itemCopy := *item
			out.LineItems[i] = &itemCopy
		}
	}

	if inv.SubscriptionDetail != nil {
		detail := *inv.SubscriptionDetail
		out.SubscriptionDetail = &detail
	}
	if inv.CaseDetail != nil {
		detail := *inv.CaseDetail
		out.CaseDetail = &detail
	}
	if inv.PaymentPlanDetail != nil {
		detail := *inv.PaymentPlanDetail
		out.PaymentPlanDetail = &detail
	}

	return &out
}

func (s *InMemoryInvoiceStore) CreateWithDetails(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return fmt.Errorf("invoice cannot be nil")
	}
	if err := s.InMemoryStore.Create(ctx, inv.ID, copyInvoice(inv)); err != nil {
		return invoice.ErrInvoiceAlreadyExists
	}
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, invoice.ErrInvoiceNotFound
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return fmt.Errorf("invoice cannot be nil")
	}
	if err := s.InMemoryStore.Update(ctx, inv.ID, copyInvoice(inv)); err != nil {
		return invoice.ErrInvoiceNotFound
	}
	return nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	invoices, err := s.InMemoryStore.List(ctx, asFilter(filter), invoiceFilterFn, invoiceSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(invoices, func(inv *invoice.Invoice, _ int) *invoice.Invoice {
		return copyInvoice(inv)
	}), nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, asFilter(filter), invoiceFilterFn)
}

func (s *InMemoryInvoiceStore) ExistsForPeriod(ctx context.Context, subscriptionID string, periodStart, periodEnd time.Time) (bool, error) {
	invoices, err := s.InMemoryStore.List(ctx, nil, nil, nil)
	if err != nil {
		return false, err
	}
	for _, inv := range invoices {
		if !CheckLawFirmFilter(ctx, inv.LawFirmID) {
			continue
		}
		d := inv.SubscriptionDetail
		if d == nil || d.SubscriptionID != subscriptionID {
			continue
		}
		if d.PeriodStart.Equal(periodStart) && d.PeriodEnd.Equal(periodEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryInvoiceStore) ExistsForInstallment(ctx context.Context, paymentPlanID string, installmentNumber int) (bool, error) {
	numbers, err := s.GetInstallmentNumbers(ctx, paymentPlanID)
	if err != nil {
		return false, err
	}
	return lo.Contains(numbers, installmentNumber), nil
}

func (s *InMemoryInvoiceStore) GetInstallmentNumbers(ctx context.Context, paymentPlanID string) ([]int, error) {
	invoices, err := s.InMemoryStore.List(ctx, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	var numbers []int
	for _, inv := range invoices {
		if !CheckLawFirmFilter(ctx, inv.LawFirmID) {
			continue
		}
		d := inv.PaymentPlanDetail
		if d == nil || d.PaymentPlanID != paymentPlanID {
			continue
		}
		numbers = append(numbers, d.InstallmentNumber)
	}
	sort.Ints(numbers)
	return numbers, nil
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	if inv == nil {
		return false
	}
	if !CheckLawFirmFilter(ctx, inv.LawFirmID) {
		return false
	}

	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}

	if f.ClientID != "" && inv.ClientID != f.ClientID {
		return false
	}
	if f.SubscriptionID != "" && (inv.SubscriptionID == nil || *inv.SubscriptionID != f.SubscriptionID) {
		return false
	}
	if f.MatterID != "" && (inv.MatterID == nil || *inv.MatterID != f.MatterID) {
		return false
	}
	if f.PaymentPlanID != "" && (inv.PaymentPlanID == nil || *inv.PaymentPlanID != f.PaymentPlanID) {
		return false
	}
	if f.InvoiceType != "" && inv.InvoiceType != f.InvoiceType {
		return false
	}
	if len(f.InvoiceStatus) > 0 && !lo.Contains(f.InvoiceStatus, inv.InvoiceStatus) {
		return false
	}
	if f.IssuedAfter != nil && inv.IssueDate.Before(*f.IssuedAfter) {
		return false
	}
	if f.IssuedBefore != nil && inv.IssueDate.After(*f.IssuedBefore) {
		return false
	}
	return true
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	return i.CreatedAt.After(j.CreatedAt)
}
