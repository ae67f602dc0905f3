package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// LineItem is a single line of an invoice. LineTotal is quantity × unit
// price, except for signed line types (discount, adjustment) which carry
// their total directly and may be negative.
type LineItem struct {
	ID          string             `db:"id" json:"id"`
	InvoiceID   string             `db:"invoice_id" json:"invoice_id"`
	ClientID    string             `db:"client_id" json:"client_id"`
	ItemType    types.LineItemType `db:"item_type" json:"item_type"`
	Description string             `db:"description" json:"description"`
	Quantity    decimal.Decimal    `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal    `db:"unit_price" json:"unit_price"`
	LineTotal   decimal.Decimal    `db:"line_total" json:"line_total"`
	Currency    string             `db:"currency" json:"currency"`

	// TimeEntryID back-references the source time entry for time_entry lines
	TimeEntryID *string `db:"time_entry_id" json:"time_entry_id,omitempty"`

	ServiceType *types.LegalServiceType `db:"service_type" json:"service_type,omitempty"`

	types.BaseModel
}

// NewLineItem builds an unsigned line with LineTotal = Quantity × UnitPrice
func NewLineItem(itemType types.LineItemType, description string, quantity, unitPrice decimal.Decimal, currency string) *LineItem {
	return &LineItem{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
		ItemType:    itemType,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   quantity.Mul(unitPrice).Round(2),
		Currency:    currency,
	}
}

// NewSignedLineItem builds a discount/adjustment line carrying its total
// directly
func NewSignedLineItem(itemType types.LineItemType, description string, total decimal.Decimal, currency string) *LineItem {
	return &LineItem{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
		ItemType:    itemType,
		Description: description,
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   total,
		LineTotal:   total.Round(2),
		Currency:    currency,
	}
}

func (l *LineItem) Validate() error {
	if err := l.ItemType.Validate(); err != nil {
		return err
	}

	if l.Quantity.IsNegative() {
		return NewValidationError("quantity", "must be non negative")
	}

	if l.ItemType.IsSigned() {
		return nil
	}

	if l.UnitPrice.IsNegative() {
		return NewValidationError("unit_price", "must be non negative")
	}

	if !l.LineTotal.Equal(l.Quantity.Mul(l.UnitPrice).Round(2)) {
		return NewValidationError("line_total", "must equal quantity * unit_price")
	}

	return nil
}
