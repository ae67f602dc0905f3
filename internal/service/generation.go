package service

import (
	"context"
	"fmt"

	"github.com/talktorobson/prima-facie-sub001/internal/api/dto"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/invoice"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// resolveDiscountsOrZero applies the documented failure-tolerance policy:
// a resolver failure never fails invoice generation, it falls back to zero
// discount, logs the error and records a warning on the result.
func resolveDiscountsOrZero(
	ctx context.Context,
	discounts DiscountService,
	params ServiceParams,
	resolution DiscountResolutionParams,
	result *dto.InvoiceGenerationResult,
) *DiscountResolutionResult {
	resolved, err := discounts.ResolveDiscounts(ctx, resolution)
	if err != nil {
		params.Logger.Warnw("discount resolution failed, falling back to zero discount",
			"client_id", resolution.ClientID,
			"error", err,
		)
		result.Warnings = append(result.Warnings, "Falha ao resolver descontos; fatura gerada sem desconto")
		return &DiscountResolutionResult{FinalAmount: resolution.BaseAmount}
	}
	return resolved
}

// appendDiscountLine emits the visible negative discount line when any
// discount applied
func appendDiscountLine(inv *invoice.Invoice, discounts *DiscountResolutionResult, currency string) {
	if discounts == nil || !discounts.TotalDiscount.IsPositive() {
		return
	}
	description := "Desconto"
	if len(discounts.ApplicableDiscounts) == 1 {
		description = fmt.Sprintf("Desconto: %s", discounts.ApplicableDiscounts[0].Name)
	}
	inv.LineItems = append(inv.LineItems, invoice.NewSignedLineItem(
		types.LineItemTypeDiscount,
		description,
		discounts.TotalDiscount.Neg(),
		currency,
	))
}

// autoSendInvoice walks a freshly created draft through approval and
// sending. Failures degrade to warnings: the invoice already exists, only
// its status lags behind.
func autoSendInvoice(
	ctx context.Context,
	invoices InvoiceService,
	params ServiceParams,
	enabled bool,
	invoiceID string,
	result *dto.InvoiceGenerationResult,
) {
	if !enabled {
		return
	}

	if err := invoices.ApproveInvoice(ctx, invoiceID); err != nil {
		params.Logger.Warnw("auto-send: approval failed",
			"invoice_id", invoiceID,
			"error", err,
		)
		result.Warnings = append(result.Warnings, "Fatura criada mas não aprovada automaticamente")
		return
	}
	if err := invoices.SendInvoice(ctx, invoiceID); err != nil {
		params.Logger.Warnw("auto-send: sending failed",
			"invoice_id", invoiceID,
			"error", err,
		)
		result.Warnings = append(result.Warnings, "Fatura aprovada mas não enviada automaticamente")
		return
	}

	if result.Invoice != nil {
		if refreshed, err := invoices.GetInvoice(ctx, invoiceID); err == nil {
			result.Invoice = refreshed
		}
	}
}
