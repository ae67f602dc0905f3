package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talktorobson/prima-facie-sub001/internal/api/dto"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/invoice"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/logger"
	"github.com/talktorobson/prima-facie-sub001/internal/service"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	logger         *logger.Logger
}

func NewInvoiceHandler(invoiceService service.InvoiceService, logger *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// CreateInvoice godoc
// @Summary Create a new invoice
// @Description Create a new invoice with its line items and detail row
// @Tags Invoices
// @Accept json
// @Produce json
// @Param invoice body invoice.Invoice true "Invoice details"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var inv invoice.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("Requisição inválida").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.invoiceService.CreateInvoice(c.Request.Context(), &inv)
	if err != nil {
		h.logger.Errorw("failed to create invoice", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetInvoice godoc
// @Summary Get an invoice by ID
// @Description Get an invoice with its line items and detail row
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid invoice id").
			WithHint("Identificador de fatura inválido").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListInvoices godoc
// @Summary List invoices
// @Description List invoices with optional filtering
// @Tags Invoices
// @Produce json
// @Param filter query types.InvoiceFilter false "Filter"
// @Success 200 {object} dto.ListInvoicesResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var filter types.InvoiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).WithHint("Parâmetros de busca inválidos").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.invoiceService.ListInvoices(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ApproveInvoice godoc
// @Summary Approve an invoice
// @Description Move a draft invoice to approved
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /invoices/{id}/approve [post]
func (h *InvoiceHandler) ApproveInvoice(c *gin.Context) {
	h.statusOp(c, h.invoiceService.ApproveInvoice)
}

// SendInvoice godoc
// @Summary Send an invoice
// @Description Move an approved invoice to sent
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /invoices/{id}/send [post]
func (h *InvoiceHandler) SendInvoice(c *gin.Context) {
	h.statusOp(c, h.invoiceService.SendInvoice)
}

// MarkInvoiceViewed godoc
// @Summary Mark an invoice as viewed
// @Description Record that the client viewed the invoice
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /invoices/{id}/view [post]
func (h *InvoiceHandler) MarkInvoiceViewed(c *gin.Context) {
	h.statusOp(c, h.invoiceService.MarkViewed)
}

// CancelInvoice godoc
// @Summary Cancel an invoice
// @Description Cancel the invoice if its status allows it
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /invoices/{id}/cancel [post]
func (h *InvoiceHandler) CancelInvoice(c *gin.Context) {
	h.statusOp(c, h.invoiceService.CancelInvoice)
}

// RecordPayment godoc
// @Summary Record a payment
// @Description Allocate a payment against the invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param payment body dto.RecordPaymentRequest true "Payment details"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id := c.Param("id")

	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("Requisição inválida").Mark(ierr.ErrValidation))
		return
	}

	if err := h.invoiceService.RecordPayment(c.Request.Context(), id, req); err != nil {
		h.logger.Errorw("failed to record payment", "invoice_id", id, "error", err)
		c.Error(err)
		return
	}

	h.respondWithInvoice(c, id)
}

// ListGenerationLogs godoc
// @Summary List generation logs
// @Description List batch invoice generation audit rows
// @Tags Invoices
// @Produce json
// @Success 200 {object} dto.ListGenerationLogsResponse
// @Router /generation-logs [get]
func (h *InvoiceHandler) ListGenerationLogs(c *gin.Context) {
	var filter types.QueryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).WithHint("Parâmetros de busca inválidos").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.invoiceService.ListGenerationLogs(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *InvoiceHandler) statusOp(c *gin.Context, op func(ctx context.Context, id string) error) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid invoice id").
			WithHint("Identificador de fatura inválido").
			Mark(ierr.ErrValidation))
		return
	}

	if err := op(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	h.respondWithInvoice(c, id)
}

func (h *InvoiceHandler) respondWithInvoice(c *gin.Context, id string) {
	resp, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
