package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talktorobson/prima-facie-sub001/internal/api/dto"
	"github.com/talktorobson/prima-facie-sub001/internal/config"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/logger"
	"github.com/talktorobson/prima-facie-sub001/internal/service"
)

// GenerationHandler exposes the invoice generation pipelines: subscription
// periods, case billing and payment plan installments, single and batch.
type GenerationHandler struct {
	subscriptionService service.SubscriptionInvoiceService
	caseService         service.CaseInvoiceService
	paymentPlanService  service.PaymentPlanInvoiceService
	config              *config.Configuration
	logger              *logger.Logger
}

func NewGenerationHandler(
	subscriptionService service.SubscriptionInvoiceService,
	caseService service.CaseInvoiceService,
	paymentPlanService service.PaymentPlanInvoiceService,
	config *config.Configuration,
	logger *logger.Logger,
) *GenerationHandler {
	return &GenerationHandler{
		subscriptionService: subscriptionService,
		caseService:         caseService,
		paymentPlanService:  paymentPlanService,
		config:              config,
		logger:              logger,
	}
}

// GenerateSubscriptionInvoice godoc
// @Summary Generate a subscription invoice
// @Description Generate an invoice for one subscription billing period
// @Tags Generation
// @Accept json
// @Produce json
// @Param request body dto.GenerateSubscriptionInvoiceRequest true "Generation request"
// @Success 201 {object} dto.InvoiceGenerationResult
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /invoices/generate/subscription [post]
func (h *GenerationHandler) GenerateSubscriptionInvoice(c *gin.Context) {
	var req dto.GenerateSubscriptionInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("Requisição inválida").Mark(ierr.ErrValidation))
		return
	}

	result, err := h.subscriptionService.GenerateSubscriptionInvoice(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorw("failed to generate subscription invoice",
			"subscription_id", req.SubscriptionID,
			"error", err,
		)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GenerateBatchSubscriptionInvoices godoc
// @Summary Generate subscription invoices in batch
// @Description Generate invoices for many subscriptions; an empty list targets all active subscriptions
// @Tags Generation
// @Accept json
// @Produce json
// @Param request body dto.GenerateBatchSubscriptionInvoicesRequest true "Batch request"
// @Success 200 {object} dto.BatchInvoiceGenerationResult
// @Failure 400 {object} middleware.ErrorResponse
// @Router /invoices/generate/subscription/batch [post]
func (h *GenerationHandler) GenerateBatchSubscriptionInvoices(c *gin.Context) {
	var req dto.GenerateBatchSubscriptionInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("Requisição inválida").Mark(ierr.ErrValidation))
		return
	}

	result, err := h.subscriptionService.GenerateBatchSubscriptionInvoices(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GenerateCaseInvoice godoc
// @Summary Generate a case invoice
// @Description Generate an invoice for a matter per its billing method
// @Tags Generation
// @Accept json
// @Produce json
// @Param request body dto.GenerateCaseInvoiceRequest true "Generation request"
// @Success 201 {object} dto.InvoiceGenerationResult
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /invoices/generate/case [post]
func (h *GenerationHandler) GenerateCaseInvoice(c *gin.Context) {
	var req dto.GenerateCaseInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("Requisição inválida").Mark(ierr.ErrValidation))
		return
	}

	result, err := h.caseService.GenerateCaseInvoice(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorw("failed to generate case invoice",
			"matter_id", req.MatterID,
			"error", err,
		)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GenerateBatchCaseInvoices godoc
// @Summary Generate case invoices in batch
// @Description Generate invoices for many matters
// @Tags Generation
// @Accept json
// @Produce json
// @Param request body dto.GenerateBatchCaseInvoicesRequest true "Batch request"
// @Success 200 {object} dto.BatchInvoiceGenerationResult
// @Failure 400 {object} middleware.ErrorResponse
// @Router /invoices/generate/case/batch [post]
func (h *GenerationHandler) GenerateBatchCaseInvoices(c *gin.Context) {
	var req dto.GenerateBatchCaseInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("Requisição inválida").Mark(ierr.ErrValidation))
		return
	}

	result, err := h.caseService.GenerateBatchCaseInvoices(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GeneratePaymentPlanInvoice godoc
// @Summary Generate a payment plan installment invoice
// @Description Generate the next (or an explicit) installment invoice of a payment plan
// @Tags Generation
// @Accept json
// @Produce json
// @Param request body dto.GeneratePaymentPlanInvoiceRequest true "Generation request"
// @Success 201 {object} dto.InvoiceGenerationResult
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /invoices/generate/payment-plan [post]
func (h *GenerationHandler) GeneratePaymentPlanInvoice(c *gin.Context) {
	var req dto.GeneratePaymentPlanInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("Requisição inválida").Mark(ierr.ErrValidation))
		return
	}

	result, err := h.paymentPlanService.GeneratePaymentPlanInvoice(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorw("failed to generate payment plan invoice",
			"payment_plan_id", req.PaymentPlanID,
			"error", err,
		)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GenerateRemainingInstallments godoc
// @Summary Generate all remaining installments of a payment plan
// @Description Generate invoices for every installment not yet billed
// @Tags Generation
// @Produce json
// @Param id path string true "Payment plan ID"
// @Success 200 {object} dto.BatchInvoiceGenerationResult
// @Failure 404 {object} middleware.ErrorResponse
// @Router /payment-plans/{id}/generate-remaining [post]
func (h *GenerationHandler) GenerateRemainingInstallments(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid payment plan id").
			WithHint("Identificador de plano inválido").
			Mark(ierr.ErrValidation))
		return
	}

	result, err := h.paymentPlanService.GenerateAllRemainingInstallments(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GenerateOverdueInstallments godoc
// @Summary Generate overdue installment invoices
// @Description Sweep active payment plans and invoice every installment past due date and grace
// @Tags Generation
// @Produce json
// @Success 200 {object} dto.BatchInvoiceGenerationResult
// @Router /invoices/generate/overdue-installments [post]
func (h *GenerationHandler) GenerateOverdueInstallments(c *gin.Context) {
	result, err := h.paymentPlanService.GenerateOverdueInstallments(
		c.Request.Context(),
		h.config.Billing.DefaultGracePeriodDays,
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
