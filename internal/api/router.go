package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/talktorobson/prima-facie-sub001/internal/api/v1"
	"github.com/talktorobson/prima-facie-sub001/internal/config"
	"github.com/talktorobson/prima-facie-sub001/internal/logger"
	"github.com/talktorobson/prima-facie-sub001/internal/rest/middleware"
)

type Handlers struct {
	Health     *v1.HealthHandler
	Invoice    *v1.InvoiceHandler
	Generation *v1.GenerationHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	v1Group.Use(middleware.TenantMiddleware)
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	invoices := router.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.CreateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.POST("/:id/approve", handlers.Invoice.ApproveInvoice)
		invoices.POST("/:id/send", handlers.Invoice.SendInvoice)
		invoices.POST("/:id/view", handlers.Invoice.MarkInvoiceViewed)
		invoices.POST("/:id/cancel", handlers.Invoice.CancelInvoice)
		invoices.POST("/:id/payments", handlers.Invoice.RecordPayment)

		generate := invoices.Group("/generate")
		{
			generate.POST("/subscription", handlers.Generation.GenerateSubscriptionInvoice)
			generate.POST("/subscription/batch", handlers.Generation.GenerateBatchSubscriptionInvoices)
			generate.POST("/case", handlers.Generation.GenerateCaseInvoice)
			generate.POST("/case/batch", handlers.Generation.GenerateBatchCaseInvoices)
			generate.POST("/payment-plan", handlers.Generation.GeneratePaymentPlanInvoice)
			generate.POST("/overdue-installments", handlers.Generation.GenerateOverdueInstallments)
		}
	}

	router.POST("/payment-plans/:id/generate-remaining", handlers.Generation.GenerateRemainingInstallments)

	router.GET("/generation-logs", handlers.Invoice.ListGenerationLogs)
}
