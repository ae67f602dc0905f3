package service

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/talktorobson/prima-facie-sub001/internal/api/dto"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/invoice"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// runBatchGeneration drives a batch run: per-target isolation, bounded
// concurrency, and one audit log row per run. A failure on one target
// never aborts the batch; successful + failed always equals requested.
func runBatchGeneration(
	ctx context.Context,
	params ServiceParams,
	invoiceType types.InvoiceType,
	targetIDs []string,
	generate func(ctx context.Context, targetID string) (*dto.InvoiceGenerationResult, error),
) *dto.BatchInvoiceGenerationResult {
	startedAt := time.Now().UTC()

	result := &dto.BatchInvoiceGenerationResult{
		BatchID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BATCH),
		TotalRequested: len(targetIDs),
		Invoices:       []*dto.InvoiceResponse{},
	}

	results := make([]*dto.InvoiceGenerationResult, len(targetIDs))

	maxConcurrency := params.Config.Billing.BatchMaxConcurrency
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	p := pool.New().WithMaxGoroutines(maxConcurrency)
	for i, targetID := range targetIDs {
		i, targetID := i, targetID
		p.Go(func() {
			res, err := generate(ctx, targetID)
			if err != nil {
				res = &dto.InvoiceGenerationResult{Error: err.Error()}
			}
			results[i] = res
		})
	}
	p.Wait()

	var logErrors invoice.GenerationErrors
	for i, res := range results {
		if res == nil {
			res = &dto.InvoiceGenerationResult{Error: "no result"}
		}
		if res.Success {
			result.SuccessfulGenerations++
			result.Invoices = append(result.Invoices, res.Invoice)
			continue
		}

		result.FailedGenerations++
		batchErr := dto.BatchGenerationError{
			TargetID: targetIDs[i],
			Error:    res.Error,
		}
		if res.Invoice != nil {
			batchErr.ClientID = res.Invoice.ClientID
		}
		result.Errors = append(result.Errors, batchErr)
		logErrors = append(logErrors, invoice.GenerationError{
			ClientID: batchErr.ClientID,
			TargetID: batchErr.TargetID,
			Error:    batchErr.Error,
		})
	}

	result.Success = result.FailedGenerations == 0

	log := &invoice.GenerationLog{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_GENERATION_LOG),
		BatchID:        result.BatchID,
		InvoiceType:    invoiceType,
		TotalRequested: result.TotalRequested,
		Successful:     result.SuccessfulGenerations,
		Failed:         result.FailedGenerations,
		Errors:         logErrors,
		StartedAt:      startedAt,
		CompletedAt:    time.Now().UTC(),
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if err := params.GenerationLogRepo.Create(ctx, log); err != nil {
		// the batch outcome is already decided; losing the audit row is
		// logged, not fatal
		params.Logger.Errorw("failed to write generation log",
			"batch_id", result.BatchID,
			"error", err,
		)
	}

	params.Logger.Infow("batch invoice generation finished",
		"batch_id", result.BatchID,
		"invoice_type", invoiceType,
		"total_requested", result.TotalRequested,
		"successful", result.SuccessfulGenerations,
		"failed", result.FailedGenerations,
	)

	return result
}
