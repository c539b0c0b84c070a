package worker

// retry_cron.go
// Background goroutine that periodically re-attempts issuance for fiscal
// documents stuck in Pendente with a next_retry_at in the past, and expires
// budgets past their validity. Skips fiscal work while the gateway breaker is open.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vendapos/internal/infra"
	"vendapos/internal/service"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval  = 30 * time.Second
	expireTickInterval = time.Hour
	retryBatchSize     = 10
)

// BreakerState reports the gateway breaker. *infra.CircuitBreaker satisfies it.
type BreakerState interface {
	State() infra.CBState
}

// DeadLetterer parks jobs for manual inspection. *Dispatcher satisfies it.
type DeadLetterer interface {
	DeadLetter(ctx context.Context, queue, jobType string, payload json.RawMessage, reason string, attempts int)
}

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	Fiscal  service.FiscalService
	Budgets service.BudgetService
	CB      BreakerState // nil in mock mode
	DLQ     DeadLetterer
}

// StartRetryCron launches a background goroutine that ticks every 30s for
// fiscal retries and hourly for budget expiry. It respects ctx for graceful
// shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		retry := time.NewTicker(retryTickInterval)
		defer retry.Stop()
		expire := time.NewTicker(expireTickInterval)
		defer expire.Stop()

		log.Info().Msg("retry_cron: started")
		expireBudgets(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-retry.C:
				processRetries(ctx, cfg)
			case <-expire.C:
				expireBudgets(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// Don't hammer a downed gateway
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	rep, err := cfg.Fiscal.RetryPending(ctx, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if rep.Attempted > 0 {
		log.Info().
			Int("attempted", rep.Attempted).
			Int("issued", rep.Issued).
			Int("failed", rep.Failed).
			Msg("retry_cron: processed pending fiscal documents")
	}

	for _, id := range rep.Exhausted {
		payload := json.RawMessage(fmt.Sprintf(`{"fiscal_document_id":%q}`, id.String()))
		cfg.DLQ.DeadLetter(ctx, QueueFiscal, JobFiscalRetry, payload,
			fmt.Sprintf("max retries (%d) exceeded", service.MaxFiscalRetries), service.MaxFiscalRetries)
	}
}

func expireBudgets(ctx context.Context, cfg RetryCronConfig) {
	if cfg.Budgets == nil {
		return
	}
	n, err := cfg.Budgets.ExpireBudgets(ctx)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to expire budgets")
		return
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("retry_cron: budgets expired")
	}
}
