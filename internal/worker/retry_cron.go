package worker

// retry_cron.go
// Background goroutine that periodically re-attempts the best-effort ledger
// side effects (register totals, customer history) for sales flagged
// ledger_sync_pending. The flag is what makes drift observable: a sale whose
// side effects never landed stays flagged until this loop clears it.

import (
	"context"
	"time"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/model"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// LedgerSyncer re-applies a sale's best-effort side effects.
// Implemented by the sale service; declared here to avoid the import cycle.
type LedgerSyncer interface {
	SyncLedger(ctx context.Context, sale *model.Sale) error
}

// LedgerRetryConfig holds the dependencies for the retry goroutine.
type LedgerRetryConfig struct {
	SaleRepo repository.SaleRepository
	Syncer   LedgerSyncer
}

// StartLedgerRetryCron launches a background goroutine that ticks every 30s,
// queries sales still pending ledger sync, and re-attempts them.
// It respects the context for graceful shutdown.
func StartLedgerRetryCron(ctx context.Context, cfg LedgerRetryConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("ledger_retry: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("ledger_retry: shutting down")
				return
			case <-ticker.C:
				processPending(ctx, cfg)
			}
		}
	}()
}

func processPending(ctx context.Context, cfg LedgerRetryConfig) {
	sales, err := cfg.SaleRepo.ListPendingLedgerSync(ctx, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("ledger_retry: listing pending sales failed")
		return
	}

	for i := range sales {
		sale := &sales[i]
		if err := cfg.Syncer.SyncLedger(ctx, sale); err != nil {
			log.Warn().Err(err).Str("sale", sale.Number).Msg("ledger_retry: sync still failing")
			continue
		}
		if err := cfg.SaleRepo.SetLedgerSyncPending(ctx, sale.ID, false); err != nil {
			log.Error().Err(err).Str("sale", sale.Number).Msg("ledger_retry: could not clear pending flag")
			continue
		}
		log.Info().Str("sale", sale.Number).Msg("ledger_retry: sync recovered")
	}
}
