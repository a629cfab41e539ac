package jobs

import (
	"context"
	"time"

	"tutorlink-backend/internal/logger"
)

// staleAfter is how long a payment may sit in a non-terminal status before
// the reconciliation job re-checks it against the gateway.
const staleAfter = 30 * time.Minute

// SweepExpiredEscrows force-expires pending escrow holds whose confirmation
// window has passed. The sweep is the only scheduled actor; each row is
// moved with a conditional transition, so overlapping runs are harmless.
func (jr *JobRunner) SweepExpiredEscrows() {
	jr.runWithRecovery("SweepExpiredEscrows", func() {
		ctx := context.Background()

		count, err := jr.services.Escrow.SweepExpired(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to sweep expired escrows", "error", err)
			return
		}
		logger.Info("Swept expired escrows", "count", count)
	})
}

// ReconcilePendingPayments re-fetches payments stuck in a non-terminal
// status from the gateway and applies whatever the gateway now reports.
// This covers webhook deliveries that were lost or delivered out of order.
func (jr *JobRunner) ReconcilePendingPayments() {
	jr.runWithRecovery("ReconcilePendingPayments", func() {
		ctx := context.Background()

		stale, err := jr.store.TransactionRepository.ListStalePending(ctx, time.Now().UTC().Add(-staleAfter))
		if err != nil {
			logger.Error("Failed to list stale pending payments", "error", err)
			return
		}

		reconciled := 0
		for _, tx := range stale {
			if err := jr.services.Webhook.ProcessPayment(ctx, tx.GatewayID); err != nil {
				logger.Error("Failed to reconcile payment", "gateway_id", tx.GatewayID, "error", err)
				continue
			}
			reconciled++
		}
		logger.Info("Reconciled pending payments", "checked", len(stale), "reconciled", reconciled)
	})
}
