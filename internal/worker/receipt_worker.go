package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: mails a plain-text sale receipt
// to the customer. Always best-effort — the sale is already committed.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/infra"

	"github.com/rs/zerolog/log"
)

type ReceiptWorker struct {
	mailer *infra.Mailer
}

func NewReceiptWorker(mailer *infra.Mailer) *ReceiptWorker {
	return &ReceiptWorker{mailer: mailer}
}

func (w *ReceiptWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return nil // malformed jobs are not retryable
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("receipt_worker: empty to_email — skipping")
		return nil
	}

	subject := fmt.Sprintf("Receipt %s", payload.SaleNumber)
	body := fmt.Sprintf("Thank you for your purchase.\n\nSale: %s\nTotal: %s\n", payload.SaleNumber, payload.Total)

	if err := w.mailer.SendReceipt(payload.ToEmail, subject, body); err != nil {
		return fmt.Errorf("send receipt %s: %w", payload.SaleNumber, err)
	}
	log.Info().Str("to", payload.ToEmail).Str("sale", payload.SaleNumber).Msg("receipt_worker: receipt sent")
	return nil
}
