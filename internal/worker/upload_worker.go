// Package worker processes statement upload events published by the server.
package worker

import (
	"context"
	"fmt"
	"time"

	"bankdash/internal/amqp"
	"bankdash/internal/log"
	"bankdash/internal/upload"
)

// Ledger marks uploads as processed. Marking an upload the server never
// recorded creates the row.
type Ledger interface {
	MarkUploadProcessed(ctx context.Context, ev upload.Event, at time.Time) error
}

// UploadWorker records every StatementUploaded message in the ledger.
type UploadWorker struct {
	ledger    Ledger
	validator upload.Validator
	logger    *log.Logger
	now       func() time.Time
}

func NewUploadWorker(ledger Ledger, validator upload.Validator, logger *log.Logger) *UploadWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &UploadWorker{
		ledger:    ledger,
		validator: validator,
		logger:    logger.WithComponent(log.ComponentWorker),
		now:       time.Now,
	}
}

// HandleStatementUploaded processes a single message. Messages whose
// filename fails validation are logged and acknowledged, as retrying them
// cannot succeed.
func (w *UploadWorker) HandleStatementUploaded(ctx context.Context, msg *amqp.StatementUploaded) error {
	ev := msg.Event()
	fields := log.NewFields().WithUpload(ev.ID.String(), ev.Filename, ev.SizeBytes)

	if err := w.validator.Validate(ev.Filename); err != nil {
		w.logger.WarnContext(ctx, "Skipping upload with invalid filename", fields.WithError(err).ToSlice()...)
		return nil
	}

	if err := w.ledger.MarkUploadProcessed(ctx, ev, w.now().UTC()); err != nil {
		return fmt.Errorf("mark upload %s processed: %w", ev.ID, err)
	}

	w.logger.InfoContext(ctx, "Upload processed", fields.ToSlice()...)
	return nil
}

// Run consumes messages until ctx is done.
func (w *UploadWorker) Run(ctx context.Context, client *amqp.Client, prefetch int) error {
	w.logger.InfoContext(ctx, "Upload worker started", "prefetch", prefetch)
	err := client.Consume(ctx, prefetch, w.HandleStatementUploaded)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
