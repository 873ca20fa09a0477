package pipeline

import (
	"context"

	"github.com/rs/zerolog"
	infra "github.com/royal-dsouza/salesTransaction-http-etl/internal/infra/bigquery"
)

// TransactionLoader appends one enriched row to the destination table.
type TransactionLoader interface {
	InsertTransaction(ctx context.Context, row *infra.TransactionRow) error
}

// Processor runs the validate, transform, load sequence for a single
// raw payload. It holds no mutable state and is safe for concurrent use.
type Processor struct {
	transformer *Transformer
	loader      TransactionLoader
	log         zerolog.Logger
}

// NewProcessor creates a processor.
func NewProcessor(transformer *Transformer, loader TransactionLoader, log zerolog.Logger) *Processor {
	return &Processor{
		transformer: transformer,
		loader:      loader,
		log:         log,
	}
}

// Process validates the raw payload, enriches it and loads it. A failed
// stage short-circuits the rest. Validation failures come back as
// ValidationErrors; load failures propagate unchanged so the boundary
// can tell the two apart.
func (p *Processor) Process(ctx context.Context, raw map[string]interface{}) (*EnrichedTransaction, error) {
	tx, validationErrs := ValidateTransaction(raw)
	if validationErrs != nil {
		p.log.Warn().
			Interface("errors", validationErrs).
			Msg("Validation failed for input")
		return nil, validationErrs
	}
	p.log.Info().
		Str("transaction_id", tx.TransactionID).
		Msg("Validation succeeded")

	enriched := p.transformer.Transform(tx)
	p.log.Debug().
		Str("transaction_id", enriched.TransactionID).
		Float64("amount", enriched.Amount).
		Float64("tax", enriched.Tax).
		Float64("total_amount", enriched.TotalAmount).
		Str("processed_at", enriched.ProcessedAt).
		Msg("Transformed record")

	if err := p.loader.InsertTransaction(ctx, enriched.Row()); err != nil {
		return nil, err
	}

	return enriched, nil
}
