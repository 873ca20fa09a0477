package pipeline

import (
	"math"
	"time"
)

// Transformer enriches validated transactions with derived fields. The
// clock is injectable so tests can assert on a fixed timestamp.
type Transformer struct {
	now func() time.Time
}

// NewTransformer creates a transformer using the system clock.
func NewTransformer() *Transformer {
	return NewTransformerWithClock(time.Now)
}

// NewTransformerWithClock creates a transformer with a custom clock.
func NewTransformerWithClock(now func() time.Time) *Transformer {
	return &Transformer{now: now}
}

// Transform derives tax, processing timestamp and total from a validated
// transaction. The order is load-bearing: the amount is rounded to 2dp
// first, tax is 10% of the rounded amount rounded again, and the total
// is the sum of the two rounded values, rounded once more. Computing tax
// from the unrounded amount would differ at the cent level.
func (t *Transformer) Transform(tx *Transaction) *EnrichedTransaction {
	enriched := &EnrichedTransaction{Transaction: *tx}

	enriched.Amount = round2(tx.Amount)
	enriched.Tax = round2(enriched.Amount * 0.1)
	enriched.ProcessedAt = t.now().Format(time.RFC3339Nano)
	enriched.TotalAmount = round2(enriched.Amount + enriched.Tax)

	return enriched
}

// round2 rounds to 2 decimal places, halves away from zero.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
