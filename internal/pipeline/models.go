package pipeline

import (
	"fmt"

	bigquerylib "cloud.google.com/go/bigquery"
	infra "github.com/royal-dsouza/salesTransaction-http-etl/internal/infra/bigquery"
)

// Transaction is a sales transaction that passed schema validation.
// Invariants: TransactionID and ProductID are non-empty, Amount > 0.
type Transaction struct {
	TransactionID string
	ProductID     string
	Amount        float64

	// Currency is carried through when the caller supplies it as a
	// string; it is never validated.
	Currency *string

	CustomerID *string
}

// EnrichedTransaction is a validated transaction plus the derived
// fields. Amount is overwritten with its 2dp-rounded value. It is never
// mutated once handed to the loader.
type EnrichedTransaction struct {
	Transaction

	Tax         float64
	ProcessedAt string
	TotalAmount float64
}

// Row converts the enriched transaction into the destination row shape.
func (e *EnrichedTransaction) Row() *infra.TransactionRow {
	row := &infra.TransactionRow{
		TransactionID: e.TransactionID,
		ProductID:     e.ProductID,
		Amount:        e.Amount,
		Tax:           e.Tax,
		TotalAmount:   e.TotalAmount,
		ProcessedAt:   e.ProcessedAt,
	}
	if e.Currency != nil {
		row.Currency = bigquerylib.NullString{StringVal: *e.Currency, Valid: true}
	}
	if e.CustomerID != nil {
		row.CustomerID = bigquerylib.NullString{StringVal: *e.CustomerID, Valid: true}
	}
	return row
}

// Violation kinds reported by validation. Type mismatches are reported
// distinctly from range violations and missing fields.
const (
	ErrMissing = "missing"
	ErrType    = "type_error"
	ErrValue   = "value_error"
)

// FieldError is one violated constraint on one field.
type FieldError struct {
	Field   string      `json:"field"`
	Type    string      `json:"type"`
	Message string      `json:"msg"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationErrors is the ordered list of all constraint violations
// found in a raw payload. It is an expected, recoverable outcome and is
// distinguishable from load failures via errors.As.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 1 {
		return fmt.Sprintf("validation failed: %s: %s", v[0].Field, v[0].Message)
	}
	return fmt.Sprintf("validation failed with %d errors", len(v))
}
