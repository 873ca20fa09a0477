package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	infra "github.com/royal-dsouza/salesTransaction-http-etl/internal/infra/bigquery"
	"github.com/royal-dsouza/salesTransaction-http-etl/internal/pipeline"
)

// MockTransactionLoader is a mock implementation of TransactionLoader.
type MockTransactionLoader struct {
	InsertTransactionFunc func(ctx context.Context, row *infra.TransactionRow) error
	Rows                  []*infra.TransactionRow
}

func (m *MockTransactionLoader) InsertTransaction(ctx context.Context, row *infra.TransactionRow) error {
	m.Rows = append(m.Rows, row)
	if m.InsertTransactionFunc != nil {
		return m.InsertTransactionFunc(ctx, row)
	}
	return nil
}

func newProcessor(loader pipeline.TransactionLoader, now func() time.Time) *pipeline.Processor {
	return pipeline.NewProcessor(
		pipeline.NewTransformerWithClock(now),
		loader,
		zerolog.New(&bytes.Buffer{}),
	)
}

func TestProcess_EndToEnd(t *testing.T) {
	loader := &MockTransactionLoader{}
	ts := time.Date(2025, 4, 30, 10, 0, 0, 0, time.UTC)
	processor := newProcessor(loader, func() time.Time { return ts })

	payload := map[string]interface{}{
		"transaction_id": "TX12345",
		"product_id":     "P001",
		"amount":         150.0,
		"customer_id":    "CUST123",
	}

	enriched, err := processor.Process(context.Background(), payload)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if enriched.TransactionID != "TX12345" {
		t.Errorf("TransactionID = %q, want TX12345", enriched.TransactionID)
	}
	if enriched.Amount != 150.0 {
		t.Errorf("Amount = %v, want 150.0", enriched.Amount)
	}
	if enriched.Tax != 15.0 {
		t.Errorf("Tax = %v, want 15.0", enriched.Tax)
	}
	if enriched.TotalAmount != 165.0 {
		t.Errorf("TotalAmount = %v, want 165.0", enriched.TotalAmount)
	}
	if _, err := time.Parse(time.RFC3339Nano, enriched.ProcessedAt); err != nil {
		t.Errorf("ProcessedAt %q not parseable: %v", enriched.ProcessedAt, err)
	}

	if len(loader.Rows) != 1 {
		t.Fatalf("loader called %d times, want 1", len(loader.Rows))
	}
	row := loader.Rows[0]
	if row.TransactionID != "TX12345" || row.ProductID != "P001" {
		t.Errorf("loaded row has wrong keys: %+v", row)
	}
	if row.Amount != 150.0 || row.Tax != 15.0 || row.TotalAmount != 165.0 {
		t.Errorf("loaded row has wrong amounts: %+v", row)
	}
	if !row.CustomerID.Valid || row.CustomerID.StringVal != "CUST123" {
		t.Errorf("loaded row CustomerID = %+v, want CUST123", row.CustomerID)
	}
	if row.Currency.Valid {
		t.Errorf("loaded row Currency = %+v, want NULL when absent", row.Currency)
	}
	if row.ProcessedAt != enriched.ProcessedAt {
		t.Errorf("loaded row ProcessedAt = %q, want %q", row.ProcessedAt, enriched.ProcessedAt)
	}
}

func TestProcess_ValidationFailureSkipsLoader(t *testing.T) {
	loader := &MockTransactionLoader{}
	processor := newProcessor(loader, time.Now)

	// Missing product_id.
	payload := map[string]interface{}{
		"transaction_id": "TX4",
		"amount":         120.0,
		"customer_id":    "CUST001",
	}

	_, err := processor.Process(context.Background(), payload)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}

	var validationErrs pipeline.ValidationErrors
	if !errors.As(err, &validationErrs) {
		t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
	}
	if len(validationErrs) == 0 {
		t.Error("expected non-empty error list")
	}
	if len(loader.Rows) != 0 {
		t.Errorf("loader invoked %d times on validation failure, want 0", len(loader.Rows))
	}
}

func TestProcess_LoaderErrorPropagates(t *testing.T) {
	loadErr := &infra.LoadError{TransactionID: "TX9", RowErrors: []string{"bad row"}}
	loader := &MockTransactionLoader{
		InsertTransactionFunc: func(ctx context.Context, row *infra.TransactionRow) error {
			return loadErr
		},
	}
	processor := newProcessor(loader, time.Now)

	_, err := processor.Process(context.Background(), map[string]interface{}{
		"transaction_id": "TX9",
		"product_id":     "P001",
		"amount":         10.0,
	})

	var got *infra.LoadError
	if !errors.As(err, &got) {
		t.Fatalf("expected *LoadError to propagate, got %T: %v", err, err)
	}

	var validationErrs pipeline.ValidationErrors
	if errors.As(err, &validationErrs) {
		t.Error("load failure must not be mistakable for a validation failure")
	}
}

// The pipeline performs no deduplication: the same payload processed
// twice produces two loader calls with distinct processing timestamps.
func TestProcess_NoDeduplication(t *testing.T) {
	loader := &MockTransactionLoader{}
	clock := time.Date(2025, 4, 30, 10, 0, 0, 0, time.UTC)
	processor := newProcessor(loader, func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})

	payload := map[string]interface{}{
		"transaction_id": "TX12345",
		"product_id":     "P001",
		"amount":         150.0,
	}

	first, err := processor.Process(context.Background(), payload)
	if err != nil {
		t.Fatalf("first Process failed: %v", err)
	}
	second, err := processor.Process(context.Background(), payload)
	if err != nil {
		t.Fatalf("second Process failed: %v", err)
	}

	if len(loader.Rows) != 2 {
		t.Fatalf("loader called %d times, want 2", len(loader.Rows))
	}
	if first.ProcessedAt == second.ProcessedAt {
		t.Error("identical payloads must still get distinct processed_at values")
	}
}
