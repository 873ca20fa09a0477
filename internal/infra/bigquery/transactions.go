package bigquery

import (
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
)

// TransactionRow is one enriched sales transaction as stored in the
// destination table. Field layout mirrors the table schema.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	ProductID     string `bigquery:"product_id"`     // REQUIRED

	Amount      float64 `bigquery:"amount"`       // REQUIRED, rounded to 2dp
	Tax         float64 `bigquery:"tax"`          // 10% of the rounded amount
	TotalAmount float64 `bigquery:"total_amount"` // amount + tax

	Currency   bigquery.NullString `bigquery:"currency"`    // NULLABLE
	CustomerID bigquery.NullString `bigquery:"customer_id"` // NULLABLE

	ProcessedAt string `bigquery:"processed_at"` // ISO-8601 STRING
}

// TableRef identifies a BigQuery table by its three components.
type TableRef struct {
	ProjectID string
	DatasetID string
	TableName string
}

// String returns the fully qualified 'project.dataset.table' ID.
func (t TableRef) String() string {
	return fmt.Sprintf("%s.%s.%s", t.ProjectID, t.DatasetID, t.TableName)
}

// ParseTableID splits a fully qualified 'project.dataset.table' ID into
// a TableRef. All three parts must be non-empty.
func ParseTableID(tableID string) (TableRef, error) {
	parts := strings.Split(tableID, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return TableRef{}, fmt.Errorf("ParseTableID: %q is not in 'project.dataset.table' format", tableID)
	}
	return TableRef{ProjectID: parts[0], DatasetID: parts[1], TableName: parts[2]}, nil
}
