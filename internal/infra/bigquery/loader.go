package bigquery

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// LoadError reports that the destination accepted the insert call but
// rejected the row. RowErrors holds one message per row-level error
// returned by BigQuery.
type LoadError struct {
	TransactionID string
	Table         string
	RowErrors     []string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("BigQuery insert for transaction %s failed with %d error(s)", e.TransactionID, len(e.RowErrors))
}

// rowInserter abstracts *bigquery.Inserter so tests can stand in for the
// streaming insert API.
type rowInserter interface {
	Put(ctx context.Context, src interface{}) error
}

// Loader appends single transaction rows to one BigQuery table. The
// underlying client is created once and shared; a Loader is immutable
// after construction and safe for concurrent use.
type Loader struct {
	client   *bigquery.Client
	inserter rowInserter
	table    TableRef
	log      zerolog.Logger
}

// NewLoader creates a BigQuery client for the table's project and binds
// an inserter for the destination table. When credentialsFile is empty,
// Application Default Credentials are used.
func NewLoader(ctx context.Context, table TableRef, credentialsFile string, log zerolog.Logger) (*Loader, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := bigquery.NewClient(ctx, table.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewLoader: bigquery client: %w", err)
	}

	inserter := client.DatasetInProject(table.ProjectID, table.DatasetID).Table(table.TableName).Inserter()

	return &Loader{
		client:   client,
		inserter: inserter,
		table:    table,
		log:      log,
	}, nil
}

// Close releases the underlying BigQuery client.
func (l *Loader) Close() error {
	if l.client != nil {
		return l.client.Close()
	}
	return nil
}

// Table returns the destination table reference.
func (l *Loader) Table() TableRef {
	return l.table
}

// InsertTransaction appends one row to the destination table. Exactly one
// network attempt is made. Row-level rejections are logged individually
// and returned as a *LoadError carrying the business key; any other
// failure (connectivity, credentials) is wrapped and propagated as-is.
func (l *Loader) InsertTransaction(ctx context.Context, row *TransactionRow) error {
	l.log.Info().
		Str("transaction_id", row.TransactionID).
		Str("table", l.table.String()).
		Msg("Attempting to insert row into BigQuery")

	err := l.inserter.Put(ctx, []*TransactionRow{row})
	if err == nil {
		l.log.Info().
			Str("transaction_id", row.TransactionID).
			Msg("Transaction successfully loaded into BigQuery")
		return nil
	}

	var putErr bigquery.PutMultiError
	if errors.As(err, &putErr) {
		loadErr := &LoadError{
			TransactionID: row.TransactionID,
			Table:         l.table.String(),
		}
		for _, rowErr := range putErr {
			for _, e := range rowErr.Errors {
				loadErr.RowErrors = append(loadErr.RowErrors, e.Error())
				l.log.Error().
					Str("transaction_id", row.TransactionID).
					Int("row_index", rowErr.RowIndex).
					Str("insert_error", e.Error()).
					Msg("BigQuery insert error for transaction")
			}
		}
		return loadErr
	}

	return fmt.Errorf("InsertTransaction: inserting row: %w", err)
}
