package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/royal-dsouza/salesTransaction-http-etl/internal/api/middleware"
	infra "github.com/royal-dsouza/salesTransaction-http-etl/internal/infra/bigquery"
	"github.com/royal-dsouza/salesTransaction-http-etl/internal/pipeline"
)

// TransactionProcessor runs the validate/transform/load pipeline for one
// raw payload.
type TransactionProcessor interface {
	Process(ctx context.Context, raw map[string]interface{}) (*pipeline.EnrichedTransaction, error)
}

// TransactionsHandler handles the sales transaction endpoint.
type TransactionsHandler struct {
	processor TransactionProcessor
	log       zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(processor TransactionProcessor, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		processor: processor,
		log:       log,
	}
}

// ProcessTransaction handles POST /. It parses the JSON body, runs the
// pipeline and converts every failure into an HTTP response; no error
// escapes this boundary unconverted.
func (h *TransactionsHandler) ProcessTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Only POST requests are supported")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Error().Err(err).Msg("Error reading request body")
		middleware.WriteError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if len(body) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "No JSON data provided")
		return
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		h.log.Error().Err(err).Msg("Error parsing JSON")
		middleware.WriteError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if len(raw) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "No JSON data provided")
		return
	}

	enriched, err := h.processor.Process(r.Context(), raw)
	if err != nil {
		h.writeProcessError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status":         "success",
		"message":        "Transaction processed successfully",
		"transaction_id": enriched.TransactionID,
		"processed_at":   enriched.ProcessedAt,
	})
}

// Health handles GET /health.
func (h *TransactionsHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *TransactionsHandler) writeProcessError(w http.ResponseWriter, err error) {
	var validationErrs pipeline.ValidationErrors
	if errors.As(err, &validationErrs) {
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"status":  "error",
			"message": "Schema validation failed",
			"errors":  validationErrs,
		})
		return
	}

	var loadErr *infra.LoadError
	if errors.As(err, &loadErr) {
		// Row-level detail is already logged by the loader; the message
		// carries only the business key and the error count.
		h.log.Error().Err(err).
			Str("transaction_id", loadErr.TransactionID).
			Int("row_errors", len(loadErr.RowErrors)).
			Msg("BigQuery rejected the row")
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": "Error processing transaction: " + loadErr.Error(),
		})
		return
	}

	// Transport, credential or unexpected failure: full detail goes to
	// the log, the caller gets a generic message.
	h.log.Error().Err(err).Msg("Unhandled error processing transaction")
	middleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"status":  "error",
		"message": "Error processing transaction",
	})
}
