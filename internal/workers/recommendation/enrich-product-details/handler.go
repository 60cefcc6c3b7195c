// internal/workers/recommendation/enrich-product-details/handler.go
package enrichproductdetails

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "loan-assistant-workers/internal/common/errors"
	"loan-assistant-workers/internal/common/logger"
	"loan-assistant-workers/internal/common/metrics"
	"loan-assistant-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"
)

const (
	TaskType = "enrich-product-details"
)

var (
	ErrCatalogQueryFailed = errors.New(string(apperrors.ErrCodeCatalogQueryFailed))
	ErrCatalogTimeout     = errors.New(string(apperrors.ErrCodeCatalogTimeout))
)

// catalogQuery pulls the optional display columns for a set of lender
// products in one round trip.
const catalogQuery = `
SELECT lender_name, product_name, comparison_rate, max_loan_amount,
       loan_term_options, documentation_type
FROM lender_products
WHERE lower(lender_name) = ANY($1) AND lower(product_name) = ANY($2)`

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("parse input: %w", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		retries := int32(0)
		if errors.Is(err, ErrCatalogTimeout) {
			retries = 2
		}
		h.failJob(client, job, err, retries)
		return
	}

	h.completeJob(client, job, output)
	metrics.JobCompleted(TaskType, start)
}

// catalogRow mirrors the nullable catalog columns.
type catalogRow struct {
	comparisonRate    sql.NullFloat64
	maxLoanAmount     sql.NullFloat64
	loanTermOptions   []string
	documentationType sql.NullString
}

// execute fills missing optional display fields from the lender-product
// catalog. Products absent from the catalog pass through untouched; the
// display layer renders placeholders for whatever stays empty. Catalog
// absence is never an error.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if len(input.Recommendations) == 0 {
		return &Output{Recommendations: input.Recommendations}, nil
	}

	lenders := make([]string, 0, len(input.Recommendations))
	products := make([]string, 0, len(input.Recommendations))
	for _, rec := range input.Recommendations {
		if rec.HasIdentity() {
			lenders = append(lenders, strings.ToLower(strings.TrimSpace(rec.LenderName)))
			products = append(products, strings.ToLower(strings.TrimSpace(rec.ProductName)))
		}
	}
	if len(lenders) == 0 {
		return &Output{Recommendations: input.Recommendations}, nil
	}

	rows, err := h.db.QueryContext(ctx, catalogQuery, pq.Array(lenders), pq.Array(products))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrCatalogTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrCatalogQueryFailed, err)
	}
	defer rows.Close()

	catalog := make(map[string]catalogRow)
	for rows.Next() {
		var lender, product string
		var row catalogRow
		if err := rows.Scan(&lender, &product, &row.comparisonRate, &row.maxLoanAmount,
			pq.Array(&row.loanTermOptions), &row.documentationType); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrCatalogQueryFailed, err)
		}
		key := strings.ToLower(lender) + "|" + strings.ToLower(product)
		catalog[key] = row
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogQueryFailed, err)
	}

	enriched := 0
	out := make([]models.RecommendedProduct, len(input.Recommendations))
	for i, rec := range input.Recommendations {
		row, found := catalog[rec.DedupKey()]
		if found && fillMissing(&rec, row) {
			enriched++
		}
		out[i] = rec
	}

	h.logger.Info("recommendations enriched", map[string]interface{}{
		"sessionId":     input.SessionID,
		"total":         len(out),
		"enrichedCount": enriched,
	})

	return &Output{Recommendations: out, EnrichedCount: enriched}, nil
}

// fillMissing copies catalog values into fields the advisor left empty and
// reports whether anything changed. Populated fields keep their values.
func fillMissing(rec *models.RecommendedProduct, row catalogRow) bool {
	changed := false
	if rec.ComparisonRate == nil && row.comparisonRate.Valid {
		v := row.comparisonRate.Float64
		rec.ComparisonRate = &v
		changed = true
	}
	if rec.MaxLoanAmount == nil && row.maxLoanAmount.Valid {
		v := row.maxLoanAmount.Float64
		rec.MaxLoanAmount = &v
		changed = true
	}
	if len(rec.LoanTermOptions) == 0 && len(row.loanTermOptions) > 0 {
		rec.LoanTermOptions = row.loanTermOptions
		changed = true
	}
	if rec.DocumentationType == "" && row.documentationType.Valid {
		rec.DocumentationType = row.documentationType.String
		changed = true
	}
	return changed
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, jobErr error, retries int32) {
	errorCode := string(apperrors.ErrCodeCatalogQueryFailed)
	if errors.Is(jobErr, ErrCatalogTimeout) {
		errorCode = string(apperrors.ErrCodeCatalogTimeout)
	}

	metrics.JobFailed(TaskType, errorCode)
	h.logger.WithError(jobErr).Error("job failed", map[string]interface{}{
		"jobKey":  job.Key,
		"retries": retries,
	})

	_, err := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(errorCode + ": " + jobErr.Error()).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send fail job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
