// internal/workers/recommendation/enrich-product-details/handler_test.go
package enrichproductdetails

import (
	"context"
	"testing"
	"time"

	"loan-assistant-workers/internal/common/logger"
	"loan-assistant-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewHandler(&Config{Timeout: 3 * time.Second}, db, logger.NewTestLogger(t))
	return h, mock
}

func catalogColumns() []string {
	return []string{"lender_name", "product_name", "comparison_rate",
		"max_loan_amount", "loan_term_options", "documentation_type"}
}

// ==========================
// Enrichment Tests
// ==========================

func TestExecute_FillsMissingFieldsFromCatalog(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectQuery("FROM lender_products").
		WithArgs(pq.Array([]string{"lendera"}), pq.Array([]string{"loanx"})).
		WillReturnRows(sqlmock.NewRows(catalogColumns()).
			AddRow("LenderA", "LoanX", 5.4, 150000.0, pq.Array([]string{"36", "48", "60"}), "low_doc"))

	out, err := h.Execute(context.Background(), &Input{
		SessionID: "session-1",
		Recommendations: []models.RecommendedProduct{
			{LenderName: "LenderA", ProductName: "LoanX", BaseRate: 5.0},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Recommendations, 1)

	rec := out.Recommendations[0]
	require.NotNil(t, rec.ComparisonRate)
	assert.Equal(t, 5.4, *rec.ComparisonRate)
	require.NotNil(t, rec.MaxLoanAmount)
	assert.Equal(t, 150000.0, *rec.MaxLoanAmount)
	assert.Equal(t, []string{"36", "48", "60"}, rec.LoanTermOptions)
	assert.Equal(t, "low_doc", rec.DocumentationType)
	assert.Equal(t, 1, out.EnrichedCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_DoesNotOverwritePopulatedFields(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectQuery("FROM lender_products").
		WillReturnRows(sqlmock.NewRows(catalogColumns()).
			AddRow("LenderA", "LoanX", 5.4, nil, pq.Array([]string{}), "low_doc"))

	advisorRate := 5.9
	out, err := h.Execute(context.Background(), &Input{
		Recommendations: []models.RecommendedProduct{
			{LenderName: "LenderA", ProductName: "LoanX", ComparisonRate: &advisorRate, DocumentationType: "full_doc"},
		},
	})
	require.NoError(t, err)

	rec := out.Recommendations[0]
	assert.Equal(t, 5.9, *rec.ComparisonRate)
	assert.Equal(t, "full_doc", rec.DocumentationType)
	assert.Equal(t, 0, out.EnrichedCount)
}

func TestExecute_UnknownProductPassesThrough(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectQuery("FROM lender_products").
		WillReturnRows(sqlmock.NewRows(catalogColumns()))

	in := models.RecommendedProduct{LenderName: "Unknown", ProductName: "Mystery", BaseRate: 9.9}
	out, err := h.Execute(context.Background(), &Input{
		Recommendations: []models.RecommendedProduct{in},
	})
	require.NoError(t, err)

	assert.Equal(t, in, out.Recommendations[0])
	assert.Equal(t, 0, out.EnrichedCount)
}

func TestExecute_EmptyBatchSkipsQuery(t *testing.T) {
	h, mock := newHandler(t)

	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Empty(t, out.Recommendations)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_IdentitylessBatchSkipsQuery(t *testing.T) {
	h, mock := newHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		Recommendations: []models.RecommendedProduct{{BaseRate: 5.0}},
	})
	require.NoError(t, err)
	require.Len(t, out.Recommendations, 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_QueryFailure(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectQuery("FROM lender_products").
		WillReturnError(assert.AnError)

	_, err := h.Execute(context.Background(), &Input{
		Recommendations: []models.RecommendedProduct{
			{LenderName: "LenderA", ProductName: "LoanX"},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCatalogQueryFailed)
}
