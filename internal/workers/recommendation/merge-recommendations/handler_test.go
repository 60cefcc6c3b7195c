// internal/workers/recommendation/merge-recommendations/handler_test.go
package mergerecommendations

import (
	"context"
	"testing"
	"time"

	"loan-assistant-workers/internal/common/logger"
	"loan-assistant-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newHandler(t *testing.T, maxWindow int) *Handler {
	h := NewHandler(&Config{MaxWindow: maxWindow, Timeout: 3 * time.Second}, logger.NewTestLogger(t))
	h.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return h
}

func product(lender, name string, rate float64) models.RecommendedProduct {
	return models.RecommendedProduct{
		LenderName:  lender,
		ProductName: name,
		BaseRate:    rate,
	}
}

// ==========================
// Merge Tests
// ==========================

func TestExecute_DedupReplacesStaleEntry(t *testing.T) {
	h := newHandler(t, 2)

	prior := []models.RecommendedProduct{
		product("LenderA", "LoanX", 4.5),
		product("LenderB", "LoanY", 6.0),
	}
	prior[0].RecommendationStatus = models.RecommendationCurrent
	prior[1].RecommendationStatus = models.RecommendationPrevious

	out, err := h.Execute(context.Background(), &Input{
		Recommendations:       []models.RecommendedProduct{product("LenderA", "LoanX", 5.0)},
		LatestRecommendations: prior,
	})
	require.NoError(t, err)

	require.Len(t, out.LatestRecommendations, 2)

	first := out.LatestRecommendations[0]
	assert.Equal(t, "LenderA", first.LenderName)
	assert.Equal(t, "LoanX", first.ProductName)
	assert.Equal(t, 5.0, first.BaseRate, "incoming entry replaces the stale duplicate")
	assert.Equal(t, models.RecommendationCurrent, first.RecommendationStatus)
	assert.Equal(t, 1, first.DisplayOrder)

	second := out.LatestRecommendations[1]
	assert.Equal(t, "LenderB", second.LenderName)
	assert.Equal(t, 6.0, second.BaseRate)
	assert.Equal(t, models.RecommendationPrevious, second.RecommendationStatus)
	assert.Equal(t, 2, second.DisplayOrder)
}

func TestExecute_BoundedWindowDropsOverflow(t *testing.T) {
	h := newHandler(t, 2)

	out, err := h.Execute(context.Background(), &Input{
		Recommendations: []models.RecommendedProduct{
			product("LenderA", "LoanX", 5.0),
			product("LenderB", "LoanY", 6.0),
			product("LenderC", "LoanZ", 7.0),
		},
	})
	require.NoError(t, err)

	require.Len(t, out.LatestRecommendations, 2)
	assert.Equal(t, "LenderA", out.LatestRecommendations[0].LenderName)
	assert.Equal(t, "LenderB", out.LatestRecommendations[1].LenderName)
	assert.Equal(t, 1, out.EvictedCount)
}

func TestExecute_EmptyBatchIsNoOp(t *testing.T) {
	h := newHandler(t, 3)

	prior := []models.RecommendedProduct{product("LenderA", "LoanX", 4.5)}
	prior[0].RecommendationStatus = models.RecommendationCurrent
	prior[0].DisplayOrder = 1

	out, err := h.Execute(context.Background(), &Input{
		LatestRecommendations: prior,
	})
	require.NoError(t, err)

	assert.Equal(t, prior, out.LatestRecommendations)
	assert.Equal(t, 0, out.EvictedCount)
}

func TestExecute_StampsIncomingItems(t *testing.T) {
	h := newHandler(t, 3)

	out, err := h.Execute(context.Background(), &Input{
		Recommendations: []models.RecommendedProduct{product("LenderA", "LoanX", 5.0)},
	})
	require.NoError(t, err)

	rec := out.LatestRecommendations[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, h.now(), rec.GeneratedAt)
}

func TestExecute_DedupKeyIgnoresCaseAndWhitespace(t *testing.T) {
	h := newHandler(t, 3)

	out, err := h.Execute(context.Background(), &Input{
		Recommendations: []models.RecommendedProduct{product("lender a ", "loan x", 5.0)},
		LatestRecommendations: []models.RecommendedProduct{
			product("Lender A", "Loan X", 4.5),
		},
	})
	require.NoError(t, err)

	require.Len(t, out.LatestRecommendations, 1)
	assert.Equal(t, 5.0, out.LatestRecommendations[0].BaseRate)
}

func TestExecute_MissingIdentityStaysDistinct(t *testing.T) {
	h := newHandler(t, 3)

	unnamed := models.RecommendedProduct{BaseRate: 5.0}

	out, err := h.Execute(context.Background(), &Input{
		Recommendations:       []models.RecommendedProduct{unnamed},
		LatestRecommendations: nil,
	})
	require.NoError(t, err)
	require.Len(t, out.LatestRecommendations, 1)

	// A second identity-less batch must not collapse into the first entry.
	out2, err := h.Execute(context.Background(), &Input{
		Recommendations:       []models.RecommendedProduct{unnamed},
		LatestRecommendations: out.LatestRecommendations,
	})
	require.NoError(t, err)
	assert.Len(t, out2.LatestRecommendations, 2)
}

func TestExecute_StatusHintOverriddenByPosition(t *testing.T) {
	h := newHandler(t, 3)

	hinted := product("LenderA", "LoanX", 5.0)
	hinted.RecommendationStatus = models.RecommendationPrevious

	out, err := h.Execute(context.Background(), &Input{
		Recommendations: []models.RecommendedProduct{hinted},
	})
	require.NoError(t, err)

	assert.Equal(t, models.RecommendationCurrent, out.LatestRecommendations[0].RecommendationStatus)
}
