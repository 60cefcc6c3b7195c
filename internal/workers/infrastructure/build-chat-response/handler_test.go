// internal/workers/infrastructure/build-chat-response/handler_test.go
package buildchatresponse

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

func newHandler(t *testing.T) *Handler {
	h, err := NewHandler(&Config{Timeout: time.Second}, logger.NewTestLogger(t))
	require.NoError(t, err)
	return h
}

func formField(fields []FormField, name string) (FormField, bool) {
	for _, f := range fields {
		if f.Field == name {
			return f, true
		}
	}
	return FormField{}, false
}

// ==========================
// Payload Assembly Tests
// ==========================

func TestExecute_BuildsValidatedPayload(t *testing.T) {
	h := newHandler(t)

	profile := &models.CustomerProfile{}
	require.NoError(t, profile.Set("loan_type", models.LoanTypeCommercial))
	require.NoError(t, profile.Set("desired_loan_amount", 45000))
	profile.MarkExtracted("loan_type")

	out, err := h.Execute(context.Background(), &Input{
		SessionID:            "s1",
		Reply:                "Here is what I found.",
		CustomerInfo:         profile,
		NewFieldsCount:       2,
		ExtractionConfidence: 0.2,
		Recommendations: []models.RecommendedProduct{
			{
				ID:                   "rec-1",
				LenderName:           "LenderA",
				ProductName:          "LoanX",
				BaseRate:             5.0,
				RecommendationStatus: models.RecommendationCurrent,
				DisplayOrder:         1,
			},
		},
	})
	require.NoError(t, err)

	resp := out.Response
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, "Here is what I found.", resp.Reply)
	assert.Equal(t, 2, resp.Extraction.NewFieldsCount)

	lt, ok := formField(resp.CustomerForm, "loan_type")
	require.True(t, ok)
	assert.Equal(t, "commercial", lt.Value)
	assert.True(t, lt.Populated)
	assert.True(t, lt.Extracted)

	amount, ok := formField(resp.CustomerForm, "desired_loan_amount")
	require.True(t, ok)
	assert.Equal(t, "45000", amount.Value)
	assert.False(t, amount.Extracted)

	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, models.RecommendationCurrent, resp.Recommendations[0].RecommendationStatus)
}

func TestExecute_HiddenFieldsStayOut(t *testing.T) {
	h := newHandler(t)

	profile := &models.CustomerProfile{}
	require.NoError(t, profile.Set("asset_type", models.AssetTypePrimary))

	out, err := h.Execute(context.Background(), &Input{
		SessionID:    "s1",
		CustomerInfo: profile,
	})
	require.NoError(t, err)

	for _, name := range []string{"vehicle_type", "vehicle_condition", "vehicle_make", "vehicle_model", "vehicle_year"} {
		_, found := formField(out.Response.CustomerForm, name)
		assert.False(t, found, "field %s should be hidden", name)
	}
}

func TestExecute_UnsetFieldsRenderPlaceholder(t *testing.T) {
	h := newHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		SessionID:    "s1",
		CustomerInfo: &models.CustomerProfile{},
	})
	require.NoError(t, err)

	lt, ok := formField(out.Response.CustomerForm, "loan_type")
	require.True(t, ok)
	assert.Equal(t, models.NotSpecified, lt.Value)
	assert.False(t, lt.Populated)
}

func TestExecute_MissingOptionalProductFieldsGetPlaceholders(t *testing.T) {
	h := newHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		SessionID: "s1",
		Recommendations: []models.RecommendedProduct{
			{
				LenderName:           "LenderA",
				ProductName:          "LoanX",
				BaseRate:             5.0,
				RecommendationStatus: models.RecommendationCurrent,
				DisplayOrder:         1,
			},
		},
	})
	require.NoError(t, err)

	card := out.Response.Recommendations[0]
	assert.Equal(t, models.NotSpecified, card.ComparisonRate)
	assert.Equal(t, models.NotSpecified, card.MaxLoanAmount)
	assert.Equal(t, models.NotSpecified, card.MonthlyPayment)
	assert.Equal(t, models.NotSpecified, card.DocumentationType)
	assert.Equal(t, map[string]string{}, card.FeesBreakdown)
	assert.Equal(t, []string{}, card.LoanTermOptions)
}

func TestExecute_NilProfileStillBuilds(t *testing.T) {
	h := newHandler(t)

	out, err := h.Execute(context.Background(), &Input{SessionID: "s1"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Response.CustomerForm)
}

func TestExecute_MissingSessionIDFails(t *testing.T) {
	h := newHandler(t)

	_, err := h.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResponseBuildFailed)
}
