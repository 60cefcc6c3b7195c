// internal/workers/calculation/calculate-repayment/handler_test.go
package calculaterepayment

import (
	"context"
	"testing"
	"time"

	"loan-assistant-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T) *Handler {
	return NewHandler(&Config{Timeout: time.Second}, logger.NewTestLogger(t))
}

// ==========================
// Amortization Tests
// ==========================

func TestExecute_StandardLoan(t *testing.T) {
	h := newHandler(t)

	// 45000 at 6% over 60 months: well-known amortization fixture.
	out, err := h.Execute(context.Background(), &Input{
		LoanAmount: 45000,
		AnnualRate: 6.0,
		TermMonths: 60,
	})
	require.NoError(t, err)

	assert.InDelta(t, 869.98, out.MonthlyPayment, 0.01)
	assert.InDelta(t, out.MonthlyPayment*60, out.TotalCost, 0.01)
	assert.InDelta(t, out.TotalCost-45000, out.TotalInterest, 0.01)
}

func TestExecute_ZeroRateDividesPrincipalEvenly(t *testing.T) {
	h := newHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		LoanAmount: 12000,
		AnnualRate: 0,
		TermMonths: 24,
	})
	require.NoError(t, err)

	assert.Equal(t, 500.0, out.MonthlyPayment)
	assert.Equal(t, 0.0, out.TotalInterest)
	assert.Equal(t, 12000.0, out.TotalCost)
}

func TestExecute_Validation(t *testing.T) {
	h := newHandler(t)

	tests := []struct {
		name  string
		input Input
	}{
		{"amount below floor", Input{LoanAmount: 500, AnnualRate: 6, TermMonths: 36}},
		{"amount above ceiling", Input{LoanAmount: 20000000, AnnualRate: 6, TermMonths: 36}},
		{"zero term", Input{LoanAmount: 45000, AnnualRate: 6, TermMonths: 0}},
		{"term too long", Input{LoanAmount: 45000, AnnualRate: 6, TermMonths: 240}},
		{"negative rate", Input{LoanAmount: 45000, AnnualRate: -1, TermMonths: 36}},
		{"absurd rate", Input{LoanAmount: 45000, AnnualRate: 95, TermMonths: 36}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Execute(context.Background(), &tt.input)
			assert.Error(t, err)
		})
	}
}
