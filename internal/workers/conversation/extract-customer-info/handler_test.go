// internal/workers/conversation/extract-customer-info/handler_test.go
package extractcustomerinfo

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

func createTestConfig() *Config {
	return &Config{
		WindowSize: 10,
		DebounceMs: 1500,
		Timeout:    3 * time.Second,
	}
}

func newHandler(t *testing.T) *Handler {
	return NewHandler(createTestConfig(), logger.NewTestLogger(t))
}

func userMsg(content string) models.ConversationMessage {
	return models.ConversationMessage{
		Role:      models.RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// ==========================
// Extraction Pass Tests
// ==========================

func TestExecute_EndToEndExample(t *testing.T) {
	h := newHandler(t)

	input := &Input{
		SessionID: "session-1",
		ConversationHistory: []models.ConversationMessage{
			userMsg("I need a business loan for a used Toyota, around $45k, I've had my ABN for 5 years"),
		},
	}

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	p := out.CustomerInfo
	assert.Equal(t, map[string]interface{}{
		"loan_type":           models.LoanTypeCommercial,
		"asset_type":          models.AssetTypeMotorVehicle,
		"vehicle_condition":   models.VehicleConditionUsed,
		"vehicle_make":        "Toyota",
		"desired_loan_amount": 45000,
		"ABN_years":           5,
	}, p.ForRequest())

	assert.Equal(t, 6, out.NewFieldsCount)
	assert.InDelta(t, 0.6, out.ExtractionConfidence, 1e-9)
	assert.Equal(t, 1, out.LastExtractedCount)
}

func TestExecute_Idempotent(t *testing.T) {
	h := newHandler(t)

	history := []models.ConversationMessage{
		userMsg("business loan, credit score 720, around $10k"),
	}

	first, err := h.Execute(context.Background(), &Input{ConversationHistory: history})
	require.NoError(t, err)
	assert.Greater(t, first.NewFieldsCount, 0)

	second, err := h.Execute(context.Background(), &Input{
		ConversationHistory: history,
		CustomerInfo:        first.CustomerInfo,
		LastExtractedCount:  first.LastExtractedCount,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, second.NewFieldsCount)
	assert.Equal(t, first.CustomerInfo.ForRequest(), second.CustomerInfo.ForRequest())
}

func TestExecute_NeverOverwritesExistingFields(t *testing.T) {
	h := newHandler(t)

	profile := &models.CustomerProfile{}
	require.NoError(t, profile.Set("credit_score", 650))

	out, err := h.Execute(context.Background(), &Input{
		ConversationHistory: []models.ConversationMessage{
			userMsg("my credit score is 720"),
		},
		CustomerInfo: profile,
	})
	require.NoError(t, err)

	v, ok := out.CustomerInfo.Value("credit_score")
	assert.True(t, ok)
	assert.Equal(t, 650, v)
	assert.Equal(t, 0, out.NewFieldsCount)
}

func TestExecute_RejectsOutOfDomainValues(t *testing.T) {
	h := newHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		ConversationHistory: []models.ConversationMessage{
			userMsg("my credit score is 950"),
		},
	})
	require.NoError(t, err)

	assert.False(t, out.CustomerInfo.IsSet("credit_score"))
	assert.Equal(t, 0, out.NewFieldsCount)
}

func TestExecute_ReadsOnlyTrailingWindow(t *testing.T) {
	h := newHandler(t)

	// 11 messages: the first one carries the only extractable fact and
	// must fall outside the 10-message window.
	history := []models.ConversationMessage{userMsg("my credit score is 720")}
	for i := 0; i < 10; i++ {
		history = append(history, userMsg("just chatting"))
	}

	out, err := h.Execute(context.Background(), &Input{ConversationHistory: history})
	require.NoError(t, err)

	assert.False(t, out.CustomerInfo.IsSet("credit_score"))
	assert.Equal(t, 11, out.LastExtractedCount)
}

func TestExecute_EmptyTranscript(t *testing.T) {
	h := newHandler(t)

	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.Equal(t, 0, out.NewFieldsCount)
	assert.Equal(t, 0.0, out.ExtractionConfidence)
	assert.NotNil(t, out.CustomerInfo)
}

// ==========================
// Scheduling Predicate Tests
// ==========================

func TestShouldExtract(t *testing.T) {
	debounce := 1500 * time.Millisecond

	tests := []struct {
		name            string
		transcriptLen   int
		lastExtracted   int
		sinceLastChange time.Duration
		want            bool
	}{
		{"unchanged transcript", 4, 4, 2 * time.Second, false},
		{"changed but within debounce", 5, 4, 800 * time.Millisecond, false},
		{"changed and debounce elapsed", 5, 4, 1500 * time.Millisecond, true},
		{"shrunk transcript", 2, 4, 2 * time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldExtract(tt.transcriptLen, tt.lastExtracted, tt.sinceLastChange, debounce)
			assert.Equal(t, tt.want, got)
		})
	}
}
