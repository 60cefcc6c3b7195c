// internal/workers/conversation/extract-customer-info/models.go
package extractcustomerinfo

import "loan-assistant-workers/internal/models"

type Input struct {
	SessionID           string                       `json:"sessionId"`
	ConversationHistory []models.ConversationMessage `json:"conversationHistory"`
	CustomerInfo        *models.CustomerProfile      `json:"customerInfo"`
	// LastExtractedCount is the transcript length at the previous pass,
	// carried through the workflow so passes stay idempotent.
	LastExtractedCount int `json:"lastExtractedCount"`
}

type Output struct {
	CustomerInfo         *models.CustomerProfile `json:"customerInfo"`
	NewFieldsCount       int                     `json:"newFieldsCount"`
	ExtractionConfidence float64                 `json:"extractionConfidence"`
	LastExtractedCount   int                     `json:"lastExtractedCount"`
}
