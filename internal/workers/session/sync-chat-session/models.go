// internal/workers/session/sync-chat-session/models.go
package syncchatsession

import "loan-assistant-workers/internal/models"

const (
	ActionLoad   = "load"
	ActionAppend = "append"
	ActionReset  = "reset"
)

type Input struct {
	SessionID string `json:"sessionId"`
	Action    string `json:"action"`

	// Append payload. Any of these may be empty; only supplied parts are
	// written.
	Messages              []models.ConversationMessage `json:"messages,omitempty"`
	CustomerInfo          *models.CustomerProfile      `json:"customerInfo,omitempty"`
	LatestRecommendations []models.RecommendedProduct  `json:"latestRecommendations,omitempty"`
	LastExtractedCount    *int                         `json:"lastExtractedCount,omitempty"`
}

type Output struct {
	SessionID             string                       `json:"sessionId"`
	ConversationHistory   []models.ConversationMessage `json:"conversationHistory"`
	CustomerInfo          *models.CustomerProfile      `json:"customerInfo"`
	LatestRecommendations []models.RecommendedProduct  `json:"latestRecommendations"`
	LastExtractedCount    int                          `json:"lastExtractedCount"`
	Created               bool                         `json:"created"`
}
