// internal/workers/recommendation/fetch-recommendations/models.go
package fetchrecommendations

import "loan-assistant-workers/internal/models"

type Input struct {
	SessionID           string                       `json:"sessionId"`
	Message             string                       `json:"message"`
	ConversationHistory []models.ConversationMessage `json:"conversationHistory"`
	CustomerInfo        *models.CustomerProfile      `json:"customerInfo"`
}

type Output struct {
	Reply           string                      `json:"reply"`
	Recommendations []models.RecommendedProduct `json:"recommendations"`
}

// advisorRequest is the wire contract of the remote advisor service. The
// profile travels as current_customer_info with empty fields dropped.
type advisorRequest struct {
	SessionID           string                       `json:"session_id"`
	Message             string                       `json:"message"`
	ConversationHistory []models.ConversationMessage `json:"conversation_history"`
	CurrentCustomerInfo map[string]interface{}       `json:"current_customer_info,omitempty"`
}

type advisorResponse struct {
	Reply           string                      `json:"reply"`
	Recommendations []models.RecommendedProduct `json:"recommendations"`
}
