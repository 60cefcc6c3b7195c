// internal/workers/recommendation/merge-recommendations/models.go
package mergerecommendations

import "loan-assistant-workers/internal/models"

type Input struct {
	SessionID string `json:"sessionId"`
	// Recommendations is the incoming batch from the advisor service.
	Recommendations []models.RecommendedProduct `json:"recommendations"`
	// LatestRecommendations is the prior window held by the session.
	LatestRecommendations []models.RecommendedProduct `json:"latestRecommendations"`
}

type Output struct {
	LatestRecommendations []models.RecommendedProduct `json:"latestRecommendations"`
	WindowSize            int                         `json:"windowSize"`
	EvictedCount          int                         `json:"evictedCount"`
}
