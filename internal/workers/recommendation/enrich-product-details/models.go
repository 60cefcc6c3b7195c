// internal/workers/recommendation/enrich-product-details/models.go
package enrichproductdetails

import "loan-assistant-workers/internal/models"

type Input struct {
	SessionID       string                      `json:"sessionId"`
	Recommendations []models.RecommendedProduct `json:"recommendations"`
}

type Output struct {
	Recommendations []models.RecommendedProduct `json:"recommendations"`
	EnrichedCount   int                         `json:"enrichedCount"`
}
