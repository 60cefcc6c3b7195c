// internal/workers/infrastructure/build-chat-response/models.go
package buildchatresponse

import "loan-assistant-workers/internal/models"

type Input struct {
	SessionID            string                      `json:"sessionId"`
	Reply                string                      `json:"reply"`
	CustomerInfo         *models.CustomerProfile     `json:"customerInfo"`
	Recommendations      []models.RecommendedProduct `json:"latestRecommendations"`
	NewFieldsCount       int                         `json:"newFieldsCount"`
	ExtractionConfidence float64                     `json:"extractionConfidence"`
}

type Output struct {
	Response ChatResponse `json:"chatResponse"`
}

// ChatResponse is the payload the browser renders from. Its shape is pinned
// by the embedded JSON schema.
type ChatResponse struct {
	SessionID       string           `json:"session_id"`
	Reply           string           `json:"reply"`
	CustomerForm    []FormField      `json:"customer_form"`
	Extraction      ExtractionStatus `json:"extraction"`
	Recommendations []ProductCard    `json:"recommendations"`
}

// FormField is one visible profile attribute. Value is the display string,
// never empty; Extracted marks auto-populated fields for UI labeling only.
type FormField struct {
	Field     string `json:"field"`
	Value     string `json:"value"`
	Populated bool   `json:"populated"`
	Extracted bool   `json:"extracted"`
}

type ExtractionStatus struct {
	NewFieldsCount int     `json:"new_fields_count"`
	Confidence     float64 `json:"confidence"`
}

// ProductCard is a recommendation flattened for display, with every
// optional detail defaulted to "not specified".
type ProductCard struct {
	ID                   string            `json:"id"`
	LenderName           string            `json:"lender_name"`
	ProductName          string            `json:"product_name"`
	BaseRate             float64           `json:"base_rate"`
	ComparisonRate       string            `json:"comparison_rate"`
	MaxLoanAmount        string            `json:"max_loan_amount"`
	LoanTermOptions      []string          `json:"loan_term_options"`
	MonthlyPayment       string            `json:"monthly_payment"`
	DocumentationType    string            `json:"documentation_type"`
	RequirementsMet      bool              `json:"requirements_met"`
	DetailedRequirements map[string]string `json:"detailed_requirements"`
	FeesBreakdown        map[string]string `json:"fees_breakdown"`
	RateConditions       map[string]string `json:"rate_conditions"`
	RecommendationStatus string            `json:"recommendation_status"`
	DisplayOrder         int               `json:"display_order"`
}
