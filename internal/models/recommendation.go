// internal/models/recommendation.go
package models

import (
	"strings"
	"time"
)

// Status labels derived from position in the recommendation window.
const (
	RecommendationCurrent  = "current"
	RecommendationPrevious = "previous"
)

// NotSpecified is the placeholder shown for optional display fields the
// advisor service did not supply.
const NotSpecified = "not specified"

// RecommendedProduct is one product suggestion from the advisor service.
// Identity for dedup purposes is the (lender_name, product_name) pair; ID is
// a synthetic key stamped by the reconciler for UI list keying only.
type RecommendedProduct struct {
	ID                        string            `json:"id,omitempty"`
	LenderName                string            `json:"lender_name"`
	ProductName               string            `json:"product_name"`
	BaseRate                  float64           `json:"base_rate"`
	ComparisonRate            *float64          `json:"comparison_rate,omitempty"`
	MaxLoanAmount             *float64          `json:"max_loan_amount,omitempty"`
	LoanTermOptions           []string          `json:"loan_term_options,omitempty"`
	MonthlyPayment            *float64          `json:"monthly_payment,omitempty"`
	DocumentationType         string            `json:"documentation_type,omitempty"`
	RequirementsMet           bool              `json:"requirements_met"`
	DetailedRequirements      map[string]string `json:"detailed_requirements,omitempty"`
	FeesBreakdown             map[string]string `json:"fees_breakdown,omitempty"`
	RateConditions            map[string]string `json:"rate_conditions,omitempty"`
	DocumentationRequirements []string          `json:"documentation_requirements,omitempty"`
	SpecialConditions         []string          `json:"special_conditions,omitempty"`

	// Derived by the reconciler.
	RecommendationStatus string    `json:"recommendation_status,omitempty"`
	DisplayOrder         int       `json:"display_order,omitempty"`
	GeneratedAt          time.Time `json:"generated_at,omitempty"`
}

// HasIdentity reports whether the record carries both identity fields needed
// for dedup.
func (p *RecommendedProduct) HasIdentity() bool {
	return strings.TrimSpace(p.LenderName) != "" && strings.TrimSpace(p.ProductName) != ""
}

// DedupKey returns the (lender_name, product_name) identity, normalized so
// that batches differing only in whitespace or casing still collapse.
// Records without a usable identity fall back to their synthetic ID and are
// therefore always distinct.
func (p *RecommendedProduct) DedupKey() string {
	if !p.HasIdentity() {
		return "id:" + p.ID
	}
	lender := strings.ToLower(strings.TrimSpace(p.LenderName))
	product := strings.ToLower(strings.TrimSpace(p.ProductName))
	return lender + "|" + product
}
