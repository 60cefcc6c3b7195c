// internal/workers/conversation/extract-customer-info/rules_test.go
package extractcustomerinfo

import (
	"testing"

	"loan-assistant-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Keyword Rule Tests
// ==========================

func TestExtractCandidates_LoanType(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want interface{}
	}{
		{"business keyword", "user: i need a business loan", models.LoanTypeCommercial},
		{"commercial keyword", "user: looking at commercial finance", models.LoanTypeCommercial},
		{"company keyword", "user: it's for my company", models.LoanTypeCommercial},
		{"personal keyword", "user: just a personal loan", models.LoanTypeConsumer},
		{"consumer keyword", "user: consumer finance please", models.LoanTypeConsumer},
		{"commercial beats personal", "user: a personal guarantee on a business loan", models.LoanTypeCommercial},
		{"no keyword", "user: hello there", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractCandidates(tt.blob)
			assert.Equal(t, tt.want, got["loan_type"])
		})
	}
}

func TestExtractCandidates_AssetAndProperty(t *testing.T) {
	got := extractCandidates("user: i own property and want a truck")
	assert.Equal(t, models.AssetTypeMotorVehicle, got["asset_type"])
	assert.Equal(t, models.PropertyOwner, got["property_status"])

	got = extractCandidates("user: i rent and need machinery finance")
	assert.Equal(t, models.AssetTypePrimary, got["asset_type"])
	assert.Equal(t, models.NonPropertyOwner, got["property_status"])
}

// ==========================
// Numeric Rule Tests
// ==========================

func TestExtractCandidates_YearsAndScore(t *testing.T) {
	tests := []struct {
		name  string
		blob  string
		field string
		want  interface{}
	}{
		{"abn keyword first", "user: my abn has been active for 5 years", "ABN_years", 5},
		{"abn years first", "user: 12 years on my abn", "ABN_years", 12},
		{"gst keyword first", "user: registered for gst for 3 years", "GST_years", 3},
		{"credit score after keyword", "user: my credit score is 720", "credit_score", 720},
		{"score before keyword", "user: 680 is my score", "credit_score", 680},
		{"no digits", "user: i have an abn", "ABN_years", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractCandidates(tt.blob)
			assert.Equal(t, tt.want, got[tt.field])
		})
	}
}

func TestExtractCandidates_LoanAmount(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want interface{}
	}{
		{"dollar grouped", "user: i want to borrow $25,000", 25000},
		{"dollar plain", "user: around $8000 should do", 8000},
		{"k suffix", "user: about 45k", 45000},
		{"dollar k suffix", "user: around $45k", 45000},
		{"thousand suffix", "user: maybe 30 thousand", 30000},
		{"no amount", "user: as much as possible", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractCandidates(tt.blob)
			assert.Equal(t, tt.want, got["desired_loan_amount"])
		})
	}
}

// ==========================
// Vehicle Rule Tests
// ==========================

func TestExtractCandidates_Vehicle(t *testing.T) {
	got := extractCandidates("user: looking at a used toyota hilux")
	assert.Equal(t, "Toyota", got["vehicle_make"])
	assert.Equal(t, models.VehicleConditionUsed, got["vehicle_condition"])
	// A recognized brand implies a motor vehicle even without "car"/"vehicle".
	assert.Equal(t, models.AssetTypeMotorVehicle, got["asset_type"])

	got = extractCandidates("user: i'd like a new car")
	assert.Equal(t, models.VehicleConditionNew, got["vehicle_condition"])
	assert.Nil(t, got["vehicle_make"])
}

func TestExtractCandidates_MakePriorityOrder(t *testing.T) {
	// Both brands present: the earlier entry in the priority list wins.
	got := extractCandidates("user: torn between a bmw and a toyota")
	assert.Equal(t, "Toyota", got["vehicle_make"])
}
