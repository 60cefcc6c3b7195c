// internal/models/customer_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Value Domain Tests
// ==========================

func TestCustomerProfile_Set_DomainChecks(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   interface{}
		wantErr bool
	}{
		{"valid loan type", "loan_type", LoanTypeCommercial, false},
		{"invalid loan type", "loan_type", "payday", true},
		{"credit score in range", "credit_score", 650, false},
		{"credit score above ceiling", "credit_score", 950, true},
		{"credit score below floor", "credit_score", 250, true},
		{"abn years zero is valid", "ABN_years", 0, false},
		{"abn years above cap", "ABN_years", 51, true},
		{"loan amount at floor", "desired_loan_amount", 1000, false},
		{"loan amount below floor", "desired_loan_amount", 999, true},
		{"loan amount above ceiling", "desired_loan_amount", 10000001, true},
		{"free text vehicle make", "vehicle_make", "Toyota", false},
		{"unknown field", "shoe_size", 42, true},
		{"wrong type for enum", "asset_type", 7, true},
		{"rate ceiling float", "interest_rate_ceiling", 8.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p CustomerProfile
			err := p.Set(tt.field, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, p.IsSet(tt.field))
			} else {
				assert.NoError(t, err)
				assert.True(t, p.IsSet(tt.field))
			}
		})
	}
}

func TestCustomerProfile_Set_RejectedValueLeavesProfileUnchanged(t *testing.T) {
	var p CustomerProfile
	assert.NoError(t, p.Set("credit_score", 650))
	assert.Error(t, p.Set("credit_score", 950))

	v, ok := p.Value("credit_score")
	assert.True(t, ok)
	assert.Equal(t, 650, v)
}

// ==========================
// Visibility Tests
// ==========================

func TestCustomerProfile_FieldVisible_VehicleFields(t *testing.T) {
	vehicleFields := []string{"vehicle_type", "vehicle_condition", "vehicle_make", "vehicle_model", "vehicle_year"}

	var p CustomerProfile
	assert.NoError(t, p.Set("asset_type", AssetTypePrimary))
	for _, f := range vehicleFields {
		assert.False(t, p.FieldVisible(f), "field %s should be hidden for primary assets", f)
	}

	before := p.ForRequest()
	assert.NoError(t, p.Set("asset_type", AssetTypeMotorVehicle))
	for _, f := range vehicleFields {
		assert.True(t, p.FieldVisible(f), "field %s should be visible for motor vehicles", f)
	}

	// Flipping visibility must not alter any other attribute.
	after := p.ForRequest()
	delete(before, "asset_type")
	delete(after, "asset_type")
	assert.Equal(t, before, after)
}

func TestCustomerProfile_FieldVisible_CommercialFields(t *testing.T) {
	var p CustomerProfile
	assert.False(t, p.FieldVisible("business_structure"))
	assert.False(t, p.FieldVisible("ABN_years"))

	assert.NoError(t, p.Set("loan_type", LoanTypeCommercial))
	assert.True(t, p.FieldVisible("business_structure"))
	assert.True(t, p.FieldVisible("ABN_years"))
	assert.True(t, p.FieldVisible("GST_years"))
}

// ==========================
// Outbound Request Map Tests
// ==========================

func TestCustomerProfile_ForRequest_DropsEmptyFields(t *testing.T) {
	var p CustomerProfile
	assert.NoError(t, p.Set("loan_type", LoanTypeConsumer))
	assert.NoError(t, p.Set("desired_loan_amount", 45000))

	m := p.ForRequest()
	assert.Equal(t, map[string]interface{}{
		"loan_type":           LoanTypeConsumer,
		"desired_loan_amount": 45000,
	}, m)
}

func TestCustomerProfile_ExtractedFieldSet(t *testing.T) {
	var p CustomerProfile
	p.MarkExtracted("loan_type")
	p.MarkExtracted("credit_score")
	p.MarkExtracted("loan_type")

	assert.Equal(t, []string{"credit_score", "loan_type"}, p.ExtractedFields)
	assert.True(t, p.WasExtracted("loan_type"))
	assert.False(t, p.WasExtracted("asset_type"))
}

func TestCustomerProfile_Reset(t *testing.T) {
	var p CustomerProfile
	assert.NoError(t, p.Set("loan_type", LoanTypeCommercial))
	p.MarkExtracted("loan_type")

	p.Reset()
	assert.Equal(t, 0, p.PopulatedCount())
	assert.Empty(t, p.ExtractedFields)
}
