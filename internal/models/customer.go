// internal/models/customer.go
package models

import (
	"fmt"
	"sort"
)

// Enumerated attribute values shared with the chat transport.
const (
	LoanTypeCommercial = "commercial"
	LoanTypeConsumer   = "consumer"

	AssetTypeMotorVehicle = "motor_vehicle"
	AssetTypePrimary      = "primary"

	PropertyOwner    = "property_owner"
	NonPropertyOwner = "non_property_owner"

	VehicleConditionNew  = "new"
	VehicleConditionUsed = "used"
)

// CustomerProfile holds the structured customer attributes collected over a
// chat session. Field names on the wire match what the advisor service and
// the UI form expect. Numeric attributes are pointers so "not yet known" is
// distinguishable from a legitimate zero (e.g. 0 years of ABN registration).
type CustomerProfile struct {
	LoanType            string   `json:"loan_type,omitempty"`
	AssetType           string   `json:"asset_type,omitempty"`
	PropertyStatus      string   `json:"property_status,omitempty"`
	ABNYears            *int     `json:"ABN_years,omitempty"`
	GSTYears            *int     `json:"GST_years,omitempty"`
	CreditScore         *int     `json:"credit_score,omitempty"`
	DesiredLoanAmount   *int     `json:"desired_loan_amount,omitempty"`
	VehicleType         string   `json:"vehicle_type,omitempty"`
	VehicleCondition    string   `json:"vehicle_condition,omitempty"`
	VehicleMake         string   `json:"vehicle_make,omitempty"`
	VehicleModel        string   `json:"vehicle_model,omitempty"`
	VehicleYear         *int     `json:"vehicle_year,omitempty"`
	BusinessStructure   string   `json:"business_structure,omitempty"`
	InterestRateCeiling *float64 `json:"interest_rate_ceiling,omitempty"`
	MonthlyBudget       *int     `json:"monthly_budget,omitempty"`
	LoanTermPreference  string   `json:"loan_term_preference,omitempty"`

	// ExtractedFields lists attribute names that were populated by automatic
	// extraction rather than a manual edit. Used for UI labelling only.
	ExtractedFields []string `json:"extracted_fields,omitempty"`
}

// FieldKind describes the declared value domain of an attribute.
type FieldKind int

const (
	FieldEnum FieldKind = iota
	FieldInt
	FieldFloat
	FieldText
)

// FieldSpec declares one profile attribute: its value domain and an optional
// visibility predicate over the rest of the profile.
type FieldSpec struct {
	Name        string
	Kind        FieldKind
	Options     []string // FieldEnum only
	Min, Max    float64  // FieldInt / FieldFloat only
	VisibleWhen func(*CustomerProfile) bool
}

func vehicleFieldsVisible(p *CustomerProfile) bool {
	return p.AssetType == AssetTypeMotorVehicle
}

func commercialFieldsVisible(p *CustomerProfile) bool {
	return p.LoanType == LoanTypeCommercial
}

// ProfileFields is the registry of all customer attributes, in form order.
var ProfileFields = []FieldSpec{
	{Name: "loan_type", Kind: FieldEnum, Options: []string{LoanTypeCommercial, LoanTypeConsumer}},
	{Name: "asset_type", Kind: FieldEnum, Options: []string{AssetTypeMotorVehicle, AssetTypePrimary}},
	{Name: "property_status", Kind: FieldEnum, Options: []string{PropertyOwner, NonPropertyOwner}},
	{Name: "ABN_years", Kind: FieldInt, Min: 0, Max: 50, VisibleWhen: commercialFieldsVisible},
	{Name: "GST_years", Kind: FieldInt, Min: 0, Max: 50, VisibleWhen: commercialFieldsVisible},
	{Name: "credit_score", Kind: FieldInt, Min: 300, Max: 900},
	{Name: "desired_loan_amount", Kind: FieldInt, Min: 1000, Max: 10000000},
	{Name: "vehicle_type", Kind: FieldText, VisibleWhen: vehicleFieldsVisible},
	{Name: "vehicle_condition", Kind: FieldEnum, Options: []string{VehicleConditionNew, VehicleConditionUsed}, VisibleWhen: vehicleFieldsVisible},
	{Name: "vehicle_make", Kind: FieldText, VisibleWhen: vehicleFieldsVisible},
	{Name: "vehicle_model", Kind: FieldText, VisibleWhen: vehicleFieldsVisible},
	{Name: "vehicle_year", Kind: FieldInt, Min: 1980, Max: 2100, VisibleWhen: vehicleFieldsVisible},
	{Name: "business_structure", Kind: FieldEnum, Options: []string{"sole_trader", "partnership", "company", "trust"}, VisibleWhen: commercialFieldsVisible},
	{Name: "interest_rate_ceiling", Kind: FieldFloat, Min: 0, Max: 100},
	{Name: "monthly_budget", Kind: FieldInt, Min: 0, Max: 1000000},
	{Name: "loan_term_preference", Kind: FieldText},
}

var fieldSpecsByName = func() map[string]FieldSpec {
	m := make(map[string]FieldSpec, len(ProfileFields))
	for _, f := range ProfileFields {
		m[f.Name] = f
	}
	return m
}()

// FieldSpecFor returns the registry entry for an attribute name.
func FieldSpecFor(name string) (FieldSpec, bool) {
	spec, ok := fieldSpecsByName[name]
	return spec, ok
}

// IsSet reports whether the named attribute currently holds a value.
func (p *CustomerProfile) IsSet(name string) bool {
	v, ok := p.Value(name)
	if !ok {
		return false
	}
	switch val := v.(type) {
	case string:
		return val != ""
	case nil:
		return false
	default:
		return true
	}
}

// Value returns the current value of the named attribute. Unset numeric
// attributes return a nil interface with ok=true; unknown names return
// ok=false.
func (p *CustomerProfile) Value(name string) (interface{}, bool) {
	switch name {
	case "loan_type":
		return p.LoanType, true
	case "asset_type":
		return p.AssetType, true
	case "property_status":
		return p.PropertyStatus, true
	case "ABN_years":
		return intOrNil(p.ABNYears), true
	case "GST_years":
		return intOrNil(p.GSTYears), true
	case "credit_score":
		return intOrNil(p.CreditScore), true
	case "desired_loan_amount":
		return intOrNil(p.DesiredLoanAmount), true
	case "vehicle_type":
		return p.VehicleType, true
	case "vehicle_condition":
		return p.VehicleCondition, true
	case "vehicle_make":
		return p.VehicleMake, true
	case "vehicle_model":
		return p.VehicleModel, true
	case "vehicle_year":
		return intOrNil(p.VehicleYear), true
	case "business_structure":
		return p.BusinessStructure, true
	case "interest_rate_ceiling":
		return floatOrNil(p.InterestRateCeiling), true
	case "monthly_budget":
		return intOrNil(p.MonthlyBudget), true
	case "loan_term_preference":
		return p.LoanTermPreference, true
	default:
		return nil, false
	}
}

func intOrNil(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func floatOrNil(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// Set writes the named attribute after checking the declared value domain.
// Out-of-domain values are rejected with an error and leave the profile
// unchanged.
func (p *CustomerProfile) Set(name string, value interface{}) error {
	spec, ok := fieldSpecsByName[name]
	if !ok {
		return fmt.Errorf("unknown profile field %q", name)
	}

	switch spec.Kind {
	case FieldEnum:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %q expects a string, got %T", name, value)
		}
		valid := false
		for _, opt := range spec.Options {
			if s == opt {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("field %q does not allow value %q", name, s)
		}
		return p.setString(name, s)

	case FieldText:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %q expects a string, got %T", name, value)
		}
		return p.setString(name, s)

	case FieldInt:
		n, ok := toInt(value)
		if !ok {
			return fmt.Errorf("field %q expects an integer, got %T", name, value)
		}
		if float64(n) < spec.Min || float64(n) > spec.Max {
			return fmt.Errorf("field %q value %d outside [%v, %v]", name, n, spec.Min, spec.Max)
		}
		return p.setInt(name, n)

	case FieldFloat:
		f, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("field %q expects a number, got %T", name, value)
		}
		if f < spec.Min || f > spec.Max {
			return fmt.Errorf("field %q value %v outside [%v, %v]", name, f, spec.Min, spec.Max)
		}
		p.InterestRateCeiling = &f
		return nil
	}

	return fmt.Errorf("field %q has unsupported kind", name)
}

func toInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func (p *CustomerProfile) setString(name, s string) error {
	switch name {
	case "loan_type":
		p.LoanType = s
	case "asset_type":
		p.AssetType = s
	case "property_status":
		p.PropertyStatus = s
	case "vehicle_type":
		p.VehicleType = s
	case "vehicle_condition":
		p.VehicleCondition = s
	case "vehicle_make":
		p.VehicleMake = s
	case "vehicle_model":
		p.VehicleModel = s
	case "business_structure":
		p.BusinessStructure = s
	case "loan_term_preference":
		p.LoanTermPreference = s
	default:
		return fmt.Errorf("field %q is not a string field", name)
	}
	return nil
}

func (p *CustomerProfile) setInt(name string, n int) error {
	switch name {
	case "ABN_years":
		p.ABNYears = &n
	case "GST_years":
		p.GSTYears = &n
	case "credit_score":
		p.CreditScore = &n
	case "desired_loan_amount":
		p.DesiredLoanAmount = &n
	case "vehicle_year":
		p.VehicleYear = &n
	case "monthly_budget":
		p.MonthlyBudget = &n
	default:
		return fmt.Errorf("field %q is not an integer field", name)
	}
	return nil
}

// FieldVisible evaluates the attribute's visibility predicate against the
// current profile. Unknown names are not visible.
func (p *CustomerProfile) FieldVisible(name string) bool {
	spec, ok := fieldSpecsByName[name]
	if !ok {
		return false
	}
	if spec.VisibleWhen == nil {
		return true
	}
	return spec.VisibleWhen(p)
}

// VisibleFields returns the attribute names currently visible, in form order.
func (p *CustomerProfile) VisibleFields() []string {
	out := make([]string, 0, len(ProfileFields))
	for _, spec := range ProfileFields {
		if p.FieldVisible(spec.Name) {
			out = append(out, spec.Name)
		}
	}
	return out
}

// MarkExtracted records that an attribute was populated by automatic
// extraction. The set stays sorted and duplicate-free.
func (p *CustomerProfile) MarkExtracted(name string) {
	for _, existing := range p.ExtractedFields {
		if existing == name {
			return
		}
	}
	p.ExtractedFields = append(p.ExtractedFields, name)
	sort.Strings(p.ExtractedFields)
}

// WasExtracted reports whether the attribute came from automatic extraction.
func (p *CustomerProfile) WasExtracted(name string) bool {
	for _, existing := range p.ExtractedFields {
		if existing == name {
			return true
		}
	}
	return false
}

// PopulatedCount returns how many attributes currently hold a value.
func (p *CustomerProfile) PopulatedCount() int {
	count := 0
	for _, spec := range ProfileFields {
		if p.IsSet(spec.Name) {
			count++
		}
	}
	return count
}

// ForRequest returns the profile as the current_customer_info map sent with
// each outbound advisor request, with empty attributes dropped.
func (p *CustomerProfile) ForRequest() map[string]interface{} {
	out := make(map[string]interface{})
	for _, spec := range ProfileFields {
		if !p.IsSet(spec.Name) {
			continue
		}
		v, _ := p.Value(spec.Name)
		out[spec.Name] = v
	}
	return out
}

// Reset clears every attribute and the extracted-field set.
func (p *CustomerProfile) Reset() {
	*p = CustomerProfile{}
}
