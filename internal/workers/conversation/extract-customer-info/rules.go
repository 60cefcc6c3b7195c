// internal/workers/conversation/extract-customer-info/rules.go
package extractcustomerinfo

import (
	"regexp"
	"strconv"
	"strings"

	"loan-assistant-workers/internal/models"
)

// vehicleMakes is a priority list: the first brand found as a substring of
// the transcript blob wins. Ordered by local market share.
var vehicleMakes = []string{
	"toyota", "ford", "mazda", "hyundai", "kia", "mitsubishi", "nissan",
	"honda", "volkswagen", "subaru", "isuzu", "mg", "ldv", "tesla",
	"bmw", "mercedes", "audi", "lexus", "suzuki", "jeep", "holden",
}

var (
	abnYearsRe    = regexp.MustCompile(`abn\D{0,30}?(\d+)\s*\+?\s*years?`)
	yearsAbnRe    = regexp.MustCompile(`(\d+)\s*\+?\s*years?\D{0,30}?abn`)
	gstYearsRe    = regexp.MustCompile(`gst\D{0,30}?(\d+)\s*\+?\s*years?`)
	yearsGstRe    = regexp.MustCompile(`(\d+)\s*\+?\s*years?\D{0,30}?gst`)
	creditAfterRe = regexp.MustCompile(`(?:credit|score)\D{0,20}?(\d{3,4})`)
	creditBeforRe = regexp.MustCompile(`(\d{3,4})\D{0,20}?(?:credit|score)`)

	// Alternative order matters: the "k" and "thousand" branches must come
	// before the plain dollar branch so "$45k" parses as 45000, not 45.
	loanAmountRe = regexp.MustCompile(
		`\$?\s*(\d+(?:,\d{3})*)\s*k\b` +
			`|\$?\s*(\d+(?:,\d{3})*)\s*thousand\b` +
			`|\$\s*(\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?`)

	conditionRe = regexp.MustCompile(
		`\b(new|used)\s+(?:car|vehicle|` + strings.Join(vehicleMakes, "|") + `)\b`)
)

// candidate is one value a rule proposes for the profile. Candidates still
// go through the profile's domain checks at merge time.
type candidate struct {
	field string
	value interface{}
}

// ruleOrder fixes the merge order so newFieldsCount is deterministic.
var ruleOrder = []string{
	"loan_type",
	"asset_type",
	"property_status",
	"ABN_years",
	"GST_years",
	"credit_score",
	"desired_loan_amount",
	"vehicle_make",
	"vehicle_condition",
}

// extractCandidates runs every rule over the lower-cased transcript blob and
// returns the values that matched. Rules that find nothing contribute
// nothing; they never error.
func extractCandidates(blob string) map[string]interface{} {
	out := make(map[string]interface{})

	if v, ok := matchLoanType(blob); ok {
		out["loan_type"] = v
	}
	if v, ok := matchAssetType(blob); ok {
		out["asset_type"] = v
	}
	if v, ok := matchPropertyStatus(blob); ok {
		out["property_status"] = v
	}
	if v, ok := matchKeywordYears(blob, abnYearsRe, yearsAbnRe); ok {
		out["ABN_years"] = v
	}
	if v, ok := matchKeywordYears(blob, gstYearsRe, yearsGstRe); ok {
		out["GST_years"] = v
	}
	if v, ok := matchCreditScore(blob); ok {
		out["credit_score"] = v
	}
	if v, ok := matchLoanAmount(blob); ok {
		out["desired_loan_amount"] = v
	}
	if v, ok := matchVehicleMake(blob); ok {
		out["vehicle_make"] = v
		// A recognized brand implies the asset is a motor vehicle.
		if _, set := out["asset_type"]; !set {
			out["asset_type"] = models.AssetTypeMotorVehicle
		}
	}
	if v, ok := matchVehicleCondition(blob); ok {
		out["vehicle_condition"] = v
	}

	return out
}

func containsAny(blob string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(blob, kw) {
			return true
		}
	}
	return false
}

// Commercial keywords are checked first and take priority.
func matchLoanType(blob string) (string, bool) {
	if containsAny(blob, "business", "commercial", "company") {
		return models.LoanTypeCommercial, true
	}
	if containsAny(blob, "personal", "consumer") {
		return models.LoanTypeConsumer, true
	}
	return "", false
}

func matchAssetType(blob string) (string, bool) {
	if containsAny(blob, "car", "vehicle", "truck", "van") {
		return models.AssetTypeMotorVehicle, true
	}
	if containsAny(blob, "equipment", "machinery") {
		return models.AssetTypePrimary, true
	}
	return "", false
}

func matchPropertyStatus(blob string) (string, bool) {
	if containsAny(blob, "own property", "property owner", "have property") {
		return models.PropertyOwner, true
	}
	if containsAny(blob, "no property", "don't own", "rent") {
		return models.NonPropertyOwner, true
	}
	return "", false
}

// matchKeywordYears handles both "abn for 5 years" and "5 years on my abn".
func matchKeywordYears(blob string, after, before *regexp.Regexp) (int, bool) {
	if m := after.FindStringSubmatch(blob); m != nil {
		return parseIntCapture(m[1])
	}
	if m := before.FindStringSubmatch(blob); m != nil {
		return parseIntCapture(m[1])
	}
	return 0, false
}

func matchCreditScore(blob string) (int, bool) {
	if m := creditAfterRe.FindStringSubmatch(blob); m != nil {
		return parseIntCapture(m[1])
	}
	if m := creditBeforRe.FindStringSubmatch(blob); m != nil {
		return parseIntCapture(m[1])
	}
	return 0, false
}

func matchVehicleMake(blob string) (string, bool) {
	for _, brand := range vehicleMakes {
		if strings.Contains(blob, brand) {
			return strings.ToUpper(brand[:1]) + brand[1:], true
		}
	}
	return "", false
}

func matchVehicleCondition(blob string) (string, bool) {
	m := conditionRe.FindStringSubmatch(blob)
	if m == nil {
		return "", false
	}
	switch m[1] {
	case "new":
		return models.VehicleConditionNew, true
	case "used":
		return models.VehicleConditionUsed, true
	}
	return "", false
}

func matchLoanAmount(blob string) (int, bool) {
	m := loanAmountRe.FindStringSubmatch(blob)
	if m == nil {
		return 0, false
	}
	switch {
	case m[1] != "":
		n, ok := parseIntCapture(m[1])
		return n * 1000, ok
	case m[2] != "":
		n, ok := parseIntCapture(m[2])
		return n * 1000, ok
	default:
		return parseIntCapture(m[3])
	}
}

func parseIntCapture(s string) (int, bool) {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}
