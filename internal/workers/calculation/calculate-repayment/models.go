// internal/workers/calculation/calculate-repayment/models.go
package calculaterepayment

type Input struct {
	SessionID  string  `json:"sessionId"`
	LoanAmount float64 `json:"loanAmount"`
	AnnualRate float64 `json:"annualRate"`
	TermMonths int     `json:"termMonths"`
}

type Output struct {
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalInterest  float64 `json:"totalInterest"`
	TotalCost      float64 `json:"totalCost"`
}
