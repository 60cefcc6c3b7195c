// internal/workers/calculation/calculate-repayment/handler.go
package calculaterepayment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	apperrors "loan-assistant-workers/internal/common/errors"
	"loan-assistant-workers/internal/common/logger"
	"loan-assistant-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-repayment"

	minLoanAmount = 1000
	maxLoanAmount = 10000000
	maxTermMonths = 120
	maxAnnualRate = 40.0
)

type Handler struct {
	config *Config
	logger logger.Logger
	errors *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		logger: scoped,
		errors: apperrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("parse input: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		// Bad parameters are a business outcome, not a transient fault.
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.JobCompleted(TaskType, start)
}

// execute computes the standard closed-form amortized repayment:
// payment = P*r / (1 - (1+r)^-n) with r the monthly rate.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	n := float64(input.TermMonths)
	var payment float64
	if input.AnnualRate == 0 {
		payment = input.LoanAmount / n
	} else {
		r := input.AnnualRate / 100 / 12
		payment = input.LoanAmount * r / (1 - math.Pow(1+r, -n))
	}

	payment = roundCents(payment)
	totalCost := roundCents(payment * n)

	return &Output{
		MonthlyPayment: payment,
		TotalInterest:  roundCents(totalCost - input.LoanAmount),
		TotalCost:      totalCost,
	}, nil
}

func validate(input *Input) error {
	switch {
	case input.LoanAmount < minLoanAmount || input.LoanAmount > maxLoanAmount:
		return apperrors.NewInvalidLoanParametersError(
			fmt.Sprintf("loan amount %.2f outside [%d, %d]", input.LoanAmount, minLoanAmount, maxLoanAmount))
	case input.TermMonths <= 0 || input.TermMonths > maxTermMonths:
		return apperrors.NewInvalidLoanParametersError(
			fmt.Sprintf("term %d months outside (0, %d]", input.TermMonths, maxTermMonths))
	case input.AnnualRate < 0 || input.AnnualRate > maxAnnualRate:
		return apperrors.NewInvalidLoanParametersError(
			fmt.Sprintf("annual rate %.2f outside [0, %.0f]", input.AnnualRate, maxAnnualRate))
	}
	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

// failJob routes through the shared error handler, which throws a BPMN
// error for non-retryable codes so the process can branch on them.
func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	errorCode := string(apperrors.ErrCodeInternal)
	if stdErr, ok := err.(*apperrors.StandardError); ok {
		errorCode = string(stdErr.Code)
	}
	metrics.JobFailed(TaskType, errorCode)

	h.errors.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
