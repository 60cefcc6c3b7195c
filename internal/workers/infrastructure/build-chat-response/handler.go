// internal/workers/infrastructure/build-chat-response/handler.go
package buildchatresponse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "loan-assistant-workers/internal/common/errors"
	"loan-assistant-workers/internal/common/logger"
	"loan-assistant-workers/internal/common/metrics"
	"loan-assistant-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"
)

const (
	TaskType = "build-chat-response"
)

var ErrResponseBuildFailed = errors.New(string(apperrors.ErrCodeResponseBuildFailed))

type Handler struct {
	config *Config
	schema *gojsonschema.Schema
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}
	return &Handler{
		config: config,
		schema: schema,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err.Error())
		return
	}

	h.completeJob(client, job, output)
	metrics.JobCompleted(TaskType, start)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.SessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required", ErrResponseBuildFailed)
	}

	profile := input.CustomerInfo
	if profile == nil {
		profile = &models.CustomerProfile{}
	}

	response := ChatResponse{
		SessionID:    input.SessionID,
		Reply:        input.Reply,
		CustomerForm: buildForm(profile),
		Extraction: ExtractionStatus{
			NewFieldsCount: input.NewFieldsCount,
			Confidence:     input.ExtractionConfidence,
		},
		Recommendations: buildCards(input.Recommendations),
	}

	raw, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal: %v", ErrResponseBuildFailed, err)
	}

	result, err := h.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: validate: %v", ErrResponseBuildFailed, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrResponseBuildFailed, strings.Join(details, "; "))
	}

	h.logger.Info("chat response built", map[string]interface{}{
		"sessionId":       input.SessionID,
		"formFields":      len(response.CustomerForm),
		"recommendations": len(response.Recommendations),
	})

	return &Output{Response: response}, nil
}

// buildForm lists every currently visible attribute in registry order with
// its display value, so hidden vehicle and business fields never reach the
// browser.
func buildForm(profile *models.CustomerProfile) []FormField {
	fields := make([]FormField, 0, len(models.ProfileFields))
	for _, spec := range models.ProfileFields {
		if !profile.FieldVisible(spec.Name) {
			continue
		}
		fields = append(fields, FormField{
			Field:     spec.Name,
			Value:     displayValue(profile, spec.Name),
			Populated: profile.IsSet(spec.Name),
			Extracted: profile.WasExtracted(spec.Name),
		})
	}
	return fields
}

func displayValue(profile *models.CustomerProfile, name string) string {
	v, ok := profile.Value(name)
	if !ok || v == nil {
		return models.NotSpecified
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return models.NotSpecified
		}
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func buildCards(recs []models.RecommendedProduct) []ProductCard {
	cards := make([]ProductCard, len(recs))
	for i, rec := range recs {
		cards[i] = ProductCard{
			ID:                   rec.ID,
			LenderName:           orNotSpecified(rec.LenderName),
			ProductName:          orNotSpecified(rec.ProductName),
			BaseRate:             rec.BaseRate,
			ComparisonRate:       floatDisplay(rec.ComparisonRate, "%.2f%%"),
			MaxLoanAmount:        floatDisplay(rec.MaxLoanAmount, "$%.0f"),
			LoanTermOptions:      rec.LoanTermOptions,
			MonthlyPayment:       floatDisplay(rec.MonthlyPayment, "$%.2f"),
			DocumentationType:    orNotSpecified(rec.DocumentationType),
			RequirementsMet:      rec.RequirementsMet,
			DetailedRequirements: orEmptyMap(rec.DetailedRequirements),
			FeesBreakdown:        orEmptyMap(rec.FeesBreakdown),
			RateConditions:       orEmptyMap(rec.RateConditions),
			RecommendationStatus: rec.RecommendationStatus,
			DisplayOrder:         rec.DisplayOrder,
		}
		if cards[i].LoanTermOptions == nil {
			cards[i].LoanTermOptions = []string{}
		}
	}
	return cards
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return models.NotSpecified
	}
	return s
}

func floatDisplay(v *float64, format string) string {
	if v == nil {
		return models.NotSpecified
	}
	return fmt.Sprintf(format, *v)
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, message string) {
	metrics.JobFailed(TaskType, string(apperrors.ErrCodeResponseBuildFailed))
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey": job.Key,
		"error":  message,
	})

	_, err := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(0).
		ErrorMessage(string(apperrors.ErrCodeResponseBuildFailed) + ": " + message).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send fail job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
