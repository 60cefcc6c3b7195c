// internal/workers/recommendation/fetch-recommendations/handler.go
package fetchrecommendations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "loan-assistant-workers/internal/common/errors"
	"loan-assistant-workers/internal/common/logger"
	"loan-assistant-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "fetch-recommendations"
)

var (
	ErrAdvisorRequestFailed = errors.New(string(apperrors.ErrCodeAdvisorFailed))
	ErrAdvisorTimeout       = errors.New(string(apperrors.ErrCodeAdvisorTimeout))
)

type Handler struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		h.failJob(client, job, fmt.Errorf("parse input: %w", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		retries := int32(0)
		if errors.Is(err, ErrAdvisorTimeout) {
			retries = 1
		} else if errors.Is(err, ErrAdvisorRequestFailed) {
			retries = 2
		}
		h.failJob(client, job, err, retries)
		return
	}

	h.completeJob(client, job, output)
	metrics.JobCompleted(TaskType, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	reqBody := advisorRequest{
		SessionID:           input.SessionID,
		Message:             input.Message,
		ConversationHistory: input.ConversationHistory,
	}
	if input.CustomerInfo != nil {
		reqBody.CurrentCustomerInfo = input.CustomerInfo.ForRequest()
	}

	body, _ := json.Marshal(reqBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrAdvisorTimeout
			}
		}

		// Fresh request per attempt so the body is readable on retries.
		req, err := http.NewRequestWithContext(ctx, "POST", h.config.AdvisorBaseURL+"/api/chat/recommendations", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAdvisorRequestFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if h.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+h.config.APIKey)
		}

		resp, lastErr = h.client.Do(req)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return nil, ErrAdvisorTimeout
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrAdvisorTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrAdvisorRequestFailed, lastErr)
	}

	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", ErrAdvisorRequestFailed)
	}
	defer resp.Body.Close()

	var apiResponse advisorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrAdvisorRequestFailed, err)
	}

	h.logger.Info("recommendations fetched", map[string]interface{}{
		"sessionId":           input.SessionID,
		"recommendationCount": len(apiResponse.Recommendations),
	})

	return &Output{
		Reply:           apiResponse.Reply,
		Recommendations: apiResponse.Recommendations,
	}, nil
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	errorCode := string(apperrors.ErrCodeInternal)
	if errors.Is(err, ErrAdvisorTimeout) {
		errorCode = string(apperrors.ErrCodeAdvisorTimeout)
	} else if errors.Is(err, ErrAdvisorRequestFailed) {
		errorCode = string(apperrors.ErrCodeAdvisorFailed)
	}

	metrics.JobFailed(TaskType, errorCode)
	h.logger.WithError(err).Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"errorCode": errorCode,
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(errorCode + ": " + err.Error()).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
