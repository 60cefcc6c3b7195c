// internal/workers/recommendation/merge-recommendations/handler.go
package mergerecommendations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loan-assistant-workers/internal/common/errors"
	"loan-assistant-workers/internal/common/logger"
	"loan-assistant-workers/internal/common/metrics"
	"loan-assistant-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "merge-recommendations"
)

type Handler struct {
	config *Config
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
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

// execute merges the incoming batch into the prior window: incoming items
// are stamped and concatenated in front, then a left-to-right scan keeps the
// first occurrence of each (lender_name, product_name) key, the result is
// truncated to the window bound, and every surviving entry is relabeled by
// position. Deterministic for a fixed clock and batch order.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	maxSize := h.config.MaxWindow
	if maxSize < 1 {
		maxSize = 1
	}

	// Empty incoming batch: the prior window passes through untouched.
	if len(input.Recommendations) == 0 {
		return &Output{
			LatestRecommendations: input.LatestRecommendations,
			WindowSize:            len(input.LatestRecommendations),
		}, nil
	}

	generatedAt := h.now()

	incoming := make([]models.RecommendedProduct, len(input.Recommendations))
	for i, rec := range input.Recommendations {
		rec.ID = uuid.NewString()
		rec.GeneratedAt = generatedAt
		if !rec.HasIdentity() {
			// No dedup key: the record stays always-distinct under its
			// synthetic ID.
			h.logger.Warn("recommendation missing identity fields", map[string]interface{}{
				"sessionId": input.SessionID,
				"position":  i,
			})
		}
		incoming[i] = rec
	}

	combined := append(incoming, input.LatestRecommendations...)

	seen := make(map[string]bool, len(combined))
	window := make([]models.RecommendedProduct, 0, maxSize)
	evicted := 0

	for _, rec := range combined {
		key := rec.DedupKey()
		if seen[key] {
			evicted++
			continue
		}
		seen[key] = true

		if len(window) == maxSize {
			evicted++
			continue
		}
		window = append(window, rec)
	}

	for i := range window {
		if i == 0 {
			window[i].RecommendationStatus = models.RecommendationCurrent
		} else {
			window[i].RecommendationStatus = models.RecommendationPrevious
		}
		window[i].DisplayOrder = i + 1
	}

	metrics.RecommendationWindowSize.Set(float64(len(window)))
	if evicted > 0 {
		metrics.RecommendationsEvicted.Add(float64(evicted))
	}

	h.logger.Info("recommendation window merged", map[string]interface{}{
		"sessionId":    input.SessionID,
		"incoming":     len(input.Recommendations),
		"prior":        len(input.LatestRecommendations),
		"windowSize":   len(window),
		"evictedCount": evicted,
	})

	return &Output{
		LatestRecommendations: window,
		WindowSize:            len(window),
		EvictedCount:          evicted,
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, message string) {
	metrics.JobFailed(TaskType, string(errors.ErrCodeMergeFailed))
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey": job.Key,
		"error":  message,
	})

	_, err := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(0).
		ErrorMessage(string(errors.ErrCodeMergeFailed) + ": " + message).
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
