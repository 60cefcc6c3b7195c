// internal/workers/conversation/extract-customer-info/handler.go
package extractcustomerinfo

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
)

const (
	TaskType = "extract-customer-info"

	// confidenceDivisor: a profile with this many populated fields is
	// treated as fully confident.
	confidenceDivisor = 10.0
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
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
		h.failJob(client, job, errors.NewExtractionError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.JobCompleted(TaskType, start)
}

// ShouldExtract is the scheduling predicate: a pass runs only when the
// transcript grew or shrank since the last pass and the debounce window has
// elapsed since the most recent change. The caller owns the timer; this
// stays pure so the trigger mechanism is swappable.
func ShouldExtract(transcriptLen, lastExtracted int, sinceLastChange, debounce time.Duration) bool {
	if transcriptLen == lastExtracted {
		return false
	}
	return sinceLastChange >= debounce
}

// execute runs one extraction pass. Any internal fault surfaces only as a
// zero-field pass; the profile handed back is never left half-mutated
// because candidates merge through domain-checked setters one at a time.
func (h *Handler) execute(_ context.Context, input *Input) (out *Output, err error) {
	profile := input.CustomerInfo
	if profile == nil {
		profile = &models.CustomerProfile{}
	}

	out = &Output{
		CustomerInfo:       profile,
		LastExtractedCount: len(input.ConversationHistory),
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("extraction pass faulted", map[string]interface{}{
				"sessionId": input.SessionID,
				"panic":     fmt.Sprintf("%v", r),
			})
			metrics.ExtractionPassesEmpty.Inc()
			out.NewFieldsCount = 0
			out.ExtractionConfidence = confidence(profile)
			err = nil
		}
	}()

	window := models.TranscriptWindow(input.ConversationHistory, h.config.WindowSize)
	blob := models.TranscriptBlob(window)

	candidates := extractCandidates(blob)

	newFields := 0
	for _, field := range ruleOrder {
		value, ok := candidates[field]
		if !ok {
			continue
		}
		// First-extracted wins: populated fields are never overwritten.
		if profile.IsSet(field) {
			continue
		}
		if setErr := profile.Set(field, value); setErr != nil {
			// Out-of-domain match, discard and leave the field unset.
			h.logger.Debug("extracted value rejected", map[string]interface{}{
				"field":  field,
				"reason": setErr.Error(),
			})
			continue
		}
		profile.MarkExtracted(field)
		newFields++
	}

	out.NewFieldsCount = newFields
	out.ExtractionConfidence = confidence(profile)

	if newFields == 0 {
		metrics.ExtractionPassesEmpty.Inc()
	} else {
		metrics.FieldsExtracted.Add(float64(newFields))
	}

	h.logger.Info("extraction pass completed", map[string]interface{}{
		"sessionId":      input.SessionID,
		"windowSize":     len(window),
		"newFieldsCount": newFields,
		"confidence":     out.ExtractionConfidence,
	})

	return out, nil
}

func confidence(p *models.CustomerProfile) float64 {
	c := float64(p.PopulatedCount()) / confidenceDivisor
	if c > 1.0 {
		return 1.0
	}
	return c
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	metrics.JobFailed(TaskType, string(errors.ErrCodeExtractionFailed))
	h.logger.WithError(err).Error("job failed", map[string]interface{}{
		"jobKey": job.Key,
	})

	_, sendErr := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(0).
		ErrorMessage(string(errors.ErrCodeExtractionFailed) + ": " + err.Error()).
		Send(context.Background())
	if sendErr != nil {
		h.logger.Error("failed to send fail job command", map[string]interface{}{
			"error": sendErr,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
