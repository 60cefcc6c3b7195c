// internal/workers/session/sync-chat-session/handler.go
package syncchatsession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "loan-assistant-workers/internal/common/errors"
	"loan-assistant-workers/internal/common/logger"
	"loan-assistant-workers/internal/common/metrics"
	"loan-assistant-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "sync-chat-session"

	keyPrefix = "chat-session:"
)

var (
	ErrSessionStoreFailed = errors.New(string(apperrors.ErrCodeSessionStoreFailed))
	ErrUnknownAction      = errors.New("unknown session action")
)

type Handler struct {
	config *Config
	rdb    redis.Cmdable
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, rdb redis.Cmdable, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		rdb:    rdb,
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
		h.failJob(client, job, fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		retries := int32(0)
		if errors.Is(err, ErrSessionStoreFailed) {
			retries = 2
		}
		h.failJob(client, job, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
	metrics.JobCompleted(TaskType, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.SessionID == "" {
		return nil, fmt.Errorf("sessionId is required")
	}

	switch input.Action {
	case ActionLoad, "":
		return h.load(ctx, input.SessionID)
	case ActionAppend:
		return h.append(ctx, input)
	case ActionReset:
		return h.reset(ctx, input.SessionID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, input.Action)
	}
}

// load fetches the session, creating a fresh one when the key is missing or
// the stored record has expired.
func (h *Handler) load(ctx context.Context, sessionID string) (*Output, error) {
	session, err := h.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	created := false
	if session == nil || session.IsExpired() {
		session = h.newSession(sessionID)
		created = true
		if err := h.store(ctx, session); err != nil {
			return nil, err
		}
	}

	return h.output(session, created), nil
}

// append applies the supplied parts to the session and refreshes the TTL.
func (h *Handler) append(ctx context.Context, input *Input) (*Output, error) {
	session, err := h.fetch(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	created := false
	if session == nil || session.IsExpired() {
		session = h.newSession(input.SessionID)
		created = true
	}

	session.ConversationHistory = append(session.ConversationHistory, input.Messages...)
	if input.CustomerInfo != nil {
		session.CustomerInfo = *input.CustomerInfo
	}
	if input.LatestRecommendations != nil {
		session.LatestRecommendations = input.LatestRecommendations
	}
	if input.LastExtractedCount != nil {
		session.LastExtractedCount = *input.LastExtractedCount
	}
	session.Touch()

	if err := h.store(ctx, session); err != nil {
		return nil, err
	}

	return h.output(session, created), nil
}

// reset clears the profile, the transcript and the recommendation window.
// The emptied window travels back in the output so no stale batch upstream
// can be re-merged afterwards.
func (h *Handler) reset(ctx context.Context, sessionID string) (*Output, error) {
	session := h.newSession(sessionID)
	if err := h.store(ctx, session); err != nil {
		return nil, err
	}

	h.logger.Info("session reset", map[string]interface{}{
		"sessionId": sessionID,
	})

	return h.output(session, true), nil
}

func (h *Handler) newSession(sessionID string) *models.ChatSession {
	now := h.now()
	return &models.ChatSession{
		ID:           sessionID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(h.config.TTL),
	}
}

func (h *Handler) fetch(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	raw, err := h.rdb.Get(ctx, keyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get: %v", ErrSessionStoreFailed, err)
	}

	var session models.ChatSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		// A corrupt record is unrecoverable; treat it as absent.
		h.logger.Warn("discarding corrupt session record", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		return nil, nil
	}
	return &session, nil
}

func (h *Handler) store(ctx context.Context, session *models.ChatSession) error {
	session.ExpiresAt = h.now().Add(h.config.TTL)

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrSessionStoreFailed, err)
	}
	if err := h.rdb.Set(ctx, keyPrefix+session.ID, raw, h.config.TTL).Err(); err != nil {
		return fmt.Errorf("%w: set: %v", ErrSessionStoreFailed, err)
	}
	return nil
}

func (h *Handler) output(session *models.ChatSession, created bool) *Output {
	recommendations := session.LatestRecommendations
	if recommendations == nil {
		recommendations = []models.RecommendedProduct{}
	}
	return &Output{
		SessionID:             session.ID,
		ConversationHistory:   session.ConversationHistory,
		CustomerInfo:          &session.CustomerInfo,
		LatestRecommendations: recommendations,
		LastExtractedCount:    session.LastExtractedCount,
		Created:               created,
	}
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, message string, retries int32) {
	metrics.JobFailed(TaskType, string(apperrors.ErrCodeSessionStoreFailed))
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":  job.Key,
		"error":   message,
		"retries": retries,
	})

	_, err := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(string(apperrors.ErrCodeSessionStoreFailed) + ": " + message).
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
