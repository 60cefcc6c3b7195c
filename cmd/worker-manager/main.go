// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"loan-assistant-workers/internal/common/camunda"
	"loan-assistant-workers/internal/common/config"
	"loan-assistant-workers/internal/common/database"
	"loan-assistant-workers/internal/common/logger"
	"loan-assistant-workers/internal/common/observability"

	// Core pipeline workers
	eci "loan-assistant-workers/internal/workers/conversation/extract-customer-info"
	epd "loan-assistant-workers/internal/workers/recommendation/enrich-product-details"
	fr "loan-assistant-workers/internal/workers/recommendation/fetch-recommendations"
	mr "loan-assistant-workers/internal/workers/recommendation/merge-recommendations"

	// Supporting workers
	cr "loan-assistant-workers/internal/workers/calculation/calculate-repayment"
	bcr "loan-assistant-workers/internal/workers/infrastructure/build-chat-response"
	scs "loan-assistant-workers/internal/workers/session/sync-chat-session"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      time.Duration(cfg.Camunda.Timeout) * time.Millisecond,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- START: Register ALL 7 Workers ---
	var activeWorkers []*camunda.CamundaWorker

	// --- 1. Session Worker ---
	if cfg.Workers[scs.TaskType].Enabled {
		handler := scs.NewHandler(
			&scs.Config{
				TTL:     time.Duration(cfg.Session.TTLMinutes) * time.Minute,
				Timeout: time.Duration(cfg.Workers[scs.TaskType].Timeout) * time.Millisecond,
			},
			redis.Client, log,
		)
		activeWorkers = append(activeWorkers, startWorker(zeebeClient, scs.TaskType, cfg.Workers[scs.TaskType], handler, zapLog))
	}

	// --- 2. Conversation Workers ---
	if cfg.Workers[eci.TaskType].Enabled {
		handler := eci.NewHandler(
			&eci.Config{
				WindowSize: cfg.Extraction.WindowSize,
				DebounceMs: cfg.Extraction.DebounceMs,
				Timeout:    time.Duration(cfg.Workers[eci.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		activeWorkers = append(activeWorkers, startWorker(zeebeClient, eci.TaskType, cfg.Workers[eci.TaskType], handler, zapLog))
	}

	// --- 3. Recommendation Workers ---
	if cfg.Workers[fr.TaskType].Enabled {
		handler := fr.NewHandler(
			&fr.Config{
				AdvisorBaseURL: cfg.APIs.Advisor.BaseURL,
				APIKey:         cfg.APIs.Advisor.APIKey,
				Timeout:        time.Duration(cfg.Workers[fr.TaskType].Timeout) * time.Millisecond,
				MaxRetries:     2,
			},
			log,
		)
		activeWorkers = append(activeWorkers, startWorker(zeebeClient, fr.TaskType, cfg.Workers[fr.TaskType], handler, zapLog))
	}

	if cfg.Workers[epd.TaskType].Enabled {
		handler := epd.NewHandler(
			&epd.Config{
				Timeout: time.Duration(cfg.Workers[epd.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		activeWorkers = append(activeWorkers, startWorker(zeebeClient, epd.TaskType, cfg.Workers[epd.TaskType], handler, zapLog))
	}

	if cfg.Workers[mr.TaskType].Enabled {
		handler := mr.NewHandler(
			&mr.Config{
				MaxWindow: cfg.Recommendations.MaxWindow,
				Timeout:   time.Duration(cfg.Workers[mr.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		activeWorkers = append(activeWorkers, startWorker(zeebeClient, mr.TaskType, cfg.Workers[mr.TaskType], handler, zapLog))
	}

	// --- 4. Calculation Worker ---
	if cfg.Workers[cr.TaskType].Enabled {
		handler := cr.NewHandler(
			&cr.Config{
				Timeout: time.Duration(cfg.Workers[cr.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		activeWorkers = append(activeWorkers, startWorker(zeebeClient, cr.TaskType, cfg.Workers[cr.TaskType], handler, zapLog))
	}

	// --- 5. Response Builder ---
	if cfg.Workers[bcr.TaskType].Enabled {
		handler, err := bcr.NewHandler(
			&bcr.Config{
				Timeout: time.Duration(cfg.Workers[bcr.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		if err != nil {
			zapLog.Fatal("failed to create build-chat-response handler", zap.Error(err))
		}
		activeWorkers = append(activeWorkers, startWorker(zeebeClient, bcr.TaskType, cfg.Workers[bcr.TaskType], handler, zapLog))
	}

	zapLog.Info("All 7 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			status := "healthy"
			code := http.StatusOK
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range activeWorkers {
		w.Stop(shutdownCtx)
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler camunda.JobHandler, log *zap.Logger) *camunda.CamundaWorker {
	w := camunda.NewWorker(
		client,
		taskType,
		wcfg.MaxJobsActive,
		time.Duration(wcfg.Timeout)*time.Millisecond,
		handler,
		log,
	)
	w.Start()
	return w
}
