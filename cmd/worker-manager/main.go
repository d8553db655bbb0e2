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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"agreement-workers/internal/common/auth"
	"agreement-workers/internal/common/aws"
	"agreement-workers/internal/common/camunda"
	"agreement-workers/internal/common/config"
	"agreement-workers/internal/common/database"
	"agreement-workers/internal/common/logger"
	"agreement-workers/internal/common/marketplace"
	"agreement-workers/internal/common/observability"
	"agreement-workers/pkg/registry"

	// Agreement Workers (5)
	pad "agreement-workers/internal/workers/agreement/prepare-agreement-document"
	raa "agreement-workers/internal/workers/agreement/record-agreement-audit"
	rss "agreement-workers/internal/workers/agreement/resolve-signing-state"
	sa "agreement-workers/internal/workers/agreement/sign-agreement"
	saf "agreement-workers/internal/workers/agreement/submit-agency-fees"

	// Contract Workers (1)
	ibc "agreement-workers/internal/workers/contract/index-booked-contract"

	// Notification Workers (1)
	ssn "agreement-workers/internal/workers/notification/send-signing-notification"
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

type registrable interface {
	Register() error
	Close()
	GetTaskType() string
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Activity registry ---
	activities := registry.Default()
	if cfg.Registry.Path != "" {
		activities, err = registry.LoadRegistry(cfg.Registry.Path)
		if err != nil {
			zapLog.Fatal("registry load failed", zap.Error(err))
		}
	}
	if err := activities.Validate(); err != nil {
		zapLog.Fatal("registry validation failed", zap.Error(err))
	}
	zapLog.Info("Activity registry loaded", zap.Int("activities", len(activities.Activities)))

	// --- Init Zeebe client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init external service clients ---
	keycloak := auth.NewKeycloakClient(
		cfg.Auth.Keycloak.URL,
		cfg.Auth.Keycloak.Realm,
		cfg.Auth.Keycloak.ClientID,
		cfg.Auth.Keycloak.ClientSecret,
	)

	marketplaceClient := marketplace.NewClient(
		cfg.Marketplace.BaseURL,
		time.Duration(cfg.Marketplace.Timeout)*time.Millisecond,
		time.Duration(cfg.Marketplace.UploadTimeout)*time.Millisecond,
		cfg.Marketplace.MaxUploadBytes,
		keycloak,
	)

	sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("SES client init failed", zap.Error(err))
	}
	snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("SNS client init failed", zap.Error(err))
	}

	zapLog.Info("All external service clients initialized")

	// --- Build workers ---
	var workers []registrable

	resolveHandler, err := rss.NewHandler(rss.HandlerOptions{
		AppConfig: cfg,
		Camunda:   zeebe,
		Logger:    log,
		Dependencies: rss.ServiceDependencies{
			Marketplace: marketplaceClient,
			Cache:       redis.GetClient(),
		},
	})
	if err != nil {
		zapLog.Fatal("resolve-signing-state handler init failed", zap.Error(err))
	}
	workers = append(workers, resolveHandler)

	feesHandler, err := saf.NewHandler(saf.HandlerOptions{
		AppConfig: cfg,
		Camunda:   zeebe,
		Logger:    log,
		Dependencies: saf.ServiceDependencies{
			Marketplace: marketplaceClient,
			Cache:       redis.GetClient(),
		},
	})
	if err != nil {
		zapLog.Fatal("submit-agency-fees handler init failed", zap.Error(err))
	}
	workers = append(workers, feesHandler)

	signHandler, err := sa.NewHandler(sa.HandlerOptions{
		AppConfig: cfg,
		Camunda:   zeebe,
		Logger:    log,
		Dependencies: sa.ServiceDependencies{
			Marketplace: marketplaceClient,
			Cache:       redis.GetClient(),
		},
	})
	if err != nil {
		zapLog.Fatal("sign-agreement handler init failed", zap.Error(err))
	}
	workers = append(workers, signHandler)

	documentHandler, err := pad.NewHandler(pad.HandlerOptions{
		AppConfig: cfg,
		Camunda:   zeebe,
		Logger:    log,
		Dependencies: pad.ServiceDependencies{
			Marketplace: marketplaceClient,
		},
	})
	if err != nil {
		zapLog.Fatal("prepare-agreement-document handler init failed", zap.Error(err))
	}
	workers = append(workers, documentHandler)

	auditHandler, err := raa.NewHandler(raa.HandlerOptions{
		AppConfig: cfg,
		Camunda:   zeebe,
		Logger:    log,
		Dependencies: raa.ServiceDependencies{
			DB:        pg.GetDB(),
			ActionLog: marketplaceClient,
		},
	})
	if err != nil {
		zapLog.Fatal("record-agreement-audit handler init failed", zap.Error(err))
	}
	workers = append(workers, auditHandler)

	indexHandler, err := ibc.NewHandler(ibc.HandlerOptions{
		AppConfig: cfg,
		Camunda:   zeebe,
		Logger:    log,
		Dependencies: ibc.ServiceDependencies{
			Marketplace:   marketplaceClient,
			Elasticsearch: esClient.Client,
		},
	})
	if err != nil {
		zapLog.Fatal("index-booked-contract handler init failed", zap.Error(err))
	}
	workers = append(workers, indexHandler)

	notifyHandler, err := ssn.NewHandler(ssn.HandlerOptions{
		AppConfig: cfg,
		Camunda:   zeebe,
		Logger:    log,
		Dependencies: ssn.ServiceDependencies{
			SES: sesClient,
			SNS: snsClient,
		},
	})
	if err != nil {
		zapLog.Fatal("send-signing-notification handler init failed", zap.Error(err))
	}
	workers = append(workers, notifyHandler)

	// --- Register workers ---
	for _, w := range workers {
		if err := w.Register(); err != nil {
			zapLog.Fatal("worker registration failed",
				zap.String("taskType", w.GetTaskType()),
				zap.Error(err),
			)
		}
	}
	zapLog.Info("All workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			readyCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := pg.Ping(readyCtx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "not ready", "reason": "postgres"})
				return
			}
			if err := redis.Ping(readyCtx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "not ready", "reason": "redis"})
				return
			}
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

	for _, w := range workers {
		w.Close()
	}

	zapLog.Info("Worker manager stopped gracefully")
}
