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

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	commonaws "leadgen-workers/internal/common/aws"
	"leadgen-workers/internal/common/config"
	"leadgen-workers/internal/common/crm"
	"leadgen-workers/internal/common/database"
	"leadgen-workers/internal/common/logger"
	"leadgen-workers/internal/common/observability"
	"leadgen-workers/internal/icp"
	"leadgen-workers/pkg/registry"

	// Discovery
	sb "leadgen-workers/internal/workers/discovery/search-businesses"

	// Enrichment
	aw "leadgen-workers/internal/workers/enrichment/analyze-website"
	ecd "leadgen-workers/internal/workers/enrichment/enrich-contact-data"

	// Scoring
	cis "leadgen-workers/internal/workers/scoring/calculate-icp-score"
	scl "leadgen-workers/internal/workers/scoring/score-campaign-leads"

	// Reporting
	gar "leadgen-workers/internal/workers/reporting/generate-audit-report"

	// Outreach
	st "leadgen-workers/internal/workers/outreach/select-template"
	soe "leadgen-workers/internal/workers/outreach/send-outreach-email"

	// Campaign & CRM
	ncs "leadgen-workers/internal/workers/campaign/notify-campaign-status"
	sl "leadgen-workers/internal/workers/crm/sync-lead"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, cfg.Metrics.JaegerEndpoint)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
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
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init external service clients ---
	crmClient := crm.NewClient(
		cfg.Integrations.CRM.BaseURL,
		cfg.Integrations.CRM.APIKey,
		cfg.Integrations.CRM.AuthToken,
	)

	var sesClient *commonaws.SESClient
	var snsClient *commonaws.SNSClient
	if cfg.Integrations.AWS.SES.Enabled || cfg.Integrations.AWS.SNS.Enabled {
		region := cfg.Integrations.AWS.Region
		if cfg.Integrations.AWS.SES.Enabled {
			sesClient, err = commonaws.NewSESClient(ctx, region)
			if err != nil {
				zapLog.Fatal("failed to create SES client", zap.Error(err))
			}
		}
		if cfg.Integrations.AWS.SNS.Enabled {
			snsClient, err = commonaws.NewSNSClient(ctx, region)
			if err != nil {
				zapLog.Fatal("failed to create SNS client", zap.Error(err))
			}
		}
	}
	zapLog.Info("All external service clients initialized")

	// --- Validate activity registry ---
	if reg, err := registry.LoadRegistry(cfg.Registry.Path); err != nil {
		zapLog.Warn("activity registry not loaded", zap.Error(err))
	} else if err := reg.Validate(); err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	} else {
		zapLog.Info("activity registry validated", zap.Int("activities", len(reg.Activities)))
	}

	configStore := icp.NewConfigStore(
		pg.DB, rdb.Client,
		time.Duration(cfg.Scoring.ConfigCacheTTL)*time.Second,
		log,
	)

	// --- Register workers ---

	// Discovery
	if wcfg := cfg.Workers[sb.TaskType]; wcfg.Enabled {
		handlerCfg := sb.DefaultConfig()
		handlerCfg.BaseURL = cfg.APIs.Places.BaseURL
		handlerCfg.APIKey = cfg.APIs.Places.APIKey
		handlerCfg.Timeout = time.Duration(cfg.APIs.Places.Timeout) * time.Millisecond
		handler := sb.NewHandler(handlerCfg, pg.DB, rdb.Client, esClient, log)
		startWorker(zeebeClient, sb.TaskType, wcfg, handler.Handle, zapLog)
	}

	// Enrichment
	if wcfg := cfg.Workers[ecd.TaskType]; wcfg.Enabled {
		handlerCfg := ecd.DefaultConfig()
		handlerCfg.BaseURL = cfg.APIs.Enrichment.BaseURL
		handlerCfg.APIKey = cfg.APIs.Enrichment.APIKey
		handlerCfg.Timeout = time.Duration(cfg.APIs.Enrichment.Timeout) * time.Millisecond
		handler := ecd.NewHandler(handlerCfg, pg.DB, rdb.Client, log)
		startWorker(zeebeClient, ecd.TaskType, wcfg, handler.Handle, zapLog)
	}

	if wcfg := cfg.Workers[aw.TaskType]; wcfg.Enabled {
		handler := aw.NewHandler(aw.DefaultConfig(), pg.DB, log)
		startWorker(zeebeClient, aw.TaskType, wcfg, handler.Handle, zapLog)
	}

	// Scoring
	if wcfg := cfg.Workers[cis.TaskType]; wcfg.Enabled {
		handlerCfg := cis.DefaultConfig()
		handlerCfg.ConfigCacheTTL = time.Duration(cfg.Scoring.ConfigCacheTTL) * time.Second
		handler := cis.NewHandler(handlerCfg, pg.DB, configStore, log)
		startWorker(zeebeClient, cis.TaskType, wcfg, handler.Handle, zapLog)
	}

	if wcfg := cfg.Workers[scl.TaskType]; wcfg.Enabled {
		handler := scl.NewHandler(scl.DefaultConfig(), pg.DB, configStore, log)
		startWorker(zeebeClient, scl.TaskType, wcfg, handler.Handle, zapLog)
	}

	// Reporting
	if wcfg := cfg.Workers[gar.TaskType]; wcfg.Enabled {
		handler := gar.NewHandler(gar.DefaultConfig(), pg.DB, log)
		startWorker(zeebeClient, gar.TaskType, wcfg, handler.Handle, zapLog)
	}

	// Outreach
	if wcfg := cfg.Workers[st.TaskType]; wcfg.Enabled {
		handlerCfg := st.DefaultConfig()
		handlerCfg.DefaultTemplateID = cfg.Outreach.DefaultTemplateID
		handler := st.NewHandler(handlerCfg, pg.DB, log)
		startWorker(zeebeClient, st.TaskType, wcfg, handler.Handle, zapLog)
	}

	if wcfg := cfg.Workers[soe.TaskType]; wcfg.Enabled {
		handlerCfg := soe.DefaultConfig()
		handlerCfg.SenderName = cfg.Outreach.SenderName
		handlerCfg.DedupTTL = time.Duration(cfg.Outreach.DedupTTL) * time.Second
		handlerCfg.UseSES = cfg.Integrations.AWS.SES.Enabled
		handlerCfg.FromAddress = cfg.Integrations.AWS.SES.FromEmail
		if !handlerCfg.UseSES {
			handlerCfg.FromAddress = cfg.Integrations.SMTP.DefaultFrom
			handlerCfg.SMTPHost = cfg.Integrations.SMTP.Host
			handlerCfg.SMTPPort = cfg.Integrations.SMTP.Port
			handlerCfg.SMTPUsername = cfg.Integrations.SMTP.Username
			handlerCfg.SMTPPassword = cfg.Integrations.SMTP.Password
			handlerCfg.UseTLS = cfg.Integrations.SMTP.UseTLS
		}
		if err := handlerCfg.Validate(); err != nil {
			zapLog.Fatal("send-outreach-email config invalid", zap.Error(err))
		}
		sender := soe.NewSender(handlerCfg, sesClient)
		service := soe.NewService(handlerCfg, sender, rdb.Client, pg.DB, log)
		handler := soe.NewHandler(handlerCfg, service, log)
		startWorker(zeebeClient, soe.TaskType, wcfg, handler.Handle, zapLog)
	}

	// Campaign notifications
	if wcfg := cfg.Workers[ncs.TaskType]; wcfg.Enabled {
		if sesClient == nil {
			zapLog.Warn("notify-campaign-status enabled but SES is not; skipping worker")
		} else {
			handlerCfg := ncs.DefaultConfig()
			handlerCfg.FromAddress = cfg.Integrations.AWS.SES.FromEmail
			handlerCfg.SMSEnabled = cfg.Integrations.AWS.SNS.Enabled
			var sms ncs.SMSNotifier
			if snsClient != nil {
				sms = ncs.NewSNSNotifier(snsClient)
			}
			handler := ncs.NewHandler(handlerCfg, ncs.NewSESNotifier(sesClient), sms, log)
			startWorker(zeebeClient, ncs.TaskType, wcfg, handler.Handle, zapLog)
		}
	}

	// CRM
	if wcfg := cfg.Workers[sl.TaskType]; wcfg.Enabled {
		handlerCfg := sl.DefaultConfig()
		handlerCfg.SyncThreshold = cfg.Scoring.SyncThreshold
		handler := sl.NewHandler(handlerCfg, crmClient, pg.DB, log)
		startWorker(zeebeClient, sl.TaskType, wcfg, handler.Handle, zapLog)
	}

	zapLog.Info("All workers registered successfully")

	// --- Health & metrics server ---
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
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
