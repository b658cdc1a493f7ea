package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/christiano-developer/gaur/internal/classifier"
	"github.com/christiano-developer/gaur/internal/handlers"
	"github.com/christiano-developer/gaur/internal/lexical"
	"github.com/christiano-developer/gaur/internal/pipeline"
	"github.com/christiano-developer/gaur/internal/store"
	"github.com/christiano-developer/gaur/internal/triage"
	"github.com/christiano-developer/gaur/pkg/clients"
	"github.com/christiano-developer/gaur/pkg/config"
	"github.com/christiano-developer/gaur/pkg/database"
	"github.com/christiano-developer/gaur/pkg/kafka"
	"github.com/christiano-developer/gaur/pkg/logging"
	"github.com/christiano-developer/gaur/pkg/monitoring"
	"github.com/christiano-developer/gaur/pkg/server"
	"github.com/christiano-developer/gaur/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("gaur")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting GAUR (Fraud Triage Pipeline)")

	config.RequireEnv("DATABASE_URL")

	// Connect to database
	dbConfig := database.DefaultConfig()
	dbConfig.URL = config.GetEnv("DATABASE_URL", "")
	db := database.MustConnect(dbConfig, logger)
	defer db.Close()

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("gaur", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("gaur", version.Version, version.GitCommit)

	healthChecker.AddCheck("database", monitoring.DatabaseHealthCheck(db))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DATABASE_URL": config.GetEnv("DATABASE_URL", ""),
	}))

	// Persistence sink
	sink := store.NewPostgresStore(db, logger)

	// Classifier chain: AI backends first, lexical scorer as the terminal
	// fallback that never fails.
	var chainClassifiers []classifier.Classifier

	if apiKey := config.GetEnv("OPENAI_API_KEY", ""); apiKey != "" {
		openaiConfig := classifier.OpenAIConfig{
			APIKey:  apiKey,
			APIURL:  config.GetEnv("OPENAI_API_URL", ""),
			Model:   config.GetEnv("OPENAI_MODEL", "gpt-4o"),
			Timeout: config.GetEnvDuration("OPENAI_TIMEOUT", 0),
		}

		breaker := clients.NewCircuitBreaker(clients.CircuitBreakerConfig{
			Name:   "openai",
			Logger: logger,
		})
		chainClassifiers = append(chainClassifiers, classifier.NewHTMLClassifier(openaiConfig, breaker, logger))

		// Remote vision is faster than the local backend, so it goes ahead
		// of Ollama in the chain.
		if config.GetEnvBool("OPENAI_VISION_ENABLED", true) {
			visionBreaker := clients.NewCircuitBreaker(clients.CircuitBreakerConfig{
				Name:   "openai-vision",
				Logger: logger,
			})
			chainClassifiers = append(chainClassifiers, classifier.NewRemoteVisionClassifier(openaiConfig, visionBreaker, logger))
		}
	} else {
		logger.Warn("OPENAI_API_KEY not set, text/HTML and remote vision analysis disabled")
	}

	if ollamaURL := config.GetEnv("OLLAMA_URL", ""); ollamaURL != "" {
		breaker := clients.NewCircuitBreaker(clients.CircuitBreakerConfig{
			Name:   "ollama",
			Logger: logger,
		})
		chainClassifiers = append(chainClassifiers, classifier.NewVisionClassifier(classifier.OllamaConfig{
			BaseURL: ollamaURL,
			Model:   config.GetEnv("OLLAMA_VISION_MODEL", "llama3.2-vision"),
			Timeout: config.GetEnvDuration("OLLAMA_TIMEOUT", 0),
		}, breaker, logger))
	}

	scorer := lexical.NewScorer(logger)
	chainClassifiers = append(chainClassifiers, classifier.NewLexicalClassifier(scorer))
	chain := classifier.NewChain(logger, chainClassifiers...)

	// Triage gate
	gate := triage.NewGate(triage.Config{
		RetentionThreshold:   config.GetEnvFloat("RETENTION_THRESHOLD", triage.DefaultRetentionThreshold),
		FailedAnalysisAction: triage.FailedAnalysisAction(config.GetEnv("FAILED_ANALYSIS_ACTION", "discard")),
	})

	// Kafka source and alert publisher
	brokers := strings.Split(config.GetEnv("KAFKA_BROKERS", "localhost:9092"), ",")

	reader, err := kafka.NewReader(brokers, "gaur-pipeline", "gaur",
		config.GetEnv("RAW_POSTS_TOPIC", "raw_posts"), logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Kafka reader")
	}
	defer reader.Close()
	healthChecker.AddCheck("kafka", monitoring.KafkaHealthCheck(reader.GetClient()))

	var publisher pipeline.AlertPublisher
	alertTopic := config.GetEnv("ALERT_EVENTS_TOPIC", "fraud_alerts")
	producer, err := kafka.NewProducer(brokers, "gaur-producer", logger)
	if err != nil {
		logger.WithError(err).Warn("Failed to create Kafka producer, alert events disabled")
		alertTopic = ""
	} else {
		defer producer.Close()
		publisher = producer
	}

	// Pipeline orchestrator
	pipelineMetrics := pipeline.NewMetrics(metricsCollector)
	source := pipeline.NewKafkaSource(reader, logger)
	orchestrator := pipeline.NewOrchestrator(source, chain, gate, sink, publisher, pipelineMetrics, logger, pipeline.Config{
		BatchSize:       config.GetEnvInt("BATCH_SIZE", 10),
		MaxBatches:      config.GetEnvInt("MAX_BATCHES", 0),
		RetentionPolicy: pipeline.RetentionPolicy(config.GetEnv("RETENTION_POLICY", "discard")),
		AlertTopic:      alertTopic,
	})

	// Initialize handlers
	handlers.Init(sink, logger)

	// Setup router with unified monitoring
	router := server.SetupServiceRouter(logger, "gaur", healthChecker, metricsCollector)
	handlers.RegisterRoutes(router)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := orchestrator.Run(gctx)
		logger.WithFields(logging.Fields{
			"batches":   summary.BatchesProcessed,
			"seen":      summary.PostsSeen,
			"accepted":  summary.PostsAccepted,
			"reviewed":  summary.PostsReviewed,
			"discarded": summary.PostsDiscarded,
			"alerts":    summary.AlertsCreated,
		}).Info("Pipeline finished")
		return err
	})

	g.Go(func() error {
		// Stop the pipeline between batches on shutdown signals.
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			logger.Info("Shutdown requested, stopping after in-flight batch")
			orchestrator.RequestStop()
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	// Start server with graceful shutdown
	serverConfig := server.DefaultConfig("gaur", "18080")
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}

	cancel()
	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.WithError(err).Error("Pipeline exited with error")
	}
}
