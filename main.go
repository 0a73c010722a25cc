package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spotlyvf/internal/api"
	"spotlyvf/internal/app"
	"spotlyvf/internal/config"
	"spotlyvf/internal/httpx"
	"spotlyvf/internal/notify"
	"spotlyvf/internal/predictor"
	"spotlyvf/internal/recommend"
	"spotlyvf/internal/scheduler"
	"spotlyvf/internal/sentiment"
	"spotlyvf/internal/storage/sqlite"
)

func main() {
	cfg := config.LoadConfig()

	httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	var classifier sentiment.Classifier
	if cfg.SentimentEndpoint != "" {
		classifier = sentiment.NewHTTPClassifier(cfg.SentimentEndpoint)
		log.Printf("Sentiment classifier: remote endpoint %s", cfg.SentimentEndpoint)
	} else {
		classifier = sentiment.KeywordClassifier{}
		log.Println("Sentiment classifier: built-in keyword fallback")
	}
	aggregator := sentiment.NewAggregator(classifier, cfg.SentimentWorkers)

	backend := recommend.NewBackend(cfg.LLMProvider, cfg.LLMModel, cfg.AnthropicAPIKey, cfg.OpenAIAPIKey)
	engine := recommend.NewEngine(backend)

	var notifier notify.Notifier
	if cfg.AlertsConfigured() {
		notifier = notify.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackAlertChannel)
		log.Printf("At-risk alerts enabled channel=%s", cfg.SlackAlertChannel)
	}

	service := app.NewService(db, predictor.New(aggregator, engine), notifier,
		time.Duration(cfg.StalenessHours)*time.Hour)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.StartRefreshScheduler(ctx, cfg.RefreshSchedule, service)

	srv := api.NewServer(cfg.ListenAddr, cfg.CORSOrigins, service)
	go func() {
		log.Printf("Starting analytics server on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil {
			log.Printf("HTTP server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
