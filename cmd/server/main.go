package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"realflow/internal/analytics"
	"realflow/internal/archive"
	"realflow/internal/config"
	"realflow/internal/db"
	"realflow/internal/email"
	"realflow/internal/handlers"
	"realflow/internal/handlers/api"
	"realflow/internal/intake"
	"realflow/internal/metrics"
	"realflow/internal/server"
	"realflow/internal/sheets"
	"realflow/internal/sink"
	"realflow/internal/validation"
	"realflow/internal/webhook"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	log := newLogger(cfg)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		fatal(log, "invalid configuration", err)
	}

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		fatal(log, "failed to load config file", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewRecorder(reg)

	// Sinks; each one is enabled by its own settings
	var sinks []sink.Sink
	var database *db.DB
	if cfg.IsDatabaseEnabled() {
		database, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			fatal(log, "failed to connect to database", err)
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			fatal(log, "failed to run migrations", err)
		}
		log.Info("migrations completed successfully")
		sinks = append(sinks, database)
	}

	if cfg.IsSheetsEnabled() {
		creds, err := cfg.SheetsCredentialsJSON()
		if err != nil {
			fatal(log, "failed to read sheets credentials", err)
		}
		sheetSink, err := sheets.New(ctx, creds, cfg.GoogleSheetID, sheets.Tabs{
			Calls:            cfg.SheetsCallsTab,
			HotLeads:         cfg.SheetsHotLeadsTab,
			Callbacks:        cfg.SheetsCallbacksTab,
			PropertyRequests: cfg.SheetsPropertyTab,
		})
		if err != nil {
			fatal(log, "failed to initialize sheets sink", err)
		}
		sinks = append(sinks, sheetSink)
	}

	if cfg.IsDynamoDBEnabled() {
		archiveSink, err := archive.New(ctx, archive.Config{
			Table:           cfg.DynamoDBTable,
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.DynamoDBEndpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			fatal(log, "failed to initialize dynamodb sink", err)
		}
		sinks = append(sinks, archiveSink)
	}

	if len(sinks) == 0 {
		log.Warn("no sinks configured, webhook events will be acknowledged but not stored")
	}

	dispatcher := sink.NewDispatcher(cfg.PrimarySink, sinks,
		sink.WithTimeout(cfg.SinkTimeout),
		sink.WithLogger(log),
		sink.WithMetrics(rec),
	)
	log.Info("sinks configured", "sinks", dispatcher.Names(), "primary", dispatcher.Primary())

	notifier := email.NewNotifier(cfg, yamlCfg.HotLeadRecipients(cfg.HotLeadNotifyTo), rec, log)
	if !notifier.Enabled() {
		log.Info("hot-lead email notifications are disabled")
	}

	opts := []intake.Option{
		intake.WithNotifier(notifier),
		intake.WithMetrics(rec),
		intake.WithLogger(log),
		intake.WithToolAliases(yamlCfg.ToolNames()),
	}

	// Analytics read from the relational sink only
	var svc *analytics.Service
	var pinger handlers.Pinger
	if database != nil {
		opts = append(opts, intake.WithLookup(database))
		svc = analytics.NewService(database)
		reg.MustRegister(metrics.NewCallCollector(svc))
		pinger = database
	}

	processor := intake.NewProcessor(validation.NewNormalizer(yamlCfg.FieldAliases()), dispatcher, opts...)

	srv := server.New(cfg, log)
	if err := srv.RegisterRoutes(ctx, server.Routes{
		Probe:     handlers.NewProbeHandler(pinger, dispatcher.Names(), cfg.ServiceVersion),
		Webhook:   api.NewWebhookHandler(processor, log, webhook.VapiDecoder{}),
		Analytics: api.NewAnalyticsHandler(svc, log),
		Dashboard: handlers.NewDashboardHandler(svc, cfg, log),
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}); err != nil {
		fatal(log, "failed to register routes", err)
	}

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := srv.Shutdown(); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	log.Info("server exited")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsDev() {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
