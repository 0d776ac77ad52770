package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labcare/internal/api"
	"labcare/internal/config"
	"labcare/internal/database"
	"labcare/internal/domain"
	"labcare/internal/events"
	"labcare/internal/export"
	"labcare/internal/google"
	"labcare/internal/logging"
	"labcare/internal/metrics"
	"labcare/internal/models"
	"labcare/internal/repository"
	"labcare/internal/service"
	"labcare/internal/session"
	"labcare/internal/store"
	"labcare/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	tests, err := loadCatalog(&logger)
	if err != nil {
		return err
	}
	catalog := models.NewCatalog(tests)

	loc, err := loadLocation(cfg.App.Timezone)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := openStorage(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	records := store.New(storage.kv, cfg.Storage.Namespace, logging.Component(&logger, "store"))
	ids := repository.NewIDGenerator(nil)
	bookingRepo := repository.NewBookingRepository(records, ids, nil)
	reportRepo := repository.NewReportRepository(records)
	feedbackRepo := repository.NewFeedbackRepository(records, ids, nil)
	userRepo := repository.NewUserRepository(records)

	seeded, err := reportRepo.EnsureSeeded(ctx)
	if err != nil {
		return fmt.Errorf("seed reports: %w", err)
	}
	if seeded {
		logger.Info().Msg("example reports seeded")
	}

	eventBus := events.NewEventBus(logging.Component(&logger, "events"))
	subscribeEventLog(eventBus, logging.Component(&logger, "events"))

	provider, err := session.NewAuthProvider(cfg.Session.AuthProvider)
	if err != nil {
		return err
	}
	sess := session.New(userRepo, provider, eventBus, logging.Component(&logger, "session"))
	if err := sess.Restore(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	syncWorker := startSheetsWorker(ctx, cfg, storage.redis, &logger)

	if storage.db != nil {
		backup := database.NewBackupService(storage.db, cfg.Backup, logging.Component(&logger, "backup"))
		go backup.Start(ctx)
	}

	exporter := export.NewExporter(cfg.Exports.Path, logging.Component(&logger, "export"))
	svcLogger := logging.Component(&logger, "service")
	services := api.Services{
		Session:   sess,
		Bookings:  service.NewBookingService(bookingRepo, sess, catalog, eventBus, syncWorker, svcLogger),
		Feedback:  service.NewFeedbackService(feedbackRepo, sess, eventBus, svcLogger),
		Reports:   service.NewReportService(reportRepo, exporter, svcLogger),
		Dashboard: service.NewDashboardService(bookingRepo, reportRepo, feedbackRepo, loc),
		Exporter:  exporter,
		Catalog:   catalog,
	}

	httpServer := api.NewHTTPServer(cfg.API, services, logging.Component(&logger, "http"))

	startMetrics(ctx, cfg, &logger)

	return startServers(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// loadCatalog reads the test price list. A missing file means the built-in list.
func loadCatalog(logger *zerolog.Logger) ([]models.LabTest, error) {
	testsPath := os.Getenv("TESTS_PATH")
	if testsPath == "" {
		testsPath = "configs/tests.yaml"
	}
	data, err := os.ReadFile(testsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info().Str("tests_path", testsPath).Msg("test catalog not found, using built-in prices")
			return models.DefaultCatalog(), nil
		}
		logger.Error().Err(err).Str("tests_path", testsPath).Msg("read tests")
		return nil, err
	}

	var testsConfig struct {
		Tests []models.LabTest `yaml:"tests"`
	}
	if err := yaml.Unmarshal(data, &testsConfig); err != nil {
		logger.Error().Err(err).Str("tests_path", testsPath).Msg("parse tests")
		return nil, err
	}
	if len(testsConfig.Tests) == 0 {
		logger.Warn().Str("tests_path", testsPath).Msg("test catalog is empty, using built-in prices")
		return models.DefaultCatalog(), nil
	}
	if err := config.ValidateTests(testsConfig.Tests); err != nil {
		return nil, fmt.Errorf("invalid test catalog: %w", err)
	}
	return testsConfig.Tests, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

type storageBackend struct {
	kv    domain.KeyValueStore
	db    *database.DB
	redis *redis.Client
}

func (s *storageBackend) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.redis != nil {
		_ = repository.Close(s.redis)
	}
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*storageBackend, error) {
	storeLogger := logging.Component(logger, "storage")

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := database.NewDB(cfg.Storage.Path, storeLogger)
		if err != nil {
			logger.Error().Err(err).Str("db_path", cfg.Storage.Path).Msg("init database")
			return nil, err
		}
		logger.Info().Str("db_path", cfg.Storage.Path).Msg("sqlite storage ready")
		return &storageBackend{kv: db, db: db}, nil

	case config.BackendRedis:
		client := repository.NewRedisClient(cfg.Redis)
		if err := repository.Ping(ctx, client); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis storage: %w", err)
		}
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis storage ready")
		return &storageBackend{kv: repository.NewRedisStore(client), redis: client}, nil

	case config.BackendFailover:
		client := repository.NewRedisClient(cfg.Redis)
		if err := repository.Ping(ctx, client); err != nil {
			logger.Warn().Err(err).Msg("redis unavailable at startup, starting in degraded mode")
		}
		kv := repository.NewFailoverStore(repository.NewRedisStore(client), repository.NewMemoryStore(), storeLogger)
		return &storageBackend{kv: kv, redis: client}, nil

	case config.BackendMemory:
		logger.Warn().Msg("memory storage: data is lost on restart")
		return &storageBackend{kv: repository.NewMemoryStore()}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// startSheetsWorker returns nil when spreadsheet sync is not configured.
func startSheetsWorker(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.SyncWorker {
	if !cfg.Google.SheetsEnabled() {
		return nil
	}

	sheetsService, err := google.NewSheetsService(ctx, cfg.Google.GoogleCredentialsFile, cfg.Google.BookingSpreadSheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}
	if err := sheetsService.TestConnection(ctx); err != nil {
		email, _ := google.ServiceAccountEmail(cfg.Google.GoogleCredentialsFile)
		logger.Warn().Err(err).Str("service_account", email).Msg("google sheets not reachable, share the spreadsheet with the service account")
	} else if err := sheetsService.WriteHeader(ctx); err != nil {
		logger.Warn().Err(err).Msg("write sheet header")
	}

	retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
	sheetsWorker := worker.NewSheetsWorker(sheetsService, redisClient, retryPolicy, logging.Component(logger, "sheets-worker"))
	go sheetsWorker.Start(ctx)

	logger.Info().Msg("google sheets sync enabled")
	return sheetsWorker
}

func subscribeEventLog(bus *events.EventBus, logger *zerolog.Logger) {
	for _, eventType := range []string{
		events.EventBookingCreated,
		events.EventFeedbackSubmitted,
		events.EventUserRegistered,
		events.EventUserLoggedIn,
		events.EventUserLoggedOut,
	} {
		bus.Subscribe(eventType, func(event *events.Event) error {
			logger.Debug().Str("event", event.Type).RawJSON("payload", event.Payload).Msg("domain event")
			return nil
		})
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServers(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Str("storage", cfg.Storage.Backend).Msg("API server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
