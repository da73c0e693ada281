package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"staypricing/internal/app/middleware"
	"staypricing/internal/app/outbox"
	"staypricing/internal/app/service"
	"staypricing/internal/app/uow"
	"staypricing/internal/domain/membership"
	"staypricing/internal/infra/broker/kafka"
	"staypricing/internal/infra/config"
	"staypricing/internal/infra/currency"
	mongostore "staypricing/internal/infra/db/mongo"
	ginserver "staypricing/internal/infra/http/gin"
	"staypricing/internal/infra/inbox"
	"staypricing/internal/infra/obs"
	outboxrelay "staypricing/internal/infra/outbox"
	"staypricing/internal/infra/storage/memory"
	"staypricing/internal/infra/tripstats"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	path := cfg.ListingsFixtures
	if path == "" && cfg.StorageMode == config.StorageMemory {
		path = filepath.Join("data", "listings.json")
	}
	if path != "" {
		if err := loadListingFixtures(ctx, app.uow, path, logger); err != nil {
			logger.Warn("listing fixtures load failed", "error", err, "path", path)
		}
	}

	for _, job := range app.background {
		go job(ctx)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready:   app.ready,
		Timeout: 2 * time.Second,
	}, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers   ginserver.Handlers
	uow        uow.UoWFactory
	checks     []func(ctx context.Context) error
	closers    []func(ctx context.Context) error
	background []func(ctx context.Context)
}

func (a *application) ready(ctx context.Context) error {
	for _, check := range a.checks {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("shutdown step failed", "error", err)
		}
	}
}

// storage is what one storage mode contributes to the application.
type storage struct {
	uow         uow.UoWFactory
	outbox      outbox.Outbox
	idempotency middleware.IdempotencyStore
	history     membership.TripHistory
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{}

	var (
		st  storage
		err error
	)
	switch cfg.StorageMode {
	case config.StorageMongo:
		st, err = app.wireMongo(ctx, cfg, logger)
	default:
		st = wireMemory()
	}
	if err != nil {
		return nil, err
	}
	app.uow = st.uow

	history := tripstats.Sum{st.history}
	if cfg.TripHistoryDSN != "" {
		legacy, err := tripstats.NewPostgresHistory(ctx, cfg.TripHistoryDSN)
		if err != nil {
			return nil, fmt.Errorf("trip history: %w", err)
		}
		history = append(history, legacy)
		app.checks = append(app.checks, legacy.Ping)
		app.closers = append(app.closers, func(context.Context) error { return legacy.Close() })
		logger.Info("legacy trip history attached")
	}

	converter, err := currency.NewConverter(cfg.CurrencyRates)
	if err != nil {
		return nil, fmt.Errorf("currency: %w", err)
	}

	buses := service.Build(service.Deps{
		Logger:         logger,
		UoW:            st.uow,
		Outbox:         st.outbox,
		Idempotency:    st.idempotency,
		IdempotencyTTL: cfg.IdempotencyTTL,
		Currency:       converter,
		Membership:     membership.Resolver{Table: membership.DefaultTable, History: history},
		QuoteTTL:       cfg.QuoteTTL,
		Now:            time.Now,
		NewID:          uuid.NewString,
	})

	app.handlers = ginserver.Handlers{
		Quote:       ginserver.QuoteHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Booking:     ginserver.BookingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Draft:       ginserver.DraftHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		HostListing: ginserver.HostListingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
	}
	return app, nil
}

func wireMemory() storage {
	bookings := memory.NewBookingRepository()
	factory := memory.NewFactory()
	factory.BookingsRepo = bookings
	return storage{
		uow:         factory,
		outbox:      memory.NewOutbox(),
		idempotency: memory.NewIdempotencyStore(),
		history:     bookings,
	}
}

// wireMongo connects the document store. With brokers configured the outbox
// relay runs and trip counts come from the projection the consumer maintains;
// otherwise they are counted from bookings directly.
func (a *application) wireMongo(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage, error) {
	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return storage{}, fmt.Errorf("mongo connect: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	a.checks = append(a.checks, client.Ping)

	if err := client.EnsureIndexes(ctx); err != nil {
		return storage{}, fmt.Errorf("mongo indexes: %w", err)
	}
	idem, err := mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
	if err != nil {
		return storage{}, fmt.Errorf("idempotency store: %w", err)
	}
	box, err := outboxrelay.NewStore(ctx, client.DB)
	if err != nil {
		return storage{}, fmt.Errorf("outbox store: %w", err)
	}

	st := storage{
		uow:         mongostore.NewFactory(client.DB),
		outbox:      box,
		idempotency: idem,
		history:     mongostore.NewBookingRepository(client.DB),
	}
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("kafka brokers not configured, outbox relay disabled")
		return st, nil
	}

	if cfg.OutboxWorker {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, kafka.NewConfig())
		if err != nil {
			return storage{}, fmt.Errorf("kafka producer: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return producer.Close() })
		host, _ := os.Hostname()
		worker := &outboxrelay.Worker{
			Store:       box,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			ID:          fmt.Sprintf("%s-%d", host, os.Getpid()),
			Backoff:     cfg.RetryBackoff,
			Logger:      logger.With("component", "outbox"),
		}
		a.background = append(a.background, func(ctx context.Context) {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		})
	}

	seen, err := inbox.NewStore(ctx, client.DB, "tripstats")
	if err != nil {
		return storage{}, fmt.Errorf("inbox store: %w", err)
	}
	stats := mongostore.NewTripStats(client.DB)
	projector := &tripstats.Projector{Inbox: seen, Stats: stats, Logger: logger.With("component", "tripstats")}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "staypricing-tripstats", kafka.NewConfig(), projector, logger)
	if err != nil {
		return storage{}, fmt.Errorf("kafka consumer: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return consumer.Close() })
	topic := outboxrelay.TopicFor(cfg.KafkaTopicPrefix, "booking.completed")
	a.background = append(a.background, func(ctx context.Context) {
		if err := consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("trip stats consumer stopped", "error", err)
		}
	})
	st.history = stats
	return st, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
