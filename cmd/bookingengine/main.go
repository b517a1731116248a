package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"bookingengine/internal/app/commands"
	"bookingengine/internal/app/enrich"
	availabilityapp "bookingengine/internal/app/handlers/availability"
	bookingsapp "bookingengine/internal/app/handlers/bookings"
	listingsapp "bookingengine/internal/app/handlers/listings"
	metricsapp "bookingengine/internal/app/handlers/metrics"
	"bookingengine/internal/app/middleware"
	"bookingengine/internal/app/outbox"
	"bookingengine/internal/app/ports"
	"bookingengine/internal/app/queries"
	"bookingengine/internal/infra/broker/kafka"
	"bookingengine/internal/infra/cache"
	"bookingengine/internal/infra/config"
	mongostore "bookingengine/internal/infra/db/mongo"
	ginserver "bookingengine/internal/infra/http/gin"
	"bookingengine/internal/infra/obs"
	outboxstore "bookingengine/internal/infra/outbox"
	"bookingengine/internal/infra/remote"
	"bookingengine/internal/infra/storage/memory"
	"bookingengine/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("prod", "info").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("bookingengine stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("bookingengine stopped")
}

// sources are the collaborators the handlers read from, whatever backs them.
type sources struct {
	bookings    ports.BookingSource
	writer      ports.BookingWriter
	hostCatalog ports.HostCatalog
	catalog     ports.Catalog
	lookup      ports.AccommodationLookup
	ratings     ports.RatingSource
	reports     ports.ReportSource
	images      ports.ImageLookup
	idempotency middleware.IdempotencyStore
	events      outbox.Outbox
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	time.Local = loc

	checks := map[string]obs.Check{}
	var closers []func(context.Context) error
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](shutdownCtx); err != nil {
				logger.Warn("close failed", "error", err)
			}
		}
	}()

	var db *mongostore.Client
	if cfg.MongoURI != "" {
		client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		db = client
		checks["mongo"] = client.Ping
		closers = append(closers, client.Close)
	}

	src, err := buildSources(ctx, cfg, db, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	var invalidator kafka.Invalidator
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			c := cache.New(client, cfg.CacheTTL, logger)
			src.lookup = c.Summaries(src.lookup)
			src.ratings = c.Ratings(src.ratings)
			invalidator = c
			checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
			closers = append(closers, func(context.Context) error { return client.Close() })
		}
	} else {
		logger.Info("redis not configured, caching disabled")
	}

	if cfg.S3Endpoint != "" {
		images, err := s3.NewImages(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			return err
		}
		src.images = images
		checks["s3"] = images.Check
	} else {
		logger.Info("s3 not configured, listing images only")
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		producer.Topic = cfg.Topic
		closers = append(closers, func(context.Context) error { return producer.Close() })

		if db != nil {
			store := outboxstore.NewStore(ctx, db.DB)
			src.events = store
			worker := &outboxstore.Worker{Queue: store, Producer: producer, Topic: cfg.Topic, Backoff: []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, Logger: logger}
			g.Go(func() error { return ignoreCancel(worker.Run(gctx)) })
		} else {
			src.events = producer
		}

		if invalidator != nil {
			handler := &kafka.InvalidationHandler{Cache: invalidator, Logger: logger}
			if db != nil {
				handler.Inbox = mongostore.NewInbox(ctx, db.DB, cfg.KafkaGroupID)
			}
			consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, nil, handler)
			if err != nil {
				return fmt.Errorf("kafka consumer: %w", err)
			}
			consumer.Logger = logger
			closers = append(closers, func(context.Context) error { return consumer.Close() })
			g.Go(func() error { return ignoreCancel(consumer.Run(gctx, kafka.Topics(cfg.Topic))) })
		}
	} else {
		logger.Info("kafka not configured, events disabled")
	}

	handlers, keys := buildHandlers(cfg, src, logger)
	health := obs.HealthHandlers{Checks: checks, Queries: keys}
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, health, handlers)

	g.Go(func() error {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "source", cfg.BookingSource)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildSources(ctx context.Context, cfg config.Config, db *mongostore.Client, logger *slog.Logger) (sources, error) {
	var src sources
	switch cfg.BookingSource {
	case config.SourceRemote:
		client := remote.New(cfg.RemoteAPIURL, cfg.RemoteTimeout, cfg.RemoteRatePerSec, cfg.RemoteBurst, logger)
		src = sources{bookings: client, writer: client, hostCatalog: client, catalog: client, lookup: client, ratings: client, reports: client}
	case config.SourceMongo:
		bookings := mongostore.NewBookingStore(ctx, db.DB)
		accs := mongostore.NewAccommodationStore(ctx, db.DB)
		src = sources{bookings: bookings, writer: bookings, hostCatalog: accs, catalog: accs, lookup: accs, ratings: accs}
	case config.SourceMemory:
		bookings := memory.NewBookingRepository()
		accs := memory.NewAccommodationRepository()
		if cfg.SeedFile != "" {
			if err := memory.LoadSeedFile(ctx, cfg.SeedFile, accs, bookings); err != nil {
				return sources{}, fmt.Errorf("load seed: %w", err)
			}
			logger.Info("seed loaded", "path", cfg.SeedFile)
		}
		src = sources{bookings: bookings, writer: bookings, hostCatalog: accs, catalog: accs, lookup: accs, ratings: accs}
	default:
		return sources{}, fmt.Errorf("unknown booking source %q", cfg.BookingSource)
	}
	if db != nil {
		src.idempotency = mongostore.NewIdempotencyStore(ctx, db.DB)
	} else {
		src.idempotency = memory.NewIdempotencyStore()
	}
	return src, nil
}

func buildHandlers(cfg config.Config, src sources, logger *slog.Logger) (ginserver.Handlers, func() []string) {
	enricher := &enrich.Enricher{Accommodations: src.lookup, Images: src.images, Logger: logger, Limit: cfg.EnrichConcurrency}
	var publisher outbox.Publisher
	if src.events != nil {
		publisher = outbox.Publisher{Box: src.events}
	}

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingsapp.ListGuestBookingsKey, &bookingsapp.ListGuestBookingsHandler{
		Bookings:  src.bookings,
		Enricher:  enricher,
		Logger:    logger,
		BatchSize: cfg.FetchBatchSize,
	})
	queries.RegisterHandler(queryBus, bookingsapp.ListHostBookingsKey, &bookingsapp.ListHostBookingsHandler{
		Catalog:     src.hostCatalog,
		Bookings:    src.bookings,
		Logger:      logger,
		Concurrency: cfg.EnrichConcurrency,
	})
	queries.RegisterHandler(queryBus, availabilityapp.GetOccupancyKey, &availabilityapp.GetOccupancyHandler{
		Bookings: src.bookings,
		Logger:   logger,
	})
	queries.RegisterHandler(queryBus, metricsapp.GetAccommodationMetricsKey, &metricsapp.GetAccommodationMetricsHandler{
		Bookings:       src.bookings,
		Accommodations: src.lookup,
		Ratings:        src.ratings,
		Logger:         logger,
	})
	hostMetrics := &metricsapp.GetHostMetricsHandler{
		Catalog:     src.hostCatalog,
		Bookings:    src.bookings,
		Ratings:     src.ratings,
		Logger:      logger,
		Concurrency: cfg.EnrichConcurrency,
	}
	if src.events != nil {
		hostMetrics.Publisher = publisher
	}
	queries.RegisterHandler(queryBus, metricsapp.GetHostMetricsKey, hostMetrics)
	queries.RegisterHandler(queryBus, metricsapp.GetHostReportKey, &metricsapp.GetHostReportHandler{
		Reports: src.reports,
		Logger:  logger,
	})
	queries.RegisterHandler(queryBus, listingsapp.SearchKey, &listingsapp.SearchHandler{
		Catalog:     src.catalog,
		Bookings:    src.bookings,
		Logger:      logger,
		Concurrency: cfg.EnrichConcurrency,
	})

	commandBus := commands.NewInMemoryBus()
	requestBooking := &bookingsapp.RequestBookingHandler{
		Bookings: src.bookings,
		Writer:   src.writer,
		Enricher: enricher,
		Logger:   logger,
	}
	if src.events != nil {
		requestBooking.Events = publisher
	}
	commands.RegisterHandler(commandBus, bookingsapp.RequestBookingKey, requestBooking)

	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(),
	)
	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.CommandLogging(logger),
		middleware.CommandValidation(),
		middleware.Idempotency(src.idempotency),
	)

	return ginserver.Handlers{
		Booking:      ginserver.BookingHandler{Queries: queryBusWithMiddleware, Commands: commandBusWithMiddleware},
		Availability: ginserver.AvailabilityHandler{Queries: queryBusWithMiddleware},
		Metrics:      ginserver.MetricsHandler{Queries: queryBusWithMiddleware},
		Listing:      ginserver.ListingHandler{Queries: queryBusWithMiddleware},
	}, queryBus.Keys
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
