package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/uptrace/bun"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"talentdesk/backend/internal/config"
	"talentdesk/backend/internal/directory"
	"talentdesk/backend/internal/domain"
	"talentdesk/backend/internal/enrich"
	"talentdesk/backend/internal/events"
	"talentdesk/backend/internal/reminders"
	"talentdesk/backend/internal/service/interviews"
	"talentdesk/backend/internal/store"
	"talentdesk/backend/internal/store/memory"
	"talentdesk/backend/internal/store/postgres"
	"talentdesk/backend/internal/telemetry"
	grpcTransport "talentdesk/backend/internal/transport/grpc"
	"talentdesk/backend/internal/transport/httpapi"
)

const serviceName = "talentdesk-server"

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", serviceName),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", serviceName),
	)
	slog.SetDefault(log)

	log.Info("starting",
		slog.String("grpc_addr", cfg.GRPCAddr),
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("store_driver", cfg.StoreDriver),
		slog.String("events_backend", cfg.EventsBackend),
		slog.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.OTelEnabled,
		ServiceName: serviceName,
		Endpoint:    cfg.OTelEndpoint,
		SampleRatio: cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Error("telemetry setup failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("telemetry shutdown failed", slog.Any("err", err))
		}
	}()

	defaultLoc, err := domain.LoadLocation(cfg.DefaultLocation)
	if err != nil {
		log.Error("invalid default location", slog.Any("err", err), slog.String("location", cfg.DefaultLocation))
		os.Exit(1)
	}

	var (
		repo        store.InterviewRepository
		dir         directory.Directory
		readyChecks []httpapi.ReadyCheck
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn("using in-memory store; data is lost on restart")
		repo = memory.NewInterviewRepo()
		dir = directory.NewMemory()
	default:
		db, err := openDatabase(ctx, log, cfg)
		if err != nil {
			os.Exit(1)
		}
		defer func() {
			if err := postgres.Close(db); err != nil {
				log.Warn("database close failed", slog.Any("err", err))
			}
		}()
		repo = postgres.NewInterviewRepo(db)
		dir = directory.NewBunDirectory(db)
		readyChecks = append(readyChecks, httpapi.ReadyCheck{Name: "database", Check: postgres.ReadyCheck(db)})
	}
	if cfg.DirectoryCacheSize > 0 {
		dir = directory.NewCached(dir, cfg.DirectoryCacheSize, cfg.DirectoryCacheTTL)
	}

	publisher, err := openPublisher(ctx, log, cfg)
	if err != nil {
		os.Exit(1)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("event publisher close failed", slog.Any("err", err))
		}
	}()

	svc := interviews.NewService(repo, enrich.NewResolver(dir, log),
		interviews.WithPublisher(publisher),
		interviews.WithLogger(log),
		interviews.WithDefaultLocation(defaultLoc),
	)

	if cfg.RemindersEnabled {
		sweeper, err := reminders.New(repo, publisher, log, reminders.Config{
			Schedule: cfg.RemindersSchedule,
			Lookback: cfg.RemindersLookback,
		})
		if err != nil {
			log.Error("reminder sweeper setup failed", slog.Any("err", err))
			os.Exit(1)
		}
		if err := sweeper.Start(ctx); err != nil {
			log.Error("reminder sweeper start failed", slog.Any("err", err), slog.String("schedule", cfg.RemindersSchedule))
			os.Exit(1)
		}
		defer sweeper.Stop()
	}

	grpcServer, healthServer := grpcTransport.NewServer(grpcTransport.NewInterviewsServer(svc, log), log, cfg.GRPCRequestTimeout)
	httpServer := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(httpapi.NewHandler(svc, log), log, httpapi.Options{
			RequestTimeout: cfg.HTTPRequestTimeout,
			ReadyChecks:    readyChecks,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr))
		os.Exit(1)
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info("servers started", slog.String("grpc_addr", cfg.GRPCAddr), slog.String("http_addr", cfg.HTTPAddr))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdown(log, grpcServer, healthServer, httpServer, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("server stopped with error", slog.Any("err", err))
			shutdown(log, grpcServer, healthServer, httpServer, cfg.ShutdownTimeout)
			os.Exit(1)
		}
	}
}

func openDatabase(ctx context.Context, log *slog.Logger, cfg config.Config) (*bun.DB, error) {
	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		return nil, err
	}
	if cfg.DBMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error("database migration failed", slog.Any("err", err))
			_ = postgres.Close(db)
			return nil, err
		}
		log.Info("database migrations applied")
	}
	return db, nil
}

func openPublisher(ctx context.Context, log *slog.Logger, cfg config.Config) (events.Publisher, error) {
	switch cfg.EventsBackend {
	case config.EventsBackendRedis:
		dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rdb, err := events.DialRedis(dctx, cfg.RedisURL)
		if err != nil {
			log.Error("redis connection failed", slog.Any("err", err))
			return nil, err
		}
		log.Info("publishing events to redis", slog.String("channel_prefix", cfg.EventsChannelPrefix))
		return events.NewRedisPublisher(rdb, cfg.EventsChannelPrefix), nil
	case config.EventsBackendKafka:
		brokers := events.SplitBrokers(cfg.KafkaBrokers)
		if len(brokers) == 0 {
			err := errors.New("kafka.brokers is empty")
			log.Error("kafka setup failed", slog.Any("err", err))
			return nil, err
		}
		log.Info("publishing events to kafka", slog.String("topic", cfg.KafkaTopic), slog.Int("brokers", len(brokers)))
		return events.NewKafkaPublisher(brokers, cfg.KafkaTopic), nil
	default:
		return events.Noop{}, nil
	}
}

func shutdown(log *slog.Logger, s *grpc.Server, hs *health.Server, hsrv *http.Server, timeout time.Duration) {
	log.Info("shutting down servers", slog.Duration("timeout", timeout))
	hs.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := hsrv.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown failed", slog.Any("err", err))
	}

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-ctx.Done():
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.Stop()
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
