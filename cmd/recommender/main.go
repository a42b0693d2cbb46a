package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/corpus/store"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/recommend"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/recommend/cache"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/recommend/handler"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/refresher"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/snapshotstore"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/supervisor"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting job recommender",
		"port", cfg.Server.Port,
		"poll_interval", cfg.Model.PollInterval,
		"stale_after", cfg.Model.StaleAfter,
		"top_k", cfg.Model.TopK,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	var db *postgres.Client
	err = resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{MaxAttempts: 5}, func() error {
		var connErr error
		db, connErr = postgres.New(cfg.Postgres)
		return connErr
	})
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to postgres", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)

	jobs := store.New(db, cfg.Postgres.QueryTimeout)
	if err := jobs.EnsureSchema(ctx); err != nil {
		slog.Error("failed to apply job schema", "error", err)
		os.Exit(1)
	}

	var (
		redisClient *pkgredis.Client
		results     *cache.ResultCache[[]recommend.RecommendedJob]
	)
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, result caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			results = cache.New[[]recommend.RecommendedJob](redisClient, cfg.Redis.CacheTTL)
			slog.Info("result cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	agg := analytics.NewAggregator()
	var publisher analytics.Publisher
	var consumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer producer.Close()
		publisher = producer
		consumer = kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(agg))
		slog.Info("analytics via kafka", "topic", cfg.Kafka.Topics.AnalyticsEvents)
	} else {
		publisher = analytics.NewLocalPublisher(analytics.HandleEvent(agg))
		slog.Info("analytics in-process, kafka disabled")
	}
	collector := analytics.NewCollector(publisher, 10000)

	statsStore := aggregator.NewStore(db, agg, 0)
	if err := statsStore.EnsureSchema(ctx); err != nil {
		slog.Error("failed to apply analytics schema", "error", err)
		os.Exit(1)
	}

	snapshots := corpus.NewCache()
	opts := refresher.Options{
		PollInterval: cfg.Model.PollInterval,
		StaleAfter:   cfg.Model.StaleAfter,
		Persister:    snapshotstore.New(cfg.Model.DataDir),
		Events:       collector,
		Metrics:      m,
	}
	if results != nil {
		opts.Invalidator = results
	}
	ref := refresher.New(jobs, snapshots, opts)
	if cfg.Model.WarmStart {
		if err := ref.WarmStart(ctx); err != nil {
			slog.Warn("warm start failed, building from store", "error", err)
		}
	}

	svc := recommend.NewService(snapshots, ref, recommend.Options{
		TopK:    cfg.Model.TopK,
		Results: results,
		Events:  collector,
		Metrics: m,
	})

	checker := health.NewChecker()
	checker.Register("postgres", health.PingCheck(db.Ping, false))
	checker.Register("job-store-circuit", health.BreakerCheck(jobs.BreakerState))
	if redisClient != nil {
		checker.Register("redis", health.PingCheck(redisClient.Ping, true))
	}
	checker.Register("model", func(ctx context.Context) health.ComponentHealth {
		status := snapshots.Status()
		if !status.ModelReady {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "model not ready, state " + status.State.String()}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d jobs, version %s", status.JobsLoaded, status.Version),
		}
	})

	router := handler.NewRouter(handler.New(svc), handler.RouterConfig{
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		RefreshRateLimit:  cfg.Server.RefreshRateLimit,
		RefreshRateWindow: cfg.Server.RefreshRateWindow,
		RequestTimeout:    cfg.Server.RequestTimeout,
		Metrics:           m,
		Checker:           checker,
		Analytics:         analytics.NewHandler(agg, statsStore),
	})
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree(slog.Default(), supervisor.TreeConfig{ShutdownTimeout: cfg.Server.ShutdownTimeout})
	tree.AddModelService(ref)
	tree.AddModelService(statsStore)
	tree.AddEventService(collector)
	if consumer != nil {
		tree.AddEventService(consumer)
	}
	tree.AddAPIService(supervisor.NewHTTPService("api-server", server, cfg.Server.ShutdownTimeout))
	if cfg.Metrics.Enabled {
		tree.AddAPIService(supervisor.NewHTTPService("metrics-server", metrics.NewServer(cfg.Metrics.Port), cfg.Server.ShutdownTimeout))
	}

	slog.Info("job recommender listening", "addr", server.Addr)
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		slog.Error("supervisor stopped", "error", err)
		os.Exit(1)
	}
	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		slog.Warn("services did not stop in time", "count", len(report))
	}
	slog.Info("job recommender stopped")
}
