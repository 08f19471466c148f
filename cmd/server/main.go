package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"saathi/internal/document"
	verdictstore "saathi/internal/eligibility/store"
	"saathi/internal/identity"
	"saathi/internal/journey/handler"
	journeymetrics "saathi/internal/journey/metrics"
	"saathi/internal/journey/service"
	sessionstore "saathi/internal/journey/store/session"
	"saathi/internal/media"
	"saathi/internal/platform/config"
	"saathi/internal/platform/httpserver"
	"saathi/internal/platform/logger"
	"saathi/internal/platform/metrics"
	"saathi/internal/platform/postgres"
	redisclient "saathi/internal/platform/redis"
	"saathi/internal/providers/extraction"
	"saathi/internal/providers/face"
	httptransport "saathi/internal/transport/http"
	"saathi/pkg/platform/audit/publisher"
	auditmemory "saathi/pkg/platform/audit/store/memory"
	auditpostgres "saathi/pkg/platform/audit/store/postgres"
	"saathi/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.IsProduction())
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	journeyMetrics := journeymetrics.NewWithRegisterer(reg)
	checks := map[string]httptransport.HealthCheck{}

	var sessions service.SessionStore = sessionstore.New()
	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		sessions = sessionstore.NewRedis(rdb.Client, sessionstore.WithTTL(cfg.Session.TTL))
		checks["redis"] = rdb.Health
		log.Info("sessions stored in redis")
	} else {
		log.Warn("REDIS_URL not set; sessions kept in memory")
	}

	var (
		verdicts   service.VerdictStore = verdictstore.NewInMemory()
		auditStore publisher.Store      = auditmemory.NewInMemoryStore()
	)
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		verdicts = verdictstore.NewPostgres(db)
		auditStore = auditpostgres.New(db)
		checks["postgres"] = db.PingContext
	} else {
		log.Warn("DATABASE_URL not set; verdicts and audit events kept in memory")
	}

	auditor := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(cfg.Audit.BufferSize),
		publisher.WithLogger(log),
	)
	defer auditor.Close()

	catalogue := media.New(cfg.Media.Dir,
		media.WithBaseURL(cfg.Media.BaseURL),
		media.WithLogger(log),
		media.WithMetrics(journeyMetrics),
	)
	if err := catalogue.Ensure(ctx); err != nil {
		log.Error("media catalogue check failed", "dir", cfg.Media.Dir, "error", err)
	}

	breaker := func(name string) *circuit.Breaker {
		return circuit.New(name,
			circuit.WithFailureThreshold(cfg.Providers.FailureThreshold),
			circuit.WithCoolDown(cfg.Providers.CoolDown),
		)
	}
	faceClient := face.New(cfg.Providers.FaceURL,
		face.WithTimeout(cfg.Providers.FaceTimeout),
		face.WithBreaker(breaker(face.ProviderID)),
		face.WithLogger(log),
	)
	extractor := extraction.New(cfg.Providers.ExtractionURL,
		extraction.WithTimeout(cfg.Providers.ExtractionTimeout),
		extraction.WithBreaker(breaker(extraction.ProviderID)),
		extraction.WithLogger(log),
	)

	artifacts := document.NewDirStore(cfg.Uploads.Dir)
	gate := identity.New(faceClient,
		identity.WithLogger(log),
		identity.WithAuditor(auditor),
		identity.WithMetrics(journeyMetrics),
	)
	ingestion := document.New(extractor, artifacts,
		document.WithLogger(log),
		document.WithAuditor(auditor),
		document.WithMetrics(journeyMetrics),
	)

	journey := service.New(sessions, catalogue, gate, ingestion, artifacts,
		service.WithLogger(log),
		service.WithAuditor(auditor),
		service.WithMetrics(journeyMetrics),
		service.WithVerdictStore(verdicts),
	)
	journeyHandler := handler.New(journey, log,
		handler.WithCookie(cfg.Session.CookieName, cfg.Session.TTL, cfg.IsProduction()),
		handler.WithMaxUploadBytes(cfg.MaxUploadBytes),
	)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:       log,
		Metrics:      metrics.New(reg),
		Gatherer:     reg,
		MediaDir:     cfg.Media.Dir,
		MediaBaseURL: cfg.Media.BaseURL,
		HealthChecks: checks,
	}, journeyHandler)

	srv := httpserver.New(cfg.Addr, router, cfg.HTTP)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting saathi", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
