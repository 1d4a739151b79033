package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"shopgenie/internal/audit"
	"shopgenie/internal/auth"
	"shopgenie/internal/notify"
	"shopgenie/internal/platform/config"
	"shopgenie/internal/platform/httpserver"
	"shopgenie/internal/platform/logger"
	"shopgenie/internal/rbac"
	httptransport "shopgenie/internal/transport/http"
	"shopgenie/internal/ws"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	tokens := auth.NewTokenService(cfg.JWTSigningKey, "shopgenie")
	resolver := rbac.NewResolver(rbac.DefaultGrants())

	registry := ws.NewRegistry(cfg.WSSendBuffer, log, ws.NewMetrics())
	wsHandler := ws.NewHandler(registry, tokens, log, cfg.WSWriteTimeout)

	auditStore := audit.NewInMemoryStore()
	auditMetrics := audit.NewMetrics()
	auditInbox := make(chan audit.Entry, cfg.AuditQueueSize)
	recorder := audit.NewRecorder(auditStore, auditInbox, log, auditMetrics)
	auditWorker := audit.NewWorker(auditStore, auditInbox, log, auditMetrics)

	notifications := notify.NewService(notify.NewInMemoryStore(), registry, log, notify.NewMetrics())

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:             log,
		Tokens:             tokens,
		Resolver:           resolver,
		Notifications:      notifications,
		Recorder:           recorder,
		Registry:           registry,
		WSHandler:          wsHandler,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting shopgenie realtime core", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := auditWorker.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
