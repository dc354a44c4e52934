package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatbot_platform/internal/config"
	"chatbot_platform/internal/infrastructure"
	httpapi "chatbot_platform/internal/interfaces/http"
	"chatbot_platform/internal/usecases"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "relay:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadRelay()
	if err != nil {
		return err
	}
	log, err := infrastructure.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := infrastructure.NewMemoryAgentRegistry()
	backend := infrastructure.NewBackendClient(cfg.BackendURL, cfg.ServiceKey, cfg.HTTPTimeout, log)
	telegram := infrastructure.NewTelegramManager(cfg.TelegramAPI, cfg.HTTPTimeout, log)
	relay := usecases.NewRelayService(registry, backend, telegram, cfg.WebhookBaseURL, log)

	// The backend may still be starting; agents also arrive through lifecycle events.
	if n, err := relay.Reconcile(ctx); err != nil {
		log.Warn().Err(err).Msg("initial agent sync failed")
	} else {
		log.Info().Int("agents", n).Msg("initial agent sync complete")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	httpapi.SetupRelayRoutes(r, relay, cfg.BackendURL, log)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("backend", cfg.BackendURL).Msg("relay listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
