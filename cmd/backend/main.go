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
	"chatbot_platform/internal/entities"
	"chatbot_platform/internal/infrastructure"
	"chatbot_platform/internal/interfaces"
	httpapi "chatbot_platform/internal/interfaces/http"
	"chatbot_platform/internal/repository"
	"chatbot_platform/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "backend:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadBackend()
	if err != nil {
		return err
	}
	log, err := infrastructure.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := infrastructure.NewPostgresClient(ctx, cfg.DatabaseURL, infrastructure.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	}, log)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pg.Close()

	// Repositories
	lifecycle := repository.NewLifecycle(pg.Pool)
	accountRepo := repository.NewAccountRepository(pg.Pool, lifecycle)
	clientRepo := repository.NewClientRepository(pg.Pool, lifecycle)
	agentRepo := repository.NewAgentRepository(pg.Pool, lifecycle)
	platformRepo := repository.NewPlatformRepository(pg.Pool)
	chatRepo := repository.NewChatRepository(pg.Pool)
	messageRepo := repository.NewMessageRepository(pg.Pool)

	if err := platformRepo.Seed(ctx, entities.SeedPlatforms); err != nil {
		return fmt.Errorf("seed platforms: %w", err)
	}

	var completer interfaces.Completer = infrastructure.EchoCompleter{}
	if cfg.OpenAIAPIKey != "" {
		completer = infrastructure.NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, log)
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, agents will echo messages")
	}

	var notifier interfaces.AgentNotifier
	if n := infrastructure.NewRelayNotifier(cfg.ChatbotWebhookURL, cfg.WebhookTimeout, log); n != nil {
		notifier = n
	} else {
		log.Warn().Msg("CHATBOT_WEBHOOK_URL not set, relay will not receive agent events")
	}
	if cfg.ServiceKey == "" {
		log.Warn().Msg("SERVICE_KEY not set, relay routes are unauthenticated")
	}

	// Usecases
	auth := usecases.NewAuthUsecase(accountRepo, clientRepo, usecases.AuthOptions{
		Secret:     cfg.SecretKey,
		Algorithm:  cfg.Algorithm,
		Expire:     cfg.AccessTokenExpire,
		BcryptCost: cfg.BcryptCost,
	})
	services := httpapi.Services{
		Auth:     auth,
		Accounts: usecases.NewAccountUsecase(accountRepo, auth),
		Clients:  usecases.NewClientUsecase(clientRepo, auth),
		Agents:   usecases.NewAgentUsecase(agentRepo, platformRepo, notifier, log),
		Chats: usecases.NewConversationService(usecases.ConversationDeps{
			Accounts:  accountRepo,
			Agents:    agentRepo,
			Platforms: platformRepo,
			Chats:     chatRepo,
			Messages:  messageRepo,
			Completer: completer,
		}, log),
		Platforms: platformRepo,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	httpapi.SetupRoutes(r, services, httpapi.NewMiddleware(auth, cfg.ServiceKey), cfg.APIPrefix, log)

	return serve(ctx, &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}, log)
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("backend listening")
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
