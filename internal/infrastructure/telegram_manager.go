package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramManager talks to the Bot API on behalf of many agents, one bot per token.
type TelegramManager struct {
	bots     map[string]*tgbotapi.BotAPI
	mu       sync.RWMutex
	endpoint string
	client   *http.Client
	log      zerolog.Logger
}

// NewTelegramManager uses endpoint as the Bot API url template (token, method).
func NewTelegramManager(endpoint string, timeout time.Duration, log zerolog.Logger) *TelegramManager {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	return &TelegramManager{
		bots:     make(map[string]*tgbotapi.BotAPI),
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		log:      log.With().Str("component", "telegram").Logger(),
	}
}

// bot returns the cached client for token, creating it on first use.
func (m *TelegramManager) bot(token string) (*tgbotapi.BotAPI, error) {
	m.mu.RLock()
	bot, ok := m.bots[token]
	m.mu.RUnlock()
	if ok {
		return bot, nil
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, m.endpoint, m.client)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.bots[token]; ok {
		return existing, nil
	}
	m.bots[token] = bot
	m.log.Debug().Str("bot", bot.Self.UserName).Msg("bot client created")
	return bot, nil
}

// forget drops the cached client so a revoked token is not reused.
func (m *TelegramManager) forget(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bots, token)
}

func (m *TelegramManager) SendMessage(ctx context.Context, token string, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bot, err := m.bot(token)
	if err != nil {
		return err
	}
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (m *TelegramManager) RegisterWebhook(ctx context.Context, token, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bot, err := m.bot(token)
	if err != nil {
		return err
	}
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("webhook url: %w", err)
	}
	if _, err := bot.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

func (m *TelegramManager) UnregisterWebhook(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bot, err := m.bot(token)
	if err != nil {
		return err
	}
	defer m.forget(token)
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}

// Cached reports how many bot clients are held.
func (m *TelegramManager) Cached() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bots)
}
