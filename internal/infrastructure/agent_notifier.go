package infrastructure

import (
	"context"
	"fmt"
	"time"

	"chatbot_platform/internal/entities"

	"github.com/rs/zerolog"
	"resty.dev/v3"
)

// RelayNotifier posts agent lifecycle events to the relay's /agent/event endpoint.
type RelayNotifier struct {
	client *resty.Client
	url    string
	log    zerolog.Logger
}

// NewRelayNotifier returns nil when url is empty; the agent usecase treats a nil notifier as disabled.
func NewRelayNotifier(url string, timeout time.Duration, log zerolog.Logger) *RelayNotifier {
	if url == "" {
		return nil
	}
	log = log.With().Str("component", "agent_notifier").Logger()
	return &RelayNotifier{
		client: NewHTTPClient("relay", timeout, log),
		url:    url,
		log:    log,
	}
}

// Notify is a no-op on a nil notifier.
func (n *RelayNotifier) Notify(ctx context.Context, event string, agent *entities.Agent) error {
	if n == nil {
		return nil
	}
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(entities.AgentEvent{Event: event, Agent: *agent}).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("post %s event: %w", event, err)
	}
	if resp.IsError() {
		return fmt.Errorf("relay answered %s event with status %d: %s", event, resp.StatusCode(), resp.String())
	}
	n.log.Info().Str("event", event).Int64("agent_id", agent.ID).Msg("agent event delivered")
	return nil
}
