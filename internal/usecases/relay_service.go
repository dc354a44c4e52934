package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"chatbot_platform/internal/entities"
	"chatbot_platform/internal/infrastructure"
	"chatbot_platform/internal/interfaces"

	"github.com/rs/zerolog"
)

// Replies sent to the end user when the backend cannot answer.
const (
	ReplyAgentUnavailable = "This agent is no longer available."
	ReplyConnectionError  = "Could not reach the AI service."
)

// InboundUpdate is a platform update reduced to what the relay needs.
type InboundUpdate struct {
	ChatID int64
	FromID int64
	Text   string
}

// WebhookResult is the body returned to the platform for an inbound update.
type WebhookResult struct {
	Status       string `json:"status,omitempty"`
	Message      string `json:"message,omitempty"`
	ResponseSent string `json:"response_sent,omitempty"`
}

// RelayService bridges platform webhooks to the backend chat endpoint and keeps
// the agent registry in sync with backend lifecycle events.
type RelayService struct {
	registry       interfaces.AgentRegistry
	backend        interfaces.Backend
	messenger      interfaces.Messenger
	webhookBaseURL string
	platform       string
	log            zerolog.Logger

	mu         sync.Mutex
	platformID int64
}

func NewRelayService(registry interfaces.AgentRegistry, backend interfaces.Backend, messenger interfaces.Messenger, webhookBaseURL string, log zerolog.Logger) *RelayService {
	return &RelayService{
		registry:       registry,
		backend:        backend,
		messenger:      messenger,
		webhookBaseURL: strings.TrimSuffix(webhookBaseURL, "/"),
		platform:       entities.PlatformTelegram,
		log:            log.With().Str("component", "relay").Logger(),
	}
}

func (s *RelayService) webhookURL(agentID int64) string {
	return fmt.Sprintf("%s/webhook/%d", s.webhookBaseURL, agentID)
}

// Reconcile registers every active backend agent that has a credential for the platform.
func (s *RelayService) Reconcile(ctx context.Context) (int, error) {
	agents, err := s.backend.ActiveAgents(ctx)
	if err != nil {
		return 0, fmt.Errorf("load active agents: %w", err)
	}
	s.log.Info().Int("agents", len(agents)).Msg("loaded active agents from backend")
	if _, err := s.resolvePlatformID(ctx); err != nil {
		s.log.Warn().Err(err).Msg("platform id unresolved, tokens without one will be skipped")
	}

	registered := 0
	for i := range agents {
		if s.register(ctx, &agents[i]) {
			registered++
		}
	}
	s.log.Info().Int("registered", registered).Msg("registry reconciled")
	return registered, nil
}

// resolvePlatformID looks up the backend id of the relay's platform. A
// successful lookup is cached; failures are retried on the next call.
func (s *RelayService) resolvePlatformID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.platformID != 0 {
		return s.platformID, nil
	}

	platforms, err := s.backend.Platforms(ctx)
	if err != nil {
		return 0, fmt.Errorf("load platforms: %w", err)
	}
	for _, p := range platforms {
		if strings.EqualFold(p.Name, s.platform) && p.ID != 0 {
			s.platformID = p.ID
			return p.ID, nil
		}
	}
	return 0, fmt.Errorf("platform %q not known to backend", s.platform)
}

// register stores the agent and subscribes its webhook. Webhook failures are logged only.
// Tokens sent without a platform id get the id the backend assigned to the platform.
func (s *RelayService) register(ctx context.Context, agent *entities.Agent) bool {
	token, ok := agent.TokenFor(s.platform)
	if !ok {
		s.log.Warn().Int64("agent_id", agent.ID).Str("platform", s.platform).Msg("agent has no usable token, skipped")
		return false
	}
	if token.PlatformID == 0 {
		id, err := s.resolvePlatformID(ctx)
		if err != nil {
			s.log.Warn().Err(err).Int64("agent_id", agent.ID).Msg("platform id unresolved, agent skipped")
			return false
		}
		token.PlatformID = id
	}

	s.registry.Put(interfaces.RegisteredAgent{
		AgentID:    agent.ID,
		Token:      token.Token,
		AccountID:  agent.AccountID,
		PlatformID: token.PlatformID,
		Disabled:   agent.Disabled,
	})

	url := s.webhookURL(agent.ID)
	if !strings.HasPrefix(url, "https://") {
		s.log.Warn().Int64("agent_id", agent.ID).Str("url", url).Msg("webhook base url is not https, webhook not registered")
		return true
	}
	if err := s.messenger.RegisterWebhook(ctx, token.Token, url); err != nil {
		s.log.Error().Err(err).Int64("agent_id", agent.ID).Msg("register webhook failed")
		return true
	}
	s.log.Info().Int64("agent_id", agent.ID).Str("url", url).Msg("webhook registered")
	return true
}

// evict removes the agent and its webhook. Evicting an unknown agent is a no-op.
func (s *RelayService) evict(ctx context.Context, agentID int64) {
	entry, ok := s.registry.Evict(agentID)
	if !ok {
		s.log.Debug().Int64("agent_id", agentID).Msg("agent not registered, nothing to evict")
		return
	}
	if entry.Token != "" {
		if err := s.messenger.UnregisterWebhook(ctx, entry.Token); err != nil {
			s.log.Error().Err(err).Int64("agent_id", agentID).Msg("unregister webhook failed")
		}
	}
	s.log.Info().Int64("agent_id", agentID).Msg("agent removed from registry")
}

// HandleEvent applies a backend lifecycle event to the registry.
func (s *RelayService) HandleEvent(ctx context.Context, event entities.AgentEvent) error {
	switch event.Event {
	case entities.AgentEventCreated:
		s.register(ctx, &event.Agent)
	case entities.AgentEventDeleted:
		s.evict(ctx, event.Agent.ID)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event.Event)
	}
	return nil
}

// HandleUpdate answers one inbound platform message for the given agent.
func (s *RelayService) HandleUpdate(ctx context.Context, agentID int64, update InboundUpdate) WebhookResult {
	agent, ok := s.registry.Get(agentID)
	if !ok {
		infrastructure.RelayUpdatesTotal.WithLabelValues("unknown_agent").Inc()
		s.log.Warn().Int64("agent_id", agentID).Msg("update for unregistered agent")
		return WebhookResult{Status: "error", Message: "Agent not found"}
	}
	if agent.Disabled {
		infrastructure.RelayUpdatesTotal.WithLabelValues("disabled_agent").Inc()
		return WebhookResult{Status: "error", Message: "Agent is disabled"}
	}
	if update.Text == "" {
		infrastructure.RelayUpdatesTotal.WithLabelValues("ignored").Inc()
		return WebhookResult{Message: "update ignored"}
	}

	fromID := update.FromID
	if fromID == 0 {
		fromID = update.ChatID
	}
	turn := entities.Turn{
		Chat: entities.ChatRef{
			ID:         update.ChatID,
			AccountID:  agent.AccountID,
			AgentID:    agentID,
			PlatformID: agent.PlatformID,
		},
		Message: entities.InboundMessage{
			ClientName: fmt.Sprintf("User_%d", fromID),
			Text:       update.Text,
		},
	}

	result := WebhookResult{Status: "success"}
	reply, err := s.backend.Chat(ctx, turn)
	if err != nil {
		reply, result.Status = s.replyForBackendError(ctx, agentID, err)
	}
	result.ResponseSent = reply
	infrastructure.RelayUpdatesTotal.WithLabelValues(result.Status).Inc()

	// agent.Token was captured before any eviction above.
	if err := s.messenger.SendMessage(ctx, agent.Token, update.ChatID, reply); err != nil {
		s.log.Error().Err(err).Int64("agent_id", agentID).Int64("chat_id", update.ChatID).Msg("send message failed")
	}
	return result
}

// replyForBackendError picks the end-user text for a failed backend call and
// evicts the agent when the backend says it no longer exists.
func (s *RelayService) replyForBackendError(ctx context.Context, agentID int64, err error) (string, string) {
	var httpErr *infrastructure.BackendError
	if !errors.As(err, &httpErr) {
		s.log.Error().Err(err).Int64("agent_id", agentID).Msg("backend unreachable")
		return ReplyConnectionError, "success"
	}

	s.log.Error().Int("status", httpErr.StatusCode).Str("body", httpErr.Body).Int64("agent_id", agentID).Msg("backend returned error")
	switch httpErr.StatusCode {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError:
		body := strings.ToLower(httpErr.Body)
		if strings.Contains(body, "does not exist") || strings.Contains(body, "not found") {
			s.log.Warn().Int64("agent_id", agentID).Msg("agent no longer exists in backend, evicting")
			s.evict(ctx, agentID)
			return ReplyAgentUnavailable, "error"
		}
	}
	return fmt.Sprintf("AI service error: status %d.", httpErr.StatusCode), "success"
}

// Agents returns the registry contents for the debug listing.
func (s *RelayService) Agents() []interfaces.RegisteredAgent {
	return s.registry.List()
}
