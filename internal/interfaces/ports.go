package interfaces

import (
	"context"

	"chatbot_platform/internal/entities"
)

// Completer generates the agent's reply from its system prompt and the chat history.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []entities.Message, input entities.InboundMessage) (string, error)
}

// AgentNotifier pushes agent lifecycle events to the webhook relay.
type AgentNotifier interface {
	Notify(ctx context.Context, event string, agent *entities.Agent) error
}

// Messenger is the relay's view of a messaging platform.
type Messenger interface {
	SendMessage(ctx context.Context, token string, chatID int64, text string) error
	RegisterWebhook(ctx context.Context, token, url string) error
	UnregisterWebhook(ctx context.Context, token string) error
}

// RegisteredAgent is the relay's cached view of an agent.
type RegisteredAgent struct {
	AgentID    int64
	Token      string
	AccountID  int64
	PlatformID int64
	Disabled   bool
}

// AgentRegistry is the relay's agent id -> credential cache.
type AgentRegistry interface {
	Get(agentID int64) (RegisteredAgent, bool)
	Put(agent RegisteredAgent)
	Evict(agentID int64) (RegisteredAgent, bool)
	List() []RegisteredAgent
}

// Backend is the relay's client of the backend REST API.
type Backend interface {
	Chat(ctx context.Context, turn entities.Turn) (string, error)
	ActiveAgents(ctx context.Context) ([]entities.Agent, error)
	Platforms(ctx context.Context) ([]entities.Platform, error)
}
