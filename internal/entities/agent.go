package entities

import (
	"strings"
	"time"
)

const DefaultSystemPrompt = "You are a helpful assistant."

// PlatformToken is the credential an agent uses on one messaging platform.
type PlatformToken struct {
	PlatformID   int64  `json:"platform_id"`
	PlatformName string `json:"platform_name"`
	Token        string `json:"token"`
}

// Is reports whether the token belongs to the named platform (case-insensitive).
func (t PlatformToken) Is(platform string) bool {
	return strings.EqualFold(strings.TrimSpace(t.PlatformName), platform)
}

// Agent is a bot persona owned by an account.
type Agent struct {
	ID           int64           `json:"id"`
	AccountID    int64           `json:"user_id"`
	SystemPrompt string          `json:"system_prompt"`
	Disabled     bool            `json:"disabled"`
	Tokens       []PlatformToken `json:"tokens"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TokenFor returns the agent's credential for the named platform.
func (a *Agent) TokenFor(platform string) (PlatformToken, bool) {
	for _, t := range a.Tokens {
		if t.Is(platform) && t.Token != "" {
			return t, true
		}
	}
	return PlatformToken{}, false
}

// AgentPatch is a partial agent update. A non-nil Tokens replaces the whole token set.
type AgentPatch struct {
	SystemPrompt *string
	Disabled     *bool
	Tokens       *[]PlatformToken
}

func (p AgentPatch) Empty() bool {
	return p.SystemPrompt == nil && p.Disabled == nil && p.Tokens == nil
}

// AgentEvent is the lifecycle notification sent from the backend to the relay.
type AgentEvent struct {
	Event string `json:"event"` // "created" or "deleted"
	Agent Agent  `json:"agent"`
}

const (
	AgentEventCreated = "created"
	AgentEventDeleted = "deleted"
)
