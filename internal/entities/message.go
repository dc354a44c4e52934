package entities

import "time"

type MessageRole string

const (
	RoleClient MessageRole = "client" // end user on the messaging platform
	RoleAgent  MessageRole = "agent"
	RoleSystem MessageRole = "system"
)

type Message struct {
	ID         int64       `json:"id"`
	ChatID     int64       `json:"chat_id"`
	Role       MessageRole `json:"role"`
	Text       string      `json:"text"`
	ClientName string      `json:"client_name,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Chat is a conversation between one platform user and one agent.
// ExternalID is the messaging platform's own chat identifier.
type Chat struct {
	ID         int64     `json:"id"`
	AccountID  int64     `json:"user_id"`
	AgentID    int64     `json:"agent_id"`
	PlatformID int64     `json:"platform_id"`
	ExternalID int64     `json:"external_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type Platform struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

const (
	PlatformTelegram = "telegram"
	PlatformWhatsApp = "whatsapp"
)

// SeedPlatforms is the static reference data created at startup.
var SeedPlatforms = []string{PlatformTelegram, PlatformWhatsApp}

// Turn is one inbound message handed to the conversation pipeline.
type Turn struct {
	Chat    ChatRef        `json:"chat" binding:"required"`
	Message InboundMessage `json:"message" binding:"required"`
}

type ChatRef struct {
	ID         int64 `json:"id" binding:"required"`
	AccountID  int64 `json:"user_id" binding:"required"`
	AgentID    int64 `json:"agent_id" binding:"required"`
	PlatformID int64 `json:"platform_id" binding:"required"`
}

type InboundMessage struct {
	Text       string `json:"text" binding:"required"`
	ClientName string `json:"client_name,omitempty"`
}
