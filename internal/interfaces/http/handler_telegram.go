package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"chatbot_platform/internal/entities"
	"chatbot_platform/internal/interfaces"
	"chatbot_platform/internal/usecases"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// tokenPrefixLen is how much of a credential the debug listing reveals.
const tokenPrefixLen = 10

type RelayService interface {
	HandleUpdate(ctx context.Context, agentID int64, update usecases.InboundUpdate) usecases.WebhookResult
	HandleEvent(ctx context.Context, event entities.AgentEvent) error
	Agents() []interfaces.RegisteredAgent
}

// TelegramHandler serves the relay: Telegram webhooks in, backend lifecycle events in.
type TelegramHandler struct {
	relay      RelayService
	backendURL string
}

func NewTelegramHandler(relay RelayService, backendURL string) *TelegramHandler {
	return &TelegramHandler{relay: relay, backendURL: backendURL}
}

// SetupRelayRoutes mounts the relay surface on r.
func SetupRelayRoutes(r *gin.Engine, relay RelayService, backendURL string, log zerolog.Logger) {
	h := NewTelegramHandler(relay, backendURL)

	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(Metrics("relay"))
	r.Use(RequestSizeLimiter(maxBodyBytes))

	r.GET("/", h.Root)
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/agents", h.ListAgents)
	r.POST("/agent/event", h.AgentEvent)
	r.POST("/webhook/:agent_id", h.Webhook)
}

func (h *TelegramHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":           "webhook relay",
		"status":            "running",
		"backend_url":       h.backendURL,
		"registered_agents": len(h.relay.Agents()),
	})
}

func (h *TelegramHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type registeredAgentView struct {
	AgentID     int64  `json:"agent_id"`
	AccountID   int64  `json:"user_id"`
	PlatformID  int64  `json:"platform_id"`
	Disabled    bool   `json:"disabled"`
	TokenPrefix string `json:"token_prefix"`
}

// ListAgents is a debug listing that never shows a full credential.
func (h *TelegramHandler) ListAgents(c *gin.Context) {
	agents := h.relay.Agents()
	views := make([]registeredAgentView, 0, len(agents))
	for _, a := range agents {
		prefix := a.Token
		if len(prefix) > tokenPrefixLen {
			prefix = prefix[:tokenPrefixLen]
		}
		views = append(views, registeredAgentView{
			AgentID:     a.AgentID,
			AccountID:   a.AccountID,
			PlatformID:  a.PlatformID,
			Disabled:    a.Disabled,
			TokenPrefix: prefix + "...",
		})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(views), "agents": views})
}

// eventRequest is the wire form of a lifecycle event; tokens are normalised before use.
type eventRequest struct {
	Event string `json:"event" binding:"required"`
	Agent struct {
		ID           int64           `json:"id" binding:"required"`
		AccountID    int64           `json:"user_id"`
		SystemPrompt string          `json:"system_prompt"`
		Disabled     bool            `json:"disabled"`
		Tokens       json.RawMessage `json:"tokens"`
	} `json:"agent" binding:"required"`
}

func (h *TelegramHandler) AgentEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	tokens, err := decodeTokens(req.Agent.Tokens)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := entities.AgentEvent{
		Event: req.Event,
		Agent: entities.Agent{
			ID:           req.Agent.ID,
			AccountID:    req.Agent.AccountID,
			SystemPrompt: req.Agent.SystemPrompt,
			Disabled:     req.Agent.Disabled,
			Tokens:       tokens,
		},
	}
	if err := h.relay.HandleEvent(c.Request.Context(), event); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "event": req.Event, "agent_id": req.Agent.ID})
}

// Webhook receives a Telegram update for one agent.
func (h *TelegramHandler) Webhook(c *gin.Context) {
	agentID, err := strconv.ParseInt(c.Param("agent_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent id"})
		return
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		bindError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.relay.HandleUpdate(c.Request.Context(), agentID, normalizeUpdate(update)))
}

// normalizeUpdate reduces a Telegram update to the fields the relay forwards.
func normalizeUpdate(u tgbotapi.Update) usecases.InboundUpdate {
	msg := u.Message
	if msg == nil {
		msg = u.EditedMessage
	}
	if msg == nil || msg.Chat == nil {
		return usecases.InboundUpdate{}
	}

	in := usecases.InboundUpdate{ChatID: msg.Chat.ID, Text: msg.Text}
	if msg.From != nil {
		in.FromID = msg.From.ID
	}
	return in
}
