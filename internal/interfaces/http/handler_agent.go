package http

import (
	"encoding/json"
	"net/http"

	"chatbot_platform/internal/entities"
	"chatbot_platform/internal/usecases"

	"github.com/gin-gonic/gin"
)

type agentRequest struct {
	SystemPrompt *string         `json:"system_prompt"`
	Tokens       json.RawMessage `json:"tokens"`
}

func toTokenInputs(tokens []entities.PlatformToken) []usecases.TokenInput {
	in := make([]usecases.TokenInput, 0, len(tokens))
	for _, t := range tokens {
		in = append(in, usecases.TokenInput{PlatformID: t.PlatformID, PlatformName: t.PlatformName, Token: t.Token})
	}
	return in
}

// bindAgent decodes an agent body, answering 400 on malformed input.
// The returned tokens are nil only when the body carried no tokens field.
func bindAgent(c *gin.Context) (agentRequest, []usecases.TokenInput, bool) {
	var req agentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return req, nil, false
	}
	if req.SystemPrompt != nil {
		req.SystemPrompt = sanitizePtr(req.SystemPrompt)
		if !ValidateLength(*req.SystemPrompt, 0, MaxPromptLength) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "system_prompt is too long"})
			return req, nil, false
		}
	}
	tokens, err := decodeTokens(req.Tokens)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, nil, false
	}
	if tokens == nil {
		return req, nil, true
	}
	return req, toTokenInputs(tokens), true
}

func (h *Handler) CreateAgent(c *gin.Context) {
	req, tokens, ok := bindAgent(c)
	if !ok {
		return
	}
	in := usecases.AgentInput{Tokens: tokens}
	if req.SystemPrompt != nil {
		in.SystemPrompt = *req.SystemPrompt
	}

	agent, err := h.Agents.Create(c.Request.Context(), callerID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, agent)
}

func (h *Handler) GetAgent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	agent, err := h.Agents.Get(c.Request.Context(), callerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (h *Handler) ListAgentsByAccount(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	agents, err := h.Agents.ListByAccount(c.Request.Context(), callerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orEmpty(agents))
}

// ListActiveAgents feeds relay reconciliation.
func (h *Handler) ListActiveAgents(c *gin.Context) {
	agents, err := h.Agents.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orEmpty(agents))
}

func (h *Handler) UpdateAgent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, tokens, ok := bindAgent(c)
	if !ok {
		return
	}

	in := usecases.AgentUpdate{SystemPrompt: req.SystemPrompt}
	// A present tokens field, even an empty one, replaces the credential set.
	if tokens != nil {
		in.Tokens = &tokens
	}

	agent, err := h.Agents.Update(c.Request.Context(), callerID(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (h *Handler) DeleteAgent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Agents.Delete(c.Request.Context(), callerID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) ReactivateAgent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	agent, err := h.Agents.Reactivate(c.Request.Context(), callerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}
