package http

import (
	"net/http"
	"strings"

	"chatbot_platform/internal/usecases"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Signup registers a new account.
func (h *Handler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !ValidateLength(req.Password, MinPasswordLen, 256) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters"})
		return
	}

	account, err := h.Auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

// readCredentials accepts a JSON body or the OAuth2 password form (username, password).
func readCredentials(c *gin.Context) (string, string, bool) {
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		var req struct {
			Email    string `json:"email"`
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return "", "", false
		}
		if req.Email == "" {
			req.Email = req.Username
		}
		return req.Email, req.Password, true
	}

	username, password := c.PostForm("username"), c.PostForm("password")
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return "", "", false
	}
	return username, password, true
}

// Token exchanges account credentials for a bearer token.
func (h *Handler) Token(c *gin.Context) {
	email, password, ok := readCredentials(c)
	if !ok {
		return
	}
	token, _, err := h.Auth.Login(c.Request.Context(), email, password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// ReactivateAccount lets the owner of a soft-deleted account sign back in.
func (h *Handler) ReactivateAccount(c *gin.Context) {
	email, password, ok := readCredentials(c)
	if !ok {
		return
	}
	token, account, err := h.Auth.Reactivate(c.Request.Context(), email, password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer", "account": account})
}

func (h *Handler) ClientLogin(c *gin.Context) {
	email, password, ok := readCredentials(c)
	if !ok {
		return
	}
	token, client, err := h.Auth.ClientLogin(c.Request.Context(), email, password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer", "client": client})
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentAccount(c))
}

func (h *Handler) GetAccount(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	account, err := h.Accounts.Get(c.Request.Context(), callerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *Handler) UpdateAccount(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Email    *string `json:"email" binding:"omitempty,email"`
		Password *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	account, err := h.Accounts.Update(c.Request.Context(), callerID(c), id, usecases.AccountUpdate{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Accounts.Delete(c.Request.Context(), callerID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type clientRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password"`
	Disabled *bool   `json:"disabled"`
}

func (h *Handler) CreateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.Name == nil || req.Email == nil || req.Password == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and password are required"})
		return
	}

	client, err := h.Clients.Create(c.Request.Context(), callerID(c), usecases.ClientInput{
		Name:     SanitizeString(*req.Name),
		Email:    *req.Email,
		Password: *req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// ListClients returns the caller's clients.
func (h *Handler) ListClients(c *gin.Context) {
	clients, err := h.Clients.List(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orEmpty(clients))
}

func (h *Handler) GetClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	client, err := h.Clients.Get(c.Request.Context(), callerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) UpdateClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	client, err := h.Clients.Update(c.Request.Context(), callerID(c), id, usecases.ClientUpdate{
		Name:     sanitizePtr(req.Name),
		Email:    req.Email,
		Password: req.Password,
		Disabled: req.Disabled,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) DeleteClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Clients.Delete(c.Request.Context(), callerID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// orEmpty keeps list endpoints from answering null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
