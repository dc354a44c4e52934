package http

import (
	"context"
	"net/http"
	"strconv"

	"chatbot_platform/internal/entities"
	"chatbot_platform/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies on both services.
const maxBodyBytes = 1 << 20

// The service interfaces are implemented by the usecases package.

type AuthService interface {
	Register(ctx context.Context, email, password string) (*entities.Account, error)
	Login(ctx context.Context, email, password string) (string, *entities.Account, error)
	ClientLogin(ctx context.Context, email, password string) (string, *entities.Client, error)
	Reactivate(ctx context.Context, email, password string) (string, *entities.Account, error)
}

type AccountService interface {
	Get(ctx context.Context, callerID, id int64) (*entities.Account, error)
	Update(ctx context.Context, callerID, id int64, in usecases.AccountUpdate) (*entities.Account, error)
	Delete(ctx context.Context, callerID, id int64) error
}

type ClientService interface {
	Create(ctx context.Context, ownerID int64, in usecases.ClientInput) (*entities.Client, error)
	List(ctx context.Context, ownerID int64) ([]entities.Client, error)
	Get(ctx context.Context, ownerID, id int64) (*entities.Client, error)
	Update(ctx context.Context, ownerID, id int64, in usecases.ClientUpdate) (*entities.Client, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type AgentService interface {
	Create(ctx context.Context, ownerID int64, in usecases.AgentInput) (*entities.Agent, error)
	Get(ctx context.Context, ownerID, id int64) (*entities.Agent, error)
	ListByAccount(ctx context.Context, callerID, accountID int64) ([]entities.Agent, error)
	ListActive(ctx context.Context) ([]entities.Agent, error)
	Update(ctx context.Context, ownerID, id int64, in usecases.AgentUpdate) (*entities.Agent, error)
	Delete(ctx context.Context, ownerID, id int64) error
	Reactivate(ctx context.Context, ownerID, id int64) (*entities.Agent, error)
}

type ChatService interface {
	Process(ctx context.Context, turn entities.Turn) (string, error)
	History(ctx context.Context, callerID, chatID int64) ([]entities.Message, error)
}

type PlatformLister interface {
	List(ctx context.Context) ([]entities.Platform, error)
}

// Services bundles what the backend routes call into.
type Services struct {
	Auth      AuthService
	Accounts  AccountService
	Clients   ClientService
	Agents    AgentService
	Chats     ChatService
	Platforms PlatformLister
}

type Handler struct {
	Services
}

func NewHandler(s Services) *Handler {
	return &Handler{Services: s}
}

// SetupRoutes mounts the backend API on r. Health and metrics stay at the root.
func SetupRoutes(r *gin.Engine, s Services, middleware *Middleware, apiPrefix string, log zerolog.Logger) {
	h := NewHandler(s)

	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(Metrics("backend"))
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(maxBodyBytes))
	r.Use(CORSMiddleware())

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group(apiPrefix)
	api.GET("/", h.Root)
	api.GET("/platform", h.ListPlatforms)

	// Public auth routes
	api.POST("/account", h.Signup)
	api.POST("/account/token", h.Token)
	api.POST("/account/reactivate", h.ReactivateAccount)
	api.POST("/client/login", h.ClientLogin)

	// Relay routes
	service := middleware.ServiceKeyRequired()
	api.GET("/agent/", service, h.ListActiveAgents)
	api.POST("/agent/chat/", service, h.Chat)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	{
		protected.GET("/account/me", h.Me)
		protected.GET("/account/:id", h.GetAccount)
		protected.PUT("/account/:id", h.UpdateAccount)
		protected.DELETE("/account/:id", h.DeleteAccount)

		protected.POST("/client", h.CreateClient)
		protected.GET("/client", h.ListClients)
		protected.GET("/client/my-clients", h.ListClients)
		protected.GET("/client/:id", h.GetClient)
		protected.PUT("/client/:id", h.UpdateClient)
		protected.DELETE("/client/:id", h.DeleteClient)

		protected.POST("/agent", h.CreateAgent)
		protected.GET("/agent/user/:id", h.ListAgentsByAccount)
		protected.GET("/agent/:id", h.GetAgent)
		protected.PUT("/agent/:id", h.UpdateAgent)
		protected.DELETE("/agent/:id", h.DeleteAgent)
		protected.POST("/agent/:id/reactivate", h.ReactivateAgent)

		protected.GET("/chat/:id/messages", h.ChatMessages)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"service": "chatbot backend", "status": "running"})
}

func (h *Handler) ListPlatforms(c *gin.Context) {
	platforms, err := h.Platforms.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, platforms)
}

// Chat runs one conversation turn for the relay.
func (h *Handler) Chat(c *gin.Context) {
	var turn entities.Turn
	if err := c.ShouldBindJSON(&turn); err != nil {
		bindError(c, err)
		return
	}
	turn.Message.Text = SanitizeString(turn.Message.Text)
	if !ValidateLength(turn.Message.Text, 1, MaxMessageLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message text is empty or too long"})
		return
	}
	turn.Message.ClientName = SanitizeString(turn.Message.ClientName)
	if !ValidateLength(turn.Message.ClientName, 0, MaxNameLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_name is too long"})
		return
	}

	reply, err := h.Chats.Process(c.Request.Context(), turn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": reply})
}

func (h *Handler) ChatMessages(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	msgs, err := h.Chats.History(c.Request.Context(), callerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if msgs == nil {
		msgs = []entities.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}

// pathID parses the :id parameter, answering 400 when it is not a positive integer.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}
