package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chatbot_platform/internal/entities"
	"chatbot_platform/internal/infrastructure"
	"chatbot_platform/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader = "X-Request-Id"
	ctxAccount      = "account"
	ctxRequestID    = "request_id"
)

// Authenticator resolves a bearer token to the calling account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entities.Account, error)
}

type Middleware struct {
	auth       Authenticator
	serviceKey string
}

func NewMiddleware(auth Authenticator, serviceKey string) *Middleware {
	return &Middleware{auth: auth, serviceKey: serviceKey}
}

// AuthRequired admits requests carrying a valid account bearer token.
func (m *Middleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		account, err := m.auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		c.Set(ctxAccount, account)
		c.Next()
	}
}

// ServiceKeyRequired guards the relay-facing routes. An empty key disables the check.
func (m *Middleware) ServiceKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.serviceKey == "" {
			c.Next()
			return
		}
		got := c.GetHeader(infrastructure.ServiceKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(m.serviceKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid service key"})
			return
		}
		c.Next()
	}
}

// currentAccount returns the account set by AuthRequired.
func currentAccount(c *gin.Context) *entities.Account {
	if v, ok := c.Get(ctxAccount); ok {
		if a, ok := v.(*entities.Account); ok {
			return a
		}
	}
	return nil
}

func callerID(c *gin.Context) int64 {
	if a := currentAccount(c); a != nil {
		return a.ID
	}
	return 0
}

// CORSMiddleware allows Cross-Origin requests
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-Id, X-Service-Key, accept, origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SecurityHeaders adds headers against sniffing and framing.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// RequestSizeLimiter caps the request body.
func RequestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// RequestID injects an X-Request-Id header when missing.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set(requestIDHeader, id)
		}
		c.Writer.Header().Set(requestIDHeader, id)
		c.Set(ctxRequestID, id)
		c.Next()
	}
}

// RequestLogger logs one line per request, at warn for 4xx and error for 5xx.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		if id := c.GetString(ctxRequestID); id != "" {
			ev = ev.Str("request_id", id)
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg(c.Errors.ByType(gin.ErrorTypePrivate).String())
	}
}

// Metrics records request counts and latency per route.
func Metrics(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		infrastructure.HTTPRequestsTotal.
			WithLabelValues(service, c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).
			Inc()
		infrastructure.HTTPRequestDuration.
			WithLabelValues(service, c.Request.Method, endpoint).
			Observe(time.Since(start).Seconds())
	}
}

var _ Authenticator = (*usecases.AuthUsecase)(nil)
