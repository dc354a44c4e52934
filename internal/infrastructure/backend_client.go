package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chatbot_platform/internal/entities"

	"github.com/rs/zerolog"
	"resty.dev/v3"
)

// ServiceKeyHeader carries the shared key on relay to backend calls.
const ServiceKeyHeader = "X-Service-Key"

// BackendError is a non-2xx answer from the backend.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Body)
}

// BackendClient is the relay's client of the backend REST API.
type BackendClient struct {
	client  *resty.Client
	baseURL string
}

func NewBackendClient(baseURL, serviceKey string, timeout time.Duration, log zerolog.Logger) *BackendClient {
	client := NewHTTPClient("backend", timeout, log)
	if serviceKey != "" {
		client.SetHeader(ServiceKeyHeader, serviceKey)
	}
	return &BackendClient{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat posts one turn to /agent/chat/ and returns the agent's reply.
func (c *BackendClient) Chat(ctx context.Context, turn entities.Turn) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(turn).
		Post(c.baseURL + "/agent/chat/")
	if err != nil {
		return "", fmt.Errorf("post chat turn: %w", err)
	}
	if resp.IsError() {
		return "", &BackendError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Bytes(), &out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	return out.Response, nil
}

// ActiveAgents lists every enabled agent with its platform tokens.
func (c *BackendClient) ActiveAgents(ctx context.Context) ([]entities.Agent, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(c.baseURL + "/agent/")
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	if resp.IsError() {
		return nil, &BackendError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var agents []entities.Agent
	if err := json.Unmarshal(resp.Bytes(), &agents); err != nil {
		return nil, fmt.Errorf("decode agents: %w", err)
	}
	return agents, nil
}

// Platforms lists the backend's platform reference data.
func (c *BackendClient) Platforms(ctx context.Context) ([]entities.Platform, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(c.baseURL + "/platform")
	if err != nil {
		return nil, fmt.Errorf("list platforms: %w", err)
	}
	if resp.IsError() {
		return nil, &BackendError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var platforms []entities.Platform
	if err := json.Unmarshal(resp.Bytes(), &platforms); err != nil {
		return nil, fmt.Errorf("decode platforms: %w", err)
	}
	return platforms, nil
}
