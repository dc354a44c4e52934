package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chatbot_platform/internal/entities"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendClientChat(t *testing.T) {
	var got entities.Turn
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/agent/chat/", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get(ServiceKeyHeader))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"hello back"}`))
	}))
	defer srv.Close()

	c := NewBackendClient(srv.URL+"/api/v1/", "secret", 5*time.Second, zerolog.Nop())
	turn := entities.Turn{
		Chat:    entities.ChatRef{ID: 99, AccountID: 1, AgentID: 2, PlatformID: 3},
		Message: entities.InboundMessage{Text: "hi", ClientName: "User_99"},
	}

	reply, err := c.Chat(context.Background(), turn)
	require.NoError(t, err)
	assert.Equal(t, "hello back", reply)
	assert.Equal(t, turn, got)
}

func TestBackendClientChatError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"agent with id 2 does not exist"}`))
	}))
	defer srv.Close()

	c := NewBackendClient(srv.URL, "", 5*time.Second, zerolog.Nop())
	_, err := c.Chat(context.Background(), entities.Turn{})

	var backendErr *BackendError
	require.True(t, errors.As(err, &backendErr))
	assert.Equal(t, http.StatusNotFound, backendErr.StatusCode)
	assert.Contains(t, backendErr.Body, "does not exist")
}

func TestBackendClientActiveAgents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/agent/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":7,"user_id":1,"system_prompt":"p","disabled":false,
			"tokens":[{"platform_id":1,"platform_name":"telegram","token":"123:abc"}]}]`))
	}))
	defer srv.Close()

	c := NewBackendClient(srv.URL, "", 5*time.Second, zerolog.Nop())
	agents, err := c.ActiveAgents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 1)

	tok, ok := agents[0].TokenFor(entities.PlatformTelegram)
	require.True(t, ok)
	assert.Equal(t, "123:abc", tok.Token)
}

func TestBackendClientPlatforms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/platform", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"telegram"},{"id":2,"name":"whatsapp"}]`))
	}))
	defer srv.Close()

	c := NewBackendClient(srv.URL, "", 5*time.Second, zerolog.Nop())
	platforms, err := c.Platforms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []entities.Platform{{ID: 1, Name: "telegram"}, {ID: 2, Name: "whatsapp"}}, platforms)
}

func TestBackendClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewBackendClient(url, "", time.Second, zerolog.Nop())
	_, err := c.Chat(context.Background(), entities.Turn{})
	require.Error(t, err)

	var backendErr *BackendError
	assert.False(t, errors.As(err, &backendErr))
}

func TestRelayNotifier(t *testing.T) {
	var got entities.AgentEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	n := NewRelayNotifier(srv.URL+"/agent/event", 5*time.Second, zerolog.Nop())
	agent := &entities.Agent{ID: 3, AccountID: 1, Disabled: true}
	require.NoError(t, n.Notify(context.Background(), entities.AgentEventDeleted, agent))

	assert.Equal(t, entities.AgentEventDeleted, got.Event)
	assert.Equal(t, int64(3), got.Agent.ID)
	assert.True(t, got.Agent.Disabled)
}

func TestRelayNotifierErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewRelayNotifier(srv.URL, 5*time.Second, zerolog.Nop())
	assert.Error(t, n.Notify(context.Background(), "bogus", &entities.Agent{ID: 1}))

	disabled := NewRelayNotifier("", time.Second, zerolog.Nop())
	assert.Nil(t, disabled)
	assert.NoError(t, disabled.Notify(context.Background(), entities.AgentEventCreated, &entities.Agent{}))
}
