package usecases

import (
	"context"
	"errors"
	"testing"

	"chatbot_platform/internal/entities"
	"chatbot_platform/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAgents() (*AgentUsecase, *memAgents, *recordingNotifier) {
	agents, notifier := newMemAgents(), &recordingNotifier{}
	return NewAgentUsecase(agents, newMemPlatforms(), notifier, zerolog.Nop()), agents, notifier
}

func TestCreateAgentNotifiesRelay(t *testing.T) {
	uc, _, notifier := newTestAgents()

	agent, err := uc.Create(context.Background(), 1, AgentInput{
		Tokens: []TokenInput{{PlatformName: "telegram", Token: " 123:abc "}},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultSystemPrompt, agent.SystemPrompt)
	require.Len(t, agent.Tokens, 1)
	assert.Equal(t, entities.PlatformToken{PlatformID: 1, PlatformName: "telegram", Token: "123:abc"}, agent.Tokens[0])

	require.Len(t, notifier.events, 1)
	assert.Equal(t, entities.AgentEventCreated, notifier.events[0].Event)
	assert.Equal(t, agent.ID, notifier.events[0].Agent.ID)
}

func TestCreateAgentRejectsBadTokens(t *testing.T) {
	uc, agents, notifier := newTestAgents()
	ctx := context.Background()

	cases := map[string][]TokenInput{
		"blank":            {{PlatformID: 1, Token: "  "}},
		"unknown platform": {{PlatformName: "irc", Token: "x"}},
		"no platform":      {{Token: "x"}},
		"duplicate":        {{PlatformID: 1, Token: "x"}, {PlatformName: "telegram", Token: "y"}},
	}
	for name, tokens := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Create(ctx, 1, AgentInput{Tokens: tokens})
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Empty(t, agents.rows)
	assert.Empty(t, notifier.events)
}

func TestNotifierFailureDoesNotFailRequest(t *testing.T) {
	uc, _, notifier := newTestAgents()
	notifier.err = errors.New("relay down")

	_, err := uc.Create(context.Background(), 1, AgentInput{SystemPrompt: "p"})
	assert.NoError(t, err)
}

func TestDeleteAgentSendsDisabledPayload(t *testing.T) {
	uc, agents, notifier := newTestAgents()
	ctx := context.Background()
	agent, err := uc.Create(ctx, 1, AgentInput{
		SystemPrompt: "p",
		Tokens:       []TokenInput{{PlatformID: 1, Token: "123:abc"}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, uc.Delete(ctx, 2, agent.ID), ErrForbidden)
	require.NoError(t, uc.Delete(ctx, 1, agent.ID))

	require.Len(t, notifier.events, 2)
	deleted := notifier.events[1]
	assert.Equal(t, entities.AgentEventDeleted, deleted.Event)
	assert.True(t, deleted.Agent.Disabled)
	assert.Equal(t, "123:abc", deleted.Agent.Tokens[0].Token)

	_, err = agents.Get(ctx, agent.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = uc.Get(ctx, 1, agent.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	reactivated, err := uc.Reactivate(ctx, 1, agent.ID)
	require.NoError(t, err)
	assert.False(t, reactivated.Disabled)
	assert.Equal(t, entities.AgentEventCreated, notifier.events[2].Event)
}

func TestUpdateAgent(t *testing.T) {
	uc, _, notifier := newTestAgents()
	ctx := context.Background()
	agent, err := uc.Create(ctx, 1, AgentInput{SystemPrompt: "p"})
	require.NoError(t, err)

	_, err = uc.Update(ctx, 1, agent.ID, AgentUpdate{})
	assert.ErrorIs(t, err, repository.ErrEmptyUpdate)

	blank := " "
	_, err = uc.Update(ctx, 1, agent.ID, AgentUpdate{SystemPrompt: &blank})
	assert.ErrorIs(t, err, ErrInvalidInput)

	prompt := "new prompt"
	updated, err := uc.Update(ctx, 1, agent.ID, AgentUpdate{SystemPrompt: &prompt})
	require.NoError(t, err)
	assert.Equal(t, "new prompt", updated.SystemPrompt)
	assert.Len(t, notifier.events, 1, "prompt change does not re-announce")

	tokens := []TokenInput{{PlatformID: 1, Token: "456:def"}}
	updated, err = uc.Update(ctx, 1, agent.ID, AgentUpdate{Tokens: &tokens})
	require.NoError(t, err)
	require.Len(t, updated.Tokens, 1)
	require.Len(t, notifier.events, 3)
	assert.Equal(t, entities.AgentEventDeleted, notifier.events[1].Event)
	assert.Equal(t, entities.AgentEventCreated, notifier.events[2].Event)
	assert.Equal(t, "456:def", notifier.events[2].Agent.Tokens[0].Token)
}

func TestListAgents(t *testing.T) {
	uc, _, _ := newTestAgents()
	ctx := context.Background()
	a, err := uc.Create(ctx, 1, AgentInput{})
	require.NoError(t, err)
	_, err = uc.Create(ctx, 2, AgentInput{})
	require.NoError(t, err)
	require.NoError(t, uc.Delete(ctx, 1, a.ID))

	_, err = uc.ListByAccount(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrForbidden)

	mine, err := uc.ListByAccount(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	active, err := uc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
