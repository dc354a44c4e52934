package usecases

import (
	"context"
	"errors"
	"testing"

	"chatbot_platform/internal/entities"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conversationFixture struct {
	svc       *ConversationService
	accounts  *memAccounts
	agents    *memAgents
	chats     *memChats
	messages  *memMessages
	completer *stubCompleter
	account   *entities.Account
	agent     *entities.Agent
}

func newConversationFixture(t *testing.T) *conversationFixture {
	t.Helper()
	ctx := context.Background()
	f := &conversationFixture{
		accounts:  newMemAccounts(),
		agents:    newMemAgents(),
		chats:     &memChats{},
		messages:  &memMessages{},
		completer: &stubCompleter{},
	}

	f.account = &entities.Account{Email: "owner@example.com", PasswordHash: "x"}
	require.NoError(t, f.accounts.Create(ctx, f.account))
	f.agent = &entities.Agent{AccountID: f.account.ID, SystemPrompt: "You are a pirate."}
	require.NoError(t, f.agents.Create(ctx, f.agent))

	f.svc = NewConversationService(ConversationDeps{
		Accounts:  f.accounts,
		Agents:    f.agents,
		Platforms: newMemPlatforms(),
		Chats:     f.chats,
		Messages:  f.messages,
		Completer: f.completer,
	}, zerolog.Nop())
	return f
}

func (f *conversationFixture) turn(chatID int64, text string) entities.Turn {
	return entities.Turn{
		Chat:    entities.ChatRef{ID: chatID, AccountID: f.account.ID, AgentID: f.agent.ID, PlatformID: 1},
		Message: entities.InboundMessage{Text: text, ClientName: "User_77"},
	}
}

func TestProcessCreatesChatAndPersistsTurn(t *testing.T) {
	f := newConversationFixture(t)

	reply, err := f.svc.Process(context.Background(), f.turn(77, "hello"))
	require.NoError(t, err)
	assert.Equal(t, "Agent: hello", reply)

	require.Len(t, f.chats.rows, 1)
	assert.Equal(t, int64(77), f.chats.rows[0].ExternalID)

	require.Len(t, f.messages.rows, 2)
	assert.Equal(t, entities.RoleClient, f.messages.rows[0].Role)
	assert.Equal(t, "hello", f.messages.rows[0].Text)
	assert.Equal(t, "User_77", f.messages.rows[0].ClientName)
	assert.Equal(t, entities.RoleAgent, f.messages.rows[1].Role)
	assert.Equal(t, "Agent: hello", f.messages.rows[1].Text)
	assert.Equal(t, "You are a pirate.", f.completer.prompt)
}

func TestProcessReusesChatAndPassesHistory(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	_, err := f.svc.Process(ctx, f.turn(77, "first"))
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, f.turn(77, "second"))
	require.NoError(t, err)

	assert.Len(t, f.chats.rows, 1)
	assert.Len(t, f.messages.rows, 4)
	require.Len(t, f.completer.history, 2)
	assert.Equal(t, "first", f.completer.history[0].Text)
	assert.Equal(t, "Agent: first", f.completer.history[1].Text)
}

func TestProcessCompletionFailureUsesFallback(t *testing.T) {
	f := newConversationFixture(t)
	f.completer.err = errors.New("upstream timeout")

	reply, err := f.svc.Process(context.Background(), f.turn(77, "hello"))
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, reply)

	require.Len(t, f.messages.rows, 2)
	assert.Equal(t, FallbackReply, f.messages.rows[1].Text)
}

func TestProcessUnknownReferences(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entities.ChatRef)
		want   string
	}{
		{"account", func(r *entities.ChatRef) { r.AccountID = 999 }, "user with id 999 does not exist"},
		{"agent", func(r *entities.ChatRef) { r.AgentID = 999 }, "agent with id 999 does not exist"},
		{"platform", func(r *entities.ChatRef) { r.PlatformID = 999 }, "platform with id 999 does not exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newConversationFixture(t)
			turn := f.turn(77, "hello")
			tt.mutate(&turn.Chat)

			_, err := f.svc.Process(context.Background(), turn)
			require.ErrorIs(t, err, ErrReferenceNotFound)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, f.chats.rows)
			assert.Empty(t, f.messages.rows)
			assert.Zero(t, f.completer.calls)
		})
	}
}

func TestProcessAgentOwnedByOtherAccount(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()
	other := &entities.Account{Email: "other@example.com"}
	require.NoError(t, f.accounts.Create(ctx, other))

	turn := f.turn(77, "hello")
	turn.Chat.AccountID = other.ID

	_, err := f.svc.Process(ctx, turn)
	assert.ErrorIs(t, err, ErrReferenceNotFound)
	assert.Empty(t, f.messages.rows)
}

func TestProcessDeletedAgentOnExistingChat(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	_, err := f.svc.Process(ctx, f.turn(77, "hello"))
	require.NoError(t, err)
	require.NoError(t, f.agents.SoftDelete(ctx, f.agent.ID))

	_, err = f.svc.Process(ctx, f.turn(77, "still there?"))
	require.ErrorIs(t, err, ErrAgentNotFound)
	assert.Len(t, f.messages.rows, 2)
}

func TestHistoryOwnerOnly(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()
	_, err := f.svc.Process(ctx, f.turn(77, "hello"))
	require.NoError(t, err)
	chatID := f.chats.rows[0].ID

	msgs, err := f.svc.History(ctx, f.account.ID, chatID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Text)

	_, err = f.svc.History(ctx, f.account.ID+1, chatID)
	assert.ErrorIs(t, err, ErrForbidden)
}
