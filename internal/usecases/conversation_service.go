package usecases

import (
	"context"
	"errors"
	"fmt"

	"chatbot_platform/internal/entities"
	"chatbot_platform/internal/infrastructure"
	"chatbot_platform/internal/interfaces"
	"chatbot_platform/internal/repository"

	"github.com/rs/zerolog"
)

// FallbackReply is returned to the end user when the completion call fails.
const FallbackReply = "I'm sorry, I encountered an error while processing your message. Please try again."

type ConversationDeps struct {
	Accounts  AccountStore
	Agents    AgentStore
	Platforms PlatformStore
	Chats     ChatStore
	Messages  MessageStore
	Completer interfaces.Completer
}

// ConversationService runs one conversation turn: resolve the chat, ask the
// completer for a reply and persist both messages.
type ConversationService struct {
	ConversationDeps
	log zerolog.Logger
}

func NewConversationService(deps ConversationDeps, log zerolog.Logger) *ConversationService {
	return &ConversationService{
		ConversationDeps: deps,
		log:              log.With().Str("component", "conversation").Logger(),
	}
}

// Process handles one inbound message and returns the agent's reply.
// Only chat and agent resolution errors (and storage errors) are returned;
// completion failures turn into FallbackReply.
func (s *ConversationService) Process(ctx context.Context, turn entities.Turn) (string, error) {
	chat, err := s.resolveChat(ctx, turn.Chat)
	if err != nil {
		infrastructure.ConversationTurnsTotal.WithLabelValues("rejected").Inc()
		return "", err
	}

	agent, err := s.Agents.Get(ctx, chat.AgentID)
	if errors.Is(err, repository.ErrNotFound) {
		infrastructure.ConversationTurnsTotal.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("agent with id %d: %w", chat.AgentID, ErrAgentNotFound)
	}
	if err != nil {
		return "", err
	}

	history, err := s.Messages.ListByChat(ctx, chat.ID)
	if err != nil {
		return "", err
	}

	reply, err := s.Completer.Complete(ctx, agent.SystemPrompt, history, turn.Message)
	if err != nil {
		s.log.Error().Err(err).Int64("chat_id", chat.ID).Int64("agent_id", agent.ID).Msg("completion failed, sending fallback")
		infrastructure.CompletionFailuresTotal.Inc()
		reply = FallbackReply
	}

	inbound := &entities.Message{
		ChatID:     chat.ID,
		Role:       entities.RoleClient,
		Text:       turn.Message.Text,
		ClientName: turn.Message.ClientName,
	}
	outbound := &entities.Message{ChatID: chat.ID, Role: entities.RoleAgent, Text: reply}
	if err := s.Messages.CreateTurn(ctx, inbound, outbound); err != nil {
		return "", fmt.Errorf("persist turn: %w", err)
	}

	infrastructure.ConversationTurnsTotal.WithLabelValues("answered").Inc()
	return reply, nil
}

// resolveChat finds the chat for the platform chat id or creates it after
// checking that the account, agent and platform it references are usable.
func (s *ConversationService) resolveChat(ctx context.Context, ref entities.ChatRef) (*entities.Chat, error) {
	chat, err := s.Chats.FindByExternal(ctx, ref.AgentID, ref.PlatformID, ref.ID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if err := s.validateReferences(ctx, ref); err != nil {
		return nil, err
	}

	chat, created, err := s.Chats.Create(ctx, &entities.Chat{
		AccountID:  ref.AccountID,
		AgentID:    ref.AgentID,
		PlatformID: ref.PlatformID,
		ExternalID: ref.ID,
	})
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info().Int64("chat_id", chat.ID).Int64("external_id", ref.ID).Int64("agent_id", ref.AgentID).Msg("chat created")
	}
	return chat, nil
}

func (s *ConversationService) validateReferences(ctx context.Context, ref entities.ChatRef) error {
	missing := func(err error, what string, id int64) error {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s with id %d does not exist: %w", what, id, ErrReferenceNotFound)
		}
		return err
	}

	if _, err := s.Accounts.Get(ctx, ref.AccountID); err != nil {
		return missing(err, "user", ref.AccountID)
	}
	agent, err := s.Agents.Get(ctx, ref.AgentID)
	if err != nil {
		return missing(err, "agent", ref.AgentID)
	}
	if agent.AccountID != ref.AccountID {
		return fmt.Errorf("agent with id %d does not exist for user %d: %w", ref.AgentID, ref.AccountID, ErrReferenceNotFound)
	}
	if _, err := s.Platforms.Get(ctx, ref.PlatformID); err != nil {
		return missing(err, "platform", ref.PlatformID)
	}
	return nil
}

// History returns a chat's messages oldest first. Only the owning account may read them.
func (s *ConversationService) History(ctx context.Context, callerID, chatID int64) ([]entities.Message, error) {
	chat, err := s.Chats.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if err := authorize(callerID, chat.AccountID); err != nil {
		return nil, err
	}
	return s.Messages.ListByChat(ctx, chatID)
}
