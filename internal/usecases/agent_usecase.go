package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chatbot_platform/internal/entities"
	"chatbot_platform/internal/interfaces"
	"chatbot_platform/internal/repository"

	"github.com/rs/zerolog"
)

// TokenInput identifies the platform by id or by name.
type TokenInput struct {
	PlatformID   int64
	PlatformName string
	Token        string
}

type AgentInput struct {
	SystemPrompt string
	Tokens       []TokenInput
}

type AgentUpdate struct {
	SystemPrompt *string
	Tokens       *[]TokenInput
}

type AgentUsecase struct {
	agents    AgentStore
	platforms PlatformStore
	notifier  interfaces.AgentNotifier
	log       zerolog.Logger
}

func NewAgentUsecase(agents AgentStore, platforms PlatformStore, notifier interfaces.AgentNotifier, log zerolog.Logger) *AgentUsecase {
	return &AgentUsecase{
		agents:    agents,
		platforms: platforms,
		notifier:  notifier,
		log:       log.With().Str("component", "agents").Logger(),
	}
}

// resolveTokens turns API token inputs into tokens with both platform id and name set.
func (uc *AgentUsecase) resolveTokens(ctx context.Context, in []TokenInput) ([]entities.PlatformToken, error) {
	tokens := make([]entities.PlatformToken, 0, len(in))
	seen := make(map[int64]bool, len(in))
	for _, t := range in {
		token := strings.TrimSpace(t.Token)
		if token == "" {
			return nil, fmt.Errorf("%w: token must not be blank", ErrInvalidInput)
		}

		var (
			platform *entities.Platform
			err      error
		)
		switch {
		case t.PlatformID != 0:
			platform, err = uc.platforms.Get(ctx, t.PlatformID)
		case t.PlatformName != "":
			platform, err = uc.platforms.GetByName(ctx, t.PlatformName)
		default:
			return nil, fmt.Errorf("%w: token needs platform_id or platform_name", ErrInvalidInput)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown platform %d %q", ErrInvalidInput, t.PlatformID, t.PlatformName)
		}
		if err != nil {
			return nil, err
		}
		if seen[platform.ID] {
			return nil, fmt.Errorf("%w: duplicate token for platform %s", ErrInvalidInput, platform.Name)
		}
		seen[platform.ID] = true
		tokens = append(tokens, entities.PlatformToken{PlatformID: platform.ID, PlatformName: platform.Name, Token: token})
	}
	return tokens, nil
}

// notify delivers a lifecycle event. Delivery failures never fail the request.
func (uc *AgentUsecase) notify(ctx context.Context, event string, agent *entities.Agent) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.Notify(ctx, event, agent); err != nil {
		uc.log.Error().Err(err).Str("event", event).Int64("agent_id", agent.ID).Msg("agent webhook failed")
	}
}

func (uc *AgentUsecase) Create(ctx context.Context, ownerID int64, in AgentInput) (*entities.Agent, error) {
	prompt := strings.TrimSpace(in.SystemPrompt)
	if prompt == "" {
		prompt = entities.DefaultSystemPrompt
	}
	tokens, err := uc.resolveTokens(ctx, in.Tokens)
	if err != nil {
		return nil, err
	}

	agent := &entities.Agent{AccountID: ownerID, SystemPrompt: prompt, Tokens: tokens}
	if err := uc.agents.Create(ctx, agent); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("agent_id", agent.ID).Int64("account_id", ownerID).Msg("agent created")
	uc.notify(ctx, entities.AgentEventCreated, agent)
	return agent, nil
}

func (uc *AgentUsecase) Get(ctx context.Context, ownerID, id int64) (*entities.Agent, error) {
	agent, err := uc.agents.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ownerID, agent.AccountID); err != nil {
		return nil, err
	}
	return agent, nil
}

func (uc *AgentUsecase) ListByAccount(ctx context.Context, callerID, accountID int64) ([]entities.Agent, error) {
	if err := authorize(callerID, accountID); err != nil {
		return nil, err
	}
	return uc.agents.ListByAccount(ctx, accountID)
}

// ListActive returns all enabled agents with their tokens, for relay reconciliation.
func (uc *AgentUsecase) ListActive(ctx context.Context) ([]entities.Agent, error) {
	return uc.agents.ListActive(ctx)
}

func (uc *AgentUsecase) Update(ctx context.Context, ownerID, id int64, in AgentUpdate) (*entities.Agent, error) {
	if _, err := uc.Get(ctx, ownerID, id); err != nil {
		return nil, err
	}

	var p entities.AgentPatch
	if in.SystemPrompt != nil {
		prompt := strings.TrimSpace(*in.SystemPrompt)
		if prompt == "" {
			return nil, fmt.Errorf("%w: system_prompt must not be blank", ErrInvalidInput)
		}
		p.SystemPrompt = &prompt
	}
	if in.Tokens != nil {
		tokens, err := uc.resolveTokens(ctx, *in.Tokens)
		if err != nil {
			return nil, err
		}
		p.Tokens = &tokens
	}

	agent, err := uc.agents.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if in.Tokens != nil {
		// The relay keys its registry on the agent id; re-announcing replaces the stored credential.
		uc.notify(ctx, entities.AgentEventDeleted, agent)
		uc.notify(ctx, entities.AgentEventCreated, agent)
	}
	return agent, nil
}

// Delete soft-deletes the agent and tells the relay to drop it.
// The payload is read before the delete because disabled agents are invisible to Get.
func (uc *AgentUsecase) Delete(ctx context.Context, ownerID, id int64) error {
	agent, err := uc.agents.GetIncludingDisabled(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(ownerID, agent.AccountID); err != nil {
		return err
	}
	if err := uc.agents.SoftDelete(ctx, id); err != nil {
		return err
	}
	agent.Disabled = true
	uc.log.Info().Int64("agent_id", id).Msg("agent deleted")
	uc.notify(ctx, entities.AgentEventDeleted, agent)
	return nil
}

// Reactivate re-enables a soft-deleted agent and re-registers it with the relay.
func (uc *AgentUsecase) Reactivate(ctx context.Context, ownerID, id int64) (*entities.Agent, error) {
	agent, err := uc.agents.GetIncludingDisabled(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ownerID, agent.AccountID); err != nil {
		return nil, err
	}
	if err := uc.agents.Reactivate(ctx, id); err != nil {
		return nil, err
	}
	agent.Disabled = false
	uc.notify(ctx, entities.AgentEventCreated, agent)
	return agent, nil
}
