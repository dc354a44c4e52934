package usecases

import (
	"context"

	"chatbot_platform/internal/entities"
)

// The store interfaces are satisfied by the postgres repositories in internal/repository.

type AccountStore interface {
	Create(ctx context.Context, account *entities.Account) error
	Get(ctx context.Context, id int64) (*entities.Account, error)
	GetIncludingDisabled(ctx context.Context, id int64) (*entities.Account, error)
	GetByEmail(ctx context.Context, email string) (*entities.Account, error)
	Update(ctx context.Context, id int64, p entities.AccountPatch) (*entities.Account, error)
	SoftDelete(ctx context.Context, id int64) error
	Reactivate(ctx context.Context, id int64) error
}

type ClientStore interface {
	Create(ctx context.Context, client *entities.Client) error
	Get(ctx context.Context, id int64) (*entities.Client, error)
	GetByEmail(ctx context.Context, email string) (*entities.Client, error)
	ListByAccount(ctx context.Context, accountID int64) ([]entities.Client, error)
	Update(ctx context.Context, id int64, p entities.ClientPatch) (*entities.Client, error)
	SoftDelete(ctx context.Context, id int64) error
}

type AgentStore interface {
	Create(ctx context.Context, agent *entities.Agent) error
	Get(ctx context.Context, id int64) (*entities.Agent, error)
	GetIncludingDisabled(ctx context.Context, id int64) (*entities.Agent, error)
	ListActive(ctx context.Context) ([]entities.Agent, error)
	ListByAccount(ctx context.Context, accountID int64) ([]entities.Agent, error)
	Update(ctx context.Context, id int64, p entities.AgentPatch) (*entities.Agent, error)
	SoftDelete(ctx context.Context, id int64) error
	Reactivate(ctx context.Context, id int64) error
}

type PlatformStore interface {
	Get(ctx context.Context, id int64) (*entities.Platform, error)
	GetByName(ctx context.Context, name string) (*entities.Platform, error)
	List(ctx context.Context) ([]entities.Platform, error)
}

type ChatStore interface {
	Get(ctx context.Context, id int64) (*entities.Chat, error)
	FindByExternal(ctx context.Context, agentID, platformID, externalID int64) (*entities.Chat, error)
	Create(ctx context.Context, chat *entities.Chat) (*entities.Chat, bool, error)
}

type MessageStore interface {
	ListByChat(ctx context.Context, chatID int64) ([]entities.Message, error)
	CreateTurn(ctx context.Context, inbound, reply *entities.Message) error
}
