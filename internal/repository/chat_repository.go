package repository

import (
	"context"
	"errors"
	"fmt"

	"chatbot_platform/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const chatColumns = "id, account_id, agent_id, platform_id, external_id, created_at"

type ChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

func scanChat(row interface{ Scan(...any) error }) (*entities.Chat, error) {
	var c entities.Chat
	if err := row.Scan(&c.ID, &c.AccountID, &c.AgentID, &c.PlatformID, &c.ExternalID, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ChatRepository) Get(ctx context.Context, id int64) (*entities.Chat, error) {
	c, err := scanChat(r.db.QueryRow(ctx, "SELECT "+chatColumns+" FROM chats WHERE id = $1", id))
	return c, translate(err, "chat")
}

// FindByExternal looks a chat up by the platform's own chat id.
func (r *ChatRepository) FindByExternal(ctx context.Context, agentID, platformID, externalID int64) (*entities.Chat, error) {
	c, err := scanChat(r.db.QueryRow(ctx, `
		SELECT `+chatColumns+` FROM chats
		WHERE agent_id = $1 AND platform_id = $2 AND external_id = $3
	`, agentID, platformID, externalID))
	return c, translate(err, "chat")
}

// Create inserts the chat unless another request created it first, in which case
// the existing row is returned. created reports whether this call inserted it.
func (r *ChatRepository) Create(ctx context.Context, chat *entities.Chat) (*entities.Chat, bool, error) {
	c, err := scanChat(r.db.QueryRow(ctx, `
		INSERT INTO chats (account_id, agent_id, platform_id, external_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (agent_id, platform_id, external_id) DO NOTHING
		RETURNING `+chatColumns,
		chat.AccountID, chat.AgentID, chat.PlatformID, chat.ExternalID))
	if err == nil {
		return c, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("create chat: %w", err)
	}
	existing, err := r.FindByExternal(ctx, chat.AgentID, chat.PlatformID, chat.ExternalID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}
