package repository

import (
	"context"
	"fmt"

	"chatbot_platform/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// ListByChat returns the chat history oldest first.
func (r *MessageRepository) ListByChat(ctx context.Context, chatID int64) ([]entities.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, chat_id, role, text, COALESCE(client_name, ''), created_at
		FROM messages WHERE chat_id = $1
		ORDER BY created_at ASC, id ASC
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []entities.Message{}
	for rows.Next() {
		var m entities.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Text, &m.ClientName, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func insertMessage(ctx context.Context, tx pgx.Tx, m *entities.Message) error {
	var clientName *string
	if m.ClientName != "" {
		clientName = &m.ClientName
	}
	return tx.QueryRow(ctx, `
		INSERT INTO messages (chat_id, role, text, client_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, m.ChatID, string(m.Role), m.Text, clientName).Scan(&m.ID, &m.CreatedAt)
}

// CreateTurn stores the inbound message and the reply, in that order, in one transaction.
func (r *MessageRepository) CreateTurn(ctx context.Context, inbound, reply *entities.Message) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertMessage(ctx, tx, inbound); err != nil {
		return fmt.Errorf("insert inbound message: %w", err)
	}
	if err := insertMessage(ctx, tx, reply); err != nil {
		return fmt.Errorf("insert reply message: %w", err)
	}
	return tx.Commit(ctx)
}
