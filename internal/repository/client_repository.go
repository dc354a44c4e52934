package repository

import (
	"context"
	"fmt"

	"chatbot_platform/internal/entities"

	"github.com/jackc/pgx/v5/pgxpool"
)

const clientColumns = "id, account_id, name, email, password_hash, disabled, created_at"

type ClientRepository struct {
	db        *pgxpool.Pool
	lifecycle *Lifecycle
}

func NewClientRepository(db *pgxpool.Pool, lifecycle *Lifecycle) *ClientRepository {
	return &ClientRepository{db: db, lifecycle: lifecycle}
}

func scanClient(row interface{ Scan(...any) error }) (*entities.Client, error) {
	var c entities.Client
	if err := row.Scan(&c.ID, &c.AccountID, &c.Name, &c.Email, &c.PasswordHash, &c.Disabled, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) Create(ctx context.Context, client *entities.Client) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO clients (account_id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, disabled, created_at
	`, client.AccountID, client.Name, client.Email, client.PasswordHash).Scan(&client.ID, &client.Disabled, &client.CreatedAt)
	return translate(err, "client")
}

func (r *ClientRepository) Get(ctx context.Context, id int64) (*entities.Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = $1 AND NOT disabled", id))
	return c, translate(err, "client")
}

// GetByEmail includes disabled clients; login reports them as inactive.
func (r *ClientRepository) GetByEmail(ctx context.Context, email string) (*entities.Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx, "SELECT "+clientColumns+" FROM clients WHERE email = $1", email))
	return c, translate(err, "client")
}

func (r *ClientRepository) list(ctx context.Context, where string, args ...any) ([]entities.Client, error) {
	rows, err := r.db.Query(ctx, "SELECT "+clientColumns+" FROM clients WHERE "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, translate(err, "clients")
	}
	defer rows.Close()

	clients := []entities.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

func (r *ClientRepository) ListByAccount(ctx context.Context, accountID int64) ([]entities.Client, error) {
	return r.list(ctx, "account_id = $1 AND NOT disabled", accountID)
}

func (r *ClientRepository) Update(ctx context.Context, id int64, p entities.ClientPatch) (*entities.Client, error) {
	var b patch
	if p.Name != nil {
		b.set("name", *p.Name)
	}
	if p.Email != nil {
		b.set("email", *p.Email)
	}
	if p.PasswordHash != nil {
		b.set("password_hash", *p.PasswordHash)
	}
	if p.Disabled != nil {
		b.set("disabled", *p.Disabled)
	}
	if b.empty() {
		return nil, ErrEmptyUpdate
	}
	query, args := b.sql("clients", id, clientColumns)
	c, err := scanClient(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err, fmt.Sprintf("client %d", id))
	}
	return c, nil
}

func (r *ClientRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.lifecycle.SetDisabled(ctx, "clients", id, true)
}
