package repository

import (
	"context"
	"fmt"

	"chatbot_platform/internal/entities"

	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = "id, email, password_hash, disabled, created_at"

type AccountRepository struct {
	db        *pgxpool.Pool
	lifecycle *Lifecycle
}

func NewAccountRepository(db *pgxpool.Pool, lifecycle *Lifecycle) *AccountRepository {
	return &AccountRepository{db: db, lifecycle: lifecycle}
}

func scanAccount(row interface{ Scan(...any) error }) (*entities.Account, error) {
	var a entities.Account
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Disabled, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) error {
	err := r.db.QueryRow(ctx,
		"INSERT INTO accounts (email, password_hash) VALUES ($1, $2) RETURNING id, disabled, created_at",
		account.Email, account.PasswordHash).Scan(&account.ID, &account.Disabled, &account.CreatedAt)
	return translate(err, "account")
}

// Get returns an active account.
func (r *AccountRepository) Get(ctx context.Context, id int64) (*entities.Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = $1 AND NOT disabled", id))
	return a, translate(err, "account")
}

// GetIncludingDisabled bypasses the soft delete filter.
func (r *AccountRepository) GetIncludingDisabled(ctx context.Context, id int64) (*entities.Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = $1", id))
	return a, translate(err, "account")
}

// GetByEmail also returns disabled accounts so login can tell them apart from unknown ones.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE email = $1", email))
	return a, translate(err, "account")
}

func (r *AccountRepository) Update(ctx context.Context, id int64, p entities.AccountPatch) (*entities.Account, error) {
	var b patch
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
	query, args := b.sql("accounts", id, accountColumns)
	a, err := scanAccount(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err, fmt.Sprintf("account %d", id))
	}
	return a, nil
}

func (r *AccountRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.lifecycle.SetDisabled(ctx, "accounts", id, true)
}

func (r *AccountRepository) Reactivate(ctx context.Context, id int64) error {
	return r.lifecycle.SetDisabled(ctx, "accounts", id, false)
}
