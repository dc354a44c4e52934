package entities

import "time"

// Account is a platform tenant. Agents and chats belong to exactly one account.
type Account struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Disabled     bool      `json:"disabled"` // soft delete flag
	CreatedAt    time.Time `json:"created_at"`
}

// AccountPatch carries the fields of a partial account update. Nil means "leave as is".
type AccountPatch struct {
	Email        *string
	PasswordHash *string
	Disabled     *bool
}

func (p AccountPatch) Empty() bool {
	return p.Email == nil && p.PasswordHash == nil && p.Disabled == nil
}

// Client is a customer record managed by an account from the dashboard.
type Client struct {
	ID           int64     `json:"id"`
	AccountID    int64     `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
}

type ClientPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Disabled     *bool
}

func (p ClientPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.PasswordHash == nil && p.Disabled == nil
}
