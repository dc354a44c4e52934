package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchSQL(t *testing.T) {
	var b patch
	assert.True(t, b.empty())

	b.set("email", "a@b.com")
	b.set("disabled", true)
	query, args := b.sql("accounts", 7, "id")

	assert.Equal(t, "UPDATE accounts SET email = $1, disabled = $2 WHERE id = $3 RETURNING id", query)
	assert.Equal(t, []any{"a@b.com", true, int64(7)}, args)
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, "account"))

	err := translate(pgx.ErrNoRows, "account")
	assert.ErrorIs(t, err, ErrNotFound)

	err = translate(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"}), "account")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "uniqueness violation")

	other := errors.New("boom")
	assert.ErrorIs(t, translate(other, "account"), other)
}

func TestLifecycleRejectsTablesWithoutDisabledFlag(t *testing.T) {
	l := NewLifecycle(nil)
	for _, table := range []string{"chats", "messages", "platforms"} {
		err := l.SetDisabled(context.Background(), table, 1, true)
		require.ErrorIs(t, err, ErrUnsupported, table)
	}
	assert.True(t, Supports("accounts"))
	assert.True(t, Supports("clients"))
	assert.True(t, Supports("agents"))
}
