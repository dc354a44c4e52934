package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("uniqueness violation")
	ErrEmptyUpdate = errors.New("at least one field must be provided for update")
	ErrUnsupported = errors.New("unsupported operation")
)

const uniqueViolation = "23505"

// translate maps driver errors onto the package sentinels.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s %s: %w", what, pgErr.ConstraintName, ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// patch accumulates "column = $n" assignments for partial updates.
type patch struct {
	sets []string
	args []any
}

func (p *patch) set(column string, value any) {
	p.args = append(p.args, value)
	p.sets = append(p.sets, fmt.Sprintf("%s = $%d", column, len(p.args)))
}

func (p *patch) empty() bool { return len(p.sets) == 0 }

// sql renders "UPDATE table SET ... WHERE id = $n RETURNING cols".
func (p *patch) sql(table string, id int64, returning string) (string, []any) {
	args := append(p.args, id)
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		table, strings.Join(p.sets, ", "), len(args), returning), args
}
