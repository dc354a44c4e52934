package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// softDeletable lists the tables that carry a disabled flag.
var softDeletable = map[string]bool{
	"accounts": true,
	"clients":  true,
	"agents":   true,
}

// Lifecycle implements soft delete and reactivation for every entity that supports it.
type Lifecycle struct {
	db *pgxpool.Pool
}

func NewLifecycle(db *pgxpool.Pool) *Lifecycle {
	return &Lifecycle{db: db}
}

// Supports reports whether table rows can be soft-deleted.
func Supports(table string) bool {
	return softDeletable[table]
}

// SetDisabled flips the disabled flag of one row. Deleting an already disabled row is a no-op.
func (l *Lifecycle) SetDisabled(ctx context.Context, table string, id int64, disabled bool) error {
	if !Supports(table) {
		return fmt.Errorf("soft delete on %s: %w", table, ErrUnsupported)
	}
	tag, err := l.db.Exec(ctx, fmt.Sprintf("UPDATE %s SET disabled = $1 WHERE id = $2", table), disabled, id)
	if err != nil {
		return translate(err, table)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", table, id, ErrNotFound)
	}
	return nil
}
