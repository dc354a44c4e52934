package repository

import (
	"context"
	"fmt"

	"chatbot_platform/internal/entities"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PlatformRepository struct {
	db *pgxpool.Pool
}

func NewPlatformRepository(db *pgxpool.Pool) *PlatformRepository {
	return &PlatformRepository{db: db}
}

// Seed creates the named platforms if they do not exist yet.
func (r *PlatformRepository) Seed(ctx context.Context, names []string) error {
	for _, name := range names {
		_, err := r.db.Exec(ctx, `
			INSERT INTO platforms (name) VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`, name)
		if err != nil {
			return fmt.Errorf("seed platform %s: %w", name, err)
		}
	}
	return nil
}

func (r *PlatformRepository) Get(ctx context.Context, id int64) (*entities.Platform, error) {
	var p entities.Platform
	err := r.db.QueryRow(ctx, "SELECT id, name FROM platforms WHERE id = $1", id).Scan(&p.ID, &p.Name)
	if err != nil {
		return nil, translate(err, "platform")
	}
	return &p, nil
}

func (r *PlatformRepository) GetByName(ctx context.Context, name string) (*entities.Platform, error) {
	var p entities.Platform
	err := r.db.QueryRow(ctx, "SELECT id, name FROM platforms WHERE lower(name) = lower($1)", name).Scan(&p.ID, &p.Name)
	if err != nil {
		return nil, translate(err, "platform")
	}
	return &p, nil
}

func (r *PlatformRepository) List(ctx context.Context) ([]entities.Platform, error) {
	rows, err := r.db.Query(ctx, "SELECT id, name FROM platforms ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	platforms := []entities.Platform{}
	for rows.Next() {
		var p entities.Platform
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, rows.Err()
}
