package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
	log  zerolog.Logger
}

// PoolOptions are the pool sizes read from configuration.
type PoolOptions struct {
	MaxConns int32
	MinConns int32
}

func NewPostgresClient(ctx context.Context, connString string, opts PoolOptions, log zerolog.Logger) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool, log: log.With().Str("component", "postgres").Logger()}

	if err := client.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

var schema = []struct {
	name string
	ddl  string
}{
	{"accounts", `
		CREATE TABLE IF NOT EXISTS accounts (
			id BIGSERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			disabled BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`},
	{"clients", `
		CREATE TABLE IF NOT EXISTS clients (
			id BIGSERIAL PRIMARY KEY,
			account_id BIGINT NOT NULL REFERENCES accounts(id),
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			disabled BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`},
	{"platforms", `
		CREATE TABLE IF NOT EXISTS platforms (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(50) UNIQUE NOT NULL
		);`},
	{"agents", `
		CREATE TABLE IF NOT EXISTS agents (
			id BIGSERIAL PRIMARY KEY,
			account_id BIGINT NOT NULL REFERENCES accounts(id),
			system_prompt TEXT NOT NULL,
			disabled BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`},
	{"agent_tokens", `
		CREATE TABLE IF NOT EXISTS agent_tokens (
			agent_id BIGINT NOT NULL REFERENCES agents(id),
			platform_id BIGINT NOT NULL REFERENCES platforms(id),
			token TEXT NOT NULL,
			PRIMARY KEY (agent_id, platform_id)
		);`},
	// One chat per (agent, platform, external chat); concurrent first messages converge on it.
	{"chats", `
		CREATE TABLE IF NOT EXISTS chats (
			id BIGSERIAL PRIMARY KEY,
			account_id BIGINT NOT NULL REFERENCES accounts(id),
			agent_id BIGINT NOT NULL REFERENCES agents(id),
			platform_id BIGINT NOT NULL REFERENCES platforms(id),
			external_id BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (agent_id, platform_id, external_id)
		);`},
	{"messages", `
		CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			chat_id BIGINT NOT NULL REFERENCES chats(id),
			role VARCHAR(16) NOT NULL,
			text TEXT NOT NULL,
			client_name VARCHAR(255),
			created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
		);`},
	{"messages_chat_idx", `CREATE INDEX IF NOT EXISTS messages_chat_id_idx ON messages (chat_id, created_at, id);`},
}

func (p *PostgresClient) Migrate(ctx context.Context) error {
	for _, s := range schema {
		if _, err := p.Pool.Exec(ctx, s.ddl); err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}

	p.log.Info().Int("tables", len(schema)).Msg("database schema ready")
	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
