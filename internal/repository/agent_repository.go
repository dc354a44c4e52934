package repository

import (
	"context"
	"fmt"

	"chatbot_platform/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const agentColumns = "id, account_id, system_prompt, disabled, created_at"

type AgentRepository struct {
	db        *pgxpool.Pool
	lifecycle *Lifecycle
}

func NewAgentRepository(db *pgxpool.Pool, lifecycle *Lifecycle) *AgentRepository {
	return &AgentRepository{db: db, lifecycle: lifecycle}
}

func scanAgent(row interface{ Scan(...any) error }) (*entities.Agent, error) {
	var a entities.Agent
	if err := row.Scan(&a.ID, &a.AccountID, &a.SystemPrompt, &a.Disabled, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Tokens = []entities.PlatformToken{}
	return &a, nil
}

func insertTokens(ctx context.Context, tx pgx.Tx, agentID int64, tokens []entities.PlatformToken) error {
	for _, t := range tokens {
		if _, err := tx.Exec(ctx,
			"INSERT INTO agent_tokens (agent_id, platform_id, token) VALUES ($1, $2, $3)",
			agentID, t.PlatformID, t.Token); err != nil {
			return translate(err, "agent token")
		}
	}
	return nil
}

// Create stores the agent and its platform tokens in one transaction.
// Token PlatformIDs must already be resolved.
func (r *AgentRepository) Create(ctx context.Context, agent *entities.Agent) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO agents (account_id, system_prompt)
		VALUES ($1, $2)
		RETURNING id, disabled, created_at
	`, agent.AccountID, agent.SystemPrompt).Scan(&agent.ID, &agent.Disabled, &agent.CreatedAt)
	if err != nil {
		return translate(err, "agent")
	}
	if err := insertTokens(ctx, tx, agent.ID, agent.Tokens); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *AgentRepository) get(ctx context.Context, query string, id int64) (*entities.Agent, error) {
	a, err := scanAgent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, fmt.Sprintf("agent %d", id))
	}
	if err := r.loadTokens(ctx, []*entities.Agent{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// Get returns an active agent with its tokens.
func (r *AgentRepository) Get(ctx context.Context, id int64) (*entities.Agent, error) {
	return r.get(ctx, "SELECT "+agentColumns+" FROM agents WHERE id = $1 AND NOT disabled", id)
}

// GetIncludingDisabled is used to build lifecycle payloads for agents that are being deleted.
func (r *AgentRepository) GetIncludingDisabled(ctx context.Context, id int64) (*entities.Agent, error) {
	return r.get(ctx, "SELECT "+agentColumns+" FROM agents WHERE id = $1", id)
}

func (r *AgentRepository) list(ctx context.Context, where string, args ...any) ([]entities.Agent, error) {
	rows, err := r.db.Query(ctx, "SELECT "+agentColumns+" FROM agents WHERE "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, translate(err, "agents")
	}
	var agents []*entities.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		agents = append(agents, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadTokens(ctx, agents); err != nil {
		return nil, err
	}

	out := make([]entities.Agent, 0, len(agents))
	for _, a := range agents {
		out = append(out, *a)
	}
	return out, nil
}

// ListActive returns every enabled agent; the relay rebuilds its registry from it.
func (r *AgentRepository) ListActive(ctx context.Context) ([]entities.Agent, error) {
	return r.list(ctx, "NOT disabled")
}

func (r *AgentRepository) ListByAccount(ctx context.Context, accountID int64) ([]entities.Agent, error) {
	return r.list(ctx, "account_id = $1 AND NOT disabled", accountID)
}

func (r *AgentRepository) loadTokens(ctx context.Context, agents []*entities.Agent) error {
	if len(agents) == 0 {
		return nil
	}
	byID := make(map[int64]*entities.Agent, len(agents))
	ids := make([]int64, 0, len(agents))
	for _, a := range agents {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	rows, err := r.db.Query(ctx, `
		SELECT t.agent_id, t.platform_id, p.name, t.token
		FROM agent_tokens t JOIN platforms p ON p.id = t.platform_id
		WHERE t.agent_id = ANY($1)
		ORDER BY t.agent_id, t.platform_id
	`, ids)
	if err != nil {
		return fmt.Errorf("load agent tokens: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var agentID int64
		var t entities.PlatformToken
		if err := rows.Scan(&agentID, &t.PlatformID, &t.PlatformName, &t.Token); err != nil {
			return err
		}
		if a, ok := byID[agentID]; ok {
			a.Tokens = append(a.Tokens, t)
		}
	}
	return rows.Err()
}

// Update merges the non-nil patch fields. A non-nil token list replaces the stored set.
func (r *AgentRepository) Update(ctx context.Context, id int64, p entities.AgentPatch) (*entities.Agent, error) {
	if p.Empty() {
		return nil, ErrEmptyUpdate
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var b patch
	if p.SystemPrompt != nil {
		b.set("system_prompt", *p.SystemPrompt)
	}
	if p.Disabled != nil {
		b.set("disabled", *p.Disabled)
	}
	if b.empty() {
		// token-only update still has to prove the agent exists
		b.set("id", id)
	}
	query, args := b.sql("agents", id, "id")
	var got int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&got); err != nil {
		return nil, translate(err, fmt.Sprintf("agent %d", id))
	}

	if p.Tokens != nil {
		if _, err := tx.Exec(ctx, "DELETE FROM agent_tokens WHERE agent_id = $1", id); err != nil {
			return nil, fmt.Errorf("clear agent tokens: %w", err)
		}
		if err := insertTokens(ctx, tx, id, *p.Tokens); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return r.GetIncludingDisabled(ctx, id)
}

func (r *AgentRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.lifecycle.SetDisabled(ctx, "agents", id, true)
}

func (r *AgentRepository) Reactivate(ctx context.Context, id int64) error {
	return r.lifecycle.SetDisabled(ctx, "agents", id, false)
}
