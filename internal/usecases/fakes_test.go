package usecases

import (
	"context"
	"fmt"
	"sync"

	"chatbot_platform/internal/entities"
	"chatbot_platform/internal/interfaces"
	"chatbot_platform/internal/repository"
)

// In-memory stores mirroring the visibility rules of the postgres repositories.

type memAccounts struct {
	mu   sync.Mutex
	rows map[int64]*entities.Account
	next int64
}

func newMemAccounts() *memAccounts { return &memAccounts{rows: map[int64]*entities.Account{}} }

func (m *memAccounts) Create(_ context.Context, a *entities.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == a.Email {
			return fmt.Errorf("account accounts_email_key: %w", repository.ErrConflict)
		}
	}
	m.next++
	a.ID = m.next
	cp := *a
	m.rows[a.ID] = &cp
	return nil
}

func (m *memAccounts) GetIncludingDisabled(_ context.Context, id int64) (*entities.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccounts) Get(ctx context.Context, id int64) (*entities.Account, error) {
	a, err := m.GetIncludingDisabled(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Disabled {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*entities.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.rows {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memAccounts) Update(ctx context.Context, id int64, p entities.AccountPatch) (*entities.Account, error) {
	if p.Empty() {
		return nil, repository.ErrEmptyUpdate
	}
	m.mu.Lock()
	a, ok := m.rows[id]
	if !ok {
		m.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	if p.Email != nil {
		a.Email = *p.Email
	}
	if p.PasswordHash != nil {
		a.PasswordHash = *p.PasswordHash
	}
	if p.Disabled != nil {
		a.Disabled = *p.Disabled
	}
	m.mu.Unlock()
	return m.GetIncludingDisabled(ctx, id)
}

func (m *memAccounts) SoftDelete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Disabled = true
	return nil
}

func (m *memAccounts) Reactivate(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Disabled = false
	return nil
}

type memClients struct {
	mu   sync.Mutex
	rows map[int64]*entities.Client
	next int64
}

func newMemClients() *memClients { return &memClients{rows: map[int64]*entities.Client{}} }

func (m *memClients) Create(_ context.Context, c *entities.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == c.Email {
			return fmt.Errorf("client clients_email_key: %w", repository.ErrConflict)
		}
	}
	m.next++
	c.ID = m.next
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *memClients) Get(_ context.Context, id int64) (*entities.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok || c.Disabled {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memClients) GetByEmail(_ context.Context, email string) (*entities.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memClients) ListByAccount(_ context.Context, accountID int64) ([]entities.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.Client
	for id := int64(1); id <= m.next; id++ {
		if c, ok := m.rows[id]; ok && c.AccountID == accountID && !c.Disabled {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memClients) Update(ctx context.Context, id int64, p entities.ClientPatch) (*entities.Client, error) {
	if p.Empty() {
		return nil, repository.ErrEmptyUpdate
	}
	m.mu.Lock()
	c, ok := m.rows[id]
	if !ok {
		m.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.PasswordHash != nil {
		c.PasswordHash = *p.PasswordHash
	}
	if p.Disabled != nil {
		c.Disabled = *p.Disabled
	}
	cp := *c
	m.mu.Unlock()
	return &cp, nil
}

func (m *memClients) SoftDelete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok || c.Disabled {
		return repository.ErrNotFound
	}
	c.Disabled = true
	return nil
}

type memPlatforms struct{ rows []entities.Platform }

func newMemPlatforms() *memPlatforms {
	return &memPlatforms{rows: []entities.Platform{{ID: 1, Name: entities.PlatformTelegram}, {ID: 2, Name: entities.PlatformWhatsApp}}}
}

func (m *memPlatforms) Get(_ context.Context, id int64) (*entities.Platform, error) {
	for _, p := range m.rows {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memPlatforms) GetByName(_ context.Context, name string) (*entities.Platform, error) {
	for _, p := range m.rows {
		if p.Name == name {
			cp := p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memPlatforms) List(context.Context) ([]entities.Platform, error) {
	return append([]entities.Platform(nil), m.rows...), nil
}

type memAgents struct {
	mu   sync.Mutex
	rows map[int64]*entities.Agent
	next int64
}

func newMemAgents() *memAgents { return &memAgents{rows: map[int64]*entities.Agent{}} }

func (m *memAgents) Create(_ context.Context, a *entities.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	a.ID = m.next
	cp := *a
	m.rows[a.ID] = &cp
	return nil
}

func (m *memAgents) GetIncludingDisabled(_ context.Context, id int64) (*entities.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAgents) Get(ctx context.Context, id int64) (*entities.Agent, error) {
	a, err := m.GetIncludingDisabled(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Disabled {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (m *memAgents) list(keep func(*entities.Agent) bool) []entities.Agent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.Agent
	for id := int64(1); id <= m.next; id++ {
		if a, ok := m.rows[id]; ok && keep(a) {
			out = append(out, *a)
		}
	}
	return out
}

func (m *memAgents) ListActive(context.Context) ([]entities.Agent, error) {
	return m.list(func(a *entities.Agent) bool { return !a.Disabled }), nil
}

func (m *memAgents) ListByAccount(_ context.Context, accountID int64) ([]entities.Agent, error) {
	return m.list(func(a *entities.Agent) bool { return !a.Disabled && a.AccountID == accountID }), nil
}

func (m *memAgents) Update(ctx context.Context, id int64, p entities.AgentPatch) (*entities.Agent, error) {
	if p.Empty() {
		return nil, repository.ErrEmptyUpdate
	}
	m.mu.Lock()
	a, ok := m.rows[id]
	if !ok {
		m.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	if p.SystemPrompt != nil {
		a.SystemPrompt = *p.SystemPrompt
	}
	if p.Disabled != nil {
		a.Disabled = *p.Disabled
	}
	if p.Tokens != nil {
		a.Tokens = *p.Tokens
	}
	m.mu.Unlock()
	return m.GetIncludingDisabled(ctx, id)
}

func (m *memAgents) setDisabled(id int64, disabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Disabled = disabled
	return nil
}

func (m *memAgents) SoftDelete(_ context.Context, id int64) error { return m.setDisabled(id, true) }
func (m *memAgents) Reactivate(_ context.Context, id int64) error { return m.setDisabled(id, false) }

type memChats struct {
	mu   sync.Mutex
	rows []entities.Chat
}

func (m *memChats) Get(_ context.Context, id int64) (*entities.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memChats) FindByExternal(_ context.Context, agentID, platformID, externalID int64) (*entities.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.AgentID == agentID && c.PlatformID == platformID && c.ExternalID == externalID {
			cp := c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memChats) Create(ctx context.Context, chat *entities.Chat) (*entities.Chat, bool, error) {
	if existing, err := m.FindByExternal(ctx, chat.AgentID, chat.PlatformID, chat.ExternalID); err == nil {
		return existing, false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *chat
	cp.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, cp)
	return &cp, true, nil
}

type memMessages struct {
	mu   sync.Mutex
	rows []entities.Message
}

func (m *memMessages) ListByChat(_ context.Context, chatID int64) ([]entities.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.Message
	for _, msg := range m.rows {
		if msg.ChatID == chatID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memMessages) CreateTurn(_ context.Context, inbound, reply *entities.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range []*entities.Message{inbound, reply} {
		msg.ID = int64(len(m.rows) + 1)
		m.rows = append(m.rows, *msg)
	}
	return nil
}

// stubCompleter records what it was asked and answers with reply or err.
type stubCompleter struct {
	reply   string
	err     error
	calls   int
	history []entities.Message
	prompt  string
}

func (s *stubCompleter) Complete(_ context.Context, systemPrompt string, history []entities.Message, input entities.InboundMessage) (string, error) {
	s.calls++
	s.prompt = systemPrompt
	s.history = history
	if s.err != nil {
		return "", s.err
	}
	if s.reply != "" {
		return s.reply, nil
	}
	return "Agent: " + input.Text, nil
}

type sentEvent struct {
	Event string
	Agent entities.Agent
}

type recordingNotifier struct {
	events []sentEvent
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, event string, agent *entities.Agent) error {
	r.events = append(r.events, sentEvent{Event: event, Agent: *agent})
	return r.err
}

var (
	_ AccountStore             = (*memAccounts)(nil)
	_ ClientStore              = (*memClients)(nil)
	_ AgentStore               = (*memAgents)(nil)
	_ PlatformStore            = (*memPlatforms)(nil)
	_ ChatStore                = (*memChats)(nil)
	_ MessageStore             = (*memMessages)(nil)
	_ interfaces.Completer     = (*stubCompleter)(nil)
	_ interfaces.AgentNotifier = (*recordingNotifier)(nil)
)
