package infrastructure

import (
	"sort"
	"sync"

	"chatbot_platform/internal/interfaces"
)

// MemoryAgentRegistry holds the relay's agents in process memory.
// It is rebuilt from the backend at startup.
type MemoryAgentRegistry struct {
	agents map[int64]interfaces.RegisteredAgent
	mu     sync.RWMutex
}

func NewMemoryAgentRegistry() *MemoryAgentRegistry {
	return &MemoryAgentRegistry{
		agents: make(map[int64]interfaces.RegisteredAgent),
	}
}

func (r *MemoryAgentRegistry) Get(agentID int64) (interfaces.RegisteredAgent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[agentID]
	return agent, ok
}

// Put inserts or replaces the entry for agent.AgentID.
func (r *MemoryAgentRegistry) Put(agent interfaces.RegisteredAgent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[agent.AgentID] = agent
}

// Evict removes the entry and returns what was stored.
func (r *MemoryAgentRegistry) Evict(agentID int64) (interfaces.RegisteredAgent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agent, ok := r.agents[agentID]
	if ok {
		delete(r.agents, agentID)
	}
	return agent, ok
}

// List returns a snapshot ordered by agent id.
func (r *MemoryAgentRegistry) List() []interfaces.RegisteredAgent {
	r.mu.RLock()
	out := make([]interfaces.RegisteredAgent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })
	return out
}
