package session

import (
	"context"
	"sync"
	"time"
)

// State is everything the client keeps between runs.
type State struct {
	AccessToken string            `json:"accessToken"`
	DeviceID    string            `json:"deviceId"`
	Cookies     map[string]string `json:"cookies,omitempty"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Store persists State. Load returns a zero State and no error when nothing was stored yet.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, st State) error
}

// MemoryStore keeps state for the lifetime of the process.
type MemoryStore struct {
	mu    sync.Mutex
	state State
	saves int
}

func NewMemoryStore(initial State) *MemoryStore {
	return &MemoryStore{state: initial}
}

func (m *MemoryStore) Load(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneState(m.state), nil
}

func (m *MemoryStore) Save(ctx context.Context, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = cloneState(st)
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func cloneState(st State) State {
	if st.Cookies != nil {
		c := make(map[string]string, len(st.Cookies))
		for k, v := range st.Cookies {
			c[k] = v
		}
		st.Cookies = c
	}
	return st
}
