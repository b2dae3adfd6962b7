package credential

import "sync"

// MemoryStore keeps the credential in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token *string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Set(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = &token
	return nil
}

func (m *MemoryStore) Get() (Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == nil {
		return Credential{}, ErrAbsent
	}
	return New(*m.token), nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = nil
	return nil
}

func (m *MemoryStore) IsAuthenticated() bool { return present(m) }
