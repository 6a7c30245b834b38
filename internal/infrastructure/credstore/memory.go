// Package credstore holds the in-process CredentialStore and the factory
// that selects a backend from configuration.
package credstore

import (
	"context"
	"sync"

	"github.com/taskflow/client/internal/core/domain"
)

// Memory is a CredentialStore that lives for the process only.
type Memory struct {
	mu    sync.RWMutex
	creds domain.Credentials
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(_ context.Context) (domain.Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds, nil
}

func (m *Memory) Save(_ context.Context, creds domain.Credentials) error {
	m.mu.Lock()
	m.creds = creds
	m.mu.Unlock()
	return nil
}

func (m *Memory) SetAccessToken(_ context.Context, token string) error {
	m.mu.Lock()
	m.creds.AccessToken = token
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.creds = domain.Credentials{}
	m.mu.Unlock()
	return nil
}
