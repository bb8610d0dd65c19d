// Package session provides the stable, opaque identifier that tags a user's
// remote saves.
//
// The id is generated once from crypto/rand and cached by a [Provider]:
//   - file: persisted under the user config dir for the CLI
//   - memory: held for the life of the process (server, tests)
//
// # Usage
//
//	p, err := session.NewFileProvider("") // ~/.config/flowcanvas/session.json
//	if err != nil {
//	    return err
//	}
//	id, err := p.ID(ctx)
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

// Session is the persisted session record.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Provider returns the session id, generating it on first use. Every call
// on the same provider returns the same id.
type Provider interface {
	ID(ctx context.Context) (string, error)
}

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// New creates a session with a fresh id.
func New() (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, CreatedAt: time.Now().UTC()}, nil
}

// MemoryProvider keeps the session id in memory.
type MemoryProvider struct {
	mu sync.Mutex
	id string
}

// NewMemoryProvider creates a provider that generates its id lazily.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{}
}

// NewFixedProvider returns a provider that always reports id.
func NewFixedProvider(id string) *MemoryProvider {
	return &MemoryProvider{id: id}
}

// ID returns the cached id, generating it on first call.
func (p *MemoryProvider) ID(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.id == "" {
		id, err := GenerateID()
		if err != nil {
			return "", err
		}
		p.id = id
	}
	return p.id, nil
}

var _ Provider = (*MemoryProvider)(nil)
