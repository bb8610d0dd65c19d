package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const sessionFile = "session.json"

// FileProvider persists the session in a JSON file so the id survives
// restarts of the CLI.
type FileProvider struct {
	mu      sync.RWMutex
	baseDir string
	cached  *Session
}

// NewFileProvider creates a file-backed provider.
// If baseDir is empty, defaults to the flowcanvas directory under the user
// config dir (honoring XDG_CONFIG_HOME).
func NewFileProvider(baseDir string) (*FileProvider, error) {
	if baseDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get config dir: %w", err)
		}
		baseDir = filepath.Join(dir, "flowcanvas")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileProvider{baseDir: baseDir}, nil
}

// ID returns the stored session id, creating and persisting one if the file
// is missing or unreadable.
func (p *FileProvider) ID(ctx context.Context) (string, error) {
	p.mu.RLock()
	if p.cached != nil {
		id := p.cached.ID
		p.mu.RUnlock()
		return id, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached != nil {
		return p.cached.ID, nil
	}

	if sess, err := p.read(); err == nil && sess.ID != "" {
		p.cached = sess
		return sess.ID, nil
	}

	sess, err := New()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	if err := p.write(sess); err != nil {
		return "", err
	}
	p.cached = sess
	return sess.ID, nil
}

// Reset removes the stored session. The next ID call generates a new one.
func (p *FileProvider) Reset(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = nil
	if err := os.Remove(p.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Path returns the session file path.
func (p *FileProvider) Path() string {
	return filepath.Join(p.baseDir, sessionFile)
}

func (p *FileProvider) read() (*Session, error) {
	data, err := os.ReadFile(p.Path())
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &sess, nil
}

func (p *FileProvider) write(sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(p.Path(), data, 0600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

var _ Provider = (*FileProvider)(nil)
