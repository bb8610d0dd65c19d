package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/observability"
)

// DefaultKey is the single well-known key the diagram is stored under.
const DefaultKey = "flow-data"

// Document is the stored form of a snapshot.
type Document struct {
	Nodes   []flow.Node `json:"nodes"`
	Edges   []flow.Edge `json:"edges"`
	SavedAt time.Time   `json:"savedAt"`
}

// Snapshot returns the graph part of the document.
func (d Document) Snapshot() flow.Snapshot {
	return flow.Snapshot{Nodes: d.Nodes, Edges: d.Edges}
}

// wireDocument distinguishes a missing array from an empty one.
type wireDocument struct {
	Nodes   *[]flow.Node `json:"nodes"`
	Edges   *[]flow.Edge `json:"edges"`
	SavedAt time.Time    `json:"savedAt"`
}

// Gateway serializes snapshots to a [Store] under one key. Every save
// overwrites the previous one; there is no versioning.
type Gateway struct {
	store   Store
	key     string
	now     func() time.Time
	logger  *log.Logger
	backend string
}

// GatewayOption configures a [Gateway].
type GatewayOption func(*Gateway)

// WithKey overrides [DefaultKey].
func WithKey(key string) GatewayOption {
	return func(g *Gateway) {
		if key != "" {
			g.key = key
		}
	}
}

// WithClock replaces the clock used for SavedAt.
func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) { g.now = now }
}

// WithLogger sets the logger for swallowed decode failures.
func WithLogger(logger *log.Logger) GatewayOption {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGateway creates a gateway over store.
func NewGateway(store Store, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		store:   store,
		key:     DefaultKey,
		now:     time.Now,
		logger:  log.Default(),
		backend: backendName(store),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Key returns the storage key.
func (g *Gateway) Key() string { return g.key }

// Save writes a timestamped document for snap, replacing any prior one.
// Network-backed stores are retried with backoff.
func (g *Gateway) Save(ctx context.Context, snap flow.Snapshot) error {
	start := time.Now()
	doc := Document{Nodes: snap.Nodes, Edges: snap.Edges, SavedAt: g.now().UTC()}
	if doc.Nodes == nil {
		doc.Nodes = []flow.Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []flow.Edge{}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	err = RetryWithBackoff(ctx, func() error {
		return g.store.Set(ctx, g.key, data)
	})
	observability.Storage().OnStore(ctx, g.backend, g.key, len(data), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Fetch reads the stored document. It returns [ErrNotFound] when nothing is
// stored and [ErrCorrupt] when the value does not decode into a document
// with both node and edge arrays.
func (g *Gateway) Fetch(ctx context.Context) (Document, error) {
	var (
		data  []byte
		found bool
	)
	err := RetryWithBackoff(ctx, func() error {
		var err error
		data, found, err = g.store.Get(ctx, g.key)
		return err
	})
	if err != nil {
		return Document{}, fmt.Errorf("load snapshot: %w", err)
	}
	if !found {
		return Document{}, ErrNotFound
	}

	var wire wireDocument
	if err := json.Unmarshal(data, &wire); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if wire.Nodes == nil || wire.Edges == nil {
		return Document{}, fmt.Errorf("%w: missing nodes or edges", ErrCorrupt)
	}
	return Document{Nodes: *wire.Nodes, Edges: *wire.Edges, SavedAt: wire.SavedAt}, nil
}

// Load returns the most recent snapshot. A missing or corrupt snapshot is
// reported as absent (false, nil). Backend failures are returned so the
// caller can avoid overwriting a snapshot it could not read.
func (g *Gateway) Load(ctx context.Context) (flow.Snapshot, bool, error) {
	start := time.Now()
	doc, err := g.Fetch(ctx)
	switch {
	case err == nil:
		observability.Storage().OnLoad(ctx, g.backend, g.key, true, time.Since(start), nil)
		return doc.Snapshot(), true, nil
	case errors.Is(err, ErrNotFound):
		observability.Storage().OnLoad(ctx, g.backend, g.key, false, time.Since(start), nil)
		return flow.Snapshot{}, false, nil
	case errors.Is(err, ErrCorrupt):
		g.logger.Warn("ignoring unreadable snapshot", "key", g.key, "err", err)
		observability.Storage().OnLoad(ctx, g.backend, g.key, false, time.Since(start), nil)
		return flow.Snapshot{}, false, nil
	default:
		observability.Storage().OnLoad(ctx, g.backend, g.key, false, time.Since(start), err)
		return flow.Snapshot{}, false, err
	}
}

// Clear removes the stored snapshot.
func (g *Gateway) Clear(ctx context.Context) error {
	err := RetryWithBackoff(ctx, func() error {
		return g.store.Delete(ctx, g.key)
	})
	if err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

// Close closes the underlying store.
func (g *Gateway) Close() error {
	return g.store.Close()
}

func backendName(s Store) string {
	switch s.(type) {
	case *FileStore:
		return BackendFile
	case *MemoryStore:
		return BackendMemory
	case *SQLiteStore:
		return BackendSQLite
	case *RedisStore:
		return BackendRedis
	case *PostgresStore:
		return BackendPostgres
	default:
		return fmt.Sprintf("%T", s)
	}
}
