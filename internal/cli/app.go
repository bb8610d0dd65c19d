package cli

import (
	"context"
	"fmt"

	"github.com/matzehuels/flowcanvas/pkg/editor"
	"github.com/matzehuels/flowcanvas/pkg/layout"
	"github.com/matzehuels/flowcanvas/pkg/remote"
	"github.com/matzehuels/flowcanvas/pkg/session"
	"github.com/matzehuels/flowcanvas/pkg/storage"
)

// =============================================================================
// Wiring
// =============================================================================

// openGateway opens the configured storage backend.
func (c *CLI) openGateway(ctx context.Context) (*storage.Gateway, error) {
	store, err := storage.Open(ctx, c.cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", c.cfg.Storage.Backend, err)
	}
	return storage.NewGateway(store,
		storage.WithKey(c.cfg.Storage.Key),
		storage.WithLogger(c.Logger),
	), nil
}

// engine returns the configured layout engine.
func (c *CLI) engine() (layout.Engine, error) {
	return layout.NewEngine(c.cfg.Layout.Engine)
}

// workspace holds an open gateway and a hydrated editor.
type workspace struct {
	gw *storage.Gateway
	ed *editor.Editor
}

// openWorkspace opens storage and hydrates an editor from it. With
// debounce zero every mutation is written before the call returns.
func (c *CLI) openWorkspace(ctx context.Context, debounce bool, opts ...editor.Option) (*workspace, error) {
	gw, err := c.openGateway(ctx)
	if err != nil {
		return nil, err
	}
	engine, err := c.engine()
	if err != nil {
		gw.Close()
		return nil, err
	}

	d := c.cfg.Editor.AutosaveDebounce.Duration
	if !debounce {
		d = 0
	}
	base := []editor.Option{
		editor.WithPersister(gw),
		editor.WithAutosaveDebounce(d),
		editor.WithEngine(engine),
		editor.WithSpacing(c.cfg.Layout.Spacing),
		editor.WithDirection(c.cfg.Layout.Direction),
		editor.WithLogger(c.Logger),
	}
	ed := editor.New(append(base, opts...)...)
	if err := ed.Hydrate(ctx); err != nil {
		gw.Close()
		return nil, err
	}
	return &workspace{gw: gw, ed: ed}, nil
}

// Close flushes pending saves and closes storage.
func (w *workspace) Close(ctx context.Context) error {
	ferr := w.ed.Flush(ctx)
	cerr := w.gw.Close()
	if ferr != nil {
		return ferr
	}
	return cerr
}

// sessions returns the file-backed session provider.
func (c *CLI) sessions() (session.Provider, error) {
	return session.NewFileProvider("")
}

// openRemote returns the configured remote saver, [remote.NotConfigured]
// when no MongoDB URI is set.
func (c *CLI) openRemote(ctx context.Context, sessions session.Provider) (remote.Saver, error) {
	return remote.New(ctx, c.cfg.RemoteConfig(), sessions)
}
