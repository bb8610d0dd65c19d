package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcanvas/pkg/observability"
)

// logHooks reports editor, storage and layout events at debug level.
type logHooks struct {
	logger *log.Logger
}

func installHooks(logger *log.Logger) {
	h := logHooks{logger: logger}
	observability.SetEditorHooks(h)
	observability.SetStorageHooks(h)
	observability.SetLayoutHooks(h)
}

func (h logHooks) OnMutation(_ context.Context, op string, nodes, edges int) {
	h.logger.Debug("graph changed", "op", op, "nodes", nodes, "edges", edges)
}

func (h logHooks) OnSave(_ context.Context, nodes, edges int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("autosave failed", "nodes", nodes, "edges", edges, "duration", d, "err", err)
		return
	}
	h.logger.Debug("autosave", "nodes", nodes, "edges", edges, "duration", d)
}

func (h logHooks) OnLoad(_ context.Context, backend, key string, found bool, d time.Duration, err error) {
	h.logger.Debug("storage load", "backend", backend, "key", key, "found", found, "duration", d, "err", err)
}

func (h logHooks) OnStore(_ context.Context, backend, key string, size int, d time.Duration, err error) {
	h.logger.Debug("storage store", "backend", backend, "key", key, "bytes", size, "duration", d, "err", err)
}

func (h logHooks) OnLayoutStart(_ context.Context, engine string, n int) {
	h.logger.Debug("layout start", "engine", engine, "nodes", n)
}

func (h logHooks) OnLayoutComplete(_ context.Context, engine string, placed int, d time.Duration, err error) {
	h.logger.Debug("layout complete", "engine", engine, "placed", placed, "duration", d, "err", err)
}
