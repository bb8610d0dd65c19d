package editor

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/observability"
)

// Persister is the storage boundary the editor saves to and hydrates from.
// [storage.Gateway] implements it.
type Persister interface {
	Save(ctx context.Context, snap flow.Snapshot) error
	Load(ctx context.Context) (flow.Snapshot, bool, error)
}

// Autosaver writes snapshots to a [Persister], optionally debounced.
//
// Every scheduled snapshot gets a sequence number. Writes are serialized
// and only the newest pending snapshot is written, so an older snapshot
// never lands after a newer one. A failed write is kept pending and retried
// on the next schedule or flush.
type Autosaver struct {
	p        Persister
	debounce time.Duration
	logger   *log.Logger

	mu         sync.Mutex
	seq        uint64
	pending    *flow.Snapshot
	pendingSeq uint64
	timer      *time.Timer
	lastErr    error

	saveMu  sync.Mutex
	written uint64
}

// NewAutosaver creates an autosaver. A zero debounce writes synchronously
// inside [Autosaver.Schedule].
func NewAutosaver(p Persister, debounce time.Duration, logger *log.Logger) *Autosaver {
	if logger == nil {
		logger = log.Default()
	}
	return &Autosaver{p: p, debounce: debounce, logger: logger}
}

// Schedule queues snap for writing. With debouncing the write happens once
// no further snapshot has been scheduled for the debounce interval and the
// returned error is always nil.
func (a *Autosaver) Schedule(snap flow.Snapshot) error {
	a.mu.Lock()
	a.seq++
	a.pending = &snap
	a.pendingSeq = a.seq
	if a.debounce <= 0 {
		a.mu.Unlock()
		return a.flush(context.Background())
	}
	if a.timer == nil {
		a.timer = time.AfterFunc(a.debounce, a.fire)
	} else {
		a.timer.Reset(a.debounce)
	}
	a.mu.Unlock()
	return nil
}

// Flush writes the pending snapshot, if any, immediately.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()
	return a.flush(ctx)
}

// Pending reports whether a snapshot is waiting to be written.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// Err returns the error of the most recent failed write, cleared by the
// next successful one.
func (a *Autosaver) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

func (a *Autosaver) fire() {
	_ = a.flush(context.Background())
}

func (a *Autosaver) flush(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	snap, seq := a.pending, a.pendingSeq
	a.pending = nil
	a.mu.Unlock()
	if snap == nil || seq <= a.written {
		return nil
	}

	start := time.Now()
	err := a.p.Save(ctx, *snap)
	observability.Editor().OnSave(ctx, len(snap.Nodes), len(snap.Edges), time.Since(start), err)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		if a.pending == nil {
			a.pending, a.pendingSeq = snap, seq
		}
		a.lastErr = err
		a.logger.Warn("autosave failed", "err", err)
		return err
	}
	a.written = seq
	a.lastErr = nil
	a.logger.Debug("saved", "nodes", len(snap.Nodes), "edges", len(snap.Edges))
	return nil
}
