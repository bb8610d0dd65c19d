// Package remote saves named copies of a flow to a shared backend.
//
// Without a configured backend every save fails with
// REMOTE_NOT_CONFIGURED; with a MongoDB URI each save inserts a document
// tagged with the caller's session id.
package remote

import (
	"context"
	"strings"

	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/session"
)

// Saver stores named flows. Save returns the backend's id for the new record.
type Saver interface {
	Save(ctx context.Context, name string, snap flow.Snapshot) (string, error)
	Close(ctx context.Context) error
}

// Config selects the remote backend. An empty MongoURI disables remote save.
type Config struct {
	MongoURI   string
	Database   string
	Collection string
}

// Defaults for [Config].
const (
	DefaultDatabase   = "flowcanvas"
	DefaultCollection = "flows"
)

// New returns a MongoDB saver when cfg has a URI and [NotConfigured]
// otherwise.
func New(ctx context.Context, cfg Config, sessions session.Provider) (Saver, error) {
	if strings.TrimSpace(cfg.MongoURI) == "" {
		return NotConfigured{}, nil
	}
	return NewMongoSaver(ctx, cfg, sessions)
}

// NotConfigured rejects every save.
type NotConfigured struct{}

// Save validates name, then fails with REMOTE_NOT_CONFIGURED.
func (NotConfigured) Save(ctx context.Context, name string, snap flow.Snapshot) (string, error) {
	if err := errors.ValidateFlowName(name); err != nil {
		return "", err
	}
	return "", errors.New(errors.ErrCodeRemoteNotConfigured, "remote storage is not configured")
}

// Close does nothing.
func (NotConfigured) Close(context.Context) error { return nil }

var _ Saver = NotConfigured{}
