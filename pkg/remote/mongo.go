package remote

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/session"
)

const connectTimeout = 10 * time.Second

// flowDocument is the stored shape of a named flow.
type flowDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	SessionID string             `bson:"session_id"`
	Nodes     []flow.Node        `bson:"nodes"`
	Edges     []flow.Edge        `bson:"edges"`
	SavedAt   time.Time          `bson:"saved_at"`
}

// MongoSaver inserts named flows into a MongoDB collection.
type MongoSaver struct {
	client   *mongo.Client
	coll     *mongo.Collection
	sessions session.Provider
	now      func() time.Time
}

// NewMongoSaver connects to cfg.MongoURI and pings the primary.
func NewMongoSaver(ctx context.Context, cfg Config, sessions session.Provider) (*MongoSaver, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if sessions == nil {
		sessions = session.NewMemoryProvider()
	}

	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}

	return &MongoSaver{
		client:   client,
		coll:     client.Database(cfg.Database).Collection(cfg.Collection),
		sessions: sessions,
		now:      time.Now,
	}, nil
}

// Save inserts a new document for snap under name and returns its hex id.
func (s *MongoSaver) Save(ctx context.Context, name string, snap flow.Snapshot) (string, error) {
	if err := errors.ValidateFlowName(name); err != nil {
		return "", err
	}
	sid, err := s.sessions.ID(ctx)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "resolve session id")
	}

	doc := flowDocument{
		Name:      strings.TrimSpace(name),
		SessionID: sid,
		Nodes:     snap.Nodes,
		Edges:     snap.Edges,
		SavedAt:   s.now().UTC(),
	}
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeNetwork, err, "save flow %q", doc.Name)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return "", nil
}

// Close disconnects the client.
func (s *MongoSaver) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Saver = (*MongoSaver)(nil)
