package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mockbay/mockbay/pkg/endpoint"
)

const endpointCollection = "endpoints"

// MongoEndpointStore is a MongoDB-backed implementation of EndpointStore.
// A unique compound index on (path, method) backs the global uniqueness
// invariant at the storage layer as well.
type MongoEndpointStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// ConnectMongo dials MongoDB and returns a store bound to the database
// named in the URI (falling back to dbName). This is the only operation
// in the system that may be fatal at startup.
func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoEndpointStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	store := &MongoEndpointStore{
		client: client,
		coll:   client.Database(dbName).Collection(endpointCollection),
	}
	if err := store.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// NewMongoEndpointStore wraps an existing collection. Used by tests.
func NewMongoEndpointStore(coll *mongo.Collection) *MongoEndpointStore {
	return &MongoEndpointStore{coll: coll}
}

// Close disconnects the underlying client. No-op for stores wrapped
// around a caller-owned collection.
func (s *MongoEndpointStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *MongoEndpointStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "path", Value: 1}, {Key: "method", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create (path, method) index: %w", err)
	}
	return nil
}

// FindByID retrieves a definition by ID.
func (s *MongoEndpointStore) FindByID(ctx context.Context, id string) (*endpoint.Definition, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// FindByPathMethod retrieves the definition occupying (path, method).
func (s *MongoEndpointStore) FindByPathMethod(ctx context.Context, path, method string) (*endpoint.Definition, error) {
	return s.findOne(ctx, bson.M{"path": path, "method": method})
}

// FindWebSocketByPath retrieves a WebSocket-only definition by path.
func (s *MongoEndpointStore) FindWebSocketByPath(ctx context.Context, path string) (*endpoint.Definition, error) {
	return s.findOne(ctx, bson.M{"path": path, "isWebSocket": true})
}

func (s *MongoEndpointStore) findOne(ctx context.Context, filter bson.M) (*endpoint.Definition, error) {
	var def endpoint.Definition
	err := s.coll.FindOne(ctx, filter).Decode(&def)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find definition: %w", err)
	}
	return &def, nil
}

// ListByOwner returns all definitions created by owner, newest first.
func (s *MongoEndpointStore) ListByOwner(ctx context.Context, owner string) ([]*endpoint.Definition, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{"userId": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	defs := make([]*endpoint.Definition, 0)
	for cur.Next(ctx) {
		var def endpoint.Definition
		if err := cur.Decode(&def); err != nil {
			return nil, fmt.Errorf("decode definition: %w", err)
		}
		defs = append(defs, &def)
	}
	return defs, cur.Err()
}

// Insert stores a new definition.
func (s *MongoEndpointStore) Insert(ctx context.Context, def *endpoint.Definition) error {
	if _, err := s.coll.InsertOne(ctx, def); err != nil {
		return fmt.Errorf("insert definition: %w", err)
	}
	return nil
}

// Update replaces the definition with the given ID.
func (s *MongoEndpointStore) Update(ctx context.Context, def *endpoint.Definition) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": def.ID}, def)
	if err != nil {
		return fmt.Errorf("update definition: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a definition by ID.
func (s *MongoEndpointStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete definition: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Ensure MongoEndpointStore implements EndpointStore.
var _ EndpointStore = (*MongoEndpointStore)(nil)
