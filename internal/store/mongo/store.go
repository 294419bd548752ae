// Package mongo stores identities and records in MongoDB collections.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	collUsers      = "users"
	collOnboarding = "onboarding"
	collPayroll    = "payroll"
	collGoals      = "goals"
	collTasks      = "tasks"
	collFeedback   = "feedback"
	collAttendance = "attendance"
	collLeaves     = "leaves"
)

// Store implements auth.IdentityStore and records.Store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New wraps an already connected database. Indexes are not created.
func New(db *mongo.Database) *Store {
	return &Store{client: db.Client(), db: db}
}

// Open connects to uri, verifies the primary and ensures indexes on database name.
func Open(ctx context.Context, uri, name string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	s := New(client.Database(name))
	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// Ping checks the primary.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Drop removes the database. Used by tests.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

// EnsureIndexes creates the lookup and uniqueness indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := func() *options.IndexOptions { return options.Index().SetUnique(true) }
	specs := map[string][]mongo.IndexModel{
		collUsers: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique()},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique()},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "mentor_assigned", Value: 1}}},
		},
		collOnboarding: {{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique()}},
		collPayroll:    {{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique()}},
		collAttendance: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique()},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}}, Options: unique()},
		},
	}
	for _, coll := range []string{collGoals, collTasks, collFeedback, collLeaves} {
		order := "created_at"
		if coll == collLeaves {
			order = "applied_at"
		}
		specs[coll] = []mongo.IndexModel{
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique()},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: order, Value: 1}}},
		}
	}
	for coll, models := range specs {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo: indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) coll(name string) *mongo.Collection { return s.db.Collection(name) }

// findOne decodes the first match of filter into T, returning missing when nothing matches.
func findOne[T any](ctx context.Context, c *mongo.Collection, filter bson.D, missing error) (T, error) {
	var v T
	err := c.FindOne(ctx, filter).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return v, missing
	}
	return v, err
}

func findMany[T any](ctx context.Context, c *mongo.Collection, filter bson.D, sort bson.D, limit int) ([]T, error) {
	opts := options.Find().SetSort(sort)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
