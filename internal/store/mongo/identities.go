package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"hrms.org/internal/auth"
)

func (s *Store) CreateIdentity(ctx context.Context, id auth.Identity) error {
	_, err := s.coll(collUsers).InsertOne(ctx, id)
	if mongo.IsDuplicateKeyError(err) {
		return auth.ErrDuplicateEmail
	}
	return err
}

func (s *Store) IdentityByID(ctx context.Context, id string) (auth.Identity, error) {
	return findOne[auth.Identity](ctx, s.coll(collUsers), bson.D{{Key: "id", Value: id}}, auth.ErrIdentityNotFound)
}

func (s *Store) IdentityByEmail(ctx context.Context, email string) (auth.Identity, error) {
	return findOne[auth.Identity](ctx, s.coll(collUsers), bson.D{{Key: "email", Value: email}}, auth.ErrIdentityNotFound)
}

func (s *Store) CountIdentities(ctx context.Context, f auth.IdentityFilter) (int, error) {
	n, err := s.coll(collUsers).CountDocuments(ctx, identityFilter(f))
	return int(n), err
}

func (s *Store) ListIdentities(ctx context.Context, f auth.IdentityFilter) ([]auth.Identity, error) {
	return findMany[auth.Identity](ctx, s.coll(collUsers), identityFilter(f),
		bson.D{{Key: "created_at", Value: -1}, {Key: "id", Value: -1}}, f.Limit)
}

func (s *Store) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return s.setIdentityField(ctx, id, "password_hash", hash)
}

func (s *Store) SetProfilePicture(ctx context.Context, id, dataURL string) error {
	return s.setIdentityField(ctx, id, "profile_picture", dataURL)
}

func (s *Store) SetResume(ctx context.Context, id string, r auth.Resume) error {
	return s.setIdentityField(ctx, id, "resume", r)
}

func (s *Store) setIdentityField(ctx context.Context, id, field string, value any) error {
	res, err := s.coll(collUsers).UpdateOne(ctx,
		bson.D{{Key: "id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: field, Value: value}}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return auth.ErrIdentityNotFound
	}
	return nil
}

func identityFilter(f auth.IdentityFilter) bson.D {
	filter := bson.D{}
	if f.Role != "" {
		filter = append(filter, bson.E{Key: "role", Value: string(f.Role)})
	}
	if f.MentorID != "" {
		filter = append(filter, bson.E{Key: "mentor_assigned", Value: f.MentorID})
	}
	return filter
}
