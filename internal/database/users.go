package database

import (
	"context"
	"fmt"

	"construction-site-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(Users)}
}

// Create inserts u. A taken username yields ErrDuplicate.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	result, err := s.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

// List returns the users of projectID, or all users, by username.
func (s *UserStore) List(ctx context.Context, projectID string) ([]models.User, error) {
	filter := bson.M{}
	if projectID != "" {
		filter["projectAssigned"] = projectID
	}
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *UserStore) Get(ctx context.Context, id string) (models.User, error) {
	var u models.User
	oid, err := objectID(id)
	if err != nil {
		return u, err
	}
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	return u, notFound(err)
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	return u, notFound(err)
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ProfileUpdate lists the profile fields to change. Empty fields are kept.
type ProfileUpdate struct {
	Username     string
	PasswordHash string
	Image        string
}

func (p ProfileUpdate) Empty() bool {
	return p.Username == "" && p.PasswordHash == "" && p.Image == ""
}

// UpdateProfile applies p and returns the updated user.
func (s *UserStore) UpdateProfile(ctx context.Context, id string, p ProfileUpdate) (models.User, error) {
	var u models.User
	oid, err := objectID(id)
	if err != nil {
		return u, err
	}
	set := bson.M{}
	if p.Username != "" {
		set["username"] = p.Username
	}
	if p.PasswordHash != "" {
		set["password"] = p.PasswordHash
	}
	if p.Image != "" {
		set["image"] = p.Image
	}

	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if mongo.IsDuplicateKeyError(err) {
		return u, ErrDuplicate
	}
	return u, notFound(err)
}
