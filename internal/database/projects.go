package database

import (
	"context"
	"fmt"
	"time"

	"construction-site-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProjectStore struct {
	coll *mongo.Collection
}

func NewProjectStore(db *mongo.Database) *ProjectStore {
	return &ProjectStore{coll: db.Collection(Projects)}
}

func (s *ProjectStore) Create(ctx context.Context, p *models.Project) error {
	result, err := s.coll.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

// List returns every project, newest first.
func (s *ProjectStore) List(ctx context.Context) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectStore) Get(ctx context.Context, id string) (models.Project, error) {
	var p models.Project
	oid, err := objectID(id)
	if err != nil {
		return p, err
	}
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	return p, notFound(err)
}

// Update replaces the editable fields of the project. An empty status keeps
// the current one.
func (s *ProjectStore) Update(ctx context.Context, id string, p models.Project) error {
	set := bson.M{
		"name":        p.Name,
		"description": p.Description,
		"startDate":   p.StartDate,
		"updatedAt":   time.Now(),
	}
	if p.Status != "" {
		set["status"] = p.Status
	}
	return s.set(ctx, id, set)
}

func (s *ProjectStore) SetStatus(ctx context.Context, id, status string) error {
	return s.set(ctx, id, bson.M{"status": status, "updatedAt": time.Now()})
}

func (s *ProjectStore) set(ctx context.Context, id string, set bson.M) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update project %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
