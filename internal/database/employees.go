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

type EmployeeStore struct {
	coll *mongo.Collection
}

func NewEmployeeStore(db *mongo.Database) *EmployeeStore {
	return &EmployeeStore{coll: db.Collection(Employees)}
}

func (s *EmployeeStore) Create(ctx context.Context, e *models.Employee) error {
	result, err := s.coll.InsertOne(ctx, e)
	if err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		e.ID = oid
	}
	return nil
}

// List returns the employees assigned to projectID, or all of them, by name.
func (s *EmployeeStore) List(ctx context.Context, projectID string) ([]models.Employee, error) {
	filter := bson.M{}
	if projectID != "" {
		filter["assignedProjects"] = projectID
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer cursor.Close(ctx)

	employees := []models.Employee{}
	if err := cursor.All(ctx, &employees); err != nil {
		return nil, fmt.Errorf("decode employees: %w", err)
	}
	return employees, nil
}

func (s *EmployeeStore) Get(ctx context.Context, id string) (models.Employee, error) {
	var e models.Employee
	oid, err := objectID(id)
	if err != nil {
		return e, err
	}
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&e)
	return e, notFound(err)
}

// Update replaces every editable field of the employee.
func (s *EmployeeStore) Update(ctx context.Context, id string, e models.Employee) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":             e.Name,
		"phone":            e.Phone,
		"address":          e.Address,
		"role":             e.Role,
		"salaryPerDay":     e.SalaryPerDay,
		"assignedProjects": e.AssignedProjects,
		"joiningDate":      e.JoiningDate,
	}})
	if err != nil {
		return fmt.Errorf("update employee %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *EmployeeStore) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete employee %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
