package database

import (
	"context"
	"fmt"

	"construction-site-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AttendanceStore struct {
	coll *mongo.Collection
}

func NewAttendanceStore(db *mongo.Database) *AttendanceStore {
	return &AttendanceStore{coll: db.Collection(Attendance)}
}

// Upsert creates or replaces the record of one employee on one day.
func (s *AttendanceStore) Upsert(ctx context.Context, a models.Attendance) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"employeeId": a.EmployeeID, "date": a.Date},
		bson.M{"$set": bson.M{
			"status":    a.Status,
			"inTime":    a.InTime,
			"outTime":   a.OutTime,
			"work":      a.Work,
			"updatedAt": a.UpdatedAt,
		}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert attendance %s/%s: %w", a.EmployeeID, a.Date, err)
	}
	return nil
}

// ForEmployees returns the records of the given employees, by date.
func (s *AttendanceStore) ForEmployees(ctx context.Context, employeeIDs []string) ([]models.Attendance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{"employeeId": bson.M{"$in": employeeIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	defer cursor.Close(ctx)

	records := []models.Attendance{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode attendance: %w", err)
	}
	return records, nil
}

func (s *AttendanceStore) DeleteForEmployee(ctx context.Context, employeeID string) (int64, error) {
	result, err := s.coll.DeleteMany(ctx, bson.M{"employeeId": employeeID})
	if err != nil {
		return 0, fmt.Errorf("delete attendance of %s: %w", employeeID, err)
	}
	return result.DeletedCount, nil
}
