// internal/database/mongo.go
package database

import (
	"context"
	"fmt"
	"time"

	"construction-site-api-server/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	Users      = "users"
	OTPs       = "otps"
	Projects   = "projects"
	Employees  = "employees"
	Attendance = "attendance"
	Materials  = "materials"
)

// Connect opens the client and pings the primary.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

func indexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		Users: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		OTPs: {
			{Keys: bson.D{{Key: "otpId", Value: 1}}, Options: options.Index().SetUnique(true)},
			// Mongo removes OTPs a day after they expire.
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(24 * 60 * 60)},
		},
		Attendance: {
			{Keys: bson.D{{Key: "employeeId", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		Materials: {
			{Keys: bson.D{{Key: "matCode", Value: 1}, {Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "projectAssigned", Value: 1}}},
		},
	}
}

// EnsureIndexes creates the indexes the queries rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, models := range indexModels() {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
