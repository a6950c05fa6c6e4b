// internal/database/seeder.go
package database

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"construction-site-api-server/config"
	"construction-site-api-server/internal/auth"
	"construction-site-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// NewAdmin builds the first admin account from the seed config.
func NewAdmin(cfg config.SeedConfig, now time.Time) (models.User, error) {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return models.User{}, errors.New("seed admin username and password are required")
	}
	hashedPassword, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		Username:  cfg.AdminUsername,
		Password:  hashedPassword,
		Phone:     cfg.AdminPhone,
		Role:      models.RoleAdmin,
		CreatedAt: now,
	}, nil
}

// SeedAdmin creates the admin account unless a user with that name exists.
// Without a configured password seeding is skipped.
func SeedAdmin(ctx context.Context, db *mongo.Database, cfg config.SeedConfig, log *slog.Logger) error {
	if cfg.AdminPassword == "" {
		log.Info("seed admin password not set, seeding skipped")
		return nil
	}
	userCollection := db.Collection(Users)

	count, err := userCollection.CountDocuments(ctx, bson.M{"username": cfg.AdminUsername})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Info("admin already exists, seeding skipped", "username", cfg.AdminUsername)
		return nil
	}

	admin, err := NewAdmin(cfg, time.Now())
	if err != nil {
		return err
	}
	if _, err = userCollection.InsertOne(ctx, admin); err != nil {
		return err
	}

	log.Info("admin seeded", "username", cfg.AdminUsername)
	return nil
}
