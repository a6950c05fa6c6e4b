package database

import (
	"errors"
	"testing"
	"time"

	"construction-site-api-server/config"
	"construction-site-api-server/internal/auth"
	"construction-site-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestNewAdmin(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	admin, err := NewAdmin(config.SeedConfig{AdminUsername: "admin", AdminPassword: "pw", AdminPhone: "99"}, now)
	if err != nil {
		t.Fatalf("NewAdmin() error = %v", err)
	}
	if admin.Role != models.RoleAdmin || admin.Username != "admin" || admin.Phone != "99" {
		t.Errorf("NewAdmin() = %+v", admin)
	}
	if admin.Password == "pw" || !auth.CheckPasswordHash("pw", admin.Password) {
		t.Error("password not stored as a bcrypt hash")
	}

	if _, err := NewAdmin(config.SeedConfig{AdminUsername: "admin"}, now); err == nil {
		t.Error("NewAdmin() without password error = nil, want error")
	}
}

func TestIndexModels(t *testing.T) {
	idx := indexModels()
	for _, coll := range []string{Users, OTPs, Attendance, Materials} {
		if len(idx[coll]) == 0 {
			t.Errorf("no indexes for %s", coll)
		}
	}
	if *idx[Attendance][0].Options.Unique != true {
		t.Error("attendance index must be unique on employee and date")
	}
}

func TestObjectID(t *testing.T) {
	want := primitive.NewObjectID()
	if got, err := objectID(want.Hex()); err != nil || got != want {
		t.Errorf("objectID(%s) = %v, %v", want.Hex(), got, err)
	}
	if _, err := objectID("tower-b"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("objectID(tower-b) error = %v, want ErrInvalidID", err)
	}
}

func TestNotFound(t *testing.T) {
	other := errors.New("connection reset")
	tests := []struct {
		in, want error
	}{
		{nil, nil},
		{mongo.ErrNoDocuments, ErrNotFound},
		{other, other},
	}
	for _, tt := range tests {
		if got := notFound(tt.in); got != tt.want {
			t.Errorf("notFound(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
