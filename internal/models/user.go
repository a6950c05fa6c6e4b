// internal/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User struct matches the document in MongoDB. Password holds the bcrypt hash
// and is never serialized to JSON.
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username        string             `bson:"username" json:"username"`
	Password        string             `bson:"password" json:"-"`
	Phone           string             `bson:"phone" json:"phone"`
	Role            string             `bson:"role" json:"role"`
	ProjectAssigned string             `bson:"projectAssigned,omitempty" json:"projectAssigned,omitempty"`
	Image           string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
