// internal/models/otp.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OTP is a one-time login code. Only the bcrypt hash of the code is stored.
type OTP struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	OTPID     string             `bson:"otpId" json:"otpId"`
	UserID    string             `bson:"userId" json:"userId"`
	CodeHash  string             `bson:"codeHash" json:"-"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
	Attempts  int                `bson:"attempts" json:"-"`
	Resends   int                `bson:"resends" json:"-"`
	Consumed  bool               `bson:"consumed" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"-"`

	// LoginImage is the selfie taken at login, when one was sent.
	LoginImage string `bson:"loginImage,omitempty" json:"-"`
}
