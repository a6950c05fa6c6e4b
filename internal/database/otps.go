package database

import (
	"context"
	"fmt"

	"construction-site-api-server/internal/auth"
	"construction-site-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type OTPStore struct {
	coll *mongo.Collection
}

func NewOTPStore(db *mongo.Database) *OTPStore {
	return &OTPStore{coll: db.Collection(OTPs)}
}

// RetireOpen marks every open code of userID as consumed.
func (s *OTPStore) RetireOpen(ctx context.Context, userID string) error {
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"userId": userID, "consumed": false},
		bson.M{"$set": bson.M{"consumed": true}})
	if err != nil {
		return fmt.Errorf("retire otps of %s: %w", userID, err)
	}
	return nil
}

func (s *OTPStore) Insert(ctx context.Context, o *models.OTP) error {
	result, err := s.coll.InsertOne(ctx, o)
	if err != nil {
		return fmt.Errorf("insert otp: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		o.ID = oid
	}
	return nil
}

func (s *OTPStore) Find(ctx context.Context, otpID, userID string) (models.OTP, error) {
	var o models.OTP
	err := s.coll.FindOne(ctx, bson.M{"otpId": otpID, "userId": userID}).Decode(&o)
	return o, notFound(err)
}

// CountAttempt charges one verification attempt to an open code and returns
// the code as it was before the attempt. The check and the increment are a
// single update, so concurrent guesses cannot exceed the limit. A code that is
// unknown, consumed or out of attempts yields ErrNotFound.
func (s *OTPStore) CountAttempt(ctx context.Context, otpID, userID string) (models.OTP, error) {
	var o models.OTP
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{
			"otpId":    otpID,
			"userId":   userID,
			"consumed": false,
			"attempts": bson.M{"$lt": auth.MaxOTPAttempts},
		},
		bson.M{"$inc": bson.M{"attempts": 1}}).Decode(&o)
	return o, notFound(err)
}

// Consume marks the code used. It reports false when another request already
// consumed it.
func (s *OTPStore) Consume(ctx context.Context, otpID string) (bool, error) {
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"otpId": otpID, "consumed": false},
		bson.M{"$set": bson.M{"consumed": true}})
	if err != nil {
		return false, fmt.Errorf("consume otp %s: %w", otpID, err)
	}
	return result.ModifiedCount == 1, nil
}

// Reissue stores next's code and expiry, provided the code is still open and
// has not been reissued since prev was read. Otherwise it returns ErrNotFound.
func (s *OTPStore) Reissue(ctx context.Context, prev, next models.OTP) error {
	result, err := s.coll.UpdateOne(ctx,
		bson.M{
			"otpId":    prev.OTPID,
			"userId":   prev.UserID,
			"consumed": false,
			"resends":  prev.Resends,
			"attempts": bson.M{"$lt": auth.MaxOTPAttempts},
		},
		bson.M{"$set": bson.M{
			"codeHash":  next.CodeHash,
			"expiresAt": next.ExpiresAt,
			"resends":   next.Resends,
		}})
	if err != nil {
		return fmt.Errorf("reissue otp %s: %w", prev.OTPID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *OTPStore) SetLoginImage(ctx context.Context, otpID, url string) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"otpId": otpID}, bson.M{"$set": bson.M{"loginImage": url}})
	if err != nil {
		return fmt.Errorf("set login image of otp %s: %w", otpID, err)
	}
	return nil
}
