// internal/auth/otp.go
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"construction-site-api-server/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	OTPDigits      = 4
	MaxOTPAttempts = 5
	// MaxOTPResends bounds how often one login may ask for a new code.
	MaxOTPResends = 3
)

var (
	ErrOTPExpired         = errors.New("otp expired")
	ErrOTPUsed            = errors.New("otp already used")
	ErrOTPMismatch        = errors.New("invalid otp")
	ErrOTPTooManyAttempts = errors.New("too many otp attempts")
	ErrOTPTooManyResends  = errors.New("too many otp resends")
)

// NewOTP creates a one-time code for userID valid for ttl. Only the bcrypt
// hash is kept on the returned record; the plain code is returned separately
// so it can be delivered once.
func NewOTP(userID string, now time.Time, ttl time.Duration) (string, models.OTP, error) {
	code, hash, err := newCode()
	if err != nil {
		return "", models.OTP{}, err
	}
	return code, models.OTP{
		OTPID:     uuid.New().String(),
		UserID:    userID,
		CodeHash:  hash,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// ReissueOTP gives a pending login a fresh code valid for ttl. The otpId and
// the attempt count carry over, so a resend never grants more guesses.
func ReissueOTP(o models.OTP, now time.Time, ttl time.Duration) (string, models.OTP, error) {
	switch {
	case o.Consumed:
		return "", models.OTP{}, ErrOTPUsed
	case o.Attempts >= MaxOTPAttempts:
		return "", models.OTP{}, ErrOTPTooManyAttempts
	case o.Resends >= MaxOTPResends:
		return "", models.OTP{}, ErrOTPTooManyResends
	}
	code, hash, err := newCode()
	if err != nil {
		return "", models.OTP{}, err
	}
	next := o
	next.CodeHash = hash
	next.ExpiresAt = now.Add(ttl)
	next.Resends++
	return code, next, nil
}

func newCode() (string, string, error) {
	code, err := randomDigits(OTPDigits)
	if err != nil {
		return "", "", fmt.Errorf("generate otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	if err != nil {
		return "", "", fmt.Errorf("hash otp: %w", err)
	}
	return code, string(hash), nil
}

// VerifyOTP checks code against o at time now. The caller persists the
// attempt counter and the consumed flag.
func VerifyOTP(o models.OTP, code string, now time.Time) error {
	switch {
	case o.Consumed:
		return ErrOTPUsed
	case o.Attempts >= MaxOTPAttempts:
		return ErrOTPTooManyAttempts
	case !now.Before(o.ExpiresAt):
		return ErrOTPExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(o.CodeHash), []byte(code)) != nil {
		return ErrOTPMismatch
	}
	return nil
}

func randomDigits(n int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < n; i++ {
		max.Mul(max, big.NewInt(10))
	}
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v), nil
}
