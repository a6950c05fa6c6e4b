// internal/api/handlers/auth_handler.go
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"construction-site-api-server/config"
	"construction-site-api-server/internal/auth"
	"construction-site-api-server/internal/database"
	"construction-site-api-server/internal/models"

	"github.com/gin-gonic/gin"
)

// AuthHandler runs the two-step login: password, then a one-time code.
type AuthHandler struct {
	Users    UserStore
	OTPs     OTPStore
	JWT      *auth.JWTManager
	OTP      config.OTPConfig
	Uploader FileUploader
	Log      *slog.Logger
}

type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	user, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		h.Log.Error("login lookup failed", "username", req.Username, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}
	if err != nil || !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid username or password"})
		return
	}

	image, err := uploadFormFile(c, h.Uploader, "loginImage", "logins")
	if err != nil && !errors.Is(err, errUploadsDisabled) {
		h.Log.Warn("login image upload failed", "userId", user.ID.Hex(), "error", err)
	}

	code, otp, err := h.issueOTP(ctx, user.ID.Hex())
	if err != nil {
		h.Log.Error("failed to issue otp", "userId", user.ID.Hex(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to issue OTP"})
		return
	}
	if image != nil {
		if err := h.OTPs.SetLoginImage(ctx, otp.OTPID, image.URL); err != nil {
			h.Log.Warn("failed to attach login image", "otpId", otp.OTPID, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.otpPayload(user.ID.Hex(), code, otp)})
}

type VerifyOTPRequest struct {
	UserID string `json:"userId" binding:"required"`
	OTPID  string `json:"otpId" binding:"required"`
	OTP    string `json:"otp" binding:"required,len=4,numeric"`
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	// The attempt is charged before the code is compared.
	otp, err := h.OTPs.CountAttempt(ctx, req.OTPID, req.UserID)
	if errors.Is(err, database.ErrNotFound) {
		h.rejectClosedOTP(c, req.OTPID, req.UserID)
		return
	}
	if err != nil {
		h.Log.Error("otp attempt failed", "otpId", req.OTPID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}
	if err := auth.VerifyOTP(otp, req.OTP, time.Now()); err != nil {
		c.JSON(otpErrorStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}

	consumed, err := h.OTPs.Consume(ctx, otp.OTPID)
	if err != nil {
		h.Log.Error("failed to consume otp", "otpId", req.OTPID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}
	if !consumed {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": auth.ErrOTPUsed.Error()})
		return
	}

	user, err := h.Users.Get(ctx, req.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not found"})
		return
	}
	token, err := h.JWT.Generate(user.ID.Hex(), user.Username, user.Role, user.ProjectAssigned)
	if err != nil {
		h.Log.Error("failed to sign token", "userId", req.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate token"})
		return
	}

	h.Log.Info("user logged in", "userId", req.UserID, "role", user.Role)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"token": token, "user": user}})
}

// rejectClosedOTP answers for a code that could not take another attempt.
func (h *AuthHandler) rejectClosedOTP(c *gin.Context, otpID, userID string) {
	otp, err := h.OTPs.Find(c.Request.Context(), otpID, userID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid OTP"})
	case err != nil:
		h.Log.Error("otp lookup failed", "otpId", otpID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
	case otp.Consumed:
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": auth.ErrOTPUsed.Error()})
	default:
		c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "error": auth.ErrOTPTooManyAttempts.Error()})
	}
}

type ResendOTPRequest struct {
	UserID string `json:"userId" binding:"required"`
	OTPID  string `json:"otpId" binding:"required"`
}

// ResendOTP sends a new code for a login that passed the password step. The
// otpId stays the same and attempts already made still count.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	prev, err := h.OTPs.Find(ctx, req.OTPID, req.UserID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid OTP"})
		return
	}
	if err != nil {
		h.Log.Error("otp lookup failed", "otpId", req.OTPID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}

	code, next, err := auth.ReissueOTP(prev, time.Now(), h.OTP.ResendTTL)
	if err != nil {
		c.JSON(otpErrorStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	err = h.OTPs.Reissue(ctx, prev, next)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "OTP changed meanwhile, try again"})
		return
	}
	if err != nil {
		h.Log.Error("failed to reissue otp", "otpId", req.OTPID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to issue OTP"})
		return
	}

	h.logCode(next, code)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.otpPayload(req.UserID, code, next)})
}

// issueOTP retires the user's open codes and stores a fresh one.
func (h *AuthHandler) issueOTP(ctx context.Context, userID string) (string, models.OTP, error) {
	if err := h.OTPs.RetireOpen(ctx, userID); err != nil {
		return "", models.OTP{}, err
	}
	code, otp, err := auth.NewOTP(userID, time.Now(), h.OTP.LoginTTL)
	if err != nil {
		return "", models.OTP{}, err
	}
	if err := h.OTPs.Insert(ctx, &otp); err != nil {
		return "", models.OTP{}, err
	}
	h.logCode(otp, code)
	return code, otp, nil
}

// No SMS gateway; the code is only delivered through the log.
func (h *AuthHandler) logCode(otp models.OTP, code string) {
	h.Log.Info("otp issued", "userId", otp.UserID, "otpId", otp.OTPID, "otp", code, "expiresAt", otp.ExpiresAt, "resends", otp.Resends)
}

func (h *AuthHandler) otpPayload(userID, code string, otp models.OTP) gin.H {
	data := gin.H{"userId": userID, "otpId": otp.OTPID, "expiresAt": otp.ExpiresAt}
	if h.OTP.ExposeCode {
		data["otp"] = code
	}
	return data
}

func otpErrorStatus(err error) int {
	if errors.Is(err, auth.ErrOTPTooManyAttempts) || errors.Is(err, auth.ErrOTPTooManyResends) {
		return http.StatusTooManyRequests
	}
	return http.StatusUnauthorized
}
