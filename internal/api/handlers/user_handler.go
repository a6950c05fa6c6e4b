// internal/api/handlers/user_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"construction-site-api-server/internal/api/middleware"
	"construction-site-api-server/internal/auth"
	"construction-site-api-server/internal/database"
	"construction-site-api-server/internal/models"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Users    UserStore
	Uploader FileUploader
	Log      *slog.Logger
}

const usernameTaken = "User with this username already exists"

type CreateUserRequest struct {
	Username        string `json:"username" binding:"required"`
	Password        string `json:"password" binding:"required,min=6"`
	Phone           string `json:"phone"`
	Role            string `json:"role" binding:"required,oneof=admin user"`
	ProjectAssigned string `json:"projectAssigned"`
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username:        req.Username,
		Password:        hashedPassword,
		Phone:           req.Phone,
		Role:            req.Role,
		ProjectAssigned: req.ProjectAssigned,
		CreatedAt:       time.Now(),
	}
	err = h.Users.Create(c.Request.Context(), &user)
	if errors.Is(err, database.ErrDuplicate) {
		c.JSON(http.StatusConflict, gin.H{"error": usernameTaken})
		return
	}
	if err != nil {
		writeStoreError(c, h.Log, err, "User", "Failed to create user")
		return
	}

	h.Log.Info("user created", "userId", user.ID.Hex(), "role", user.Role, "createdBy", c.GetString(middleware.KeyUsername))
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context(), c.Query("projectId"))
	if err != nil {
		writeStoreError(c, h.Log, err, "User", "Failed to query users")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == c.GetString(middleware.KeyUserID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}
	if err := h.Users.Delete(c.Request.Context(), id); err != nil {
		writeStoreError(c, h.Log, err, "User", "Failed to delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

type UpdateProfileRequest struct {
	Username string `form:"username"`
	Password string `form:"password" binding:"omitempty,min=6"`
}

// UpdateProfile changes the caller's own username, password or picture.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := c.GetString(middleware.KeyUserID)

	update := database.ProfileUpdate{Username: req.Username}
	if req.Password != "" {
		hashedPassword, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		update.PasswordHash = hashedPassword
	}
	picture, err := uploadFormFile(c, h.Uploader, "profilePicture", "profiles")
	if err != nil {
		h.Log.Error("profile picture upload failed", "userId", userID, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to upload profile picture: " + err.Error()})
		return
	}
	if picture != nil {
		update.Image = picture.URL
	}
	if update.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	user, err := h.Users.UpdateProfile(c.Request.Context(), userID, update)
	switch {
	case errors.Is(err, database.ErrInvalidID):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user in token"})
		return
	case errors.Is(err, database.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": usernameTaken})
		return
	case err != nil:
		writeStoreError(c, h.Log, err, "User", "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
}
