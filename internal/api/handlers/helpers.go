// internal/api/handlers/helpers.go
package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"construction-site-api-server/internal/api/middleware"
	"construction-site-api-server/internal/database"
	"construction-site-api-server/internal/inventory"
	"construction-site-api-server/internal/models"
	"construction-site-api-server/internal/s3"

	"github.com/gin-gonic/gin"
)

// FileUploader stores an uploaded file and returns its public URL.
type FileUploader interface {
	UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error)
}

var errUploadsDisabled = errors.New("file uploads are not configured")

// uploadFormFile uploads the multipart file in field, if any, under prefix.
// It returns nil when the request carries no such file.
func uploadFormFile(c *gin.Context, up FileUploader, field, prefix string) (*models.MediaPointer, error) {
	fileHeader, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if up == nil {
		return nil, errUploadsDisabled
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	key := s3.ObjectKey(prefix, fileHeader.Filename)
	url, err := up.UploadFile(c.Request.Context(), file, key, contentType)
	if err != nil {
		return nil, err
	}
	return &models.MediaPointer{
		ID:       key,
		URL:      url,
		FileName: fileHeader.Filename,
		FileType: contentType,
	}, nil
}

var errForeignProject = errors.New("you can only access your assigned project")

// resolveProject returns the project a request may act on. Admins get the
// requested project, empty meaning all of them. Other users always get the
// project in their token and may not name a different one.
func resolveProject(c *gin.Context, requested string) (string, error) {
	if c.GetString(middleware.KeyUserRole) == models.RoleAdmin {
		return requested, nil
	}
	own := c.GetString(middleware.KeyProjectID)
	if own == "" || (requested != "" && requested != own) {
		return "", errForeignProject
	}
	return own, nil
}

// projectScope is the ?projectId filter of the request. It answers 403 and
// returns false when the caller may not see that project.
func projectScope(c *gin.Context) (inventory.Filter, bool) {
	projectID, err := resolveProject(c, c.Query("projectId"))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return inventory.Filter{}, false
	}
	return inventory.Filter{ProjectID: projectID}, true
}

// writeStoreError answers a failed store call on a what document.
func writeStoreError(c *gin.Context, log *slog.Logger, err error, what, failure string) {
	switch {
	case errors.Is(err, database.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + strings.ToLower(what) + " ID"})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
	case errors.Is(err, database.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": what + " already exists"})
	default:
		if log != nil {
			log.Error(failure, "path", c.FullPath(), "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": failure})
	}
}

// monthYear reads ?month and ?year, defaulting to the current month.
func monthYear(c *gin.Context, now time.Time) (int, int, error) {
	month, year := int(now.Month()), now.Year()
	if v := c.Query("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, errors.New("month must be between 1 and 12")
		}
		month = m
	}
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 {
			return 0, 0, errors.New("year is invalid")
		}
		year = y
	}
	return month, year, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339 and defaults to now.
func parseDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
