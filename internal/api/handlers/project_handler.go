// internal/api/handlers/project_handler.go
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"construction-site-api-server/internal/api/middleware"
	"construction-site-api-server/internal/models"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	Projects ProjectStore
	Log      *slog.Logger
}

type ProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	StartDate   string `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	Status      string `json:"status"`
}

type ProjectStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

const projectStatusError = "status must be active, on-hold or completed"

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status == "" {
		req.Status = models.ProjectActive
	}
	if !models.ValidProjectStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": projectStatusError})
		return
	}

	now := time.Now()
	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		Status:      req.Status,
		CreatedBy:   c.GetString(middleware.KeyUsername),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Projects.Create(c.Request.Context(), &project); err != nil {
		writeStoreError(c, h.Log, err, "Project", "Failed to create project")
		return
	}

	c.JSON(http.StatusCreated, project)
}

func (h *ProjectHandler) GetAllProjects(c *gin.Context) {
	projects, err := h.Projects.List(c.Request.Context())
	if err != nil {
		writeStoreError(c, h.Log, err, "Project", "Failed to query projects")
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) GetProjectByID(c *gin.Context) {
	project, err := h.Projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeStoreError(c, h.Log, err, "Project", "Failed to retrieve project")
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != "" && !models.ValidProjectStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": projectStatusError})
		return
	}

	err := h.Projects.Update(c.Request.Context(), c.Param("id"), models.Project{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		Status:      req.Status,
	})
	if err != nil {
		writeStoreError(c, h.Log, err, "Project", "Failed to update project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project updated successfully"})
}

// UpdateProjectStatus moves a project between active, on-hold and completed.
func (h *ProjectHandler) UpdateProjectStatus(c *gin.Context) {
	var req ProjectStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidProjectStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": projectStatusError})
		return
	}
	if err := h.Projects.SetStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		writeStoreError(c, h.Log, err, "Project", "Failed to update project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project status updated successfully"})
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.Projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeStoreError(c, h.Log, err, "Project", "Failed to delete project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
