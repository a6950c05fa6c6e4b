// internal/api/handlers/material_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"construction-site-api-server/internal/api/middleware"
	"construction-site-api-server/internal/inventory"
	"construction-site-api-server/internal/models"
	"construction-site-api-server/internal/socket"

	"github.com/gin-gonic/gin"
)

type MaterialHandler struct {
	Store    inventory.Store
	Uploader FileUploader
	Hub      *socket.Hub
	Log      *slog.Logger
}

type AddMaterialRequest struct {
	MatCode         string  `form:"matCode" json:"matCode" binding:"required"`
	MatName         string  `form:"matName" json:"matName"`
	Quantity        float64 `form:"quantity" json:"quantity" binding:"required,gt=0"`
	Amount          float64 `form:"amount" json:"amount" binding:"gte=0"`
	Date            string  `form:"date" json:"date"`
	ProjectAssigned string  `form:"projectAssigned" json:"projectAssigned"`
}

// AddMaterial records a delivery, with an optional "document" file (invoice, challan).
func (h *MaterialHandler) AddMaterial(c *gin.Context) {
	var req AddMaterialRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(req.Date, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	projectID, err := resolveProject(c, req.ProjectAssigned)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	doc, err := uploadFormFile(c, h.Uploader, "document", "materials")
	if err != nil {
		h.Log.Error("material document upload failed", "matCode", req.MatCode, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to upload document: " + err.Error()})
		return
	}

	rec := models.MaterialRecord{
		MatCode:         req.MatCode,
		MatName:         req.MatName,
		QuantityAdded:   req.Quantity,
		Amount:          req.Amount,
		AddedBy:         c.GetString(middleware.KeyUsername),
		Date:            date,
		ProjectAssigned: projectID,
		Document:        doc,
	}
	if rec.ProjectAssigned == "" {
		rec.ProjectAssigned = c.GetString(middleware.KeyProjectID)
	}

	if err := h.Store.Add(c.Request.Context(), &rec); err != nil {
		if errors.Is(err, inventory.ErrInvalidQuantity) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.Log.Error("failed to add material", "matCode", req.MatCode, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add material"})
		return
	}

	h.Hub.NotifyStockChanged(rec.MatCode, "add")
	c.JSON(http.StatusCreated, rec)
}

func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	scope, ok := projectScope(c)
	if !ok {
		return
	}
	records, err := h.Store.List(c.Request.Context(), scope)
	if err != nil {
		h.Log.Error("failed to list materials", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query materials"})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	rec, err := h.Store.DeleteByID(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, inventory.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid material ID"})
		return
	case errors.Is(err, inventory.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Material not found"})
		return
	case err != nil:
		h.Log.Error("failed to delete material", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete material"})
		return
	}

	h.Hub.NotifyStockChanged(rec.MatCode, "delete")
	c.JSON(http.StatusOK, gin.H{"message": "Material deleted successfully"})
}

func (h *MaterialHandler) DeleteByCode(c *gin.Context) {
	matCode := c.Param("matCode")
	n, err := h.Store.DeleteByCode(c.Request.Context(), matCode, inventory.Filter{ProjectID: c.Query("projectId")})
	if errors.Is(err, inventory.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Material not found"})
		return
	}
	if err != nil {
		h.Log.Error("failed to delete material code", "matCode", matCode, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete material"})
		return
	}

	h.Hub.NotifyStockChanged(matCode, "delete")
	c.JSON(http.StatusOK, gin.H{"message": "Materials deleted successfully", "deleted": n})
}

type TakeMaterialRequest struct {
	MatCode   string  `json:"matCode" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	TakenBy   string  `json:"takenBy"`
	Date      string  `json:"date"`
	ProjectID string  `json:"projectId"`
}

// TakeMaterial removes stock, oldest deliveries first.
func (h *MaterialHandler) TakeMaterial(c *gin.Context) {
	var req TakeMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(req.Date, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	if req.TakenBy == "" {
		req.TakenBy = c.GetString(middleware.KeyUsername)
	}
	projectID, err := resolveProject(c, req.ProjectID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	req.ProjectID = projectID

	allocations, err := h.Store.Take(c.Request.Context(), inventory.TakeRequest{
		MatCode:   req.MatCode,
		Quantity:  req.Quantity,
		TakenBy:   req.TakenBy,
		Date:      date,
		ProjectID: req.ProjectID,
	})
	switch {
	case errors.Is(err, inventory.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, inventory.ErrInsufficientStock), errors.Is(err, inventory.ErrStockConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.Log.Error("failed to take material", "matCode", req.MatCode, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to take material"})
		return
	}

	h.Log.Info("material taken", "matCode", req.MatCode, "quantity", req.Quantity, "takenBy", req.TakenBy)
	h.Hub.NotifyStockChanged(req.MatCode, "take")
	c.JSON(http.StatusOK, gin.H{"message": "Material taken successfully", "allocations": allocations})
}

func (h *MaterialHandler) TotalAvailability(c *gin.Context) {
	scope, ok := projectScope(c)
	if !ok {
		return
	}
	rows, err := h.Store.TotalAvailability(c.Request.Context(), scope)
	if err != nil {
		h.Log.Error("total availability failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate availability"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *MaterialHandler) TotalConsumed(c *gin.Context) {
	scope, ok := projectScope(c)
	if !ok {
		return
	}
	rows, err := h.Store.TotalConsumed(c.Request.Context(), scope)
	if err != nil {
		h.Log.Error("total consumed failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate consumption"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *MaterialHandler) AllDetailsGrouped(c *gin.Context) {
	scope, ok := projectScope(c)
	if !ok {
		return
	}
	rows, err := h.Store.GroupedDetails(c.Request.Context(), scope)
	if err != nil {
		h.Log.Error("grouped details failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to group materials"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// LiveAvailability serves the merged view in one call, filtered by ?search.
func (h *MaterialHandler) LiveAvailability(c *gin.Context) {
	scope, ok := projectScope(c)
	if !ok {
		return
	}
	rows, err := inventory.LiveAvailability(c.Request.Context(), h.Store, scope, c.Query("search"))
	if err != nil {
		h.Log.Error("live availability failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load live availability"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
