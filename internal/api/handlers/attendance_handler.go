// internal/api/handlers/attendance_handler.go
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"construction-site-api-server/internal/models"
	"construction-site-api-server/internal/reports"

	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct {
	Employees  EmployeeStore
	Attendance AttendanceStore
	Log        *slog.Logger
}

type AttendanceRequest struct {
	EmployeeID string `json:"employeeId" binding:"required"`
	Status     string `json:"status" binding:"required,oneof=Present Absent"`
	InTime     string `json:"inTime"`
	OutTime    string `json:"outTime"`
	Work       string `json:"work"`
	Date       string `json:"date" binding:"required"`
}

// MarkAttendance creates or replaces the record of one employee on one day.
func (h *AttendanceHandler) MarkAttendance(c *gin.Context) {
	var req AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	record := models.Attendance{
		EmployeeID: req.EmployeeID,
		Status:     req.Status,
		InTime:     req.InTime,
		OutTime:    req.OutTime,
		Work:       req.Work,
		Date:       req.Date,
		UpdatedAt:  time.Now(),
	}
	if err := record.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Employees.Get(ctx, req.EmployeeID); err != nil {
		writeStoreError(c, h.Log, err, "Employee", "Database error checking for employee")
		return
	}
	if err := h.Attendance.Upsert(ctx, record); err != nil {
		writeStoreError(c, h.Log, err, "Attendance", "Failed to save attendance")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attendance saved successfully", "attendance": record})
}

// GetGroupedAttendance lists every employee with all of their records.
func (h *AttendanceHandler) GetGroupedAttendance(c *gin.Context) {
	scope, ok := projectScope(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	employees, err := h.Employees.List(ctx, scope.ProjectID)
	if err != nil {
		writeStoreError(c, h.Log, err, "Employee", "Failed to query employees")
		return
	}
	records, err := h.Attendance.ForEmployees(ctx, employeeIDs(employees))
	if err != nil {
		writeStoreError(c, h.Log, err, "Attendance", "Failed to query attendance")
		return
	}

	c.JSON(http.StatusOK, reports.GroupByEmployee(employees, records))
}
