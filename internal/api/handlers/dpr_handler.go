// internal/api/handlers/dpr_handler.go
package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"construction-site-api-server/internal/inventory"
	"construction-site-api-server/internal/reports"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DPRHandler serves the daily progress reports of a project.
type DPRHandler struct {
	Employees  EmployeeStore
	Attendance AttendanceStore
	Store      inventory.Store
	Log        *slog.Logger
}

// reportScope reads the month, the year and the :projectId of a report
// request. It answers the request itself and returns false when they are
// invalid or the caller may not see the project.
func (h *DPRHandler) reportScope(c *gin.Context) (string, int, int, bool) {
	projectID, err := resolveProject(c, c.Param("projectId"))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return "", 0, 0, false
	}
	month, year, err := monthYear(c, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", 0, 0, false
	}
	return projectID, month, year, true
}

func (h *DPRHandler) attendanceReport(c *gin.Context, projectID string, month, year int) (reports.AttendanceReport, error) {
	employees, err := h.Employees.List(c.Request.Context(), projectID)
	if err != nil {
		return reports.AttendanceReport{}, err
	}
	records, err := h.Attendance.ForEmployees(c.Request.Context(), employeeIDs(employees))
	if err != nil {
		return reports.AttendanceReport{}, err
	}
	return reports.BuildAttendanceReport(projectID, employees, records, month, year), nil
}

func (h *DPRHandler) AttendanceReport(c *gin.Context) {
	projectID, month, year, ok := h.reportScope(c)
	if !ok {
		return
	}
	report, err := h.attendanceReport(c, projectID, month, year)
	if err != nil {
		h.Log.Error("attendance report failed", "projectId", projectID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build attendance report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *DPRHandler) MaterialReport(c *gin.Context) {
	projectID, month, year, ok := h.reportScope(c)
	if !ok {
		return
	}
	records, err := h.Store.RecordsForProject(c.Request.Context(), projectID)
	if err != nil {
		h.Log.Error("material report failed", "projectId", projectID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build material report"})
		return
	}
	c.JSON(http.StatusOK, reports.BuildMaterialReport(projectID, records, month, year))
}

// ExportMaterialReport sends the material report as an Excel workbook.
func (h *DPRHandler) ExportMaterialReport(c *gin.Context) {
	projectID, month, year, ok := h.reportScope(c)
	if !ok {
		return
	}
	records, err := h.Store.RecordsForProject(c.Request.Context(), projectID)
	if err != nil {
		h.Log.Error("material export failed", "projectId", projectID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build material report"})
		return
	}

	var buf bytes.Buffer
	if err := reports.WriteMaterialReportXLSX(&buf, reports.BuildMaterialReport(projectID, records, month, year)); err != nil {
		h.Log.Error("failed to write workbook", "projectId", projectID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write workbook"})
		return
	}

	fileName := fmt.Sprintf("materials-%s-%04d-%02d.xlsx", projectID, year, month)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Stats feeds the dashboard charts: attendance per weekday and material
// additions per month.
func (h *DPRHandler) Stats(c *gin.Context) {
	projectID, month, year, ok := h.reportScope(c)
	if !ok {
		return
	}

	att, err := h.attendanceReport(c, projectID, month, year)
	if err != nil {
		h.Log.Error("stats attendance failed", "projectId", projectID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build stats"})
		return
	}
	records, err := h.Store.RecordsForProject(c.Request.Context(), projectID)
	if err != nil {
		h.Log.Error("stats materials failed", "projectId", projectID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build stats"})
		return
	}

	c.JSON(http.StatusOK, reports.BuildStats(att, reports.BuildMaterialReport(projectID, records, month, year), records))
}
