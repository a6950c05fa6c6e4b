// internal/api/handlers/employee_handler.go
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"construction-site-api-server/internal/models"

	"github.com/gin-gonic/gin"
)

type EmployeeHandler struct {
	Employees  EmployeeStore
	Attendance AttendanceStore
	Log        *slog.Logger
}

type EmployeeRequest struct {
	Name             string   `json:"name" binding:"required"`
	Phone            string   `json:"phone"`
	Address          string   `json:"address"`
	Role             string   `json:"role"`
	SalaryPerDay     float64  `json:"salaryPerDay" binding:"gte=0"`
	AssignedProjects []string `json:"assignedProjects"`
	JoiningDate      string   `json:"joiningDate" binding:"omitempty,datetime=2006-01-02"`
}

func (r EmployeeRequest) employee() models.Employee {
	projects := r.AssignedProjects
	if projects == nil {
		projects = []string{}
	}
	return models.Employee{
		Name:             r.Name,
		Phone:            r.Phone,
		Address:          r.Address,
		Role:             r.Role,
		SalaryPerDay:     r.SalaryPerDay,
		AssignedProjects: projects,
		JoiningDate:      r.JoiningDate,
	}
}

func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	employee := req.employee()
	employee.CreatedAt = time.Now()
	if err := h.Employees.Create(c.Request.Context(), &employee); err != nil {
		writeStoreError(c, h.Log, err, "Employee", "Failed to create employee")
		return
	}

	c.JSON(http.StatusCreated, employee)
}

// GetEmployees lists the employees of ?projectId. Non-admin users only see
// their own project.
func (h *EmployeeHandler) GetEmployees(c *gin.Context) {
	scope, ok := projectScope(c)
	if !ok {
		return
	}
	employees, err := h.Employees.List(c.Request.Context(), scope.ProjectID)
	if err != nil {
		writeStoreError(c, h.Log, err, "Employee", "Failed to query employees")
		return
	}
	c.JSON(http.StatusOK, employees)
}

func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	var req EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Employees.Update(c.Request.Context(), c.Param("id"), req.employee()); err != nil {
		writeStoreError(c, h.Log, err, "Employee", "Failed to update employee")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee updated successfully"})
}

// DeleteEmployee removes the employee and their attendance.
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if err := h.Employees.Delete(ctx, id); err != nil {
		writeStoreError(c, h.Log, err, "Employee", "Failed to delete employee")
		return
	}
	removed, err := h.Attendance.DeleteForEmployee(ctx, id)
	if err != nil {
		h.Log.Error("attendance cleanup failed", "employeeId", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Employee deleted but attendance cleanup failed"})
		return
	}

	h.Log.Info("employee deleted", "employeeId", id, "attendanceRemoved", removed)
	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted successfully"})
}
