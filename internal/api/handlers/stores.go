package handlers

import (
	"context"

	"construction-site-api-server/internal/database"
	"construction-site-api-server/internal/models"
)

// The handlers reach MongoDB through these interfaces; the database package
// implements them.

type ProjectStore interface {
	Create(ctx context.Context, p *models.Project) error
	List(ctx context.Context) ([]models.Project, error)
	Get(ctx context.Context, id string) (models.Project, error)
	Update(ctx context.Context, id string, p models.Project) error
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type EmployeeStore interface {
	Create(ctx context.Context, e *models.Employee) error
	List(ctx context.Context, projectID string) ([]models.Employee, error)
	Get(ctx context.Context, id string) (models.Employee, error)
	Update(ctx context.Context, id string, e models.Employee) error
	Delete(ctx context.Context, id string) error
}

type AttendanceStore interface {
	Upsert(ctx context.Context, a models.Attendance) error
	ForEmployees(ctx context.Context, employeeIDs []string) ([]models.Attendance, error)
	DeleteForEmployee(ctx context.Context, employeeID string) (int64, error)
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	List(ctx context.Context, projectID string) ([]models.User, error)
	Get(ctx context.Context, id string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	Delete(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, id string, p database.ProfileUpdate) (models.User, error)
}

type OTPStore interface {
	RetireOpen(ctx context.Context, userID string) error
	Insert(ctx context.Context, o *models.OTP) error
	Find(ctx context.Context, otpID, userID string) (models.OTP, error)
	CountAttempt(ctx context.Context, otpID, userID string) (models.OTP, error)
	Consume(ctx context.Context, otpID string) (bool, error)
	Reissue(ctx context.Context, prev, next models.OTP) error
	SetLoginImage(ctx context.Context, otpID, url string) error
}

var (
	_ ProjectStore    = (*database.ProjectStore)(nil)
	_ EmployeeStore   = (*database.EmployeeStore)(nil)
	_ AttendanceStore = (*database.AttendanceStore)(nil)
	_ UserStore       = (*database.UserStore)(nil)
	_ OTPStore        = (*database.OTPStore)(nil)
)

// employeeIDs lists the hex ids of employees.
func employeeIDs(employees []models.Employee) []string {
	ids := make([]string, len(employees))
	for i, e := range employees {
		ids[i] = e.ID.Hex()
	}
	return ids
}
