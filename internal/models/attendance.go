// internal/models/attendance.go
package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AttendancePresent = "Present"
	AttendanceAbsent  = "Absent"
)

var ErrOutBeforeIn = errors.New("out time cannot be earlier than in time")

// Attendance is one employee on one day. Date is YYYY-MM-DD, times are HH:MM.
type Attendance struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	EmployeeID string             `bson:"employeeId" json:"employeeId"`
	Status     string             `bson:"status" json:"status"`
	InTime     string             `bson:"inTime" json:"inTime"`
	OutTime    string             `bson:"outTime" json:"outTime"`
	Work       string             `bson:"work" json:"work"`
	Date       string             `bson:"date" json:"date"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks the status, the date and, when both are set, that OutTime
// is not before InTime.
func (a Attendance) Validate() error {
	if a.Status != AttendancePresent && a.Status != AttendanceAbsent {
		return fmt.Errorf("invalid attendance status %q", a.Status)
	}
	if _, err := time.Parse("2006-01-02", a.Date); err != nil {
		return fmt.Errorf("invalid date %q: %w", a.Date, err)
	}
	if a.InTime == "" || a.OutTime == "" {
		return nil
	}
	in, err := time.Parse("15:04", a.InTime)
	if err != nil {
		return fmt.Errorf("invalid in time %q: %w", a.InTime, err)
	}
	out, err := time.Parse("15:04", a.OutTime)
	if err != nil {
		return fmt.Errorf("invalid out time %q: %w", a.OutTime, err)
	}
	if out.Before(in) {
		return ErrOutBeforeIn
	}
	return nil
}
