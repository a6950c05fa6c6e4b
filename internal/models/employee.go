// internal/models/employee.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Employee struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name             string             `bson:"name" json:"name"`
	Phone            string             `bson:"phone" json:"phone"`
	Address          string             `bson:"address" json:"address"`
	Role             string             `bson:"role" json:"role"`
	SalaryPerDay     float64            `bson:"salaryPerDay" json:"salaryPerDay"`
	AssignedProjects []string           `bson:"assignedProjects" json:"assignedProjects"`
	JoiningDate      string             `bson:"joiningDate" json:"joiningDate"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
