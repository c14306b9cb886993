package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "active"
	EmployeeStatusInactive EmployeeStatus = "inactive"
)

// Employee links a user to the branch they work at. The employment
// window is [started_at, ended_at); a NULL ended_at means still employed.
type Employee struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	BranchID  snowflake.ID   `gorm:"column:branch_id;index;not null" json:"branch_id"`
	UserID    *snowflake.ID  `gorm:"column:user_id;index" json:"user_id,omitempty"`
	FullName  string         `gorm:"not null" json:"full_name"`
	Status    EmployeeStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	StartedAt time.Time      `gorm:"not null" json:"started_at"`
	EndedAt   *time.Time     `json:"ended_at,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Employee) TableName() string { return "employees" }
