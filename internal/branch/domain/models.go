package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type BranchStatus string

const (
	BranchStatusActive   BranchStatus = "active"
	BranchStatusArchived BranchStatus = "archived"
)

// Branch is a customer's physical location. Memberships and employees
// attach here, and invoices are raised against it.
type Branch struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	CustomerID  snowflake.ID      `gorm:"column:customer_id;index;not null" json:"customer_id"`
	OwnerUserID *snowflake.ID     `gorm:"column:owner_user_id;index" json:"owner_user_id,omitempty"`
	Name        string            `gorm:"not null" json:"name"`
	City        string            `json:"city"`
	Phone       string            `json:"phone"`
	Status      BranchStatus      `gorm:"type:text;not null;default:'active'" json:"status"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Branch) TableName() string { return "branches" }
