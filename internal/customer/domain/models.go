package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusArchived CustomerStatus = "archived"
)

// Customer is the tenant root every branch and invoice hangs off.
type Customer struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	OwnerUserID *snowflake.ID     `gorm:"column:owner_user_id;index" json:"owner_user_id,omitempty"`
	Name        string            `gorm:"not null" json:"name"`
	Email       string            `gorm:"not null" json:"email"`
	Status      CustomerStatus    `gorm:"type:text;not null;default:'active'" json:"status"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
