package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type LevelStatus string

const (
	LevelStatusActive  LevelStatus = "active"
	LevelStatusRetired LevelStatus = "retired"
)

// MembershipLevel is a catalog entry branches subscribe to. SortOrder
// ranks levels; upgrades are only allowed toward a strictly higher rank.
type MembershipLevel struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	Code          string            `gorm:"uniqueIndex;not null" json:"code"`
	Name          string            `gorm:"not null" json:"name"`
	PricePerMonth int64             `gorm:"column:price_per_month;not null" json:"price_per_month"`
	SortOrder     int               `gorm:"column:sort_order;not null" json:"sort_order"`
	Capabilities  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"capabilities,omitempty"`
	Status        LevelStatus       `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (MembershipLevel) TableName() string { return "membership_levels" }
