package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type MembershipStatus string

const (
	MembershipStatusActive  MembershipStatus = "active"
	MembershipStatusExpired MembershipStatus = "expired"
)

// Membership binds a branch to a level for [start_date, end_date).
// There is no expiry sweep; activeness is always derived from end_date
// against the current clock, never from a stored flag.
type Membership struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	BranchID  snowflake.ID `gorm:"column:branch_id;uniqueIndex;not null" json:"branch_id"`
	LevelID   snowflake.ID `gorm:"column:level_id;index;not null" json:"level_id"`
	StartDate time.Time    `gorm:"column:start_date;not null" json:"start_date"`
	EndDate   time.Time    `gorm:"column:end_date;not null" json:"end_date"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Membership) TableName() string { return "memberships" }

// ActiveAt reports whether the membership still covers the given instant.
func (m Membership) ActiveAt(at time.Time) bool {
	return m.EndDate.After(at)
}

// StatusAt derives the display status at the given instant.
func (m Membership) StatusAt(at time.Time) MembershipStatus {
	if m.ActiveAt(at) {
		return MembershipStatusActive
	}
	return MembershipStatusExpired
}
