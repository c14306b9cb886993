package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, level *MembershipLevel) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MembershipLevel, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*MembershipLevel, error)
	ListActive(ctx context.Context, db *gorm.DB) ([]MembershipLevel, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
}
