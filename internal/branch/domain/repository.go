package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	"github.com/smallbiznis/branchdesk/pkg/datatable"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, branch *Branch) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Branch, error)
	List(ctx context.Context, db *gorm.DB, scope accessdomain.Scope, query datatable.Query) ([]Branch, int64, int64, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
}
