package domain

import (
	"context"

	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/branchdesk/pkg/datatable"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, scope accessdomain.Scope, query datatable.Query) ([]Customer, int64, int64, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
}
