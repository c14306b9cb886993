package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	"github.com/smallbiznis/branchdesk/internal/branch/domain"
	"github.com/smallbiznis/branchdesk/pkg/datatable"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

var sortableColumns = map[string]string{
	"name":       "branches.name",
	"city":       "branches.city",
	"status":     "branches.status",
	"created_at": "branches.created_at",
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, branch *domain.Branch) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO branches (id, customer_id, owner_user_id, name, city, phone, status, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		branch.ID,
		branch.CustomerID,
		branch.OwnerUserID,
		branch.Name,
		branch.City,
		branch.Phone,
		branch.Status,
		branch.Metadata,
		branch.CreatedAt,
		branch.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Branch, error) {
	var branch domain.Branch
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, owner_user_id, name, city, phone, status, metadata, created_at, updated_at
		 FROM branches WHERE id = ?`,
		id,
	).Scan(&branch).Error
	if err != nil {
		return nil, err
	}
	if branch.ID == 0 {
		return nil, nil
	}
	return &branch, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, scope accessdomain.Scope, query datatable.Query) ([]domain.Branch, int64, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Branch{})
	stmt = scope.Apply(stmt, accessdomain.BindBranches)

	var branches []domain.Branch
	total, filtered, err := datatable.Paginate(
		stmt,
		query,
		[]string{"branches.name", "branches.city", "branches.phone"},
		query.OrderClause(sortableColumns, "branches.created_at desc, branches.id desc"),
		&branches,
	)
	if err != nil {
		return nil, 0, 0, err
	}
	return branches, total, filtered, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).
		Model(&domain.Branch{}).
		Where("id = ?", id).
		Updates(fields).Error
}
