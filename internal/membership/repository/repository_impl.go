package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	"github.com/smallbiznis/branchdesk/internal/membership/domain"
	"github.com/smallbiznis/branchdesk/pkg/datatable"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

var sortableColumns = map[string]string{
	"start_date": "memberships.start_date",
	"end_date":   "memberships.end_date",
	"created_at": "memberships.created_at",
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, membership *domain.Membership) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO memberships (id, branch_id, level_id, start_date, end_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		membership.ID,
		membership.BranchID,
		membership.LevelID,
		membership.StartDate,
		membership.EndDate,
		membership.CreatedAt,
		membership.UpdatedAt,
	).Error
}

func (r *repo) FindByBranch(ctx context.Context, db *gorm.DB, branchID snowflake.ID) (*domain.Membership, error) {
	var membership domain.Membership
	err := db.WithContext(ctx).Raw(
		`SELECT id, branch_id, level_id, start_date, end_date, created_at, updated_at
		 FROM memberships WHERE branch_id = ?`,
		branchID,
	).Scan(&membership).Error
	if err != nil {
		return nil, err
	}
	if membership.ID == 0 {
		return nil, nil
	}
	return &membership, nil
}

func (r *repo) FindByBranchForUpdate(ctx context.Context, db *gorm.DB, branchID snowflake.ID) (*domain.Membership, error) {
	var membership domain.Membership
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ?", branchID).
		First(&membership).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, scope accessdomain.Scope, query datatable.Query) ([]domain.Membership, int64, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Membership{})
	stmt = scope.Apply(stmt, accessdomain.BindMemberships)

	var memberships []domain.Membership
	total, filtered, err := datatable.Paginate(
		stmt,
		query,
		nil,
		query.OrderClause(sortableColumns, "memberships.created_at desc, memberships.id desc"),
		&memberships,
	)
	if err != nil {
		return nil, 0, 0, err
	}
	return memberships, total, filtered, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).
		Model(&domain.Membership{}).
		Where("id = ?", id).
		Updates(fields).Error
}
