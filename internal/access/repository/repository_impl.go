package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/branchdesk/internal/access/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindCustomerOwnedBy(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.OwnedCustomer, error) {
	var row domain.OwnedCustomer
	err := db.WithContext(ctx).Raw(
		`SELECT id FROM customers
		 WHERE owner_user_id = ? AND status = 'active'
		 ORDER BY id LIMIT 1`,
		userID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) FindBranchOwnedBy(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.OwnedBranch, error) {
	var row domain.OwnedBranch
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id FROM branches
		 WHERE owner_user_id = ? AND status = 'active'
		 ORDER BY id LIMIT 1`,
		userID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) FindActiveEmployment(ctx context.Context, db *gorm.DB, userID snowflake.ID, at time.Time) (*domain.Employment, error) {
	var row domain.Employment
	err := db.WithContext(ctx).Raw(
		`SELECT employees.branch_id FROM employees
		 JOIN branches ON branches.id = employees.branch_id
		 WHERE employees.user_id = ?
		   AND employees.status = 'active'
		   AND employees.started_at <= ?
		   AND (employees.ended_at IS NULL OR employees.ended_at > ?)
		 ORDER BY employees.id LIMIT 1`,
		userID,
		at,
		at,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.BranchID == 0 {
		return nil, nil
	}
	return &row, nil
}
