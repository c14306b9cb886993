package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/branchdesk/internal/level/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, level *domain.MembershipLevel) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO membership_levels (id, code, name, price_per_month, sort_order, capabilities, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		level.ID,
		level.Code,
		level.Name,
		level.PricePerMonth,
		level.SortOrder,
		level.Capabilities,
		level.Status,
		level.CreatedAt,
		level.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.MembershipLevel, error) {
	var level domain.MembershipLevel
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, price_per_month, sort_order, capabilities, status, created_at, updated_at
		 FROM membership_levels WHERE id = ?`,
		id,
	).Scan(&level).Error
	if err != nil {
		return nil, err
	}
	if level.ID == 0 {
		return nil, nil
	}
	return &level, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.MembershipLevel, error) {
	var level domain.MembershipLevel
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, price_per_month, sort_order, capabilities, status, created_at, updated_at
		 FROM membership_levels WHERE code = ?`,
		code,
	).Scan(&level).Error
	if err != nil {
		return nil, err
	}
	if level.ID == 0 {
		return nil, nil
	}
	return &level, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]domain.MembershipLevel, error) {
	var levels []domain.MembershipLevel
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, price_per_month, sort_order, capabilities, status, created_at, updated_at
		 FROM membership_levels WHERE status = ? ORDER BY sort_order ASC, id ASC`,
		domain.LevelStatusActive,
	).Scan(&levels).Error
	if err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).
		Model(&domain.MembershipLevel{}).
		Where("id = ?", id).
		Updates(fields).Error
}
