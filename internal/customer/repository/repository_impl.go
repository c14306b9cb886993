package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	"github.com/smallbiznis/branchdesk/internal/customer/domain"
	"github.com/smallbiznis/branchdesk/pkg/datatable"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

var sortableColumns = map[string]string{
	"name":       "customers.name",
	"email":      "customers.email",
	"status":     "customers.status",
	"created_at": "customers.created_at",
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO customers (id, owner_user_id, name, email, status, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		customer.ID,
		customer.OwnerUserID,
		customer.Name,
		customer.Email,
		customer.Status,
		customer.Metadata,
		customer.CreatedAt,
		customer.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT id, owner_user_id, name, email, status, metadata, created_at, updated_at
		 FROM customers WHERE id = ?`,
		id,
	).Scan(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, scope accessdomain.Scope, query datatable.Query) ([]domain.Customer, int64, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Customer{})
	stmt = scope.Apply(stmt, accessdomain.BindCustomers)

	var customers []domain.Customer
	total, filtered, err := datatable.Paginate(
		stmt,
		query,
		[]string{"customers.name", "customers.email"},
		query.OrderClause(sortableColumns, "customers.created_at desc, customers.id desc"),
		&customers,
	)
	if err != nil {
		return nil, 0, 0, err
	}
	return customers, total, filtered, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("id = ?", id).
		Updates(fields).Error
}
