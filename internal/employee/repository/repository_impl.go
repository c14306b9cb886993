package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	"github.com/smallbiznis/branchdesk/internal/employee/domain"
	"github.com/smallbiznis/branchdesk/pkg/datatable"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

var sortableColumns = map[string]string{
	"full_name":  "employees.full_name",
	"status":     "employees.status",
	"started_at": "employees.started_at",
	"created_at": "employees.created_at",
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, employee *domain.Employee) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO employees (id, branch_id, user_id, full_name, status, started_at, ended_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		employee.ID,
		employee.BranchID,
		employee.UserID,
		employee.FullName,
		employee.Status,
		employee.StartedAt,
		employee.EndedAt,
		employee.CreatedAt,
		employee.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Employee, error) {
	var employee domain.Employee
	err := db.WithContext(ctx).Raw(
		`SELECT id, branch_id, user_id, full_name, status, started_at, ended_at, created_at, updated_at
		 FROM employees WHERE id = ?`,
		id,
	).Scan(&employee).Error
	if err != nil {
		return nil, err
	}
	if employee.ID == 0 {
		return nil, nil
	}
	return &employee, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, scope accessdomain.Scope, query datatable.Query) ([]domain.Employee, int64, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Employee{})
	stmt = scope.Apply(stmt, accessdomain.BindEmployees)

	var employees []domain.Employee
	total, filtered, err := datatable.Paginate(
		stmt,
		query,
		[]string{"employees.full_name"},
		query.OrderClause(sortableColumns, "employees.created_at desc, employees.id desc"),
		&employees,
	)
	if err != nil {
		return nil, 0, 0, err
	}
	return employees, total, filtered, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).
		Model(&domain.Employee{}).
		Where("id = ?", id).
		Updates(fields).Error
}
