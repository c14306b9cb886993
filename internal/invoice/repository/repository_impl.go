package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	"github.com/smallbiznis/branchdesk/internal/invoice/domain"
	"github.com/smallbiznis/branchdesk/pkg/datatable"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

var sortableColumns = map[string]string{
	"status":     "invoices.status",
	"amount":     "invoices.amount",
	"issued_at":  "invoices.issued_at",
	"created_at": "invoices.created_at",
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoices (id, customer_id, branch_id, from_level_id, level_id, period_months, amount, status, checkout_ref, issued_at, paid_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.CustomerID,
		invoice.BranchID,
		invoice.FromLevelID,
		invoice.LevelID,
		invoice.PeriodMonths,
		invoice.Amount,
		invoice.Status,
		invoice.CheckoutRef,
		invoice.IssuedAt,
		invoice.PaidAt,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Error
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (id, invoice_id, amount, method, reference, received_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.InvoiceID,
		payment.Amount,
		payment.Method,
		payment.Reference,
		payment.ReceivedAt,
		payment.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, branch_id, from_level_id, level_id, period_months, amount, status, checkout_ref, issued_at, paid_at, created_at, updated_at
		 FROM invoices WHERE id = ?`,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, scope accessdomain.Scope, query datatable.Query) ([]domain.Invoice, int64, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Invoice{})
	stmt = scope.Apply(stmt, accessdomain.BindInvoices)

	var invoices []domain.Invoice
	total, filtered, err := datatable.Paginate(
		stmt,
		query,
		[]string{"invoices.checkout_ref", "invoices.status"},
		query.OrderClause(sortableColumns, "invoices.created_at desc, invoices.id desc"),
		&invoices,
	)
	if err != nil {
		return nil, 0, 0, err
	}
	return invoices, total, filtered, nil
}

func (r *repo) ListPayments(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, invoice_id, amount, method, reference, received_at, created_at
		 FROM payments WHERE invoice_id = ? ORDER BY received_at ASC, id ASC`,
		invoiceID,
	).Scan(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ?", id).
		Updates(fields).Error
}
