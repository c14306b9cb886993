package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	"github.com/smallbiznis/branchdesk/internal/actorctx"
	"github.com/smallbiznis/branchdesk/internal/authorization"
	"github.com/smallbiznis/branchdesk/internal/clock"
	customerdomain "github.com/smallbiznis/branchdesk/internal/customer/domain"
	"github.com/smallbiznis/branchdesk/internal/invoice/domain"
	membershipdomain "github.com/smallbiznis/branchdesk/internal/membership/domain"
	"github.com/smallbiznis/branchdesk/internal/observability/metrics"
	"github.com/smallbiznis/branchdesk/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	Memberships membershipdomain.Repository
	Customers   customerdomain.Repository
	Authz       authorization.Service
	Email       email.Provider   `optional:"true"`
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	memberships membershipdomain.Repository
	customers   customerdomain.Repository
	authz       authorization.Service
	email       email.Provider
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("invoice.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		memberships: p.Memberships,
		customers:   p.Customers,
		authz:       p.Authz,
		email:       p.Email,
		metrics:     p.Metrics,
	}
}

func (s *Service) Pay(ctx context.Context, req domain.PayInvoiceRequest) (domain.Invoice, error) {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		return domain.Invoice{}, accessdomain.ErrDenied
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}

	var updated domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if invoice == nil || !scope.Covers(invoice.CustomerID, invoice.BranchID) {
			return domain.ErrNotFound
		}
		if !scope.CanWrite() {
			return accessdomain.ErrReadOnly
		}

		// Zero-amount invoices need no validation step and settle on
		// the spot. Everything else waits for an administrator.
		next := domain.InvoiceStatusPendingPayment
		if invoice.Amount == 0 {
			next = domain.InvoiceStatusPaid
		}
		if !invoice.Status.CanTransitionTo(next) {
			return domain.NewStateError(invoice.Status, next)
		}

		now := s.clock.Now()
		payment := domain.Payment{
			ID:         s.genID.Generate(),
			InvoiceID:  invoice.ID,
			Amount:     invoice.Amount,
			Method:     strings.TrimSpace(req.Method),
			Reference:  strings.TrimSpace(req.Reference),
			ReceivedAt: now,
			CreatedAt:  now,
		}
		if payment.Method == "" {
			payment.Method = "manual"
		}
		if err := s.repo.InsertPayment(ctx, tx, &payment); err != nil {
			return err
		}

		fields := map[string]any{
			"status":     next,
			"updated_at": now,
		}
		invoice.Status = next
		invoice.UpdatedAt = now
		if next == domain.InvoiceStatusPaid {
			fields["paid_at"] = now
			invoice.PaidAt = &now
			if err := s.applyMembership(ctx, tx, invoice, now); err != nil {
				return err
			}
		}
		if err := s.repo.UpdateFields(ctx, tx, invoice.ID, fields); err != nil {
			return err
		}

		updated = *invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.metrics.RecordInvoiceEvent(string(updated.Status))
	return updated, nil
}

func (s *Service) Validate(ctx context.Context, rawID string) (domain.Invoice, error) {
	userID, ok := actorctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Invoice{}, authorization.ErrInvalidActor
	}
	allowed, err := s.authz.Can(ctx, userID, authorization.ObjectInvoice, authorization.ActionInvoiceValidate)
	if err != nil {
		return domain.Invoice{}, err
	}
	if !allowed {
		return domain.Invoice{}, authorization.ErrForbidden
	}

	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Invoice{}, err
	}

	var updated domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return domain.ErrNotFound
		}
		// Validation only confirms a submitted payment; a pending invoice
		// with no payment on record cannot be validated straight to paid.
		if invoice.Status != domain.InvoiceStatusPendingPayment {
			return domain.NewStateError(invoice.Status, domain.InvoiceStatusPaid)
		}

		now := s.clock.Now()
		if err := s.applyMembership(ctx, tx, invoice, now); err != nil {
			return err
		}
		if err := s.repo.UpdateFields(ctx, tx, invoice.ID, map[string]any{
			"status":     domain.InvoiceStatusPaid,
			"paid_at":    now,
			"updated_at": now,
		}); err != nil {
			return err
		}

		invoice.Status = domain.InvoiceStatusPaid
		invoice.PaidAt = &now
		invoice.UpdatedAt = now
		updated = *invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.metrics.RecordInvoiceEvent(string(domain.InvoiceStatusPaid))
	s.notifyPaid(ctx, updated)
	return updated, nil
}

func (s *Service) Cancel(ctx context.Context, rawID string) (domain.Invoice, error) {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		return domain.Invoice{}, accessdomain.ErrDenied
	}

	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Invoice{}, err
	}

	var updated domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if invoice == nil || !scope.Covers(invoice.CustomerID, invoice.BranchID) {
			return domain.ErrNotFound
		}
		if !scope.CanWrite() {
			return accessdomain.ErrReadOnly
		}
		if !invoice.Status.CanTransitionTo(domain.InvoiceStatusCancelled) {
			return domain.NewStateError(invoice.Status, domain.InvoiceStatusCancelled)
		}

		now := s.clock.Now()
		if err := s.repo.UpdateFields(ctx, tx, invoice.ID, map[string]any{
			"status":     domain.InvoiceStatusCancelled,
			"updated_at": now,
		}); err != nil {
			return err
		}

		invoice.Status = domain.InvoiceStatusCancelled
		invoice.UpdatedAt = now
		updated = *invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.metrics.RecordInvoiceEvent(string(domain.InvoiceStatusCancelled))
	return updated, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		scope = accessdomain.Denied()
	}

	invoices, total, filtered, err := s.repo.List(ctx, s.db, scope, req.Query)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	return domain.ListInvoiceResponse{
		Invoices:        invoices,
		RecordsTotal:    total,
		RecordsFiltered: filtered,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetInvoiceRequest) (domain.InvoiceDetail, error) {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		return domain.InvoiceDetail{}, accessdomain.ErrDenied
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}
	if invoice == nil || !scope.Covers(invoice.CustomerID, invoice.BranchID) {
		return domain.InvoiceDetail{}, domain.ErrNotFound
	}

	payments, err := s.repo.ListPayments(ctx, s.db, invoice.ID)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	return domain.InvoiceDetail{Invoice: *invoice, Payments: payments}, nil
}

// applyMembership makes the paid invoice's level change effective. The
// membership row is locked so concurrent settlements serialize. Unused
// time on the old plan was already priced into the invoice, so the new
// period extends from whichever is later, now or the current end date.
func (s *Service) applyMembership(ctx context.Context, tx *gorm.DB, invoice *domain.Invoice, now time.Time) error {
	membership, err := s.memberships.FindByBranchForUpdate(ctx, tx, invoice.BranchID)
	if err != nil {
		return err
	}

	if membership == nil {
		fresh := membershipdomain.Membership{
			ID:        s.genID.Generate(),
			BranchID:  invoice.BranchID,
			LevelID:   invoice.LevelID,
			StartDate: now,
			EndDate:   now.AddDate(0, invoice.PeriodMonths, 0),
			CreatedAt: now,
			UpdatedAt: now,
		}
		return s.memberships.Insert(ctx, tx, &fresh)
	}

	anchor := now
	if membership.EndDate.After(anchor) {
		anchor = membership.EndDate
	}
	return s.memberships.UpdateFields(ctx, tx, membership.ID, map[string]any{
		"level_id":   invoice.LevelID,
		"end_date":   anchor.AddDate(0, invoice.PeriodMonths, 0),
		"updated_at": now,
	})
}

func (s *Service) notifyPaid(ctx context.Context, invoice domain.Invoice) {
	if s.email == nil {
		return
	}

	customer, err := s.customers.FindByID(ctx, s.db, invoice.CustomerID)
	if err != nil || customer == nil || customer.Email == "" {
		return
	}

	subject := "Payment confirmed"
	body := fmt.Sprintf(
		"<p>Payment for invoice %s has been confirmed. Amount: %d. Checkout reference: %s.</p>",
		invoice.ID.String(), invoice.Amount, invoice.CheckoutRef,
	)
	if err := s.email.Send(ctx, []string{customer.Email}, subject, body); err != nil {
		s.log.Warn("invoice notification failed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
