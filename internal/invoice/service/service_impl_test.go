package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	"github.com/smallbiznis/branchdesk/internal/actorctx"
	"github.com/smallbiznis/branchdesk/internal/authorization"
	"github.com/smallbiznis/branchdesk/internal/clock"
	customerdomain "github.com/smallbiznis/branchdesk/internal/customer/domain"
	customerrepo "github.com/smallbiznis/branchdesk/internal/customer/repository"
	"github.com/smallbiznis/branchdesk/internal/invoice/domain"
	"github.com/smallbiznis/branchdesk/internal/invoice/repository"
	membershipdomain "github.com/smallbiznis/branchdesk/internal/membership/domain"
	membershiprepo "github.com/smallbiznis/branchdesk/internal/membership/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeCapabilities struct {
	allowed map[string]bool
	err     error
}

func (f *fakeCapabilities) Can(ctx context.Context, userID snowflake.ID, object, action string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.allowed[object+":"+action], nil
}

func (f *fakeCapabilities) IsAdministrator(ctx context.Context, userID snowflake.ID) (bool, error) {
	return false, nil
}

func (f *fakeCapabilities) GrantAdministrator(ctx context.Context, userID snowflake.ID) error {
	return nil
}

func (f *fakeCapabilities) RevokeAdministrator(ctx context.Context, userID snowflake.ID) error {
	return nil
}

type invoiceFixture struct {
	svc    domain.Service
	db     *gorm.DB
	clock  *clock.FakeClock
	authz  *fakeCapabilities
	genID  *snowflake.Node
	branch snowflake.ID
	cust   snowflake.ID
	level  snowflake.ID
}

func setupInvoiceService(t *testing.T) *invoiceFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&customerdomain.Customer{},
		&membershipdomain.Membership{},
		&domain.Invoice{},
		&domain.Payment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	fc := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	authz := &fakeCapabilities{allowed: map[string]bool{}}

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fc,
		Repo:        repository.Provide(),
		Memberships: membershiprepo.Provide(),
		Customers:   customerrepo.Provide(),
		Authz:       authz,
	})

	return &invoiceFixture{
		svc:    svc,
		db:     db,
		clock:  fc,
		authz:  authz,
		genID:  node,
		branch: node.Generate(),
		cust:   node.Generate(),
		level:  node.Generate(),
	}
}

func (f *invoiceFixture) seedInvoice(t *testing.T, status domain.InvoiceStatus, amount int64) domain.Invoice {
	t.Helper()

	now := f.clock.Now()
	invoice := domain.Invoice{
		ID:           f.genID.Generate(),
		CustomerID:   f.cust,
		BranchID:     f.branch,
		LevelID:      f.level,
		PeriodMonths: 3,
		Amount:       amount,
		Status:       status,
		CheckoutRef:  "ref-" + f.genID.Generate().String(),
		IssuedAt:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.db.Create(&invoice).Error)
	return invoice
}

func (f *invoiceFixture) reload(t *testing.T, id snowflake.ID) domain.Invoice {
	t.Helper()

	var invoice domain.Invoice
	require.NoError(t, f.db.First(&invoice, "id = ?", id).Error)
	return invoice
}

func scopedCtx(scope accessdomain.Scope) context.Context {
	return accessdomain.WithScope(context.Background(), scope)
}

func TestPayMovesPendingToPendingPayment(t *testing.T) {
	f := setupInvoiceService(t)
	invoice := f.seedInvoice(t, domain.InvoiceStatusPending, 250000)

	updated, err := f.svc.Pay(scopedCtx(accessdomain.ByBranchOwner(f.branch)), domain.PayInvoiceRequest{
		ID:        invoice.ID.String(),
		Reference: "TRX-123",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPendingPayment, updated.Status)
	assert.Nil(t, updated.PaidAt)

	var payments []domain.Payment
	require.NoError(t, f.db.Find(&payments, "invoice_id = ?", invoice.ID).Error)
	require.Len(t, payments, 1)
	assert.Equal(t, int64(250000), payments[0].Amount)
	assert.Equal(t, "manual", payments[0].Method)
	assert.Equal(t, "TRX-123", payments[0].Reference)

	// Membership is only applied once the payment is validated.
	var count int64
	require.NoError(t, f.db.Model(&membershipdomain.Membership{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPayZeroAmountSettlesImmediately(t *testing.T) {
	f := setupInvoiceService(t)
	invoice := f.seedInvoice(t, domain.InvoiceStatusPending, 0)

	updated, err := f.svc.Pay(scopedCtx(accessdomain.Unrestricted()), domain.PayInvoiceRequest{
		ID: invoice.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, updated.Status)
	require.NotNil(t, updated.PaidAt)

	var membership membershipdomain.Membership
	require.NoError(t, f.db.First(&membership, "branch_id = ?", f.branch).Error)
	assert.Equal(t, f.level, membership.LevelID)
	assert.Equal(t, f.clock.Now().AddDate(0, 3, 0), membership.EndDate.UTC())
}

func TestPayOutsideScopeNotFound(t *testing.T) {
	f := setupInvoiceService(t)
	invoice := f.seedInvoice(t, domain.InvoiceStatusPending, 250000)

	otherBranch := f.genID.Generate()
	_, err := f.svc.Pay(scopedCtx(accessdomain.ByBranchOwner(otherBranch)), domain.PayInvoiceRequest{
		ID: invoice.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, domain.InvoiceStatusPending, f.reload(t, invoice.ID).Status)
}

func TestPayEmployeeScopeReadOnly(t *testing.T) {
	f := setupInvoiceService(t)
	invoice := f.seedInvoice(t, domain.InvoiceStatusPending, 250000)

	_, err := f.svc.Pay(scopedCtx(accessdomain.ByEmployeeBranch(f.branch)), domain.PayInvoiceRequest{
		ID: invoice.ID.String(),
	})
	assert.ErrorIs(t, err, accessdomain.ErrReadOnly)
	assert.Equal(t, domain.InvoiceStatusPending, f.reload(t, invoice.ID).Status)
}

func TestPayPaidInvoiceRejected(t *testing.T) {
	f := setupInvoiceService(t)
	invoice := f.seedInvoice(t, domain.InvoiceStatusPaid, 250000)

	_, err := f.svc.Pay(scopedCtx(accessdomain.Unrestricted()), domain.PayInvoiceRequest{
		ID: invoice.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func validatorCtx(userID snowflake.ID) context.Context {
	return actorctx.WithUserID(context.Background(), userID)
}

func TestValidateConfirmsPaymentAndCreatesMembership(t *testing.T) {
	f := setupInvoiceService(t)
	f.authz.allowed[authorization.ObjectInvoice+":"+authorization.ActionInvoiceValidate] = true
	invoice := f.seedInvoice(t, domain.InvoiceStatusPendingPayment, 250000)

	updated, err := f.svc.Validate(validatorCtx(f.genID.Generate()), invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, updated.Status)
	require.NotNil(t, updated.PaidAt)

	var membership membershipdomain.Membership
	require.NoError(t, f.db.First(&membership, "branch_id = ?", f.branch).Error)
	assert.Equal(t, f.level, membership.LevelID)
	assert.Equal(t, f.clock.Now(), membership.StartDate.UTC())
	assert.Equal(t, f.clock.Now().AddDate(0, 3, 0), membership.EndDate.UTC())
}

func TestValidateExtendsActiveMembership(t *testing.T) {
	f := setupInvoiceService(t)
	f.authz.allowed[authorization.ObjectInvoice+":"+authorization.ActionInvoiceValidate] = true

	now := f.clock.Now()
	oldLevel := f.genID.Generate()
	oldEnd := now.AddDate(0, 0, 20)
	require.NoError(t, f.db.Create(&membershipdomain.Membership{
		ID:        f.genID.Generate(),
		BranchID:  f.branch,
		LevelID:   oldLevel,
		StartDate: now.AddDate(0, -1, 0),
		EndDate:   oldEnd,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error)

	invoice := f.seedInvoice(t, domain.InvoiceStatusPendingPayment, 250000)

	_, err := f.svc.Validate(validatorCtx(f.genID.Generate()), invoice.ID.String())
	require.NoError(t, err)

	var membership membershipdomain.Membership
	require.NoError(t, f.db.First(&membership, "branch_id = ?", f.branch).Error)
	assert.Equal(t, f.level, membership.LevelID)
	// Remaining time was priced into the invoice, so the new period
	// extends from the old end date rather than from now.
	assert.Equal(t, oldEnd.AddDate(0, 3, 0), membership.EndDate.UTC())
}

func TestValidateExpiredMembershipExtendsFromNow(t *testing.T) {
	f := setupInvoiceService(t)
	f.authz.allowed[authorization.ObjectInvoice+":"+authorization.ActionInvoiceValidate] = true

	now := f.clock.Now()
	require.NoError(t, f.db.Create(&membershipdomain.Membership{
		ID:        f.genID.Generate(),
		BranchID:  f.branch,
		LevelID:   f.genID.Generate(),
		StartDate: now.AddDate(-1, 0, 0),
		EndDate:   now.AddDate(0, 0, -5),
		CreatedAt: now,
		UpdatedAt: now,
	}).Error)

	invoice := f.seedInvoice(t, domain.InvoiceStatusPendingPayment, 250000)

	_, err := f.svc.Validate(validatorCtx(f.genID.Generate()), invoice.ID.String())
	require.NoError(t, err)

	var membership membershipdomain.Membership
	require.NoError(t, f.db.First(&membership, "branch_id = ?", f.branch).Error)
	assert.Equal(t, now.AddDate(0, 3, 0), membership.EndDate.UTC())
}

func TestValidatePendingInvoiceRejected(t *testing.T) {
	f := setupInvoiceService(t)
	f.authz.allowed[authorization.ObjectInvoice+":"+authorization.ActionInvoiceValidate] = true
	invoice := f.seedInvoice(t, domain.InvoiceStatusPending, 250000)

	_, err := f.svc.Validate(validatorCtx(f.genID.Generate()), invoice.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	var stateErr *domain.StateError
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, domain.InvoiceStatusPending, stateErr.From)

	assert.Equal(t, domain.InvoiceStatusPending, f.reload(t, invoice.ID).Status)
}

func TestValidateWithoutCapabilityForbidden(t *testing.T) {
	f := setupInvoiceService(t)
	invoice := f.seedInvoice(t, domain.InvoiceStatusPendingPayment, 250000)

	_, err := f.svc.Validate(validatorCtx(f.genID.Generate()), invoice.ID.String())
	assert.ErrorIs(t, err, authorization.ErrForbidden)
}

func TestValidateWithoutActorRejected(t *testing.T) {
	f := setupInvoiceService(t)
	invoice := f.seedInvoice(t, domain.InvoiceStatusPendingPayment, 250000)

	_, err := f.svc.Validate(context.Background(), invoice.ID.String())
	assert.ErrorIs(t, err, authorization.ErrInvalidActor)
}

func TestCancelPendingPayment(t *testing.T) {
	f := setupInvoiceService(t)
	invoice := f.seedInvoice(t, domain.InvoiceStatusPendingPayment, 250000)

	updated, err := f.svc.Cancel(scopedCtx(accessdomain.ByCustomerOwner(f.cust)), invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusCancelled, updated.Status)
}

func TestCancelPaidInvoiceRejected(t *testing.T) {
	f := setupInvoiceService(t)
	invoice := f.seedInvoice(t, domain.InvoiceStatusPaid, 250000)

	_, err := f.svc.Cancel(scopedCtx(accessdomain.Unrestricted()), invoice.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.InvoiceStatusPaid, f.reload(t, invoice.ID).Status)
}

func TestGetByIDHidesUncoveredInvoice(t *testing.T) {
	f := setupInvoiceService(t)
	invoice := f.seedInvoice(t, domain.InvoiceStatusPending, 250000)

	_, err := f.svc.GetByID(scopedCtx(accessdomain.ByBranchOwner(f.genID.Generate())), domain.GetInvoiceRequest{
		ID: invoice.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPayInvalidID(t *testing.T) {
	f := setupInvoiceService(t)

	_, err := f.svc.Pay(scopedCtx(accessdomain.Unrestricted()), domain.PayInvoiceRequest{ID: "not-a-number"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
