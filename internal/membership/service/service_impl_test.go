package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	branchdomain "github.com/smallbiznis/branchdesk/internal/branch/domain"
	branchrepo "github.com/smallbiznis/branchdesk/internal/branch/repository"
	"github.com/smallbiznis/branchdesk/internal/clock"
	"github.com/smallbiznis/branchdesk/internal/config"
	invoicedomain "github.com/smallbiznis/branchdesk/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/branchdesk/internal/invoice/repository"
	leveldomain "github.com/smallbiznis/branchdesk/internal/level/domain"
	levelrepo "github.com/smallbiznis/branchdesk/internal/level/repository"
	"github.com/smallbiznis/branchdesk/internal/membership/domain"
	"github.com/smallbiznis/branchdesk/internal/membership/pricing"
	"github.com/smallbiznis/branchdesk/internal/membership/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type membershipFixture struct {
	svc      domain.Service
	db       *gorm.DB
	clock    *clock.FakeClock
	genID    *snowflake.Node
	cust     snowflake.ID
	branch   branchdomain.Branch
	basic    leveldomain.MembershipLevel
	business leveldomain.MembershipLevel
}

func setupMembershipService(t *testing.T) *membershipFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&branchdomain.Branch{},
		&leveldomain.MembershipLevel{},
		&domain.Membership{},
		&invoicedomain.Invoice{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	holder, err := config.NewPricingConfigHolder()
	if err != nil {
		t.Fatalf("pricing config: %v", err)
	}

	fc := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	now := fc.Now()

	f := &membershipFixture{
		db:    db,
		clock: fc,
		genID: node,
		cust:  node.Generate(),
	}

	f.branch = branchdomain.Branch{
		ID:         node.Generate(),
		CustomerID: f.cust,
		Name:       "central",
		Status:     branchdomain.BranchStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, db.Create(&f.branch).Error)

	f.basic = leveldomain.MembershipLevel{
		ID:            node.Generate(),
		Code:          "basic",
		Name:          "Basic",
		PricePerMonth: 100000,
		SortOrder:     10,
		Status:        leveldomain.LevelStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.business = leveldomain.MembershipLevel{
		ID:            node.Generate(),
		Code:          "business",
		Name:          "Business",
		PricePerMonth: 200000,
		SortOrder:     20,
		Status:        leveldomain.LevelStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, db.Create(&f.basic).Error)
	require.NoError(t, db.Create(&f.business).Error)

	f.svc = New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fc,
		Repo:     repository.Provide(),
		Branches: branchrepo.Provide(),
		Levels:   levelrepo.Provide(),
		Invoices: invoicerepo.Provide(),
		Pricer:   pricing.NewCalculator(holder),
	})
	return f
}

func (f *membershipFixture) seedMembership(t *testing.T, levelID snowflake.ID, endDate time.Time) domain.Membership {
	t.Helper()

	now := f.clock.Now()
	membership := domain.Membership{
		ID:        f.genID.Generate(),
		BranchID:  f.branch.ID,
		LevelID:   levelID,
		StartDate: now.AddDate(0, -1, 0),
		EndDate:   endDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.db.Create(&membership).Error)
	return membership
}

func ownerCtx(f *membershipFixture) context.Context {
	return accessdomain.WithScope(context.Background(), accessdomain.ByCustomerOwner(f.cust))
}

func TestQuoteFreshBranchFullPrice(t *testing.T) {
	f := setupMembershipService(t)

	quote, err := f.svc.Quote(ownerCtx(f), domain.QuoteUpgradeRequest{
		BranchID:     f.branch.ID.String(),
		LevelID:      f.business.ID.String(),
		PeriodMonths: 3,
	})
	require.NoError(t, err)

	assert.Nil(t, quote.FromLevelID)
	assert.Equal(t, f.business.ID, quote.LevelID)
	assert.Equal(t, int64(600000), quote.Breakdown.Base)
	assert.Zero(t, quote.Breakdown.Credit)
	assert.Zero(t, quote.Breakdown.RemainingDays)
	assert.Equal(t, int64(600000), quote.Breakdown.Total)
}

func TestQuoteProratesActiveMembership(t *testing.T) {
	f := setupMembershipService(t)
	f.seedMembership(t, f.basic.ID, f.clock.Now().AddDate(0, 0, 15))

	quote, err := f.svc.Quote(ownerCtx(f), domain.QuoteUpgradeRequest{
		BranchID:     f.branch.ID.String(),
		LevelID:      f.business.ID.String(),
		PeriodMonths: 1,
	})
	require.NoError(t, err)

	require.NotNil(t, quote.FromLevelID)
	assert.Equal(t, f.basic.ID, *quote.FromLevelID)
	assert.Equal(t, 15, quote.Breakdown.RemainingDays)
	assert.Equal(t, int64(200000), quote.Breakdown.Base)
	assert.Equal(t, int64(50000), quote.Breakdown.Credit)
	assert.Equal(t, int64(100000), quote.Breakdown.CostOfRemaining)
	assert.Equal(t, int64(250000), quote.Breakdown.Total)
}

func TestQuoteExpiredMembershipNoProration(t *testing.T) {
	f := setupMembershipService(t)
	f.seedMembership(t, f.basic.ID, f.clock.Now().AddDate(0, 0, -1))

	quote, err := f.svc.Quote(ownerCtx(f), domain.QuoteUpgradeRequest{
		BranchID:     f.branch.ID.String(),
		LevelID:      f.business.ID.String(),
		PeriodMonths: 3,
	})
	require.NoError(t, err)

	assert.Nil(t, quote.FromLevelID)
	assert.Zero(t, quote.Breakdown.Credit)
	assert.Equal(t, int64(600000), quote.Breakdown.Total)
}

func TestQuoteSameLevelNotAnUpgrade(t *testing.T) {
	f := setupMembershipService(t)
	f.seedMembership(t, f.business.ID, f.clock.Now().AddDate(0, 1, 0))

	_, err := f.svc.Quote(ownerCtx(f), domain.QuoteUpgradeRequest{
		BranchID:     f.branch.ID.String(),
		LevelID:      f.business.ID.String(),
		PeriodMonths: 3,
	})
	assert.ErrorIs(t, err, domain.ErrNotUpgrade)
}

func TestQuoteDowngradeRejected(t *testing.T) {
	f := setupMembershipService(t)
	f.seedMembership(t, f.business.ID, f.clock.Now().AddDate(0, 1, 0))

	_, err := f.svc.Quote(ownerCtx(f), domain.QuoteUpgradeRequest{
		BranchID:     f.branch.ID.String(),
		LevelID:      f.basic.ID.String(),
		PeriodMonths: 3,
	})
	assert.ErrorIs(t, err, domain.ErrNotUpgrade)
}

func TestQuotePeriodBounds(t *testing.T) {
	f := setupMembershipService(t)

	for _, months := range []int{0, -1, 13} {
		_, err := f.svc.Quote(ownerCtx(f), domain.QuoteUpgradeRequest{
			BranchID:     f.branch.ID.String(),
			LevelID:      f.business.ID.String(),
			PeriodMonths: months,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidPeriod, "months=%d", months)
	}
}

func TestQuoteBranchOutsideScope(t *testing.T) {
	f := setupMembershipService(t)

	otherCustomer := f.genID.Generate()
	ctx := accessdomain.WithScope(context.Background(), accessdomain.ByCustomerOwner(otherCustomer))

	_, err := f.svc.Quote(ctx, domain.QuoteUpgradeRequest{
		BranchID:     f.branch.ID.String(),
		LevelID:      f.business.ID.String(),
		PeriodMonths: 3,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidBranch)
}

func TestQuoteRetiredLevelRejected(t *testing.T) {
	f := setupMembershipService(t)
	require.NoError(t, f.db.Model(&leveldomain.MembershipLevel{}).
		Where("id = ?", f.business.ID).
		Update("status", leveldomain.LevelStatusRetired).Error)

	_, err := f.svc.Quote(ownerCtx(f), domain.QuoteUpgradeRequest{
		BranchID:     f.branch.ID.String(),
		LevelID:      f.business.ID.String(),
		PeriodMonths: 3,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidLevel)
}

func TestUpgradeIssuesPendingInvoice(t *testing.T) {
	f := setupMembershipService(t)
	f.seedMembership(t, f.basic.ID, f.clock.Now().AddDate(0, 0, 15))

	result, err := f.svc.Upgrade(ownerCtx(f), domain.QuoteUpgradeRequest{
		BranchID:     f.branch.ID.String(),
		LevelID:      f.business.ID.String(),
		PeriodMonths: 1,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.CheckoutRef)
	assert.Equal(t, int64(250000), result.Amount)

	var invoice invoicedomain.Invoice
	require.NoError(t, f.db.First(&invoice, "id = ?", result.InvoiceID).Error)
	assert.Equal(t, invoicedomain.InvoiceStatusPending, invoice.Status)
	assert.Equal(t, f.branch.ID, invoice.BranchID)
	assert.Equal(t, f.cust, invoice.CustomerID)
	assert.Equal(t, f.business.ID, invoice.LevelID)
	require.NotNil(t, invoice.FromLevelID)
	assert.Equal(t, f.basic.ID, *invoice.FromLevelID)
	assert.Equal(t, 1, invoice.PeriodMonths)
	assert.Equal(t, result.CheckoutRef, invoice.CheckoutRef)

	// Issuing the invoice does not touch the membership itself.
	var membership domain.Membership
	require.NoError(t, f.db.First(&membership, "branch_id = ?", f.branch.ID).Error)
	assert.Equal(t, f.basic.ID, membership.LevelID)
}

func TestUpgradeEmployeeScopeReadOnly(t *testing.T) {
	f := setupMembershipService(t)

	ctx := accessdomain.WithScope(context.Background(), accessdomain.ByEmployeeBranch(f.branch.ID))
	_, err := f.svc.Upgrade(ctx, domain.QuoteUpgradeRequest{
		BranchID:     f.branch.ID.String(),
		LevelID:      f.business.ID.String(),
		PeriodMonths: 3,
	})
	assert.ErrorIs(t, err, accessdomain.ErrReadOnly)

	var count int64
	require.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetByBranchDerivesStatusFromClock(t *testing.T) {
	f := setupMembershipService(t)
	f.seedMembership(t, f.basic.ID, f.clock.Now().AddDate(0, 0, 10))

	view, err := f.svc.GetByBranch(ownerCtx(f), f.branch.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipStatusActive, view.DerivedStatus)

	f.clock.Advance(11 * 24 * time.Hour)

	view, err = f.svc.GetByBranch(ownerCtx(f), f.branch.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipStatusExpired, view.DerivedStatus)
}

func TestQuoteWithoutScopeDenied(t *testing.T) {
	f := setupMembershipService(t)

	_, err := f.svc.Quote(context.Background(), domain.QuoteUpgradeRequest{
		BranchID:     f.branch.ID.String(),
		LevelID:      f.business.ID.String(),
		PeriodMonths: 3,
	})
	assert.ErrorIs(t, err, accessdomain.ErrDenied)
}
