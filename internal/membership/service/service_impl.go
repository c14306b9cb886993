package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	branchdomain "github.com/smallbiznis/branchdesk/internal/branch/domain"
	"github.com/smallbiznis/branchdesk/internal/clock"
	invoicedomain "github.com/smallbiznis/branchdesk/internal/invoice/domain"
	leveldomain "github.com/smallbiznis/branchdesk/internal/level/domain"
	"github.com/smallbiznis/branchdesk/internal/membership/domain"
	"github.com/smallbiznis/branchdesk/internal/membership/pricing"
	"github.com/smallbiznis/branchdesk/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minPeriodMonths = 1
	maxPeriodMonths = 12
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Branches branchdomain.Repository
	Levels   leveldomain.Repository
	Invoices invoicedomain.Repository
	Pricer   *pricing.Calculator
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	branches branchdomain.Repository
	levels   leveldomain.Repository
	invoices invoicedomain.Repository
	pricer   *pricing.Calculator
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("membership.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		branches: p.Branches,
		levels:   p.Levels,
		invoices: p.Invoices,
		pricer:   p.Pricer,
		metrics:  p.Metrics,
	}
}

func (s *Service) Quote(ctx context.Context, req domain.QuoteUpgradeRequest) (domain.UpgradeQuote, error) {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		return domain.UpgradeQuote{}, accessdomain.ErrDenied
	}

	quote, _, err := s.buildQuote(ctx, s.db, scope, req, false)
	if err != nil {
		return domain.UpgradeQuote{}, err
	}
	s.metrics.RecordUpgradeQuote()
	return quote, nil
}

func (s *Service) Upgrade(ctx context.Context, req domain.QuoteUpgradeRequest) (domain.UpgradeResult, error) {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		return domain.UpgradeResult{}, accessdomain.ErrDenied
	}
	if !scope.CanWrite() {
		return domain.UpgradeResult{}, accessdomain.ErrReadOnly
	}

	var result domain.UpgradeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quote, branch, err := s.buildQuote(ctx, tx, scope, req, true)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		invoice := invoicedomain.Invoice{
			ID:           s.genID.Generate(),
			CustomerID:   branch.CustomerID,
			BranchID:     branch.ID,
			FromLevelID:  quote.FromLevelID,
			LevelID:      quote.LevelID,
			PeriodMonths: quote.PeriodMonths,
			Amount:       quote.Breakdown.Total,
			Status:       invoicedomain.InvoiceStatusPending,
			CheckoutRef:  uuid.NewString(),
			IssuedAt:     now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.invoices.Insert(ctx, tx, &invoice); err != nil {
			return err
		}

		result = domain.UpgradeResult{
			InvoiceID:   invoice.ID,
			CheckoutRef: invoice.CheckoutRef,
			Amount:      invoice.Amount,
			Breakdown:   quote.Breakdown,
		}
		return nil
	})
	if err != nil {
		return domain.UpgradeResult{}, err
	}

	s.metrics.RecordInvoiceEvent("issued")
	s.log.Info("upgrade invoice issued",
		zap.String("invoice_id", result.InvoiceID.String()),
		zap.String("checkout_ref", result.CheckoutRef),
		zap.Int64("amount", result.Amount),
	)
	return result, nil
}

// buildQuote validates the request against the scope and prices it.
// With forUpdate set the membership row is locked for the caller's
// transaction so concurrent upgrades serialize on it.
func (s *Service) buildQuote(ctx context.Context, db *gorm.DB, scope accessdomain.Scope, req domain.QuoteUpgradeRequest, forUpdate bool) (domain.UpgradeQuote, *branchdomain.Branch, error) {
	branchID, err := snowflake.ParseString(strings.TrimSpace(req.BranchID))
	if err != nil || branchID == 0 {
		return domain.UpgradeQuote{}, nil, domain.ErrInvalidBranch
	}

	levelID, err := snowflake.ParseString(strings.TrimSpace(req.LevelID))
	if err != nil || levelID == 0 {
		return domain.UpgradeQuote{}, nil, domain.ErrInvalidLevel
	}

	if req.PeriodMonths < minPeriodMonths || req.PeriodMonths > maxPeriodMonths {
		return domain.UpgradeQuote{}, nil, domain.ErrInvalidPeriod
	}

	branch, err := s.branches.FindByID(ctx, db, branchID)
	if err != nil {
		return domain.UpgradeQuote{}, nil, err
	}
	if branch == nil || !scope.Covers(branch.CustomerID, branch.ID) {
		return domain.UpgradeQuote{}, nil, domain.ErrInvalidBranch
	}

	target, err := s.levels.FindByID(ctx, db, levelID)
	if err != nil {
		return domain.UpgradeQuote{}, nil, err
	}
	if target == nil || target.Status != leveldomain.LevelStatusActive {
		return domain.UpgradeQuote{}, nil, domain.ErrInvalidLevel
	}

	var membership *domain.Membership
	if forUpdate {
		membership, err = s.repo.FindByBranchForUpdate(ctx, db, branch.ID)
	} else {
		membership, err = s.repo.FindByBranch(ctx, db, branch.ID)
	}
	if err != nil {
		return domain.UpgradeQuote{}, nil, err
	}

	now := s.clock.Now()

	var current *pricing.CurrentPlan
	var fromLevelID *snowflake.ID
	if membership != nil && membership.ActiveAt(now) {
		currentLevel, err := s.levels.FindByID(ctx, db, membership.LevelID)
		if err != nil {
			return domain.UpgradeQuote{}, nil, err
		}
		if currentLevel != nil {
			if target.SortOrder <= currentLevel.SortOrder {
				return domain.UpgradeQuote{}, nil, domain.ErrNotUpgrade
			}
			current = &pricing.CurrentPlan{
				PricePerMonth: currentLevel.PricePerMonth,
				EndDate:       membership.EndDate,
			}
			id := currentLevel.ID
			fromLevelID = &id
		}
	}

	breakdown := s.pricer.Price(now, current, target.PricePerMonth, req.PeriodMonths)

	return domain.UpgradeQuote{
		BranchID:     branch.ID,
		FromLevelID:  fromLevelID,
		LevelID:      target.ID,
		PeriodMonths: req.PeriodMonths,
		Breakdown:    breakdown,
	}, branch, nil
}

func (s *Service) List(ctx context.Context, req domain.ListMembershipRequest) (domain.ListMembershipResponse, error) {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		scope = accessdomain.Denied()
	}

	memberships, total, filtered, err := s.repo.List(ctx, s.db, scope, req.Query)
	if err != nil {
		return domain.ListMembershipResponse{}, err
	}

	now := s.clock.Now()
	views := make([]domain.MembershipView, 0, len(memberships))
	for _, membership := range memberships {
		views = append(views, domain.MembershipView{
			Membership:    membership,
			DerivedStatus: membership.StatusAt(now),
		})
	}

	return domain.ListMembershipResponse{
		Memberships:     views,
		RecordsTotal:    total,
		RecordsFiltered: filtered,
	}, nil
}

func (s *Service) GetByBranch(ctx context.Context, rawBranchID string) (domain.MembershipView, error) {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		return domain.MembershipView{}, accessdomain.ErrDenied
	}

	branchID, err := snowflake.ParseString(strings.TrimSpace(rawBranchID))
	if err != nil || branchID == 0 {
		return domain.MembershipView{}, domain.ErrInvalidBranch
	}

	branch, err := s.branches.FindByID(ctx, s.db, branchID)
	if err != nil {
		return domain.MembershipView{}, err
	}
	if branch == nil || !scope.Covers(branch.CustomerID, branch.ID) {
		return domain.MembershipView{}, domain.ErrNotFound
	}

	membership, err := s.repo.FindByBranch(ctx, s.db, branch.ID)
	if err != nil {
		return domain.MembershipView{}, err
	}
	if membership == nil {
		return domain.MembershipView{}, domain.ErrNotFound
	}

	return domain.MembershipView{
		Membership:    *membership,
		DerivedStatus: membership.StatusAt(s.clock.Now()),
	}, nil
}
