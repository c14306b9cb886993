package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/branchdesk/internal/access/domain"
	"github.com/smallbiznis/branchdesk/internal/authorization"
	"github.com/smallbiznis/branchdesk/internal/clock"
	"github.com/smallbiznis/branchdesk/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Repo    domain.Repository
	Authz   authorization.Service
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    domain.Repository
	authz   authorization.Service
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("access.service"),
		clock:   p.Clock,
		repo:    p.Repo,
		authz:   p.Authz,
		metrics: p.Metrics,
	}
}

// Resolve walks the ownership relations in strict priority order and
// returns the first match. It never widens on failure: an actor whose
// owning record is gone gets the denied scope, and storage errors
// propagate so callers cannot mistake an outage for "no access".
func (s *Service) Resolve(ctx context.Context, userID snowflake.ID) (domain.Scope, error) {
	if userID == 0 {
		return domain.Denied(), domain.ErrInvalidActor
	}

	scope, err := s.resolve(ctx, userID)
	if err != nil {
		return domain.Denied(), err
	}
	s.metrics.RecordAccessResolution(string(scope.Kind))
	return scope, nil
}

func (s *Service) resolve(ctx context.Context, userID snowflake.ID) (domain.Scope, error) {
	isAdmin, err := s.authz.IsAdministrator(ctx, userID)
	if err != nil {
		return domain.Denied(), err
	}
	if isAdmin {
		return domain.Unrestricted(), nil
	}

	customer, err := s.repo.FindCustomerOwnedBy(ctx, s.db, userID)
	if err != nil {
		return domain.Denied(), err
	}
	if customer != nil {
		return domain.ByCustomerOwner(customer.ID), nil
	}

	branch, err := s.repo.FindBranchOwnedBy(ctx, s.db, userID)
	if err != nil {
		return domain.Denied(), err
	}
	if branch != nil {
		return domain.ByBranchOwner(branch.ID), nil
	}

	employment, err := s.repo.FindActiveEmployment(ctx, s.db, userID, s.clock.Now())
	if err != nil {
		return domain.Denied(), err
	}
	if employment != nil {
		return domain.ByEmployeeBranch(employment.BranchID), nil
	}

	return domain.Denied(), nil
}
