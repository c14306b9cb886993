package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	"github.com/smallbiznis/branchdesk/internal/branch/domain"
	"github.com/smallbiznis/branchdesk/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("branch.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateBranchRequest) (domain.Branch, error) {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		return domain.Branch{}, accessdomain.ErrDenied
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.Branch{}, domain.ErrInvalidCustomer
	}

	// New branches hang off a customer, so only the customer's owner or
	// an administrator may open one.
	if !scope.Covers(customerID, 0) {
		return domain.Branch{}, accessdomain.ErrDenied
	}
	if !scope.CanWrite() {
		return domain.Branch{}, accessdomain.ErrReadOnly
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Branch{}, domain.ErrInvalidName
	}

	var owner *snowflake.ID
	if raw := strings.TrimSpace(req.OwnerUserID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.Branch{}, domain.ErrInvalidOwner
		}
		owner = &id
	}

	now := s.clock.Now()
	branch := domain.Branch{
		ID:          s.genID.Generate(),
		CustomerID:  customerID,
		OwnerUserID: owner,
		Name:        name,
		City:        strings.TrimSpace(req.City),
		Phone:       strings.TrimSpace(req.Phone),
		Status:      domain.BranchStatusActive,
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &branch); err != nil {
		return domain.Branch{}, err
	}

	return branch, nil
}

func (s *Service) List(ctx context.Context, req domain.ListBranchRequest) (domain.ListBranchResponse, error) {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		scope = accessdomain.Denied()
	}

	branches, total, filtered, err := s.repo.List(ctx, s.db, scope, req.Query)
	if err != nil {
		return domain.ListBranchResponse{}, err
	}

	return domain.ListBranchResponse{
		Branches:        branches,
		RecordsTotal:    total,
		RecordsFiltered: filtered,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetBranchRequest) (domain.Branch, error) {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		return domain.Branch{}, accessdomain.ErrDenied
	}

	branch, err := s.load(ctx, req.ID, scope)
	if err != nil {
		return domain.Branch{}, err
	}
	return *branch, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateBranchRequest) (domain.Branch, error) {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		return domain.Branch{}, accessdomain.ErrDenied
	}

	branch, err := s.load(ctx, req.ID, scope)
	if err != nil {
		return domain.Branch{}, err
	}
	if !scope.CanWrite() {
		return domain.Branch{}, accessdomain.ErrReadOnly
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Branch{}, domain.ErrInvalidName
		}
		fields["name"] = name
		branch.Name = name
	}
	if req.City != nil {
		city := strings.TrimSpace(*req.City)
		fields["city"] = city
		branch.City = city
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		fields["phone"] = phone
		branch.Phone = phone
	}
	if len(fields) == 0 {
		return *branch, nil
	}

	now := s.clock.Now()
	fields["updated_at"] = now
	branch.UpdatedAt = now

	if err := s.repo.UpdateFields(ctx, s.db, branch.ID, fields); err != nil {
		return domain.Branch{}, err
	}
	return *branch, nil
}

func (s *Service) Archive(ctx context.Context, rawID string) error {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		return accessdomain.ErrDenied
	}

	branch, err := s.load(ctx, rawID, scope)
	if err != nil {
		return err
	}
	if !scope.CanWrite() {
		return accessdomain.ErrReadOnly
	}

	return s.repo.UpdateFields(ctx, s.db, branch.ID, map[string]any{
		"status":     domain.BranchStatusArchived,
		"updated_at": s.clock.Now(),
	})
}

// load fetches a branch and hides it behind ErrNotFound when the scope
// does not cover it.
func (s *Service) load(ctx context.Context, rawID string, scope accessdomain.Scope) (*domain.Branch, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}

	branch, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if branch == nil || !scope.Covers(branch.CustomerID, branch.ID) {
		return nil, domain.ErrNotFound
	}
	return branch, nil
}
