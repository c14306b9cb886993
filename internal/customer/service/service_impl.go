package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	"github.com/smallbiznis/branchdesk/internal/clock"
	"github.com/smallbiznis/branchdesk/internal/customer/domain"
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
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok || scope.Kind != accessdomain.KindUnrestricted {
		return domain.Customer{}, accessdomain.ErrDenied
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Customer{}, domain.ErrInvalidEmail
	}

	var owner *snowflake.ID
	if raw := strings.TrimSpace(req.OwnerUserID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.Customer{}, domain.ErrInvalidOwner
		}
		owner = &id
	}

	now := s.clock.Now()
	customer := domain.Customer{
		ID:          s.genID.Generate(),
		OwnerUserID: owner,
		Name:        name,
		Email:       email,
		Status:      domain.CustomerStatusActive,
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}

	return customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		scope = accessdomain.Denied()
	}

	customers, total, filtered, err := s.repo.List(ctx, s.db, scope, req.Query)
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	return domain.ListCustomerResponse{
		Customers:       customers,
		RecordsTotal:    total,
		RecordsFiltered: filtered,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetCustomerRequest) (domain.Customer, error) {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		return domain.Customer{}, accessdomain.ErrDenied
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil || !scope.Covers(item.ID, 0) {
		return domain.Customer{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Archive(ctx context.Context, rawID string) error {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		return accessdomain.ErrDenied
	}

	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if item == nil || !scope.Covers(item.ID, 0) {
		return domain.ErrNotFound
	}
	if !scope.CanWrite() {
		return accessdomain.ErrReadOnly
	}

	return s.repo.UpdateFields(ctx, s.db, id, map[string]any{
		"status":     domain.CustomerStatusArchived,
		"updated_at": s.clock.Now(),
	})
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
