package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/branchdesk/internal/actorctx"
	"github.com/smallbiznis/branchdesk/internal/authorization"
	"github.com/smallbiznis/branchdesk/internal/clock"
	"github.com/smallbiznis/branchdesk/internal/level/domain"
	"github.com/smallbiznis/branchdesk/pkg/db"
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
	Authz authorization.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	authz authorization.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("level.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		authz: p.Authz,
	}
}

var codePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,31}$`)

func (s *Service) Create(ctx context.Context, req domain.CreateLevelRequest) (domain.MembershipLevel, error) {
	if err := s.requireCapability(ctx, authorization.ActionLevelCreate); err != nil {
		return domain.MembershipLevel{}, err
	}

	code := strings.ToLower(strings.TrimSpace(req.Code))
	if !codePattern.MatchString(code) {
		return domain.MembershipLevel{}, domain.ErrInvalidCode
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.MembershipLevel{}, domain.ErrInvalidName
	}

	if req.PricePerMonth < 0 {
		return domain.MembershipLevel{}, domain.ErrInvalidPrice
	}

	existing, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.MembershipLevel{}, err
	}
	if existing != nil {
		return domain.MembershipLevel{}, domain.ErrCodeExists
	}

	capabilities := datatypes.JSONMap{}
	for key, value := range req.Capabilities {
		capabilities[key] = value
	}

	now := s.clock.Now()
	level := domain.MembershipLevel{
		ID:            s.genID.Generate(),
		Code:          code,
		Name:          name,
		PricePerMonth: req.PricePerMonth,
		SortOrder:     req.SortOrder,
		Capabilities:  capabilities,
		Status:        domain.LevelStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &level); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.MembershipLevel{}, domain.ErrCodeExists
		}
		return domain.MembershipLevel{}, err
	}

	return level, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateLevelRequest) (domain.MembershipLevel, error) {
	if err := s.requireCapability(ctx, authorization.ActionLevelUpdate); err != nil {
		return domain.MembershipLevel{}, err
	}

	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.MembershipLevel{}, domain.ErrInvalidID
	}

	level, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.MembershipLevel{}, err
	}
	if level == nil {
		return domain.MembershipLevel{}, domain.ErrNotFound
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.MembershipLevel{}, domain.ErrInvalidName
		}
		fields["name"] = name
		level.Name = name
	}
	if req.PricePerMonth != nil {
		if *req.PricePerMonth < 0 {
			return domain.MembershipLevel{}, domain.ErrInvalidPrice
		}
		fields["price_per_month"] = *req.PricePerMonth
		level.PricePerMonth = *req.PricePerMonth
	}
	if req.SortOrder != nil {
		fields["sort_order"] = *req.SortOrder
		level.SortOrder = *req.SortOrder
	}
	if req.Status != nil {
		status := domain.LevelStatus(strings.TrimSpace(*req.Status))
		if status != domain.LevelStatusActive && status != domain.LevelStatusRetired {
			return domain.MembershipLevel{}, domain.ErrInvalidStatus
		}
		fields["status"] = status
		level.Status = status
	}
	if len(fields) == 0 {
		return *level, nil
	}

	now := s.clock.Now()
	fields["updated_at"] = now
	level.UpdatedAt = now

	if err := s.repo.UpdateFields(ctx, s.db, level.ID, fields); err != nil {
		return domain.MembershipLevel{}, err
	}
	return *level, nil
}

func (s *Service) List(ctx context.Context) ([]domain.MembershipLevel, error) {
	return s.repo.ListActive(ctx, s.db)
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.MembershipLevel, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return domain.MembershipLevel{}, domain.ErrInvalidID
	}

	level, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.MembershipLevel{}, err
	}
	if level == nil {
		return domain.MembershipLevel{}, domain.ErrNotFound
	}
	return *level, nil
}

func (s *Service) requireCapability(ctx context.Context, action string) error {
	userID, ok := actorctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return authorization.ErrInvalidActor
	}

	allowed, err := s.authz.Can(ctx, userID, authorization.ObjectLevel, action)
	if err != nil {
		return err
	}
	if !allowed {
		return authorization.ErrForbidden
	}
	return nil
}
