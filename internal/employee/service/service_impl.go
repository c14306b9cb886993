package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	branchdomain "github.com/smallbiznis/branchdesk/internal/branch/domain"
	"github.com/smallbiznis/branchdesk/internal/clock"
	"github.com/smallbiznis/branchdesk/internal/employee/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Branches branchdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	branches branchdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("employee.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		branches: p.Branches,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEmployeeRequest) (domain.Employee, error) {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		return domain.Employee{}, accessdomain.ErrDenied
	}

	branchID, err := snowflake.ParseString(strings.TrimSpace(req.BranchID))
	if err != nil || branchID == 0 {
		return domain.Employee{}, domain.ErrInvalidBranch
	}

	branch, err := s.branches.FindByID(ctx, s.db, branchID)
	if err != nil {
		return domain.Employee{}, err
	}
	if branch == nil || !scope.Covers(branch.CustomerID, branch.ID) {
		return domain.Employee{}, domain.ErrInvalidBranch
	}
	if !scope.CanWrite() {
		return domain.Employee{}, accessdomain.ErrReadOnly
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return domain.Employee{}, domain.ErrInvalidFullName
	}

	var userID *snowflake.ID
	if raw := strings.TrimSpace(req.UserID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.Employee{}, domain.ErrInvalidUser
		}
		userID = &id
	}

	now := s.clock.Now()
	employee := domain.Employee{
		ID:        s.genID.Generate(),
		BranchID:  branch.ID,
		UserID:    userID,
		FullName:  fullName,
		Status:    domain.EmployeeStatusActive,
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &employee); err != nil {
		return domain.Employee{}, err
	}

	return employee, nil
}

func (s *Service) List(ctx context.Context, req domain.ListEmployeeRequest) (domain.ListEmployeeResponse, error) {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		scope = accessdomain.Denied()
	}

	employees, total, filtered, err := s.repo.List(ctx, s.db, scope, req.Query)
	if err != nil {
		return domain.ListEmployeeResponse{}, err
	}

	return domain.ListEmployeeResponse{
		Employees:       employees,
		RecordsTotal:    total,
		RecordsFiltered: filtered,
	}, nil
}

func (s *Service) Deactivate(ctx context.Context, rawID string) error {
	scope, ok := accessdomain.ScopeFromContext(ctx)
	if !ok {
		return accessdomain.ErrDenied
	}

	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return domain.ErrInvalidID
	}

	employee, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if employee == nil {
		return domain.ErrNotFound
	}

	branch, err := s.branches.FindByID(ctx, s.db, employee.BranchID)
	if err != nil {
		return err
	}
	if branch == nil || !scope.Covers(branch.CustomerID, branch.ID) {
		return domain.ErrNotFound
	}
	if !scope.CanWrite() {
		return accessdomain.ErrReadOnly
	}

	if employee.EndedAt != nil {
		return domain.ErrAlreadyEnded
	}

	now := s.clock.Now()
	return s.repo.UpdateFields(ctx, s.db, employee.ID, map[string]any{
		"status":     domain.EmployeeStatusInactive,
		"ended_at":   now,
		"updated_at": now,
	})
}
