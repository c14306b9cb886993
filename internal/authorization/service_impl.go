package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Can(ctx context.Context, userID snowflake.ID, object string, action string) (bool, error) {
	_ = ctx
	subject, err := subjectForUser(userID)
	if err != nil {
		return false, err
	}
	object = strings.TrimSpace(object)
	action = strings.TrimSpace(action)
	if object == "" || action == "" {
		return false, ErrForbidden
	}
	return s.enforcer.Enforce(subject, object, action)
}

func (s *ServiceImpl) IsAdministrator(ctx context.Context, userID snowflake.ID) (bool, error) {
	_ = ctx
	subject, err := subjectForUser(userID)
	if err != nil {
		return false, err
	}
	return s.enforcer.HasRoleForUser(subject, AdministratorRole)
}

func (s *ServiceImpl) GrantAdministrator(ctx context.Context, userID snowflake.ID) error {
	_ = ctx
	subject, err := subjectForUser(userID)
	if err != nil {
		return err
	}
	if _, err := s.enforcer.AddGroupingPolicy(subject, AdministratorRole); err != nil {
		return err
	}
	s.log.Info("administrator role granted", zap.String("user_id", userID.String()))
	return nil
}

func (s *ServiceImpl) RevokeAdministrator(ctx context.Context, userID snowflake.ID) error {
	_ = ctx
	subject, err := subjectForUser(userID)
	if err != nil {
		return err
	}
	if _, err := s.enforcer.RemoveGroupingPolicy(subject, AdministratorRole); err != nil {
		return err
	}
	s.log.Info("administrator role revoked", zap.String("user_id", userID.String()))
	return nil
}

func subjectForUser(userID snowflake.ID) (string, error) {
	if userID == 0 {
		return "", ErrInvalidActor
	}
	return fmt.Sprintf("user:%s", userID.String()), nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Administrators hold every capability.
		{AdministratorRole, "*", "*"},
	}

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
