package migration

import (
	"context"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/branchdesk/internal/auth/domain"
	"github.com/smallbiznis/branchdesk/internal/authorization"
	branchdomain "github.com/smallbiznis/branchdesk/internal/branch/domain"
	"github.com/smallbiznis/branchdesk/internal/clock"
	"github.com/smallbiznis/branchdesk/internal/config"
	customerdomain "github.com/smallbiznis/branchdesk/internal/customer/domain"
	employeedomain "github.com/smallbiznis/branchdesk/internal/employee/domain"
	invoicedomain "github.com/smallbiznis/branchdesk/internal/invoice/domain"
	leveldomain "github.com/smallbiznis/branchdesk/internal/level/domain"
	membershipdomain "github.com/smallbiznis/branchdesk/internal/membership/domain"
	"github.com/smallbiznis/branchdesk/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Conn   *gorm.DB
	Cfg    config.Config
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Users  authdomain.Repository
	Auth   authdomain.Service
	Authz  authorization.Service
	Levels leveldomain.Repository
}

var Module = fx.Module("migrations",
	fx.Invoke(func(p Params) error {
		ctx := context.Background()

		if p.Cfg.DBType == "postgres" {
			sqlDB, err := p.Conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// SQLite and MySQL are for local runs; the gorm models are
			// the source of truth there.
			if err := p.Conn.AutoMigrate(
				&authdomain.User{},
				&authdomain.Session{},
				&customerdomain.Customer{},
				&branchdomain.Branch{},
				&employeedomain.Employee{},
				&leveldomain.MembershipLevel{},
				&membershipdomain.Membership{},
				&invoicedomain.Invoice{},
				&invoicedomain.Payment{},
			); err != nil {
				return err
			}
		}

		if err := seed.EnsureAdminUser(ctx, p.Log, p.Cfg, p.Users, p.Auth, p.Authz); err != nil {
			return err
		}
		return seed.EnsureDefaultLevels(ctx, p.Conn, p.GenID, p.Clock, p.Levels)
	}),
)
