// Package seed makes a fresh installation usable: a bootstrap
// administrator account and a starter level catalog.
package seed

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/branchdesk/internal/auth/domain"
	"github.com/smallbiznis/branchdesk/internal/authorization"
	"github.com/smallbiznis/branchdesk/internal/clock"
	"github.com/smallbiznis/branchdesk/internal/config"
	leveldomain "github.com/smallbiznis/branchdesk/internal/level/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnsureAdminUser creates the bootstrap administrator on first start and
// grants it the administrator role. Existing installs are left alone.
func EnsureAdminUser(
	ctx context.Context,
	log *zap.Logger,
	cfg config.Config,
	users authdomain.Repository,
	auth authdomain.Service,
	authz authorization.Service,
) error {
	if cfg.BootstrapAdminEmail == "" {
		return nil
	}

	existing, err := users.FindByEmail(ctx, cfg.BootstrapAdminEmail)
	if err != nil && !errors.Is(err, authdomain.ErrUserNotFound) {
		return err
	}
	if existing != nil {
		return authz.GrantAdministrator(ctx, existing.ID)
	}

	password := cfg.BootstrapAdminPassword
	generated := false
	if password == "" {
		buf := make([]byte, 16)
		if _, err := rand.Read(buf); err != nil {
			return err
		}
		password = hex.EncodeToString(buf)
		generated = true
	}

	user, err := auth.CreateUser(ctx, authdomain.CreateUserRequest{
		Email:       cfg.BootstrapAdminEmail,
		Password:    password,
		DisplayName: "Administrator",
	})
	if err != nil {
		return err
	}

	if err := authz.GrantAdministrator(ctx, user.ID); err != nil {
		return err
	}

	if generated {
		// Logged once so the operator can log in; rotate it immediately.
		log.Warn("bootstrap administrator created with generated password",
			zap.String("email", cfg.BootstrapAdminEmail),
			zap.String("password", password),
		)
	} else {
		log.Info("bootstrap administrator created",
			zap.String("email", cfg.BootstrapAdminEmail),
		)
	}
	return nil
}

// EnsureDefaultLevels inserts the starter catalog when no levels exist.
func EnsureDefaultLevels(
	ctx context.Context,
	db *gorm.DB,
	genID *snowflake.Node,
	clk clock.Clock,
	levels leveldomain.Repository,
) error {
	defaults := []leveldomain.MembershipLevel{
		{Code: "basic", Name: "Basic", PricePerMonth: 100000, SortOrder: 10},
		{Code: "business", Name: "Business", PricePerMonth: 200000, SortOrder: 20},
		{Code: "enterprise", Name: "Enterprise", PricePerMonth: 400000, SortOrder: 30},
	}

	now := clk.Now()
	for _, level := range defaults {
		existing, err := levels.FindByCode(ctx, db, level.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		level.ID = genID.Generate()
		level.Capabilities = datatypes.JSONMap{}
		level.Status = leveldomain.LevelStatusActive
		level.CreatedAt = now
		level.UpdatedAt = now
		if err := levels.Insert(ctx, db, &level); err != nil {
			return err
		}
	}
	return nil
}
