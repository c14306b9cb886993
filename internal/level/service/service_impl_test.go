package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/branchdesk/internal/actorctx"
	"github.com/smallbiznis/branchdesk/internal/authorization"
	"github.com/smallbiznis/branchdesk/internal/clock"
	"github.com/smallbiznis/branchdesk/internal/level/domain"
	"github.com/smallbiznis/branchdesk/internal/level/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubAuthz struct {
	allowed map[string]bool
}

func (f *stubAuthz) Can(ctx context.Context, userID snowflake.ID, object, action string) (bool, error) {
	return f.allowed[object+":"+action], nil
}

func (f *stubAuthz) IsAdministrator(ctx context.Context, userID snowflake.ID) (bool, error) {
	return false, nil
}

func (f *stubAuthz) GrantAdministrator(ctx context.Context, userID snowflake.ID) error { return nil }

func (f *stubAuthz) RevokeAdministrator(ctx context.Context, userID snowflake.ID) error { return nil }

func setupLevelService(t *testing.T) (domain.Service, *stubAuthz, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.MembershipLevel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	authz := &stubAuthz{allowed: map[string]bool{}}
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
		Authz: authz,
	})
	return svc, authz, node
}

func managerCtx(node *snowflake.Node) context.Context {
	return actorctx.WithUserID(context.Background(), node.Generate())
}

func TestCreateLevelRequiresCapability(t *testing.T) {
	svc, _, node := setupLevelService(t)

	_, err := svc.Create(managerCtx(node), domain.CreateLevelRequest{
		Code: "premium", Name: "Premium", PricePerMonth: 300000, SortOrder: 30,
	})
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	_, err = svc.Create(context.Background(), domain.CreateLevelRequest{
		Code: "premium", Name: "Premium", PricePerMonth: 300000, SortOrder: 30,
	})
	assert.ErrorIs(t, err, authorization.ErrInvalidActor)
}

func TestCreateLevel(t *testing.T) {
	svc, authz, node := setupLevelService(t)
	authz.allowed[authorization.ObjectLevel+":"+authorization.ActionLevelCreate] = true

	created, err := svc.Create(managerCtx(node), domain.CreateLevelRequest{
		Code: "  Premium  ", Name: "Premium", PricePerMonth: 300000, SortOrder: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "premium", created.Code)
	assert.Equal(t, domain.LevelStatusActive, created.Status)

	_, err = svc.Create(managerCtx(node), domain.CreateLevelRequest{
		Code: "premium", Name: "Premium Again", PricePerMonth: 350000, SortOrder: 31,
	})
	assert.ErrorIs(t, err, domain.ErrCodeExists)
}

func TestCreateLevelValidation(t *testing.T) {
	svc, authz, node := setupLevelService(t)
	authz.allowed[authorization.ObjectLevel+":"+authorization.ActionLevelCreate] = true

	_, err := svc.Create(managerCtx(node), domain.CreateLevelRequest{
		Code: "Bad Code!", Name: "X", PricePerMonth: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	_, err = svc.Create(managerCtx(node), domain.CreateLevelRequest{
		Code: "okcode", Name: "  ", PricePerMonth: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(managerCtx(node), domain.CreateLevelRequest{
		Code: "okcode", Name: "Ok", PricePerMonth: -1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestUpdateLevelRetires(t *testing.T) {
	svc, authz, node := setupLevelService(t)
	authz.allowed[authorization.ObjectLevel+":"+authorization.ActionLevelCreate] = true
	authz.allowed[authorization.ObjectLevel+":"+authorization.ActionLevelUpdate] = true

	created, err := svc.Create(managerCtx(node), domain.CreateLevelRequest{
		Code: "premium", Name: "Premium", PricePerMonth: 300000, SortOrder: 30,
	})
	require.NoError(t, err)

	retired := "retired"
	updated, err := svc.Update(managerCtx(node), domain.UpdateLevelRequest{
		ID:     created.ID.String(),
		Status: &retired,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LevelStatusRetired, updated.Status)

	// The catalog only lists active levels.
	levels, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, levels)
}

func TestUpdateLevelRejectsUnknownStatus(t *testing.T) {
	svc, authz, node := setupLevelService(t)
	authz.allowed[authorization.ObjectLevel+":"+authorization.ActionLevelCreate] = true
	authz.allowed[authorization.ObjectLevel+":"+authorization.ActionLevelUpdate] = true

	created, err := svc.Create(managerCtx(node), domain.CreateLevelRequest{
		Code: "premium", Name: "Premium", PricePerMonth: 300000,
	})
	require.NoError(t, err)

	bogus := "suspended"
	_, err = svc.Update(managerCtx(node), domain.UpdateLevelRequest{
		ID:     created.ID.String(),
		Status: &bogus,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
