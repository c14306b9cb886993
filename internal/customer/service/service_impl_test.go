package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	"github.com/smallbiznis/branchdesk/internal/clock"
	"github.com/smallbiznis/branchdesk/internal/customer/domain"
	"github.com/smallbiznis/branchdesk/internal/customer/repository"
	"github.com/smallbiznis/branchdesk/pkg/datatable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCustomerService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Customer{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, db, node
}

func adminCtx() context.Context {
	return accessdomain.WithScope(context.Background(), accessdomain.Unrestricted())
}

func TestCreateCustomerAsAdministrator(t *testing.T) {
	svc, db, _ := setupCustomerService(t)

	created, err := svc.Create(adminCtx(), domain.CreateCustomerRequest{
		Name:  "  Acme Group  ",
		Email: "owner@acme.test",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Group", created.Name)
	assert.Equal(t, domain.CustomerStatusActive, created.Status)
	assert.Nil(t, created.OwnerUserID)

	var stored domain.Customer
	require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, "owner@acme.test", stored.Email)
}

func TestCreateCustomerRequiresAdministrator(t *testing.T) {
	svc, _, node := setupCustomerService(t)

	ctx := accessdomain.WithScope(context.Background(), accessdomain.ByCustomerOwner(node.Generate()))
	_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Acme", Email: "a@b.test"})
	assert.ErrorIs(t, err, accessdomain.ErrDenied)

	_, err = svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "Acme", Email: "a@b.test"})
	assert.ErrorIs(t, err, accessdomain.ErrDenied)
}

func TestCreateCustomerValidation(t *testing.T) {
	svc, _, _ := setupCustomerService(t)

	_, err := svc.Create(adminCtx(), domain.CreateCustomerRequest{Name: "   ", Email: "a@b.test"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(adminCtx(), domain.CreateCustomerRequest{Name: "Acme", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Create(adminCtx(), domain.CreateCustomerRequest{Name: "Acme", Email: "a@b.test", OwnerUserID: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidOwner)
}

func TestListCustomersScoped(t *testing.T) {
	svc, _, _ := setupCustomerService(t)

	first, err := svc.Create(adminCtx(), domain.CreateCustomerRequest{Name: "First", Email: "first@x.test"})
	require.NoError(t, err)
	_, err = svc.Create(adminCtx(), domain.CreateCustomerRequest{Name: "Second", Email: "second@x.test"})
	require.NoError(t, err)

	resp, err := svc.List(adminCtx(), domain.ListCustomerRequest{Query: datatable.Query{Length: 10}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.RecordsTotal)

	// A customer owner only sees their own record.
	ownerScope := accessdomain.ByCustomerOwner(first.ID)
	resp, err = svc.List(accessdomain.WithScope(context.Background(), ownerScope), domain.ListCustomerRequest{
		Query: datatable.Query{Length: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.RecordsTotal)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, first.ID, resp.Customers[0].ID)

	// No scope in context collapses to the denied scope.
	resp, err = svc.List(context.Background(), domain.ListCustomerRequest{Query: datatable.Query{Length: 10}})
	require.NoError(t, err)
	assert.Zero(t, resp.RecordsTotal)
}

func TestArchiveCustomer(t *testing.T) {
	svc, db, _ := setupCustomerService(t)

	created, err := svc.Create(adminCtx(), domain.CreateCustomerRequest{Name: "Acme", Email: "a@b.test"})
	require.NoError(t, err)

	require.NoError(t, svc.Archive(adminCtx(), created.ID.String()))

	var stored domain.Customer
	require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, domain.CustomerStatusArchived, stored.Status)
}

func TestArchiveCustomerOutsideScope(t *testing.T) {
	svc, _, node := setupCustomerService(t)

	created, err := svc.Create(adminCtx(), domain.CreateCustomerRequest{Name: "Acme", Email: "a@b.test"})
	require.NoError(t, err)

	ctx := accessdomain.WithScope(context.Background(), accessdomain.ByCustomerOwner(node.Generate()))
	assert.ErrorIs(t, svc.Archive(ctx, created.ID.String()), domain.ErrNotFound)
}
