package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	branchdomain "github.com/smallbiznis/branchdesk/internal/branch/domain"
	branchrepo "github.com/smallbiznis/branchdesk/internal/branch/repository"
	"github.com/smallbiznis/branchdesk/internal/clock"
	"github.com/smallbiznis/branchdesk/internal/employee/domain"
	"github.com/smallbiznis/branchdesk/internal/employee/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type employeeFixture struct {
	svc    domain.Service
	db     *gorm.DB
	clock  *clock.FakeClock
	genID  *snowflake.Node
	cust   snowflake.ID
	branch branchdomain.Branch
}

func setupEmployeeService(t *testing.T) *employeeFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&branchdomain.Branch{}, &domain.Employee{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	fc := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	f := &employeeFixture{
		db:    db,
		clock: fc,
		genID: node,
		cust:  node.Generate(),
	}

	now := fc.Now()
	f.branch = branchdomain.Branch{
		ID:         node.Generate(),
		CustomerID: f.cust,
		Name:       "central",
		Status:     branchdomain.BranchStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, db.Create(&f.branch).Error)

	f.svc = New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fc,
		Repo:     repository.Provide(),
		Branches: branchrepo.Provide(),
	})
	return f
}

func (f *employeeFixture) branchOwnerCtx() context.Context {
	return accessdomain.WithScope(context.Background(), accessdomain.ByBranchOwner(f.branch.ID))
}

func TestCreateEmployee(t *testing.T) {
	f := setupEmployeeService(t)

	created, err := f.svc.Create(f.branchOwnerCtx(), domain.CreateEmployeeRequest{
		BranchID: f.branch.ID.String(),
		FullName: "  Siti Rahma  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Siti Rahma", created.FullName)
	assert.Equal(t, domain.EmployeeStatusActive, created.Status)
	assert.Equal(t, f.clock.Now(), created.StartedAt)
	assert.Nil(t, created.EndedAt)
}

func TestCreateEmployeeBranchOutsideScope(t *testing.T) {
	f := setupEmployeeService(t)

	ctx := accessdomain.WithScope(context.Background(), accessdomain.ByBranchOwner(f.genID.Generate()))
	_, err := f.svc.Create(ctx, domain.CreateEmployeeRequest{
		BranchID: f.branch.ID.String(),
		FullName: "Siti Rahma",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidBranch)
}

func TestCreateEmployeeReadOnlyScope(t *testing.T) {
	f := setupEmployeeService(t)

	ctx := accessdomain.WithScope(context.Background(), accessdomain.ByEmployeeBranch(f.branch.ID))
	_, err := f.svc.Create(ctx, domain.CreateEmployeeRequest{
		BranchID: f.branch.ID.String(),
		FullName: "Siti Rahma",
	})
	assert.ErrorIs(t, err, accessdomain.ErrReadOnly)
}

func TestDeactivateEmployee(t *testing.T) {
	f := setupEmployeeService(t)

	created, err := f.svc.Create(f.branchOwnerCtx(), domain.CreateEmployeeRequest{
		BranchID: f.branch.ID.String(),
		FullName: "Siti Rahma",
	})
	require.NoError(t, err)

	f.clock.Advance(48 * time.Hour)
	require.NoError(t, f.svc.Deactivate(f.branchOwnerCtx(), created.ID.String()))

	var stored domain.Employee
	require.NoError(t, f.db.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, domain.EmployeeStatusInactive, stored.Status)
	require.NotNil(t, stored.EndedAt)
	assert.Equal(t, f.clock.Now(), stored.EndedAt.UTC())
}

func TestDeactivateTwiceRejected(t *testing.T) {
	f := setupEmployeeService(t)

	created, err := f.svc.Create(f.branchOwnerCtx(), domain.CreateEmployeeRequest{
		BranchID: f.branch.ID.String(),
		FullName: "Siti Rahma",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Deactivate(f.branchOwnerCtx(), created.ID.String()))
	assert.ErrorIs(t, f.svc.Deactivate(f.branchOwnerCtx(), created.ID.String()), domain.ErrAlreadyEnded)
}

func TestDeactivateHiddenOutsideScope(t *testing.T) {
	f := setupEmployeeService(t)

	created, err := f.svc.Create(f.branchOwnerCtx(), domain.CreateEmployeeRequest{
		BranchID: f.branch.ID.String(),
		FullName: "Siti Rahma",
	})
	require.NoError(t, err)

	ctx := accessdomain.WithScope(context.Background(), accessdomain.ByBranchOwner(f.genID.Generate()))
	assert.ErrorIs(t, f.svc.Deactivate(ctx, created.ID.String()), domain.ErrNotFound)
}
