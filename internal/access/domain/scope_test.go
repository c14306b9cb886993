package domain

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupScopeDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	for _, stmt := range []string{
		`CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE branches (id INTEGER PRIMARY KEY, customer_id INTEGER, name TEXT)`,
		`CREATE TABLE invoices (id INTEGER PRIMARY KEY, customer_id INTEGER, branch_id INTEGER, amount INTEGER)`,
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}

	// customer 5 owns branches 42 and 43; customer 7 owns branch 99.
	require.NoError(t, db.Exec(`INSERT INTO customers (id, name) VALUES (5, 'five'), (7, 'seven')`).Error)
	require.NoError(t, db.Exec(`INSERT INTO branches (id, customer_id, name) VALUES (42, 5, 'a'), (43, 5, 'b'), (99, 7, 'c')`).Error)
	require.NoError(t, db.Exec(`INSERT INTO invoices (id, customer_id, branch_id, amount) VALUES
		(1, 5, 42, 100), (2, 5, 43, 200), (3, 7, 99, 300)`).Error)

	return db
}

func countInvoices(t *testing.T, db *gorm.DB, scope Scope) int64 {
	var count int64
	stmt := db.Table("invoices")
	require.NoError(t, scope.Apply(stmt, BindInvoices).Count(&count).Error)
	return count
}

func TestScopeApplyUnrestricted(t *testing.T) {
	db := setupScopeDB(t)
	assert.Equal(t, int64(3), countInvoices(t, db, Unrestricted()))
}

func TestScopeApplyCustomerOwner(t *testing.T) {
	db := setupScopeDB(t)
	assert.Equal(t, int64(2), countInvoices(t, db, ByCustomerOwner(5)))
}

func TestScopeApplyBranchOwnerCannotSeeOtherBranch(t *testing.T) {
	db := setupScopeDB(t)

	scope := ByBranchOwner(42)

	var rows []map[string]any
	stmt := db.Table("invoices").Where("branch_id = ?", 99)
	require.NoError(t, scope.Apply(stmt, BindInvoices).Find(&rows).Error)
	assert.Empty(t, rows)

	assert.Equal(t, int64(1), countInvoices(t, db, scope))
}

func TestScopeApplyEmployeeBranch(t *testing.T) {
	db := setupScopeDB(t)
	assert.Equal(t, int64(1), countInvoices(t, db, ByEmployeeBranch(99)))
}

func TestScopeApplyDeniedMatchesNothing(t *testing.T) {
	db := setupScopeDB(t)
	assert.Equal(t, int64(0), countInvoices(t, db, Denied()))
}

func TestScopeApplyCustomerOwnerThroughBranchSubquery(t *testing.T) {
	db := setupScopeDB(t)

	// Memberships only carry a branch link; customer scoping goes
	// through the branches table.
	require.NoError(t, db.Exec(`CREATE TABLE memberships (id INTEGER PRIMARY KEY, branch_id INTEGER)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO memberships (id, branch_id) VALUES (1, 42), (2, 99)`).Error)

	var count int64
	stmt := db.Table("memberships")
	require.NoError(t, ByCustomerOwner(5).Apply(stmt, BindMemberships).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestScopeApplyFailsClosedOnMissingBinding(t *testing.T) {
	db := setupScopeDB(t)

	// A branch scope against a table with no branch column must match
	// zero rows rather than widen.
	var count int64
	stmt := db.Table("customers")
	require.NoError(t, ByBranchOwner(42).Apply(stmt, BindCustomers).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestScopeCovers(t *testing.T) {
	assert.True(t, Unrestricted().Covers(5, 42))
	assert.True(t, ByCustomerOwner(5).Covers(5, 0))
	assert.False(t, ByCustomerOwner(5).Covers(7, 0))
	assert.True(t, ByBranchOwner(42).Covers(5, 42))
	assert.False(t, ByBranchOwner(42).Covers(5, 99))
	assert.True(t, ByEmployeeBranch(42).Covers(0, 42))
	assert.False(t, Denied().Covers(5, 42))

	var zero snowflake.ID
	assert.False(t, Scope{Kind: KindCustomerOwner, CustomerID: zero}.Covers(0, 0))
}

func TestScopeCanWrite(t *testing.T) {
	assert.True(t, Unrestricted().CanWrite())
	assert.True(t, ByCustomerOwner(5).CanWrite())
	assert.True(t, ByBranchOwner(42).CanWrite())
	assert.False(t, ByEmployeeBranch(42).CanWrite())
	assert.False(t, Denied().CanWrite())
}
