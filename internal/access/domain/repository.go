package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// OwnedCustomer is the ownership row resolved for a customer admin.
type OwnedCustomer struct {
	ID snowflake.ID
}

// OwnedBranch is the ownership row resolved for a branch admin.
type OwnedBranch struct {
	ID         snowflake.ID
	CustomerID snowflake.ID
}

// Employment is an active employee record tied to a branch.
type Employment struct {
	BranchID snowflake.ID
}

// Repository answers the ownership lookups the resolver walks through.
// Every method returns (nil, nil) when no row matches; an error means the
// storage layer failed and the resolution must not silently degrade.
type Repository interface {
	FindCustomerOwnedBy(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*OwnedCustomer, error)
	FindBranchOwnedBy(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*OwnedBranch, error)
	FindActiveEmployment(ctx context.Context, db *gorm.DB, userID snowflake.ID, at time.Time) (*Employment, error)
}
