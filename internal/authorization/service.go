package authorization

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Object and action names understood by the capability layer. Row-level
// visibility is the access resolver's job; capabilities only gate the
// administrator-side actions.
const (
	ObjectCustomer   = "customer"
	ObjectBranch     = "branch"
	ObjectEmployee   = "employee"
	ObjectLevel      = "level"
	ObjectMembership = "membership"
	ObjectInvoice    = "invoice"
)

const (
	ActionLevelCreate     = "level.create"
	ActionLevelUpdate     = "level.update"
	ActionCustomerCreate  = "customer.create"
	ActionInvoiceValidate = "invoice.validate"
)

const AdministratorRole = "role:administrator"

var (
	ErrInvalidActor = errors.New("invalid_actor")
	ErrForbidden    = errors.New("forbidden")
)

// Service answers named capability checks for a user.
type Service interface {
	// Can reports whether the user holds the given capability.
	Can(ctx context.Context, userID snowflake.ID, object string, action string) (bool, error)
	// IsAdministrator reports whether the user carries the administrator role.
	IsAdministrator(ctx context.Context, userID snowflake.ID) (bool, error)
	// GrantAdministrator assigns the administrator role to a user.
	GrantAdministrator(ctx context.Context, userID snowflake.ID) error
	// RevokeAdministrator removes the administrator role from a user.
	RevokeAdministrator(ctx context.Context, userID snowflake.ID) error
}
