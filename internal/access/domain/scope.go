// Package domain defines the access scope resolved for an actor and the
// SQL predicate each scope translates to. Every dashboard query goes
// through one of these scopes; there is no per-entity re-derivation.
package domain

import (
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Kind classifies an actor's relationship to the customer/branch records.
type Kind string

const (
	// KindUnrestricted applies no filter. Administrators only.
	KindUnrestricted Kind = "unrestricted"
	// KindCustomerOwner sees every branch and invoice under one customer.
	KindCustomerOwner Kind = "customer_owner"
	// KindBranchOwner sees a single branch's records.
	KindBranchOwner Kind = "branch_owner"
	// KindEmployeeBranch sees the branch an active employment points at.
	KindEmployeeBranch Kind = "employee_branch"
	// KindDenied matches zero rows. The fail-closed default.
	KindDenied Kind = "denied"
)

// Scope is the resolved visibility boundary for one actor.
type Scope struct {
	Kind       Kind
	CustomerID snowflake.ID
	BranchID   snowflake.ID
}

func Unrestricted() Scope {
	return Scope{Kind: KindUnrestricted}
}

func ByCustomerOwner(customerID snowflake.ID) Scope {
	return Scope{Kind: KindCustomerOwner, CustomerID: customerID}
}

func ByBranchOwner(branchID snowflake.ID) Scope {
	return Scope{Kind: KindBranchOwner, BranchID: branchID}
}

func ByEmployeeBranch(branchID snowflake.ID) Scope {
	return Scope{Kind: KindEmployeeBranch, BranchID: branchID}
}

func Denied() Scope {
	return Scope{Kind: KindDenied}
}

// TableBinding names the columns that tie a scoped table back to its
// owners. CustomerColumn may be empty for tables that only carry a branch
// link; customer-owner scoping then goes through the branches table.
type TableBinding struct {
	CustomerColumn string
	BranchColumn   string
}

// Bindings for the scoped tables.
var (
	BindCustomers   = TableBinding{CustomerColumn: "customers.id"}
	BindBranches    = TableBinding{CustomerColumn: "branches.customer_id", BranchColumn: "branches.id"}
	BindEmployees   = TableBinding{BranchColumn: "employees.branch_id"}
	BindMemberships = TableBinding{BranchColumn: "memberships.branch_id"}
	BindInvoices    = TableBinding{CustomerColumn: "invoices.customer_id", BranchColumn: "invoices.branch_id"}
)

// Apply narrows stmt to the rows this scope may see. Unknown kinds and
// KindDenied collapse to a predicate that matches nothing.
func (s Scope) Apply(stmt *gorm.DB, binding TableBinding) *gorm.DB {
	switch s.Kind {
	case KindUnrestricted:
		return stmt
	case KindCustomerOwner:
		if binding.CustomerColumn != "" {
			return stmt.Where(binding.CustomerColumn+" = ?", s.CustomerID)
		}
		if binding.BranchColumn != "" {
			return stmt.Where(
				binding.BranchColumn+" IN (SELECT id FROM branches WHERE customer_id = ?)",
				s.CustomerID,
			)
		}
		return stmt.Where("1 = 0")
	case KindBranchOwner, KindEmployeeBranch:
		if binding.BranchColumn == "" {
			return stmt.Where("1 = 0")
		}
		return stmt.Where(binding.BranchColumn+" = ?", s.BranchID)
	default:
		return stmt.Where("1 = 0")
	}
}

// Covers reports whether a record owned by the given customer and branch
// falls inside this scope. Used for detail reads and write authorization
// after the record has been loaded.
func (s Scope) Covers(customerID, branchID snowflake.ID) bool {
	switch s.Kind {
	case KindUnrestricted:
		return true
	case KindCustomerOwner:
		return s.CustomerID != 0 && s.CustomerID == customerID
	case KindBranchOwner, KindEmployeeBranch:
		return s.BranchID != 0 && s.BranchID == branchID
	default:
		return false
	}
}

// CanWrite reports whether the scope permits mutating records it covers.
// Employees get read-only visibility into their branch.
func (s Scope) CanWrite() bool {
	switch s.Kind {
	case KindUnrestricted, KindCustomerOwner, KindBranchOwner:
		return true
	default:
		return false
	}
}
