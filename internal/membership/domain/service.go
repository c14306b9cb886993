package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/branchdesk/internal/membership/pricing"
	"github.com/smallbiznis/branchdesk/pkg/datatable"
)

type QuoteUpgradeRequest struct {
	BranchID     string
	LevelID      string
	PeriodMonths int
}

type UpgradeQuote struct {
	BranchID     snowflake.ID      `json:"branch_id"`
	FromLevelID  *snowflake.ID     `json:"from_level_id,omitempty"`
	LevelID      snowflake.ID      `json:"level_id"`
	PeriodMonths int               `json:"period_months"`
	Breakdown    pricing.Breakdown `json:"breakdown"`
}

type UpgradeResult struct {
	InvoiceID   snowflake.ID      `json:"invoice_id"`
	CheckoutRef string            `json:"checkout_ref"`
	Amount      int64             `json:"amount"`
	Breakdown   pricing.Breakdown `json:"breakdown"`
}

type ListMembershipRequest struct {
	Query datatable.Query
}

// MembershipView carries the derived status alongside the stored row.
type MembershipView struct {
	Membership
	DerivedStatus MembershipStatus `json:"derived_status"`
}

type ListMembershipResponse struct {
	Memberships     []MembershipView
	RecordsTotal    int64
	RecordsFiltered int64
}

type Service interface {
	// Quote prices an upgrade without side effects.
	Quote(context.Context, QuoteUpgradeRequest) (UpgradeQuote, error)
	// Upgrade prices an upgrade and raises a pending invoice for it. The
	// membership itself does not change until the invoice is settled.
	Upgrade(context.Context, QuoteUpgradeRequest) (UpgradeResult, error)
	List(context.Context, ListMembershipRequest) (ListMembershipResponse, error)
	GetByBranch(ctx context.Context, branchID string) (MembershipView, error)
}

var (
	ErrInvalidBranch = errors.New("invalid_branch")
	ErrInvalidLevel  = errors.New("invalid_level")
	ErrInvalidPeriod = errors.New("invalid_period")
	ErrNotUpgrade    = errors.New("not_an_upgrade")
	ErrNotFound      = errors.New("not_found")
)
