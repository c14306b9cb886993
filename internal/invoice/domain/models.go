package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type InvoiceStatus string

const (
	// InvoiceStatusPending is the initial state after an upgrade request.
	InvoiceStatusPending InvoiceStatus = "pending"
	// InvoiceStatusPendingPayment means a payment was submitted and awaits
	// administrator validation.
	InvoiceStatusPendingPayment InvoiceStatus = "pending_payment"
	InvoiceStatusPaid           InvoiceStatus = "paid"
	InvoiceStatusCancelled      InvoiceStatus = "cancelled"
)

// CanTransitionTo encodes the invoice lifecycle. Paid and cancelled are
// terminal; nothing ever re-enters pending.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	switch s {
	case InvoiceStatusPending:
		return next == InvoiceStatusPendingPayment || next == InvoiceStatusPaid || next == InvoiceStatusCancelled
	case InvoiceStatusPendingPayment:
		return next == InvoiceStatusPaid || next == InvoiceStatusCancelled
	default:
		return false
	}
}

// Invoice records the amount owed for a level transition on a branch.
// A nil FromLevelID marks a fresh subscription rather than an upgrade.
type Invoice struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID   snowflake.ID  `gorm:"column:customer_id;index;not null" json:"customer_id"`
	BranchID     snowflake.ID  `gorm:"column:branch_id;index;not null" json:"branch_id"`
	FromLevelID  *snowflake.ID `gorm:"column:from_level_id" json:"from_level_id,omitempty"`
	LevelID      snowflake.ID  `gorm:"column:level_id;not null" json:"level_id"`
	PeriodMonths int           `gorm:"column:period_months;not null" json:"period_months"`
	Amount       int64         `gorm:"not null" json:"amount"`
	Status       InvoiceStatus `gorm:"type:text;not null;default:'pending'" json:"status"`
	CheckoutRef  string        `gorm:"column:checkout_ref;uniqueIndex;not null" json:"checkout_ref"`
	IssuedAt     time.Time     `gorm:"column:issued_at;not null" json:"issued_at"`
	PaidAt       *time.Time    `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Payment is the money received against an invoice. Inserted in the
// same transaction as the invoice status change.
type Payment struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID  snowflake.ID `gorm:"column:invoice_id;index;not null" json:"invoice_id"`
	Amount     int64        `gorm:"not null" json:"amount"`
	Method     string       `gorm:"not null" json:"method"`
	Reference  string       `json:"reference"`
	ReceivedAt time.Time    `gorm:"column:received_at;not null" json:"received_at"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
