package domain

import (
	"context"

	"github.com/smallbiznis/branchdesk/pkg/datatable"
)

type PayInvoiceRequest struct {
	ID        string
	Method    string
	Reference string
}

type GetInvoiceRequest struct {
	ID string
}

type ListInvoiceRequest struct {
	Query datatable.Query
}

type ListInvoiceResponse struct {
	Invoices        []Invoice
	RecordsTotal    int64
	RecordsFiltered int64
}

type InvoiceDetail struct {
	Invoice  Invoice
	Payments []Payment
}

type Service interface {
	// Pay moves a pending invoice to pending_payment and records the
	// payment. Zero-amount invoices settle immediately.
	Pay(context.Context, PayInvoiceRequest) (Invoice, error)
	// Validate confirms a submitted payment and applies the level change
	// to the branch's membership. Administrator capability required.
	Validate(ctx context.Context, id string) (Invoice, error)
	// Cancel voids a pending or pending_payment invoice.
	Cancel(ctx context.Context, id string) (Invoice, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(context.Context, GetInvoiceRequest) (InvoiceDetail, error)
}
