package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/branchdesk/pkg/datatable"
)

type CreateBranchRequest struct {
	CustomerID  string
	OwnerUserID string
	Name        string
	City        string
	Phone       string
}

type UpdateBranchRequest struct {
	ID    string
	Name  *string
	City  *string
	Phone *string
}

type GetBranchRequest struct {
	ID string
}

type ListBranchRequest struct {
	Query datatable.Query
}

type ListBranchResponse struct {
	Branches        []Branch
	RecordsTotal    int64
	RecordsFiltered int64
}

type Service interface {
	Create(context.Context, CreateBranchRequest) (Branch, error)
	List(context.Context, ListBranchRequest) (ListBranchResponse, error)
	GetByID(context.Context, GetBranchRequest) (Branch, error)
	Update(context.Context, UpdateBranchRequest) (Branch, error)
	Archive(ctx context.Context, id string) error
}

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidOwner    = errors.New("invalid_owner")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)
