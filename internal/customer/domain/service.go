package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/branchdesk/pkg/datatable"
)

type CreateCustomerRequest struct {
	Name        string
	Email       string
	OwnerUserID string
}

type GetCustomerRequest struct {
	ID string
}

type ListCustomerRequest struct {
	Query datatable.Query
}

type ListCustomerResponse struct {
	Customers       []Customer
	RecordsTotal    int64
	RecordsFiltered int64
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(context.Context, GetCustomerRequest) (Customer, error)
	Archive(ctx context.Context, id string) error
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidOwner = errors.New("invalid_owner")
	ErrNotFound     = errors.New("not_found")
)
