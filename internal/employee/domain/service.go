package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/branchdesk/pkg/datatable"
)

type CreateEmployeeRequest struct {
	BranchID string
	UserID   string
	FullName string
}

type ListEmployeeRequest struct {
	Query datatable.Query
}

type ListEmployeeResponse struct {
	Employees       []Employee
	RecordsTotal    int64
	RecordsFiltered int64
}

type Service interface {
	Create(context.Context, CreateEmployeeRequest) (Employee, error)
	List(context.Context, ListEmployeeRequest) (ListEmployeeResponse, error)
	Deactivate(ctx context.Context, id string) error
}

var (
	ErrInvalidBranch   = errors.New("invalid_branch")
	ErrInvalidUser     = errors.New("invalid_user")
	ErrInvalidFullName = errors.New("invalid_full_name")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
	ErrAlreadyEnded    = errors.New("employment_already_ended")
)
