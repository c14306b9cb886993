package domain

import (
	"context"
	"errors"
)

type CreateLevelRequest struct {
	Code          string
	Name          string
	PricePerMonth int64
	SortOrder     int
	Capabilities  map[string]any
}

type UpdateLevelRequest struct {
	ID            string
	Name          *string
	PricePerMonth *int64
	SortOrder     *int
	Status        *string
}

type Service interface {
	Create(context.Context, CreateLevelRequest) (MembershipLevel, error)
	Update(context.Context, UpdateLevelRequest) (MembershipLevel, error)
	List(context.Context) ([]MembershipLevel, error)
	GetByID(ctx context.Context, id string) (MembershipLevel, error)
}

var (
	ErrInvalidCode   = errors.New("invalid_code")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidPrice  = errors.New("invalid_price")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrInvalidID     = errors.New("invalid_id")
	ErrCodeExists    = errors.New("code_exists")
	ErrNotFound      = errors.New("not_found")
)
