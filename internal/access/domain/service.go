package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidActor = errors.New("invalid_actor")
	ErrDenied       = errors.New("access_denied")
	ErrReadOnly     = errors.New("access_read_only")
)

// Service resolves an actor to their access scope.
type Service interface {
	// Resolve classifies the user by walking the ownership relations in
	// strict priority order: administrator capability, customer owner,
	// branch owner, active employment. The first match wins. An actor
	// matching nothing, or whose owning record cannot be found, resolves
	// to the denied scope; storage failures surface as errors.
	Resolve(ctx context.Context, userID snowflake.ID) (Scope, error)
}
