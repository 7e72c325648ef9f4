// internal/inventory/service.go
package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("inventory: entity not found")
	ErrNotCheckoutable   = errors.New("inventory: entity cannot be checked out")
	ErrNotAssignable     = errors.New("inventory: entity cannot receive checkouts")
	ErrAlreadyCheckedOut = errors.New("inventory: item is already checked out")
	ErrNotCheckedOut     = errors.New("inventory: item is not checked out")
	ErrSelfAssignment    = errors.New("inventory: asset cannot be checked out to itself")
)

// Catalog resolves entities and tracks which target each checkoutable is
// currently assigned to.
type Catalog interface {
	Add(ctx context.Context, entity any) error
	Checkoutable(ctx context.Context, ref Ref) (Checkoutable, error)
	Target(ctx context.Context, ref Ref) (Target, error)
	User(ctx context.Context, id uuid.UUID) (*User, error)
	Assign(ctx context.Context, item Checkoutable, target Target) error
	Release(ctx context.Context, item Checkoutable) (Target, error)
	Assignee(ctx context.Context, item Checkoutable) (Target, bool)
}
