// internal/inventory/memory.go
package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryCatalog is a Catalog held in process memory.
type MemoryCatalog struct {
	mu          sync.RWMutex
	entities    map[Ref]any
	assignments map[Ref]Target
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		entities:    make(map[Ref]any),
		assignments: make(map[Ref]Target),
	}
}

// Add stores an accessory, asset, component, license seat, user or location.
func (c *MemoryCatalog) Add(ctx context.Context, entity any) error {
	var ref Ref
	switch e := entity.(type) {
	case Checkoutable:
		ref = e.Ref()
	case Target:
		ref = e.Ref()
	default:
		return fmt.Errorf("inventory: unsupported entity %T", entity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entities[ref] = entity
	return nil
}

func (c *MemoryCatalog) get(ref Ref) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entities[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return e, nil
}

func (c *MemoryCatalog) Checkoutable(ctx context.Context, ref Ref) (Checkoutable, error) {
	e, err := c.get(ref)
	if err != nil {
		return nil, err
	}
	item, ok := e.(Checkoutable)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCheckoutable, ref)
	}
	return item, nil
}

func (c *MemoryCatalog) Target(ctx context.Context, ref Ref) (Target, error) {
	e, err := c.get(ref)
	if err != nil {
		return nil, err
	}
	target, ok := e.(Target)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAssignable, ref)
	}
	return target, nil
}

func (c *MemoryCatalog) User(ctx context.Context, id uuid.UUID) (*User, error) {
	e, err := c.get(Ref{Kind: KindUser, ID: id})
	if err != nil {
		return nil, err
	}
	return e.(*User), nil
}

// Assign records that item is checked out to target.
func (c *MemoryCatalog) Assign(ctx context.Context, item Checkoutable, target Target) error {
	if item.Ref() == target.Ref() {
		return ErrSelfAssignment
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.assignments[item.Ref()]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyCheckedOut, item.Ref())
	}
	c.assignments[item.Ref()] = target
	return nil
}

// Release clears the assignment of item and returns the target it was
// checked out to.
func (c *MemoryCatalog) Release(ctx context.Context, item Checkoutable) (Target, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	target, ok := c.assignments[item.Ref()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCheckedOut, item.Ref())
	}
	delete(c.assignments, item.Ref())
	return target, nil
}

func (c *MemoryCatalog) Assignee(ctx context.Context, item Checkoutable) (Target, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	target, ok := c.assignments[item.Ref()]
	return target, ok
}
