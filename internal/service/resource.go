package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/dumpster-rentals/internal/listing"
	"github.com/nurpe/dumpster-rentals/internal/model"
	"github.com/nurpe/dumpster-rentals/internal/validation"
)

// Store is the persistence contract shared by the plain CRUD resources.
type Store[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, item *T) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ResourceOptions configures a Resource. Prepare runs after struct validation
// on create and update.
type ResourceOptions[T any] struct {
	Name      string
	Fields    listing.Fields[T]
	SetID     func(*T, uuid.UUID)
	Prepare   func(ctx context.Context, item *T) error
	NoUpdate  bool
	NoDelete  bool
	AdminOnly bool
}

// Resource serves list/get/create/update/delete for one entity type.
type Resource[T any] struct {
	store Store[T]
	opts  ResourceOptions[T]
}

func NewResource[T any](store Store[T], opts ResourceOptions[T]) *Resource[T] {
	return &Resource[T]{store: store, opts: opts}
}

func (r *Resource[T]) Name() string {
	return r.opts.Name
}

func (r *Resource[T]) authorize(principal model.Principal, write bool) error {
	if r.opts.AdminOnly && !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if write && !principal.CanManage() {
		return ErrPermissionDenied
	}
	return nil
}

// List returns the whole collection.
func (r *Resource[T]) List(ctx context.Context, principal model.Principal) ([]T, error) {
	if err := r.authorize(principal, false); err != nil {
		return nil, err
	}
	items, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Page returns one page of the collection after search filtering.
func (r *Resource[T]) Page(ctx context.Context, principal model.Principal, q listing.Query) (listing.Page[T], error) {
	items, err := r.List(ctx, principal)
	if err != nil {
		return listing.Page[T]{}, err
	}
	return listing.Paginate(items, r.opts.Fields, q), nil
}

func (r *Resource[T]) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*T, error) {
	if err := r.authorize(principal, false); err != nil {
		return nil, err
	}
	item, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, r.opts.Name)
	}
	return item, nil
}

func (r *Resource[T]) Create(ctx context.Context, principal model.Principal, item *T) (*T, error) {
	if err := r.authorize(principal, true); err != nil {
		return nil, err
	}
	if err := r.prepare(ctx, item); err != nil {
		return nil, err
	}
	if r.opts.SetID != nil {
		r.opts.SetID(item, uuid.Nil)
	}
	if err := r.store.Create(ctx, item); err != nil {
		return nil, constraint(err, r.opts.Name)
	}
	return item, nil
}

func (r *Resource[T]) Update(ctx context.Context, principal model.Principal, id uuid.UUID, item *T) (*T, error) {
	if r.opts.NoUpdate {
		return nil, fmt.Errorf("%w: %s cannot be modified", ErrPermissionDenied, r.opts.Name)
	}
	if err := r.authorize(principal, true); err != nil {
		return nil, err
	}
	if _, err := r.store.Get(ctx, id); err != nil {
		return nil, notFound(err, r.opts.Name)
	}
	if err := r.prepare(ctx, item); err != nil {
		return nil, err
	}
	r.opts.SetID(item, id)
	if err := r.store.Update(ctx, item); err != nil {
		return nil, constraint(err, r.opts.Name)
	}
	return r.store.Get(ctx, id)
}

func (r *Resource[T]) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if r.opts.NoDelete {
		return fmt.Errorf("%w: %s cannot be deleted", ErrPermissionDenied, r.opts.Name)
	}
	if err := r.authorize(principal, true); err != nil {
		return err
	}
	if _, err := r.store.Get(ctx, id); err != nil {
		return notFound(err, r.opts.Name)
	}
	if err := r.store.Delete(ctx, id); err != nil {
		return constraint(err, r.opts.Name)
	}
	return nil
}

func (r *Resource[T]) prepare(ctx context.Context, item *T) error {
	if item == nil {
		return fmt.Errorf("%w: body is required", ErrInvalidInput)
	}
	if err := validation.Struct(item); err != nil {
		return err
	}
	if r.opts.Prepare != nil {
		return r.opts.Prepare(ctx, item)
	}
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

// constraint maps database integrity failures to ErrConflict.
func constraint(err error, what string) error {
	switch {
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %s is still referenced", ErrConflict, what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	}
	return err
}
