// Package ports defines the storage interfaces the application depends on.
// Implementations live under infrastructure/persistence.
package ports

import (
	"context"

	"catalog-backend/domain/core/entities"
	"catalog-backend/pkg/common"
)

// ViewOptions controls which related entities a read query joins in.
// An empty Fields list means everything. With IncludeFields true the list
// is an allow-list; with IncludeFields false the listed fields are dropped.
type ViewOptions struct {
	Fields        []string
	IncludeFields bool
}

// DefaultView includes every related entity.
func DefaultView() ViewOptions {
	return ViewOptions{IncludeFields: true}
}

// Include reports whether the named related entity should be joined.
func (v ViewOptions) Include(field string) bool {
	if len(v.Fields) == 0 {
		return true
	}
	if !v.IncludeFields {
		return false
	}
	for _, f := range v.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Create inputs. Names are trimmed and slugged by the repositories.

type CreateDomainInput struct {
	Name        string
	Description string
}

type CreateDomainProductInput struct {
	Name          string
	Description   string
	DomainID      string
	ResourceTypes []string
}

type CreateProductInput struct {
	Name            string
	Description     string
	DomainProductID string
}

type CreateComponentInput struct {
	ID          string
	Type        string
	Name        string
	Description string
	ProductID   string
}

// Update inputs are sparse patches: nil fields are left untouched.

type UpdateDomainInput struct {
	Name        *string
	Description *string
}

type UpdateDomainProductInput struct {
	Name        *string
	Description *string
	DomainID    *string
}

type UpdateProductInput struct {
	Name            *string
	Description     *string
	DomainProductID *string
}

type UpdateComponentInput struct {
	Name        *string
	Description *string
	Type        *string
	ProductID   *string
}

// Listing filters. Name matches against the slug, as a substring.

type DomainFilters struct {
	Name           string
	DomainProducts []string
}

type DomainProductFilters struct {
	Name          string
	Products      []string
	ResourceTypes []string
}

type ProductFilters struct {
	Name           string
	DomainProducts []string
}

type ComponentFilters struct {
	Name     string
	Type     string
	Products []string
}

// DomainRepository persists domains and their system-generated children.
type DomainRepository interface {
	Create(ctx context.Context, input CreateDomainInput) (*entities.Domain, error)
	GetByID(ctx context.Context, id string) (*entities.Domain, error)
	List(ctx context.Context, filters DomainFilters, limit int, cursor *common.Cursor) (*common.Page[*entities.Domain], error)
	Update(ctx context.Context, id string, patch UpdateDomainInput) (*entities.Domain, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// DomainProductRepository persists domain products and their resource type
// claims.
type DomainProductRepository interface {
	Create(ctx context.Context, input CreateDomainProductInput) (*entities.DomainProduct, error)
	GetByID(ctx context.Context, id string) (*entities.DomainProduct, error)
	List(ctx context.Context, filters DomainProductFilters, limit int, cursor *common.Cursor) (*common.Page[*entities.DomainProduct], error)
	Update(ctx context.Context, id string, patch UpdateDomainProductInput) (*entities.DomainProduct, error)
	Delete(ctx context.Context, id string) error
	UpdateResourceTypes(ctx context.Context, id string, add, remove []string) (*entities.DomainProduct, error)
}

// ProductRepository persists products.
type ProductRepository interface {
	Create(ctx context.Context, input CreateProductInput) (*entities.Product, error)
	GetByID(ctx context.Context, id string, view ViewOptions) (*entities.Product, error)
	List(ctx context.Context, filters ProductFilters, view ViewOptions, limit int, cursor *common.Cursor) (*common.Page[*entities.Product], error)
	Update(ctx context.Context, id string, patch UpdateProductInput) (*entities.Product, error)
	Delete(ctx context.Context, id string) error
}

// ComponentRepository persists components, keyed by type plus id.
type ComponentRepository interface {
	Create(ctx context.Context, input CreateComponentInput) (*entities.Component, error)
	GetByKey(ctx context.Context, key entities.ComponentKey, view ViewOptions) (*entities.Component, error)
	List(ctx context.Context, filters ComponentFilters, view ViewOptions, limit int, cursor *common.Cursor) (*common.Page[*entities.Component], error)
	Update(ctx context.Context, key entities.ComponentKey, patch UpdateComponentInput) (*entities.Component, error)
	Delete(ctx context.Context, key entities.ComponentKey) error
}

// RelationStore manages containment edges directly.
type RelationStore interface {
	CreateRelation(ctx context.Context, rel entities.Relation) (*entities.Relation, error)
	Reparent(ctx context.Context, childID string, childType entities.Level, newParentID string) error
}

// Repositories bundles every storage port for wiring.
type Repositories struct {
	Domains        DomainRepository
	DomainProducts DomainProductRepository
	Products       ProductRepository
	Components     ComponentRepository
	Relations      RelationStore
}
