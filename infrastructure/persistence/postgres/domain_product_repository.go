package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"catalog-backend/application/ports"
	"catalog-backend/domain/core/entities"
	"catalog-backend/domain/core/valueobjects"
	"catalog-backend/pkg/common"
	"catalog-backend/pkg/errors"
	"catalog-backend/pkg/utils"
)

var domainProductResultMap = &ResultMap{
	IDColumn: "id",
	Columns: []string{
		"id", "name", "slug_name", "description", "sort_id",
		"is_active", "is_system_generated", "created_at", "last_modified_at",
	},
	Associations: []Relationship{
		{Name: "domain", Prefix: "domain_", Map: &ResultMap{
			IDColumn: "id",
			Columns:  []string{"id", "name"},
		}},
	},
	Collections: []Relationship{
		{Name: "products", Prefix: "product_", Map: &ResultMap{
			IDColumn: "id",
			Columns:  []string{"id", "name", "description", "is_system_generated"},
		}},
		{Name: "resourceTypes", Prefix: "", Map: &ResultMap{
			IDColumn: "resource_type_name",
			Columns:  []string{"resource_type_name"},
		}},
	},
}

func domainProductFromTree(t Tree) *entities.DomainProduct {
	dp := &entities.DomainProduct{
		ID:                t.str("id"),
		Name:              t.str("name"),
		SlugName:          t.str("slug_name"),
		Description:       t.str("description"),
		SortID:            t.int64Val("sort_id"),
		IsActive:          t.boolVal("is_active"),
		IsSystemGenerated: t.boolVal("is_system_generated"),
		CreatedAt:         t.timeVal("created_at"),
		LastModifiedAt:    t.timeVal("last_modified_at"),
		Products:          []entities.Product{},
		ResourceTypes:     []entities.ResourceType{},
	}

	if dt := t.tree("domain"); dt != nil {
		dp.Domain = &entities.EntityRef{ID: dt.str("id"), Name: dt.str("name")}
	}
	for _, pt := range t.trees("products") {
		dp.Products = append(dp.Products, entities.Product{
			ID:                pt.str("id"),
			Name:              pt.str("name"),
			Description:       pt.str("description"),
			IsSystemGenerated: pt.boolVal("is_system_generated"),
		})
	}
	for _, rt := range t.trees("resourceTypes") {
		dp.ResourceTypes = append(dp.ResourceTypes, entities.ResourceType{
			Name: rt.str("resource_type_name"),
		})
	}
	return dp
}

// DomainProductRepository persists domain products and their resource type
// claims on PostgreSQL.
type DomainProductRepository struct {
	store  Store
	logger *zap.Logger
}

// NewDomainProductRepository creates a domain product repository.
func NewDomainProductRepository(store Store, logger *zap.Logger) *DomainProductRepository {
	return &DomainProductRepository{store: store, logger: logger}
}

var _ ports.DomainProductRepository = (*DomainProductRepository)(nil)

// Create inserts a domain product under its domain, claims the requested
// resource types, and provisions the default product, atomically.
func (r *DomainProductRepository) Create(ctx context.Context, input ports.CreateDomainProductInput) (*entities.DomainProduct, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewValidationError("name is required")
	}
	if strings.TrimSpace(input.DomainID) == "" {
		return nil, errors.NewValidationError("domainId is required")
	}

	id := uuid.NewString()
	err := r.store.WithinTransaction(ctx, func(tx Executor) error {
		res, err := tx.Execute(ctx, insertDomainProductSQL,
			id, name, valueobjects.Slugify(name), strings.TrimSpace(input.Description), false)
		if err != nil {
			return classifyEntityError(err, "an error occurred while creating the domain product")
		}
		if res.RowCount == 0 {
			return errors.NewDependencyError("domain product insert returned no rows", nil)
		}

		err = execCreateRelation(ctx, tx, entities.Relation{
			ParentID:   input.DomainID,
			ParentType: entities.LevelDomain,
			ChildID:    id,
			ChildType:  entities.LevelDomainProduct,
		})
		if err != nil {
			return err
		}

		if types := utils.NormalizeSet(input.ResourceTypes); len(types) > 0 {
			if err := addResourceTypes(ctx, tx, id, types); err != nil {
				return err
			}
		}

		_, err = createDefaultProduct(ctx, tx, id)
		return err
	})
	if err != nil {
		r.logger.Error("Failed to create domain product", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	r.logger.Info("Domain product created",
		zap.String("domain_product_id", id),
		zap.String("domain_id", input.DomainID),
	)
	return r.GetByID(ctx, id)
}

// GetByID loads one domain product with its domain, products and resource
// types.
func (r *DomainProductRepository) GetByID(ctx context.Context, id string) (*entities.DomainProduct, error) {
	sqlText := renderPositional(domainProductBaseQuery + `
  AND dp.id = ?`)

	res, err := r.store.Execute(ctx, sqlText, id)
	if err != nil {
		return nil, classifyEntityError(err, "an error occurred while loading the domain product")
	}

	tree, err := mapOne(res.Rows, domainProductResultMap, "domain product")
	if err != nil {
		return nil, err
	}
	return domainProductFromTree(tree), nil
}

// List returns one page of domain products in descending creation order.
func (r *DomainProductRepository) List(ctx context.Context, filters ports.DomainProductFilters, limit int, cursor *common.Cursor) (*common.Page[*entities.DomainProduct], error) {
	qb := &queryBuilder{}
	if name := strings.TrimSpace(filters.Name); name != "" {
		qb.where("slug_name LIKE ?", "%"+valueobjects.Slugify(name)+"%")
	}
	if ids := utils.NormalizeSet(filters.Products); len(ids) > 0 {
		qb.whereIn("product_id", ids)
	}
	if types := utils.NormalizeSet(filters.ResourceTypes); len(types) > 0 {
		qb.whereIn("resource_type_name", types)
	}

	sqlText, params := pageQuery{
		cteName: "domain_products_cte",
		base:    domainProductBaseQuery,
		filters: qb,
		limit:   limit,
		cursor:  cursor,
	}.build()

	res, err := r.store.Execute(ctx, sqlText, params...)
	if err != nil {
		return nil, classifyEntityError(err, "an error occurred while listing domain products")
	}

	trees := mapRows(res.Rows, domainProductResultMap)
	results := make([]*entities.DomainProduct, len(trees))
	for i, t := range trees {
		results[i] = domainProductFromTree(t)
	}

	page := &common.Page[*entities.DomainProduct]{Count: len(results), Results: results}
	if limit > 0 && len(results) == limit {
		page.NextOffset = common.EncodeCursor(results[len(results)-1].SortID)
	}
	return page, nil
}

// Update applies a sparse patch and, when domainId is present, moves the
// domain product under the new domain in the same transaction.
func (r *DomainProductRepository) Update(ctx context.Context, id string, patch ports.UpdateDomainProductInput) (*entities.DomainProduct, error) {
	sc := &setClause{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, errors.NewValidationError("name must not be empty")
		}
		sc.set("name", name)
		sc.set("slug_name", valueobjects.Slugify(name))
	}
	if patch.Description != nil {
		sc.set("description", strings.TrimSpace(*patch.Description))
	}

	if sc.empty() && patch.DomainID == nil {
		return r.GetByID(ctx, id)
	}

	err := r.store.WithinTransaction(ctx, func(tx Executor) error {
		if !sc.empty() {
			sc.setRaw("last_modified_at = NOW()")
			sqlText := renderPositional(fmt.Sprintf(
				"UPDATE domain_products SET %s WHERE id = ? AND is_active = TRUE RETURNING id", sc.render()))

			res, err := tx.Execute(ctx, sqlText, append(sc.params, id)...)
			if err != nil {
				return classifyEntityError(err, "an error occurred while updating the domain product")
			}
			if res.RowCount == 0 {
				return errors.NewNotFoundError("domain product")
			}
		}
		if patch.DomainID != nil {
			return execReparent(ctx, tx, id, entities.LevelDomainProduct, *patch.DomainID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Domain product updated", zap.String("domain_product_id", id))
	return r.GetByID(ctx, id)
}

// Delete deactivates a domain product.
func (r *DomainProductRepository) Delete(ctx context.Context, id string) error {
	sqlText := renderPositional(`
UPDATE domain_products
SET is_active = FALSE, last_modified_at = NOW()
WHERE id = ? AND is_active = TRUE
RETURNING id`)

	res, err := r.store.Execute(ctx, sqlText, id)
	if err != nil {
		return classifyEntityError(err, "an error occurred while deleting the domain product")
	}
	if res.RowCount == 0 {
		return errors.NewNotFoundError("domain product")
	}

	r.logger.Info("Domain product deleted", zap.String("domain_product_id", id))
	return nil
}

// UpdateResourceTypes claims and releases resource types as one atomic
// batch. A value present in both lists cancels out before any statement
// runs; a single conflicting claim fails the whole batch.
func (r *DomainProductRepository) UpdateResourceTypes(ctx context.Context, id string, add, remove []string) (*entities.DomainProduct, error) {
	toAdd, toRemove := utils.ReconcileAddRemove(add, remove)
	if len(toAdd) == 0 && len(toRemove) == 0 {
		return r.GetByID(ctx, id)
	}

	err := r.store.WithinTransaction(ctx, func(tx Executor) error {
		if len(toAdd) > 0 {
			if err := addResourceTypes(ctx, tx, id, toAdd); err != nil {
				return err
			}
		}
		if len(toRemove) > 0 {
			params := make([]any, 0, len(toRemove)+1)
			params = append(params, id)
			for _, t := range toRemove {
				params = append(params, t)
			}
			_, err := tx.Execute(ctx, deleteResourceTypesSQL(len(toRemove)), params...)
			if err != nil {
				return classifyEntityError(err, "an error occurred while removing resource types")
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to update resource types",
			zap.String("domain_product_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	r.logger.Info("Resource types updated",
		zap.String("domain_product_id", id),
		zap.Strings("added", toAdd),
		zap.Strings("removed", toRemove),
	)
	return r.GetByID(ctx, id)
}

// addResourceTypes claims resource types for a domain product after
// verifying none of them is held by a different domain product.
func addResourceTypes(ctx context.Context, exec Executor, domainProductID string, types []string) error {
	params := make([]any, 0, len(types)+1)
	for _, t := range types {
		params = append(params, t)
	}
	params = append(params, domainProductID)

	res, err := exec.Execute(ctx, checkResourceTypesSQL(len(types)), params...)
	if err != nil {
		return classifyEntityError(err, "an error occurred while checking resource type associations")
	}
	if res.RowCount > 0 {
		pairs := make([]string, 0, res.RowCount)
		for _, row := range res.Rows {
			t := Tree(row)
			pairs = append(pairs, fmt.Sprintf("'%s' (held by '%s')",
				t.str("resource_type_name"), t.str("domain_product_name")))
		}
		return errors.NewValidationError(
			"resource types already associated with another domain product: " + strings.Join(pairs, ", "))
	}

	insertParams := make([]any, 0, len(types)*2)
	for _, t := range types {
		insertParams = append(insertParams, domainProductID, t)
	}
	_, err = exec.Execute(ctx, insertResourceTypesSQL(len(types)), insertParams...)
	if err != nil {
		return classifyEntityError(err, "an error occurred while adding resource types")
	}
	return nil
}
