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

// Related-entity field names accepted by product and component views.
const (
	fieldDomain        = "domain"
	fieldDomainProduct = "domainProduct"
	fieldProduct       = "product"
)

func productResultMap(withDomainProduct, withDomain bool) *ResultMap {
	m := &ResultMap{
		IDColumn: "id",
		Columns: []string{
			"id", "name", "slug_name", "description", "sort_id",
			"is_active", "is_system_generated", "created_at", "last_modified_at",
		},
	}
	if withDomainProduct {
		m.Associations = append(m.Associations, Relationship{
			Name: fieldDomainProduct, Prefix: "domain_product_",
			Map: &ResultMap{IDColumn: "id", Columns: []string{"id", "name", "description"}},
		})
	}
	if withDomain {
		m.Associations = append(m.Associations, Relationship{
			Name: fieldDomain, Prefix: "domain_",
			Map: &ResultMap{IDColumn: "id", Columns: []string{"id", "name", "description"}},
		})
	}
	return m
}

func productFromTree(t Tree) *entities.Product {
	p := &entities.Product{
		ID:                t.str("id"),
		Name:              t.str("name"),
		SlugName:          t.str("slug_name"),
		Description:       t.str("description"),
		SortID:            t.int64Val("sort_id"),
		IsActive:          t.boolVal("is_active"),
		IsSystemGenerated: t.boolVal("is_system_generated"),
		CreatedAt:         t.timeVal("created_at"),
		LastModifiedAt:    t.timeVal("last_modified_at"),
	}
	if dpt := t.tree(fieldDomainProduct); dpt != nil {
		p.DomainProduct = &entities.EntityRef{
			ID: dpt.str("id"), Name: dpt.str("name"), Description: dpt.str("description"),
		}
	}
	if dt := t.tree(fieldDomain); dt != nil {
		p.Domain = &entities.EntityRef{
			ID: dt.str("id"), Name: dt.str("name"), Description: dt.str("description"),
		}
	}
	return p
}

// ProductRepository persists products on PostgreSQL.
type ProductRepository struct {
	store  Store
	logger *zap.Logger
}

// NewProductRepository creates a product repository.
func NewProductRepository(store Store, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{store: store, logger: logger}
}

var _ ports.ProductRepository = (*ProductRepository)(nil)

// Create inserts a product and attaches it to its domain product,
// atomically.
func (r *ProductRepository) Create(ctx context.Context, input ports.CreateProductInput) (*entities.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewValidationError("name is required")
	}
	if strings.TrimSpace(input.DomainProductID) == "" {
		return nil, errors.NewValidationError("domainProductId is required")
	}

	id := uuid.NewString()
	err := r.store.WithinTransaction(ctx, func(tx Executor) error {
		res, err := tx.Execute(ctx, insertProductSQL,
			id, name, valueobjects.Slugify(name), strings.TrimSpace(input.Description), false)
		if err != nil {
			return classifyEntityError(err, "an error occurred while creating the product")
		}
		if res.RowCount == 0 {
			return errors.NewDependencyError("product insert returned no rows", nil)
		}

		return execCreateRelation(ctx, tx, entities.Relation{
			ParentID:   input.DomainProductID,
			ParentType: entities.LevelDomainProduct,
			ChildID:    id,
			ChildType:  entities.LevelProduct,
		})
	})
	if err != nil {
		r.logger.Error("Failed to create product", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	r.logger.Info("Product created",
		zap.String("product_id", id),
		zap.String("domain_product_id", input.DomainProductID),
	)
	return r.GetByID(ctx, id, ports.DefaultView())
}

// GetByID loads one product, joining only the ancestors the view asks for.
func (r *ProductRepository) GetByID(ctx context.Context, id string, view ports.ViewOptions) (*entities.Product, error) {
	withDP := view.Include(fieldDomainProduct)
	withD := view.Include(fieldDomain)

	sqlText := renderPositional(productBaseQuery(withDP, withD) + `
  AND p.id = ?`)

	res, err := r.store.Execute(ctx, sqlText, id)
	if err != nil {
		return nil, classifyEntityError(err, "an error occurred while loading the product")
	}

	tree, err := mapOne(res.Rows, productResultMap(withDP, withD), "product")
	if err != nil {
		return nil, err
	}
	return productFromTree(tree), nil
}

// List returns one page of products in descending creation order.
func (r *ProductRepository) List(ctx context.Context, filters ports.ProductFilters, view ports.ViewOptions, limit int, cursor *common.Cursor) (*common.Page[*entities.Product], error) {
	withDP := view.Include(fieldDomainProduct)
	withD := view.Include(fieldDomain)

	qb := &queryBuilder{}
	if name := strings.TrimSpace(filters.Name); name != "" {
		qb.where("slug_name LIKE ?", "%"+valueobjects.Slugify(name)+"%")
	}
	if ids := utils.NormalizeSet(filters.DomainProducts); len(ids) > 0 {
		// Filtering on the parent needs its join even when the view
		// excludes it.
		withDP = true
		qb.whereIn("domain_product_id", ids)
	}

	sqlText, params := pageQuery{
		cteName: "products_cte",
		base:    productBaseQuery(withDP, withD),
		filters: qb,
		limit:   limit,
		cursor:  cursor,
	}.build()

	res, err := r.store.Execute(ctx, sqlText, params...)
	if err != nil {
		return nil, classifyEntityError(err, "an error occurred while listing products")
	}

	resultMap := productResultMap(view.Include(fieldDomainProduct), withD)
	trees := mapRows(res.Rows, resultMap)
	results := make([]*entities.Product, len(trees))
	for i, t := range trees {
		results[i] = productFromTree(t)
	}

	page := &common.Page[*entities.Product]{Count: len(results), Results: results}
	if limit > 0 && len(results) == limit {
		page.NextOffset = common.EncodeCursor(results[len(results)-1].SortID)
	}
	return page, nil
}

// Update applies a sparse patch and, when domainProductId is present, moves
// the product under the new domain product in the same transaction.
func (r *ProductRepository) Update(ctx context.Context, id string, patch ports.UpdateProductInput) (*entities.Product, error) {
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

	if sc.empty() && patch.DomainProductID == nil {
		return r.GetByID(ctx, id, ports.DefaultView())
	}

	err := r.store.WithinTransaction(ctx, func(tx Executor) error {
		if !sc.empty() {
			sc.setRaw("last_modified_at = NOW()")
			sqlText := renderPositional(fmt.Sprintf(
				"UPDATE products SET %s WHERE id = ? AND is_active = TRUE RETURNING id", sc.render()))

			res, err := tx.Execute(ctx, sqlText, append(sc.params, id)...)
			if err != nil {
				return classifyEntityError(err, "an error occurred while updating the product")
			}
			if res.RowCount == 0 {
				return errors.NewNotFoundError("product")
			}
		}
		if patch.DomainProductID != nil {
			return execReparent(ctx, tx, id, entities.LevelProduct, *patch.DomainProductID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Product updated", zap.String("product_id", id))
	return r.GetByID(ctx, id, ports.DefaultView())
}

// Delete deactivates a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	sqlText := renderPositional(`
UPDATE products
SET is_active = FALSE, last_modified_at = NOW()
WHERE id = ? AND is_active = TRUE
RETURNING id`)

	res, err := r.store.Execute(ctx, sqlText, id)
	if err != nil {
		return classifyEntityError(err, "an error occurred while deleting the product")
	}
	if res.RowCount == 0 {
		return errors.NewNotFoundError("product")
	}

	r.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}
