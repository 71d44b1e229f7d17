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

// domainResultMap folds the denormalized domain rows into domains with
// their domain products, each carrying its own products.
var domainResultMap = &ResultMap{
	IDColumn: "id",
	Columns: []string{
		"id", "name", "slug_name", "description", "sort_id",
		"is_active", "is_system_generated", "created_at", "last_modified_at",
	},
	Collections: []Relationship{
		{Name: "domainProducts", Prefix: "domain_product_", Map: &ResultMap{
			IDColumn: "id",
			Columns:  []string{"id", "name", "description", "is_system_generated"},
			Collections: []Relationship{
				{Name: "products", Prefix: "product_", Map: &ResultMap{
					IDColumn: "id",
					Columns:  []string{"id", "name", "description", "is_system_generated"},
				}},
			},
		}},
	},
}

func domainFromTree(t Tree) *entities.Domain {
	d := &entities.Domain{
		ID:                t.str("id"),
		Name:              t.str("name"),
		SlugName:          t.str("slug_name"),
		Description:       t.str("description"),
		SortID:            t.int64Val("sort_id"),
		IsActive:          t.boolVal("is_active"),
		IsSystemGenerated: t.boolVal("is_system_generated"),
		CreatedAt:         t.timeVal("created_at"),
		LastModifiedAt:    t.timeVal("last_modified_at"),
		DomainProducts:    []entities.DomainProduct{},
	}

	for _, dpt := range t.trees("domainProducts") {
		dp := entities.DomainProduct{
			ID:                dpt.str("id"),
			Name:              dpt.str("name"),
			Description:       dpt.str("description"),
			IsSystemGenerated: dpt.boolVal("is_system_generated"),
			Products:          []entities.Product{},
			ResourceTypes:     []entities.ResourceType{},
		}
		for _, pt := range dpt.trees("products") {
			dp.Products = append(dp.Products, entities.Product{
				ID:                pt.str("id"),
				Name:              pt.str("name"),
				Description:       pt.str("description"),
				IsSystemGenerated: pt.boolVal("is_system_generated"),
			})
		}
		d.DomainProducts = append(d.DomainProducts, dp)
	}
	return d
}

// DomainRepository persists domains on PostgreSQL.
type DomainRepository struct {
	store  Store
	logger *zap.Logger
}

// NewDomainRepository creates a domain repository.
func NewDomainRepository(store Store, logger *zap.Logger) *DomainRepository {
	return &DomainRepository{store: store, logger: logger}
}

var _ ports.DomainRepository = (*DomainRepository)(nil)

// Create inserts a domain together with its default domain product and
// default product, atomically. A failure at any step leaves nothing behind.
func (r *DomainRepository) Create(ctx context.Context, input ports.CreateDomainInput) (*entities.Domain, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewValidationError("name is required")
	}

	id := uuid.NewString()
	err := r.store.WithinTransaction(ctx, func(tx Executor) error {
		res, err := tx.Execute(ctx, insertDomainSQL,
			id, name, valueobjects.Slugify(name), strings.TrimSpace(input.Description), false)
		if err != nil {
			return classifyEntityError(err, "an error occurred while creating the domain")
		}
		if res.RowCount == 0 {
			return errors.NewDependencyError("domain insert returned no rows", nil)
		}

		dpID, err := createDefaultDomainProduct(ctx, tx, id)
		if err != nil {
			return err
		}
		_, err = createDefaultProduct(ctx, tx, dpID)
		return err
	})
	if err != nil {
		r.logger.Error("Failed to create domain", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	r.logger.Info("Domain created", zap.String("domain_id", id), zap.String("name", name))
	return r.GetByID(ctx, id)
}

// GetByID loads one domain with its nested children.
func (r *DomainRepository) GetByID(ctx context.Context, id string) (*entities.Domain, error) {
	sqlText := renderPositional(domainBaseQuery + `
  AND d.id = ?`)

	res, err := r.store.Execute(ctx, sqlText, id)
	if err != nil {
		return nil, classifyEntityError(err, "an error occurred while loading the domain")
	}

	tree, err := mapOne(res.Rows, domainResultMap, "domain")
	if err != nil {
		return nil, err
	}
	return domainFromTree(tree), nil
}

// List returns one page of domains in descending creation order.
func (r *DomainRepository) List(ctx context.Context, filters ports.DomainFilters, limit int, cursor *common.Cursor) (*common.Page[*entities.Domain], error) {
	qb := &queryBuilder{}
	if name := strings.TrimSpace(filters.Name); name != "" {
		qb.where("slug_name LIKE ?", "%"+valueobjects.Slugify(name)+"%")
	}
	if ids := utils.NormalizeSet(filters.DomainProducts); len(ids) > 0 {
		qb.whereIn("domain_product_id", ids)
	}

	sqlText, params := pageQuery{
		cteName: "domains_cte",
		base:    domainBaseQuery,
		filters: qb,
		limit:   limit,
		cursor:  cursor,
	}.build()

	res, err := r.store.Execute(ctx, sqlText, params...)
	if err != nil {
		return nil, classifyEntityError(err, "an error occurred while listing domains")
	}

	trees := mapRows(res.Rows, domainResultMap)
	results := make([]*entities.Domain, len(trees))
	for i, t := range trees {
		results[i] = domainFromTree(t)
	}

	page := &common.Page[*entities.Domain]{Count: len(results), Results: results}
	if limit > 0 && len(results) == limit {
		page.NextOffset = common.EncodeCursor(results[len(results)-1].SortID)
	}
	return page, nil
}

// Update applies a sparse patch. Renaming recomputes the slug.
func (r *DomainRepository) Update(ctx context.Context, id string, patch ports.UpdateDomainInput) (*entities.Domain, error) {
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

	if !sc.empty() {
		sc.setRaw("last_modified_at = NOW()")
		sqlText := renderPositional(fmt.Sprintf(
			"UPDATE domains SET %s WHERE id = ? AND is_active = TRUE RETURNING id", sc.render()))

		res, err := r.store.Execute(ctx, sqlText, append(sc.params, id)...)
		if err != nil {
			return nil, classifyEntityError(err, "an error occurred while updating the domain")
		}
		if res.RowCount == 0 {
			return nil, errors.NewNotFoundError("domain")
		}
		r.logger.Info("Domain updated", zap.String("domain_id", id))
	}

	return r.GetByID(ctx, id)
}

// Delete deactivates a domain. Rows are never physically removed.
func (r *DomainRepository) Delete(ctx context.Context, id string) error {
	sqlText := renderPositional(`
UPDATE domains
SET is_active = FALSE, last_modified_at = NOW()
WHERE id = ? AND is_active = TRUE
RETURNING id`)

	res, err := r.store.Execute(ctx, sqlText, id)
	if err != nil {
		return classifyEntityError(err, "an error occurred while deleting the domain")
	}
	if res.RowCount == 0 {
		return errors.NewNotFoundError("domain")
	}

	r.logger.Info("Domain deleted", zap.String("domain_id", id))
	return nil
}

// Count returns the number of active domains.
func (r *DomainRepository) Count(ctx context.Context) (int64, error) {
	res, err := r.store.Execute(ctx, countDomainsSQL)
	if err != nil {
		return 0, classifyEntityError(err, "an error occurred while counting domains")
	}
	if res.RowCount == 0 {
		return 0, nil
	}
	return Tree(res.Rows[0]).int64Val("count"), nil
}
