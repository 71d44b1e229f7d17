package postgres

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"catalog-backend/application/ports"
	"catalog-backend/domain/core/entities"
	"catalog-backend/pkg/common"
	"catalog-backend/pkg/errors"
	"catalog-backend/pkg/utils"
)

func componentResultMap(withProduct, withDomainProduct, withDomain bool) *ResultMap {
	m := &ResultMap{
		IDColumn:   "id",
		KeyColumns: []string{"type"},
		Columns: []string{
			"id", "type", "name", "description", "sort_id",
			"is_active", "created_at", "last_modified_at",
		},
	}
	refMap := func() *ResultMap {
		return &ResultMap{IDColumn: "id", Columns: []string{"id", "name"}}
	}
	if withProduct {
		m.Associations = append(m.Associations, Relationship{Name: fieldProduct, Prefix: "product_", Map: refMap()})
	}
	if withDomainProduct {
		m.Associations = append(m.Associations, Relationship{Name: fieldDomainProduct, Prefix: "domain_product_", Map: refMap()})
	}
	if withDomain {
		m.Associations = append(m.Associations, Relationship{Name: fieldDomain, Prefix: "domain_", Map: refMap()})
	}
	return m
}

func componentFromTree(t Tree) *entities.Component {
	c := &entities.Component{
		ID:             t.str("id"),
		Type:           t.str("type"),
		Name:           t.str("name"),
		Description:    t.str("description"),
		SortID:         t.int64Val("sort_id"),
		IsActive:       t.boolVal("is_active"),
		CreatedAt:      t.timeVal("created_at"),
		LastModifiedAt: t.timeVal("last_modified_at"),
	}
	if pt := t.tree(fieldProduct); pt != nil {
		c.Product = &entities.EntityRef{ID: pt.str("id"), Name: pt.str("name")}
	}
	if dpt := t.tree(fieldDomainProduct); dpt != nil {
		c.DomainProduct = &entities.EntityRef{ID: dpt.str("id"), Name: dpt.str("name")}
	}
	if dt := t.tree(fieldDomain); dt != nil {
		c.Domain = &entities.EntityRef{ID: dt.str("id"), Name: dt.str("name")}
	}
	return c
}

// ComponentRepository persists components on PostgreSQL. Components are
// identified by type plus id everywhere, including relation endpoints.
type ComponentRepository struct {
	store  Store
	logger *zap.Logger
}

// NewComponentRepository creates a component repository.
func NewComponentRepository(store Store, logger *zap.Logger) *ComponentRepository {
	return &ComponentRepository{store: store, logger: logger}
}

var _ ports.ComponentRepository = (*ComponentRepository)(nil)

// Create inserts a component under its product, atomically. The caller
// supplies the component id; only the composite of type and id must be
// unique.
func (r *ComponentRepository) Create(ctx context.Context, input ports.CreateComponentInput) (*entities.Component, error) {
	id := strings.TrimSpace(input.ID)
	name := strings.TrimSpace(input.Name)
	switch {
	case id == "":
		return nil, errors.NewValidationError("id is required")
	case name == "":
		return nil, errors.NewValidationError("name is required")
	case !entities.IsValidComponentType(input.Type):
		return nil, errors.NewValidationError(fmt.Sprintf("'%s' is not a valid component type", input.Type))
	case strings.TrimSpace(input.ProductID) == "":
		return nil, errors.NewValidationError("productId is required")
	}

	key := entities.ComponentKey{Type: input.Type, ID: id}
	err := r.store.WithinTransaction(ctx, func(tx Executor) error {
		res, err := tx.Execute(ctx, insertComponentSQL,
			id, input.Type, name, strings.TrimSpace(input.Description))
		if err != nil {
			return classifyEntityError(err, "an error occurred while creating the component")
		}
		if res.RowCount == 0 {
			return errors.NewDependencyError("component insert returned no rows", nil)
		}

		return execCreateRelation(ctx, tx, entities.Relation{
			ParentID:   input.ProductID,
			ParentType: entities.LevelProduct,
			ChildID:    key.String(),
			ChildType:  entities.LevelComponent,
		})
	})
	if err != nil {
		r.logger.Error("Failed to create component", zap.String("component_key", key.String()), zap.Error(err))
		return nil, err
	}

	r.logger.Info("Component created",
		zap.String("component_key", key.String()),
		zap.String("product_id", input.ProductID),
	)
	return r.GetByKey(ctx, key, ports.DefaultView())
}

// GetByKey loads one component, joining only the ancestors the view asks
// for.
func (r *ComponentRepository) GetByKey(ctx context.Context, key entities.ComponentKey, view ports.ViewOptions) (*entities.Component, error) {
	withP := view.Include(fieldProduct)
	withDP := view.Include(fieldDomainProduct)
	withD := view.Include(fieldDomain)

	sqlText := renderPositional(componentBaseQuery(withP, withDP, withD) + `
  AND c.component_id = ? AND c.type = ?`)

	res, err := r.store.Execute(ctx, sqlText, key.ID, key.Type)
	if err != nil {
		return nil, classifyEntityError(err, "an error occurred while loading the component")
	}

	tree, err := mapOne(res.Rows, componentResultMap(withP, withDP, withD), "component")
	if err != nil {
		return nil, err
	}
	return componentFromTree(tree), nil
}

// List returns one page of components in descending creation order. The
// page window is computed over composite keys, so components of different
// types sharing an id never bleed into each other.
func (r *ComponentRepository) List(ctx context.Context, filters ports.ComponentFilters, view ports.ViewOptions, limit int, cursor *common.Cursor) (*common.Page[*entities.Component], error) {
	withP := view.Include(fieldProduct)
	withDP := view.Include(fieldDomainProduct)
	withD := view.Include(fieldDomain)

	qb := &queryBuilder{}
	if name := strings.TrimSpace(filters.Name); name != "" {
		qb.where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if filters.Type != "" {
		if !entities.IsValidComponentType(filters.Type) {
			return nil, errors.NewValidationError(fmt.Sprintf("'%s' is not a valid component type", filters.Type))
		}
		qb.where("type = ?", filters.Type)
	}
	joinProduct := withP
	if ids := utils.NormalizeSet(filters.Products); len(ids) > 0 {
		joinProduct = true
		qb.whereIn("product_id", ids)
	}

	sqlText, params := pageQuery{
		cteName:  "components_cte",
		base:     componentBaseQuery(joinProduct, withDP, withD),
		filters:  qb,
		limit:    limit,
		cursor:   cursor,
		distinct: []string{"id", "type"},
	}.build()

	res, err := r.store.Execute(ctx, sqlText, params...)
	if err != nil {
		return nil, classifyEntityError(err, "an error occurred while listing components")
	}

	trees := mapRows(res.Rows, componentResultMap(withP, withDP, withD))
	results := make([]*entities.Component, len(trees))
	for i, t := range trees {
		results[i] = componentFromTree(t)
	}

	page := &common.Page[*entities.Component]{Count: len(results), Results: results}
	if limit > 0 && len(results) == limit {
		page.NextOffset = common.EncodeCursor(results[len(results)-1].SortID)
	}
	return page, nil
}

// Update applies a sparse patch. Changing the type rewrites the component's
// relation key; changing the product moves its edge. All of it commits or
// none of it does.
func (r *ComponentRepository) Update(ctx context.Context, key entities.ComponentKey, patch ports.UpdateComponentInput) (*entities.Component, error) {
	sc := &setClause{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, errors.NewValidationError("name must not be empty")
		}
		sc.set("name", name)
	}
	if patch.Description != nil {
		sc.set("description", strings.TrimSpace(*patch.Description))
	}

	newKey := key
	if patch.Type != nil {
		if !entities.IsValidComponentType(*patch.Type) {
			return nil, errors.NewValidationError(fmt.Sprintf("'%s' is not a valid component type", *patch.Type))
		}
		newKey.Type = *patch.Type
		if newKey.Type != key.Type {
			sc.set("type", newKey.Type)
		}
	}

	if sc.empty() && patch.ProductID == nil {
		return r.GetByKey(ctx, key, ports.DefaultView())
	}

	err := r.store.WithinTransaction(ctx, func(tx Executor) error {
		if !sc.empty() {
			sc.setRaw("last_modified_at = NOW()")
			sqlText := renderPositional(fmt.Sprintf(
				"UPDATE components SET %s WHERE component_id = ? AND type = ? AND is_active = TRUE RETURNING component_id",
				sc.render()))

			res, err := tx.Execute(ctx, sqlText, append(sc.params, key.ID, key.Type)...)
			if err != nil {
				return classifyEntityError(err, "an error occurred while updating the component")
			}
			if res.RowCount == 0 {
				return errors.NewNotFoundError("component")
			}
		}

		if newKey != key {
			res, err := tx.Execute(ctx, rekeyComponentRelationSQL, newKey.String(), key.String())
			if err != nil {
				return classifyRelationError(err, "an error occurred while rekeying the component relation")
			}
			if res.RowCount == 0 {
				return errors.NewNotFoundError(fmt.Sprintf("relation for component '%s'", key.String()))
			}
		}

		if patch.ProductID != nil {
			return execReparent(ctx, tx, newKey.String(), entities.LevelComponent, *patch.ProductID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Component updated", zap.String("component_key", newKey.String()))
	return r.GetByKey(ctx, newKey, ports.DefaultView())
}

// Delete deactivates a component.
func (r *ComponentRepository) Delete(ctx context.Context, key entities.ComponentKey) error {
	sqlText := renderPositional(`
UPDATE components
SET is_active = FALSE, last_modified_at = NOW()
WHERE component_id = ? AND type = ? AND is_active = TRUE
RETURNING component_id`)

	res, err := r.store.Execute(ctx, sqlText, key.ID, key.Type)
	if err != nil {
		return classifyEntityError(err, "an error occurred while deleting the component")
	}
	if res.RowCount == 0 {
		return errors.NewNotFoundError("component")
	}

	r.logger.Info("Component deleted", zap.String("component_key", key.String()))
	return nil
}
