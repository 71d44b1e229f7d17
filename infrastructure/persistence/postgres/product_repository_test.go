package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"catalog-backend/application/ports"
	apperrors "catalog-backend/pkg/errors"
)

func productRow(id, name string, sortID int64, overrides Row) Row {
	row := Row{
		"id":                  id,
		"name":                name,
		"slug_name":           "",
		"description":         "",
		"sort_id":             sortID,
		"is_active":           true,
		"is_system_generated": false,
		"created_at":          time.Now(),
		"last_modified_at":    time.Now(),
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

func excludeView(fields ...string) ports.ViewOptions {
	return ports.ViewOptions{Fields: fields, IncludeFields: false}
}

func TestProductCreateAttachesToDomainProduct(t *testing.T) {
	store := newFakeStore(t)
	store.returns(Row{"id": "ignored"})
	store.returns(Row{"parent_id": "dp1"})
	store.returns(productRow("p1", "Checkout", 1, Row{
		"domain_product_id": "dp1", "domain_product_name": "Payments",
		"domain_id": "d1", "domain_name": "Commerce",
	}))

	repo := NewProductRepository(store, zap.NewNop())
	product, err := repo.Create(context.Background(), ports.CreateProductInput{
		Name:            "Checkout",
		DomainProductID: "dp1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.commits)

	rel := store.calls[1]
	assert.Contains(t, rel.sql, "INSERT INTO relations")
	assert.Equal(t, "dp1", rel.params[0])
	assert.Equal(t, "DOMAINPRODUCT", rel.params[1])
	assert.Equal(t, "PRODUCT", rel.params[3])

	require.NotNil(t, product.DomainProduct)
	assert.Equal(t, "Payments", product.DomainProduct.Name)
	require.NotNil(t, product.Domain)
	assert.Equal(t, "Commerce", product.Domain.Name)
}

func TestProductCreateRollsBackWhenRelationFails(t *testing.T) {
	store := newFakeStore(t)
	store.returns(Row{"id": "ignored"})
	store.returns() // relation insert touches nothing

	repo := NewProductRepository(store, zap.NewNop())
	_, err := repo.Create(context.Background(), ports.CreateProductInput{
		Name:            "Checkout",
		DomainProductID: "dp1",
	})

	require.Error(t, err)
	assert.Equal(t, 1, store.rollbacks)
	assert.Zero(t, store.commits)
}

func TestProductGetByIDDefaultViewJoinsAncestors(t *testing.T) {
	store := newFakeStore(t)
	store.returns(productRow("p1", "Checkout", 1, nil))

	repo := NewProductRepository(store, zap.NewNop())
	_, err := repo.GetByID(context.Background(), "p1", ports.DefaultView())
	require.NoError(t, err)

	sql := store.calls[0].sql
	assert.Contains(t, sql, "LEFT JOIN domain_products dp")
	assert.Contains(t, sql, "LEFT JOIN domains d")
	assert.Contains(t, sql, "AND p.id = $1")
}

func TestProductGetByIDExcludedViewSkipsJoins(t *testing.T) {
	store := newFakeStore(t)
	store.returns(productRow("p1", "Checkout", 1, nil))

	repo := NewProductRepository(store, zap.NewNop())
	product, err := repo.GetByID(context.Background(), "p1", excludeView("domain", "domainProduct"))
	require.NoError(t, err)

	sql := store.calls[0].sql
	assert.NotContains(t, sql, "JOIN domain_products")
	assert.NotContains(t, sql, "JOIN domains")
	assert.Nil(t, product.Domain)
	assert.Nil(t, product.DomainProduct)
}

func TestProductListUsesKeysetPagination(t *testing.T) {
	store := newFakeStore(t)
	store.returns(
		productRow("p2", "Checkout", 20, nil),
		productRow("p1", "Catalog", 10, nil),
	)

	repo := NewProductRepository(store, zap.NewNop())
	page, err := repo.List(context.Background(), ports.ProductFilters{}, ports.DefaultView(), 2, nil)
	require.NoError(t, err)

	sql := store.calls[0].sql
	assert.Contains(t, sql, "WITH products_cte AS")
	assert.NotContains(t, sql, "OFFSET")
	assert.NotEmpty(t, page.NextOffset)
}

func TestProductListParentFilterForcesJoinWithoutExposingIt(t *testing.T) {
	store := newFakeStore(t)
	store.returns(productRow("p1", "Checkout", 10, Row{
		"domain_product_id": "dp1", "domain_product_name": "Payments",
	}))

	repo := NewProductRepository(store, zap.NewNop())
	page, err := repo.List(context.Background(),
		ports.ProductFilters{DomainProducts: []string{"dp1"}},
		excludeView("domain", "domainProduct"), 10, nil)
	require.NoError(t, err)

	assert.Contains(t, store.calls[0].sql, "LEFT JOIN domain_products dp")
	assert.Contains(t, store.calls[0].sql, "domain_product_id IN ($1)")
	require.Len(t, page.Results, 1)
	assert.Nil(t, page.Results[0].DomainProduct)
}

func TestProductUpdateReparentOnly(t *testing.T) {
	store := newFakeStore(t)
	store.returns(Row{"child_id": "p1"})
	store.returns(productRow("p1", "Checkout", 1, nil))

	domainProductID := "dp2"
	repo := NewProductRepository(store, zap.NewNop())
	_, err := repo.Update(context.Background(), "p1", ports.UpdateProductInput{
		DomainProductID: &domainProductID,
	})
	require.NoError(t, err)

	// no entity row update, just the edge move and the reload
	require.Len(t, store.calls, 2)
	assert.Contains(t, store.calls[0].sql, "UPDATE relations")
	assert.Equal(t, []any{"dp2", "DOMAINPRODUCT", "p1", "PRODUCT"}, store.calls[0].params)
}

func TestProductUpdateBlankNameRejected(t *testing.T) {
	name := "  "
	repo := NewProductRepository(newFakeStore(t), zap.NewNop())

	_, err := repo.Update(context.Background(), "p1", ports.UpdateProductInput{Name: &name})
	assert.True(t, apperrors.IsValidation(err))
}

func TestProductDeleteIsSoft(t *testing.T) {
	store := newFakeStore(t)
	store.returns(Row{"id": "p1"})

	repo := NewProductRepository(store, zap.NewNop())
	require.NoError(t, repo.Delete(context.Background(), "p1"))
	assert.Contains(t, store.calls[0].sql, "UPDATE products")
	assert.Contains(t, store.calls[0].sql, "SET is_active = FALSE")
}
