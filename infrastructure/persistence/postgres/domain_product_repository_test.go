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

func domainProductRow(id, name string, sortID int64, overrides Row) Row {
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
		"domain_id":           nil,
		"product_id":          nil,
		"resource_type_name":  nil,
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

func TestDomainProductCreateClaimsResourceTypesAndCascades(t *testing.T) {
	store := newFakeStore(t)
	store.returns(Row{"id": "ignored"})                 // insert
	store.returns(Row{"parent_id": "d1"})               // domain edge
	store.returns()                                     // conflict check, clean
	store.returns(Row{"resource_type_name": "ec2"})     // claim insert
	store.returns(Row{"id": "ignored"})                 // default product
	store.returns(Row{"parent_id": "x"})                // product edge
	store.returns(domainProductRow("dp1", "Compute", 1, nil)) // reload

	repo := NewDomainProductRepository(store, zap.NewNop())
	_, err := repo.Create(context.Background(), ports.CreateDomainProductInput{
		Name:          "Compute",
		DomainID:      "d1",
		ResourceTypes: []string{"ec2", " ec2 "},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.commits)

	assert.Contains(t, store.calls[1].sql, "INSERT INTO relations")
	assert.Equal(t, "d1", store.calls[1].params[0])
	assert.Equal(t, "DOMAIN", store.calls[1].params[1])
	assert.Equal(t, "DOMAINPRODUCT", store.calls[1].params[3])

	// the duplicated resource type was normalized down to one claim
	check := store.calls[2]
	assert.Contains(t, check.sql, "resource_type_name IN ($1)")
	assert.Equal(t, "ec2", check.params[0])

	claim := store.calls[3]
	assert.Contains(t, claim.sql, "INSERT INTO domain_product_resource_types")
	assert.Equal(t, "ec2", claim.params[1])

	assert.Contains(t, store.calls[4].sql, "INSERT INTO products")
}

func TestDomainProductCreateConflictingResourceTypeFailsWholeBatch(t *testing.T) {
	store := newFakeStore(t)
	store.returns(Row{"id": "ignored"})   // insert
	store.returns(Row{"parent_id": "d1"}) // domain edge
	store.returns(Row{                    // conflict check finds a claimant
		"resource_type_name":  "s3",
		"domain_product_id":   "other",
		"domain_product_name": "Storage",
	})

	repo := NewDomainProductRepository(store, zap.NewNop())
	_, err := repo.Create(context.Background(), ports.CreateDomainProductInput{
		Name:          "Compute",
		DomainID:      "d1",
		ResourceTypes: []string{"s3", "ec2"},
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "'s3'")
	assert.Contains(t, err.Error(), "'Storage'")
	assert.Equal(t, 1, store.rollbacks)
	// no claim insert and no default product after the conflict
	assert.Len(t, store.calls, 3)
}

func TestDomainProductCreateRequiresDomain(t *testing.T) {
	repo := NewDomainProductRepository(newFakeStore(t), zap.NewNop())

	_, err := repo.Create(context.Background(), ports.CreateDomainProductInput{Name: "Compute"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestDomainProductGetByIDMapsRelatedEntities(t *testing.T) {
	store := newFakeStore(t)
	store.returns(
		domainProductRow("dp1", "Compute", 1, Row{
			"domain_id": "d1", "domain_name": "Infrastructure",
			"product_id": "p1", "product_name": "Autoscaler",
			"resource_type_name": "ec2",
		}),
		domainProductRow("dp1", "Compute", 1, Row{
			"domain_id": "d1", "domain_name": "Infrastructure",
			"product_id": "p1", "product_name": "Autoscaler",
			"resource_type_name": "asg",
		}),
	)

	repo := NewDomainProductRepository(store, zap.NewNop())
	dp, err := repo.GetByID(context.Background(), "dp1")
	require.NoError(t, err)

	require.NotNil(t, dp.Domain)
	assert.Equal(t, "Infrastructure", dp.Domain.Name)
	require.Len(t, dp.Products, 1)
	require.Len(t, dp.ResourceTypes, 2)
	assert.Equal(t, "ec2", dp.ResourceTypes[0].Name)
	assert.Equal(t, "asg", dp.ResourceTypes[1].Name)
}

func TestDomainProductListFilters(t *testing.T) {
	store := newFakeStore(t)
	store.returns()

	repo := NewDomainProductRepository(store, zap.NewNop())
	_, err := repo.List(context.Background(), ports.DomainProductFilters{
		Name:          "Compute",
		Products:      []string{"p1"},
		ResourceTypes: []string{"ec2"},
	}, 10, nil)
	require.NoError(t, err)

	call := store.calls[0]
	assert.Contains(t, call.sql, "slug_name LIKE $1")
	assert.Contains(t, call.sql, "product_id IN ($2)")
	assert.Contains(t, call.sql, "resource_type_name IN ($3)")
}

func TestDomainProductUpdateMovesDomainInSameTransaction(t *testing.T) {
	store := newFakeStore(t)
	store.returns(Row{"id": "dp1"})    // entity update
	store.returns(Row{"child_id": "dp1"}) // reparent
	store.returns(domainProductRow("dp1", "Compute", 1, nil))

	name := "Compute"
	domainID := "d2"
	repo := NewDomainProductRepository(store, zap.NewNop())
	_, err := repo.Update(context.Background(), "dp1", ports.UpdateDomainProductInput{
		Name:     &name,
		DomainID: &domainID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.commits)

	assert.Contains(t, store.calls[0].sql, "UPDATE domain_products SET")
	assert.Contains(t, store.calls[1].sql, "UPDATE relations")
	assert.Equal(t, []any{"d2", "DOMAIN", "dp1", "DOMAINPRODUCT"}, store.calls[1].params)
}

func TestUpdateResourceTypesCancelingListsIsANoOp(t *testing.T) {
	store := newFakeStore(t)
	store.returns(domainProductRow("dp1", "Compute", 1, nil)) // only the reload

	repo := NewDomainProductRepository(store, zap.NewNop())
	_, err := repo.UpdateResourceTypes(context.Background(), "dp1",
		[]string{"ec2"}, []string{" ec2 "})
	require.NoError(t, err)

	assert.Zero(t, store.commits)
	require.Len(t, store.calls, 1)
	assert.Contains(t, store.calls[0].sql, "SELECT")
}

func TestUpdateResourceTypesAddsAndRemovesAtomically(t *testing.T) {
	store := newFakeStore(t)
	store.returns()                                 // conflict check, clean
	store.returns(Row{"resource_type_name": "rds"}) // claim
	store.returns(Row{"resource_type_name": "ec2"}) // release
	store.returns(domainProductRow("dp1", "Compute", 1, nil))

	repo := NewDomainProductRepository(store, zap.NewNop())
	_, err := repo.UpdateResourceTypes(context.Background(), "dp1",
		[]string{"rds"}, []string{"ec2"})
	require.NoError(t, err)
	assert.Equal(t, 1, store.commits)

	assert.Contains(t, store.calls[1].sql, "INSERT INTO domain_product_resource_types")
	assert.Contains(t, store.calls[2].sql, "DELETE FROM domain_product_resource_types")
	assert.Equal(t, []any{"dp1", "ec2"}, store.calls[2].params)
}

func TestUpdateResourceTypesConflictRollsBack(t *testing.T) {
	store := newFakeStore(t)
	store.returns(Row{
		"resource_type_name":  "rds",
		"domain_product_id":   "other",
		"domain_product_name": "Databases",
	})

	repo := NewDomainProductRepository(store, zap.NewNop())
	_, err := repo.UpdateResourceTypes(context.Background(), "dp1", []string{"rds"}, nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 1, store.rollbacks)
	assert.Len(t, store.calls, 1)
}

func TestDomainProductDeleteIsSoft(t *testing.T) {
	store := newFakeStore(t)
	store.returns(Row{"id": "dp1"})

	repo := NewDomainProductRepository(store, zap.NewNop())
	require.NoError(t, repo.Delete(context.Background(), "dp1"))
	assert.Contains(t, store.calls[0].sql, "SET is_active = FALSE")
}
