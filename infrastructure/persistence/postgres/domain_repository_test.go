package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"catalog-backend/application/ports"
	"catalog-backend/pkg/common"
	apperrors "catalog-backend/pkg/errors"
)

func domainRow(id, name string, sortID int64, overrides Row) Row {
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
		"domain_product_id":   nil,
		"product_id":          nil,
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

func TestDomainCreateCascadesDefaults(t *testing.T) {
	store := newFakeStore(t)
	store.returns(Row{"id": "ignored"})    // domain insert
	store.returns(Row{"id": "ignored"})    // default domain product insert
	store.returns(Row{"parent_id": "x"})   // domain -> domain product edge
	store.returns(Row{"id": "ignored"})    // default product insert
	store.returns(Row{"parent_id": "x"})   // domain product -> product edge
	store.returns(domainRow("d1", "Chemistry", 1, nil)) // reload

	repo := NewDomainRepository(store, zap.NewNop())
	domain, err := repo.Create(context.Background(), ports.CreateDomainInput{
		Name:        "  Chemistry  ",
		Description: "All chemistry systems",
	})
	require.NoError(t, err)
	assert.Equal(t, "Chemistry", domain.Name)
	assert.Equal(t, 1, store.commits)

	require.Len(t, store.calls, 6)
	assert.Contains(t, store.calls[0].sql, "INSERT INTO domains")
	assert.Equal(t, "Chemistry", store.calls[0].params[1])
	assert.Equal(t, "chemistry", store.calls[0].params[2])

	assert.Contains(t, store.calls[1].sql, "INSERT INTO domain_products")
	assert.Equal(t, "(Default Domain-Product)", store.calls[1].params[1])
	assert.Equal(t, "This is a system generated domainProduct.", store.calls[1].params[3])
	assert.Equal(t, true, store.calls[1].params[4])

	assert.Contains(t, store.calls[3].sql, "INSERT INTO products")
	assert.Equal(t, "(Default Product)", store.calls[3].params[1])
	assert.Equal(t, "This is a system generated product.", store.calls[3].params[3])
}

func TestDomainCreateRollsBackWhenCascadeFails(t *testing.T) {
	store := newFakeStore(t)
	store.returns(Row{"id": "ignored"})  // domain insert
	store.returns(Row{"id": "ignored"})  // default domain product insert
	store.returns(Row{"parent_id": "x"}) // edge
	store.fails(errors.New("disk full")) // default product insert fails

	repo := NewDomainRepository(store, zap.NewNop())
	_, err := repo.Create(context.Background(), ports.CreateDomainInput{Name: "Chemistry"})

	require.Error(t, err)
	assert.True(t, apperrors.IsDependency(err))
	assert.Equal(t, 1, store.rollbacks)
	assert.Zero(t, store.commits)
	// nothing runs after the failing statement, the reload included
	assert.Len(t, store.calls, 4)
}

func TestDomainCreateRequiresName(t *testing.T) {
	repo := NewDomainRepository(newFakeStore(t), zap.NewNop())

	_, err := repo.Create(context.Background(), ports.CreateDomainInput{Name: "   "})
	assert.True(t, apperrors.IsValidation(err))
}

func TestDomainGetByIDFoldsNestedChildren(t *testing.T) {
	store := newFakeStore(t)
	store.returns(
		domainRow("d1", "Chemistry", 1, Row{
			"domain_product_id": "dp1", "domain_product_name": "Lab",
			"product_id": "p1", "product_name": "Spectrometry",
		}),
		domainRow("d1", "Chemistry", 1, Row{
			"domain_product_id": "dp1", "domain_product_name": "Lab",
			"product_id": "p2", "product_name": "Chromatography",
		}),
		domainRow("d1", "Chemistry", 1, Row{
			"domain_product_id": "dp2", "domain_product_name": "Archive",
		}),
	)

	repo := NewDomainRepository(store, zap.NewNop())
	domain, err := repo.GetByID(context.Background(), "d1")
	require.NoError(t, err)

	assert.Contains(t, store.calls[0].sql, "AND d.id = $1")
	require.Len(t, domain.DomainProducts, 2)
	assert.Equal(t, "Lab", domain.DomainProducts[0].Name)
	require.Len(t, domain.DomainProducts[0].Products, 2)
	assert.Equal(t, "Spectrometry", domain.DomainProducts[0].Products[0].Name)
	assert.Empty(t, domain.DomainProducts[1].Products)
}

func TestDomainGetByIDNotFound(t *testing.T) {
	store := newFakeStore(t)
	store.returns() // zero rows

	repo := NewDomainRepository(store, zap.NewNop())
	_, err := repo.GetByID(context.Background(), "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDomainListFullPageYieldsNextOffset(t *testing.T) {
	store := newFakeStore(t)
	store.returns(
		domainRow("d2", "Physics", 20, nil),
		domainRow("d1", "Chemistry", 10, nil),
	)

	repo := NewDomainRepository(store, zap.NewNop())
	page, err := repo.List(context.Background(), ports.DomainFilters{}, 2, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, page.Count)
	require.NotEmpty(t, page.NextOffset)
	cursor, err := common.DecodeCursor(page.NextOffset)
	require.NoError(t, err)
	assert.Equal(t, int64(10), cursor.SortID)

	assert.Contains(t, store.calls[0].sql, "WITH domains_cte AS")
	assert.Contains(t, store.calls[0].sql, "ORDER BY cte.sort_id DESC")
}

func TestDomainListPartialPageIsTerminal(t *testing.T) {
	store := newFakeStore(t)
	store.returns(domainRow("d1", "Chemistry", 10, nil))

	repo := NewDomainRepository(store, zap.NewNop())
	page, err := repo.List(context.Background(), ports.DomainFilters{}, 2, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, page.Count)
	assert.Empty(t, page.NextOffset)
}

func TestDomainListAppliesFiltersAndCursor(t *testing.T) {
	store := newFakeStore(t)
	store.returns()

	repo := NewDomainRepository(store, zap.NewNop())
	_, err := repo.List(context.Background(),
		ports.DomainFilters{Name: "Data Platform", DomainProducts: []string{"dp1", "dp2"}},
		10, &common.Cursor{SortID: 99})
	require.NoError(t, err)

	call := store.calls[0]
	assert.Contains(t, call.sql, "slug_name LIKE $1")
	assert.Contains(t, call.sql, "domain_product_id IN ($2, $3)")
	assert.Contains(t, call.sql, "sort_id < $4")
	assert.Equal(t, []any{"%data-platform%", "dp1", "dp2", int64(99), 10}, call.params)
}

func TestDomainUpdateRenameRecomputesSlug(t *testing.T) {
	store := newFakeStore(t)
	store.returns(Row{"id": "d1"})
	store.returns(domainRow("d1", "Applied Chemistry", 1, nil))

	name := "Applied Chemistry"
	repo := NewDomainRepository(store, zap.NewNop())
	_, err := repo.Update(context.Background(), "d1", ports.UpdateDomainInput{Name: &name})
	require.NoError(t, err)

	call := store.calls[0]
	assert.Contains(t, call.sql, "UPDATE domains SET name = $1, slug_name = $2, last_modified_at = NOW()")
	assert.Equal(t, []any{"Applied Chemistry", "applied-chemistry", "d1"}, call.params)
}

func TestDomainUpdateEmptyPatchSkipsWrite(t *testing.T) {
	store := newFakeStore(t)
	store.returns(domainRow("d1", "Chemistry", 1, nil))

	repo := NewDomainRepository(store, zap.NewNop())
	_, err := repo.Update(context.Background(), "d1", ports.UpdateDomainInput{})
	require.NoError(t, err)

	require.Len(t, store.calls, 1)
	assert.NotContains(t, store.calls[0].sql, "UPDATE")
}

func TestDomainUpdateUnknownIDIsNotFound(t *testing.T) {
	store := newFakeStore(t)
	store.returns() // zero rows updated

	desc := "new description"
	repo := NewDomainRepository(store, zap.NewNop())
	_, err := repo.Update(context.Background(), "ghost", ports.UpdateDomainInput{Description: &desc})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDomainDeleteIsSoft(t *testing.T) {
	store := newFakeStore(t)
	store.returns(Row{"id": "d1"})

	repo := NewDomainRepository(store, zap.NewNop())
	require.NoError(t, repo.Delete(context.Background(), "d1"))

	call := store.calls[0]
	assert.Contains(t, call.sql, "SET is_active = FALSE")
	assert.NotContains(t, call.sql, "DELETE FROM")
}

func TestDomainDeleteTwiceIsNotFound(t *testing.T) {
	store := newFakeStore(t)
	store.returns() // already inactive, zero rows

	repo := NewDomainRepository(store, zap.NewNop())
	err := repo.Delete(context.Background(), "d1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDomainCount(t *testing.T) {
	store := newFakeStore(t)
	store.returns(Row{"count": int64(7)})

	repo := NewDomainRepository(store, zap.NewNop())
	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Contains(t, store.calls[0].sql, "WHERE is_active = TRUE")
}
