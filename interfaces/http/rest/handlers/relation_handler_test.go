package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"catalog-backend/domain/core/entities"
	"catalog-backend/pkg/errors"
)

type fakeRelationStore struct {
	created  *entities.Relation
	moved    bool
	childID  string
	childTyp entities.Level
	parentID string
	err      error
}

func (f *fakeRelationStore) CreateRelation(ctx context.Context, rel entities.Relation) (*entities.Relation, error) {
	f.created = &rel
	if f.err != nil {
		return nil, f.err
	}
	return &rel, nil
}

func (f *fakeRelationStore) Reparent(ctx context.Context, childID string, childType entities.Level, newParentID string) error {
	f.moved = true
	f.childID = childID
	f.childTyp = childType
	f.parentID = newParentID
	return f.err
}

func newRelationHandler(store *fakeRelationStore) *RelationHandler {
	return NewRelationHandler(store, errors.NewErrorHandler(zap.NewNop(), false), zap.NewNop())
}

func TestCreateRelationReturnsCreated(t *testing.T) {
	store := &fakeRelationStore{}
	h := newRelationHandler(store)

	body := `{"parentId":"d1","parentType":"DOMAIN","childId":"dp1","childType":"DOMAINPRODUCT"}`
	req := httptest.NewRequest(http.MethodPost, "/relations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateRelation(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, store.created)
	assert.Equal(t, entities.LevelDomain, store.created.ParentType)
	assert.Equal(t, "dp1", store.created.ChildID)
}

func TestCreateRelationRejectsUnknownLevel(t *testing.T) {
	store := &fakeRelationStore{}
	h := newRelationHandler(store)

	body := `{"parentId":"d1","parentType":"GALAXY","childId":"dp1","childType":"DOMAINPRODUCT"}`
	req := httptest.NewRequest(http.MethodPost, "/relations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateRelation(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, store.created)
}

func TestMoveRelationReturnsNoContent(t *testing.T) {
	store := &fakeRelationStore{}
	h := newRelationHandler(store)

	body := `{"childId":"p1","childType":"PRODUCT","parentId":"dp2"}`
	req := httptest.NewRequest(http.MethodPatch, "/relations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.MoveRelation(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, store.moved)
	assert.Equal(t, "p1", store.childID)
	assert.Equal(t, entities.LevelProduct, store.childTyp)
	assert.Equal(t, "dp2", store.parentID)
}

func TestMoveRelationMapsNotFound(t *testing.T) {
	store := &fakeRelationStore{err: errors.NewNotFoundError("relation for product 'p9'")}
	h := newRelationHandler(store)

	body := `{"childId":"p9","childType":"PRODUCT","parentId":"dp2"}`
	req := httptest.NewRequest(http.MethodPatch, "/relations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.MoveRelation(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
