package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"catalog-backend/application/ports"
	"catalog-backend/domain/core/entities"
	"catalog-backend/pkg/common"
	"catalog-backend/pkg/errors"
	"catalog-backend/pkg/utils"
)

// RelationHandler serves the /relations endpoints for callers that attach
// and move taxonomy edges directly.
type RelationHandler struct {
	store        ports.RelationStore
	errorHandler *errors.ErrorHandler
	logger       *zap.Logger
}

// NewRelationHandler creates a relation handler.
func NewRelationHandler(store ports.RelationStore, errorHandler *errors.ErrorHandler, logger *zap.Logger) *RelationHandler {
	return &RelationHandler{store: store, errorHandler: errorHandler, logger: logger}
}

// CreateRelationRequest is the body of POST /relations.
type CreateRelationRequest struct {
	ParentID   string `json:"parentId" validate:"required"`
	ParentType string `json:"parentType" validate:"required,oneof=DOMAIN DOMAINPRODUCT PRODUCT"`
	ChildID    string `json:"childId" validate:"required"`
	ChildType  string `json:"childType" validate:"required,oneof=DOMAINPRODUCT PRODUCT COMPONENT"`
}

// MoveRelationRequest is the body of PATCH /relations.
type MoveRelationRequest struct {
	ChildID   string `json:"childId" validate:"required"`
	ChildType string `json:"childType" validate:"required,oneof=DOMAINPRODUCT PRODUCT COMPONENT"`
	ParentID  string `json:"parentId" validate:"required"`
}

// CreateRelation handles POST /relations.
func (h *RelationHandler) CreateRelation(w http.ResponseWriter, r *http.Request) {
	var req CreateRelationRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError(err.Error()))
		return
	}

	rel, err := h.store.CreateRelation(r.Context(), entities.Relation{
		ParentID:   req.ParentID,
		ParentType: entities.Level(req.ParentType),
		ChildID:    req.ChildID,
		ChildType:  entities.Level(req.ChildType),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, rel)
}

// MoveRelation handles PATCH /relations.
func (h *RelationHandler) MoveRelation(w http.ResponseWriter, r *http.Request) {
	var req MoveRelationRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError(err.Error()))
		return
	}

	err := h.store.Reparent(r.Context(), req.ChildID, entities.Level(req.ChildType), req.ParentID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
