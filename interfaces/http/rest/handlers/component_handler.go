package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"catalog-backend/application/ports"
	"catalog-backend/domain/core/entities"
	"catalog-backend/pkg/common"
	"catalog-backend/pkg/errors"
	"catalog-backend/pkg/utils"
)

// ComponentHandler serves the /components endpoints. Components are
// addressed by type and id together.
type ComponentHandler struct {
	repo            ports.ComponentRepository
	errorHandler    *errors.ErrorHandler
	logger          *zap.Logger
	defaultPageSize int
	maxPageSize     int
}

// NewComponentHandler creates a component handler.
func NewComponentHandler(repo ports.ComponentRepository, errorHandler *errors.ErrorHandler, logger *zap.Logger, defaultPageSize, maxPageSize int) *ComponentHandler {
	return &ComponentHandler{
		repo:            repo,
		errorHandler:    errorHandler,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// CreateComponentRequest is the body of POST /components.
type CreateComponentRequest struct {
	ID          string `json:"id" validate:"required,min=1,max=255"`
	Type        string `json:"type" validate:"required,oneof=LIBRARY UI DATA API"`
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=2000"`
	ProductID   string `json:"productId" validate:"required"`
}

// UpdateComponentRequest is the body of PATCH /components/{type}/{componentID}.
type UpdateComponentRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Type        *string `json:"type" validate:"omitempty,oneof=LIBRARY UI DATA API"`
	ProductID   *string `json:"productId" validate:"omitempty,min=1"`
}

func componentKeyFromPath(r *http.Request) entities.ComponentKey {
	return entities.ComponentKey{
		Type: chi.URLParam(r, "type"),
		ID:   chi.URLParam(r, "componentID"),
	}
}

// CreateComponent handles POST /components.
func (h *ComponentHandler) CreateComponent(w http.ResponseWriter, r *http.Request) {
	var req CreateComponentRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError(err.Error()))
		return
	}

	component, err := h.repo.Create(r.Context(), ports.CreateComponentInput{
		ID:          req.ID,
		Type:        req.Type,
		Name:        req.Name,
		Description: req.Description,
		ProductID:   req.ProductID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, component)
}

// GetComponent handles GET /components/{type}/{componentID}.
func (h *ComponentHandler) GetComponent(w http.ResponseWriter, r *http.Request) {
	component, err := h.repo.GetByKey(r.Context(), componentKeyFromPath(r), viewOptions(r))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, component)
}

// ListComponents handles GET /components.
func (h *ComponentHandler) ListComponents(w http.ResponseWriter, r *http.Request) {
	limit, cursor, err := pageParams(r, h.defaultPageSize, h.maxPageSize)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	filters := ports.ComponentFilters{
		Name:     r.URL.Query().Get("name"),
		Type:     r.URL.Query().Get("type"),
		Products: csv(r.URL.Query().Get("products")),
	}

	page, err := h.repo.List(r.Context(), filters, viewOptions(r), limit, cursor)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, page)
}

// UpdateComponent handles PATCH /components/{type}/{componentID}.
func (h *ComponentHandler) UpdateComponent(w http.ResponseWriter, r *http.Request) {
	var req UpdateComponentRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError(err.Error()))
		return
	}

	component, err := h.repo.Update(r.Context(), componentKeyFromPath(r), ports.UpdateComponentInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		ProductID:   req.ProductID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, component)
}

// DeleteComponent handles DELETE /components/{type}/{componentID}.
func (h *ComponentHandler) DeleteComponent(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), componentKeyFromPath(r)); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
