package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"catalog-backend/application/ports"
	"catalog-backend/pkg/common"
	"catalog-backend/pkg/errors"
	"catalog-backend/pkg/utils"
)

// DomainProductHandler serves the /domain-products endpoints.
type DomainProductHandler struct {
	repo            ports.DomainProductRepository
	errorHandler    *errors.ErrorHandler
	logger          *zap.Logger
	defaultPageSize int
	maxPageSize     int
}

// NewDomainProductHandler creates a domain product handler.
func NewDomainProductHandler(repo ports.DomainProductRepository, errorHandler *errors.ErrorHandler, logger *zap.Logger, defaultPageSize, maxPageSize int) *DomainProductHandler {
	return &DomainProductHandler{
		repo:            repo,
		errorHandler:    errorHandler,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// CreateDomainProductRequest is the body of POST /domain-products.
type CreateDomainProductRequest struct {
	Name          string   `json:"name" validate:"required,min=1,max=255"`
	Description   string   `json:"description" validate:"max=2000"`
	DomainID      string   `json:"domainId" validate:"required"`
	ResourceTypes []string `json:"resourceTypes" validate:"omitempty,dive,min=1"`
}

// UpdateDomainProductRequest is the body of PATCH /domain-products/{domainProductID}.
type UpdateDomainProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	DomainID    *string `json:"domainId" validate:"omitempty,min=1"`
}

// UpdateResourceTypesRequest is the body of
// PATCH /domain-products/{domainProductID}/resource-types.
type UpdateResourceTypesRequest struct {
	AddResourceTypes    []string `json:"addResourceTypes" validate:"omitempty,dive,min=1"`
	RemoveResourceTypes []string `json:"removeResourceTypes" validate:"omitempty,dive,min=1"`
}

// CreateDomainProduct handles POST /domain-products.
func (h *DomainProductHandler) CreateDomainProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateDomainProductRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError(err.Error()))
		return
	}

	dp, err := h.repo.Create(r.Context(), ports.CreateDomainProductInput{
		Name:          req.Name,
		Description:   req.Description,
		DomainID:      req.DomainID,
		ResourceTypes: req.ResourceTypes,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, dp)
}

// GetDomainProduct handles GET /domain-products/{domainProductID}.
func (h *DomainProductHandler) GetDomainProduct(w http.ResponseWriter, r *http.Request) {
	dp, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "domainProductID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, dp)
}

// ListDomainProducts handles GET /domain-products.
func (h *DomainProductHandler) ListDomainProducts(w http.ResponseWriter, r *http.Request) {
	limit, cursor, err := pageParams(r, h.defaultPageSize, h.maxPageSize)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	filters := ports.DomainProductFilters{
		Name:          r.URL.Query().Get("name"),
		Products:      csv(r.URL.Query().Get("products")),
		ResourceTypes: csv(r.URL.Query().Get("resourceTypes")),
	}

	page, err := h.repo.List(r.Context(), filters, limit, cursor)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, page)
}

// UpdateDomainProduct handles PATCH /domain-products/{domainProductID}.
func (h *DomainProductHandler) UpdateDomainProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateDomainProductRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError(err.Error()))
		return
	}

	dp, err := h.repo.Update(r.Context(), chi.URLParam(r, "domainProductID"), ports.UpdateDomainProductInput{
		Name:        req.Name,
		Description: req.Description,
		DomainID:    req.DomainID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, dp)
}

// UpdateResourceTypes handles PATCH /domain-products/{domainProductID}/resource-types.
func (h *DomainProductHandler) UpdateResourceTypes(w http.ResponseWriter, r *http.Request) {
	var req UpdateResourceTypesRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError(err.Error()))
		return
	}

	dp, err := h.repo.UpdateResourceTypes(r.Context(), chi.URLParam(r, "domainProductID"),
		req.AddResourceTypes, req.RemoveResourceTypes)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, dp)
}

// DeleteDomainProduct handles DELETE /domain-products/{domainProductID}.
func (h *DomainProductHandler) DeleteDomainProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "domainProductID")); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
