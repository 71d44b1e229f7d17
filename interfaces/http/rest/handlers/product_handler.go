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

// ProductHandler serves the /products endpoints.
type ProductHandler struct {
	repo            ports.ProductRepository
	errorHandler    *errors.ErrorHandler
	logger          *zap.Logger
	defaultPageSize int
	maxPageSize     int
}

// NewProductHandler creates a product handler.
func NewProductHandler(repo ports.ProductRepository, errorHandler *errors.ErrorHandler, logger *zap.Logger, defaultPageSize, maxPageSize int) *ProductHandler {
	return &ProductHandler{
		repo:            repo,
		errorHandler:    errorHandler,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// CreateProductRequest is the body of POST /products.
type CreateProductRequest struct {
	Name            string `json:"name" validate:"required,min=1,max=255"`
	Description     string `json:"description" validate:"max=2000"`
	DomainProductID string `json:"domainProductId" validate:"required"`
}

// UpdateProductRequest is the body of PATCH /products/{productID}.
type UpdateProductRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description     *string `json:"description" validate:"omitempty,max=2000"`
	DomainProductID *string `json:"domainProductId" validate:"omitempty,min=1"`
}

// CreateProduct handles POST /products.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError(err.Error()))
		return
	}

	product, err := h.repo.Create(r.Context(), ports.CreateProductInput{
		Name:            req.Name,
		Description:     req.Description,
		DomainProductID: req.DomainProductID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, product)
}

// GetProduct handles GET /products/{productID}.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "productID"), viewOptions(r))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, product)
}

// ListProducts handles GET /products.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, cursor, err := pageParams(r, h.defaultPageSize, h.maxPageSize)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	filters := ports.ProductFilters{
		Name:           r.URL.Query().Get("name"),
		DomainProducts: csv(r.URL.Query().Get("domainProducts")),
	}

	page, err := h.repo.List(r.Context(), filters, viewOptions(r), limit, cursor)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, page)
}

// UpdateProduct handles PATCH /products/{productID}.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError(err.Error()))
		return
	}

	product, err := h.repo.Update(r.Context(), chi.URLParam(r, "productID"), ports.UpdateProductInput{
		Name:            req.Name,
		Description:     req.Description,
		DomainProductID: req.DomainProductID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/{productID}.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "productID")); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
