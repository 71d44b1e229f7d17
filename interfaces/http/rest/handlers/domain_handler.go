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

// DomainHandler serves the /domains endpoints.
type DomainHandler struct {
	repo            ports.DomainRepository
	errorHandler    *errors.ErrorHandler
	logger          *zap.Logger
	defaultPageSize int
	maxPageSize     int
}

// NewDomainHandler creates a domain handler.
func NewDomainHandler(repo ports.DomainRepository, errorHandler *errors.ErrorHandler, logger *zap.Logger, defaultPageSize, maxPageSize int) *DomainHandler {
	return &DomainHandler{
		repo:            repo,
		errorHandler:    errorHandler,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// CreateDomainRequest is the body of POST /domains.
type CreateDomainRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateDomainRequest is the body of PATCH /domains/{domainID}.
// Absent fields are left untouched.
type UpdateDomainRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// CreateDomain handles POST /domains.
func (h *DomainHandler) CreateDomain(w http.ResponseWriter, r *http.Request) {
	var req CreateDomainRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError(err.Error()))
		return
	}

	domain, err := h.repo.Create(r.Context(), ports.CreateDomainInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, domain)
}

// GetDomain handles GET /domains/{domainID}.
func (h *DomainHandler) GetDomain(w http.ResponseWriter, r *http.Request) {
	domain, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "domainID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, domain)
}

// ListDomains handles GET /domains.
func (h *DomainHandler) ListDomains(w http.ResponseWriter, r *http.Request) {
	limit, cursor, err := pageParams(r, h.defaultPageSize, h.maxPageSize)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	filters := ports.DomainFilters{
		Name:           r.URL.Query().Get("name"),
		DomainProducts: csv(r.URL.Query().Get("domainProducts")),
	}

	page, err := h.repo.List(r.Context(), filters, limit, cursor)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, page)
}

// UpdateDomain handles PATCH /domains/{domainID}.
func (h *DomainHandler) UpdateDomain(w http.ResponseWriter, r *http.Request) {
	var req UpdateDomainRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError(err.Error()))
		return
	}

	domain, err := h.repo.Update(r.Context(), chi.URLParam(r, "domainID"), ports.UpdateDomainInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, domain)
}

// DeleteDomain handles DELETE /domains/{domainID}.
func (h *DomainHandler) DeleteDomain(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "domainID")); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CountDomains handles GET /domains/count.
func (h *DomainHandler) CountDomains(w http.ResponseWriter, r *http.Request) {
	count, err := h.repo.Count(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]int64{"count": count})
}
