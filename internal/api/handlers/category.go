// internal/api/handlers/category.go
package handlers

import (
	"context"
	"net/http"

	"dealsdash/internal/api/schemas"
	apperrors "dealsdash/internal/common/errors"
	"dealsdash/internal/models"
)

type CategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	ListWithCounts(ctx context.Context) ([]models.CategoryWithCount, error)
	Get(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, cmd models.CreateCategoryCommand) (*models.Category, error)
	Update(ctx context.Context, id string, cmd models.UpdateCategoryCommand) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

type CategoryHandler struct {
	service CategoryService
	errors  *apperrors.ErrorHandler
}

func NewCategoryHandler(service CategoryService, errs *apperrors.ErrorHandler) *CategoryHandler {
	return &CategoryHandler{service: service, errors: errs}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List(r.Context())
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CategoryHandler) ListWithCounts(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListWithCounts(r.Context())
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	out, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd models.CreateCategoryCommand
	if err := decodeBody(r, schemas.CreateCategory, &cmd); err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	out, err := h.service.Create(r.Context(), cmd)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	var cmd models.UpdateCategoryCommand
	if err := decodeBody(r, schemas.UpdateCategory, &cmd); err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	out, err := h.service.Update(r.Context(), id, cmd)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Category deleted successfully"})
}
