// internal/api/handlers/deal.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"dealsdash/internal/api/schemas"
	apperrors "dealsdash/internal/common/errors"
	"dealsdash/internal/models"
)

type DealService interface {
	List(ctx context.Context, f models.DealFilter) ([]models.Deal, error)
	Featured(ctx context.Context) ([]models.Deal, error)
	ByCategory(ctx context.Context, categoryID string) ([]models.Deal, error)
	Get(ctx context.Context, id string) (*models.Deal, error)
	Create(ctx context.Context, cmd models.CreateDealCommand) (*models.Deal, error)
	Update(ctx context.Context, id string, cmd models.UpdateDealCommand) (*models.Deal, error)
	Delete(ctx context.Context, id string) error
}

type DealHandler struct {
	service DealService
	errors  *apperrors.ErrorHandler
}

func NewDealHandler(service DealService, errs *apperrors.ErrorHandler) *DealHandler {
	return &DealHandler{service: service, errors: errs}
}

// ParseDealFilter reads ?active=&featured=&category=&vendor=. Booleans must be
// "true" or "false"; ids must be UUIDs.
func ParseDealFilter(q url.Values) (models.DealFilter, error) {
	var f models.DealFilter

	for _, b := range []struct {
		name string
		dst  **bool
	}{{"active", &f.Active}, {"featured", &f.Featured}} {
		raw := q.Get(b.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil || (raw != "true" && raw != "false") {
			return f, fmt.Errorf("%w: %s must be true or false", apperrors.ErrInvalidArgument, b.name)
		}
		*b.dst = &v
	}

	for _, s := range []struct {
		name string
		dst  **string
	}{{"category", &f.CategoryID}, {"vendor", &f.VendorID}} {
		raw := q.Get(s.name)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, fmt.Errorf("%w: %s %q is not a valid id", apperrors.ErrInvalidArgument, s.name, raw)
		}
		v := id.String()
		*s.dst = &v
	}
	return f, nil
}

func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := ParseDealFilter(r.URL.Query())
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	out, err := h.service.List(r.Context(), f)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *DealHandler) Featured(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Featured(r.Context())
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *DealHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "categoryId")
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	out, err := h.service.ByCategory(r.Context(), id)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *DealHandler) Get(w http.ResponseWriter, r *http.Request) {
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

func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd models.CreateDealCommand
	if err := decodeBody(r, schemas.CreateDeal, &cmd); err != nil {
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

func (h *DealHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	var cmd models.UpdateDealCommand
	if err := decodeBody(r, schemas.UpdateDeal, &cmd); err != nil {
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

func (h *DealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Deal deleted successfully"})
}
