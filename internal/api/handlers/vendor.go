// internal/api/handlers/vendor.go
package handlers

import (
	"context"
	"net/http"

	"dealsdash/internal/api/schemas"
	apperrors "dealsdash/internal/common/errors"
	"dealsdash/internal/models"
	"dealsdash/internal/proximity"
)

type VendorService interface {
	List(ctx context.Context) ([]models.Vendor, error)
	Get(ctx context.Context, id string) (*models.Vendor, error)
	Create(ctx context.Context, cmd models.CreateVendorCommand) (*models.Vendor, error)
	Update(ctx context.Context, id string, cmd models.UpdateVendorCommand) (*models.Vendor, error)
	Delete(ctx context.Context, id string) error
}

// NearbySearcher is satisfied by *proximity.Engine.
type NearbySearcher interface {
	Search(ctx context.Context, q proximity.Query) ([]models.NearbyVendor, error)
}

type VendorHandler struct {
	service VendorService
	nearby  NearbySearcher
	errors  *apperrors.ErrorHandler
}

func NewVendorHandler(service VendorService, nearby NearbySearcher, errs *apperrors.ErrorHandler) *VendorHandler {
	return &VendorHandler{service: service, nearby: nearby, errors: errs}
}

func (h *VendorHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List(r.Context())
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Nearby serves GET /vendors/nearby?longitude=&latitude=&distance=&category=
func (h *VendorHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query, err := proximity.ParseQuery(q.Get("longitude"), q.Get("latitude"), q.Get("distance"), q.Get("category"))
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}

	out, err := h.nearby.Search(r.Context(), query)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *VendorHandler) Get(w http.ResponseWriter, r *http.Request) {
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

func (h *VendorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd models.CreateVendorCommand
	if err := decodeBody(r, schemas.CreateVendor, &cmd); err != nil {
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

func (h *VendorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	var cmd models.UpdateVendorCommand
	if err := decodeBody(r, schemas.UpdateVendor, &cmd); err != nil {
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

func (h *VendorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Vendor deleted successfully"})
}
