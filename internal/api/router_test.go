// internal/api/router_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealsdash/internal/api/handlers"
	"dealsdash/internal/catalog"
	apperrors "dealsdash/internal/common/errors"
	"dealsdash/internal/common/logger"
	"dealsdash/internal/models"
	"dealsdash/internal/proximity"
	"dealsdash/internal/repository"
)

// ==========================
// Fakes
// ==========================

const (
	foodID   = "6f1c2a5e-8e7b-4a3b-9f43-0d8a1c1b2e01"
	vendorID = "2b0f4a9e-1c55-4b7e-8b62-77f4f7a1c9d3"
	dealID   = "9d7e3c21-4a0b-4f6e-a1c2-5b8e9f0a1d44"
)

type fakeCategories struct {
	created models.CreateCategoryCommand
	err     error
}

func (f *fakeCategories) List(ctx context.Context) ([]models.Category, error) {
	return []models.Category{{ID: foodID, Name: "Food"}}, f.err
}

func (f *fakeCategories) ListWithCounts(ctx context.Context) ([]models.CategoryWithCount, error) {
	return []models.CategoryWithCount{{Category: models.Category{ID: foodID, Name: "Food"}, DealCount: 2}}, f.err
}

func (f *fakeCategories) Get(ctx context.Context, id string) (*models.Category, error) {
	if id != foodID {
		return nil, repository.ErrCategoryNotFound
	}
	return &models.Category{ID: foodID, Name: "Food"}, nil
}

func (f *fakeCategories) Create(ctx context.Context, cmd models.CreateCategoryCommand) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = cmd
	return &models.Category{ID: foodID, Name: cmd.Name, Icon: cmd.Icon}, nil
}

func (f *fakeCategories) Update(ctx context.Context, id string, cmd models.UpdateCategoryCommand) (*models.Category, error) {
	return &models.Category{ID: id, Name: *cmd.Name}, f.err
}

func (f *fakeCategories) Delete(ctx context.Context, id string) error {
	return f.err
}

type fakeVendors struct{ err error }

func (f *fakeVendors) List(ctx context.Context) ([]models.Vendor, error) {
	return []models.Vendor{{ID: vendorID, Name: "Corner Cafe"}}, f.err
}

func (f *fakeVendors) Get(ctx context.Context, id string) (*models.Vendor, error) {
	return &models.Vendor{ID: id, Name: "Corner Cafe"}, f.err
}

func (f *fakeVendors) Create(ctx context.Context, cmd models.CreateVendorCommand) (*models.Vendor, error) {
	v := &models.Vendor{ID: vendorID, Name: cmd.Name}
	if cmd.Longitude != nil && cmd.Latitude != nil {
		v.Location = models.NewLocation(*cmd.Longitude, *cmd.Latitude)
	}
	return v, f.err
}

func (f *fakeVendors) Update(ctx context.Context, id string, cmd models.UpdateVendorCommand) (*models.Vendor, error) {
	return &models.Vendor{ID: id}, f.err
}

func (f *fakeVendors) Delete(ctx context.Context, id string) error {
	return f.err
}

type fakeDeals struct {
	filter models.DealFilter
	err    error
}

func (f *fakeDeals) List(ctx context.Context, filter models.DealFilter) ([]models.Deal, error) {
	f.filter = filter
	return []models.Deal{}, f.err
}

func (f *fakeDeals) Featured(ctx context.Context) ([]models.Deal, error) {
	return []models.Deal{{ID: dealID, IsFeatured: true}}, f.err
}

func (f *fakeDeals) ByCategory(ctx context.Context, categoryID string) ([]models.Deal, error) {
	return []models.Deal{{ID: dealID, CategoryID: categoryID}}, f.err
}

func (f *fakeDeals) Get(ctx context.Context, id string) (*models.Deal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Deal{ID: id}, nil
}

func (f *fakeDeals) Create(ctx context.Context, cmd models.CreateDealCommand) (*models.Deal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Deal{ID: dealID, Title: cmd.Title, CategoryID: cmd.CategoryID, VendorID: cmd.VendorID, ExpireDate: cmd.ExpireDate}, nil
}

func (f *fakeDeals) Update(ctx context.Context, id string, cmd models.UpdateDealCommand) (*models.Deal, error) {
	return &models.Deal{ID: id}, f.err
}

func (f *fakeDeals) Delete(ctx context.Context, id string) error {
	return f.err
}

type fakeNearby struct {
	query proximity.Query
	out   []models.NearbyVendor
	err   error
}

func (f *fakeNearby) Search(ctx context.Context, q proximity.Query) ([]models.NearbyVendor, error) {
	f.query = q
	return f.out, f.err
}

type fixture struct {
	categories *fakeCategories
	vendors    *fakeVendors
	deals      *fakeDeals
	nearby     *fakeNearby
	checks     map[string]handlers.Check
	router     http.Handler
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		categories: &fakeCategories{},
		vendors:    &fakeVendors{},
		deals:      &fakeDeals{},
		nearby:     &fakeNearby{out: []models.NearbyVendor{}},
		checks: map[string]handlers.Check{
			"postgres": func(ctx context.Context) error { return nil },
		},
	}
	f.router = NewRouter(Services{
		Categories: f.categories,
		Vendors:    f.vendors,
		Deals:      f.deals,
		Nearby:     f.nearby,
		Checks:     f.checks,
	}, RouterOptions{RequestTimeout: 5 * time.Second, MetricsPath: "/metrics"}, logger.NewTestLogger(t))
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error struct {
		Code     string                 `json:"code"`
		Message  string                 `json:"message"`
		Details  string                 `json:"details"`
		Metadata map[string]interface{} `json:"metadata"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ==========================
// Nearby search
// ==========================

func TestNearby(t *testing.T) {
	t.Run("passes parsed query through", func(t *testing.T) {
		f := newFixture(t)
		f.nearby.out = []models.NearbyVendor{{ID: vendorID, Name: "Corner Cafe", Distance: 0, ActiveDealCount: 1}}

		rec := f.do(http.MethodGet, "/vendors/nearby?longitude=77.5946&latitude=12.9716&distance=1000&category=Food", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 77.5946, *f.nearby.query.Longitude)
		assert.Equal(t, 12.9716, *f.nearby.query.Latitude)
		assert.Equal(t, 1000.0, f.nearby.query.Distance)
		assert.Equal(t, "Food", f.nearby.query.Category)

		var out []models.NearbyVendor
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		require.Len(t, out, 1)
		assert.Equal(t, 1, out[0].ActiveDealCount)
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodGet, "/vendors/nearby?longitude=1&latitude=2", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	tests := []struct {
		name   string
		target string
		err    error
		status int
	}{
		{"missing latitude", "/vendors/nearby?longitude=1", nil, http.StatusBadRequest},
		{"garbage distance", "/vendors/nearby?longitude=1&latitude=2&distance=far", nil, http.StatusBadRequest},
		{"unknown category", "/vendors/nearby?longitude=1&latitude=2&category=Nope", repository.ErrCategoryNotFound, http.StatusNotFound},
		{"storage down", "/vendors/nearby?longitude=1&latitude=2", fmt.Errorf("%w: nearby: timeout", apperrors.ErrStorageUnavailable), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.nearby.err = tt.err
			rec := f.do(http.MethodGet, tt.target, "")
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

// ==========================
// Categories
// ==========================

func TestCategoryRoutes(t *testing.T) {
	t.Run("create validates body", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodPost, "/categories/", `{"icon": "x"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "INVALID_ARGUMENT", body.Error.Code)
		assert.Contains(t, body.Error.Metadata, "fields")
	})

	t.Run("create rejects unknown fields", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodPost, "/categories/", `{"name": "Food", "colour": "red"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create returns 201", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodPost, "/categories/", `{"name": "Food", "icon": "https://cdn/x.png"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "Food", f.categories.created.Name)
		assert.Equal(t, "https://cdn/x.png", f.categories.created.Icon)
	})

	t.Run("duplicate is a conflict", func(t *testing.T) {
		f := newFixture(t)
		f.categories.err = repository.ErrDuplicateCategory
		rec := f.do(http.MethodPost, "/categories/", `{"name": "food"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("delete in use is a conflict", func(t *testing.T) {
		f := newFixture(t)
		f.categories.err = catalog.ErrCategoryInUse
		rec := f.do(http.MethodDelete, "/categories/"+foodID, "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodGet, "/categories/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing category", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodGet, "/categories/"+vendorID, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("with counts", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodGet, "/categories/with-counts", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"dealCount":2`)
	})
}

// ==========================
// Vendors and deals
// ==========================

func TestVendorRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/vendors/", `{"name": "Corner Cafe", "longitude": 77.5946, "latitude": 12.9716}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodPost, "/vendors/", `{"name": "Corner Cafe", "longitude": 200, "latitude": 12}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/vendors/", `{"name": "Pop-up Stall"}`)
	assert.Equal(t, http.StatusCreated, rec.Code, "coordinates are optional")

	f.vendors.err = catalog.ErrVendorHasDeals
	rec = f.do(http.MethodDelete, "/vendors/"+vendorID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDealRoutes(t *testing.T) {
	t.Run("list filter", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodGet, "/deals/?active=true&category="+foodID, "")

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, f.deals.filter.Active)
		assert.True(t, *f.deals.filter.Active)
		require.NotNil(t, f.deals.filter.CategoryID)
		assert.Equal(t, foodID, *f.deals.filter.CategoryID)
		assert.Nil(t, f.deals.filter.Featured)
		assert.Nil(t, f.deals.filter.VendorID)
	})

	t.Run("bad filter", func(t *testing.T) {
		f := newFixture(t)
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/deals/?active=yes", "").Code)
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/deals/?vendor=abc", "").Code)
	})

	t.Run("featured and by category", func(t *testing.T) {
		f := newFixture(t)
		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/deals/featured", "").Code)

		rec := f.do(http.MethodGet, "/deals/category/"+foodID, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), foodID)
	})

	t.Run("create", func(t *testing.T) {
		f := newFixture(t)
		body := `{"title": "Half off", "description": "Half off all pastries", "categoryId": "` + foodID + `", "vendorId": "` + vendorID + `", "expireDate": "2030-01-01T00:00:00Z"}`
		rec := f.do(http.MethodPost, "/deals/", body)
		require.Equal(t, http.StatusCreated, rec.Code)

		var out models.Deal
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Equal(t, "Half off", out.Title)
		assert.Equal(t, 2030, out.ExpireDate.Year())
	})

	t.Run("create without description", func(t *testing.T) {
		f := newFixture(t)
		body := `{"title": "Half off", "categoryId": "` + foodID + `", "vendorId": "` + vendorID + `", "expireDate": "2030-01-01T00:00:00Z"}`
		rec := f.do(http.MethodPost, "/deals/", body)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_ARGUMENT", decodeError(t, rec).Error.Code)
	})

	t.Run("create with unknown vendor", func(t *testing.T) {
		f := newFixture(t)
		f.deals.err = repository.ErrVendorNotFound
		body := `{"title": "Half off", "description": "Half off all pastries", "categoryId": "` + foodID + `", "vendorId": "` + vendorID + `", "expireDate": "2030-01-01T00:00:00Z"}`
		assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/deals/", body).Code)
	})

	t.Run("internal details are hidden", func(t *testing.T) {
		f := newFixture(t)
		f.deals.err = errors.New("pq: connection reset")
		rec := f.do(http.MethodGet, "/deals/"+dealID, "")

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "pq:")
	})
}

// ==========================
// Health and metrics
// ==========================

func TestHealthRoutes(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/ready", "").Code)

	f.checks["redis"] = func(ctx context.Context) error { return errors.New("dial tcp: refused") }
	rec := f.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postgres":"ok"`)

	rec = f.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
