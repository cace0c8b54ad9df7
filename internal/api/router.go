// internal/api/router.go
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dealsdash/internal/api/handlers"
	"dealsdash/internal/api/middleware"
	apperrors "dealsdash/internal/common/errors"
	"dealsdash/internal/common/logger"
)

// Services bundles what the router dispatches to.
type Services struct {
	Categories handlers.CategoryService
	Vendors    handlers.VendorService
	Deals      handlers.DealService
	Nearby     handlers.NearbySearcher
	Checks     map[string]handlers.Check
}

type RouterOptions struct {
	RequestTimeout time.Duration
	MetricsPath    string // empty disables the endpoint
}

// NewRouter builds the HTTP router for the deals API
func NewRouter(svc Services, opts RouterOptions, log logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	if opts.RequestTimeout > 0 {
		r.Use(chimw.Timeout(opts.RequestTimeout))
	}

	errs := apperrors.NewErrorHandler(log)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, errs)
	vendorHandler := handlers.NewVendorHandler(svc.Vendors, svc.Nearby, errs)
	dealHandler := handlers.NewDealHandler(svc.Deals, errs)
	healthHandler := handlers.NewHealthHandler(svc.Checks, 0)

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", categoryHandler.List)
		r.Post("/", categoryHandler.Create)
		r.Get("/with-counts", categoryHandler.ListWithCounts)
		r.Get("/{id}", categoryHandler.Get)
		r.Put("/{id}", categoryHandler.Update)
		r.Delete("/{id}", categoryHandler.Delete)
	})

	r.Route("/vendors", func(r chi.Router) {
		r.Get("/", vendorHandler.List)
		r.Post("/", vendorHandler.Create)
		r.Get("/nearby", vendorHandler.Nearby)
		r.Get("/{id}", vendorHandler.Get)
		r.Put("/{id}", vendorHandler.Update)
		r.Delete("/{id}", vendorHandler.Delete)
	})

	r.Route("/deals", func(r chi.Router) {
		r.Get("/", dealHandler.List)
		r.Post("/", dealHandler.Create)
		r.Get("/featured", dealHandler.Featured)
		r.Get("/category/{categoryId}", dealHandler.ByCategory)
		r.Get("/{id}", dealHandler.Get)
		r.Put("/{id}", dealHandler.Update)
		r.Delete("/{id}", dealHandler.Delete)
	})

	// health
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	if opts.MetricsPath != "" {
		r.Handle(opts.MetricsPath, promhttp.Handler())
	}

	return r
}
