// Package proximity implements the nearby-vendor search: vendors within a
// radius of a point, annotated with distance and their count of active deals
// (optionally in one category), dropping vendors with no qualifying deals.
package proximity

import (
	"context"
	"sort"
	"time"

	"dealsdash/internal/common/logger"
	"dealsdash/internal/common/metrics"
	"dealsdash/internal/common/observability"
	"dealsdash/internal/geo"
	"dealsdash/internal/models"
)

const DefaultDistance = 5000

type Engine struct {
	locator         Locator
	categories      CategoryResolver
	backend         string
	defaultDistance float64
	obs             *observability.Observability
	logger          logger.Logger
}

type Option func(*Engine)

// WithDefaultDistance overrides the radius used when a query gives none.
func WithDefaultDistance(meters float64) Option {
	return func(e *Engine) {
		if meters > 0 {
			e.defaultDistance = meters
		}
	}
}

func WithObservability(obs *observability.Observability) Option {
	return func(e *Engine) { e.obs = obs }
}

func NewEngine(locator Locator, categories CategoryResolver, backend string, log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		locator:         locator,
		categories:      categories,
		backend:         backend,
		defaultDistance: DefaultDistance,
		logger:          log.WithFields(map[string]interface{}{"component": "proximity", "backend": backend}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search runs one nearby query. It is a pure read: identical inputs against
// unchanged data give identical output.
func (e *Engine) Search(ctx context.Context, q Query) ([]models.NearbyVendor, error) {
	start := time.Now()

	result, err := e.search(ctx, q)

	metrics.NearbySearchDuration.WithLabelValues(e.backend).Observe(time.Since(start).Seconds())
	status := "success"
	if err != nil {
		status = "failure"
	} else {
		metrics.NearbySearchResults.Observe(float64(len(result)))
	}
	e.obs.RecordSearch(ctx, e.backend, status)

	return result, err
}

func (e *Engine) search(ctx context.Context, q Query) ([]models.NearbyVendor, error) {
	q, err := q.validate(e.defaultDistance)
	if err != nil {
		return nil, err
	}

	var categoryID string
	if q.filtered() {
		categoryID, err = e.categories.ResolveID(ctx, q.Category)
		if err != nil {
			return nil, err
		}
	}

	area := Area{Longitude: *q.Longitude, Latitude: *q.Latitude, Radius: q.Distance}
	candidates, err := e.locator.Nearby(ctx, area, categoryID)
	if err != nil {
		e.logger.Error("Nearby lookup failed", map[string]interface{}{
			"error":    err.Error(),
			"category": q.Category,
		})
		return nil, err
	}

	result := Rank(candidates, area.Radius)

	e.logger.Debug("Nearby search completed", map[string]interface{}{
		"longitude":  area.Longitude,
		"latitude":   area.Latitude,
		"distance":   area.Radius,
		"category":   q.Category,
		"candidates": len(candidates),
		"results":    len(result),
	})
	return result, nil
}

// Rank drops candidates outside the radius or without qualifying deals,
// orders the rest by unrounded distance (id breaks ties) and rounds the
// reported distance to whole meters.
func Rank(candidates []Candidate, radius float64) []models.NearbyVendor {
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.ActiveDealCount <= 0 || !geo.Within(c.Distance, radius) {
			continue
		}
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Distance != kept[j].Distance {
			return kept[i].Distance < kept[j].Distance
		}
		return kept[i].ID < kept[j].ID
	})

	out := make([]models.NearbyVendor, len(kept))
	for i, c := range kept {
		out[i] = models.NearbyVendor{
			ID:              c.ID,
			Name:            c.Name,
			Logo:            c.Logo,
			Location:        c.Location,
			Distance:        geo.RoundMeters(c.Distance),
			ActiveDealCount: c.ActiveDealCount,
		}
	}
	return out
}
