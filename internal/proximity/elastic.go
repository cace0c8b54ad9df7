// internal/proximity/elastic.go
package proximity

import (
	"context"

	"dealsdash/internal/geo"
	"dealsdash/internal/models"
	"dealsdash/internal/search"
)

// VendorGeoIndex selects vendors around a point.
type VendorGeoIndex interface {
	Nearby(ctx context.Context, longitude, latitude, radius float64) ([]search.Hit, error)
}

// DealCounter counts active deals per vendor, optionally in one category.
type DealCounter interface {
	CountActiveByVendor(ctx context.Context, vendorIDs []string, categoryID string) (map[string]int, error)
}

// VendorSource loads the stored vendor records for a set of ids.
type VendorSource interface {
	ListByIDs(ctx context.Context, ids []string) (map[string]models.Vendor, error)
}

// ElasticLocator takes candidate vendors from the search index and counts
// their deals in the relational store. Distances are recomputed locally so
// both backends agree on the sphere radius and the inclusive boundary.
type ElasticLocator struct {
	index   VendorGeoIndex
	counts  DealCounter
	vendors VendorSource
}

type ElasticOption func(*ElasticLocator)

// WithVendorSource makes the stored vendor record authoritative over the
// index document: hits for deleted vendors are dropped and name, logo and
// location come from the store.
func WithVendorSource(src VendorSource) ElasticOption {
	return func(l *ElasticLocator) { l.vendors = src }
}

func NewElasticLocator(index VendorGeoIndex, counts DealCounter, opts ...ElasticOption) *ElasticLocator {
	l := &ElasticLocator{index: index, counts: counts}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *ElasticLocator) Nearby(ctx context.Context, area Area, categoryID string) ([]Candidate, error) {
	hits, err := l.index.Nearby(ctx, area.Longitude, area.Latitude, area.Radius+1)
	if err != nil {
		return nil, err
	}

	inside := make([]Candidate, 0, len(hits))
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		d := geo.Distance(area.Longitude, area.Latitude, h.Location.Longitude(), h.Location.Latitude())
		if !geo.Within(d, area.Radius) {
			continue
		}
		inside = append(inside, Candidate{
			ID:       h.ID,
			Name:     h.Name,
			Logo:     h.Logo,
			Location: h.Location,
			Distance: d,
		})
		ids = append(ids, h.ID)
	}
	if len(inside) == 0 {
		return nil, nil
	}

	counts, err := l.counts.CountActiveByVendor(ctx, ids, categoryID)
	if err != nil {
		return nil, err
	}

	out := inside[:0]
	for _, c := range inside {
		if n := counts[c.ID]; n > 0 {
			c.ActiveDealCount = n
			out = append(out, c)
		}
	}
	if l.vendors == nil || len(out) == 0 {
		return out, nil
	}
	return l.refresh(ctx, area, out)
}

func (l *ElasticLocator) refresh(ctx context.Context, area Area, candidates []Candidate) ([]Candidate, error) {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	stored, err := l.vendors.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := candidates[:0]
	for _, c := range candidates {
		v, ok := stored[c.ID]
		if !ok {
			continue
		}
		c.Name, c.Logo = v.Name, v.Logo
		if v.Location != c.Location {
			c.Location = v.Location
			c.Distance = geo.Distance(area.Longitude, area.Latitude, v.Location.Longitude(), v.Location.Latitude())
			if !geo.Within(c.Distance, area.Radius) {
				continue
			}
		}
		out = append(out, c)
	}
	return out, nil
}
