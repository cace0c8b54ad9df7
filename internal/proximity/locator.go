// internal/proximity/locator.go
package proximity

import (
	"context"

	"dealsdash/internal/models"
)

// Area is a circle on the sphere; Radius is in meters and inclusive.
type Area struct {
	Longitude float64
	Latitude  float64
	Radius    float64
}

// Candidate is a vendor inside the area with its unrounded distance and the
// number of qualifying deals.
type Candidate struct {
	ID              string
	Name            string
	Logo            string
	Location        models.Location
	Distance        float64
	ActiveDealCount int
}

// Locator selects vendors within an area and counts their active deals,
// restricted to categoryID when it is non-empty.
type Locator interface {
	Nearby(ctx context.Context, area Area, categoryID string) ([]Candidate, error)
}

// CategoryResolver maps an exact category name to its id. Unknown names
// return an error wrapping the NOT_FOUND class.
type CategoryResolver interface {
	ResolveID(ctx context.Context, name string) (string, error)
}

// CategoryResolverFunc adapts a function, such as a repository lookup.
type CategoryResolverFunc func(ctx context.Context, name string) (string, error)

func (f CategoryResolverFunc) ResolveID(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}
