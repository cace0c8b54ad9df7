// internal/proximity/query.go
package proximity

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "dealsdash/internal/common/errors"
)

// AllCategories disables the category filter.
const AllCategories = "All"

var ErrInvalidArgument = fmt.Errorf("%w: nearby search", apperrors.ErrInvalidArgument)

// Query is a validated nearby search request. Longitude and Latitude are
// pointers so a missing coordinate is distinguishable from 0.
type Query struct {
	Longitude *float64
	Latitude  *float64
	Distance  float64 // meters; zero means the configured default
	Category  string  // exact category name, or "All"/"" for no filter
}

// ParseQuery converts raw query-string values into a Query.
func ParseQuery(longitude, latitude, distance, category string) (Query, error) {
	var q Query

	lon, err := parseCoordinate("longitude", longitude)
	if err != nil {
		return q, err
	}
	lat, err := parseCoordinate("latitude", latitude)
	if err != nil {
		return q, err
	}
	q.Longitude, q.Latitude = lon, lat

	if d := strings.TrimSpace(distance); d != "" {
		v, err := strconv.ParseFloat(d, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return q, fmt.Errorf("%w: distance %q is not a number", ErrInvalidArgument, distance)
		}
		q.Distance = v
		if v <= 0 {
			return q, fmt.Errorf("%w: distance must be positive", ErrInvalidArgument)
		}
	}

	q.Category = strings.TrimSpace(category)
	return q, nil
}

func parseCoordinate(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: %s is required", ErrInvalidArgument, name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %s %q is not a number", ErrInvalidArgument, name, raw)
	}
	return &v, nil
}

// validate checks presence and ranges and fills the default distance.
func (q Query) validate(defaultDistance float64) (Query, error) {
	if q.Longitude == nil || q.Latitude == nil {
		return q, fmt.Errorf("%w: longitude and latitude are required", ErrInvalidArgument)
	}
	if *q.Longitude < -180 || *q.Longitude > 180 {
		return q, fmt.Errorf("%w: longitude %v out of range [-180,180]", ErrInvalidArgument, *q.Longitude)
	}
	if *q.Latitude < -90 || *q.Latitude > 90 {
		return q, fmt.Errorf("%w: latitude %v out of range [-90,90]", ErrInvalidArgument, *q.Latitude)
	}
	if q.Distance == 0 {
		q.Distance = defaultDistance
	}
	if q.Distance <= 0 {
		return q, fmt.Errorf("%w: distance must be positive", ErrInvalidArgument)
	}
	if q.Category == "" {
		q.Category = AllCategories
	}
	return q, nil
}

// filtered reports whether the query names a concrete category.
func (q Query) filtered() bool {
	return q.Category != "" && q.Category != AllCategories
}
