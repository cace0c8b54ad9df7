// internal/geo/distance_test.go
package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lon1, lat1, lon2, lat2 float64
		want                   float64
		delta                  float64
	}{
		{"same point", 0, 0, 0, 0, 0, 0},
		{"one degree of latitude", 0, 0, 0, 1, EarthRadiusMeters * math.Pi / 180, 0.001},
		{"one degree of longitude at equator", 0, 0, 1, 0, EarthRadiusMeters * math.Pi / 180, 0.001},
		{"antipodes", 0, 0, 180, 0, EarthRadiusMeters * math.Pi, 0.001},
		{"symmetric", 77.5946, 12.9716, 77.6101, 12.9352, 4387.06, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lon1, tt.lat1, tt.lon2, tt.lat2)
			assert.InDelta(t, tt.want, got, tt.delta)
			assert.InDelta(t, got, Distance(tt.lon2, tt.lat2, tt.lon1, tt.lat1), 1e-9)
		})
	}
}

func TestWithin_InclusiveBoundary(t *testing.T) {
	assert.True(t, Within(1000, 1000))
	assert.True(t, Within(999.9, 1000))
	assert.False(t, Within(1000.0001, 1000))
}

func TestRoundMeters(t *testing.T) {
	assert.Equal(t, int64(0), RoundMeters(0.49))
	assert.Equal(t, int64(1), RoundMeters(0.5))
	assert.Equal(t, int64(1235), RoundMeters(1234.5))
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	lon, lat, radius := 10.0, 45.0, 5000.0
	minLon, minLat, maxLon, maxLat := BoundingBox(lon, lat, radius)

	for _, p := range [][2]float64{{minLon, lat}, {maxLon, lat}, {lon, minLat}, {lon, maxLat}} {
		assert.InDelta(t, radius, Distance(lon, lat, p[0], p[1]), radius*0.01)
	}
}

func TestBoundingBox_PolesAndAntimeridian(t *testing.T) {
	minLon, _, maxLon, maxLat := BoundingBox(0, 89.99, 5000)
	assert.Equal(t, -180.0, minLon)
	assert.Equal(t, 180.0, maxLon)
	assert.Equal(t, 90.0, maxLat)

	minLon, _, maxLon, _ = BoundingBox(179.99, 0, 5000)
	assert.Equal(t, -180.0, minLon)
	assert.Equal(t, 180.0, maxLon)
}
