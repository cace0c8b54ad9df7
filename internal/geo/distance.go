// Package geo holds the great-circle math shared by the proximity search
// backends.
package geo

import "math"

// EarthRadiusMeters is the sphere radius used for every distance computation,
// in SQL and in Go, so both agree to the meter.
const EarthRadiusMeters = 6378100.0

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance returns the haversine great-circle distance in meters between two
// longitude/latitude points.
func Distance(lon1, lat1, lon2, lat2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	if a > 1 {
		a = 1
	}
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(a))
}

// Within reports whether d lies inside the radius. The boundary is inclusive.
func Within(d, radius float64) bool {
	return d <= radius
}

// RoundMeters rounds half away from zero to the nearest whole meter.
func RoundMeters(d float64) int64 {
	return int64(math.Round(d))
}

// BoundingBox returns the lon/lat box that contains every point within radius
// of the center. It is used as a cheap index prefilter before the exact
// distance check; near the poles or across the antimeridian it widens to the
// full longitude range.
func BoundingBox(lon, lat, radius float64) (minLon, minLat, maxLon, maxLat float64) {
	// one meter of slack so float error never drops a boundary point
	angular := (radius + 1) / EarthRadiusMeters
	dLat := angular * 180 / math.Pi
	minLat = math.Max(lat-dLat, -90)
	maxLat = math.Min(lat+dLat, 90)

	if minLat == -90 || maxLat == 90 {
		return -180, minLat, 180, maxLat
	}

	ratio := math.Sin(angular) / math.Cos(toRadians(lat))
	if ratio >= 1 {
		return -180, minLat, 180, maxLat
	}
	dLon := math.Asin(ratio) * 180 / math.Pi
	minLon = lon - dLon
	maxLon = lon + dLon
	if minLon < -180 || maxLon > 180 {
		return -180, minLat, 180, maxLat
	}
	return minLon, minLat, maxLon, maxLat
}
