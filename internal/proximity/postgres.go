// internal/proximity/postgres.go
package proximity

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "dealsdash/internal/common/errors"
	"dealsdash/internal/geo"
)

// nearbyQuery computes haversine distance in SQL with the same sphere radius
// as geo.Distance, prefilters on the bounding box, then counts qualifying
// deals per vendor and keeps vendors with at least one.
//
//	$1 lon  $2 lat  $3 radius  $4 earth radius
//	$5..$8 bounding box  $9 category id or ''
const nearbyQuery = `
WITH candidates AS (
    SELECT v.id, v.name, v.logo, v.longitude, v.latitude,
           2 * $4::float8 * asin(sqrt(least(1.0,
               power(sin(radians(v.latitude - $2::float8) / 2), 2) +
               cos(radians($2::float8)) * cos(radians(v.latitude)) *
               power(sin(radians(v.longitude - $1::float8) / 2), 2)
           ))) AS distance
    FROM vendors v
    WHERE v.longitude BETWEEN $5::float8 AND $7::float8
      AND v.latitude BETWEEN $6::float8 AND $8::float8
)
SELECT c.id, c.name, c.logo, c.longitude, c.latitude, c.distance,
       COUNT(d.id) AS active_deal_count
FROM candidates c
JOIN deals d
  ON d.vendor_id = c.id
 AND d.is_active
 AND ($9::text = '' OR d.category_id::text = $9::text)
WHERE c.distance <= $3::float8
GROUP BY c.id, c.name, c.logo, c.longitude, c.latitude, c.distance
HAVING COUNT(d.id) > 0
ORDER BY c.distance, c.id`

// PostgresLocator answers the whole search in one statement.
type PostgresLocator struct {
	db *sql.DB
}

func NewPostgresLocator(db *sql.DB) *PostgresLocator {
	return &PostgresLocator{db: db}
}

func (l *PostgresLocator) Nearby(ctx context.Context, area Area, categoryID string) ([]Candidate, error) {
	minLon, minLat, maxLon, maxLat := geo.BoundingBox(area.Longitude, area.Latitude, area.Radius)

	rows, err := l.db.QueryContext(ctx, nearbyQuery,
		area.Longitude, area.Latitude, area.Radius, geo.EarthRadiusMeters,
		minLon, minLat, maxLon, maxLat,
		categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: nearby vendors: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Logo, &c.Location[0], &c.Location[1], &c.Distance, &c.ActiveDealCount); err != nil {
			return nil, fmt.Errorf("%w: scan nearby vendor: %v", apperrors.ErrStorageUnavailable, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: nearby vendors: %v", apperrors.ErrStorageUnavailable, err)
	}
	return out, nil
}
