// internal/search/vendor_index.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "dealsdash/internal/common/errors"
	"dealsdash/internal/common/logger"
	"dealsdash/internal/models"
)

const DefaultIndex = "vendors"

// maxHits matches the default index.max_result_window.
const maxHits = 10000

var (
	ErrSearchFailed = fmt.Errorf("%w: vendor index", apperrors.ErrStorageUnavailable)
	ErrMissingIndex = errors.New("index name is required")
)

const vendorMapping = `{
	"mappings": {
		"properties": {
			"id":       {"type": "keyword"},
			"name":     {"type": "text", "fields": {"raw": {"type": "keyword"}}},
			"logo":     {"type": "keyword", "index": false},
			"location": {"type": "geo_point"}
		}
	}
}`

// Document is the indexed projection of a vendor.
type Document struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Logo     string   `json:"logo"`
	Location GeoPoint `json:"location"`
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Hit is a vendor returned by a geo query.
type Hit struct {
	ID       string
	Name     string
	Logo     string
	Location models.Location
}

func DocumentFromVendor(v models.Vendor) Document {
	return Document{
		ID:       v.ID,
		Name:     v.Name,
		Logo:     v.Logo,
		Location: GeoPoint{Lat: v.Location.Latitude(), Lon: v.Location.Longitude()},
	}
}

// VendorIndex mirrors vendors into Elasticsearch for geo lookups.
type VendorIndex struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewVendorIndex(client *elasticsearch.Client, index string, log logger.Logger) (*VendorIndex, error) {
	if index == "" {
		return nil, ErrMissingIndex
	}
	return &VendorIndex{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "vendor-index", "index": index}),
	}, nil
}

func (x *VendorIndex) Index() string { return x.index }

// EnsureIndex creates the index with a geo_point mapping when missing.
func (x *VendorIndex) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{x.index}}.Do(ctx, x.client)
	if err != nil {
		return fmt.Errorf("%w: check index: %v", ErrSearchFailed, err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("%w: check index: %s", ErrSearchFailed, res.Status())
	}

	res, err = esapi.IndicesCreateRequest{
		Index: x.index,
		Body:  strings.NewReader(vendorMapping),
	}.Do(ctx, x.client)
	if err != nil {
		return fmt.Errorf("%w: create index: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: create index: %s", ErrSearchFailed, res.String())
	}

	x.logger.Info("Created vendor index", nil)
	return nil
}

// IndexVendor upserts one vendor document.
func (x *VendorIndex) IndexVendor(ctx context.Context, v models.Vendor) error {
	body, err := json.Marshal(DocumentFromVendor(v))
	if err != nil {
		return fmt.Errorf("encode vendor document: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: v.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, x.client)
	if err != nil {
		return fmt.Errorf("%w: index vendor %s: %v", ErrSearchFailed, v.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: index vendor %s: %s", ErrSearchFailed, v.ID, res.String())
	}
	return nil
}

// DeleteVendor removes a vendor document. A missing document is not an error.
func (x *VendorIndex) DeleteVendor(ctx context.Context, id string) error {
	res, err := esapi.DeleteRequest{Index: x.index, DocumentID: id}.Do(ctx, x.client)
	if err != nil {
		return fmt.Errorf("%w: delete vendor %s: %v", ErrSearchFailed, id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("%w: delete vendor %s: %s", ErrSearchFailed, id, res.String())
	}
	return nil
}

// Reindex writes every vendor and returns how many were indexed. It stops at
// the first failure.
func (x *VendorIndex) Reindex(ctx context.Context, vendors []models.Vendor) (int, error) {
	for i, v := range vendors {
		if err := x.IndexVendor(ctx, v); err != nil {
			return i, err
		}
	}
	x.logger.Info("Reindexed vendors", map[string]interface{}{"count": len(vendors)})
	return len(vendors), nil
}

// Nearby returns vendors whose location lies within radius meters of the
// point, closest first.
func (x *VendorIndex) Nearby(ctx context.Context, longitude, latitude, radius float64) ([]Hit, error) {
	body, err := json.Marshal(buildNearbyQuery(longitude, latitude, radius))
	if err != nil {
		return nil, fmt.Errorf("encode nearby query: %w", err)
	}

	size := maxHits
	res, err := esapi.SearchRequest{
		Index: []string{x.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}.Do(ctx, x.client)
	if err != nil {
		return nil, fmt.Errorf("%w: nearby search: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("%w: nearby search: %s", ErrSearchFailed, res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: decode nearby search: %v", ErrSearchFailed, err)
	}

	// A truncated page would silently drop vendors from the result.
	if total := r.Hits.Total; total.Value > len(r.Hits.Hits) || (total.Relation == "gte" && len(r.Hits.Hits) >= maxHits) {
		return nil, fmt.Errorf("%w: %d vendors within %.0fm exceed the %d hit window",
			ErrSearchFailed, total.Value, radius, len(r.Hits.Hits))
	}

	hits := make([]Hit, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		id := h.Source.ID
		if id == "" {
			id = h.ID
		}
		hits = append(hits, Hit{
			ID:       id,
			Name:     h.Source.Name,
			Logo:     h.Source.Logo,
			Location: models.NewLocation(h.Source.Location.Lon, h.Source.Location.Lat),
		})
	}
	return hits, nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value    int    `json:"value"`
			Relation string `json:"relation"`
		} `json:"total"`
		Hits []struct {
			ID     string   `json:"_id"`
			Source Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func buildNearbyQuery(longitude, latitude, radius float64) map[string]interface{} {
	point := map[string]interface{}{"lat": latitude, "lon": longitude}
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{
						"geo_distance": map[string]interface{}{
							"distance":      fmt.Sprintf("%.3fm", radius),
							"distance_type": "arc",
							"location":      point,
						},
					},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{
				"_geo_distance": map[string]interface{}{
					"location": point,
					"order":    "asc",
					"unit":     "m",
				},
			},
		},
	}
}
