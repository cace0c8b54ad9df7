// internal/storage/blob.go
package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	commonhttp "dealsdash/internal/common/http"
	"dealsdash/internal/common/logger"
)

const (
	VendorBucket   = "vendor-logos"
	DealBucket     = "deal-images"
	CategoryBucket = "category-icons"
)

// BlobStore removes image objects that are no longer referenced.
type BlobStore interface {
	Delete(ctx context.Context, fileURL string) error
}

// Locate derives the bucket and object name from a public file URL. URLs
// that name neither the deal nor the category bucket belong to the vendor
// bucket. The object name is the last path segment.
func Locate(fileURL string) (bucket, name string) {
	bucket = VendorBucket
	switch {
	case strings.Contains(fileURL, DealBucket):
		bucket = DealBucket
	case strings.Contains(fileURL, CategoryBucket):
		bucket = CategoryBucket
	}

	path := fileURL
	if u, err := url.Parse(fileURL); err == nil && u.Path != "" {
		path = u.Path
	}
	path = strings.TrimRight(path, "/")
	name = path[strings.LastIndex(path, "/")+1:]
	return bucket, name
}

// HTTPStore deletes objects through the storage REST API.
type HTTPStore struct {
	baseURL string
	client  *commonhttp.Client
	logger  logger.Logger
}

func NewHTTPStore(baseURL, apiKey string, timeout time.Duration, log logger.Logger) *HTTPStore {
	headers := map[string]string{}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
		headers["apikey"] = apiKey
	}
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  commonhttp.NewClient(timeout, headers),
		logger:  log.WithFields(map[string]interface{}{"component": "blob-store"}),
	}
}

// Delete removes the object behind fileURL. An empty URL is a no-op.
func (s *HTTPStore) Delete(ctx context.Context, fileURL string) error {
	if fileURL == "" {
		return nil
	}
	bucket, name := Locate(fileURL)
	if name == "" {
		return fmt.Errorf("no object name in %q", fileURL)
	}

	target := fmt.Sprintf("%s/object/%s/%s", s.baseURL, bucket, url.PathEscape(name))
	if err := s.client.Send(ctx, http.MethodDelete, target, nil); err != nil {
		return fmt.Errorf("delete blob %s/%s: %w", bucket, name, err)
	}

	s.logger.Debug("Deleted blob", map[string]interface{}{"bucket": bucket, "name": name})
	return nil
}

// NopStore is used when no storage endpoint is configured.
type NopStore struct{}

func (NopStore) Delete(context.Context, string) error { return nil }

// New returns an HTTPStore when baseURL is set and a NopStore otherwise.
func New(baseURL, apiKey string, timeout time.Duration, log logger.Logger) BlobStore {
	if baseURL == "" {
		return NopStore{}
	}
	return NewHTTPStore(baseURL, apiKey, timeout, log)
}
