// Package catalog holds the write rules for categories, vendors and deals:
// duplicate and reference checks, delete guards, and cleanup of images,
// cached category ids and the vendor search index.
package catalog

import (
	"context"
	"fmt"
	"time"

	apperrors "dealsdash/internal/common/errors"
	"dealsdash/internal/common/logger"
	"dealsdash/internal/storage"
)

var (
	ErrInvalidArgument = fmt.Errorf("%w: catalog", apperrors.ErrInvalidArgument)
	ErrCategoryInUse   = fmt.Errorf("%w: category is referenced by deals", apperrors.ErrConflict)
	ErrVendorHasDeals  = fmt.Errorf("%w: vendor still owns deals", apperrors.ErrConflict)
)

// dropBlob removes a replaced or orphaned image. Failures are logged only;
// the row change has already been committed.
func dropBlob(ctx context.Context, blobs storage.BlobStore, log logger.Logger, url string) {
	if url == "" || blobs == nil {
		return
	}
	if err := blobs.Delete(ctx, url); err != nil {
		log.Warn("Failed to delete blob", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
	}
}

func clock(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
