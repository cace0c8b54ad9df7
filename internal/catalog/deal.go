// internal/catalog/deal.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "dealsdash/internal/common/errors"
	"dealsdash/internal/common/logger"
	"dealsdash/internal/models"
	"dealsdash/internal/repository"
	"dealsdash/internal/storage"
)

// FeaturedLimit caps GET /deals/featured.
const FeaturedLimit = 10

type DealStore interface {
	List(ctx context.Context, f models.DealFilter, now time.Time) ([]models.Deal, error)
	Featured(ctx context.Context, now time.Time, limit int) ([]models.Deal, error)
	ByCategory(ctx context.Context, categoryID string, now time.Time) ([]models.Deal, error)
	Get(ctx context.Context, id string) (*models.Deal, error)
	Create(ctx context.Context, d *models.Deal) error
	Update(ctx context.Context, d *models.Deal) error
	Delete(ctx context.Context, id string) error
}

// References checks that the category and vendor a deal points at exist.
type References interface {
	CategoryExists(ctx context.Context, id string) (bool, error)
	VendorExists(ctx context.Context, id string) (bool, error)
}

type DealService struct {
	store  DealStore
	refs   References
	blobs  storage.BlobStore
	now    func() time.Time
	logger logger.Logger
}

func NewDealService(store DealStore, refs References, blobs storage.BlobStore, now func() time.Time, log logger.Logger) *DealService {
	return &DealService{
		store:  store,
		refs:   refs,
		blobs:  blobs,
		now:    clock(now),
		logger: log.WithFields(map[string]interface{}{"service": "deal"}),
	}
}

func (s *DealService) List(ctx context.Context, f models.DealFilter) ([]models.Deal, error) {
	return s.store.List(ctx, f, s.now())
}

func (s *DealService) Featured(ctx context.Context) ([]models.Deal, error) {
	return s.store.Featured(ctx, s.now(), FeaturedLimit)
}

func (s *DealService) ByCategory(ctx context.Context, categoryID string) ([]models.Deal, error) {
	return s.store.ByCategory(ctx, categoryID, s.now())
}

func (s *DealService) Get(ctx context.Context, id string) (*models.Deal, error) {
	return s.store.Get(ctx, id)
}

func (s *DealService) Create(ctx context.Context, cmd models.CreateDealCommand) (*models.Deal, error) {
	title := strings.TrimSpace(cmd.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	desc := strings.TrimSpace(cmd.Description)
	if desc == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidArgument)
	}
	if cmd.ExpireDate.IsZero() {
		return nil, fmt.Errorf("%w: expireDate is required", ErrInvalidArgument)
	}
	if err := s.checkCategory(ctx, cmd.CategoryID); err != nil {
		return nil, err
	}
	if err := s.checkVendor(ctx, cmd.VendorID); err != nil {
		return nil, err
	}

	d := &models.Deal{
		ID:          uuid.New().String(),
		Title:       title,
		Description: desc,
		Banner:      cmd.Banner,
		CategoryID:  cmd.CategoryID,
		VendorID:    cmd.VendorID,
		StartDate:   s.now(),
		ExpireDate:  cmd.ExpireDate,
		IsActive:    true,
	}
	if cmd.StartDate != nil {
		d.StartDate = *cmd.StartDate
	}
	if cmd.IsActive != nil {
		d.IsActive = *cmd.IsActive
	}
	if cmd.IsFeatured != nil {
		d.IsFeatured = *cmd.IsFeatured
	}

	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("Deal created", map[string]interface{}{
		"dealId":   d.ID,
		"vendorId": d.VendorID,
	})
	return s.store.Get(ctx, d.ID)
}

// Update applies the patch. Moving a deal to another vendor needs no extra
// bookkeeping: a vendor's deals are derived from deals.vendor_id.
func (s *DealService) Update(ctx context.Context, id string, cmd models.UpdateDealCommand) (*models.Deal, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	d := *current
	if cmd.Title != nil {
		title := strings.TrimSpace(*cmd.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidArgument)
		}
		d.Title = title
	}
	if cmd.Description != nil {
		desc := strings.TrimSpace(*cmd.Description)
		if desc == "" {
			return nil, fmt.Errorf("%w: description must not be empty", ErrInvalidArgument)
		}
		d.Description = desc
	}
	setString(&d.Banner, cmd.Banner)
	if cmd.CategoryID != nil && *cmd.CategoryID != d.CategoryID {
		if err := s.checkCategory(ctx, *cmd.CategoryID); err != nil {
			return nil, err
		}
		d.CategoryID = *cmd.CategoryID
	}
	if cmd.VendorID != nil && *cmd.VendorID != d.VendorID {
		if err := s.checkVendor(ctx, *cmd.VendorID); err != nil {
			return nil, err
		}
		d.VendorID = *cmd.VendorID
	}
	if cmd.StartDate != nil {
		d.StartDate = *cmd.StartDate
	}
	if cmd.ExpireDate != nil {
		d.ExpireDate = *cmd.ExpireDate
	}
	if cmd.IsActive != nil {
		d.IsActive = *cmd.IsActive
	}
	if cmd.IsFeatured != nil {
		d.IsFeatured = *cmd.IsFeatured
	}

	if err := s.store.Update(ctx, &d); err != nil {
		return nil, err
	}

	if d.Banner != current.Banner {
		dropBlob(ctx, s.blobs, s.logger, current.Banner)
	}
	if d.VendorID != current.VendorID {
		s.logger.Info("Deal moved between vendors", map[string]interface{}{
			"dealId": id,
			"from":   current.VendorID,
			"to":     d.VendorID,
		})
	}
	return s.store.Get(ctx, id)
}

func (s *DealService) Delete(ctx context.Context, id string) error {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	dropBlob(ctx, s.blobs, s.logger, current.Banner)
	s.logger.Info("Deal deleted", map[string]interface{}{"dealId": id})
	return nil
}

func (s *DealService) checkCategory(ctx context.Context, id string) error {
	ok, err := s.refs.CategoryExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrCategoryNotFound
	}
	return nil
}

func (s *DealService) checkVendor(ctx context.Context, id string) error {
	ok, err := s.refs.VendorExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrVendorNotFound
	}
	return nil
}

type storeReferences struct {
	categories CategoryStore
	vendors    VendorStore
}

// NewReferences checks references against the category and vendor stores.
func NewReferences(categories CategoryStore, vendors VendorStore) References {
	return storeReferences{categories: categories, vendors: vendors}
}

func (r storeReferences) CategoryExists(ctx context.Context, id string) (bool, error) {
	_, err := r.categories.Get(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r storeReferences) VendorExists(ctx context.Context, id string) (bool, error) {
	return r.vendors.Exists(ctx, id)
}
