// internal/catalog/vendor.go
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"dealsdash/internal/common/logger"
	"dealsdash/internal/models"
	"dealsdash/internal/storage"
)

type VendorStore interface {
	List(ctx context.Context) ([]models.Vendor, error)
	Get(ctx context.Context, id string) (*models.Vendor, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, v *models.Vendor) error
	Update(ctx context.Context, v *models.Vendor) error
	Delete(ctx context.Context, id string) error
	CountDeals(ctx context.Context, id string) (int, error)
}

// VendorMirror receives vendor writes for the search index.
type VendorMirror interface {
	IndexVendor(ctx context.Context, v models.Vendor) error
	DeleteVendor(ctx context.Context, id string) error
}

type VendorService struct {
	store  VendorStore
	blobs  storage.BlobStore
	mirror VendorMirror
	logger logger.Logger
}

// NewVendorService wires the store. mirror may be nil when the search index
// is not in use.
func NewVendorService(store VendorStore, blobs storage.BlobStore, mirror VendorMirror, log logger.Logger) *VendorService {
	return &VendorService{
		store:  store,
		blobs:  blobs,
		mirror: mirror,
		logger: log.WithFields(map[string]interface{}{"service": "vendor"}),
	}
}

func (s *VendorService) List(ctx context.Context) ([]models.Vendor, error) {
	return s.store.List(ctx)
}

func (s *VendorService) Get(ctx context.Context, id string) (*models.Vendor, error) {
	return s.store.Get(ctx, id)
}

func (s *VendorService) Create(ctx context.Context, cmd models.CreateVendorCommand) (*models.Vendor, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	// Without both coordinates the vendor sits at [0,0].
	loc := models.NewLocation(0, 0)
	if cmd.Longitude != nil && cmd.Latitude != nil {
		loc = models.NewLocation(*cmd.Longitude, *cmd.Latitude)
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
	}

	v := &models.Vendor{
		ID:            uuid.New().String(),
		Name:          name,
		Logo:          cmd.Logo,
		Address:       cmd.Address,
		Location:      loc,
		OpeningHours:  cmd.OpeningHours,
		ContactNumber: cmd.ContactNumber,
		Email:         cmd.Email,
		Website:       cmd.Website,
		SocialMedia:   cmd.SocialMedia,
	}
	if err := s.store.Create(ctx, v); err != nil {
		return nil, err
	}

	s.index(ctx, *v)
	s.logger.Info("Vendor created", map[string]interface{}{"vendorId": v.ID, "name": v.Name})
	return v, nil
}

// Update applies the patch. The location changes only when both coordinates
// are given; social media fields merge one by one.
func (s *VendorService) Update(ctx context.Context, id string, cmd models.UpdateVendorCommand) (*models.Vendor, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	v := *current
	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
		}
		v.Name = name
	}
	setString(&v.Logo, cmd.Logo)
	setString(&v.Address, cmd.Address)
	setString(&v.OpeningHours, cmd.OpeningHours)
	setString(&v.ContactNumber, cmd.ContactNumber)
	setString(&v.Email, cmd.Email)
	setString(&v.Website, cmd.Website)

	if cmd.Longitude != nil && cmd.Latitude != nil {
		loc := models.NewLocation(*cmd.Longitude, *cmd.Latitude)
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		v.Location = loc
	}

	if p := cmd.SocialMedia; p != nil {
		setString(&v.SocialMedia.Facebook, p.Facebook)
		setString(&v.SocialMedia.Instagram, p.Instagram)
		setString(&v.SocialMedia.Whatsapp, p.Whatsapp)
	}

	if err := s.store.Update(ctx, &v); err != nil {
		return nil, err
	}

	if v.Logo != current.Logo {
		dropBlob(ctx, s.blobs, s.logger, current.Logo)
	}
	s.index(ctx, v)
	return &v, nil
}

// Delete refuses while the vendor owns any deal.
func (s *VendorService) Delete(ctx context.Context, id string) error {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.store.CountDeals(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d deal(s)", ErrVendorHasDeals, n)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	dropBlob(ctx, s.blobs, s.logger, current.Logo)
	if s.mirror != nil {
		if err := s.mirror.DeleteVendor(ctx, id); err != nil {
			s.logger.Warn("Failed to remove vendor from search index", map[string]interface{}{
				"vendorId": id,
				"error":    err.Error(),
			})
		}
	}
	s.logger.Info("Vendor deleted", map[string]interface{}{"vendorId": id})
	return nil
}

func (s *VendorService) index(ctx context.Context, v models.Vendor) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.IndexVendor(ctx, v); err != nil {
		s.logger.Warn("Failed to index vendor", map[string]interface{}{
			"vendorId": v.ID,
			"error":    err.Error(),
		})
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
