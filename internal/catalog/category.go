// internal/catalog/category.go
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dealsdash/internal/common/logger"
	"dealsdash/internal/models"
	"dealsdash/internal/repository"
	"dealsdash/internal/storage"
)

type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	ListWithCounts(ctx context.Context, now time.Time) ([]models.CategoryWithCount, error)
	Get(ctx context.Context, id string) (*models.Category, error)
	NameTaken(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id string) error
	CountDeals(ctx context.Context, id string) (int, error)
}

// NameCache holds name to id lookups that go stale when a category is
// renamed or removed.
type NameCache interface {
	Invalidate(ctx context.Context, names ...string) error
}

type CategoryService struct {
	store  CategoryStore
	blobs  storage.BlobStore
	cache  NameCache
	now    func() time.Time
	logger logger.Logger
}

func NewCategoryService(store CategoryStore, blobs storage.BlobStore, cache NameCache, now func() time.Time, log logger.Logger) *CategoryService {
	return &CategoryService{
		store:  store,
		blobs:  blobs,
		cache:  cache,
		now:    clock(now),
		logger: log.WithFields(map[string]interface{}{"service": "category"}),
	}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.store.List(ctx)
}

func (s *CategoryService) ListWithCounts(ctx context.Context) ([]models.CategoryWithCount, error) {
	return s.store.ListWithCounts(ctx, s.now())
}

func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	return s.store.Get(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, cmd models.CreateCategoryCommand) (*models.Category, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	c := &models.Category{ID: uuid.New().String(), Name: name, Icon: cmd.Icon}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Category created", map[string]interface{}{"categoryId": c.ID, "name": c.Name})
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, cmd models.UpdateCategoryCommand) (*models.Category, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
		}
		if err := s.ensureNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		updated.Name = name
	}
	if cmd.Icon != nil {
		updated.Icon = *cmd.Icon
	}

	if err := s.store.Update(ctx, &updated); err != nil {
		return nil, err
	}

	if updated.Name != current.Name {
		s.invalidate(ctx, current.Name, updated.Name)
	}
	if updated.Icon != current.Icon {
		dropBlob(ctx, s.blobs, s.logger, current.Icon)
	}
	return &updated, nil
}

// Delete refuses while any deal, active or not, references the category.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.store.CountDeals(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d deal(s)", ErrCategoryInUse, n)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, current.Name)
	dropBlob(ctx, s.blobs, s.logger, current.Icon)
	s.logger.Info("Category deleted", map[string]interface{}{"categoryId": id})
	return nil
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name, excludeID string) error {
	taken, err := s.store.NameTaken(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %q", repository.ErrDuplicateCategory, name)
	}
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context, names ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, names...); err != nil {
		s.logger.Warn("Category cache invalidation failed", map[string]interface{}{
			"names": names,
			"error": err.Error(),
		})
	}
}
