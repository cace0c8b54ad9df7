// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealsdash/internal/catalog"
	"dealsdash/internal/common/config"
	"dealsdash/internal/common/database"
	"dealsdash/internal/common/logger"
	"dealsdash/internal/models"
	"dealsdash/internal/proximity"
	"dealsdash/internal/reconciler"
	"dealsdash/internal/repository"
	"dealsdash/internal/storage"
)

// The end-to-end suite needs a real PostgreSQL. It runs only when
// DEALSDASH_E2E=1 and reads connection settings the same way the server does.
func requireE2E(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("DEALSDASH_E2E") != "1" {
		t.Skip("set DEALSDASH_E2E=1 to run against a live PostgreSQL")
	}
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

type env struct {
	db         *sql.DB
	categories *catalog.CategoryService
	vendors    *catalog.VendorService
	deals      *catalog.DealService
	engine     *proximity.Engine
	reconciler *reconciler.Reconciler
	log        logger.Logger
}

func setup(t *testing.T) *env {
	cfg := requireE2E(t)
	ctx := context.Background()
	log := logger.NewTestLogger(t)

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")
	t.Cleanup(func() { _ = pg.Close() })

	_, err = database.NewMigrator(pg.DB, log).Up(ctx)
	require.NoError(t, err)

	cleanTables(t, pg.DB)
	t.Cleanup(func() { cleanTables(t, pg.DB) })

	categoryRepo := repository.NewCategoryRepository(pg.DB)
	vendorRepo := repository.NewVendorRepository(pg.DB)
	dealRepo := repository.NewDealRepository(pg.DB)
	blobs := storage.NopStore{}

	return &env{
		db:         pg.DB,
		categories: catalog.NewCategoryService(categoryRepo, blobs, nil, time.Now, log),
		vendors:    catalog.NewVendorService(vendorRepo, blobs, nil, log),
		deals:      catalog.NewDealService(dealRepo, catalog.NewReferences(categoryRepo, vendorRepo), blobs, time.Now, log),
		engine: proximity.NewEngine(
			proximity.NewPostgresLocator(pg.DB),
			proximity.CategoryResolverFunc(categoryRepo.FindIDByName),
			config.BackendPostgres, log,
		),
		reconciler: reconciler.New(dealRepo, log),
		log:        log,
	}
}

func cleanTables(t *testing.T, db *sql.DB) {
	_, err := db.Exec(`TRUNCATE deals, vendors, categories CASCADE`)
	require.NoError(t, err)
}

func ptr[T any](v T) *T { return &v }

// ==========================
// Nearby search
// ==========================

func TestNearbySearchAgainstPostgres(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	food, err := e.categories.Create(ctx, models.CreateCategoryCommand{Name: "Food"})
	require.NoError(t, err)
	clothing, err := e.categories.Create(ctx, models.CreateCategoryCommand{Name: "Clothing"})
	require.NoError(t, err)

	cafe, err := e.vendors.Create(ctx, models.CreateVendorCommand{
		Name: "Corner Cafe", Longitude: ptr(77.5946), Latitude: ptr(12.9716),
	})
	require.NoError(t, err)
	far, err := e.vendors.Create(ctx, models.CreateVendorCommand{
		Name: "Airport Kiosk", Longitude: ptr(77.7066), Latitude: ptr(13.1986),
	})
	require.NoError(t, err)

	_, err = e.deals.Create(ctx, models.CreateDealCommand{
		Title: "Two for one", Description: "Buy one coffee, get one free", CategoryID: food.ID, VendorID: cafe.ID,
		ExpireDate: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	_, err = e.deals.Create(ctx, models.CreateDealCommand{
		Title: "Coffee", Description: "Filter coffee at half price", CategoryID: food.ID, VendorID: far.ID,
		ExpireDate: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	got, err := e.engine.Search(ctx, proximity.Query{Longitude: ptr(77.5946), Latitude: ptr(12.9716), Category: "Food"})
	require.NoError(t, err)
	require.Len(t, got, 1, "the kiosk is beyond the default radius")
	assert.Equal(t, cafe.ID, got[0].ID)
	assert.Equal(t, int64(0), got[0].Distance)
	assert.Equal(t, 1, got[0].ActiveDealCount)

	got, err = e.engine.Search(ctx, proximity.Query{Longitude: ptr(77.5946), Latitude: ptr(12.9716), Category: clothing.Name})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = e.engine.Search(ctx, proximity.Query{Longitude: ptr(77.5946), Latitude: ptr(12.9716), Distance: 30000})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, cafe.ID, got[0].ID)
	assert.Equal(t, far.ID, got[1].ID)
}

// ==========================
// Expiration sweep
// ==========================

func TestSweepAgainstPostgres(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	food, err := e.categories.Create(ctx, models.CreateCategoryCommand{Name: "Food"})
	require.NoError(t, err)
	cafe, err := e.vendors.Create(ctx, models.CreateVendorCommand{
		Name: "Corner Cafe", Longitude: ptr(77.5946), Latitude: ptr(12.9716),
	})
	require.NoError(t, err)

	expired, err := e.deals.Create(ctx, models.CreateDealCommand{
		Title: "Yesterday", Description: "Expired yesterday", CategoryID: food.ID, VendorID: cafe.ID,
		ExpireDate: time.Now().Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	live, err := e.deals.Create(ctx, models.CreateDealCommand{
		Title: "Tomorrow", Description: "Expires tomorrow", CategoryID: food.ID, VendorID: cafe.ID,
		ExpireDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	res, err := e.reconciler.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.Count())
	assert.Equal(t, expired.ID, res.Expired[0].ID)

	got, err := e.deals.Get(ctx, expired.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	got, err = e.deals.Get(ctx, live.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	res, err = e.reconciler.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Count(), "second sweep finds nothing")
}
