// internal/repository/repository_test.go
package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	apperrors "dealsdash/internal/common/errors"
	"dealsdash/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow   = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	vendorA   = "6f1c2a64-0d4e-4e55-8b0a-2b0f7d1e9a01"
	vendorB   = "6f1c2a64-0d4e-4e55-8b0a-2b0f7d1e9a02"
	foodID    = "a3d9a2c1-8c11-4d1f-9a40-5c7d3b9e0f10"
	dealOneID = "d0000000-0000-4000-8000-000000000001"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, func() DBTX) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, func() DBTX { return db }
}

var dealColumns = []string{
	"id", "title", "description", "banner", "category_id", "vendor_id",
	"start_date", "expire_date", "is_active", "is_featured", "created_at", "updated_at",
	"c_name", "c_icon", "v_name", "v_logo", "v_address",
}

func dealRow(rows *sqlmock.Rows, id, title string, active bool) *sqlmock.Rows {
	return rows.AddRow(id, title, "desc", "", foodID, vendorA,
		testNow.Add(-time.Hour), testNow.Add(24*time.Hour), active, false, testNow, testNow,
		"Food", "food.png", "Cafe", "cafe.png", "Main St")
}

// ==========================
// Categories
// ==========================

func TestCategoryRepository_FindIDByName(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(sqlmock.Sqlmock)
		wantID  string
		wantErr error
	}{
		{
			name: "found",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT id FROM categories WHERE name = \\$1").
					WithArgs("Food").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(foodID))
			},
			wantID: foodID,
		},
		{
			name: "missing",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT id FROM categories").
					WithArgs("Food").
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			wantErr: ErrCategoryNotFound,
		},
		{
			name: "storage failure",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT id FROM categories").
					WithArgs("Food").
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: apperrors.ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, db := newMock(t)
			tt.setup(mock)

			id, err := NewCategoryRepository(db()).FindIDByName(context.Background(), "Food")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCategoryRepository_NotFoundIsClassified(t *testing.T) {
	assert.ErrorIs(t, ErrCategoryNotFound, apperrors.ErrNotFound)
	assert.ErrorIs(t, ErrDuplicateCategory, apperrors.ErrConflict)
}

func TestCategoryRepository_CreateDuplicate(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery("INSERT INTO categories").
		WithArgs(foodID, "food", "").
		WillReturnError(&pq.Error{Code: "23505"})

	err := NewCategoryRepository(db()).Create(context.Background(), &models.Category{ID: foodID, Name: "food"})
	assert.ErrorIs(t, err, ErrDuplicateCategory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_ListWithCounts(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery("LEFT JOIN deals d").
		WithArgs(testNow).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "icon", "created_at", "updated_at", "deal_count"}).
			AddRow(foodID, "Food", "", testNow, testNow, 3).
			AddRow("b3d9a2c1-8c11-4d1f-9a40-5c7d3b9e0f11", "Travel", "", testNow, testNow, 0))

	got, err := NewCategoryRepository(db()).ListWithCounts(context.Background(), testNow)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].DealCount)
	assert.Equal(t, 0, got[1].DealCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_DeleteMissing(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectExec("DELETE FROM categories").
		WithArgs(foodID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewCategoryRepository(db()).Delete(context.Background(), foodID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_NameTaken(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery("lower\\(name\\) = lower\\(\\$1\\)").
		WithArgs("FOOD", foodID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	taken, err := NewCategoryRepository(db()).NameTaken(context.Background(), "FOOD", foodID)
	require.NoError(t, err)
	assert.False(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Vendors
// ==========================

var vendorCols = []string{
	"id", "name", "logo", "address", "longitude", "latitude", "opening_hours",
	"contact_number", "email", "website", "facebook", "instagram", "whatsapp", "created_at", "updated_at",
}

func TestVendorRepository_GetAttachesDealsInOrder(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery("FROM vendors WHERE id = \\$1").
		WithArgs(vendorA).
		WillReturnRows(sqlmock.NewRows(vendorCols).
			AddRow(vendorA, "Cafe", "", "Main St", 10.5, 20.25, "9-5", "", "", "", "fb", "", "", testNow, testNow))
	mock.ExpectQuery("FROM deals\\s+WHERE vendor_id = ANY").
		WithArgs(pq.Array([]string{vendorA})).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vendor_id", "title", "banner", "expire_date", "is_active", "is_featured"}).
			AddRow("d1", vendorA, "First", "", testNow, true, false).
			AddRow("d2", vendorA, "Second", "", testNow, false, true))

	v, err := NewVendorRepository(db()).Get(context.Background(), vendorA)
	require.NoError(t, err)
	assert.Equal(t, models.NewLocation(10.5, 20.25), v.Location)
	assert.Equal(t, "fb", v.SocialMedia.Facebook)
	require.Len(t, v.Deals, 2)
	assert.Equal(t, "First", v.Deals[0].Title)
	assert.Equal(t, "Second", v.Deals[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVendorRepository_GetMissing(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery("FROM vendors WHERE id").
		WithArgs(vendorA).
		WillReturnRows(sqlmock.NewRows(vendorCols))

	_, err := NewVendorRepository(db()).Get(context.Background(), vendorA)
	assert.ErrorIs(t, err, ErrVendorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVendorRepository_ListByIDsEmpty(t *testing.T) {
	mock, db := newMock(t)
	got, err := NewVendorRepository(db()).ListByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Deals
// ==========================

func TestDealRepository_ListBuildsFilters(t *testing.T) {
	active := true
	featured := false
	cat := foodID

	tests := []struct {
		name   string
		filter models.DealFilter
		query  string
		args   []driver.Value
	}{
		{
			name:  "no filters",
			query: "JOIN vendors v ON v.id = d.vendor_id\\s+ORDER BY d.created_at DESC",
		},
		{
			name:   "active adds expiry guard",
			filter: models.DealFilter{Active: &active},
			query:  "WHERE d.is_active = \\$1 AND d.expire_date > \\$2",
			args:   []driver.Value{true, testNow},
		},
		{
			name:   "featured and category",
			filter: models.DealFilter{Featured: &featured, CategoryID: &cat},
			query:  "WHERE d.is_featured = \\$1 AND d.category_id = \\$2",
			args:   []driver.Value{false, foodID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, db := newMock(t)
			q := mock.ExpectQuery(tt.query)
			if len(tt.args) > 0 {
				q = q.WithArgs(tt.args...)
			}
			q.WillReturnRows(dealRow(sqlmock.NewRows(dealColumns), dealOneID, "Lunch", true))

			deals, err := NewDealRepository(db()).List(context.Background(), tt.filter, testNow)
			require.NoError(t, err)
			require.Len(t, deals, 1)
			assert.Equal(t, "Food", deals[0].Category.Name)
			assert.Equal(t, foodID, deals[0].Category.ID)
			assert.Equal(t, "Cafe", deals[0].Vendor.Name)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDealRepository_FeaturedGatesOnStartDate(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery("d.start_date <= \\$1 AND d.expire_date > \\$1\\s+ORDER BY d.created_at DESC\\s+LIMIT \\$2").
		WithArgs(testNow, 10).
		WillReturnRows(sqlmock.NewRows(dealColumns))

	deals, err := NewDealRepository(db()).Featured(context.Background(), testNow, 10)
	require.NoError(t, err)
	assert.Empty(t, deals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDealRepository_CountActiveByVendor(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery("SELECT vendor_id, COUNT\\(\\*\\)").
		WithArgs(pq.Array([]string{vendorA, vendorB}), foodID).
		WillReturnRows(sqlmock.NewRows([]string{"vendor_id", "count"}).AddRow(vendorA, 2))

	counts, err := NewDealRepository(db()).CountActiveByVendor(context.Background(), []string{vendorA, vendorB}, foodID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{vendorA: 2}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDealRepository_DeactivateExpired(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery("UPDATE deals\\s+SET is_active = false, updated_at = \\$1\\s+WHERE is_active AND expire_date < \\$1\\s+RETURNING id, vendor_id, title").
		WithArgs(testNow).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vendor_id", "title"}).
			AddRow(dealOneID, vendorA, "Yesterday's lunch"))

	expired, err := NewDealRepository(db()).DeactivateExpired(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, []models.ExpiredDeal{{ID: dealOneID, VendorID: vendorA, Title: "Yesterday's lunch"}}, expired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDealRepository_DeactivateExpiredStorageError(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery("UPDATE deals").
		WithArgs(testNow).
		WillReturnError(errors.New("server closed the connection"))

	_, err := NewDealRepository(db()).DeactivateExpired(context.Background(), testNow)
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDealRepository_UpdateMissing(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery("UPDATE deals\\s+SET title").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))

	err := NewDealRepository(db()).Update(context.Background(), &models.Deal{ID: dealOneID})
	assert.ErrorIs(t, err, ErrDealNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
