// internal/repository/deal.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dealsdash/internal/models"

	"github.com/lib/pq"
)

type DealRepository struct {
	db DBTX
}

func NewDealRepository(db DBTX) *DealRepository {
	return &DealRepository{db: db}
}

const dealSelect = `
	SELECT d.id, d.title, d.description, d.banner, d.category_id, d.vendor_id,
	       d.start_date, d.expire_date, d.is_active, d.is_featured, d.created_at, d.updated_at,
	       c.name, c.icon, v.name, v.logo, v.address
	FROM deals d
	JOIN categories c ON c.id = d.category_id
	JOIN vendors v ON v.id = d.vendor_id`

func scanDeal(row interface{ Scan(...interface{}) error }) (models.Deal, error) {
	var d models.Deal
	c := &models.CategoryRef{}
	v := &models.VendorRef{}
	err := row.Scan(
		&d.ID, &d.Title, &d.Description, &d.Banner, &d.CategoryID, &d.VendorID,
		&d.StartDate, &d.ExpireDate, &d.IsActive, &d.IsFeatured, &d.CreatedAt, &d.UpdatedAt,
		&c.Name, &c.Icon, &v.Name, &v.Logo, &v.Address,
	)
	c.ID = d.CategoryID
	v.ID = d.VendorID
	d.Category = c
	d.Vendor = v
	return d, err
}

func (r *DealRepository) query(ctx context.Context, op, query string, args ...interface{}) ([]models.Deal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	out := []models.Deal{}
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return out, nil
}

// List applies the optional filters. Active=true additionally requires the
// deal not to have expired at now.
func (r *DealRepository) List(ctx context.Context, f models.DealFilter, now time.Time) ([]models.Deal, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Active != nil {
		where = append(where, "d.is_active = "+arg(*f.Active))
		if *f.Active {
			where = append(where, "d.expire_date > "+arg(now))
		}
	}
	if f.Featured != nil {
		where = append(where, "d.is_featured = "+arg(*f.Featured))
	}
	if f.CategoryID != nil {
		where = append(where, "d.category_id = "+arg(*f.CategoryID))
	}
	if f.VendorID != nil {
		where = append(where, "d.vendor_id = "+arg(*f.VendorID))
	}

	query := dealSelect
	if len(where) > 0 {
		query += "\n\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\tORDER BY d.created_at DESC"

	return r.query(ctx, "list deals", query, args...)
}

// Featured returns up to limit featured deals that are active, started and
// not yet expired.
func (r *DealRepository) Featured(ctx context.Context, now time.Time, limit int) ([]models.Deal, error) {
	return r.query(ctx, "list featured deals", dealSelect+`
	WHERE d.is_featured AND d.is_active AND d.start_date <= $1 AND d.expire_date > $1
	ORDER BY d.created_at DESC
	LIMIT $2`, now, limit)
}

// ByCategory returns the category's deals that are active, started and not
// yet expired.
func (r *DealRepository) ByCategory(ctx context.Context, categoryID string, now time.Time) ([]models.Deal, error) {
	return r.query(ctx, "list category deals", dealSelect+`
	WHERE d.category_id = $1 AND d.is_active AND d.start_date <= $2 AND d.expire_date > $2
	ORDER BY d.created_at DESC`, categoryID, now)
}

func (r *DealRepository) Get(ctx context.Context, id string) (*models.Deal, error) {
	d, err := scanDeal(r.db.QueryRowContext(ctx, dealSelect+`
	WHERE d.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDealNotFound
	}
	if err != nil {
		return nil, storageErr("get deal", err)
	}
	return &d, nil
}

func (r *DealRepository) Create(ctx context.Context, d *models.Deal) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO deals (id, title, description, banner, category_id, vendor_id,
		                   start_date, expire_date, is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		d.ID, d.Title, d.Description, d.Banner, d.CategoryID, d.VendorID,
		d.StartDate, d.ExpireDate, d.IsActive, d.IsFeatured,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return storageErr("create deal", err)
	}
	return nil
}

func (r *DealRepository) Update(ctx context.Context, d *models.Deal) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE deals
		SET title = $2, description = $3, banner = $4, category_id = $5, vendor_id = $6,
		    start_date = $7, expire_date = $8, is_active = $9, is_featured = $10, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		d.ID, d.Title, d.Description, d.Banner, d.CategoryID, d.VendorID,
		d.StartDate, d.ExpireDate, d.IsActive, d.IsFeatured,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDealNotFound
	}
	if err != nil {
		return storageErr("update deal", err)
	}
	return nil
}

func (r *DealRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM deals WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete deal", err)
	}
	return requireOneRow(res, "delete deal", ErrDealNotFound)
}

// CountActiveByVendor counts active deals per vendor, restricted to one
// category when categoryID is non-empty. Vendors without qualifying deals
// are absent from the map.
func (r *DealRepository) CountActiveByVendor(ctx context.Context, vendorIDs []string, categoryID string) (map[string]int, error) {
	out := make(map[string]int, len(vendorIDs))
	if len(vendorIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT vendor_id, COUNT(*)
		FROM deals
		WHERE vendor_id = ANY($1::uuid[])
		  AND is_active
		  AND ($2::text = '' OR category_id::text = $2::text)
		GROUP BY vendor_id`, pq.Array(vendorIDs), categoryID)
	if err != nil {
		return nil, storageErr("count active deals", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, storageErr("scan deal count", err)
		}
		out[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("count active deals", err)
	}
	return out, nil
}

// DeactivateExpired flips every active deal whose expiration is strictly
// before now to inactive in one statement and returns the affected deals.
func (r *DealRepository) DeactivateExpired(ctx context.Context, now time.Time) ([]models.ExpiredDeal, error) {
	rows, err := r.db.QueryContext(ctx, `
		UPDATE deals
		SET is_active = false, updated_at = $1
		WHERE is_active AND expire_date < $1
		RETURNING id, vendor_id, title`, now)
	if err != nil {
		return nil, storageErr("deactivate expired deals", err)
	}
	defer rows.Close()

	out := []models.ExpiredDeal{}
	for rows.Next() {
		var d models.ExpiredDeal
		if err := rows.Scan(&d.ID, &d.VendorID, &d.Title); err != nil {
			return nil, storageErr("scan expired deal", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("deactivate expired deals", err)
	}
	return out, nil
}
