// internal/repository/vendor.go
package repository

import (
	"context"
	"database/sql"
	"errors"

	"dealsdash/internal/models"

	"github.com/lib/pq"
)

type VendorRepository struct {
	db DBTX
}

func NewVendorRepository(db DBTX) *VendorRepository {
	return &VendorRepository{db: db}
}

const vendorColumns = `id, name, logo, address, longitude, latitude, opening_hours,
	contact_number, email, website, facebook, instagram, whatsapp, created_at, updated_at`

func scanVendor(row interface{ Scan(...interface{}) error }) (models.Vendor, error) {
	var v models.Vendor
	err := row.Scan(
		&v.ID, &v.Name, &v.Logo, &v.Address, &v.Location[0], &v.Location[1], &v.OpeningHours,
		&v.ContactNumber, &v.Email, &v.Website,
		&v.SocialMedia.Facebook, &v.SocialMedia.Instagram, &v.SocialMedia.Whatsapp,
		&v.CreatedAt, &v.UpdatedAt,
	)
	return v, err
}

// List returns every vendor, newest first, each with its deal summaries.
func (r *VendorRepository) List(ctx context.Context) ([]models.Vendor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+vendorColumns+` FROM vendors ORDER BY created_at DESC`)
	if err != nil {
		return nil, storageErr("list vendors", err)
	}
	defer rows.Close()

	out := []models.Vendor{}
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, storageErr("scan vendor", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list vendors", err)
	}

	if err := r.attachDeals(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByIDs loads vendors without deal summaries, keyed by id.
func (r *VendorRepository) ListByIDs(ctx context.Context, ids []string) (map[string]models.Vendor, error) {
	out := make(map[string]models.Vendor, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, storageErr("list vendors by id", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, storageErr("scan vendor", err)
		}
		out[v.ID] = v
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list vendors by id", err)
	}
	return out, nil
}

func (r *VendorRepository) Get(ctx context.Context, id string) (*models.Vendor, error) {
	v, err := scanVendor(r.db.QueryRowContext(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVendorNotFound
	}
	if err != nil {
		return nil, storageErr("get vendor", err)
	}

	list := []models.Vendor{v}
	if err := r.attachDeals(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *VendorRepository) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM vendors WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, storageErr("check vendor", err)
	}
	return ok, nil
}

// attachDeals fills Deals for every vendor in one query, ordered by creation.
func (r *VendorRepository) attachDeals(ctx context.Context, vendors []models.Vendor) error {
	if len(vendors) == 0 {
		return nil
	}

	ids := make([]string, len(vendors))
	index := make(map[string]int, len(vendors))
	for i, v := range vendors {
		ids[i] = v.ID
		index[v.ID] = i
		vendors[i].Deals = []models.DealSummary{}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, vendor_id, title, banner, expire_date, is_active, is_featured
		FROM deals
		WHERE vendor_id = ANY($1::uuid[])
		ORDER BY created_at, id`, pq.Array(ids))
	if err != nil {
		return storageErr("list vendor deals", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.DealSummary
		var vendorID string
		if err := rows.Scan(&d.ID, &vendorID, &d.Title, &d.Banner, &d.ExpireDate, &d.IsActive, &d.IsFeatured); err != nil {
			return storageErr("scan vendor deal", err)
		}
		if i, ok := index[vendorID]; ok {
			vendors[i].Deals = append(vendors[i].Deals, d)
		}
	}
	if err := rows.Err(); err != nil {
		return storageErr("list vendor deals", err)
	}
	return nil
}

func (r *VendorRepository) Create(ctx context.Context, v *models.Vendor) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO vendors (id, name, logo, address, longitude, latitude, opening_hours,
		                     contact_number, email, website, facebook, instagram, whatsapp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`,
		v.ID, v.Name, v.Logo, v.Address, v.Location.Longitude(), v.Location.Latitude(), v.OpeningHours,
		v.ContactNumber, v.Email, v.Website,
		v.SocialMedia.Facebook, v.SocialMedia.Instagram, v.SocialMedia.Whatsapp,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return storageErr("create vendor", err)
	}
	return nil
}

func (r *VendorRepository) Update(ctx context.Context, v *models.Vendor) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE vendors
		SET name = $2, logo = $3, address = $4, longitude = $5, latitude = $6, opening_hours = $7,
		    contact_number = $8, email = $9, website = $10,
		    facebook = $11, instagram = $12, whatsapp = $13, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		v.ID, v.Name, v.Logo, v.Address, v.Location.Longitude(), v.Location.Latitude(), v.OpeningHours,
		v.ContactNumber, v.Email, v.Website,
		v.SocialMedia.Facebook, v.SocialMedia.Instagram, v.SocialMedia.Whatsapp,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrVendorNotFound
	}
	if err != nil {
		return storageErr("update vendor", err)
	}
	return nil
}

func (r *VendorRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete vendor", err)
	}
	return requireOneRow(res, "delete vendor", ErrVendorNotFound)
}

// CountDeals counts every deal owned by the vendor, active or not.
func (r *VendorRepository) CountDeals(ctx context.Context, id string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deals WHERE vendor_id = $1`, id).Scan(&n); err != nil {
		return 0, storageErr("count vendor deals", err)
	}
	return n, nil
}
