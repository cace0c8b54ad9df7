// internal/repository/category.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dealsdash/internal/models"
)

type CategoryRepository struct {
	db DBTX
}

func NewCategoryRepository(db DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = `id, name, icon, created_at, updated_at`

func scanCategory(row interface{ Scan(...interface{}) error }) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// List returns all categories sorted by name.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	defer rows.Close()

	out := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, storageErr("scan category", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list categories", err)
	}
	return out, nil
}

// ListWithCounts returns every category with the number of its deals that
// are active and expire after now.
func (r *CategoryRepository) ListWithCounts(ctx context.Context, now time.Time) ([]models.CategoryWithCount, error) {
	query := `
		SELECT c.id, c.name, c.icon, c.created_at, c.updated_at,
		       COUNT(d.id) AS deal_count
		FROM categories c
		LEFT JOIN deals d
		       ON d.category_id = c.id
		      AND d.is_active
		      AND d.expire_date > $1
		GROUP BY c.id
		ORDER BY c.name`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, storageErr("list category counts", err)
	}
	defer rows.Close()

	out := []models.CategoryWithCount{}
	for rows.Next() {
		var c models.CategoryWithCount
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.CreatedAt, &c.UpdatedAt, &c.DealCount); err != nil {
			return nil, storageErr("scan category count", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list category counts", err)
	}
	return out, nil
}

func (r *CategoryRepository) Get(ctx context.Context, id string) (*models.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, storageErr("get category", err)
	}
	return &c, nil
}

// FindIDByName resolves an exact, case-sensitive category name.
func (r *CategoryRepository) FindIDByName(ctx context.Context, name string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = $1`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrCategoryNotFound
	}
	if err != nil {
		return "", storageErr("find category by name", err)
	}
	return id, nil
}

// NameTaken reports whether another category already uses name, compared
// case-insensitively. excludeID is ignored when empty.
func (r *CategoryRepository) NameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE lower(name) = lower($1) AND id::text <> $2::text)`,
		name, excludeID).Scan(&taken)
	if err != nil {
		return false, storageErr("check category name", err)
	}
	return taken, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (id, name, icon) VALUES ($1, $2, $3) RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Icon).Scan(&c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateCategory
	}
	if err != nil {
		return storageErr("create category", err)
	}
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE categories SET name = $2, icon = $3, updated_at = now() WHERE id = $1 RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Icon).Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCategoryNotFound
	}
	if isUniqueViolation(err) {
		return ErrDuplicateCategory
	}
	if err != nil {
		return storageErr("update category", err)
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete category", err)
	}
	return requireOneRow(res, "delete category", ErrCategoryNotFound)
}

// CountDeals counts every deal referencing the category, active or not.
func (r *CategoryRepository) CountDeals(ctx context.Context, id string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deals WHERE category_id = $1`, id).Scan(&n); err != nil {
		return 0, storageErr("count category deals", err)
	}
	return n, nil
}
