package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("menu item not found")

type Repository interface {
	ListCategories(ctx context.Context) ([]MenuCategory, error)
	CreateCategory(ctx context.Context, c *MenuCategory) error
	RenameCategory(ctx context.Context, id, name string) error

	ListItems(ctx context.Context, activeOnly bool) ([]MenuItem, error)
	ItemsByIDs(ctx context.Context, ids []string) ([]MenuItem, error)
	CreateItem(ctx context.Context, m *MenuItem) error
	UpdateItem(ctx context.Context, m *MenuItem) error
	SetItemActive(ctx context.Context, id string, active bool) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) ListCategories(ctx context.Context) ([]MenuCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id, name FROM menu_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MenuCategory
	for rows.Next() {
		var c MenuCategory
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) CreateCategory(ctx context.Context, c *MenuCategory) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `INSERT INTO menu_categories (id, name) VALUES ($1,$2)`, c.ID, c.Name)
	return err
}

func (r *PGRepo) RenameCategory(ctx context.Context, id, name string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE menu_categories SET name=$2 WHERE id=$1`, id, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) ListItems(ctx context.Context, activeOnly bool) ([]MenuItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, COALESCE(description,''), base_price_cents, active, COALESCE(category_id::text,''), created_at
		FROM menu_items
		WHERE ($1 = false OR active)
		ORDER BY name
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *PGRepo) ItemsByIDs(ctx context.Context, ids []string) ([]MenuItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, COALESCE(description,''), base_price_cents, active, COALESCE(category_id::text,''), created_at
		FROM menu_items
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func scanItems(rows pgx.Rows) ([]MenuItem, error) {
	var out []MenuItem
	for rows.Next() {
		var m MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.BasePriceCents, &m.Active, &m.CategoryID, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PGRepo) CreateItem(ctx context.Context, m *MenuItem) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO menu_items (id, name, description, base_price_cents, active, category_id, created_at)
		VALUES ($1,$2,NULLIF($3,''),$4,$5,NULLIF($6,'')::uuid,NOW())
	`, m.ID, m.Name, m.Description, m.BasePriceCents, m.Active, m.CategoryID)
	return err
}

func (r *PGRepo) UpdateItem(ctx context.Context, m *MenuItem) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE menu_items
		SET name = $2,
		    description = NULLIF($3,''),
		    base_price_cents = $4,
		    active = $5,
		    category_id = NULLIF($6,'')::uuid
		WHERE id = $1
	`, m.ID, m.Name, m.Description, m.BasePriceCents, m.Active, m.CategoryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) SetItemActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE menu_items SET active=$2 WHERE id=$1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
