package location

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("location not found")

type Repository interface {
	List(ctx context.Context) ([]Location, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, l *Location) error
	Update(ctx context.Context, l *Location) error
	SetActive(ctx context.Context, id string, active bool) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) List(ctx context.Context) ([]Location, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, COALESCE(address,''), COALESCE(city,''), is_active, created_at
		FROM locations
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.City, &l.IsActive, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PGRepo) Exists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var found bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM locations WHERE id=$1)`, id).Scan(&found)
	return found, err
}

func (r *PGRepo) Create(ctx context.Context, l *Location) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO locations (id, name, address, city, is_active, created_at)
		VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),$5,NOW())
	`, l.ID, l.Name, l.Address, l.City, l.IsActive)
	return err
}

func (r *PGRepo) Update(ctx context.Context, l *Location) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE locations
		SET name = COALESCE(NULLIF($2,''), name),
		    address = NULLIF($3,''),
		    city = NULLIF($4,'')
		WHERE id = $1
	`, l.ID, l.Name, l.Address, l.City)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE locations SET is_active=$2 WHERE id=$1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
