package profile

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound     = errors.New("profile not found")
	ErrAlreadyExist = errors.New("profile already exists")
)

type Repository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, userID string) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, p *Profile) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO profiles (user_id, email, full_name, password_hash, created_at)
		VALUES ($1,$2,$3,$4,NOW())
	`, p.UserID, p.Email, p.FullName, p.PasswordHash)
	if err != nil {
		// email carries a UNIQUE constraint
		return ErrAlreadyExist
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT user_id, email, COALESCE(full_name,''), password_hash, created_at
		FROM profiles WHERE user_id=$1
	`, userID)
	var p Profile
	if err := row.Scan(&p.UserID, &p.Email, &p.FullName, &p.PasswordHash, &p.CreatedAt); err != nil {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT user_id, email, COALESCE(full_name,''), password_hash, created_at
		FROM profiles WHERE email=$1
	`, email)
	var p Profile
	if err := row.Scan(&p.UserID, &p.Email, &p.FullName, &p.PasswordHash, &p.CreatedAt); err != nil {
		return nil, ErrNotFound
	}
	return &p, nil
}
