package loyalty

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("loyalty account not found")

type Repository interface {
	CreateAccount(ctx context.Context, userID string) (*Account, error)
	AccountByUser(ctx context.Context, userID string) (*Account, error)
	LedgerByUser(ctx context.Context, userID string, limit int) ([]LedgerEntry, error)
	Settings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, s Settings, updatedBy string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// NewCardCode mints a public-safe card code, lowercase so that scans and
// manual entry compare equal.
func NewCardCode() string {
	return strings.ToLower(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func (r *PGRepo) CreateAccount(ctx context.Context, userID string) (*Account, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	a := &Account{
		ID:       uuid.NewString(),
		UserID:   userID,
		CardCode: NewCardCode(),
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO loyalty_accounts (id, user_id, card_code, updated_at)
		VALUES ($1,$2,$3,NOW())
	`, a.ID, a.UserID, a.CardCode)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// AccountByUser returns the most recent account for the user. Deliberately
// tolerant of duplicates: newest updated_at wins.
func (r *PGRepo) AccountByUser(ctx context.Context, userID string) (*Account, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, card_code, points_balance, updated_at
		FROM loyalty_accounts
		WHERE user_id=$1
		ORDER BY updated_at DESC
		LIMIT 1
	`, userID)
	var a Account
	if err := row.Scan(&a.ID, &a.UserID, &a.CardCode, &a.PointsBalance, &a.UpdatedAt); err != nil {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *PGRepo) LedgerByUser(ctx context.Context, userID string, limit int) ([]LedgerEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, COALESCE(order_id::text,''), COALESCE(location_id::text,''), points_delta, COALESCE(reason,''), created_at
		FROM points_ledger
		WHERE user_id=$1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.OrderID, &e.LocationID, &e.PointsDelta, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PGRepo) Settings(ctx context.Context) (*Settings, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT points_per_eur, eur_per_100_points, discount_percent, cashback_percent, updated_at, COALESCE(updated_by::text,'')
		FROM app_settings WHERE id = true
	`)
	var s Settings
	if err := row.Scan(&s.PointsPerEur, &s.EurPer100Points, &s.DiscountPercent, &s.CashbackPercent, &s.UpdatedAt, &s.UpdatedBy); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGRepo) UpdateSettings(ctx context.Context, s Settings, updatedBy string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		UPDATE app_settings
		SET points_per_eur = $1,
		    eur_per_100_points = $2,
		    discount_percent = $3,
		    cashback_percent = $4,
		    updated_at = NOW(),
		    updated_by = NULLIF($5,'')::uuid
		WHERE id = true
	`, s.PointsPerEur, s.EurPer100Points, s.DiscountPercent, s.CashbackPercent, updatedBy)
	return err
}
