package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("order not found")

type Repository interface {
	Create(ctx context.Context, o *Order, items []Item) error
	GetByID(ctx context.Context, id string) (*Order, []Item, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Order, error)
	// ListPending returns "created" orders, newest first. A nil locationIDs
	// slice means no location restriction (super admin).
	ListPending(ctx context.Context, locationIDs []string, limit int) ([]Order, error)
	PendingForPickup(ctx context.Context, cardCode string) ([]PendingOrder, error)
	FinalizeAtPickup(ctx context.Context, orderID, cardCode string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// Create inserts the order and its items in one transaction. A failed item
// insert rolls the whole order back.
func (r *PGRepo) Create(ctx context.Context, o *Order, items []Item) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, location_id, status, subtotal_cents, discount_cents, total_cents, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
	`, o.ID, o.UserID, o.LocationID, o.Status, o.SubtotalCents, o.DiscountCents, o.TotalCents); err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, menu_item_id, quantity, unit_price_cents, line_total_cents)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, it.ID, o.ID, it.MenuItemID, it.Quantity, it.UnitPriceCents, it.LineTotalCents); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, []Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	if err := r.db.QueryRow(ctx, `
		SELECT id, user_id, location_id, status, subtotal_cents, discount_cents, total_cents, created_at
		FROM orders WHERE id=$1
	`, id).Scan(&o.ID, &o.UserID, &o.LocationID, &o.Status, &o.SubtotalCents, &o.DiscountCents, &o.TotalCents, &o.CreatedAt); err != nil {
		return nil, nil, ErrNotFound
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, menu_item_id, quantity, unit_price_cents, line_total_cents
		FROM order_items WHERE order_id=$1
	`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Quantity, &it.UnitPriceCents, &it.LineTotalCents); err != nil {
			return nil, nil, err
		}
		items = append(items, it)
	}
	return &o, items, rows.Err()
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, location_id, status, subtotal_cents, discount_cents, total_cents, created_at
		FROM orders WHERE user_id=$1
		ORDER BY created_at DESC LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *PGRepo) ListPending(ctx context.Context, locationIDs []string, limit int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var (
		rows pgx.Rows
		err  error
	)
	if locationIDs == nil {
		rows, err = r.db.Query(ctx, `
			SELECT id, user_id, location_id, status, subtotal_cents, discount_cents, total_cents, created_at
			FROM orders WHERE status=$1
			ORDER BY created_at DESC LIMIT $2
		`, StatusCreated, limit)
	} else {
		rows, err = r.db.Query(ctx, `
			SELECT id, user_id, location_id, status, subtotal_cents, discount_cents, total_cents, created_at
			FROM orders WHERE status=$1 AND location_id = ANY($2)
			ORDER BY created_at DESC LIMIT $3
		`, StatusCreated, locationIDs, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func scanOrders(rows pgx.Rows) ([]Order, error) {
	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.LocationID, &o.Status, &o.SubtotalCents, &o.DiscountCents, &o.TotalCents, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// PendingForPickup invokes the get_pending_orders_for_pickup database routine.
// Item lines come back as a jsonb array per order.
func (r *PGRepo) PendingForPickup(ctx context.Context, cardCode string) ([]PendingOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT order_id, location_name, total_cents, created_at, items
		FROM get_pending_orders_for_pickup($1)
	`, cardCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingOrder
	for rows.Next() {
		var (
			p     PendingOrder
			items []byte
		)
		if err := rows.Scan(&p.OrderID, &p.LocationName, &p.TotalCents, &p.CreatedAt, &items); err != nil {
			return nil, err
		}
		if len(items) > 0 {
			if err := json.Unmarshal(items, &p.Items); err != nil {
				return nil, fmt.Errorf("decode pickup items: %w", err)
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FinalizeAtPickup invokes the finalize_order_at_pickup database routine.
// Status transition, discount and points crediting all happen inside it; this
// side only reports its error, if any.
func (r *PGRepo) FinalizeAtPickup(ctx context.Context, orderID, cardCode string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.db.Exec(ctx, `SELECT finalize_order_at_pickup($1,$2)`, orderID, cardCode); err != nil {
		return fmt.Errorf("finalize failed: %w", err)
	}
	return nil
}
