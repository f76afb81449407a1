package order

import "time"

// Order statuses. An order is born "created" and leaves that status only
// through the finalize routine in the database.
const (
	StatusCreated   = "created"
	StatusReady     = "ready"
	StatusPickedUp  = "picked_up"
	StatusCancelled = "cancelled"
)

type Order struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	LocationID    string    `json:"location_id"`
	Status        string    `json:"status"`
	SubtotalCents int64     `json:"subtotal_cents"`
	DiscountCents int64     `json:"discount_cents"`
	TotalCents    int64     `json:"total_cents"`
	CreatedAt     time.Time `json:"created_at"`
}

// Item snapshots the catalog price at order time so later price edits don't
// rewrite history.
type Item struct {
	ID             string `json:"id"`
	OrderID        string `json:"order_id"`
	MenuItemID     string `json:"menu_item_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}

// PendingOrder is one row of get_pending_orders_for_pickup: a pending order
// with its item lines nested, looked up by card code.
type PendingOrder struct {
	OrderID      string        `json:"order_id"`
	LocationName string        `json:"location_name"`
	TotalCents   int64         `json:"total_cents"`
	CreatedAt    time.Time     `json:"created_at"`
	Items        []PendingItem `json:"items"`
}

type PendingItem struct {
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}
