package catalog

import "time"

type MenuCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MenuItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	// integer cents, never floats
	BasePriceCents int64     `json:"base_price_cents"`
	Active         bool      `json:"active"`
	CategoryID     string    `json:"category_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
