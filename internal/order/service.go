package order

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/kavica-app/kavica/internal/catalog"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrBadQuantity      = errors.New("quantity must be a positive integer")
	ErrBadCartLine      = errors.New("invalid cart item")
	ErrLocationNotFound = errors.New("selected location does not exist")
	ErrItemNotFound     = errors.New("one of the items in your cart no longer exists")
	ErrItemInactive     = errors.New("one of the items in your cart is no longer available")
)

type CartLine struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

// PriceSource is the slice of the catalog the placement needs: authoritative
// unit prices. Client-submitted prices are never trusted.
type PriceSource interface {
	ItemsByIDs(ctx context.Context, ids []string) ([]catalog.MenuItem, error)
}

// LocationSource answers whether a pickup location exists.
type LocationSource interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	orders    Repository
	catalog   PriceSource
	locations LocationSource
}

func NewService(orders Repository, cat PriceSource, locs LocationSource) *Service {
	return &Service{orders: orders, catalog: cat, locations: locs}
}

// PlaceOrder validates the cart, prices it from the catalog and persists the
// order with its item lines atomically. Discount is always zero at placement;
// it is applied later by the finalize routine at pickup.
func (s *Service) PlaceOrder(ctx context.Context, userID, locationID string, cart []CartLine) (*Order, []Item, error) {
	locationID = strings.TrimSpace(locationID)
	if locationID == "" {
		return nil, nil, ErrLocationNotFound
	}
	if len(cart) == 0 {
		return nil, nil, ErrEmptyCart
	}
	for _, line := range cart {
		if strings.TrimSpace(line.MenuItemID) == "" {
			return nil, nil, ErrBadCartLine
		}
		if line.Quantity <= 0 {
			return nil, nil, ErrBadQuantity
		}
	}

	exists, err := s.locations.Exists(ctx, locationID)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, ErrLocationNotFound
	}

	ids := make([]string, 0, len(cart))
	seen := make(map[string]bool, len(cart))
	for _, line := range cart {
		if !seen[line.MenuItemID] {
			seen[line.MenuItemID] = true
			ids = append(ids, line.MenuItemID)
		}
	}

	dbItems, err := s.catalog.ItemsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	priceMap := make(map[string]catalog.MenuItem, len(dbItems))
	for _, it := range dbItems {
		priceMap[it.ID] = it
	}

	o := &Order{
		ID:         uuid.NewString(),
		UserID:     userID,
		LocationID: locationID,
		Status:     StatusCreated,
	}

	items := make([]Item, 0, len(cart))
	for _, line := range cart {
		db, ok := priceMap[line.MenuItemID]
		if !ok {
			return nil, nil, ErrItemNotFound
		}
		if !db.Active {
			return nil, nil, ErrItemInactive
		}
		lineTotal := db.BasePriceCents * int64(line.Quantity)
		o.SubtotalCents += lineTotal
		items = append(items, Item{
			ID:             uuid.NewString(),
			OrderID:        o.ID,
			MenuItemID:     line.MenuItemID,
			Quantity:       line.Quantity,
			UnitPriceCents: db.BasePriceCents,
			LineTotalCents: lineTotal,
		})
	}

	o.DiscountCents = 0
	o.TotalCents = o.SubtotalCents

	if err := s.orders.Create(ctx, o, items); err != nil {
		return nil, nil, err
	}
	return o, items, nil
}
