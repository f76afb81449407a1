package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kavica-app/kavica/internal/auth"
	"github.com/kavica-app/kavica/internal/cache"
	"github.com/kavica-app/kavica/internal/catalog"
	"github.com/kavica-app/kavica/internal/location"
	"github.com/kavica-app/kavica/internal/loyalty"
	"github.com/kavica-app/kavica/internal/order"
)

type MenuView struct {
	Categories []catalog.MenuCategory `json:"categories"`
	Items      []catalog.MenuItem     `json:"items"`
}

func menuHandler(cat catalog.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var view MenuView
		if hit, err := cache.Get(ctx, rdb, cache.KeyMenu, &view); err == nil && hit {
			c.JSON(http.StatusOK, view)
			return
		}

		categories, err := cat.ListCategories(ctx)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		items, err := cat.ListItems(ctx, true)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		view = MenuView{Categories: categories, Items: items}
		if err := cache.Set(ctx, rdb, cache.KeyMenu, view, cache.DefaultTTL); err != nil {
			logrus.Warnf("menu cache set: %v", err)
		}
		c.JSON(http.StatusOK, view)
	}
}

type PlaceOrderRequest struct {
	LocationID string           `json:"location_id"`
	Cart       []order.CartLine `json:"cart"`
}

func placeOrderHandler(svc *order.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.UserID(c)

		var req PlaceOrderRequest
		// a non-integer quantity fails decoding here, before any row exists
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart payload"})
			return
		}

		o, items, err := svc.PlaceOrder(c.Request.Context(), userID, req.LocationID, req.Cart)
		if err != nil {
			switch {
			case errors.Is(err, order.ErrEmptyCart),
				errors.Is(err, order.ErrBadQuantity),
				errors.Is(err, order.ErrBadCartLine),
				errors.Is(err, order.ErrLocationNotFound),
				errors.Is(err, order.ErrItemNotFound),
				errors.Is(err, order.ErrItemInactive):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			}
			return
		}

		if err := cache.Invalidate(c.Request.Context(), rdb, cache.KeyMenu, cache.KeyUserOrders(userID)); err != nil {
			logrus.Warnf("invalidate after order placement: %v", err)
		}

		// client navigates to the order list after this
		c.JSON(http.StatusCreated, gin.H{"order": o, "items": items, "next": "/app/orders"})
	}
}

func myOrdersHandler(orders order.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.UserID(c)
		ctx := c.Request.Context()
		key := cache.KeyUserOrders(userID)

		var cached []order.Order
		if hit, err := cache.Get(ctx, rdb, key, &cached); err == nil && hit {
			c.JSON(http.StatusOK, gin.H{"orders": cached})
			return
		}

		out, err := orders.ListByUser(ctx, userID, 50)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		if err := cache.Set(ctx, rdb, key, out, cache.DefaultTTL); err != nil {
			logrus.Warnf("orders cache set: %v", err)
		}
		c.JSON(http.StatusOK, gin.H{"orders": out})
	}
}

type PointsEntry struct {
	loyalty.LedgerEntry
	LocationName string `json:"location_name,omitempty"`
}

type PointsView struct {
	Balance       int64         `json:"balance"`
	BalanceSource string        `json:"balance_source"` // "account" or "ledger"
	CardCode      string        `json:"card_code,omitempty"`
	Ledger        []PointsEntry `json:"ledger"`
}

func pointsHandler(loy loyalty.Repository, locs location.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.UserID(c)
		ctx := c.Request.Context()
		key := cache.KeyUserPoints(userID)

		var view PointsView
		if hit, err := cache.Get(ctx, rdb, key, &view); err == nil && hit {
			c.JSON(http.StatusOK, view)
			return
		}

		acct, err := loy.AccountByUser(ctx, userID)
		if err != nil && !errors.Is(err, loyalty.ErrNotFound) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		ledger, err := loy.LedgerByUser(ctx, userID, 100)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		locNames := map[string]string{}
		if all, err := locs.List(ctx); err == nil {
			for _, l := range all {
				locNames[l.ID] = l.Name
			}
		}

		view = PointsView{
			Balance:       loyalty.Balance(acct, ledger),
			BalanceSource: "ledger",
			Ledger:        make([]PointsEntry, 0, len(ledger)),
		}
		if acct != nil {
			view.CardCode = acct.CardCode
			if acct.PointsBalance != nil {
				view.BalanceSource = "account"
			}
		}
		for _, e := range ledger {
			view.Ledger = append(view.Ledger, PointsEntry{LedgerEntry: e, LocationName: locNames[e.LocationID]})
		}

		if err := cache.Set(ctx, rdb, key, view, cache.DefaultTTL); err != nil {
			logrus.Warnf("points cache set: %v", err)
		}
		c.JSON(http.StatusOK, view)
	}
}

func cardHandler(loy loyalty.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		acct, err := loy.AccountByUser(c.Request.Context(), auth.UserID(c))
		if err != nil {
			if errors.Is(err, loyalty.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no loyalty card found for your account"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		// the card code is the QR payload; encoding it into an image is the
		// client's job
		c.JSON(http.StatusOK, gin.H{"card_code": acct.CardCode})
	}
}
