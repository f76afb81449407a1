package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kavica-app/kavica/internal/authz"
	"github.com/kavica-app/kavica/internal/cache"
	"github.com/kavica-app/kavica/internal/order"
)

// adminOrdersHandler lists pending orders within the caller's location scope.
// An admin with no assignments gets an explicit empty state instead of an
// unscoped list.
func adminOrdersHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := authz.ScopeFrom(c)
		if scope.Empty() {
			c.JSON(http.StatusOK, gin.H{
				"orders":  []order.Order{},
				"message": "you are an admin but no locations are assigned",
			})
			return
		}

		var locationIDs []string
		if !scope.All {
			locationIDs = scope.LocationIDs
		}
		out, err := orders.ListPending(c.Request.Context(), locationIDs, 100)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": out})
	}
}

func adminOrderDetailHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, items, err := orders.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		// an order outside the admin's locations reads as no-access, its
		// contents are not leaked
		if !authz.ScopeFrom(c).Allows(o.LocationID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "you don't have access"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": o, "items": items})
	}
}

// pickupLookupHandler finds a customer's pending orders by scanned card code.
// Re-running the lookup without an intervening finalize returns the same set.
func pickupLookupHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cardCode := strings.ToLower(strings.TrimSpace(c.Query("card_code")))
		if cardCode == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "card_code is required"})
			return
		}
		rows, err := orders.PendingForPickup(c.Request.Context(), cardCode)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		if rows == nil {
			rows = []order.PendingOrder{}
		}
		c.JSON(http.StatusOK, gin.H{
			"card_code": cardCode,
			"count":     len(rows),
			"orders":    rows,
		})
	}
}

type FinalizePickupRequest struct {
	OrderID  string `json:"order_id" binding:"required"`
	CardCode string `json:"card_code" binding:"required"`
}

func finalizePickupHandler(orders order.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req FinalizePickupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "order_id and card_code are required"})
			return
		}
		cardCode := strings.ToLower(strings.TrimSpace(req.CardCode))

		// look the order up first so the owner's cached views can be dropped
		o, _, lookupErr := orders.GetByID(c.Request.Context(), req.OrderID)

		if err := orders.FinalizeAtPickup(c.Request.Context(), req.OrderID, cardCode); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		if lookupErr == nil {
			if err := cache.Invalidate(c.Request.Context(), rdb,
				cache.KeyUserOrders(o.UserID), cache.KeyUserPoints(o.UserID)); err != nil {
				logrus.Warnf("invalidate after finalize: %v", err)
			}
		}

		// staff stays on the pickup screen for the next customer
		c.JSON(http.StatusOK, gin.H{"done": true, "card_code": cardCode})
	}
}
