package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kavica-app/kavica/internal/auth"
	"github.com/kavica-app/kavica/internal/authz"
	"github.com/kavica-app/kavica/internal/cache"
	"github.com/kavica-app/kavica/internal/catalog"
	"github.com/kavica-app/kavica/internal/location"
	"github.com/kavica-app/kavica/internal/loyalty"
	"github.com/kavica-app/kavica/internal/profile"
)

func listLocationsHandler(locs location.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var cached []location.Location
		if hit, err := cache.Get(ctx, rdb, cache.KeyLocations, &cached); err == nil && hit {
			c.JSON(http.StatusOK, gin.H{"locations": cached})
			return
		}
		out, err := locs.List(ctx)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		if err := cache.Set(ctx, rdb, cache.KeyLocations, out, cache.DefaultTTL); err != nil {
			logrus.Warnf("locations cache set: %v", err)
		}
		c.JSON(http.StatusOK, gin.H{"locations": out})
	}
}

type LocationRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
}

func createLocationHandler(locs location.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LocationRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "location name is required"})
			return
		}
		l := &location.Location{
			ID:       uuid.NewString(),
			Name:     strings.TrimSpace(req.Name),
			Address:  strings.TrimSpace(req.Address),
			City:     strings.TrimSpace(req.City),
			IsActive: true,
		}
		if err := locs.Create(c.Request.Context(), l); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		invalidateOrLog(c, rdb, cache.KeyLocations)
		c.JSON(http.StatusCreated, gin.H{"location": l})
	}
}

func updateLocationHandler(locs location.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LocationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		l := &location.Location{
			ID:      c.Param("id"),
			Name:    strings.TrimSpace(req.Name),
			Address: strings.TrimSpace(req.Address),
			City:    strings.TrimSpace(req.City),
		}
		if err := locs.Update(c.Request.Context(), l); err != nil {
			if errors.Is(err, location.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "location not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		invalidateOrLog(c, rdb, cache.KeyLocations)
		c.JSON(http.StatusOK, gin.H{"updated": true})
	}
}

type ActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func toggleLocationHandler(locs location.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ActiveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "active is required"})
			return
		}
		if err := locs.SetActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
			if errors.Is(err, location.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "location not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		invalidateOrLog(c, rdb, cache.KeyLocations)
		c.JSON(http.StatusOK, gin.H{"updated": true})
	}
}

// superMenuHandler lists the whole catalog, inactive items included.
func superMenuHandler(cat catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := cat.ListCategories(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		items, err := cat.ListItems(c.Request.Context(), false)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, MenuView{Categories: categories, Items: items})
	}
}

type CategoryRequest struct {
	Name string `json:"name"`
}

func createCategoryHandler(cat catalog.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category name is required"})
			return
		}
		mc := &catalog.MenuCategory{ID: uuid.NewString(), Name: strings.TrimSpace(req.Name)}
		if err := cat.CreateCategory(c.Request.Context(), mc); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		invalidateOrLog(c, rdb, cache.KeyMenu)
		c.JSON(http.StatusCreated, gin.H{"category": mc})
	}
}

func renameCategoryHandler(cat catalog.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category name is required"})
			return
		}
		if err := cat.RenameCategory(c.Request.Context(), c.Param("id"), strings.TrimSpace(req.Name)); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		invalidateOrLog(c, rdb, cache.KeyMenu)
		c.JSON(http.StatusOK, gin.H{"updated": true})
	}
}

type MenuItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// euro amount as entered by staff, e.g. "6.50" or "6,50"
	Price      string `json:"price"`
	CategoryID string `json:"category_id"`
	Active     bool   `json:"active"`
}

func (r MenuItemRequest) toItem(id string) (*catalog.MenuItem, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return nil, errors.New("item name is required")
	}
	cents, err := catalog.ParsePriceToCents(r.Price)
	if err != nil {
		return nil, err
	}
	return &catalog.MenuItem{
		ID:             id,
		Name:           name,
		Description:    strings.TrimSpace(r.Description),
		BasePriceCents: cents,
		Active:         r.Active,
		CategoryID:     strings.TrimSpace(r.CategoryID),
	}, nil
}

func createMenuItemHandler(cat catalog.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MenuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		m, err := req.toItem(uuid.NewString())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := cat.CreateItem(c.Request.Context(), m); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		invalidateOrLog(c, rdb, cache.KeyMenu)
		c.JSON(http.StatusCreated, gin.H{"item": m})
	}
}

func updateMenuItemHandler(cat catalog.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MenuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		m, err := req.toItem(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := cat.UpdateItem(c.Request.Context(), m); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		invalidateOrLog(c, rdb, cache.KeyMenu)
		c.JSON(http.StatusOK, gin.H{"item": m})
	}
}

func toggleMenuItemHandler(cat catalog.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ActiveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "active is required"})
			return
		}
		if err := cat.SetItemActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		invalidateOrLog(c, rdb, cache.KeyMenu)
		c.JSON(http.StatusOK, gin.H{"updated": true})
	}
}

func listAdminsHandler(az authz.Repository, locs location.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		admins, err := az.ListAdmins(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		locations, err := locs.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		if admins == nil {
			admins = []authz.AdminListing{}
		}
		c.JSON(http.StatusOK, gin.H{"admins": admins, "locations": locations})
	}
}

type PromoteAdminRequest struct {
	Email string `json:"email" binding:"required"`
}

func promoteAdminHandler(az authz.Repository, profiles profile.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PromoteAdminRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
			return
		}
		p, err := profiles.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
		if err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found, ask them to login once first"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		if err := az.GrantRole(c.Request.Context(), p.UserID, authz.RoleAdmin); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "role": authz.RoleAdmin})
	}
}

type AssignLocationRequest struct {
	AdminUserID string `json:"admin_user_id" binding:"required"`
	LocationID  string `json:"location_id" binding:"required"`
}

func assignAdminLocationHandler(az authz.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AssignLocationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "admin and location required"})
			return
		}
		if err := az.AssignLocation(c.Request.Context(), req.AdminUserID, req.LocationID); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"assigned": true})
	}
}

func getSettingsHandler(loy loyalty.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var cached loyalty.Settings
		if hit, err := cache.Get(ctx, rdb, cache.KeySettings, &cached); err == nil && hit {
			c.JSON(http.StatusOK, gin.H{"settings": cached})
			return
		}
		s, err := loy.Settings(ctx)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		if err := cache.Set(ctx, rdb, cache.KeySettings, s, cache.DefaultTTL); err != nil {
			logrus.Warnf("settings cache set: %v", err)
		}
		c.JSON(http.StatusOK, gin.H{"settings": s})
	}
}

type SettingsRequest struct {
	PointsPerEur    float64 `json:"points_per_eur"`
	EurPer100Points float64 `json:"eur_per_100_points"`
	DiscountPercent float64 `json:"discount_percent"`
	CashbackPercent float64 `json:"cashback_percent"`
}

func updateSettingsHandler(loy loyalty.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		s := loyalty.Settings{
			PointsPerEur:    req.PointsPerEur,
			EurPer100Points: req.EurPer100Points,
			DiscountPercent: req.DiscountPercent,
			CashbackPercent: req.CashbackPercent,
		}
		if err := s.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := loy.UpdateSettings(c.Request.Context(), s, auth.UserID(c)); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		invalidateOrLog(c, rdb, cache.KeySettings)
		c.JSON(http.StatusOK, gin.H{"updated": true})
	}
}

func invalidateOrLog(c *gin.Context, rdb *redis.Client, keys ...string) {
	if err := cache.Invalidate(c.Request.Context(), rdb, keys...); err != nil {
		logrus.Warnf("cache invalidate %v: %v", keys, err)
	}
}
