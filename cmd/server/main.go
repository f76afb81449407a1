package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kavica-app/kavica/internal/auth"
	"github.com/kavica-app/kavica/internal/authz"
	"github.com/kavica-app/kavica/internal/catalog"
	"github.com/kavica-app/kavica/internal/config"
	"github.com/kavica-app/kavica/internal/httpx"
	"github.com/kavica-app/kavica/internal/location"
	"github.com/kavica-app/kavica/internal/loyalty"
	"github.com/kavica-app/kavica/internal/order"
	"github.com/kavica-app/kavica/internal/profile"
)

func main() {
	cfg := config.Load()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	defer pool.Close()

	// View cache is optional: no REDIS_ADDR means every view renders fresh.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	}

	profiles := profile.NewPGRepo(pool)
	az := authz.NewPGRepo(pool)
	locations := location.NewPGRepo(pool)
	cat := catalog.NewPGRepo(pool)
	loy := loyalty.NewPGRepo(pool)
	orders := order.NewPGRepo(pool)
	placement := order.NewService(orders, cat, locations)

	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r.POST("/auth/register", registerHandler(profiles, az, loy))
	r.POST("/auth/login", loginHandler(profiles, cfg.JWTSecret))

	authed := r.Group("/", auth.RequireUser(cfg.JWTSecret))
	authed.GET("", homeHandler(az))

	// Customer pages: any authenticated user.
	app := authed.Group("/app")
	app.GET("/menu", menuHandler(cat, rdb))
	app.GET("/orders", myOrdersHandler(orders, rdb))
	app.POST("/orders", placeOrderHandler(placement, rdb))
	app.GET("/points", pointsHandler(loy, locations, rdb))
	app.GET("/card", cardHandler(loy))

	// Staff pages: admin or super admin, location-scoped for plain admins.
	admin := authed.Group("/admin", authz.Require(az, authz.RoleAdmin, true))
	admin.GET("/orders", adminOrdersHandler(orders))
	admin.GET("/orders/:id", adminOrderDetailHandler(orders))
	admin.GET("/pickup", pickupLookupHandler(orders))
	admin.POST("/pickup/finalize", finalizePickupHandler(orders, rdb))

	// Super admin pages: unscoped.
	super := authed.Group("/super", authz.Require(az, authz.RoleSuperAdmin, false))
	super.GET("/locations", listLocationsHandler(locations, rdb))
	super.POST("/locations", createLocationHandler(locations, rdb))
	super.POST("/locations/:id", updateLocationHandler(locations, rdb))
	super.POST("/locations/:id/active", toggleLocationHandler(locations, rdb))
	super.GET("/menu", superMenuHandler(cat))
	super.POST("/categories", createCategoryHandler(cat, rdb))
	super.POST("/categories/:id/rename", renameCategoryHandler(cat, rdb))
	super.POST("/menu-items", createMenuItemHandler(cat, rdb))
	super.POST("/menu-items/:id", updateMenuItemHandler(cat, rdb))
	super.POST("/menu-items/:id/active", toggleMenuItemHandler(cat, rdb))
	super.GET("/admins", listAdminsHandler(az, locations))
	super.POST("/admins", promoteAdminHandler(az, profiles))
	super.POST("/admins/assign", assignAdminLocationHandler(az))
	super.GET("/settings", getSettingsHandler(loy, rdb))
	super.POST("/settings", updateSettingsHandler(loy, rdb))

	logrus.Infof("server listening on :%s", cfg.AppPort)
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
