// Package router wires every HTTP route of the site: the public catalog,
// the lead forms, the admin session flow and the authenticated back-office.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/MP-make/pechos-inmobiliaria/internal/config"
	"github.com/MP-make/pechos-inmobiliaria/internal/handler"
	"github.com/MP-make/pechos-inmobiliaria/internal/middleware"
)

// Handlers bundles every handler the router needs.
type Handlers struct {
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Leads    *handler.LeadHandler
	Property *handler.AdminPropertyHandler
	Lead     *handler.AdminLeadHandler
	User     *handler.AdminUserHandler
	Carousel *handler.AdminCarouselHandler
}

// Register mounts all routes. Redis may be nil, in which case the catalog
// cache and the lead rate limit silently disable themselves.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Public catalog, cached: these are the hottest routes and only change
	// on admin writes.
	cache := middleware.NewCatalogCache(config.LoadCacheConfig(), rdb)
	e.GET("/v1/properties", h.Catalog.ListProperties, cache)
	e.GET("/v1/properties/:slug", h.Catalog.GetPropertyBySlug, cache)
	e.GET("/v1/carousel", h.Catalog.Carousel, cache)

	// Public lead forms, rate limited per client IP.
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	e.POST("/v1/leads/security", h.Leads.SubmitSecurity, limit)
	e.POST("/v1/leads/contact", h.Leads.SubmitContact, limit)

	// Session flow. Verify needs a valid cookie; the rest do not.
	auth := e.Group("/v1/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", h.Auth.Logout)
	auth.POST("/init", h.Auth.Init)
	auth.GET("/verify", h.Auth.Verify, middleware.AdminAuth(cfg.JWTSecret))

	// Back-office. Everything below requires the admin session cookie.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.AdminAuth(cfg.JWTSecret))

	admin.GET("/properties", h.Property.List)
	admin.POST("/properties", h.Property.Create)
	admin.GET("/properties/:id", h.Property.Get)
	admin.PUT("/properties/:id", h.Property.Update)
	admin.DELETE("/properties/:id", h.Property.Delete)

	admin.GET("/leads", h.Lead.List)
	admin.GET("/leads/stats", h.Lead.Stats)
	admin.PUT("/leads/:id/block", h.Lead.ToggleBlock)
	admin.DELETE("/leads/:id", h.Lead.Delete)

	admin.GET("/users", h.User.List)
	admin.POST("/users", h.User.Create)

	admin.GET("/carousel", h.Carousel.List)
	admin.POST("/carousel", h.Carousel.Create)
	admin.DELETE("/carousel/:id", h.Carousel.Delete)
}
