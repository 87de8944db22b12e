package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/instrumentaliza/instrumentaliza-server/internal/config"
	"github.com/instrumentaliza/instrumentaliza-server/internal/handler"
	"github.com/instrumentaliza/instrumentaliza-server/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// The health endpoint is used by load balancers and monitoring systems
	// to verify that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Session bootstrap endpoints do not require an existing session.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access only issues a new
	// access token and keeps the session token unchanged.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)

	// Protected session endpoints.  Logout needs the JWT so that an empty
	// body can revoke every session of the calling user.
	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/auth/logout", a.Logout)
}

// RegisterPublic registers the unauthenticated browse endpoints.  These
// routes return sanitized listing data for guests and are the only ones
// wrapped in the Redis response cache; everything behind authentication is
// user-specific and must never be served from a shared cache.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	cache := middleware.NewRedisCache(cacheCfg, rdb)
	e.GET("/v1/browse/instruments", p.SearchInstruments, cache)
	e.GET("/v1/browse/instruments/:id", p.GetInstrument, cache)
	// The availability check is cached too; the short TTL bounds how stale
	// a verdict can be, and request creation re-checks authoritatively.
	e.GET("/v1/browse/instruments/:id/availability", p.CheckAvailability, cache)
	e.GET("/v1/browse/users/:id/ratings", p.GetUserRatings, cache)
}

// RegisterMarketplace registers the authenticated marketplace surface:
// listing management and availability calendars for owners, the request
// flow for both sides, and bookings with ratings.
func RegisterMarketplace(e *echo.Echo, jwtSecret string,
	owner *handler.OwnerHandler, req *handler.RequestHandler,
	dec *handler.DecisionHandler, book *handler.BookingHandler) {

	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	// Listings and their manual availability blocks (owner side).
	g.POST("/instruments", owner.CreateInstrument)
	g.GET("/instruments", owner.ListMyInstruments)
	g.PUT("/instruments/:id", owner.UpdateInstrument)
	g.DELETE("/instruments/:id", owner.DeleteInstrument)
	g.GET("/instruments/:id/blocks", owner.ListBlocks)
	g.POST("/instruments/:id/blocks", owner.AddBlock)
	g.DELETE("/instruments/:id/blocks/:blockID", owner.RemoveBlock)

	// Rental requests.  The renter creates and lists their own requests;
	// the owner lists incoming ones and decides them.  The static
	// /requests/incoming route is registered before /requests/:id so Echo
	// does not swallow it as an id.
	g.GET("/requests/incoming", dec.ListIncoming)
	g.POST("/requests", req.CreateRequest)
	g.GET("/requests", req.ListMyRequests)
	g.GET("/requests/:id", req.GetRequest)
	g.POST("/requests/:id/accept", dec.Accept)
	g.POST("/requests/:id/reject", dec.Reject)

	// Bookings and the post-rental rating exchange.
	g.GET("/bookings", book.ListMyBookings)
	g.GET("/bookings/:id", book.GetBooking)
	g.POST("/bookings/:id/rate", book.RateBooking)
}
