package middleware

// identity.go defines helper functions shared across middleware files. It
// provides a userID extraction function that pulls the subject stored by
// JWTAuth from the Echo context. When no authenticated user is present,
// "guest" is returned so that anonymous traffic on the public browse routes
// still buckets into a stable rate-limit and cache key.

import (
	"github.com/labstack/echo/v4"
)

// userID extracts a user identifier from the Echo context. It returns
// "guest" when no user is authenticated.
func userID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok && v != "" {
		return v
	}
	return "guest"
}
