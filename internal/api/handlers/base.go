// Package handlers contains the HTTP handlers for the API server.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pockettrack/backend/internal/infrastructure/storage"
)

// defaultUserID is used when the client sends no X-User-ID header. The
// server trusts the header; authentication is handled upstream.
const defaultUserID = "default"

// Base provides shared functionality for all handlers.
type Base struct {
	repo storage.Repository
}

// NewBase creates a new base handler with the given repository.
func NewBase(repo storage.Repository) *Base {
	return &Base{repo: repo}
}

// UserID extracts the requesting user from the X-User-ID header.
func UserID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return defaultUserID
}

// ParseIntQuery parses an integer query parameter with a default value.
func ParseIntQuery(c *gin.Context, name string, defaultVal int) int {
	val := c.Query(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseFloatQuery parses a float query parameter with a default value.
func ParseFloatQuery(c *gin.Context, name string, defaultVal float64) float64 {
	val := c.Query(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseBoolQuery parses a boolean query parameter with a default value.
func ParseBoolQuery(c *gin.Context, name string, defaultVal bool) bool {
	val := c.Query(name)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}
