// Package middleware contains Gin middleware functions.
// Middleware in Gin is a handler that runs before (or after) your route handler.
// It calls c.Next() to proceed or c.Abort() to stop the chain.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextKeyAPIKey is where the authenticated key is stored on the gin.Context.
const ContextKeyAPIKey = "api_key"

// APIKeyAuth returns middleware that validates API keys.
// The key can be provided via X-API-Key header or api_key query param
// (the query param is needed for EventSource, which can't set headers).
//
// With no keys configured the dashboard runs in local single-user mode and
// every request is let through.
func APIKeyAuth(validKeys []string) gin.HandlerFunc {
	return keyAuth(validKeys, "API key", http.StatusUnauthorized, true)
}

// AdminKeyAuth returns middleware that validates admin API keys.
// Unlike APIKeyAuth it never runs open: no admin keys means no admin access.
func AdminKeyAuth(adminKeys []string) gin.HandlerFunc {
	return keyAuth(adminKeys, "admin API key", http.StatusForbidden, false)
}

func keyAuth(keys []string, label string, invalidStatus int, openWhenEmpty bool) gin.HandlerFunc {
	// map[string]struct{} is Go's set idiom; struct{} takes zero bytes.
	keySet := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k != "" {
			keySet[k] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if len(keySet) == 0 && openWhenEmpty {
			c.Next()
			return
		}

		key := c.GetHeader("X-API-Key")
		if key == "" {
			key = c.Query("api_key")
		}

		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + label,
			})
			return
		}

		if _, ok := keySet[key]; !ok {
			c.AbortWithStatusJSON(invalidStatus, gin.H{
				"error": "invalid " + label,
			})
			return
		}

		c.Set(ContextKeyAPIKey, key)
		c.Next()
	}
}
