package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextAPIKey is the gin context key under which the auth middleware
// stores the caller's validated API key. The rate limiter reads it to
// bucket traffic per key.
const ContextAPIKey = "api_key"

// Auth guards the demo endpoints with a fixed key set. The demo runs in
// one of two modes: open (no keys configured, anyone who can reach the
// page can capture) or keyed, where callers present one of the
// configured keys as X-API-Key or Authorization: Bearer.
func Auth(apiKeys []string) gin.HandlerFunc {
	keySet := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			keySet[k] = struct{}{}
		}
	}
	if len(keySet) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := requestAPIKey(c)
		if key == "" {
			abortUnauthorized(c, "missing API key: provide X-API-Key header or Authorization: Bearer <key>")
			return
		}
		if _, ok := keySet[key]; !ok {
			abortUnauthorized(c, "invalid API key")
			return
		}

		c.Set(ContextAPIKey, key)
		c.Next()
	}
}

// requestAPIKey reads the key from X-API-Key first, then from a Bearer
// Authorization header.
func requestAPIKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
