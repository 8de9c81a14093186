package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userId"

// Identity resolves the caller identity from headers and stores it in
// context. A registered client sends X-User-Id; anonymous clients get a
// guest identity from X-Guest-Id or a generated one.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := strings.TrimSpace(c.GetHeader("X-User-Id")); userID != "" {
			c.Set(userIDKey, userID)
			c.Set("isGuest", false)
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id"))
		if guestID == "" {
			guestID = "guest-" + randomHex(8)
		}
		c.Set(userIDKey, guestID)
		c.Set("isGuest", true)
		c.Next()
	}
}

// UserIDFromContext returns the identity stored by Identity middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "anonymous"
	}
	return hex.EncodeToString(b)
}
