package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/amiral-e/esp-back-sub001/internal/common"
	"github.com/amiral-e/esp-back-sub001/internal/store/redisstore"
)

// RateLimit enforces a fixed-window per-user cap via redis. A nil store
// disables the limit; a redis failure lets the request through rather than
// taking the route down with it.
func RateLimit(rds *redisstore.Store, limit int, window time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rds == nil || limit <= 0 {
			c.Next()
			return
		}

		identity, ok := IdentityFrom(c)
		if !ok {
			common.Fail(c, http.StatusUnauthorized, "Missing credential")
			return
		}

		n, err := rds.IncrWindow(c.Request.Context(), "rl:chat:"+identity.UserID, window)
		if err != nil {
			log.Warn().Err(err).Str("user_id", identity.UserID).Msg("rate limit check failed")
			c.Next()
			return
		}
		if n > int64(limit) {
			common.Fail(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		c.Next()
	}
}
