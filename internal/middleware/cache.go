package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/consultant-booking/internal/config"
)

// bodyCapture tees the response body into a buffer, up to a limit, while
// forwarding it to the client unchanged.
type bodyCapture struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (bc *bodyCapture) WriteHeader(code int) {
	bc.status = code
	bc.ResponseWriter.WriteHeader(code)
}

func (bc *bodyCapture) Write(b []byte) (int, error) {
	if remain := bc.limit - bc.size; remain > 0 {
		if int64(len(b)) <= remain {
			bc.buf.Write(b)
		} else {
			bc.buf.Write(b[:remain])
		}
	}
	bc.size += int64(len(b))
	return bc.ResponseWriter.Write(b)
}

// cacheKey hashes the route and query string under the configured prefix.
func cacheKey(prefix string, c echo.Context) string {
	sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
	return fmt.Sprintf("%s:%x", prefix, sum[:])
}

// NewResponseCache returns a middleware that serves successful JSON
// responses of the public consultant endpoints from Redis. Only the
// configured methods are cached, entries live for cfg.TTL, and
// responses larger than cfg.MaxBodyBytes are passed through uncached.
// With caching disabled or no Redis client the middleware is a no-op.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}

			ctx := c.Request().Context()
			key := cacheKey(cfg.Prefix, c)

			if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
				c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
				c.Response().Header().Set("X-Cache", "HIT")
				c.Response().WriteHeader(http.StatusOK)
				_, werr := c.Response().Write(body)
				return werr
			}

			bc := &bodyCapture{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          int64(cfg.MaxBodyBytes),
			}
			c.Response().Writer = bc
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			// Cache only complete 200 responses.
			if bc.status == http.StatusOK && bc.size <= bc.limit {
				// Detached context: the request may be done but the entry
				// should still be written.
				storeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = rdb.Set(storeCtx, key, bc.buf.Bytes(), ttl).Err()
			}
			return nil
		}
	}
}
