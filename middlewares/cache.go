package middlewares

import (
	"bytes"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type cachedBody struct {
	Status int
	Header map[string][]string
	Body   []byte
}

// Path and query get hashed so Redis keys stay short.
func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// CacheKeyFrom namespaces keys by read shape (list vs item) so the
// invalidator can purge them by prefix. Only GETs on public event reads are
// cacheable.
func CacheKeyFrom(c *gin.Context) (string, string) {
	method := c.Request.Method
	path := c.FullPath()
	rawq := c.Request.URL.RawQuery

	if method != "GET" || path == "" {
		return "", ""
	}

	switch {
	case path == "/api/events/:id":
		id := c.Param("id")
		return "cache:events:item:" + sha1Hex("GET|/api/events/"+id), "item"
	case path == "/api/events",
		strings.HasPrefix(path, "/api/events/featured"),
		strings.HasPrefix(path, "/api/events/categories"),
		strings.HasPrefix(path, "/api/events/recent-reviews"):
		return "cache:events:list:" + sha1Hex("GET|"+path+"|"+rawq), "list"
	default:
		return "", ""
	}
}

// ResponseCache serves cached 2xx responses for public event reads and
// records misses. Hits short-circuit the handler chain.
func ResponseCache(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, _ := CacheKeyFrom(c)
		if key == "" {
			c.Next()
			return
		}

		if b, err := rdb.Get(c.Request.Context(), key).Bytes(); err == nil && len(b) > 0 {
			var hit cachedBody
			if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&hit); err == nil {
				for k, vals := range hit.Header {
					for _, v := range vals {
						c.Writer.Header().Add(k, v)
					}
				}
				c.Writer.Header().Set("X-Cache", "HIT")
				c.Status(hit.Status)
				_, _ = c.Writer.Write(hit.Body)
				c.Abort()
				return
			}
		}

		buf := &bytes.Buffer{}
		bw := &bufferedWriter{ResponseWriter: c.Writer, buf: buf}
		c.Writer = bw

		c.Next()

		// Only 2xx responses are worth replaying.
		if bw.Status() >= 200 && bw.Status() < 300 {
			item := cachedBody{
				Status: bw.Status(),
				Header: c.Writer.Header(),
				Body:   buf.Bytes(),
			}
			var o bytes.Buffer
			if err := gob.NewEncoder(&o).Encode(item); err == nil {
				_ = rdb.Set(c.Request.Context(), key, o.Bytes(), ttl).Err()
			}
			c.Writer.Header().Set("X-Cache", "MISS")
		}
	}
}

type bufferedWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}
