package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the single source of startup configuration. Cookie and CORS
// policy live here and nowhere else.
type Config struct {
	Addr string

	MongoURI  string
	MongoDB   string
	RedisAddr string

	JWTSecret string
	JWTTTL    time.Duration

	CookieName   string
	CookieDomain string
	CookieSecure bool
	CookieMaxAge int

	AllowedOrigins []string

	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3UsePathStyle  bool
	S3PublicBaseURL string

	KeepAliveURL      string
	KeepAliveInterval time.Duration

	CacheTTL    time.Duration
	QuotaLimit  int
	QuotaWindow time.Duration
}

// Load reads configuration from the environment, with an optional .env file.
// Defaults suit local development.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr: getenv("ADDR", ":8080"),

		MongoURI:  getenv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:   getenv("MONGO_DB", "diploma360"),
		RedisAddr: getenv("REDIS_ADDR", "127.0.0.1:6379"),

		JWTSecret: getenv("JWT_SECRET", "supersecret"),
		JWTTTL:    getduration("JWT_TTL", 72*time.Hour),

		CookieName:   getenv("COOKIE_NAME", "jwt"),
		CookieDomain: getenv("COOKIE_DOMAIN", ""),
		CookieSecure: getbool("COOKIE_SECURE", false),
		CookieMaxAge: getint("COOKIE_MAX_AGE", int((72 * time.Hour).Seconds())),

		AllowedOrigins: getlist("ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"https://diploma360.vercel.app",
		}),

		S3Endpoint:      getenv("S3_ENDPOINT", ""),
		S3Region:        getenv("AWS_REGION", "us-east-1"),
		S3Bucket:        getenv("S3_BUCKET_NAME", "diploma360-media"),
		S3AccessKey:     getenv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:     getenv("AWS_SECRET_ACCESS_KEY", ""),
		S3UsePathStyle:  getbool("S3_USE_PATH_STYLE", false),
		S3PublicBaseURL: getenv("S3_PUBLIC_BASE_URL", ""),

		KeepAliveURL:      getenv("KEEPALIVE_URL", ""),
		KeepAliveInterval: getduration("KEEPALIVE_INTERVAL", 14*time.Minute),

		CacheTTL:    getduration("CACHE_TTL", 30*time.Second),
		QuotaLimit:  getint("QUOTA_LIMIT", 2000),
		QuotaWindow: getduration("QUOTA_WINDOW", 24*time.Hour),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getlist(k string, def []string) []string {
	if v := os.Getenv(k); v != "" {
		parts := strings.Split(v, ",")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}
