package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends
const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Store string // "redis" | "memory"

	// Identity
	TokenSecret string        // HS256 signing key, at least 32 bytes
	TokenTTL    time.Duration // lifetime of issued tokens (default: 720h)

	// Catalog
	CatalogFile           string        // optional YAML override of the built-in catalog (empty = embedded)
	CatalogReloadInterval time.Duration // 0 = reload only on POST /reload

	// Sessions and sync
	SessionIdleTTL     time.Duration // idle sessions are closed after this (default: 30m)
	ReapInterval       time.Duration // interval between idle session sweeps (default: 1m)
	ReminderInterval   time.Duration // interval between reminder scans (default: 30s)
	ProbeInterval      time.Duration // interval between remote store pings (default: 30s)
	WriteTimeout       time.Duration // bound of each remote write (default: 10s)
	CascadeConcurrency int           // parallel writes in cascades and reorders (default: 8)
	FallbackCategory   string        // receives the shortcuts of a deleted collection (default: personal)
	Locale             string        // BCP 47 tag for dictation and name collation (default: fr-FR)
	Timezone           string        // IANA zone for note display dates (default: Local)
	RedirectPrefix     string        // fullscreen wrapper prefix, "none" = navigate directly

	// Rate limit on POST /api/session
	SessionBurst        int // bucket size per IP
	SessionRefillPerMin int // tokens added per minute per IP

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict /reload to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	AllowOrigins []string // optional, CORS origins allowed on /api
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LAUNCHPAD_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LAUNCHPAD_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LAUNCHPAD_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LAUNCHPAD_PRETTY_LOG", true),

		Store: strings.ToLower(getenv("LAUNCHPAD_STORE", StoreRedis)),

		// Identity
		TokenSecret: requireEnv("LAUNCHPAD_TOKEN_SECRET"),
		TokenTTL:    mustDuration("LAUNCHPAD_TOKEN_TTL", 30*24*time.Hour),

		// Catalog
		CatalogFile:           getenv("LAUNCHPAD_CATALOG_FILE", ""),
		CatalogReloadInterval: mustDuration("LAUNCHPAD_CATALOG_RELOAD_INTERVAL", 0),

		// Sessions and sync
		SessionIdleTTL:     mustDuration("LAUNCHPAD_SESSION_IDLE_TTL", 30*time.Minute),
		ReapInterval:       mustDuration("LAUNCHPAD_REAP_INTERVAL", time.Minute),
		ReminderInterval:   mustDuration("LAUNCHPAD_REMINDER_INTERVAL", 30*time.Second),
		ProbeInterval:      mustDuration("LAUNCHPAD_PROBE_INTERVAL", 30*time.Second),
		WriteTimeout:       mustDuration("LAUNCHPAD_WRITE_TIMEOUT", 10*time.Second),
		CascadeConcurrency: getenvInt("LAUNCHPAD_CASCADE_CONCURRENCY", 8),
		FallbackCategory:   getenv("LAUNCHPAD_FALLBACK_CATEGORY", "personal"),
		Locale:             getenv("LAUNCHPAD_LOCALE", "fr-FR"),
		Timezone:           getenv("LAUNCHPAD_TIMEZONE", "Local"),
		RedirectPrefix:     getenv("LAUNCHPAD_REDIRECT_PREFIX", "https://www.youtube.com/redirect?q="),

		SessionBurst:        getenvInt("LAUNCHPAD_SESSION_BURST", 5),
		SessionRefillPerMin: getenvInt("LAUNCHPAD_SESSION_REFILL_PER_MIN", 10),

		// Redis settings
		RedisUser:             getenv("LAUNCHPAD_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("LAUNCHPAD_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("LAUNCHPAD_REDIS_PASSWORD", ""),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("LAUNCHPAD_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("LAUNCHPAD_ALLOWED_CIDRS", "")),
		AllowOrigins: splitAndTrim(getenv("LAUNCHPAD_ALLOW_ORIGINS", "")),
		TrustProxy:   mustBool("LAUNCHPAD_TRUST_PROXY", true),
	}

	switch cfg.Store {
	case StoreRedis:
		cfg.RedisAddr = requireEnv("LAUNCHPAD_REDIS_ADDR")
		cfg.RedisDB = requireEnvInt("LAUNCHPAD_REDIS_DB")
		// Validate Redis password configuration
		if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
			panic("❌ FATAL: LAUNCHPAD_REDIS_PASSWORD is required when LAUNCHPAD_REDIS_PASSWORD_REQUIRED=true")
		}
	case StoreMemory:
	default:
		panic(fmt.Sprintf("❌ FATAL: LAUNCHPAD_STORE must be %q or %q, got %q", StoreRedis, StoreMemory, cfg.Store))
	}

	if len(cfg.TokenSecret) < 32 {
		panic("❌ FATAL: LAUNCHPAD_TOKEN_SECRET must be at least 32 bytes")
	}

	for key, d := range map[string]time.Duration{
		"LAUNCHPAD_REAP_INTERVAL":     cfg.ReapInterval,
		"LAUNCHPAD_REMINDER_INTERVAL": cfg.ReminderInterval,
		"LAUNCHPAD_PROBE_INTERVAL":    cfg.ProbeInterval,
	} {
		if d <= 0 {
			panic(fmt.Sprintf("❌ FATAL: %s must be positive, got %s", key, d))
		}
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	cp.TokenSecret = "***REDACTED***"
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	return cp
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
