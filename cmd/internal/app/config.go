package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// MigrateOnStart applies embedded goose migrations before serving.
	MigrateOnStart bool

	// JWTSecret signs access tokens (HS256). Must be at least 32 bytes.
	JWTSecret string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// SweepInterval is the period of the expired refresh-token sweeper.
	SweepInterval time.Duration

	// If true, /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool

	// If true, UNIBLOG_TOKEN_HMAC_KEY MUST be set (>= 32 bytes) so refresh
	// tokens are stored keyed-hashed rather than plain SHA-256.
	RequireTokenHMAC bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("UNIBLOG_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("UNIBLOG_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("UNIBLOG_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("UNIBLOG_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("UNIBLOG_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("UNIBLOG_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("UNIBLOG_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("UNIBLOG_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("UNIBLOG_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("UNIBLOG_DB_MIN_CONNS", 0),

		MigrateOnStart: EnvBool("UNIBLOG_MIGRATE_ON_START", true),

		JWTSecret: EnvString("UNIBLOG_JWT_SECRET", ""),

		AccessTokenTTL:  EnvDuration("UNIBLOG_ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: EnvDuration("UNIBLOG_REFRESH_TOKEN_TTL", 24*time.Hour),

		SweepInterval: EnvDuration("UNIBLOG_SWEEP_INTERVAL", time.Hour),

		ReadinessRequireDB: EnvBool("UNIBLOG_READINESS_REQUIRE_DB", false),

		RequireTokenHMAC: EnvBool("UNIBLOG_REQUIRE_TOKEN_HMAC", false),
	}
}
