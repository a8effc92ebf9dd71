package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64

	DatabaseURL string
	DBSchema    string
	DBMaxConns  int32
	DBMinConns  int32

	// If true, /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool

	// CORS. The API historically allows any origin.
	CORSAllowedOrigins []string
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("TASKD_HTTP_ADDR", "0.0.0.0:3000"),
		LogLevel:  EnvString("TASKD_LOG_LEVEL", "info"),
		LogFormat: EnvString("TASKD_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("TASKD_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("TASKD_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("TASKD_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("TASKD_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("TASKD_HTTP_MAX_HEADER_BYTES", 1<<20),
		MaxBodyBytes:   EnvInt64("TASKD_HTTP_MAX_BODY_BYTES", 1<<20), // 1 MiB

		DatabaseURL: EnvString("TASKD_DATABASE_URL", ""),
		DBSchema:    EnvString("TASKD_DB_SCHEMA", "taskd"),
		DBMaxConns:  EnvInt32("TASKD_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("TASKD_DB_MIN_CONNS", 0),

		ReadinessRequireDB: EnvBool("TASKD_READINESS_REQUIRE_DB", false),

		CORSAllowedOrigins: EnvStringSlice("TASKD_CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}
