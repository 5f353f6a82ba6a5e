package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP    HTTPConfig
	DB      DBConfig
	Redis   RedisConfig
	Auth    AuthConfig
	Loan    LoanConfig
	Logging LoggingConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// DBConfig describes connectivity to Postgres. URL wins when set; otherwise
// the DSN is assembled from the individual DB_* variables.
type DBConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// DSN returns the connection string to hand to pgxpool.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Host == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", c.User, c.Password, c.Host, c.Port, c.Name)
}

// RedisConfig locates the Redis instance backing the task queue.
type RedisConfig struct {
	Addr string
}

type AuthConfig struct {
	JWTSecret string
}

// LoanConfig fixes the amortization terms applied at loan approval.
type LoanConfig struct {
	AnnualRatePercent decimal.Decimal
	TermMonths        int
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level  string
	Format string // text|json
}

const (
	defaultPort            = 8080
	defaultShutdownTimeout = 10 * time.Second
	defaultRedisAddr       = "127.0.0.1:6379"
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "text"
	defaultLoanRatePercent = "15"
	defaultLoanTermMonths  = 12
)

// Load reads configuration from the environment, applying defaults. A .env
// file in the working directory is merged in first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTP: HTTPConfig{
			ShutdownTimeout: defaultShutdownTimeout,
		},
		DB: DBConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     os.Getenv("DB_HOST"),
			Port:     valueOrDefault("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
		Redis: RedisConfig{
			Addr: valueOrDefault("REDIS_ADDR", defaultRedisAddr),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Logging: LoggingConfig{
			Level:  valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format: valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
		},
	}

	port, err := parsePort("PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.HTTP.ShutdownTimeout = d
	}

	rate, err := decimal.NewFromString(valueOrDefault("LOAN_APR_PERCENT", defaultLoanRatePercent))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOAN_APR_PERCENT: %w", err)
	}
	cfg.Loan.AnnualRatePercent = rate
	cfg.Loan.TermMonths = parseIntWithDefault("LOAN_TERM_MONTHS", defaultLoanTermMonths)
	if cfg.Loan.TermMonths <= 0 {
		return Config{}, fmt.Errorf("LOAN_TERM_MONTHS must be positive, got %d", cfg.Loan.TermMonths)
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
