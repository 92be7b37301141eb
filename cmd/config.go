package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"ordering"`
	DBSslMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// DMSDSN defaults to the service database.
	DMSDSN                 string `env:"DMS_DSN"`
	DMSTable               string `env:"DMS_TABLE" envDefault:"dms_documents"`
	DMSTimeoutSeconds      int    `env:"DMS_TIMEOUT_SECONDS" envDefault:"20"`
	DMSSyncIntervalMinutes int    `env:"DMS_SYNC_INTERVAL_MINUTES" envDefault:"15"`

	ValidationCooldownSeconds int `env:"VALIDATION_COOLDOWN_SECONDS" envDefault:"30"`
	EditLockTTLSeconds        int `env:"EDIT_LOCK_TTL_SECONDS" envDefault:"90"`
	EditLockSweepSeconds      int `env:"EDIT_LOCK_SWEEP_SECONDS" envDefault:"15"`

	JWTSecret              string   `env:"JWT_SECRET,required,notEmpty"`
	AllowedOrigins         []string `env:"WS_ALLOWED_ORIGINS" envSeparator:","`
	RateLimitPerSecond     float64  `env:"RATE_LIMIT_PER_SECOND" envDefault:"10"`
	RateLimitBurst         int      `env:"RATE_LIMIT_BURST" envDefault:"20"`
	RealtimeQueueSize      int      `env:"REALTIME_QUEUE_SIZE" envDefault:"64"`
	KafkaBrokers           []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaAuditTopic        string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"order-audit"`
	AuditBufferSize        int      `env:"AUDIT_BUFFER_SIZE" envDefault:"1024"`
	LogLevel               string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat              string   `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeoutSeconds int      `env:"SHUTDOWN_TIMEOUT_SECONDS" envDefault:"10"`
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env file: %w", err)
	}

	var config Config
	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("error parsing env config: %w", err)
	}
	if err := config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) validate() error {
	var problems []error
	if c.ValidationCooldownSeconds < 0 {
		problems = append(problems, errors.New("VALIDATION_COOLDOWN_SECONDS must not be negative"))
	}
	if c.EditLockTTLSeconds <= 0 {
		problems = append(problems, errors.New("EDIT_LOCK_TTL_SECONDS must be positive"))
	}
	if c.EditLockSweepSeconds <= 0 {
		problems = append(problems, errors.New("EDIT_LOCK_SWEEP_SECONDS must be positive"))
	}
	if c.DMSTimeoutSeconds <= 0 {
		problems = append(problems, errors.New("DMS_TIMEOUT_SECONDS must be positive"))
	}
	if c.RateLimitPerSecond <= 0 || c.RateLimitBurst <= 0 {
		problems = append(problems, errors.New("RATE_LIMIT_PER_SECOND and RATE_LIMIT_BURST must be positive"))
	}
	return errors.Join(problems...)
}

// DatabaseURL is the postgres:// form of the service database, used by gorm
// and the migrations alike.
func (c Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSslMode),
	}
	return u.String()
}

func (c Config) DMSDatabaseURL() string {
	if strings.TrimSpace(c.DMSDSN) != "" {
		return c.DMSDSN
	}
	return c.DatabaseURL()
}

func (c Config) ValidationCooldown() time.Duration {
	return time.Duration(c.ValidationCooldownSeconds) * time.Second
}

func (c Config) EditLockTTL() time.Duration {
	return time.Duration(c.EditLockTTLSeconds) * time.Second
}

func (c Config) EditLockSweep() time.Duration {
	return time.Duration(c.EditLockSweepSeconds) * time.Second
}

func (c Config) DMSTimeout() time.Duration {
	return time.Duration(c.DMSTimeoutSeconds) * time.Second
}

// DMSSyncInterval is zero when scheduled synchronization is disabled.
func (c Config) DMSSyncInterval() time.Duration {
	return time.Duration(c.DMSSyncIntervalMinutes) * time.Minute
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}
